package albums

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/albums-service/internal/adapters/http/dependencies"
	"github.com/albums-service/internal/core/services"
)

const (
	BackendMemory = "memory"
	BackendMySQL  = "mysql"
	BackendBolt   = "bolt"
)

type Config struct {
	Port              string        `yaml:"port"`
	RepoBackend       string        `yaml:"repo_backend"`
	MySQLDSN          string        `yaml:"mysql_dsn"`
	BoltPath          string        `yaml:"bolt_path"`
	PhotographerURL   string        `yaml:"photographer_url"`
	PhotoURL          string        `yaml:"photo_url"`
	DependencyTimeout time.Duration `yaml:"dependency_timeout"`
	FetchConcurrency  int           `yaml:"fetch_concurrency"`
	MaxPhotoBytes     int64         `yaml:"max_photo_bytes"`
	LogLevel          string        `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Port:              "80",
		RepoBackend:       BackendMemory,
		PhotographerURL:   "http://photographer-service:80",
		PhotoURL:          "http://photo-service:8001",
		DependencyTimeout: dependencies.DefaultTimeout,
		FetchConcurrency:  services.DefaultFetchConcurrency,
		MaxPhotoBytes:     dependencies.DefaultMaxPhotoBytes,
		LogLevel:          "info",
	}
}

// LoadConfig layers defaults, the optional YAML file named by CONFIG_FILE and
// environment variables, in that order.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = getEnv("ALBUMS_PORT", cfg.Port)
	cfg.RepoBackend = getEnv("REPO_BACKEND", cfg.RepoBackend)
	cfg.MySQLDSN = getEnv("MYSQL_DSN", cfg.MySQLDSN)
	cfg.BoltPath = getEnv("BOLT_PATH", cfg.BoltPath)
	cfg.PhotographerURL = serviceURL("PHOTOGRAPHER", "photographer-service", "80", cfg.PhotographerURL)
	cfg.PhotoURL = serviceURL("PHOTO", "photo-service", "8001", cfg.PhotoURL)
	cfg.DependencyTimeout = getDurationEnv("DEPENDENCY_TIMEOUT", cfg.DependencyTimeout)
	cfg.FetchConcurrency = getIntEnv("FETCH_CONCURRENCY", cfg.FetchConcurrency)
	cfg.MaxPhotoBytes = int64(getIntEnv("MAX_PHOTO_BYTES", int(cfg.MaxPhotoBytes)))
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.RepoBackend {
	case BackendMemory:
	case BackendMySQL:
		if c.MySQLDSN == "" {
			return fmt.Errorf("REPO_BACKEND=mysql requires MYSQL_DSN")
		}
	case BackendBolt:
		if c.BoltPath == "" {
			return fmt.Errorf("REPO_BACKEND=bolt requires BOLT_PATH")
		}
	default:
		return fmt.Errorf("unknown REPO_BACKEND %q", c.RepoBackend)
	}
	if c.FetchConcurrency <= 0 {
		return fmt.Errorf("FETCH_CONCURRENCY must be positive, got %d", c.FetchConcurrency)
	}
	if c.DependencyTimeout <= 0 {
		return fmt.Errorf("DEPENDENCY_TIMEOUT must be positive, got %s", c.DependencyTimeout)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// serviceURL prefers <PREFIX>_SERVICE_URL, then <PREFIX>_HOST/<PREFIX>_PORT.
func serviceURL(prefix, defaultHost, defaultPort, current string) string {
	if u := os.Getenv(prefix + "_SERVICE_URL"); u != "" {
		return u
	}
	host, port := os.Getenv(prefix+"_HOST"), os.Getenv(prefix+"_PORT")
	if host == "" && port == "" {
		return current
	}
	if host == "" {
		host = defaultHost
	}
	if port == "" {
		port = defaultPort
	}
	return fmt.Sprintf("http://%s:%s", host, port)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(val); err == nil {
		return n
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	return defaultVal
}
