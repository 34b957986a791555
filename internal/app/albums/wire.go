package albums

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	albumshttp "github.com/albums-service/internal/adapters/http/albums"
	"github.com/albums-service/internal/adapters/http/dependencies"
	boltrepo "github.com/albums-service/internal/adapters/repo/bolt"
	memoryrepo "github.com/albums-service/internal/adapters/repo/memory"
	mysqlrepo "github.com/albums-service/internal/adapters/repo/mysql"
	"github.com/albums-service/internal/core/services"
)

type App struct {
	Handler http.Handler
	Service *services.AlbumService
	Store   services.AlbumStore
	Logger  *slog.Logger

	closers []func() error
}

type WireOptions struct {
	Clock      services.Clock
	Store      services.AlbumStore
	Gateway    services.DependencyGateway
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func Wire(cfg Config, opts *WireOptions) (*App, error) {
	if opts == nil {
		opts = &WireOptions{}
	}
	app := &App{}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		logger = NewLogger(cfg.LogLevel, os.Stdout)
	}
	app.Logger = logger

	var clock services.Clock
	if opts.Clock != nil {
		clock = opts.Clock
	} else {
		clock = services.RealClock{}
	}

	if opts.Store != nil {
		app.Store = opts.Store
	} else {
		store, closeStore, err := openStore(cfg, clock)
		if err != nil {
			return nil, err
		}
		app.Store = store
		if closeStore != nil {
			app.closers = append(app.closers, closeStore)
		}
	}

	var gateway services.DependencyGateway
	if opts.Gateway != nil {
		gateway = opts.Gateway
	} else {
		gateway = dependencies.NewHTTPGateway(dependencies.Config{
			PhotographerURL: cfg.PhotographerURL,
			PhotoURL:        cfg.PhotoURL,
			Timeout:         cfg.DependencyTimeout,
			MaxPhotoBytes:   cfg.MaxPhotoBytes,
		}, opts.HTTPClient)
	}

	archives := services.NewArchiveBuilder(gateway, cfg.FetchConcurrency, logger)
	metadata := services.NewMetadataCollector(gateway, cfg.FetchConcurrency, logger)
	app.Service = services.NewAlbumService(app.Store, gateway, archives, metadata, logger)
	app.Handler = albumshttp.NewRouter(app.Service, logger)

	return app, nil
}

func openStore(cfg Config, clock services.Clock) (services.AlbumStore, func() error, error) {
	switch cfg.RepoBackend {
	case BackendMySQL:
		db, err := mysqlrepo.Open(cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		return mysqlrepo.NewAlbumStore(db, clock), db.Close, nil
	case BackendBolt:
		store, err := boltrepo.Open(cfg.BoltPath, clock)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case BackendMemory, "":
		return memoryrepo.NewAlbumStore(clock), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown REPO_BACKEND %q", cfg.RepoBackend)
	}
}

// Migrate creates the MySQL schema named by cfg.MySQLDSN.
func Migrate(ctx context.Context, cfg Config) error {
	if cfg.MySQLDSN == "" {
		return errors.New("migrate requires MYSQL_DSN")
	}
	db, err := mysqlrepo.Open(cfg.MySQLDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("connecting to MySQL: %w", err)
	}
	return mysqlrepo.Migrate(ctx, db)
}

// Close releases the store's underlying resources.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
