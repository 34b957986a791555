package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS albums (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		album_id VARCHAR(64) NOT NULL,
		display_name VARCHAR(120) NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT NULL,
		cover_photo_id VARCHAR(255) NULL,
		created_at DATETIME(6) NOT NULL,
		UNIQUE KEY uk_album (album_id),
		INDEX idx_owner_created (display_name, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS album_photos (
		album_id VARCHAR(64) NOT NULL,
		photo_id VARCHAR(255) NOT NULL,
		position INT NOT NULL,
		PRIMARY KEY (album_id, photo_id),
		INDEX idx_album_position (album_id, position),
		CONSTRAINT fk_album_photos_album FOREIGN KEY (album_id)
			REFERENCES albums (album_id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Open connects to MySQL. Times are always read and written as UTC.
func Open(dsn string) (*sql.DB, error) {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing MYSQL_DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	// oversized values must fail rather than be truncated
	if _, ok := cfg.Params["sql_mode"]; !ok {
		if cfg.Params == nil {
			cfg.Params = map[string]string{}
		}
		cfg.Params["sql_mode"] = "'STRICT_ALL_TABLES,NO_ENGINE_SUBSTITUTION'"
	}

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}
	// Connections are recycled before common server and proxy idle cutoffs.
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	return db, nil
}

// Migrate creates the albums schema. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("running migration: %w", err)
		}
	}
	return nil
}
