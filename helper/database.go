package helper

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds everything needed to open a connection to the
// Postgres-backed graph store.
type DatabaseConfiguration struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// Database wraps a *sql.DB with the logger every handler logs through, so
// connection lifecycle and query errors land in the same structured stream.
type Database struct {
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens a connection pool for appName against config. Connection
// errors surface on first use (lib/pq connects lazily); callers should still
// ping or run a query shortly after to fail fast on misconfiguration.
func NewDatabase(appName string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s application_name=%s",
		config.Host, config.Port, config.Database, config.Username, config.Password, sslMode, appName,
	)
	if config.Schema != "" {
		dsn += fmt.Sprintf(" search_path=%s", config.Schema)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Error("failed to open database connection", slog.String("error", err.Error()))
		return &Database{Instance: nil, Logger: logger}
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Database{
		Instance: db,
		Logger:   logger,
	}
}

// Close releases the underlying connection pool.
func (d *Database) Close() error {
	if d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}
