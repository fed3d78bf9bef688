package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	appconfig "github.com/wolfman30/inmobiliaria-premium/internal/config"
	"github.com/wolfman30/inmobiliaria-premium/internal/leads"
	appmigrations "github.com/wolfman30/inmobiliaria-premium/migrations"
	"github.com/wolfman30/inmobiliaria-premium/pkg/logging"
)

// LeadStore is the repository plus the function that releases it.
type LeadStore struct {
	Repo    leads.Repository
	Backend string
	Close   func()
}

// BuildLeadStore picks the lead backend: memory when USE_MEMORY_STORE is
// set, Postgres when DATABASE_URL is set (migrations are applied first),
// SQLite otherwise.
func BuildLeadStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*LeadStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch {
	case cfg.UseMemoryStore:
		logger.Warn("using in-memory lead store; leads are lost on restart")
		return &LeadStore{Repo: leads.NewInMemoryRepository(), Backend: "memory", Close: func() {}}, nil

	case strings.TrimSpace(cfg.DatabaseURL) != "":
		if err := MigrateDatabase(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
		}
		logger.Info("lead store ready", "backend", "postgres")
		return &LeadStore{Repo: leads.NewPostgresRepository(pool), Backend: "postgres", Close: pool.Close}, nil

	default:
		repo, err := leads.OpenSQLiteRepository(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: open sqlite: %w", err)
		}
		logger.Info("lead store ready", "backend", "sqlite", "path", cfg.SQLitePath)
		return &LeadStore{Repo: repo, Backend: "sqlite", Close: func() { _ = repo.Close() }}, nil
	}
}

// MigrateDatabase applies the embedded Postgres migrations. Already being
// at the latest version is not an error.
func MigrateDatabase(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("bootstrap: open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	m, err := NewMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("bootstrap: migrate up: %w", err)
	}
	return nil
}

// NewMigrator builds a migrate instance over the embedded migration files.
func NewMigrator(db *sql.DB) (*migrate.Migrate, error) {
	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: db driver: %w", err)
	}
	srcDriver, err := iofs.New(appmigrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("bootstrap: source driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: create migrator: %w", err)
	}
	return m, nil
}
