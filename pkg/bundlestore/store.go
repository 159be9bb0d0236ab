// Package bundlestore is the durable half of bundle persistence: signed
// bundles live in-memory on the Orchestrator for the lifetime of a process,
// but GET /bundle/{bundleId} must still answer after a restart, so every
// signed bundle is also written here.
package bundlestore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

//go:embed migrations
var migrationsFS embed.FS

// Store is a PostgreSQL-backed signed-bundle archive.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// NewStore opens a pooled connection to cfg's database, applies any
// pending embedded migrations, and returns a ready Store.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	db, err := sql.Open("pgx", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("bundlestore: open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bundlestore: ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bundlestore: run migrations: %w", err)
	}

	return &Store{db: db, log: slog.With("component", "bundlestore")}, nil
}

// NewStoreFromDB wraps an already-open, already-migrated *sql.DB. Used by
// tests that manage their own database lifecycle (e.g. a shared
// testcontainer across a package's test suite).
func NewStoreFromDB(db *sql.DB) *Store {
	return &Store{db: db, log: slog.With("component", "bundlestore")}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying connection pool for health checks.
func (s *Store) DB() *sql.DB { return s.db }

func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "bundles", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	// Don't call m.Close — it would close db itself via the postgres driver,
	// and the pool is owned by the caller.
	return sourceDriver.Close()
}

// InsertBundle persists signed as a new row, failing if its id collides
// with an existing one.
func (s *Store) InsertBundle(ctx context.Context, signed models.SignedBundle) error {
	data, err := json.Marshal(signed.Bundle)
	if err != nil {
		return fmt.Errorf("bundlestore: marshal bundle: %w", err)
	}
	sig, err := json.Marshal(signed.Signature)
	if err != nil {
		return fmt.Errorf("bundlestore: marshal signature: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO bundles (id, bundle_type, created_at, data, signature) VALUES ($1, $2, $3, $4, $5)`,
		signed.ID, string(signed.Type), signed.CreatedAt, data, sig,
	)
	if err != nil {
		return fmt.Errorf("bundlestore: insert bundle %s: %w", signed.ID, err)
	}
	return nil
}

// GetBundle fetches one signed bundle by id.
func (s *Store) GetBundle(ctx context.Context, bundleID string) (models.SignedBundle, error) {
	var data, sig []byte
	err := s.db.QueryRowContext(ctx, `SELECT data, signature FROM bundles WHERE id = $1`, bundleID).Scan(&data, &sig)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SignedBundle{}, fmt.Errorf("%w: %s", ErrBundleNotFound, bundleID)
	}
	if err != nil {
		return models.SignedBundle{}, fmt.Errorf("bundlestore: fetch bundle %s: %w", bundleID, err)
	}
	return decodeSignedBundle(data, sig)
}

// ListBundles returns up to limit bundles, newest-first. limit <= 0 means
// unbounded.
func (s *Store) ListBundles(ctx context.Context, limit int) ([]models.SignedBundle, error) {
	query := `SELECT data, signature FROM bundles ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("bundlestore: list bundles: %w", err)
	}
	defer rows.Close()

	var out []models.SignedBundle
	for rows.Next() {
		var data, sig []byte
		if err := rows.Scan(&data, &sig); err != nil {
			return nil, fmt.Errorf("bundlestore: scan bundle row: %w", err)
		}
		sb, err := decodeSignedBundle(data, sig)
		if err != nil {
			return nil, err
		}
		out = append(out, sb)
	}
	return out, rows.Err()
}

// DeleteOlderThan removes bundles inserted before cutoff, returning how
// many rows were removed.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bundles WHERE inserted_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("bundlestore: delete stale bundles: %w", err)
	}
	return res.RowsAffected()
}

func decodeSignedBundle(data, sig []byte) (models.SignedBundle, error) {
	var sb models.SignedBundle
	if err := json.Unmarshal(data, &sb.Bundle); err != nil {
		return models.SignedBundle{}, fmt.Errorf("bundlestore: unmarshal bundle: %w", err)
	}
	if err := json.Unmarshal(sig, &sb.Signature); err != nil {
		return models.SignedBundle{}, fmt.Errorf("bundlestore: unmarshal signature: %w", err)
	}
	return sb, nil
}
