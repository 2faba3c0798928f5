// SPDX-License-Identifier: MIT

// Package store persists Boolean network models in a local SQLite
// database. Model sources are validated before they are written, so
// everything read back is guaranteed to parse.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/sybila/biodivine/internal/bn"
	"github.com/sybila/biodivine/internal/log"
	"github.com/sybila/biodivine/internal/metrics"
)

// ErrNotFound is returned when no model matches the given id or name.
var ErrNotFound = errors.New("model not found")

// ErrInvalidModel is returned by SaveModel when the submitted source or
// name cannot form a valid model. Handlers map it to a client error.
var ErrInvalidModel = errors.New("invalid model")

// Model is a stored Boolean network together with bookkeeping data.
type Model struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Source      string    `json:"source"`
	Variables   int       `json:"variables"`
	Regulations int       `json:"regulations"`
	Parameters  int       `json:"parameters"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Network parses the stored source. The source was validated on write,
// so an error here indicates store corruption.
func (m Model) Network() (*bn.BooleanNetwork, error) {
	return bn.ParseBooleanNetwork(m.Source)
}

// Store is a SQLite-backed model repository, safe for concurrent use.
type Store struct {
	db *sql.DB
}

const busyTimeoutMS = 5000

// Open creates (or opens) the model database under dir and applies
// pending schema migrations.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	path := filepath.Join(dir, "models.db")
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		path, busyTimeoutMS,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open model database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping model database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable, used by readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate brings the schema up to the current version, tracked via
// PRAGMA user_version.
func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	migrations := []string{
		`CREATE TABLE models (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL UNIQUE,
			slug        TEXT NOT NULL,
			source      TEXT NOT NULL,
			variables   INTEGER NOT NULL,
			regulations INTEGER NOT NULL,
			parameters  INTEGER NOT NULL,
			created_at  INTEGER NOT NULL,
			updated_at  INTEGER NOT NULL
		);
		CREATE INDEX idx_models_name ON models(name);`,
	}

	for next := version; next < len(migrations); next++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next+1, err)
		}
		if _, err := tx.ExecContext(ctx, migrations[next]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", next+1, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", next+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bump schema version to %d: %w", next+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", next+1, err)
		}
		logger := log.WithComponent("store")
		logger.Info().Int("version", next+1).Msg("applied schema migration")
	}
	return nil
}

// SaveModel validates source as a Boolean network and upserts it under
// name. An existing model with the same name is replaced and keeps its
// id and creation time.
func (s *Store) SaveModel(ctx context.Context, name, source string) (Model, error) {
	if name == "" {
		return Model{}, fmt.Errorf("%w: name must not be empty", ErrInvalidModel)
	}
	network, err := bn.ParseBooleanNetwork(source)
	if err != nil {
		return Model{}, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	model := Model{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        Slugify(name),
		Source:      source,
		Variables:   network.Graph().NumVars(),
		Regulations: len(network.Graph().Regulations()),
		Parameters:  len(network.Parameters()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	const query = `
		INSERT INTO models (id, name, slug, source, variables, regulations, parameters, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			slug        = excluded.slug,
			source      = excluded.source,
			variables   = excluded.variables,
			regulations = excluded.regulations,
			parameters  = excluded.parameters,
			updated_at  = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query,
		model.ID, model.Name, model.Slug, model.Source,
		model.Variables, model.Regulations, model.Parameters,
		model.CreatedAt.Unix(), model.UpdatedAt.Unix(),
	); err != nil {
		return Model{}, fmt.Errorf("save model %s: %w", name, err)
	}

	// The upsert may have kept the original row id and creation time.
	stored, err := s.ModelByName(ctx, name)
	if err != nil {
		return Model{}, err
	}
	s.updateGauge(ctx)
	return stored, nil
}

const modelColumns = "id, name, slug, source, variables, regulations, parameters, created_at, updated_at"

func scanModel(row *sql.Row) (Model, error) {
	var m Model
	var created, updated int64
	err := row.Scan(&m.ID, &m.Name, &m.Slug, &m.Source, &m.Variables, &m.Regulations, &m.Parameters, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Model{}, ErrNotFound
	}
	if err != nil {
		return Model{}, fmt.Errorf("scan model: %w", err)
	}
	m.CreatedAt = time.Unix(created, 0).UTC()
	m.UpdatedAt = time.Unix(updated, 0).UTC()
	return m, nil
}

// Model returns the model with the given id.
func (s *Store) Model(ctx context.Context, id string) (Model, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+modelColumns+" FROM models WHERE id = ?", id)
	return scanModel(row)
}

// ModelByName returns the model with the given unique name.
func (s *Store) ModelByName(ctx context.Context, name string) (Model, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+modelColumns+" FROM models WHERE name = ?", name)
	return scanModel(row)
}

// ListModels returns all models ordered by name.
func (s *Store) ListModels(ctx context.Context) ([]Model, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+modelColumns+" FROM models ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var models []Model
	for rows.Next() {
		var m Model
		var created, updated int64
		if err := rows.Scan(&m.ID, &m.Name, &m.Slug, &m.Source, &m.Variables, &m.Regulations, &m.Parameters, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan model: %w", err)
		}
		m.CreatedAt = time.Unix(created, 0).UTC()
		m.UpdatedAt = time.Unix(updated, 0).UTC()
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return models, nil
}

// DeleteModel removes the model with the given id.
func (s *Store) DeleteModel(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM models WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete model %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete model %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	s.updateGauge(ctx)
	return nil
}

func (s *Store) updateGauge(ctx context.Context) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM models").Scan(&count); err == nil {
		metrics.ModelsStored.Set(float64(count))
	}
}
