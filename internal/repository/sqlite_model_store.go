package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"RiskRegime/internal/domain/models"
	domrepo "RiskRegime/internal/domain/repository"
	"RiskRegime/pkg/logger"
)

var _ domrepo.ModelStore = (*SQLiteModelStore)(nil)

// SQLiteModelStore keeps models in a single-file database, one row per key.
type SQLiteModelStore struct {
	db *sql.DB
	l  *logger.Logger
}

// NewSQLiteModelStore opens (or creates) the database and runs migrations.
func NewSQLiteModelStore(path string, l *logger.Logger) (*SQLiteModelStore, error) {
	if dir := filepath.Dir(path); dir != "" && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteModelStore{db: db, l: l.Component("sqlite_model_store")}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteModelStore) migrate() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL`,
		`CREATE TABLE IF NOT EXISTS models (
			key         TEXT PRIMARY KEY,
			model_id    TEXT NOT NULL,
			contract    TEXT NOT NULL,
			trained_at  INTEGER NOT NULL,
			saved_at    INTEGER NOT NULL,
			payload     BLOB NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteModelStore) Save(ctx context.Context, m *models.TrainedModel, key string) error {
	if err := ValidateModelKey(key); err != nil {
		return err
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO models (key, model_id, contract, trained_at, saved_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			model_id = excluded.model_id,
			contract = excluded.contract,
			trained_at = excluded.trained_at,
			saved_at = excluded.saved_at,
			payload = excluded.payload`,
		key, m.ID, m.Contract.String(), m.TrainedAt.Unix(), time.Now().Unix(), payload)
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	s.l.Info("model saved", logger.String("key", key), logger.String("model_id", m.ID))
	return nil
}

func (s *SQLiteModelStore) Load(ctx context.Context, key string) (*models.TrainedModel, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM models WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("model %q: %w", key, models.ErrModelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	var m models.TrainedModel
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("decode model %q: %w", key, err)
	}
	return &m, nil
}

func (s *SQLiteModelStore) Close() error { return s.db.Close() }
