package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"RiskRegime/internal/domain/models"
	domrepo "RiskRegime/internal/domain/repository"
	"RiskRegime/pkg/logger"
)

var _ domrepo.ModelStore = (*FileModelStore)(nil)

var modelKey = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

// ValidateModelKey rejects keys that are not safe as file names or cache keys.
func ValidateModelKey(key string) error {
	if !modelKey.MatchString(key) {
		return fmt.Errorf("invalid model key %q", key)
	}
	return nil
}

// FileModelStore keeps one JSON document per key under a directory.
type FileModelStore struct {
	dir string
	l   *logger.Logger
}

// NewFileModelStore creates dir if needed.
func NewFileModelStore(dir string, l *logger.Logger) (*FileModelStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("model dir: %w", err)
	}
	return &FileModelStore{dir: dir, l: l.Component("file_model_store")}, nil
}

func (s *FileModelStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Save writes to a temp file and renames it over the previous model.
func (s *FileModelStore) Save(_ context.Context, m *models.TrainedModel, key string) error {
	if err := ValidateModelKey(key); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("save model: %w", err)
	}

	s.l.Info("model saved", logger.String("key", key), logger.String("model_id", m.ID), logger.Int("bytes", len(data)))
	return nil
}

func (s *FileModelStore) Load(_ context.Context, key string) (*models.TrainedModel, error) {
	if err := ValidateModelKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("model %q: %w", key, models.ErrModelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	var m models.TrainedModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model %q: %w", key, err)
	}
	return &m, nil
}

func (s *FileModelStore) Close() error { return nil }
