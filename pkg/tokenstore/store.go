// Package tokenstore persists the OAuth2 token between runs of a caller. The client
// itself never persists credentials; callers pick a Store.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natserract/infusionsoft/pkg/infusionsoft/token"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Load when no token has been saved yet.
var ErrNotFound = errors.New("token not found")

type Store interface {
	Load(ctx context.Context) (*token.Token, error)
	Save(ctx context.Context, tok *token.Token) error
}

// FileStore keeps the serialized token in a single JSON file.
type FileStore struct {
	path   string
	logger *zap.Logger
}

func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) Load(_ context.Context) (*token.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	tok, err := token.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", s.path, err)
	}
	s.logger.Debug("Loaded token", zap.String("path", s.path), zap.Time("expires_at", tok.ExpiresAt()))
	return tok, nil
}

// Save replaces the file atomically. The file is readable by the owner only.
func (s *FileStore) Save(_ context.Context, tok *token.Token) error {
	data, err := tok.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize token: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}

	s.logger.Info("Saved token", zap.String("path", s.path), zap.Time("expires_at", tok.ExpiresAt()))
	return nil
}
