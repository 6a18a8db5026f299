// Package postgres stores OAuth2 tokens in PostgreSQL, one row per account.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/natserract/infusionsoft/pkg/infusionsoft/token"
	"github.com/natserract/infusionsoft/pkg/tokenstore"
	"go.uber.org/zap"
)

const Schema = `
CREATE TABLE IF NOT EXISTS oauth_tokens (
	id          UUID PRIMARY KEY,
	account     TEXT NOT NULL UNIQUE,
	token       JSONB NOT NULL,
	expires_at  TIMESTAMPTZ NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const (
	selectToken = `SELECT token FROM oauth_tokens WHERE account = $1`

	upsertToken = `
INSERT INTO oauth_tokens (id, account, token, expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (account) DO UPDATE
SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, updated_at = now()`
)

// Querier is the subset of *pgxpool.Pool the store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store keeps the token of one account.
type Store struct {
	db      Querier
	account string
	logger  *zap.Logger
}

var _ tokenstore.Store = (*Store)(nil)

func NewStore(db Querier, account string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, account: account, logger: logger}
}

func (s *Store) Load(ctx context.Context) (*token.Token, error) {
	var payload []byte
	if err := s.db.QueryRow(ctx, selectToken, s.account).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tokenstore.ErrNotFound
		}
		s.logger.Error("Failed to load token", zap.String("account", s.account), zap.Error(err))
		return nil, fmt.Errorf("failed to load token for %s: %w", s.account, err)
	}

	tok, err := token.FromJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored token for %s: %w", s.account, err)
	}
	return tok, nil
}

func (s *Store) Save(ctx context.Context, tok *token.Token) error {
	payload, err := tok.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize token: %w", err)
	}

	if _, err := s.db.Exec(ctx, upsertToken, uuid.New(), s.account, payload, tok.ExpiresAt()); err != nil {
		s.logger.Error("Failed to save token", zap.String("account", s.account), zap.Error(err))
		return fmt.Errorf("failed to save token for %s: %w", s.account, err)
	}

	s.logger.Info("Saved token",
		zap.String("account", s.account),
		zap.Time("expires_at", tok.ExpiresAt()))
	return nil
}
