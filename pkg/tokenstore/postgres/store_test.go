package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/natserract/infusionsoft/pkg/infusionsoft/token"
	"github.com/natserract/infusionsoft/pkg/tokenstore"
	"github.com/natserract/infusionsoft/pkg/tokenstore/postgres"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeRow returns payload from Scan, or err.
type fakeRow struct {
	payload []byte
	err     error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.payload
	return nil
}

// memDB keeps rows keyed by account.
type memDB struct {
	rows    map[string][]byte
	execErr error
	lastID  uuid.UUID
}

func (m *memDB) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	if m.execErr != nil {
		return pgconn.CommandTag{}, m.execErr
	}
	m.lastID = args[0].(uuid.UUID)
	m.rows[args[1].(string)] = args[2].([]byte)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (m *memDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	payload, ok := m.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{payload: payload}
}

func TestStoreRoundTrip(t *testing.T) {
	db := &memDB{rows: map[string][]byte{}}
	store := postgres.NewStore(db, "ab123", zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, tokenstore.ErrNotFound)

	expiresAt := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, token.New(token.Fields{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    3600,
		ExpiresAt:    expiresAt,
	})))
	require.NotEqual(t, uuid.Nil, db.lastID)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "access", loaded.AccessToken())
	require.Equal(t, "refresh", loaded.RefreshToken())
	require.True(t, expiresAt.Equal(loaded.ExpiresAt()))

	_, err = postgres.NewStore(db, "other", zaptest.NewLogger(t)).Load(ctx)
	require.ErrorIs(t, err, tokenstore.ErrNotFound)
}

func TestStoreErrors(t *testing.T) {
	boom := errors.New("connection refused")
	db := &memDB{rows: map[string][]byte{"ab123": []byte("{")}, execErr: boom}
	store := postgres.NewStore(db, "ab123", zaptest.NewLogger(t))

	err := store.Save(context.Background(), token.New(token.Fields{AccessToken: "a", ExpiresIn: 1}))
	require.ErrorIs(t, err, boom)

	_, err = store.Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, tokenstore.ErrNotFound)
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "ifs")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_SSLMODE", "")

	cfg, err := postgres.NewConfig()
	require.NoError(t, err)
	require.Equal(t, "host=db.internal port=6543 user=ifs password=pw dbname=infusionsoft sslmode=disable", cfg.DSN())

	t.Setenv("DB_PORT", "x")
	_, err = postgres.NewConfig()
	require.Error(t, err)
}
