package tokenstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/natserract/infusionsoft/pkg/infusionsoft/token"
	"github.com/natserract/infusionsoft/pkg/tokenstore"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	store := tokenstore.NewFileStore(path, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, tokenstore.ErrNotFound)

	expiresAt := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	tok := token.New(token.Fields{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    86400,
		ExpiresAt:    expiresAt,
		Extra:        map[string]any{"scope": "full"},
	})
	require.NoError(t, store.Save(ctx, tok))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "access", loaded.AccessToken())
	require.Equal(t, "refresh", loaded.RefreshToken())
	require.True(t, expiresAt.Equal(loaded.ExpiresAt()))
	require.Equal(t, map[string]any{"scope": "full"}, loaded.Extra())
}

func TestFileStoreOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := tokenstore.NewFileStore(path, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, token.New(token.Fields{AccessToken: "one", ExpiresIn: 60})))
	require.NoError(t, store.Save(ctx, token.New(token.Fields{AccessToken: "two", ExpiresIn: 60})))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "two", loaded.AccessToken())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := tokenstore.NewFileStore(path, zaptest.NewLogger(t)).Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, tokenstore.ErrNotFound)
}
