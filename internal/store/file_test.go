package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/serroba/linkclean/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	s, err := store.NewFileKV(path)
	require.NoError(t, err)

	kvContract(t, s)

	t.Run("persists across instances", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "selectedLanguage", "de"))

		reopened, err := store.NewFileKV(path)
		require.NoError(t, err)

		value, err := reopened.Get(ctx, "selectedLanguage")

		require.NoError(t, err)
		assert.Equal(t, "de", value)
	})

	t.Run("leaves no temp file behind", func(t *testing.T) {
		_, err := os.Stat(path + ".tmp")

		assert.True(t, os.IsNotExist(err))
	})

	t.Run("reports a corrupt file", func(t *testing.T) {
		corrupt := filepath.Join(t.TempDir(), "corrupt.json")
		require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0o600))

		broken, err := store.NewFileKV(corrupt)
		require.NoError(t, err)

		_, err = broken.Get(context.Background(), "recentLinks")

		require.Error(t, err)
		assert.NotErrorIs(t, err, store.ErrNotFound)
	})
}
