package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-menu-service/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir, "http://localhost:8080/static/images/")
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := store.Save(ctx, "Borscht.JPG", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "http://localhost:8080/static/images/"))
	assert.True(t, strings.HasSuffix(ref, ".jpg"))

	stored := filepath.Join(dir, filepath.Base(ref))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, store.Delete(ctx, ref))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	require.NoError(t, store.Delete(ctx, ref))

	assert.Error(t, store.Delete(ctx, "https://elsewhere.example/x.png"))
}
