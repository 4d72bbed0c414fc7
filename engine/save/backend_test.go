package save

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runBackendContract checks the behaviour every Backend shares.
func runBackendContract(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	names, err := b.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = b.Read(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Write(ctx, "zebra", []byte("z")))
	require.NoError(t, b.Write(ctx, "alpha", []byte("a1")))
	require.NoError(t, b.Write(ctx, "alpha", []byte("a2")))

	data, err := b.Read(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, []byte("a2"), data)

	names, err = b.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zebra"}, names)

	assert.Error(t, b.Write(ctx, "../escape", []byte("x")))
	assert.Error(t, b.Write(ctx, "  ", []byte("x")))
	assert.NotEmpty(t, b.Locate("alpha"))
}

func TestFileBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "adventures")
	b := NewFileBackend(dir)
	runBackendContract(t, b)
	assert.Equal(t, filepath.Join(dir, "alpha.grow"), b.Locate("alpha"))
}

func TestRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	b := NewRedisBackendFromClient(client)
	t.Cleanup(func() { _ = b.Close() })

	runBackendContract(t, b)

	assert.True(t, mr.Exists("grow:adventure:alpha"))
	members, err := mr.Members("grow:adventures")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "zebra"}, members)
}

func TestRedisBackend_Prefix(t *testing.T) {
	mr := miniredis.RunT(t)
	b := NewRedisBackend(mr.Addr(), WithPrefix("test:"))
	t.Cleanup(func() { _ = b.Close() })

	require.NoError(t, b.Write(context.Background(), "x", []byte("data")))
	assert.True(t, mr.Exists("test:adventure:x"))
	assert.Contains(t, b.Locate("x"), "test:adventure:x")
}
