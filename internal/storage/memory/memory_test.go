package memory

import (
	"context"
	"testing"

	"github.com/tacticsboard/board/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

func TestGetPut(t *testing.T) {
	b := New()
	require.NoError(t, b.Init())
	defer b.Close()
	ctx := context.Background()

	_, ok, err := b.Get(ctx, "whiteboard")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte(`{"markers":[],"lines":[]}`)
	require.NoError(t, b.Put(ctx, "whiteboard", value))

	// mutating the caller's slice must not change the stored value
	value[0] = 'X'

	got, ok, err := b.Get(ctx, "whiteboard")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"markers":[],"lines":[]}`, string(got))
}

func TestPutReplaces(t *testing.T) {
	b := New()
	ctx := context.Background()
	require.NoError(t, b.Put(ctx, "k", []byte("1")))
	require.NoError(t, b.Put(ctx, "k", []byte("2")))

	got, _, _ := b.Get(ctx, "k")
	assert.Equal(t, "2", string(got))
}
