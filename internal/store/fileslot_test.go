package store

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSlots_LoadEmpty(t *testing.T) {
	slots := NewFileSlots(memfs.New())

	_, err := slots.Load(context.Background(), "cart-items")
	assert.ErrorIs(t, err, ErrSlotEmpty)
}

func TestFileSlots_RoundTrip(t *testing.T) {
	fs := memfs.New()
	slots := NewFileSlots(fs)
	ctx := context.Background()

	require.NoError(t, slots.Save(ctx, "cart-items", []byte(`[1]`)))
	require.NoError(t, slots.Save(ctx, "cart-items", []byte(`[1,2]`)))

	got, err := slots.Load(ctx, "cart-items")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))

	raw, err := util.ReadFile(fs, "cart-items.json")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(raw))

	_, err = fs.Stat(".cart-items.tmp")
	assert.Error(t, err, "temp file should be renamed away")
}

func TestFileSlots_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	require.NoError(t, NewFileSlots(osfs.New(dir)).Save(ctx, "cart-items", []byte(`["persisted"]`)))

	got, err := NewFileSlots(osfs.New(dir)).Load(ctx, "cart-items")
	require.NoError(t, err)
	assert.Equal(t, `["persisted"]`, string(got))
}

func TestFileSlots_RejectsPathKeys(t *testing.T) {
	slots := NewFileSlots(memfs.New())
	ctx := context.Background()

	for _, key := range []string{"", ".", "..", "a/b", `a\b`} {
		assert.Error(t, slots.Save(ctx, key, []byte(`[]`)), "key %q", key)
		_, err := slots.Load(ctx, key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestFileSlots_CancelledContext(t *testing.T) {
	slots := NewFileSlots(memfs.New())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, slots.Save(ctx, "cart-items", []byte(`[]`)), context.Canceled)
}
