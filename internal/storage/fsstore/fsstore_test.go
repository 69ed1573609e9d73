package fsstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/gray-logic-registry/internal/registry"
)

func loadAll(t *testing.T, s *Store, p registry.Path) (map[string][]byte, []string, error) {
	t.Helper()
	got := map[string][]byte{}
	var order []string
	err := s.Load(context.Background(), p, func(p registry.Path, v registry.Value) error {
		assert.Equal(t, registry.TypeNone, v.Type)
		got[p.String()] = v.Buf
		order = append(order, p.String())
		return nil
	})
	return got, order, err
}

func TestSaveWritesRawFiles(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, registry.MustParsePath("1/0/0/2"), registry.Uint16Value(0x0201)))

	data, err := os.ReadFile(filepath.Join(s.Root(), "1", "0", "0", "2"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, data)

	err = s.Save(ctx, registry.MustParsePath("1/0/0"), registry.Uint8Value(1))
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestLoad(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, registry.MustParsePath("1/0/0/10"), registry.Uint8Value(10)))
	require.NoError(t, s.Save(ctx, registry.MustParsePath("1/0/0/2"), registry.Uint8Value(2)))
	require.NoError(t, s.Save(ctx, registry.MustParsePath("0/0/0/0/1"), registry.StringValue("host")))

	got, order, err := loadAll(t, s, registry.RootPath())
	require.NoError(t, err)
	assert.Equal(t, []string{"0/0/0/0/1", "1/0/0/2", "1/0/0/10"}, order)
	assert.Equal(t, []byte("host"), got["0/0/0/0/1"])

	got, _, err = loadAll(t, s, registry.NamespacePath(registry.NamespaceApp))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, _, err = loadAll(t, s, registry.MustParsePath("1/0/0/2"))
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"1/0/0/2": {2}}, got)
}

func TestLoadMissingRoot(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "absent"))
	got, _, err := loadAll(t, s, registry.RootPath())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadSkipsInvalidEntries(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Save(context.Background(), registry.MustParsePath("1/0/0/0"), registry.Uint8Value(7)))
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "1", "notes.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "1", ".0.tmp-123"), []byte("x"), 0600))

	got, _, err := loadAll(t, s, registry.RootPath())
	assert.ErrorIs(t, err, ErrInvalidEntry)
	assert.Equal(t, map[string][]byte{"1/0/0/0": {7}}, got)
}

func TestLookup(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()
	p := registry.MustParsePath("1/0/0/1")

	_, ok, err := s.Lookup(ctx, p)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, p, registry.Uint8Value(3)))
	v, ok, err := s.Lookup(ctx, p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, registry.RawValue([]byte{3}), v)
}

func TestWatchReportsChangedParameters(t *testing.T) {
	s := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 16)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, func(p registry.Path) { changed <- p.String() })
	}()

	// Give the watcher time to register the root.
	time.Sleep(100 * time.Millisecond)

	// New directories are picked up, then files inside them.
	require.NoError(t, os.MkdirAll(filepath.Join(s.Root(), "1", "0", "0"), 0750))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, s.Save(context.Background(), registry.MustParsePath("1/0/0/1"), registry.Uint8Value(9)))

	select {
	case p := <-changed:
		assert.Equal(t, "1/0/0/1", p)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
