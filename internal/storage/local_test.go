package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPutWritesSidecarAndObject(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	size, err := store.Put(ctx, "uploads/t1/1700000000-page.jpg", strings.NewReader("jpeg-bytes"), ObjectAttrs{
		ContentType: "image/jpeg",
		Metadata:    map[string]string{"teacherId": "t1", "topic": "Photosynthesis"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 10, size)

	data, err := store.Read(ctx, "uploads/t1/1700000000-page.jpg")
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	ev, err := store.Event(ctx, "uploads/t1/1700000000-page.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ev.ContentType)
	assert.Equal(t, "Photosynthesis", ev.Metadata["topic"])
	assert.EqualValues(t, 10, ev.Size)

	_, err = os.Stat(filepath.Join(store.Root(), "uploads", "t1", "1700000000-page.jpg.part"))
	assert.True(t, os.IsNotExist(err), "temp file must not survive a successful put")
}

func TestLocalAttrsWithoutSidecar(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	full := filepath.Join(store.Root(), "uploads", "note.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))

	attrs, err := store.Attrs(context.Background(), "uploads/note.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", attrs.ContentType)
	assert.Empty(t, attrs.Metadata)
}

func TestLocalPathRejectsEscapes(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"", "/etc/passwd", "../secret", "uploads/../../x", "uploads//a", "uploads/a.meta.json", "uploads/a.part"} {
		_, err := store.LocalPath(p)
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}

	_, err = store.LocalPath("uploads/t1/a.jpg")
	assert.NoError(t, err)
}
