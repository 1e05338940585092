package adapters

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalMediaStore_SaveAndList(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audio")
	store := NewLocalMediaStore(testLogger())

	path, err := store.Save(context.Background(), dir, "slide_page_02.wav", strings.NewReader("two"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "slide_page_02.wav"), path)

	_, err = store.Save(context.Background(), dir, "slide_page_01.WAV", strings.NewReader("one"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.wav"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.wav"), 0o755))

	files, err := store.List(context.Background(), dir, []string{".wav"})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "slide_page_01.WAV"), files[0].FileName)
	assert.Equal(t, int64(3), files[0].Size)
	assert.Equal(t, filepath.Join(dir, "slide_page_02.wav"), files[1].FileName)

	// no temp files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestLocalMediaStore_Overwrite(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalMediaStore(testLogger())

	_, err := store.Save(context.Background(), dir, "a.wav", strings.NewReader("first"))
	require.NoError(t, err)
	path, err := store.Save(context.Background(), dir, "a.wav", strings.NewReader("second"))
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
}

func TestLocalMediaStore_ListMissingDir(t *testing.T) {
	store := NewLocalMediaStore(testLogger())
	_, err := store.List(context.Background(), filepath.Join(t.TempDir(), "nope"), []string{".png"})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
