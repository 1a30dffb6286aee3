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

func TestObjectKeyKeepsExtension(t *testing.T) {
	a := ObjectKey("/courses/", "Cover.PNG")
	b := ObjectKey("courses", "Cover.PNG")

	assert.True(t, strings.HasPrefix(a, "courses/"))
	assert.True(t, strings.HasSuffix(a, ".png"))
	assert.NotEqual(t, a, b)
	assert.False(t, strings.Contains(ObjectKey("", "x.pdf"), "/"))
}

func TestDiskStorePutAndDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewDiskStore(root, "/uploads/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "lessons/a.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/lessons/a.txt", url)

	data, err := os.ReadFile(filepath.Join(root, "lessons", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Delete(context.Background(), "lessons/a.txt"))
	_, err = os.Stat(filepath.Join(root, "lessons", "a.txt"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, store.Delete(context.Background(), "lessons/a.txt"))
}

func TestDiskStoreStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewDiskStore(filepath.Join(root, "up"), "/uploads")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../../escape.txt", strings.NewReader("x"), 1, "text/plain")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "up", "escape.txt"))
	assert.NoError(t, err)
}

func TestSpacesURL(t *testing.T) {
	s, err := NewSpacesStore(SpacesConfig{Bucket: "edu", Region: "nyc3", Endpoint: "https://nyc3.digitaloceanspaces.com"})
	require.NoError(t, err)
	assert.Equal(t, "https://edu.nyc3.digitaloceanspaces.com/a/b.png", s.URL("a/b.png"))

	s.cdnURL = "https://cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/a/b.png", s.URL("a/b.png"))
}
