package services

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore_SaveAndRemove(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	name, err := store.Save("Report.PDF", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".pdf"))

	p, err := store.Path(name)
	require.NoError(t, err)
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	require.NoError(t, store.Remove(name))
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Remove(name), "removing twice is fine")
}

func TestDiskStore_PathRejectsTraversal(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	for _, bad := range []string{"../etc/passwd", "a/b.txt", "..", ""} {
		_, err := store.Path(bad)
		assert.Error(t, err, bad)
	}
}
