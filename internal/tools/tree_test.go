package tools

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_SortsSkipsAndMarksDirs(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{"src", ".git", "node_modules", ".venv", "build"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, d), 0o755))
	}
	for _, f := range []string{"README.md", "go.mod", "dist", ".env"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0o644))
	}

	got, err := Tree(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{".env", "README.md", "go.mod", "src/"}, got)
}

func TestTree_FollowsDirSymlinks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "real"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(dir, "real"), filepath.Join(dir, "link")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "dangling")))

	got, err := Tree(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"dangling", "link/", "real/"}, got)
}

func TestTree_Caps(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < MaxTreeEntries+20; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("f%03d", i)), nil, 0o644))
	}

	got, err := Tree(dir)
	require.NoError(t, err)
	require.Len(t, got, MaxTreeEntries)
	assert.Equal(t, "f000", got[0])
	assert.Equal(t, "f079", got[MaxTreeEntries-1])
}

func TestTree_MissingDir(t *testing.T) {
	_, err := Tree(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestWriteTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "cmd"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), nil, 0o644))

	var buf bytes.Buffer
	require.NoError(t, WriteTree(&buf, dir))
	assert.Equal(t, "cmd/\nmain.go\n", buf.String())
}
