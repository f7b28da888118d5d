package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunToolTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "internal"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "node_modules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), nil, 0o644))
	stdout, _ := withIO(t, toolTreeCmd, "")

	require.NoError(t, runToolTree(toolTreeCmd, []string{dir}))
	assert.Equal(t, "go.mod\ninternal/\n", stdout.String())
}

func TestRunToolTree_MissingDir(t *testing.T) {
	withIO(t, toolTreeCmd, "")
	assert.Error(t, runToolTree(toolTreeCmd, []string{filepath.Join(t.TempDir(), "nope")}))
}

func TestRunToolGit_NeverFails(t *testing.T) {
	withIO(t, toolGitCmd, "")
	assert.NoError(t, runToolGit(toolGitCmd, []string{"definitely-not-a-git-subcommand"}))
}
