// Package tools implements the read-only helpers the provisioned
// instructions call through their wrapper scripts. Both print plain text to
// stdout and are safe to run from any working directory.
package tools

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MaxTreeEntries caps the number of entries Tree returns.
const MaxTreeEntries = 80

var treeSkip = map[string]bool{
	".git":         true,
	".venv":        true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
}

// Tree lists the top level of dir sorted by name. VCS, virtualenv, dependency
// and build output directories are skipped; directories get a trailing slash.
func Tree(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if treeSkip[e.Name()] {
			continue
		}
		name := e.Name()
		if isDir(dir, e) {
			name += "/"
		}
		out = append(out, name)
		if len(out) == MaxTreeEntries {
			break
		}
	}
	return out, nil
}

// isDir follows symlinks, so a link to a directory is listed as one.
func isDir(dir string, e os.DirEntry) bool {
	if e.Type()&os.ModeSymlink == 0 {
		return e.IsDir()
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.IsDir()
}

// WriteTree writes Tree(dir) to w, one entry per line.
func WriteTree(w io.Writer, dir string) error {
	names, err := Tree(dir)
	if err != nil {
		return err
	}
	for _, n := range names {
		if _, err := fmt.Fprintln(w, n); err != nil {
			return err
		}
	}
	return nil
}
