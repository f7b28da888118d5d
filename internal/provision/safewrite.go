package provision

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	// BackupInfix separates the original file name from the run stamp.
	BackupInfix = ".bak-"

	// RunStampLayout formats the run-scoped timestamp shared by all backups of one run.
	RunStampLayout = "20060102-150405"
)

// NewRunStamp formats t as a run stamp.
func NewRunStamp(t time.Time) string {
	return t.Format(RunStampLayout)
}

// WriteResult describes one SafeWriter.Write call.
type WriteResult struct {
	Path string `json:"path"`
	// BackupPath is set when this call created (or, in dry-run, would create) a backup.
	BackupPath string `json:"backup_path,omitempty"`
	// Created is true when the target did not exist before.
	Created bool `json:"created"`
	DryRun  bool `json:"dry_run,omitempty"`
}

// SafeWriter replaces files while keeping the pre-run content of anything it
// overwrites in a sibling <name>.bak-<stamp> file. The first overwrite of a
// path in a run creates the backup; later overwrites in the same run leave
// it alone, so it always holds the content from before the run.
type SafeWriter struct {
	stamp  string
	dryRun bool
	logger *zap.Logger
}

// SafeWriterOption configures a SafeWriter.
type SafeWriterOption func(*SafeWriter)

// WithDryRun reports what would be written without touching the filesystem.
func WithDryRun(dryRun bool) SafeWriterOption {
	return func(w *SafeWriter) {
		w.dryRun = dryRun
	}
}

// WithWriterLogger sets the logger.
func WithWriterLogger(l *zap.Logger) SafeWriterOption {
	return func(w *SafeWriter) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewSafeWriter creates a writer whose backups are tagged with stamp.
func NewSafeWriter(stamp string, opts ...SafeWriterOption) (*SafeWriter, error) {
	if stamp == "" {
		return nil, ErrEmptyRunStamp
	}
	w := &SafeWriter{stamp: stamp, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Stamp returns the run stamp.
func (w *SafeWriter) Stamp() string {
	return w.stamp
}

// BackupPath returns the backup location for path in this run.
func (w *SafeWriter) BackupPath(path string) string {
	return path + BackupInfix + w.stamp
}

// Write replaces path with content. An existing file is first copied to its
// backup path unless that backup already exists.
func (w *SafeWriter) Write(path string, content []byte, perm os.FileMode) (WriteResult, error) {
	res := WriteResult{Path: path, DryRun: w.dryRun}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		res.Created = true
	case err != nil:
		return res, fmt.Errorf("stat %s: %w", path, err)
	case info.IsDir():
		return res, fmt.Errorf("%s: %w", path, ErrTargetIsDir)
	}

	if !res.Created {
		backup, err := w.backup(path, info.Mode().Perm())
		if err != nil {
			return res, err
		}
		res.BackupPath = backup
	}

	if w.dryRun {
		return res, nil
	}

	if err := atomicWrite(path, content, perm); err != nil {
		return res, fmt.Errorf("write %s: %w", path, err)
	}
	w.logger.Debug("wrote file",
		zap.String("path", path),
		zap.Bool("created", res.Created),
		zap.String("backup", res.BackupPath),
	)
	return res, nil
}

// backup copies path to its run backup and returns the backup path, or ""
// when the backup for this run already exists.
func (w *SafeWriter) backup(path string, perm os.FileMode) (string, error) {
	bak := w.BackupPath(path)
	if _, err := os.Stat(bak); err == nil {
		return "", nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat backup %s: %w", bak, err)
	}

	if w.dryRun {
		return bak, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s for backup: %w", path, err)
	}
	if err := atomicWrite(bak, data, perm); err != nil {
		return "", fmt.Errorf("create backup %s: %w", bak, err)
	}
	w.logger.Info("backed up existing file", zap.String("path", path), zap.String("backup", bak))
	return bak, nil
}

// atomicWrite writes to a temp file in the target directory, syncs it and
// renames it over path.
func atomicWrite(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath) //nolint:errcheck // cleanup in error path
		}
	}()

	if _, err := tmpFile.Write(content); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("write content: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("sync file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to final: %w", err)
	}

	success = true
	return nil
}
