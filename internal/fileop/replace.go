package fileop

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// BackupSuffix is appended to the target path when a backup is requested.
const BackupSuffix = ".bak"

// Options configures Replace.
type Options struct {
	// Backup keeps a copy of the previous content at path+BackupSuffix.
	Backup bool

	// DryRun validates that the target exists and stops before writing.
	DryRun bool
}

// Replace overwrites an existing file with content in one step.
//
// The content is staged in a temp file next to the target and renamed over
// it, so readers see either the old or the new document, never a partial
// one. The original file mode is kept. On failure every staged file is
// removed and the target is left untouched.
func Replace(fsys afero.Fs, path string, content []byte, opts Options) error {
	info, err := fsys.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if opts.DryRun {
		return nil
	}

	tx := newTransaction(fsys)

	tmpPath, err := tx.stage(path, content, info.Mode().Perm())
	if err != nil {
		tx.rollback()
		return err
	}

	if opts.Backup {
		original, err := afero.ReadFile(fsys, path)
		if err != nil {
			tx.rollback()
			return fmt.Errorf("reading %s for backup: %w", path, err)
		}
		if err := tx.write(path+BackupSuffix, original, info.Mode().Perm()); err != nil {
			tx.rollback()
			return err
		}
	}

	if err := fsys.Rename(tmpPath, path); err != nil {
		tx.rollback()
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	return nil
}

// transaction tracks files created while replacing a target so they can
// be removed if a later step fails.
type transaction struct {
	fs      afero.Fs
	written []string
}

func newTransaction(fsys afero.Fs) *transaction {
	return &transaction{fs: fsys}
}

// stage writes content to a hidden temp file beside path.
func (t *transaction) stage(path string, content []byte, mode os.FileMode) (string, error) {
	dir := filepath.Dir(path)
	pattern := "." + filepath.Base(path) + ".prismafix-*"

	f, err := afero.TempFile(t.fs, dir, pattern)
	if err != nil {
		return "", fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	name := f.Name()
	t.written = append(t.written, name)

	if _, err := f.Write(content); err != nil {
		f.Close()
		return "", fmt.Errorf("writing temp file %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing temp file %s: %w", name, err)
	}
	if err := t.fs.Chmod(name, mode); err != nil {
		return "", fmt.Errorf("setting mode on %s: %w", name, err)
	}

	return name, nil
}

func (t *transaction) write(path string, content []byte, mode os.FileMode) error {
	if err := afero.WriteFile(t.fs, path, content, mode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	t.written = append(t.written, path)
	return nil
}

// rollback removes everything written so far. Best effort.
func (t *transaction) rollback() {
	for _, path := range t.written {
		_ = t.fs.Remove(path)
	}
	t.written = nil
}
