package artifacts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

const filePerm os.FileMode = 0o644

// WriteFileAtomic publishes data at path. The file is fsynced before the
// rename, and a failure leaves any previous file untouched.
func WriteFileAtomic(path string, data []byte) error {
	return WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteAtomic streams content produced by write into path.
func WriteAtomic(path string, write func(io.Writer) error) error {
	pending, err := newPendingFile(path)
	if err != nil {
		return err
	}
	defer func() { _ = pending.Cleanup() }()

	if err := write(pending); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReplaceFile hands an external producer (ffmpeg) a temporary path next to
// path, then renames it into place once produce returns nil. The temporary
// path has no extension, so producers must name the output format explicitly.
func ReplaceFile(path string, produce func(tmpPath string) error) error {
	pending, err := newPendingFile(path)
	if err != nil {
		return err
	}
	defer func() { _ = pending.Cleanup() }()

	if err := produce(pending.Name()); err != nil {
		return err
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

func newPendingFile(path string) (*renameio.PendingFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory for %s: %w", filepath.Base(path), err)
	}
	pending, err := renameio.NewPendingFile(path, renameio.WithTempDir(dir), renameio.WithPermissions(filePerm))
	if err != nil {
		return nil, fmt.Errorf("create pending file for %s: %w", filepath.Base(path), err)
	}
	return pending, nil
}
