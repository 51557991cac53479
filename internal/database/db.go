package database

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// SnapshotFile owns the single backing file holding the serialized state.
// Writes go to a temporary sibling first and are renamed into place, so a
// crash mid-write never leaves a partial canonical file behind.
type SnapshotFile struct {
	path string
	log  zerolog.Logger
}

// NewSnapshotFile creates a SnapshotFile for the given canonical path.
func NewSnapshotFile(path string, log zerolog.Logger) *SnapshotFile {
	return &SnapshotFile{
		path: path,
		log:  log.With().Str("component", "database").Logger(),
	}
}

// Path returns the canonical backing file path.
func (f *SnapshotFile) Path() string {
	return f.path
}

// Read returns the current backing file contents. A missing file is not an
// error: it returns (nil, nil) so the caller can initialize fresh state.
func (f *SnapshotFile) Read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read snapshot '%s'", f.path)
	}
	return data, nil
}

// Write durably replaces the backing file with data. The temporary file is
// removed on rename failure so the canonical path is never half-written.
func (f *SnapshotFile) Write(data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "make dir '%s'", dir)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "write snapshot '%s'", tmp)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "rename snapshot '%s'", f.path)
	}
	return nil
}
