package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Staging manages temporary on-disk copies of uploaded payloads. The
// directory is shared process-wide and created lazily on first use.
//
// Filenames are derived from the upload, so two concurrent stages of the
// same name race on one path. Known gap, pending per-request namespacing.
type Staging struct {
	dir string
}

// NewStaging builds a staging area rooted at dir.
func NewStaging(dir string) *Staging {
	if dir == "" {
		dir = "temp"
	}
	return &Staging{dir: dir}
}

// Dir returns the staging directory path.
func (s *Staging) Dir() string {
	return s.dir
}

// Stage writes the upload to the staging directory and returns a handle.
// Callers must arrange for Release to run on every exit path of the
// operation that staged the artifact.
func (s *Staging) Stage(name string, r io.Reader) (*StagedFile, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	path := filepath.Join(s.dir, filepath.Base(name))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("write staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("close staged file: %w", err)
	}
	return &StagedFile{path: path}, nil
}

// StagedFile is a handle on one staged artifact, scoped to a single
// ingestion call.
type StagedFile struct {
	path     string
	released bool
}

// Path returns the on-disk location of the staged bytes.
func (f *StagedFile) Path() string {
	return f.path
}

// Release deletes the staged file. It is idempotent and tolerates the file
// already being gone.
func (f *StagedFile) Release() error {
	if f == nil || f.released {
		return nil
	}
	f.released = true
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove staged file: %w", err)
	}
	return nil
}
