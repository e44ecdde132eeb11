package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStageWritesAndReleaseRemoves(t *testing.T) {
	staging := NewStaging(t.TempDir())

	staged, err := staging.Stage("audio.mp3", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("Stage error: %v", err)
	}
	data, err := os.ReadFile(staged.Path())
	if err != nil {
		t.Fatalf("read staged file: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected staged content: %q", data)
	}

	if err := staged.Release(); err != nil {
		t.Fatalf("Release error: %v", err)
	}
	if _, err := os.Stat(staged.Path()); !os.IsNotExist(err) {
		t.Fatalf("staged file still exists after release")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	staging := NewStaging(t.TempDir())
	staged, err := staging.Stage("doc.pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Stage error: %v", err)
	}
	if err := staged.Release(); err != nil {
		t.Fatalf("first Release error: %v", err)
	}
	if err := staged.Release(); err != nil {
		t.Fatalf("second Release error: %v", err)
	}
}

func TestStageCreatesDirectoryLazily(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "staging")
	staging := NewStaging(dir)

	staged, err := staging.Stage("clip.wav", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Stage error: %v", err)
	}
	defer staged.Release()

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("staging dir not created: %v", err)
	}
}

func TestStageStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	staging := NewStaging(dir)

	staged, err := staging.Stage("../../etc/evil.mp3", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Stage error: %v", err)
	}
	defer staged.Release()

	if filepath.Dir(staged.Path()) != dir {
		t.Fatalf("staged file escaped staging dir: %s", staged.Path())
	}
}
