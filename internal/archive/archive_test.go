package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMoveNoCollision(t *testing.T) {
	srcDir, archiveDir := t.TempDir(), t.TempDir()
	src := filepath.Join(srcDir, "scan.pdf")
	writeFile(t, src, "original")

	target, err := Move(src, archiveDir, TimestampSuffix)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if target != filepath.Join(archiveDir, "scan.pdf") {
		t.Errorf("target = %s, want plain name", target)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source still present after move")
	}
	data, err := os.ReadFile(target)
	if err != nil || string(data) != "original" {
		t.Errorf("archived content = %q, err %v", data, err)
	}
}

func TestMoveTimestampSuffixOnCollision(t *testing.T) {
	restore := now
	now = func() time.Time { return time.Date(2026, 8, 25, 14, 30, 5, 0, time.UTC) }
	defer func() { now = restore }()

	srcDir, archiveDir := t.TempDir(), t.TempDir()

	first := filepath.Join(srcDir, "scan.pdf")
	writeFile(t, first, "first")
	if _, err := Move(first, archiveDir, TimestampSuffix); err != nil {
		t.Fatalf("first Move: %v", err)
	}

	second := filepath.Join(srcDir, "scan.pdf")
	writeFile(t, second, "second")
	target, err := Move(second, archiveDir, TimestampSuffix)
	if err != nil {
		t.Fatalf("second Move: %v", err)
	}

	want := filepath.Join(archiveDir, "scan_20260825_143005.pdf")
	if target != want {
		t.Errorf("target = %s, want %s", target, want)
	}

	// Both files survive the collision.
	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("archive holds %d files, want 2", len(entries))
	}
}

func TestMoveOverwrite(t *testing.T) {
	srcDir, archiveDir := t.TempDir(), t.TempDir()

	existing := filepath.Join(archiveDir, "scan.pdf")
	writeFile(t, existing, "old")

	src := filepath.Join(srcDir, "scan.pdf")
	writeFile(t, src, "new")
	target, err := Move(src, archiveDir, Overwrite)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if target != existing {
		t.Errorf("target = %s, want %s", target, existing)
	}
	data, _ := os.ReadFile(target)
	if string(data) != "new" {
		t.Errorf("archived content = %q, want overwrite", data)
	}
}

func TestMoveCreatesArchiveDir(t *testing.T) {
	srcDir := t.TempDir()
	archiveDir := filepath.Join(t.TempDir(), "nested", "archive")

	src := filepath.Join(srcDir, "scan.pdf")
	writeFile(t, src, "content")
	if _, err := Move(src, archiveDir, TimestampSuffix); err != nil {
		t.Fatalf("Move into missing dir: %v", err)
	}
}
