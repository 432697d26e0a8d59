package batch

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Limewood-Innovations/pdf-tools/internal/pdf"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListPDFs(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.pdf")
	touch(t, dir, "A.PDF")
	touch(t, dir, "notes.txt")
	touch(t, dir, "c.pdf.bak")
	if err := os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ListPDFs(dir)
	if err != nil {
		t.Fatalf("ListPDFs: %v", err)
	}
	want := []string{filepath.Join(dir, "A.PDF"), filepath.Join(dir, "b.pdf")}
	if len(got) != len(want) {
		t.Fatalf("ListPDFs = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("pdfs[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestListPDFsEmptyDir(t *testing.T) {
	got, err := ListPDFs(t.TempDir())
	if err != nil {
		t.Fatalf("ListPDFs: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListPDFs = %v, want empty", got)
	}
}

// A part that fails blank-page removal is copied through unfiltered and
// counted as a fallback, not as a clean.
func TestRunCountsFallbackSeparately(t *testing.T) {
	inDir, splitDir, cleanDir := t.TempDir(), t.TempDir(), t.TempDir()

	// Splitting is disabled, so the unparseable file passes through the
	// split stage as a byte copy and only the cleaner rejects it.
	src := filepath.Join(inDir, "broken.pdf")
	if err := os.WriteFile(src, []byte("this is not a PDF"), 0o644); err != nil {
		t.Fatal(err)
	}

	config := Config{
		InDir:      inDir,
		SplitDir:   splitDir,
		CleanDir:   cleanDir,
		ChunkSize:  0,
		Clean:      true,
		Classifier: pdf.DefaultClassifierConfig(),
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	processor, err := NewProcessor(config, log)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}

	summary, err := processor.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Cleaned != 0 {
		t.Errorf("Cleaned = %d, want 0 for a failed clean", summary.Cleaned)
	}
	if summary.Fallbacks != 1 {
		t.Errorf("Fallbacks = %d, want 1", summary.Fallbacks)
	}
	if summary.Documents != 1 || summary.Parts != 1 {
		t.Errorf("summary = %+v, want one document with one part", summary)
	}

	want, _ := os.ReadFile(src)
	got, err := os.ReadFile(filepath.Join(cleanDir, "broken.pdf"))
	if err != nil {
		t.Fatalf("read fallback output: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("fallback output differs from the unfiltered part")
	}
}

func TestNewProcessorValidation(t *testing.T) {
	valid := Config{
		InDir:      "in",
		SplitDir:   "split",
		CleanDir:   "clean",
		Clean:      true,
		Classifier: pdf.DefaultClassifierConfig(),
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing input dir", mutate: func(c *Config) { c.InDir = "" }, wantErr: true},
		{name: "missing split dir", mutate: func(c *Config) { c.SplitDir = "" }, wantErr: true},
		{name: "clean without clean dir", mutate: func(c *Config) { c.CleanDir = "" }, wantErr: true},
		{name: "clean disabled needs no clean dir", mutate: func(c *Config) { c.CleanDir = ""; c.Clean = false }, wantErr: false},
		{name: "negative threshold", mutate: func(c *Config) { c.Classifier.MinAlnum = -1 }, wantErr: true},
		{name: "negative ratio", mutate: func(c *Config) { c.Classifier.MinAlnumRatio = -0.5 }, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			config := valid
			tc.mutate(&config)
			_, err := NewProcessor(config, nil)
			if (err != nil) != tc.wantErr {
				t.Errorf("NewProcessor error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
