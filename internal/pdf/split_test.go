package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

func TestChunkSpans(t *testing.T) {
	tests := []struct {
		name      string
		pageCount int
		n         int
		want      []Span
	}{
		{name: "empty document", pageCount: 0, n: 2, want: nil},
		{name: "split disabled", pageCount: 7, n: 0, want: []Span{{1, 7}}},
		{name: "negative n treated as disabled", pageCount: 3, n: -1, want: []Span{{1, 3}}},
		{name: "even split", pageCount: 10, n: 2, want: []Span{{1, 2}, {3, 4}, {5, 6}, {7, 8}, {9, 10}}},
		{name: "short final chunk", pageCount: 9, n: 2, want: []Span{{1, 2}, {3, 4}, {5, 6}, {7, 8}, {9, 9}}},
		{name: "chunk larger than document", pageCount: 3, n: 10, want: []Span{{1, 3}}},
		{name: "single pages", pageCount: 3, n: 1, want: []Span{{1, 1}, {2, 2}, {3, 3}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ChunkSpans(tc.pageCount, tc.n)
			if len(got) != len(tc.want) {
				t.Fatalf("ChunkSpans(%d, %d) = %v, want %v", tc.pageCount, tc.n, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("span %d = %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

// Concatenating all spans must reproduce the original page sequence.
func TestChunkSpansLossless(t *testing.T) {
	for pageCount := 1; pageCount <= 25; pageCount++ {
		for n := 1; n <= 7; n++ {
			next := 1
			for _, span := range ChunkSpans(pageCount, n) {
				if span.From != next {
					t.Fatalf("pageCount=%d n=%d: span starts at %d, want %d", pageCount, n, span.From, next)
				}
				if span.To < span.From {
					t.Fatalf("pageCount=%d n=%d: inverted span %v", pageCount, n, span)
				}
				if span.To-span.From+1 > n {
					t.Fatalf("pageCount=%d n=%d: span %v exceeds chunk size", pageCount, n, span)
				}
				next = span.To + 1
			}
			if next != pageCount+1 {
				t.Fatalf("pageCount=%d n=%d: spans end at %d, want %d", pageCount, n, next-1, pageCount)
			}
		}
	}
}

func TestSplitEveryNWritesChunks(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeBlankPDF(t, src, 10)
	outDir := filepath.Join(dir, "split")

	parts, err := SplitEveryN(src, outDir, 2)
	if err != nil {
		t.Fatalf("SplitEveryN: %v", err)
	}
	if len(parts) != 5 {
		t.Fatalf("got %d parts, want 5: %v", len(parts), parts)
	}
	for i, part := range parts {
		want := filepath.Join(outDir, fmt.Sprintf("doc_part_%03d.pdf", i+1))
		if part != want {
			t.Errorf("parts[%d] = %s, want %s", i, part, want)
		}
		count, err := api.PageCountFile(part)
		if err != nil {
			t.Fatalf("page count of %s: %v", part, err)
		}
		if count != 2 {
			t.Errorf("%s holds %d pages, want 2", filepath.Base(part), count)
		}
	}
}

func TestSplitEveryNPassThrough(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeBlankPDF(t, src, 3)
	outDir := filepath.Join(dir, "split")

	parts, err := SplitEveryN(src, outDir, 0)
	if err != nil {
		t.Fatalf("SplitEveryN: %v", err)
	}
	if len(parts) != 1 || parts[0] != filepath.Join(outDir, "doc.pdf") {
		t.Fatalf("got %v, want single pass-through copy", parts)
	}

	want, _ := os.ReadFile(src)
	got, err := os.ReadFile(parts[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Error("pass-through copy differs from the source")
	}
}

func TestChunkName(t *testing.T) {
	tests := []struct {
		src   string
		index int
		want  string
	}{
		{src: "/in/scan.pdf", index: 1, want: "scan_part_001.pdf"},
		{src: "/in/scan.pdf", index: 5, want: "scan_part_005.pdf"},
		{src: "report.PDF", index: 12, want: "report_part_012.pdf"},
		{src: "/in/with.dots.pdf", index: 120, want: "with.dots_part_120.pdf"},
	}
	for _, tc := range tests {
		if got := ChunkName(tc.src, tc.index); got != tc.want {
			t.Errorf("ChunkName(%q, %d) = %q, want %q", tc.src, tc.index, got, tc.want)
		}
	}
}
