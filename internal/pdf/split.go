package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Span is a contiguous, 1-based inclusive page range of a chunk.
type Span struct {
	From int
	To   int
}

// ChunkSpans partitions pageCount pages into consecutive spans of at most n
// pages. Concatenated in order, the spans reproduce the original page
// sequence exactly. For n <= 0 the whole document is a single span.
func ChunkSpans(pageCount, n int) []Span {
	if pageCount <= 0 {
		return nil
	}
	if n <= 0 {
		return []Span{{From: 1, To: pageCount}}
	}
	spans := make([]Span, 0, (pageCount+n-1)/n)
	for from := 1; from <= pageCount; from += n {
		to := from + n - 1
		if to > pageCount {
			to = pageCount
		}
		spans = append(spans, Span{From: from, To: to})
	}
	return spans
}

// ChunkName returns the output filename for the 1-based chunk index of a
// source file. The zero-padded index keeps alphabetical and chunk order
// identical.
func ChunkName(srcPath string, index int) string {
	base := filepath.Base(srcPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_part_%03d.pdf", stem, index)
}

// SplitEveryN writes one sanitized chunk PDF per span of n pages into
// outDir and returns the chunk paths in order. For n <= 0 splitting is
// disabled and the source is copied through unchanged as a single chunk.
func SplitEveryN(srcPath, outDir string, n int) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create split dir %s: %w", outDir, err)
	}

	if n <= 0 {
		target := filepath.Join(outDir, filepath.Base(srcPath))
		if err := copyFile(srcPath, target); err != nil {
			return nil, err
		}
		return []string{target}, nil
	}

	pageCount, err := api.PageCountFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("page count of %s: %w", srcPath, err)
	}

	conf := relaxedConfiguration()
	var parts []string
	for i, span := range ChunkSpans(pageCount, n) {
		outPath := filepath.Join(outDir, ChunkName(srcPath, i+1))
		selection := []string{fmt.Sprintf("%d-%d", span.From, span.To)}
		if err := api.TrimFile(srcPath, outPath, selection, conf); err != nil {
			return nil, fmt.Errorf("write chunk %s: %w", outPath, err)
		}
		if err := SanitizeFile(outPath); err != nil {
			return nil, err
		}
		parts = append(parts, outPath)
	}
	return parts, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}
