package pdf

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// EmptyPolicy decides the Cleaner output when every page classifies blank.
type EmptyPolicy int

const (
	// EmitOriginal keeps the unfiltered input. An all-noise document beats
	// an empty one, which breaks consumers expecting at least one page.
	EmitOriginal EmptyPolicy = iota
	// EmitEmpty writes a zero-page document and leaves the handling to the
	// caller.
	EmitEmpty
)

func (p EmptyPolicy) String() string {
	if p == EmitEmpty {
		return "emit-empty"
	}
	return "emit-original"
}

// CleanResult summarizes a single blank-page removal run.
type CleanResult struct {
	Kept     int
	Removed  int
	FellBack bool
}

// planKeep classifies every page and returns the 1-based numbers of the
// pages to keep, preserving order.
func planKeep(stats []PageStats, cfg ClassifierConfig) []int {
	var keep []int
	for i, s := range stats {
		if !cfg.IsBlank(s) {
			keep = append(keep, i+1)
		}
	}
	return keep
}

// RemoveBlankPages writes a copy of srcPath to dstPath with blank pages
// removed. When all pages classify blank, policy decides between the
// unfiltered original and a zero-page document.
func RemoveBlankPages(srcPath, dstPath string, cfg ClassifierConfig, policy EmptyPolicy, log *slog.Logger) (CleanResult, error) {
	doc, err := ReadDocument(srcPath)
	if err != nil {
		return CleanResult{}, err
	}

	stats := make([]PageStats, doc.PageCount)
	for i := range stats {
		stats[i] = doc.Stats(i + 1)
	}
	for i, s := range stats {
		blank, reason := cfg.classify(s)
		decision := "keep"
		if blank {
			decision = "drop"
		}
		log.Debug("Page classified.",
			"page", i+1,
			"textLen", s.TextLen,
			"alnum", s.AlnumCount,
			"alnumRatio", fmt.Sprintf("%.3f", s.AlnumRatio),
			"streamBytes", s.StreamBytes,
			"hasImage", s.HasImage,
			"decision", decision,
			"reason", reason,
		)
	}

	keep := planKeep(stats, cfg)
	result := CleanResult{Kept: len(keep), Removed: doc.PageCount - len(keep)}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return CleanResult{}, fmt.Errorf("create clean dir: %w", err)
	}

	if len(keep) == 0 {
		log.Debug("All pages classified blank.", "source", srcPath, "policy", policy)
		if policy == EmitOriginal {
			result.FellBack = true
			result.Kept = doc.PageCount
			result.Removed = 0
			return result, copyFile(srcPath, dstPath)
		}
		return result, WriteEmptyPDF(dstPath)
	}

	selection := make([]string, len(keep))
	for i, pageNr := range keep {
		selection[i] = strconv.Itoa(pageNr)
	}
	if err := api.TrimFile(srcPath, dstPath, selection, relaxedConfiguration()); err != nil {
		return CleanResult{}, fmt.Errorf("write cleaned %s: %w", dstPath, err)
	}
	if err := SanitizeFile(dstPath); err != nil {
		return CleanResult{}, err
	}
	return result, nil
}
