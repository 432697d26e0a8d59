package pdf

import (
	"strings"
	"unicode"
)

// ClassifierConfig holds the thresholds of the blank-page heuristic.
// A page counts as blank only when every criterion agrees; the thresholds
// shift sensitivity independently without changing that structure.
type ClassifierConfig struct {
	// MinAlnum is the alphanumeric character count at or above which a page
	// is never blank.
	MinAlnum int
	// MinAlnumRatio is the alphanumeric share of non-whitespace text at or
	// above which a page is never blank.
	MinAlnumRatio float64
	// MinStreamBytes is the content-stream byte count at or above which a
	// page is never blank.
	MinStreamBytes int
	// ImageNonblank keeps any page carrying an image, regardless of the
	// text-derived signals.
	ImageNonblank bool
	// TextLenThreshold is the maximum trimmed text length a blank page may
	// still have (stray OCR characters).
	TextLenThreshold int
}

// DefaultClassifierConfig returns the tuned production thresholds.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		MinAlnum:         5,
		MinAlnumRatio:    0.2,
		MinStreamBytes:   40,
		ImageNonblank:    true,
		TextLenThreshold: 1,
	}
}

// PageStats are the measured attributes a classification is derived from.
// They are computed once per page; the decision itself is never stored.
type PageStats struct {
	// TextLen is the rune count of the whitespace-trimmed extracted text.
	TextLen int
	// AlnumCount is the number of alphanumeric characters in the text.
	AlnumCount int
	// AlnumRatio is AlnumCount divided by the non-whitespace character
	// count, floored at one to avoid division by zero. The denominator is
	// deliberately the non-whitespace count rather than TextLen; the
	// MinAlnumRatio threshold was tuned against that measure.
	AlnumRatio float64
	// StreamBytes is the decoded content-stream length in bytes.
	StreamBytes int
	// HasImage reports whether the page resources reference an image.
	HasImage bool
}

// Decision reasons, used for per-page diagnostics only.
const (
	reasonImageFound      = "image_found"
	reasonAlnumThreshold  = "alnum_threshold"
	reasonAlnumRatio      = "alnum_ratio"
	reasonTextLength      = "text_length"
	reasonStreamBytes     = "stream_bytes"
	reasonBelowThresholds = "below_thresholds"
)

// IsBlank reports whether a page with the given measurements is blank.
// All criteria must hold simultaneously; an image overrides everything
// else when ImageNonblank is set.
func (c ClassifierConfig) IsBlank(s PageStats) bool {
	blank, _ := c.classify(s)
	return blank
}

// classify returns the decision together with the dominant reason label.
func (c ClassifierConfig) classify(s PageStats) (bool, string) {
	if c.ImageNonblank && s.HasImage {
		return false, reasonImageFound
	}
	if s.AlnumCount >= c.MinAlnum {
		return false, reasonAlnumThreshold
	}
	if s.AlnumRatio >= c.MinAlnumRatio {
		return false, reasonAlnumRatio
	}
	if s.TextLen > c.TextLenThreshold {
		return false, reasonTextLength
	}
	if s.StreamBytes >= c.MinStreamBytes {
		return false, reasonStreamBytes
	}
	return true, reasonBelowThresholds
}

// isAlnum matches the character class used for counting: ASCII letters and
// digits plus the German umlauts and sharp s that dominate the scans.
func isAlnum(r rune) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' {
		return true
	}
	return strings.ContainsRune("ÄÖÜäöüß", r)
}

// MeasureText derives the text-based page statistics from extracted text.
// Stream bytes and image presence are filled in by the inspector.
func MeasureText(text string) PageStats {
	var alnum, nonWS int
	for _, r := range text {
		if !unicode.IsSpace(r) {
			nonWS++
		}
		if isAlnum(r) {
			alnum++
		}
	}
	denom := nonWS
	if denom < 1 {
		denom = 1
	}
	var textLen int
	for range strings.TrimSpace(text) {
		textLen++
	}
	return PageStats{
		TextLen:    textLen,
		AlnumCount: alnum,
		AlnumRatio: float64(alnum) / float64(denom),
	}
}
