// Package batch drives the split-and-clean pipeline over a directory of
// scanned PDFs.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Limewood-Innovations/pdf-tools/internal/archive"
	"github.com/Limewood-Innovations/pdf-tools/internal/pdf"
)

// Config holds one run's worth of settings. It is built once from the CLI
// flags and passed by value; nothing here mutates during a run.
type Config struct {
	InDir      string
	SplitDir   string
	CleanDir   string
	ArchiveDir string

	// ChunkSize is the page count per chunk; 0 or less disables splitting
	// and passes each document through as a single chunk.
	ChunkSize int
	// Clean enables the blank-page removal stage. Requires CleanDir.
	Clean bool

	Classifier  pdf.ClassifierConfig
	EmptyPolicy pdf.EmptyPolicy
	Collision   archive.Policy
}

// Summary is the run report logged at the end of a batch.
type Summary struct {
	Documents    int
	Parts        int
	Cleaned      int
	PagesRemoved int
	// Fallbacks counts parts copied through unfiltered after a failed
	// blank-page removal; they are not counted as cleaned.
	Fallbacks int
	Skipped   int
}

// Processor runs the batch pipeline. Documents are processed one at a time
// in listing order; no state is shared between them.
type Processor struct {
	config Config
	log    *slog.Logger
}

// NewProcessor validates the configuration. Validation failures here are
// the only fatal errors of a batch run.
func NewProcessor(config Config, log *slog.Logger) (*Processor, error) {
	if config.InDir == "" {
		return nil, fmt.Errorf("input directory must be set")
	}
	if config.SplitDir == "" {
		return nil, fmt.Errorf("split output directory must be set")
	}
	if config.Clean && config.CleanDir == "" {
		return nil, fmt.Errorf("clean output directory must be set when cleaning is enabled")
	}
	c := config.Classifier
	if c.MinAlnum < 0 || c.MinAlnumRatio < 0 || c.MinStreamBytes < 0 || c.TextLenThreshold < 0 {
		return nil, fmt.Errorf("classifier thresholds must not be negative")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Processor{config: config, log: log}, nil
}

// Run processes every PDF in the input directory. Per-document failures are
// logged and skipped; only directory setup aborts the run.
func (p *Processor) Run(ctx context.Context) (*Summary, error) {
	if err := p.ensureDirs(); err != nil {
		return nil, err
	}

	pdfs, err := ListPDFs(p.config.InDir)
	if err != nil {
		return nil, fmt.Errorf("list input directory %s: %w", p.config.InDir, err)
	}

	summary := &Summary{}
	if len(pdfs) == 0 {
		p.log.Warn("No PDF found in input directory.", "inDir", p.config.InDir)
		return summary, nil
	}

	for i, src := range pdfs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		logCtx := p.log.With("source", filepath.Base(src), "index", fmt.Sprintf("%d/%d", i+1, len(pdfs)))

		if err := p.processDocument(logCtx, src, summary); err != nil {
			logCtx.Error("Failed to process document, skipping.", "error", err)
			summary.Skipped++
		} else {
			summary.Documents++
		}

		// Archive after the processing attempt, even a failed one, so the
		// input directory drains.
		if p.config.ArchiveDir != "" {
			if _, statErr := os.Stat(src); statErr == nil {
				movedTo, moveErr := archive.Move(src, p.config.ArchiveDir, p.config.Collision)
				if moveErr != nil {
					logCtx.Error("Failed to archive original.", "error", moveErr)
				} else {
					logCtx.Info("Archived original.", "target", movedTo)
				}
			}
		}
	}

	p.log.Info("Batch complete.",
		"documents", summary.Documents,
		"parts", summary.Parts,
		"cleaned", summary.Cleaned,
		"pagesRemoved", summary.PagesRemoved,
		"fallbacks", summary.Fallbacks,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

func (p *Processor) ensureDirs() error {
	dirs := []string{p.config.SplitDir}
	if p.config.Clean {
		dirs = append(dirs, p.config.CleanDir)
	}
	if p.config.ArchiveDir != "" {
		dirs = append(dirs, p.config.ArchiveDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}
	return nil
}

func (p *Processor) processDocument(logCtx *slog.Logger, src string, summary *Summary) error {
	if p.config.ChunkSize > 0 {
		logCtx.Info("Splitting document.", "every", p.config.ChunkSize, "splitDir", p.config.SplitDir)
	} else {
		logCtx.Info("Splitting disabled, copying document through.", "splitDir", p.config.SplitDir)
	}

	parts, err := pdf.SplitEveryN(src, p.config.SplitDir, p.config.ChunkSize)
	if err != nil {
		return err
	}
	summary.Parts += len(parts)
	logCtx.Info("Chunks written.", "parts", len(parts))

	if !p.config.Clean {
		return nil
	}

	logCtx.Info("Removing blank pages.",
		"cleanDir", p.config.CleanDir,
		"minAlnum", p.config.Classifier.MinAlnum,
		"minAlnumRatio", p.config.Classifier.MinAlnumRatio,
		"minStreamBytes", p.config.Classifier.MinStreamBytes,
	)
	for _, part := range parts {
		dst := filepath.Join(p.config.CleanDir, filepath.Base(part))
		result, err := pdf.RemoveBlankPages(part, dst, p.config.Classifier, p.config.EmptyPolicy, logCtx)
		if err != nil {
			logCtx.Error("Blank-page removal failed, keeping unfiltered part.", "part", filepath.Base(part), "error", err)
			if copyErr := copyFile(part, dst); copyErr != nil {
				logCtx.Error("Fallback copy failed, part has no cleaned output.", "part", filepath.Base(part), "error", copyErr)
				continue
			}
			summary.Fallbacks++
			logCtx.Info("Part copied through unfiltered.", "part", filepath.Base(part))
			continue
		}
		summary.Cleaned++
		summary.PagesRemoved += result.Removed
		logCtx.Info("Part cleaned.",
			"part", filepath.Base(part),
			"kept", result.Kept,
			"removed", result.Removed,
			"fellBack", result.FellBack,
		)
	}
	return nil
}

// ListPDFs returns the PDF files of a directory, non-recursive, matched
// case-insensitively and sorted by name.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var pdfs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			pdfs = append(pdfs, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(pdfs)
	return pdfs, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
