package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Limewood-Innovations/pdf-tools/internal/archive"
	"github.com/Limewood-Innovations/pdf-tools/internal/batch"
	"github.com/Limewood-Innovations/pdf-tools/internal/pdf"
)

// Config for a directory normalization run.
type Config struct {
	InDir      string
	OutDir     string
	ArchiveDir string
	Profile    Profile
	// Compat is the PDF compatibility level Ghostscript emits, e.g. "1.4".
	Compat string
}

// Summary is the run report.
type Summary struct {
	Normalized int
	Skipped    int
}

// Processor normalizes every PDF of a directory sequentially.
type Processor struct {
	config Config
	runner *Runner
	log    *slog.Logger
}

// NewProcessor validates the configuration and resolves Ghostscript. Both
// failures are fatal before any document is touched.
func NewProcessor(config Config, log *slog.Logger) (*Processor, error) {
	if config.InDir == "" || config.OutDir == "" {
		return nil, fmt.Errorf("input and output directories must be set")
	}
	if _, err := config.Profile.setting(); err != nil {
		return nil, err
	}
	if config.Compat == "" {
		config.Compat = "1.4"
	}
	gsBin, err := FindGhostscript()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	log.Info("Ghostscript resolved.", "binary", gsBin, "profile", string(config.Profile), "compat", config.Compat)
	return &Processor{config: config, runner: NewRunner(gsBin), log: log}, nil
}

// Run normalizes all PDFs in the input directory. Per-file failures are
// logged and skipped.
func (p *Processor) Run(ctx context.Context) (*Summary, error) {
	if err := os.MkdirAll(p.config.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", p.config.OutDir, err)
	}

	pdfs, err := batch.ListPDFs(p.config.InDir)
	if err != nil {
		return nil, fmt.Errorf("list input directory %s: %w", p.config.InDir, err)
	}

	summary := &Summary{}
	if len(pdfs) == 0 {
		p.log.Info("No PDF files found in input directory.", "inDir", p.config.InDir)
		return summary, nil
	}
	p.log.Info("Normalizing PDFs.", "count", len(pdfs), "outDir", p.config.OutDir)

	tempDir, err := os.MkdirTemp("", "pdf-normalize-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	for _, src := range pdfs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		logCtx := p.log.With("source", filepath.Base(src))

		if err := p.normalizeOne(ctx, tempDir, src); err != nil {
			logCtx.Error("Normalization failed, skipping.", "error", err)
			summary.Skipped++
			continue
		}
		summary.Normalized++
		logCtx.Info("Normalized.", "target", filepath.Join(p.config.OutDir, filepath.Base(src)))

		if p.config.ArchiveDir != "" {
			movedTo, err := archive.Move(src, p.config.ArchiveDir, archive.TimestampSuffix)
			if err != nil {
				logCtx.Error("Failed to archive original.", "error", err)
				continue
			}
			logCtx.Info("Archived original.", "target", movedTo)
		}
	}

	p.log.Info("All PDFs processed.", "normalized", summary.Normalized, "skipped", summary.Skipped)
	return summary, nil
}

// normalizeOne untags the document into a scratch copy and lets
// Ghostscript emit the compatibility-downgraded result.
func (p *Processor) normalizeOne(ctx context.Context, tempDir, src string) error {
	scratch := filepath.Join(tempDir, filepath.Base(src))
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	if err := os.WriteFile(scratch, data, 0o644); err != nil {
		return fmt.Errorf("stage %s: %w", scratch, err)
	}
	if err := pdf.SanitizeFile(scratch); err != nil {
		return err
	}
	outPath := filepath.Join(p.config.OutDir, filepath.Base(src))
	return p.runner.Normalize(ctx, scratch, outPath, p.config.Profile, p.config.Compat)
}
