// Command pdf-batch splits a directory of scanned PDFs into fixed-size
// chunks and removes blank pages, archiving the originals afterwards.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Limewood-Innovations/pdf-tools/internal/archive"
	"github.com/Limewood-Innovations/pdf-tools/internal/batch"
	"github.com/Limewood-Innovations/pdf-tools/internal/logging"
	"github.com/Limewood-Innovations/pdf-tools/internal/pdf"
)

func main() {
	defaults := pdf.DefaultClassifierConfig()

	inDir := flag.String("in-dir", "", "input directory to scan for PDFs (required)")
	outDirSplit := flag.String("out-dir-split", "", "destination for split chunks (required)")
	outDirClean := flag.String("out-dir-clean", "", "destination for cleaned PDFs; cleaning is skipped if absent")
	every := flag.Int("every", 0, "split every N pages; 0 disables splitting")
	noClean := flag.Bool("no-clean", false, "disable blank-page removal")
	archiveDir := flag.String("archive-dir", "", "move processed originals here")
	logFile := flag.String("log-file", "", "redirect diagnostics to a rotating log file")

	minAlnum := flag.Int("min-alnum", defaults.MinAlnum, "minimum alphanumeric characters for a page to count as non-blank")
	minAlnumRatio := flag.Float64("min-alnum-ratio", defaults.MinAlnumRatio, "minimum alphanumeric share of non-whitespace text for a page to count as non-blank")
	minBytes := flag.Int("min-bytes", defaults.MinStreamBytes, "minimum content-stream bytes for a page to count as non-blank")
	imageNonblank := flag.Bool("image-nonblank", true, "treat any page with an image as non-blank")
	noImageNonblank := flag.Bool("no-image-nonblank", false, "do not treat image pages as automatically non-blank")
	noFallbackEmpty := flag.Bool("no-fallback-empty", false, "when all pages are blank, write an empty PDF instead of keeping the original")
	debugPages := flag.Bool("debug-pages", false, "log per-page measurements and decisions")
	flag.Parse()

	log, err := logging.Setup(*logFile, *debugPages)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	classifier := pdf.ClassifierConfig{
		MinAlnum:         *minAlnum,
		MinAlnumRatio:    *minAlnumRatio,
		MinStreamBytes:   *minBytes,
		ImageNonblank:    *imageNonblank && !*noImageNonblank,
		TextLenThreshold: defaults.TextLenThreshold,
	}
	emptyPolicy := pdf.EmitOriginal
	if *noFallbackEmpty {
		emptyPolicy = pdf.EmitEmpty
	}

	config := batch.Config{
		InDir:       *inDir,
		SplitDir:    *outDirSplit,
		CleanDir:    *outDirClean,
		ArchiveDir:  *archiveDir,
		ChunkSize:   *every,
		Clean:       !*noClean && *outDirClean != "",
		Classifier:  classifier,
		EmptyPolicy: emptyPolicy,
		Collision:   archive.TimestampSuffix,
	}

	processor, err := batch.NewProcessor(config, log)
	if err != nil {
		log.Error("Invalid configuration.", "error", err)
		os.Exit(1)
	}
	if _, err := processor.Run(context.Background()); err != nil {
		log.Error("Batch aborted.", "error", err)
		os.Exit(1)
	}
}
