// Command pdf-normalize rewrites all PDFs of a directory through
// Ghostscript for maximum reader compatibility.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Limewood-Innovations/pdf-tools/internal/logging"
	"github.com/Limewood-Innovations/pdf-tools/internal/normalize"
)

func main() {
	profile := flag.String("profile", "printer", "Ghostscript quality profile: screen, ebook, printer, prepress, default")
	compat := flag.String("compat", "1.4", "PDF compatibility level")
	archiveDir := flag.String("archive-dir", "", "move processed originals here")
	logFile := flag.String("log-file", "", "redirect diagnostics to a rotating log file")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: pdf-normalize [flags] <input-dir> <output-dir>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	log, err := logging.Setup(*logFile, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	config := normalize.Config{
		InDir:      flag.Arg(0),
		OutDir:     flag.Arg(1),
		ArchiveDir: *archiveDir,
		Profile:    normalize.Profile(*profile),
		Compat:     *compat,
	}
	processor, err := normalize.NewProcessor(config, log)
	if err != nil {
		log.Error("Invalid configuration.", "error", err)
		os.Exit(1)
	}
	if _, err := processor.Run(context.Background()); err != nil {
		log.Error("Normalization aborted.", "error", err)
		os.Exit(1)
	}
}
