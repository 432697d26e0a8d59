// Package normalize rewrites PDFs for maximum reader compatibility:
// tagging structures are stripped and Ghostscript re-emits the document at
// a fixed compatibility level. Ghostscript itself stays an external
// collaborator invoked as a subprocess.
package normalize

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Ghostscript binary names per platform, tried in order.
var gsCandidates = []string{"gswin64c.exe", "gswin32c.exe", "gs"}

// Profile is a Ghostscript pdfwrite quality profile.
type Profile string

const (
	ProfileScreen   Profile = "screen"
	ProfileEbook    Profile = "ebook"
	ProfilePrinter  Profile = "printer"
	ProfilePrepress Profile = "prepress"
	ProfileDefault  Profile = "default"
)

// setting maps a profile onto its -dPDFSETTINGS value.
func (p Profile) setting() (string, error) {
	switch p {
	case ProfileScreen, ProfileEbook, ProfilePrinter, ProfilePrepress, ProfileDefault:
		return "/" + string(p), nil
	default:
		return "", fmt.Errorf("unknown profile %q, use one of: screen, ebook, printer, prepress, default", p)
	}
}

// FindGhostscript locates the Ghostscript executable on PATH.
func FindGhostscript() (string, error) {
	for _, name := range gsCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("ghostscript executable not found, install Ghostscript and ensure %q is on PATH", strings.Join(gsCandidates, " or "))
}

// ghostscriptArgs builds the pdfwrite argument list for one file.
func ghostscriptArgs(inPath, outPath string, profile Profile, compat string) ([]string, error) {
	settings, err := profile.setting()
	if err != nil {
		return nil, err
	}
	return []string{
		"-dSAFER",
		"-dBATCH",
		"-dNOPAUSE",
		"-sDEVICE=pdfwrite",
		"-sColorConversionStrategy=LeaveColorUnchanged",
		fmt.Sprintf("-dCompatibilityLevel=%s", compat),
		fmt.Sprintf("-dPDFSETTINGS=%s", settings),
		"-dDetectDuplicateImages=true",
		"-dCompressFonts=true",
		"-dSubsetFonts=true",
		fmt.Sprintf("-sOutputFile=%s", outPath),
		inPath,
	}, nil
}

// Runner invokes a resolved Ghostscript binary.
type Runner struct {
	gsBin string
}

// NewRunner wraps the given Ghostscript executable path.
func NewRunner(gsBin string) *Runner {
	return &Runner{gsBin: gsBin}
}

// Normalize re-emits inPath as outPath through Ghostscript pdfwrite.
func (r *Runner) Normalize(ctx context.Context, inPath, outPath string, profile Profile, compat string) error {
	args, err := ghostscriptArgs(inPath, outPath, profile, compat)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, r.gsBin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ghostscript failed for %s: %w: %s", inPath, err, strings.TrimSpace(string(out)))
	}
	return nil
}
