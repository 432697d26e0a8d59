// Package archive moves processed originals out of the input directory.
// It is shared by the batch tool and the normalizer.
package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Policy decides how a name collision in the archive directory is resolved.
type Policy int

const (
	// TimestampSuffix renames the incoming file with a timestamp so both
	// files survive.
	TimestampSuffix Policy = iota
	// Overwrite replaces the existing archived file.
	Overwrite
)

func (p Policy) String() string {
	if p == Overwrite {
		return "overwrite"
	}
	return "timestamp-suffix"
}

const suffixLayout = "20060102_150405"

// now is swapped in tests to produce deterministic suffixes.
var now = time.Now

// Move places src into archiveDir and returns the final path. With
// TimestampSuffix an existing target keeps its name and the new file gets a
// timestamp appended. Cross-device moves fall back to copy and remove.
func Move(src, archiveDir string, policy Policy) (string, error) {
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir %s: %w", archiveDir, err)
	}

	target := filepath.Join(archiveDir, filepath.Base(src))
	if policy == TimestampSuffix {
		if _, err := os.Stat(target); err == nil {
			base := filepath.Base(src)
			ext := filepath.Ext(base)
			stem := strings.TrimSuffix(base, ext)
			target = filepath.Join(archiveDir, fmt.Sprintf("%s_%s%s", stem, now().Format(suffixLayout), ext))
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat archive target %s: %w", target, err)
		}
	}

	if err := os.Rename(src, target); err != nil {
		// Rename fails across filesystems; copy and remove instead.
		data, readErr := os.ReadFile(src)
		if readErr != nil {
			return "", fmt.Errorf("archive %s: %w", src, readErr)
		}
		if writeErr := os.WriteFile(target, data, 0o644); writeErr != nil {
			return "", fmt.Errorf("archive %s: %w", src, writeErr)
		}
		if rmErr := os.Remove(src); rmErr != nil {
			return "", fmt.Errorf("remove archived source %s: %w", src, rmErr)
		}
	}
	return target, nil
}
