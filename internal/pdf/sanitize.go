package pdf

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Catalog keys of the tagging structure. Carrying them over into split or
// cleaned output breaks some downstream readers, since the structure tree
// then references pages that no longer exist.
var catalogTagKeys = []string{"StructTreeRoot", "MarkInfo", "RoleMap", "ClassMap"}

// Page-level keys that reference the structure tree.
var pageTagKeys = []string{"Tabs", "StructParents"}

// SanitizeFile strips document- and page-level tagging structures from a
// PDF in place. Content streams are untouched.
func SanitizeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	ctx, err := api.ReadValidateAndOptimize(f, relaxedConfiguration())
	f.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	sanitizeContext(ctx)

	if err := api.WriteContextFile(ctx, path); err != nil {
		return fmt.Errorf("rewrite %s: %w", path, err)
	}
	return nil
}

func sanitizeContext(ctx *model.Context) {
	if catalog, err := ctx.Catalog(); err == nil && catalog != nil {
		for _, key := range catalogTagKeys {
			catalog.Delete(key)
		}
	}
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageDict, _, _, err := ctx.PageDict(pageNr, false)
		if err != nil || pageDict == nil {
			continue
		}
		for _, key := range pageTagKeys {
			pageDict.Delete(key)
		}
	}
}
