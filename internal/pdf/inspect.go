package pdf

import (
	"fmt"
	"os"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// maxFormDepth bounds recursion into nested Form XObjects. Malformed page
// trees can reference themselves.
const maxFormDepth = 4

// Document is a source PDF opened for inspection. It owns its page data for
// the duration of processing and is discarded once output has been written.
type Document struct {
	Path      string
	PageCount int

	ctx   *model.Context
	texts []string
}

func relaxedConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// ReadDocument opens and validates a PDF and extracts the text layer of
// every page. Text extraction failures degrade to empty text; scanned pages
// routinely have none.
func ReadDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, relaxedConfiguration())
	if err != nil {
		return nil, fmt.Errorf("read PDF %s: %w", path, err)
	}

	return &Document{
		Path:      path,
		PageCount: ctx.PageCount,
		ctx:       ctx,
		texts:     extractPageTexts(path, ctx.PageCount),
	}, nil
}

// PageText returns the extracted text of a page (1-based).
func (d *Document) PageText(pageNr int) string {
	if pageNr < 1 || pageNr > len(d.texts) {
		return ""
	}
	return d.texts[pageNr-1]
}

// Stats measures the classification attributes of a page (1-based).
func (d *Document) Stats(pageNr int) PageStats {
	stats := MeasureText(d.PageText(pageNr))

	pageDict, _, inhAttrs, err := d.ctx.PageDict(pageNr, false)
	if err != nil || pageDict == nil {
		// Conservative: an uninspectable page is never treated as blank.
		stats.HasImage = true
		return stats
	}
	stats.StreamBytes = d.contentStreamBytes(pageDict)

	resources := resolveResources(pageDict, inhAttrs)
	stats.HasImage = d.resourcesHaveImage(resources, 0)
	return stats
}

// resolveResources prefers the page's own resource dictionary and falls back
// to the attributes inherited from the page tree.
func resolveResources(pageDict types.Dict, inhAttrs *model.InheritedPageAttrs) types.Dict {
	if obj, found := pageDict.Find("Resources"); found {
		if dict, ok := obj.(types.Dict); ok {
			return dict
		}
	}
	if inhAttrs != nil {
		return inhAttrs.Resources
	}
	return nil
}

// contentStreamBytes sums the decoded content-stream lengths of a page.
func (d *Document) contentStreamBytes(pageDict types.Dict) int {
	obj, found := pageDict.Find("Contents")
	if !found {
		return 0
	}
	o, err := d.ctx.Dereference(obj)
	if err != nil || o == nil {
		return 0
	}
	switch o := o.(type) {
	case types.StreamDict:
		return d.decodedLength(&o)
	case types.Array:
		total := 0
		for _, entry := range o {
			sd, _, err := d.ctx.DereferenceStreamDict(entry)
			if err != nil || sd == nil {
				continue
			}
			total += d.decodedLength(sd)
		}
		return total
	default:
		return 0
	}
}

func (d *Document) decodedLength(sd *types.StreamDict) int {
	if err := sd.Decode(); err != nil {
		return len(sd.Raw)
	}
	return len(sd.Content)
}

// resourcesHaveImage walks the XObject entries of a resource dictionary,
// descending into Form XObjects. Inspection failures count as an image so
// that a page we cannot read is never discarded.
func (d *Document) resourcesHaveImage(resources types.Dict, depth int) bool {
	if resources == nil || depth > maxFormDepth {
		return false
	}
	obj, found := resources.Find("XObject")
	if !found {
		return false
	}
	xObjects, err := d.ctx.DereferenceDict(obj)
	if err != nil {
		return true
	}
	for _, entry := range xObjects {
		sd, _, err := d.ctx.DereferenceStreamDict(entry)
		if err != nil || sd == nil {
			continue
		}
		subtype, found := sd.Find("Subtype")
		if !found {
			continue
		}
		name, ok := subtype.(types.Name)
		if !ok {
			continue
		}
		switch name.Value() {
		case "Image":
			return true
		case "Form":
			nested, err := d.ctx.DereferenceDict(sd.Dict["Resources"])
			if err == nil && d.resourcesHaveImage(nested, depth+1) {
				return true
			}
		}
	}
	return false
}

// extractPageTexts reads the text layer with a second, text-oriented parser.
// The parser panics on some malformed files, so every page is guarded.
func extractPageTexts(path string, pageCount int) []string {
	texts := make([]string, pageCount)
	f, r, err := lpdf.Open(path)
	if err != nil {
		return texts
	}
	defer f.Close()

	fonts := make(map[string]*lpdf.Font)
	n := r.NumPage()
	if n > pageCount {
		n = pageCount
	}
	for i := 1; i <= n; i++ {
		texts[i-1] = pageText(r, i, fonts)
	}
	return texts
}

func pageText(r *lpdf.Reader, pageNr int, fonts map[string]*lpdf.Font) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	p := r.Page(pageNr)
	if p.V.IsNull() {
		return ""
	}
	for _, name := range p.Fonts() {
		if _, ok := fonts[name]; !ok {
			font := p.Font(name)
			fonts[name] = &font
		}
	}
	s, err := p.GetPlainText(fonts)
	if err != nil {
		return ""
	}
	return s
}
