// Package report composes the TREC inspection report: it normalizes the
// record's header fields, drives the layout engine through findings and
// media, and selects the page background for either from-scratch or
// template-overlay rendering.
package report

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
	fpdi "github.com/phpdave11/gofpdi"

	"github.com/Arrrttyyyys/TREC/layout"
)

// ScratchBackground renders onto blank pages. It is the fallback whenever no
// usable template is available.
type ScratchBackground struct{}

// AddPage implements layout.Background.
func (ScratchBackground) AddPage(pdf *fpdf.Fpdf, page int) {
	pdf.AddPage()
}

// TemplateBackground underlays each output page with a page imported from an
// existing PDF template. Output pages beyond the template's length reuse its
// last page, so a short template still backs an arbitrarily long report.
type TemplateBackground struct {
	path  string
	imp   *gofpdi.Importer
	pages int
	tpl   map[int]int // source page -> imported template id
	log   *log.Logger
}

// NewTemplateBackground opens the template at path and prepares it for page
// import. It fails when the file cannot be parsed as a PDF or has no pages.
func NewTemplateBackground(path string, logger *log.Logger) (*TemplateBackground, error) {
	n, err := templatePageCount(path)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("report: template %s has no pages", path)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &TemplateBackground{
		path:  path,
		imp:   gofpdi.NewImporter(),
		pages: n,
		tpl:   make(map[int]int, n),
		log:   logger,
	}, nil
}

// PageCount returns the number of pages in the source template.
func (t *TemplateBackground) PageCount() int { return t.pages }

// AddPage implements layout.Background: it appends a blank page and draws
// the corresponding template page underneath the content that follows.
func (t *TemplateBackground) AddPage(pdf *fpdf.Fpdf, page int) {
	pdf.AddPage()
	src := page
	if src > t.pages {
		src = t.pages
	}
	t.underlay(pdf, src)
}

// underlay imports template page src (cached after first use) and stretches
// it over the full current page. gofpdi panics on malformed page content, so
// the import is fenced: a failing page degrades to a blank background with a
// warning instead of aborting the document.
func (t *TemplateBackground) underlay(pdf *fpdf.Fpdf, src int) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Warn("template page unusable, leaving page blank", "template", t.path, "page", src, "err", r)
		}
	}()

	id, ok := t.tpl[src]
	if !ok {
		id = t.imp.ImportPage(pdf, t.path, src, "/MediaBox")
		t.tpl[src] = id
	}

	// The template is stretched to the output page. TREC templates and the
	// output share letter geometry, so the scale is a no-op in practice.
	w, h := pdf.GetPageSize()
	t.imp.UseImportedTemplate(pdf, id, 0, 0, w, h)
}

// templatePageCount parses the template just far enough to count its pages.
// gofpdi reports parse failures by panicking; the recover converts them into
// an ordinary error so a corrupt template can fall back to scratch mode.
func templatePageCount(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("report: reading template %s: %v", path, r)
		}
	}()
	imp := fpdi.NewImporter()
	imp.SetSourceFile(path)
	return imp.GetNumPages(), nil
}

// SelectBackground chooses the page background provider once at document
// start. A missing template silently selects from-scratch mode; a template
// that exists but cannot be read falls back to scratch mode with a warning.
// The second return value reports whether template-overlay mode is active.
func SelectBackground(templatePath string, logger *log.Logger) (layout.Background, bool) {
	if logger == nil {
		logger = log.Default()
	}
	if templatePath == "" {
		return ScratchBackground{}, false
	}
	if _, err := os.Stat(templatePath); err != nil {
		logger.Info("template not found, generating from scratch", "template", templatePath)
		return ScratchBackground{}, false
	}
	bg, err := NewTemplateBackground(templatePath, logger)
	if err != nil {
		logger.Warn("template unreadable, generating from scratch", "err", err)
		return ScratchBackground{}, false
	}
	logger.Debug("using template background", "template", templatePath, "pages", bg.PageCount())
	return bg, true
}
