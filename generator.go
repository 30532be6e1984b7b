// Package trec generates Texas Real Estate Commission property inspection
// reports as PDF documents. It loads an inspection record from JSON,
// optionally overlays the content on the blank TREC form, and renders the
// header, findings with status checkboxes, remote image gallery, and video
// links.
package trec

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/go-pdf/fpdf"

	"github.com/Arrrttyyyys/TREC/checkbox"
	"github.com/Arrrttyyyys/TREC/layout"
	"github.com/Arrrttyyyys/TREC/media"
	"github.com/Arrrttyyyys/TREC/record"
	"github.com/Arrrttyyyys/TREC/report"
)

// Generator builds TREC property inspection reports. A Generator is
// configured once and may produce any number of documents; each Generate
// call works on a fresh PDF.
type Generator struct {
	cfg          Config
	logger       *log.Logger
	resolver     media.Resolver
	templatePath string
	randSource   rand.Source
}

// NewGenerator creates a report generator using functional options.
//
// Example:
//
//	gen := trec.NewGenerator(
//	    trec.WithTemplatePath("TREC_Template_Blank.pdf"),
//	    trec.WithLogger(logger),
//	)
func NewGenerator(opts ...Option) *Generator {
	cfg := &generatorConfig{
		cfg:    DefaultConfig(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.resolver == nil {
		cfg.resolver = media.NewHTTPResolver(cfg.cfg.MediaTimeout, cfg.logger)
	}
	return &Generator{
		cfg:          cfg.cfg,
		logger:       cfg.logger,
		resolver:     cfg.resolver,
		templatePath: cfg.templatePath,
		randSource:   cfg.randSource,
	}
}

// Generate composes a report for rec and writes the PDF to w.
func (g *Generator) Generate(ctx context.Context, rec *record.InspectionRecord, w io.Writer) error {
	if rec == nil {
		return newReportError("Generate", ErrNoRecord)
	}

	pdf := fpdf.New("P", "pt", g.cfg.PageSize, "")
	pdf.SetCompression(g.cfg.Compress)
	pdf.SetMargins(g.cfg.Margin, g.cfg.Margin, g.cfg.Margin)
	pdf.SetAutoPageBreak(false, 0)

	bg, overlay := report.SelectBackground(g.templatePath, g.logger)

	var rng *rand.Rand
	if g.randSource != nil {
		rng = rand.New(g.randSource)
	}

	eng := layout.NewEngine(pdf, bg, checkbox.New(rng), layout.Config{
		Margin:   g.cfg.Margin,
		ImageGap: g.cfg.ImageGap,
	}, g.logger)

	comp := report.NewComposer(pdf, eng, g.resolver, record.NewNormalizer(g.cfg.Placeholder), report.Options{
		GroupFindings: g.cfg.GroupFindings,
		ImageMaxWidth: g.cfg.ImageMaxWidth,
		Overlay:       overlay,
		QRStamp:       g.cfg.QRStamp,
	}, g.logger)

	if err := comp.Compose(ctx, rec); err != nil {
		return newReportError("Compose", err)
	}
	if err := pdf.Output(w); err != nil {
		return newReportError("Output", fmt.Errorf("%w: %v", ErrOutput, err))
	}
	return nil
}

// GenerateFile composes a report for rec and writes it to path. The
// document is built in a temporary file in the same directory and renamed
// into place only after generation succeeds, so a failing run never
// truncates or replaces an existing report.
func (g *Generator) GenerateFile(ctx context.Context, rec *record.InspectionRecord, path string) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".trec-report-*.pdf")
	if err != nil {
		return newReportError("Output", fmt.Errorf("%w: %v", ErrOutput, err))
	}
	tmp := f.Name()
	if err := g.Generate(ctx, rec, f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return newReportError("Output", fmt.Errorf("%w: %v", ErrOutput, err))
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return newReportError("Output", fmt.Errorf("%w: %v", ErrOutput, err))
	}
	return nil
}
