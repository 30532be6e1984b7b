package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-pdf/fpdf"

	"github.com/Arrrttyyyys/TREC/checkbox"
	"github.com/Arrrttyyyys/TREC/layout"
	"github.com/Arrrttyyyys/TREC/media"
	"github.com/Arrrttyyyys/TREC/record"
)

// ErrNilRecord is returned when Compose is called without a record.
var ErrNilRecord = errors.New("report: nil inspection record")

const fontFamily = "Helvetica"

// Text styles used throughout the report.
var (
	styleSection  = layout.Style{Family: fontFamily, FontStyle: "B", Size: 12, LineHeight: 20}
	styleBody     = layout.Style{Family: fontFamily, Size: 10, LineHeight: 15}
	styleBodyBold = layout.Style{Family: fontFamily, FontStyle: "B", Size: 10, LineHeight: 15}
	styleSmall    = layout.Style{Family: fontFamily, Size: 9, LineHeight: 12}
)

const findingGap = 8.0

// Options configures composition policy.
type Options struct {
	// GroupFindings keeps each finding's category, status row, and
	// description together on one page when the whole block fits a fresh
	// page. A block taller than a full page still flows across pages.
	GroupFindings bool

	// ImageMaxWidth caps gallery image width, in points. Zero uses 216
	// (three inches).
	ImageMaxWidth float64

	// Overlay draws the header fields at the template's preset coordinates
	// instead of flowing them. Findings and media flow identically in both
	// modes.
	Overlay bool

	// QRStamp draws a QR report reference in the header.
	QRStamp bool
}

// Composer sequences the report top to bottom: header, findings summary,
// finding blocks, image gallery, video links. It owns the cursor for the
// whole pass; composition is strictly sequential.
type Composer struct {
	pdf  *fpdf.Fpdf
	eng  *layout.Engine
	res  media.Resolver
	norm record.Normalizer
	log  *log.Logger
	opts Options
}

// NewComposer wires a composer. A nil logger discards diagnostics.
func NewComposer(pdf *fpdf.Fpdf, eng *layout.Engine, res media.Resolver, norm record.Normalizer, opts Options, logger *log.Logger) *Composer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.ImageMaxWidth <= 0 {
		opts.ImageMaxWidth = 216
	}
	return &Composer{pdf: pdf, eng: eng, res: res, norm: norm, log: logger, opts: opts}
}

// Compose builds the whole document from rec. Media failures and layout
// overflows degrade to placeholders and warnings; only an error from the
// underlying PDF writer aborts.
func (c *Composer) Compose(ctx context.Context, rec *record.InspectionRecord) error {
	if rec == nil {
		return ErrNilRecord
	}

	c.pdf.SetTitle("TREC Property Inspection Report", true)
	c.pdf.SetAuthor(c.norm.Resolve(rec.Inspector.Name), true)
	c.pdf.SetCreator("trec-report", true)
	c.pdf.AliasNbPages("")
	c.setFooter(c.norm.Resolve(rec.Property.Address))

	cur := c.eng.BeginDocument()
	c.composeHeader(cur, rec)
	c.composeSummary(cur, rec)
	c.composeFindings(cur, rec)
	c.composeImages(ctx, cur, rec)
	c.composeVideos(cur, rec)

	if c.pdf.Err() {
		return fmt.Errorf("report: %w", c.pdf.Error())
	}
	return nil
}

// setFooter installs the per-page footer: the property address as a running
// label on the left, "Page X of Y" on the right.
func (c *Composer) setFooter(label string) {
	c.pdf.SetFooterFunc(func() {
		c.pdf.SetY(-30)
		c.pdf.SetFont(fontFamily, "", 8)
		c.pdf.SetTextColor(120, 120, 120)
		half := c.eng.ColumnWidth() / 2
		c.pdf.CellFormat(half, 8, label, "", 0, "L", false, 0, "")
		c.pdf.CellFormat(half, 8, fmt.Sprintf("Page %d of {nb}", c.pdf.PageNo()), "", 0, "R", false, 0, "")
	})
}

func (c *Composer) composeHeader(cur *layout.Cursor, rec *record.InspectionRecord) {
	if c.opts.Overlay {
		c.overlayHeader(cur, rec)
		return
	}

	pageW, _ := c.pdf.GetPageSize()
	m := c.eng.Margin()

	c.pdf.SetFillColor(10, 15, 31)
	c.pdf.Rect(0, 0, pageW, 78, "F")
	c.pdf.SetTextColor(255, 255, 255)
	c.pdf.SetFont(fontFamily, "B", 16)
	c.pdf.Text(m, 34, "TEXAS REAL ESTATE COMMISSION")
	c.pdf.Text(m, 56, "PROPERTY INSPECTION REPORT")
	c.pdf.SetTextColor(0, 0, 0)

	cur.Y = 96
	c.stampQR(rec)

	c.placePair(cur, "Inspector", rec.Inspector.Name)
	c.placePair(cur, "License", rec.Inspector.License)
	c.placePair(cur, "Address", rec.Property.Address)
	c.placePair(cur, "City", rec.Property.City)
	c.placePair(cur, "State", rec.Property.State)
	c.placePair(cur, "Zip Code", rec.Property.Zip)
	c.placePair(cur, "Date of Inspection", rec.InspectionDate)
	c.placePair(cur, "Client", rec.Client.Name)
	c.eng.Space(cur, 10)
}

// overlayHeader writes the header fields at the TREC form's fixed blanks
// instead of flowing them; the template page underneath carries the labels.
func (c *Composer) overlayHeader(cur *layout.Cursor, rec *record.InspectionRecord) {
	cityLine := fmt.Sprintf("%s, %s %s",
		c.norm.Resolve(rec.Property.City),
		c.norm.Resolve(rec.Property.State),
		c.norm.Resolve(rec.Property.Zip))

	fields := []struct {
		x, y float64
		v    string
	}{
		{150, 132, c.norm.Resolve(rec.Client.Name)},
		{430, 132, c.norm.Resolve(rec.InspectionDate)},
		{150, 156, c.norm.Resolve(rec.Property.Address)},
		{150, 180, cityLine},
		{150, 204, c.norm.Resolve(rec.Inspector.Name)},
		{430, 204, c.norm.Resolve(rec.Inspector.License)},
	}

	c.pdf.SetFont(fontFamily, "", 10)
	for _, f := range fields {
		c.pdf.Text(f.x, f.y, f.v)
	}

	cur.Y = 228
	c.stampQR(rec)
	c.eng.Space(cur, 10)
}

func (c *Composer) placePair(cur *layout.Cursor, label, raw string) {
	c.eng.PlaceText(cur, fmt.Sprintf("%s: %s", label, c.norm.Resolve(raw)), styleBody)
}

// stampQR draws a QR report reference in the top-right header area.
func (c *Composer) stampQR(rec *record.InspectionRecord) {
	if !c.opts.QRStamp {
		return
	}
	ref := fmt.Sprintf("TREC|%s|%s|%s",
		c.norm.Resolve(rec.Inspector.License),
		c.norm.Resolve(rec.Property.Address),
		c.norm.Resolve(rec.InspectionDate))
	img, err := qrStamp(ref)
	if err != nil {
		c.log.Warn("skipping QR stamp", "err", err)
		return
	}
	pageW, _ := c.pdf.GetPageSize()
	opt := fpdf.ImageOptions{ImageType: "PNG"}
	c.pdf.RegisterImageOptionsReader("report-qr", opt, bytes.NewReader(img))
	c.pdf.ImageOptions("report-qr", pageW-c.eng.Margin()-qrStampSize, 88, qrStampSize, qrStampSize, false, opt, 0, "")
}

func (c *Composer) composeSummary(cur *layout.Cursor, rec *record.InspectionRecord) {
	if len(rec.Findings) == 0 {
		return
	}
	counts := rec.CountByStatus()
	line := fmt.Sprintf("Findings: %d total (%d inspected, %d not inspected, %d deficient, %d unreported)",
		len(rec.Findings),
		counts[record.Inspected],
		counts[record.NotInspected],
		counts[record.Deficient],
		counts[record.Unset])
	c.pdf.SetTextColor(86, 97, 115)
	c.eng.PlaceText(cur, line, styleSmall)
	c.pdf.SetTextColor(0, 0, 0)
	c.eng.Space(cur, 8)
}

func (c *Composer) composeFindings(cur *layout.Cursor, rec *record.InspectionRecord) {
	if len(rec.Findings) == 0 {
		return
	}

	// Keep the heading and column labels attached to the first finding
	// instead of leaving them orphaned at the bottom of a page.
	lead := styleSection.LineHeight + labelRowHeight
	first := c.blockHeight(1, rec.Findings[0])
	if m := c.eng.UsableHeight() - lead; first > m {
		first = m
	}
	if !c.eng.Fits(cur, lead+first) {
		c.eng.PageBreak(cur)
	}

	c.eng.PlaceText(cur, "INSPECTION FINDINGS", styleSection)
	c.placeColumnLabels(cur)

	for i, f := range rec.Findings {
		cat := fmt.Sprintf("%d. %s", i+1, c.norm.Resolve(f.Category))
		desc := strings.TrimSpace(f.Description)

		block := c.blockHeight(i+1, f)
		if c.opts.GroupFindings && !c.eng.Fits(cur, block) && block <= c.eng.UsableHeight() {
			c.eng.PageBreak(cur)
			c.eng.PlaceText(cur, "INSPECTION FINDINGS (continued)", styleSection)
			c.placeColumnLabels(cur)
		}

		c.eng.PlaceText(cur, cat, styleBodyBold)
		c.eng.PlaceCheckbox(cur, f.Status)
		if desc != "" {
			c.eng.PlaceText(cur, desc, styleSmall)
		}
		c.eng.Space(cur, findingGap)
	}
}

// labelRowHeight is the vertical space the status column labels occupy.
const labelRowHeight = 14.0

// blockHeight measures the full height of finding f rendered as entry n:
// category line(s), checkbox row, description, and the trailing gap.
func (c *Composer) blockHeight(n int, f record.Finding) float64 {
	cat := fmt.Sprintf("%d. %s", n, c.norm.Resolve(f.Category))
	h := c.eng.TextHeight(cat, styleBodyBold) + checkbox.RowHeight + findingGap
	if desc := strings.TrimSpace(f.Description); desc != "" {
		h += c.eng.TextHeight(desc, styleSmall)
	}
	return h
}

// placeColumnLabels writes the three status column headings aligned with the
// checkbox offsets below them. The row breaks to a fresh page when it would
// not fit together with at least one checkbox row.
func (c *Composer) placeColumnLabels(cur *layout.Cursor) {
	if !c.eng.Fits(cur, labelRowHeight+checkbox.RowHeight) {
		c.eng.PageBreak(cur)
	}
	c.pdf.SetFont(fontFamily, "", 8)
	c.pdf.SetTextColor(86, 97, 115)
	m := c.eng.Margin()
	for i, lab := range checkbox.Labels() {
		c.pdf.Text(m+float64(i)*checkbox.BoxSpacing, cur.Y+8, lab)
	}
	c.pdf.SetTextColor(0, 0, 0)
	c.eng.Space(cur, labelRowHeight)
}

func (c *Composer) composeImages(ctx context.Context, cur *layout.Cursor, rec *record.InspectionRecord) {
	if len(rec.Images) == 0 {
		return
	}
	c.sectionBreak(cur)
	c.eng.PlaceText(cur, "IMAGES", styleSection)

	for i, url := range rec.Images {
		caption := fmt.Sprintf("Image %d", i+1)
		asset := c.res.FetchImage(ctx, url)
		if !asset.OK() {
			c.eng.PlaceText(cur, caption, styleSmall)
			c.eng.PlaceImagePlaceholder(cur, c.opts.ImageMaxWidth, 100, "Image unavailable")
			continue
		}

		// Keep the caption on the same page as its image.
		capH := c.eng.TextHeight(caption, styleSmall)
		_, imgH := layout.FitImage(float64(asset.Width), float64(asset.Height),
			c.imageWidth(), c.eng.UsableHeight())
		if !c.eng.Fits(cur, capH+imgH) && capH+imgH <= c.eng.UsableHeight() {
			c.eng.PageBreak(cur)
		}

		c.eng.PlaceText(cur, caption, styleSmall)
		c.eng.PlaceImage(cur, asset, c.opts.ImageMaxWidth)
	}
}

// imageWidth is the effective gallery width cap after clamping to the column.
func (c *Composer) imageWidth() float64 {
	if w := c.eng.ColumnWidth(); c.opts.ImageMaxWidth > w {
		return w
	}
	return c.opts.ImageMaxWidth
}

func (c *Composer) composeVideos(cur *layout.Cursor, rec *record.InspectionRecord) {
	if len(rec.Videos) == 0 {
		return
	}
	c.sectionBreak(cur)
	c.eng.PlaceText(cur, "VIDEOS", styleSection)

	for i, raw := range rec.Videos {
		url, ok := c.res.ValidateVideoLink(raw)
		if !ok {
			c.log.Debug("dropping malformed video link", "url", raw)
			continue
		}
		c.eng.PlaceLink(cur, fmt.Sprintf("Video %d: %s", i+1, url), url, styleSmall)
		c.eng.Space(cur, 4)
	}
}

// sectionBreak forces a fresh page for a new section unless the cursor is
// already at the top of an unused page.
func (c *Composer) sectionBreak(cur *layout.Cursor) {
	if !c.eng.AtTop(cur) {
		c.eng.PageBreak(cur)
	}
}
