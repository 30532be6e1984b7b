// Package layout implements the pagination and flow core of the report
// generator. An Engine places sequential content blocks onto pages, tracking
// position through an explicit Cursor: text is wrapped to the column width at
// word boundaries, images are scaled to fit and never split across pages,
// and a page break is triggered automatically whenever the next piece of
// content would cross the bottom margin.
//
// The Engine draws through go-pdf/fpdf primitives and obtains each new page
// from a Background provider, which is how the from-scratch and
// template-overlay modes share one flow implementation.
package layout

import (
	"bytes"
	"io"

	"github.com/charmbracelet/log"
	"github.com/go-pdf/fpdf"

	"github.com/Arrrttyyyys/TREC/checkbox"
	"github.com/Arrrttyyyys/TREC/media"
	"github.com/Arrrttyyyys/TREC/record"
)

// Background supplies page backgrounds. AddPage must append one page to the
// document; page is the 1-based index of the page being created.
type Background interface {
	AddPage(pdf *fpdf.Fpdf, page int)
}

// Cursor tracks the write position within the document being composed. Y is
// the distance from the top of the page and only grows within a page; a page
// break resets it to the top margin and increments Page. The cursor is owned
// exclusively by the single composition pass.
type Cursor struct {
	Page int
	Y    float64
}

// Style selects the font for a text placement. LineHeight of zero derives
// the leading from the font size.
type Style struct {
	Family     string
	FontStyle  string // "", "B", "I", "BI"
	Size       float64
	LineHeight float64
}

func (s Style) leading() float64 {
	if s.LineHeight > 0 {
		return s.LineHeight
	}
	return s.Size * 1.35
}

// Config holds the page geometry the engine lays content out against.
// All values are in points.
type Config struct {
	Margin   float64 // uniform page margin
	ImageGap float64 // vertical gap after a placed image
}

// DefaultMargin matches the source report's 0.75 inch page margin.
const DefaultMargin = 54.0

// Engine performs deterministic placement of content blocks onto pages.
// It is not safe for concurrent use; one engine drives one document.
type Engine struct {
	pdf      *fpdf.Fpdf
	bg       Background
	cb       *checkbox.Renderer
	log      *log.Logger
	margin   float64
	imageGap float64
	pageW    float64
	pageH    float64
}

// NewEngine creates an engine drawing into pdf, taking page backgrounds from
// bg and checkbox rows from cb. A nil logger discards warnings.
func NewEngine(pdf *fpdf.Fpdf, bg Background, cb *checkbox.Renderer, cfg Config, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.Margin <= 0 {
		cfg.Margin = DefaultMargin
	}
	if cfg.ImageGap <= 0 {
		cfg.ImageGap = 10
	}
	w, h := pdf.GetPageSize()
	return &Engine{
		pdf:      pdf,
		bg:       bg,
		cb:       cb,
		log:      logger,
		margin:   cfg.Margin,
		imageGap: cfg.ImageGap,
		pageW:    w,
		pageH:    h,
	}
}

// BeginDocument adds the first page and returns a cursor at its top margin.
func (e *Engine) BeginDocument() *Cursor {
	cur := &Cursor{}
	e.PageBreak(cur)
	return cur
}

// Margin returns the uniform page margin.
func (e *Engine) Margin() float64 { return e.margin }

// ColumnWidth returns the usable width between the left and right margins.
func (e *Engine) ColumnWidth() float64 { return e.pageW - 2*e.margin }

// UsableHeight returns the content height of a fresh page.
func (e *Engine) UsableHeight() float64 { return e.pageH - 2*e.margin }

// Remaining returns the vertical space left on the cursor's page.
func (e *Engine) Remaining(cur *Cursor) float64 { return e.pageH - e.margin - cur.Y }

// Fits reports whether a block of the given height fits on the current page
// without a break.
func (e *Engine) Fits(cur *Cursor, height float64) bool {
	return height <= e.Remaining(cur)
}

// PageBreak finalizes the current page and starts the next: the background
// provider appends a page, Y resets to the top margin, and Page increments.
// Drawing state that page-end hooks may have touched is reset to defaults.
func (e *Engine) PageBreak(cur *Cursor) {
	cur.Page++
	cur.Y = e.margin
	e.bg.AddPage(e.pdf, cur.Page)
	e.pdf.SetTextColor(0, 0, 0)
	e.pdf.SetDrawColor(0, 0, 0)
	e.pdf.SetLineWidth(0.2)
}

// PlaceText wraps text to the column width and draws it line by line,
// breaking at word boundaries; a single word wider than the column is
// hard-broken. A page break is triggered before any line that would cross
// the bottom margin. The cursor advances by the rendered height. Empty text
// places nothing.
func (e *Engine) PlaceText(cur *Cursor, text string, st Style) {
	if text == "" {
		return
	}
	e.pdf.SetFont(st.Family, st.FontStyle, st.Size)
	lh := st.leading()
	for _, line := range e.pdf.SplitText(text, e.ColumnWidth()) {
		if !e.Fits(cur, lh) {
			e.PageBreak(cur)
			e.pdf.SetFont(st.Family, st.FontStyle, st.Size)
		}
		e.pdf.Text(e.margin, cur.Y+st.Size, line)
		cur.Y += lh
	}
	e.checkBounds(cur, "PlaceText")
}

// TextHeight measures the height PlaceText would consume for text, without
// drawing. The composer uses it to keep grouped blocks on one page.
func (e *Engine) TextHeight(text string, st Style) float64 {
	if text == "" {
		return 0
	}
	e.pdf.SetFont(st.Family, st.FontStyle, st.Size)
	lines := e.pdf.SplitText(text, e.ColumnWidth())
	return float64(len(lines)) * st.leading()
}

// PlaceLink draws a single line of text and overlays a clickable region
// pointing at url. Display text wider than the column is elided with "...";
// the link target is never shortened. Page-breaks first when the line does
// not fit.
func (e *Engine) PlaceLink(cur *Cursor, text, url string, st Style) {
	e.pdf.SetFont(st.Family, st.FontStyle, st.Size)
	lh := st.leading()
	if !e.Fits(cur, lh) {
		e.PageBreak(cur)
		e.pdf.SetFont(st.Family, st.FontStyle, st.Size)
	}
	if e.pdf.GetStringWidth(text) > e.ColumnWidth() {
		r := []rune(text)
		for len(r) > 0 && e.pdf.GetStringWidth(string(r)+"...") > e.ColumnWidth() {
			r = r[:len(r)-1]
		}
		text = string(r) + "..."
	}
	e.pdf.SetTextColor(6, 69, 173)
	e.pdf.Text(e.margin, cur.Y+st.Size, text)
	w := e.pdf.GetStringWidth(text)
	e.pdf.LinkString(e.margin, cur.Y, w, lh, url)
	e.pdf.SetTextColor(0, 0, 0)
	cur.Y += lh
	e.checkBounds(cur, "PlaceLink")
}

// PlaceImage scales the asset preserving aspect ratio so its width does not
// exceed maxWidth (clamped to the column width) and its height fits a page,
// then draws it at the cursor. If the scaled image does not fit the
// remaining space a page break happens first; an image is never split
// across pages. Assets without valid dimensions are skipped with a warning
// rather than aborting the document.
func (e *Engine) PlaceImage(cur *Cursor, a media.Asset, maxWidth float64) {
	if !a.OK() {
		e.log.Warn("layout: skipping image with no usable dimensions", "name", a.Name)
		return
	}
	if maxWidth <= 0 || maxWidth > e.ColumnWidth() {
		maxWidth = e.ColumnWidth()
	}

	w, h := FitImage(float64(a.Width), float64(a.Height), maxWidth, e.UsableHeight())
	if !e.Fits(cur, h) {
		e.PageBreak(cur)
	}

	opt := fpdf.ImageOptions{ImageType: a.Type}
	e.pdf.RegisterImageOptionsReader(a.Name, opt, bytes.NewReader(a.Data))
	e.pdf.ImageOptions(a.Name, e.margin, cur.Y, w, h, false, opt, 0, "")
	e.advance(cur, h+e.imageGap)
	e.checkBounds(cur, "PlaceImage")
}

// PlaceRect draws a rectangle of the given size at the cursor, breaking the
// page first when it does not fit. Used for placeholder frames where an
// image could not be retrieved. styleStr is an fpdf draw style ("D", "F",
// "FD").
func (e *Engine) PlaceRect(cur *Cursor, w, h float64, styleStr string) {
	if w > e.ColumnWidth() {
		w = e.ColumnWidth()
	}
	if h > e.UsableHeight() {
		h = e.UsableHeight()
	}
	if !e.Fits(cur, h) {
		e.PageBreak(cur)
	}
	e.pdf.Rect(e.margin, cur.Y, w, h, styleStr)
	e.advance(cur, h+e.imageGap)
	e.checkBounds(cur, "PlaceRect")
}

// Space advances the cursor by h of vertical whitespace. Trailing gaps are
// clamped at the bottom margin rather than spilling onto a fresh page.
func (e *Engine) Space(cur *Cursor, h float64) {
	e.advance(cur, h)
}

// AtTop reports whether the cursor sits unused at the top margin of its
// page. Section breaks skip the page break in that case to avoid emitting a
// blank page.
func (e *Engine) AtTop(cur *Cursor) bool {
	return cur.Y == e.margin
}

// PlaceImagePlaceholder draws the substitute frame used when an image could
// not be retrieved: an outlined box with crossed diagonals and a centered
// message. Page-breaks first when the frame does not fit.
func (e *Engine) PlaceImagePlaceholder(cur *Cursor, w, h float64, msg string) {
	if w <= 0 || w > e.ColumnWidth() {
		w = e.ColumnWidth()
	}
	if h <= 0 || h > e.UsableHeight() {
		h = e.UsableHeight()
	}
	if !e.Fits(cur, h) {
		e.PageBreak(cur)
	}

	x, y := e.margin, cur.Y
	e.pdf.SetDrawColor(160, 160, 160)
	e.pdf.Rect(x, y, w, h, "D")
	e.pdf.Line(x, y, x+w, y+h)
	e.pdf.Line(x, y+h, x+w, y)
	if msg != "" {
		e.pdf.SetFont("Helvetica", "I", 9)
		e.pdf.SetTextColor(120, 120, 120)
		tw := e.pdf.GetStringWidth(msg)
		if tw > w-4 {
			tw = w - 4
		}
		e.pdf.Text(x+(w-tw)/2, y+h/2+3, msg)
		e.pdf.SetTextColor(0, 0, 0)
	}
	e.pdf.SetDrawColor(0, 0, 0)
	e.advance(cur, h+e.imageGap)
	e.checkBounds(cur, "PlaceImagePlaceholder")
}

// PlaceCheckbox delegates to the checkbox renderer at the current cursor
// offset and advances the cursor by the fixed checkbox row height. Returns
// the index of the marked box.
func (e *Engine) PlaceCheckbox(cur *Cursor, st record.Status) int {
	if !e.Fits(cur, checkbox.RowHeight) {
		e.PageBreak(cur)
	}
	marked := e.cb.Render(e.pdf, st, checkbox.Region{X: e.margin, Y: cur.Y})
	cur.Y += checkbox.RowHeight
	e.checkBounds(cur, "PlaceCheckbox")
	return marked
}

// FitImage scales intrinsic dimensions (w, h) down to fit within maxW x
// maxH, preserving aspect ratio. Images already within bounds keep their
// size; nothing is ever enlarged.
func FitImage(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	scale := maxW / w
	if s := maxH / h; s < scale {
		scale = s
	}
	if scale > 1 {
		scale = 1
	}
	return w * scale, h * scale
}

// advance moves the cursor down by dy, clamping the trailing gap at the
// bottom margin so inter-block spacing never pushes Y out of bounds.
func (e *Engine) advance(cur *Cursor, dy float64) {
	cur.Y += dy
	if bottom := e.pageH - e.margin; cur.Y > bottom {
		cur.Y = bottom
	}
}

// checkBounds verifies the cursor invariant after a placement: Y stays
// within [top margin, page height - bottom margin]. A violation is a defect
// in the engine, surfaced loudly in logs.
func (e *Engine) checkBounds(cur *Cursor, op string) {
	if cur.Y < e.margin || cur.Y > e.pageH-e.margin {
		e.log.Error("layout: cursor out of bounds", "op", op, "page", cur.Page, "y", cur.Y)
	}
}
