package report_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"

	"github.com/Arrrttyyyys/TREC/checkbox"
	"github.com/Arrrttyyyys/TREC/layout"
	"github.com/Arrrttyyyys/TREC/media"
	"github.com/Arrrttyyyys/TREC/record"
	"github.com/Arrrttyyyys/TREC/report"
)

// fakeResolver serves canned assets keyed by URL; unknown URLs resolve to
// the failure marker, mimicking an unreachable image.
type fakeResolver struct {
	assets map[string]media.Asset
}

func (f fakeResolver) FetchImage(_ context.Context, url string) media.Asset {
	return f.assets[url]
}

func (f fakeResolver) ValidateVideoLink(url string) (string, bool) {
	return media.ValidateVideoLink(url)
}

// jpegAsset builds a decodable in-memory asset for embedding tests.
func jpegAsset(t *testing.T, name string, w, h int) media.Asset {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 90, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding test asset: %v", err)
	}
	return media.Asset{Name: name, Data: buf.Bytes(), Type: "JPG", Width: w, Height: h}
}

func newComposer(t *testing.T, res media.Resolver, opts report.Options) (*fpdf.Fpdf, *report.Composer) {
	t.Helper()
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(false)
	pdf.SetAutoPageBreak(false, 0)
	eng := layout.NewEngine(pdf, report.ScratchBackground{}, checkbox.New(rand.New(rand.NewSource(1))),
		layout.Config{Margin: 54, ImageGap: 10}, nil)
	comp := report.NewComposer(pdf, eng, res, record.NewNormalizer(""), opts, nil)
	return pdf, comp
}

// compose runs a full composition and returns the uncompressed PDF bytes.
func compose(t *testing.T, rec *record.InspectionRecord, res media.Resolver, opts report.Options) []byte {
	t.Helper()
	pdf, comp := newComposer(t, res, opts)
	if err := comp.Compose(context.Background(), rec); err != nil {
		t.Fatalf("compose: %v", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("output: %v", err)
	}
	return buf.Bytes()
}

func TestComposeNilRecord(t *testing.T) {
	_, comp := newComposer(t, fakeResolver{}, report.Options{})
	if err := comp.Compose(context.Background(), nil); !errors.Is(err, report.ErrNilRecord) {
		t.Fatalf("expected ErrNilRecord, got %v", err)
	}
}

func TestComposeEmptyRecord(t *testing.T) {
	out := compose(t, &record.InspectionRecord{}, fakeResolver{}, report.Options{})

	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
	// Every header field resolves to the placeholder.
	if got := bytes.Count(out, []byte(record.Placeholder)); got < 8 {
		t.Errorf("placeholder appears %d times, want >= 8", got)
	}
	if !bytes.Contains(out, []byte("TEXAS REAL ESTATE COMMISSION")) {
		t.Error("missing header band title")
	}
	// No findings, images, or videos: no section headings.
	if bytes.Contains(out, []byte("INSPECTION FINDINGS")) {
		t.Error("unexpected findings section in empty report")
	}
}

func TestComposeHeaderFields(t *testing.T) {
	rec := &record.InspectionRecord{
		Inspector:      record.Inspector{Name: "Jane Roe", License: "TREC #12345"},
		Property:       record.Property{Address: "123 Main St", City: "Austin", State: "TX", Zip: "78701"},
		InspectionDate: "2026-08-01",
		Client:         record.Client{Name: "John Doe"},
	}
	out := compose(t, rec, fakeResolver{}, report.Options{})

	for _, want := range []string{
		"Inspector: Jane Roe",
		"License: TREC #12345",
		"Address: 123 Main St",
		"City: Austin",
		"Date of Inspection: 2026-08-01",
		"Client: John Doe",
	} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestComposeFindingsInOrder(t *testing.T) {
	rec := &record.InspectionRecord{
		Findings: []record.Finding{
			{Category: "Roof", Description: "Shingles curling at the south face", Status: record.Deficient},
			{Category: "Foundation", Status: record.Inspected},
			{Category: "Attic", Status: record.NotInspected},
		},
	}
	out := compose(t, rec, fakeResolver{}, report.Options{GroupFindings: true})

	if !bytes.Contains(out, []byte("INSPECTION FINDINGS")) {
		t.Fatal("missing findings heading")
	}
	for _, lab := range checkbox.Labels() {
		if !bytes.Contains(out, []byte(lab)) {
			t.Errorf("missing column label %q", lab)
		}
	}

	i1 := bytes.Index(out, []byte("1. Roof"))
	i2 := bytes.Index(out, []byte("2. Foundation"))
	i3 := bytes.Index(out, []byte("3. Attic"))
	if i1 < 0 || i2 < 0 || i3 < 0 {
		t.Fatalf("missing finding categories: %d %d %d", i1, i2, i3)
	}
	if !(i1 < i2 && i2 < i3) {
		t.Errorf("findings out of order: %d %d %d", i1, i2, i3)
	}
	if !bytes.Contains(out, []byte("Shingles curling at the south face")) {
		t.Error("missing finding description")
	}
}

func TestComposeEmptyRecordSinglePage(t *testing.T) {
	pdf, comp := newComposer(t, fakeResolver{}, report.Options{})
	if err := comp.Compose(context.Background(), &record.InspectionRecord{}); err != nil {
		t.Fatalf("compose: %v", err)
	}
	if pdf.PageCount() != 1 {
		t.Errorf("pages = %d, want 1", pdf.PageCount())
	}
}

// streamOf returns the index of the first page content stream containing
// needle, or -1. With compression off each page's content is a separate
// stream, serialized in page order.
func streamOf(out []byte, needle string) int {
	for i, s := range bytes.Split(out, []byte("endstream")) {
		if bytes.Contains(s, []byte(needle)) {
			return i
		}
	}
	return -1
}

func TestComposeGroupedFindingNotSplit(t *testing.T) {
	findings := make([]record.Finding, 30)
	for i := range findings {
		findings[i] = record.Finding{
			Category:    fmt.Sprintf("Category-%02d", i),
			Description: fmt.Sprintf("Observed wear during the walkthrough of area %02d. DescTail-%02d", i, i),
			Status:      record.Inspected,
		}
	}
	rec := &record.InspectionRecord{Findings: findings}
	out := compose(t, rec, fakeResolver{}, report.Options{GroupFindings: true})

	for i := range findings {
		cat := streamOf(out, fmt.Sprintf("Category-%02d", i))
		desc := streamOf(out, fmt.Sprintf("DescTail-%02d", i))
		if cat < 0 || desc < 0 {
			t.Fatalf("finding %d missing from output (cat %d, desc %d)", i, cat, desc)
		}
		if cat != desc {
			t.Errorf("finding %d split across pages (category stream %d, description stream %d)", i, cat, desc)
		}
	}
	if streamOf(out, "Category-00") == streamOf(out, "Category-29") {
		t.Fatal("findings did not cross a page boundary")
	}
}

func TestComposeFindingsHeadingKeptWithFirstRow(t *testing.T) {
	// Sweep the header length so the findings heading lands at every offset
	// around the bottom margin; the heading, column labels, and first
	// finding must stay together wherever the section starts.
	for repeats := 100; repeats <= 140; repeats += 2 {
		rec := &record.InspectionRecord{
			Inspector: record.Inspector{Name: strings.TrimSpace(strings.Repeat("inspection services group ", repeats))},
			Findings: []record.Finding{
				{Category: "Roof", Description: "Shingles curling", Status: record.Deficient},
			},
		}
		out := compose(t, rec, fakeResolver{}, report.Options{GroupFindings: true})

		cat := streamOf(out, "1. Roof")
		if cat < 0 {
			t.Fatalf("repeats %d: first finding missing from output", repeats)
		}
		labels := bytes.Split(out, []byte("endstream"))[cat]
		if !bytes.Contains(labels, []byte("Not Inspected")) {
			t.Errorf("repeats %d: first finding separated from its column labels", repeats)
		}
	}
}

func TestComposeSummaryCounts(t *testing.T) {
	rec := &record.InspectionRecord{
		Findings: []record.Finding{
			{Category: "A", Status: record.Inspected},
			{Category: "B", Status: record.Inspected},
			{Category: "C", Status: record.Deficient},
		},
	}
	out := compose(t, rec, fakeResolver{}, report.Options{})
	// Parentheses are escaped inside PDF string literals, so match around them.
	for _, want := range []string{
		"Findings: 3 total",
		"2 inspected, 0 not inspected, 1 deficient, 0 unreported",
	} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("output missing summary fragment %q", want)
		}
	}
}

func TestComposeImagePlaceholderOnFailure(t *testing.T) {
	rec := &record.InspectionRecord{
		Images: []string{"https://example.com/broken.png"},
	}
	out := compose(t, rec, fakeResolver{}, report.Options{})

	if !bytes.Contains(out, []byte("IMAGES")) {
		t.Fatal("missing images heading")
	}
	if !bytes.Contains(out, []byte("Image 1")) {
		t.Error("missing image caption")
	}
	if !bytes.Contains(out, []byte("Image unavailable")) {
		t.Error("missing unavailable placeholder")
	}
}

func TestComposeImageEmbeds(t *testing.T) {
	url := "https://example.com/photo.jpg"
	res := fakeResolver{assets: map[string]media.Asset{
		url: jpegAsset(t, "media-photo", 60, 40),
	}}
	rec := &record.InspectionRecord{Images: []string{url}}

	pdf, comp := newComposer(t, res, report.Options{})
	if err := comp.Compose(context.Background(), rec); err != nil {
		t.Fatalf("compose: %v", err)
	}
	if pdf.Err() {
		t.Fatalf("pdf error: %v", pdf.Error())
	}
	// Header page plus image section page.
	if pdf.PageCount() != 2 {
		t.Errorf("pages = %d, want 2", pdf.PageCount())
	}
}

func TestComposeVideos(t *testing.T) {
	rec := &record.InspectionRecord{
		Videos: []string{
			"https://example.com/walkthrough.mp4",
			"not a video link",
		},
	}
	out := compose(t, rec, fakeResolver{}, report.Options{})

	if !bytes.Contains(out, []byte("VIDEOS")) {
		t.Fatal("missing videos heading")
	}
	if !bytes.Contains(out, []byte("Video 1: https://example.com/walkthrough.mp4")) {
		t.Error("missing video link text")
	}
	if !bytes.Contains(out, []byte("/URI")) {
		t.Error("missing link annotation")
	}
	if bytes.Contains(out, []byte("not a video link")) {
		t.Error("malformed video link should be dropped")
	}
	if bytes.Contains(out, []byte("Video 2")) {
		t.Error("dropped link still numbered")
	}
}

func TestComposeFooterPageNumbers(t *testing.T) {
	findings := make([]record.Finding, 40)
	for i := range findings {
		findings[i] = record.Finding{
			Category:    "Interior walls and ceilings",
			Description: "Minor cosmetic cracking observed in several rooms during the walkthrough.",
			Status:      record.Inspected,
		}
	}
	rec := &record.InspectionRecord{
		Property: record.Property{Address: "123 Main St"},
		Findings: findings,
	}
	out := compose(t, rec, fakeResolver{}, report.Options{GroupFindings: true})

	if !bytes.Contains(out, []byte("Page 1 of ")) {
		t.Error("missing footer page number")
	}
	if bytes.Contains(out, []byte("{nb}")) {
		t.Error("page count alias left unreplaced")
	}
	// The parentheses around "continued" are escaped in the content stream.
	if !bytes.Contains(out, []byte("continued")) {
		t.Error("missing continued heading on overflow page")
	}
}

func TestComposeOverlayHeader(t *testing.T) {
	rec := &record.InspectionRecord{
		Inspector:      record.Inspector{Name: "Jane Roe", License: "TREC #12345"},
		Property:       record.Property{Address: "123 Main St", City: "Austin", State: "TX", Zip: "78701"},
		InspectionDate: "2026-08-01",
		Client:         record.Client{Name: "John Doe"},
	}
	out := compose(t, rec, fakeResolver{}, report.Options{Overlay: true})

	// Overlay mode writes bare values at the form's blanks; the template
	// underneath carries the labels and the band is not drawn.
	if bytes.Contains(out, []byte("TEXAS REAL ESTATE COMMISSION")) {
		t.Error("overlay mode drew the scratch header band")
	}
	for _, want := range []string{"Jane Roe", "TREC #12345", "123 Main St", "Austin, TX 78701"} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestComposeQRStamp(t *testing.T) {
	rec := &record.InspectionRecord{
		Inspector: record.Inspector{License: "TREC #12345"},
		Property:  record.Property{Address: "123 Main St"},
	}
	pdf, comp := newComposer(t, fakeResolver{}, report.Options{QRStamp: true})
	if err := comp.Compose(context.Background(), rec); err != nil {
		t.Fatalf("compose: %v", err)
	}
	if pdf.Err() {
		t.Fatalf("pdf error: %v", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("output: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty output")
	}
}
