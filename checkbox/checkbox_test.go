package checkbox_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/go-pdf/fpdf"

	"github.com/Arrrttyyyys/TREC/checkbox"
	"github.com/Arrrttyyyys/TREC/record"
)

func newTestPDF(t *testing.T) *fpdf.Fpdf {
	t.Helper()
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(false)
	pdf.AddPage()
	return pdf
}

func TestRenderMarksStatusBox(t *testing.T) {
	cases := []struct {
		st   record.Status
		want int
	}{
		{record.Inspected, 0},
		{record.NotInspected, 1},
		{record.Deficient, 2},
	}
	r := checkbox.New(rand.New(rand.NewSource(1)))
	pdf := newTestPDF(t)
	for _, tc := range cases {
		got := r.Render(pdf, tc.st, checkbox.Region{X: 54, Y: 100})
		if got != tc.want {
			t.Errorf("Render(%v) marked box %d, want %d", tc.st, got, tc.want)
		}
	}
	if pdf.Err() {
		t.Fatalf("pdf error: %v", pdf.Error())
	}
}

func TestRenderUnsetPicksOneBox(t *testing.T) {
	r := checkbox.New(rand.New(rand.NewSource(42)))
	pdf := newTestPDF(t)
	seen := make(map[int]bool)
	for i := 0; i < 50; i++ {
		got := r.Render(pdf, record.Unset, checkbox.Region{X: 54, Y: 100})
		if got < 0 || got > 2 {
			t.Fatalf("marked box %d out of range", got)
		}
		seen[got] = true
	}
	// 50 uniform draws hit all three boxes for any reasonable seed.
	if len(seen) != 3 {
		t.Errorf("50 unset renders marked boxes %v, want all three", seen)
	}
}

func TestRenderUnsetDeterministicWithSeed(t *testing.T) {
	run := func() []int {
		r := checkbox.New(rand.New(rand.NewSource(7)))
		pdf := newTestPDF(t)
		out := make([]int, 10)
		for i := range out {
			out[i] = r.Render(pdf, record.Unset, checkbox.Region{X: 54, Y: 100})
		}
		return out
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seeded runs diverged at %d: %v vs %v", i, a, b)
		}
	}
}

func TestRenderWritesSingleMark(t *testing.T) {
	r := checkbox.New(nil)
	pdf := newTestPDF(t)
	pdf.SetFont("Helvetica", "", 10)
	r.Render(pdf, record.Deficient, checkbox.Region{X: 54, Y: 100})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("output: %v", err)
	}
	if got := bytes.Count(buf.Bytes(), []byte("(X)")); got != 1 {
		t.Errorf("found %d X marks in output, want 1", got)
	}
}

func TestLabels(t *testing.T) {
	want := [3]string{"Inspected", "Not Inspected", "Deficient"}
	if got := checkbox.Labels(); got != want {
		t.Errorf("Labels() = %v, want %v", got, want)
	}
}
