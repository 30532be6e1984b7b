// Package checkbox renders the tri-state inspection status as three mutually
// exclusive checkboxes, matching the TREC form's Inspected / Not Inspected /
// Deficient columns.
package checkbox

import (
	"math/rand"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/Arrrttyyyys/TREC/record"
)

// Geometry of a checkbox row, in points. The three boxes sit at fixed
// offsets within the row so they line up with column labels drawn above.
const (
	BoxSize    = 9.0  // side of each box
	BoxSpacing = 90.0 // distance between box origins
	RowHeight  = 14.0 // vertical space a checkbox row occupies
)

// Region is the area a checkbox row is drawn into. X, Y is the top-left
// corner in page coordinates.
type Region struct {
	X, Y float64
}

// Renderer draws tri-state checkbox rows. It is stateless across calls
// except for the random source used when a finding's status is Unset.
type Renderer struct {
	rng *rand.Rand
}

// New returns a Renderer using rng to pick the box for Unset statuses.
// A nil rng is replaced with a time-seeded source; tests pass a fixed seed.
func New(rng *rand.Rand) *Renderer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Renderer{rng: rng}
}

// boxIndex maps a determinate status to its box position.
func boxIndex(st record.Status) (int, bool) {
	switch st {
	case record.Inspected:
		return 0, true
	case record.NotInspected:
		return 1, true
	case record.Deficient:
		return 2, true
	default:
		return 0, false
	}
}

// Render draws three empty box outlines at fixed offsets within region and
// marks exactly one of them according to st. An Unset status marks one box
// chosen uniformly at random, reproducing the source system's documented
// behavior for findings that arrive without a status. Returns the index
// (0..2) of the marked box.
//
// Exactly one box is marked on every call, regardless of status.
func (r *Renderer) Render(pdf *fpdf.Fpdf, st record.Status, region Region) int {
	marked, ok := boxIndex(st)
	if !ok {
		marked = r.rng.Intn(3)
	}

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.7)
	for i := 0; i < 3; i++ {
		pdf.Rect(region.X+float64(i)*BoxSpacing, region.Y, BoxSize, BoxSize, "D")
	}

	bx := region.X + float64(marked)*BoxSpacing
	pdf.SetFont("Helvetica", "B", BoxSize)
	pdf.Text(bx+1.5, region.Y+BoxSize-1.5, "X")

	return marked
}

// Labels returns the column headings in box order, for callers that draw
// them above the checkbox rows.
func Labels() [3]string {
	return [3]string{
		record.Inspected.String(),
		record.NotInspected.String(),
		record.Deficient.String(),
	}
}
