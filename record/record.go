// Package record defines the inspection record data model and the rules for
// turning loosely structured input into values the report can display.
//
// An InspectionRecord is loaded once from JSON and consumed read-only for the
// whole generation run. Unknown fields in the input are ignored; missing
// nested objects decode to their zero values and resolve to the placeholder
// at render time.
package record

import (
	"encoding/json"
	"strings"
)

// Status is the tri-state inspection outcome of a finding.
//
// The zero value is Unset, which the input maps any empty or unrecognized
// status string to. Unset findings are rendered with one checkbox chosen at
// random, reproducing the documented behavior of the source system.
type Status int

const (
	Unset Status = iota
	Inspected
	NotInspected
	Deficient
)

// statusNames maps canonical status spellings to values. Lookup keys are
// lowercased with inner whitespace and underscores collapsed.
var statusNames = map[string]Status{
	"inspected":     Inspected,
	"not inspected": NotInspected,
	"notinspected":  NotInspected,
	"deficient":     Deficient,
}

// ParseStatus normalizes a raw status string to exactly one of the four
// states. Comparison is case-insensitive and tolerant of underscores and
// extra whitespace. Empty or unrecognized input yields Unset.
func ParseStatus(s string) Status {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")
	if st, ok := statusNames[s]; ok {
		return st
	}
	return Unset
}

// String returns the display name of the status.
func (s Status) String() string {
	switch s {
	case Inspected:
		return "Inspected"
	case NotInspected:
		return "Not Inspected"
	case Deficient:
		return "Deficient"
	default:
		return "Unset"
	}
}

// UnmarshalJSON accepts the status as a free-form JSON string.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseStatus(raw)
	return nil
}

// MarshalJSON writes the canonical display name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Inspector identifies the licensed inspector who performed the inspection.
type Inspector struct {
	Name    string `json:"name"`
	License string `json:"license"`
}

// Property is the inspected property's address.
type Property struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

// Client is the party the report is prepared for.
type Client struct {
	Name string `json:"name"`
}

// Finding is one inspected item: a category, a tri-state status, and an
// optional free-text description.
type Finding struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// InspectionRecord is the full input to report generation. It is immutable
// once constructed; all components read it without modification.
type InspectionRecord struct {
	Inspector      Inspector `json:"inspector"`
	Property       Property  `json:"property"`
	InspectionDate string    `json:"inspection_date"`
	Client         Client    `json:"client"`
	Findings       []Finding `json:"findings"`
	Images         []string  `json:"images"`
	Videos         []string  `json:"videos"`
}

// CountByStatus tallies findings per status, counting Unset findings under
// Unset (the random checkbox is a rendering concern, not a data one).
func (r *InspectionRecord) CountByStatus() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, f := range r.Findings {
		counts[f.Status]++
	}
	return counts
}
