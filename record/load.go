package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Sentinel errors for record loading. Both are fatal: no partial report is
// ever produced from an unreadable or malformed record.
var (
	ErrNotFound = errors.New("record: inspection file not found")
	ErrParse    = errors.New("record: inspection data is not valid JSON")
)

// Load reads and parses an inspection record from a JSON file.
func Load(path string) (*InspectionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("record: reading %s: %w", path, err)
	}
	rec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return rec, nil
}

// Parse decodes an inspection record from JSON bytes. Unknown fields are
// ignored; absent optional objects decode to zero values and resolve to the
// placeholder when rendered.
func Parse(data []byte) (*InspectionRecord, error) {
	var rec InspectionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &rec, nil
}
