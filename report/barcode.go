package report

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// qrStampSize is the rendered side of the header stamp, in points.
const qrStampSize = 50.0

// qrStamp encodes a report reference as a QR code and returns it as PNG
// bytes sized for the header stamp.
func qrStamp(content string) ([]byte, error) {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("report: encoding QR stamp: %w", err)
	}
	scaled, err := barcode.Scale(code, 200, 200)
	if err != nil {
		return nil, fmt.Errorf("report: scaling QR stamp: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("report: rendering QR stamp: %w", err)
	}
	return buf.Bytes(), nil
}
