// Package media retrieves and prepares remote media references for report
// embedding. Image fetches are blocking with a bounded per-request timeout
// and fail soft: any retrieval or decode failure yields a failure-marker
// Asset, never an error that aborts the run. Video references are validated
// syntactically for use as clickable link annotations.
package media

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"
)

// Asset is a decoded, size-known image ready for placement, or a failure
// marker. Assets are transient: created per reference, placed once, and
// discarded. The zero value is the failure marker.
type Asset struct {
	Name   string // registration name, stable per source URL
	Data   []byte // encoded image bytes
	Type   string // "JPG", "PNG", or "GIF"
	Width  int    // intrinsic width in pixels
	Height int    // intrinsic height in pixels
}

// OK reports whether the asset holds a usable image.
func (a Asset) OK() bool {
	return len(a.Data) > 0 && a.Width > 0 && a.Height > 0
}

// Resolver supplies media content on demand. The composition pipeline depends
// only on this interface so layout logic stays testable with deterministic
// fakes, decoupled from network I/O.
type Resolver interface {
	// FetchImage retrieves and decodes the image at url. On any failure it
	// returns the failure marker.
	FetchImage(ctx context.Context, url string) Asset

	// ValidateVideoLink reports whether url is well-formed enough to place
	// as a clickable annotation, returning the canonical form when it is.
	ValidateVideoLink(url string) (string, bool)
}

// ValidateVideoLink accepts absolute http and https URLs with a host.
// Anything else is dropped silently by the caller: the link is omitted, not
// rendered as broken.
func ValidateVideoLink(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	return u.String(), true
}

// assetName derives a stable registration name from the source URL so that
// repeated references to one URL share a single embedded image.
func assetName(url string) string {
	h := fnv.New64a()
	h.Write([]byte(url))
	return fmt.Sprintf("media-%016x", h.Sum64())
}
