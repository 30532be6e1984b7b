package media

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	xdraw "golang.org/x/image/draw"

	// Register decoders beyond the stdlib defaults so photos arrive in
	// whatever format the upload pipeline produced.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/png"
)

// Defaults for the HTTP resolver. Oversized downloads are refused rather
// than decoded, and large photos are downscaled before embedding so the
// output document stays a reasonable size.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxBytes = 8 << 20 // 8 MiB download cap
	maxPixelWidth   = 1200
	maxPixelHeight  = 900
	jpegQuality     = 75
)

// HTTPResolver fetches images over HTTP with a bounded per-request timeout.
// It satisfies Resolver. Failures are logged at warn level and converted to
// failure-marker assets; nothing escapes this boundary as an error.
type HTTPResolver struct {
	client   *http.Client
	log      *log.Logger
	maxBytes int64
}

// NewHTTPResolver returns a resolver with the given per-request timeout.
// A zero timeout uses DefaultTimeout. A nil logger discards warnings.
func NewHTTPResolver(timeout time.Duration, logger *log.Logger) *HTTPResolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &HTTPResolver{
		client:   &http.Client{Timeout: timeout},
		log:      logger,
		maxBytes: DefaultMaxBytes,
	}
}

// FetchImage retrieves, decodes, and normalizes the image at url. Photos
// larger than the pixel bounds are downscaled with Catmull-Rom resampling
// and re-encoded as JPEG. On timeout, non-2xx status, oversized bodies, or
// undecodable bytes it returns the failure marker.
func (r *HTTPResolver) FetchImage(ctx context.Context, url string) Asset {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		r.log.Warn("skipping image: bad URL", "url", url, "err", err)
		return Asset{}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Warn("skipping image: fetch failed", "url", url, "err", err)
		return Asset{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.log.Warn("skipping image: unexpected status", "url", url, "status", resp.StatusCode)
		return Asset{}
	}
	if resp.ContentLength > r.maxBytes {
		r.log.Warn("skipping image: too large", "url", url, "bytes", resp.ContentLength)
		return Asset{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		r.log.Warn("skipping image: read failed", "url", url, "err", err)
		return Asset{}
	}
	if int64(len(body)) > r.maxBytes {
		r.log.Warn("skipping image: too large", "url", url, "bytes", len(body))
		return Asset{}
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		r.log.Warn("skipping image: undecodable", "url", url, "err", err)
		return Asset{}
	}

	img = shrink(img, maxPixelWidth, maxPixelHeight)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		r.log.Warn("skipping image: re-encode failed", "url", url, "err", err)
		return Asset{}
	}

	b := img.Bounds()
	return Asset{
		Name:   assetName(url),
		Data:   buf.Bytes(),
		Type:   "JPG",
		Width:  b.Dx(),
		Height: b.Dy(),
	}
}

// ValidateVideoLink implements Resolver.
func (r *HTTPResolver) ValidateVideoLink(url string) (string, bool) {
	return ValidateVideoLink(url)
}

// shrink scales img down to fit within maxW x maxH, preserving aspect ratio.
// Images already within bounds are returned unchanged.
func shrink(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return img
	}

	scale := float64(maxW) / float64(w)
	if s := float64(maxH) / float64(h); s < scale {
		scale = s
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
