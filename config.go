package trec

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Config holds the tunable generation settings. The zero value is not
// usable; start from DefaultConfig or LoadConfig.
type Config struct {
	// PageSize is an fpdf page size name, e.g. "Letter" or "A4".
	PageSize string `yaml:"page_size"`

	// Margin is the uniform page margin, in points.
	Margin float64 `yaml:"margin"`

	// ImageGap is the vertical space after each gallery image, in points.
	ImageGap float64 `yaml:"image_gap"`

	// ImageMaxWidth caps gallery image width, in points.
	ImageMaxWidth float64 `yaml:"image_max_width"`

	// MediaTimeout bounds each remote image fetch.
	MediaTimeout time.Duration `yaml:"media_timeout"`

	// Placeholder substitutes for missing record fields.
	Placeholder string `yaml:"placeholder"`

	// GroupFindings keeps each finding block on one page when it fits.
	GroupFindings bool `yaml:"group_findings"`

	// QRStamp draws a QR report reference in the header.
	QRStamp bool `yaml:"qr_stamp"`

	// Compress enables PDF stream compression.
	Compress bool `yaml:"compress"`
}

// DefaultConfig returns the settings used when no config file is given:
// US Letter pages with a 54pt margin, three-inch gallery images, a ten
// second media timeout, grouped findings, and compressed output.
func DefaultConfig() Config {
	return Config{
		PageSize:      "Letter",
		Margin:        54,
		ImageGap:      10,
		ImageMaxWidth: 216,
		MediaTimeout:  10 * time.Second,
		Placeholder:   "",
		GroupFindings: true,
		QRStamp:       true,
		Compress:      true,
	}
}

// LoadConfig reads a YAML config file and overlays it on DefaultConfig.
// Unknown fields are rejected so typos surface instead of silently using
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, newReportError("LoadConfig", err)
	}
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return cfg, newReportError("LoadConfig", fmt.Errorf("%w: %v", ErrBadConfig, err))
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Margin < 0 || c.ImageGap < 0 || c.ImageMaxWidth < 0 {
		return newReportError("Config", fmt.Errorf("%w: negative dimension", ErrBadConfig))
	}
	if c.MediaTimeout < 0 {
		return newReportError("Config", fmt.Errorf("%w: negative media timeout", ErrBadConfig))
	}
	return nil
}
