// Package params holds the validated configuration of one augmentation run.
package params

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/VicDc/AI-Dataset-Augmenter/pkg/cropper"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

// ErrInvalidParameter is wrapped by every validation failure
var ErrInvalidParameter = errors.New("invalid parameter")

// JPEG quality uses the 1-12 scale of the photo editors the tool replaces
const (
	MinJPEGQuality = 1
	MaxJPEGQuality = 12
)

// ParameterSet configures one run. Magnitudes only matter when the paired toggle is on.
// Treat it as immutable once validated; components receive it by value.
type ParameterSet struct {
	// Source and destination
	SourceDir         string
	DestDir           string
	IncludeSubfolders bool
	KeepStructure     bool

	// Geometry
	Resize          bool
	ResizePercent   float64
	ResizeTo        types.Dimensions // exact size; when set it replaces ResizePercent
	AspectRatio     cropper.Target
	RotationDegrees float64
	FlipHorizontal  bool
	FlipVertical    bool
	Shear           bool
	ShearHorizontal float64
	ShearVertical   float64

	// Augmentation
	Blur             bool
	BlurRadius       float64
	Noise            bool
	NoisePercent     float64
	Cutout           bool
	CutoutMaxPercent float64
	Brightness       bool
	BrightnessValue  float64
	Exposure         bool
	ExposureStops    float64

	// Output
	Copies       int
	Prefix       string
	Suffix       string
	Formats      []types.Format
	JPEGQuality  int
	WebPQuality  int
	WebPLossless bool

	// Run
	Seed    int64
	Workers int
}

// Default returns the values a new run starts with
func Default() ParameterSet {
	return ParameterSet{
		IncludeSubfolders: true,
		KeepStructure:     true,
		ResizePercent:     50,
		AspectRatio:       cropper.None,
		ShearHorizontal:   5,
		BlurRadius:        1.5,
		NoisePercent:      5,
		CutoutMaxPercent:  25,
		Copies:            1,
		Suffix:            "_aug",
		Formats:           []types.Format{types.FormatJPEG},
		JPEGQuality:       10,
		WebPQuality:       90,
		Workers:           1,
	}
}

// Validate checks the cross-field constraints. Disabled options are not inspected.
func (p ParameterSet) Validate() error {
	if strings.TrimSpace(p.SourceDir) == "" {
		return invalid("source directory is required")
	}
	if strings.TrimSpace(p.DestDir) == "" {
		return invalid("destination directory is required")
	}
	if p.Copies < 1 {
		return invalid("copies per image must be at least 1, got %d", p.Copies)
	}
	if p.Resize {
		switch {
		case !p.ResizeTo.IsZero():
			if p.ResizeTo.Width <= 0 || p.ResizeTo.Height <= 0 {
				return invalid("resize size must be positive, got %s", p.ResizeTo)
			}
		case p.ResizePercent <= 0:
			return invalid("resize percent must be positive, got %g", p.ResizePercent)
		}
	}
	if len(p.Formats) == 0 {
		return invalid("at least one export format must be selected")
	}
	for _, f := range p.Formats {
		if !lo.Contains(types.AllFormats(), f) {
			return invalid("unknown export format %q", f)
		}
	}
	if p.HasFormat(types.FormatJPEG) && (p.JPEGQuality < MinJPEGQuality || p.JPEGQuality > MaxJPEGQuality) {
		return invalid("jpeg quality must be between %d and %d, got %d", MinJPEGQuality, MaxJPEGQuality, p.JPEGQuality)
	}
	if p.HasFormat(types.FormatWebP) && (p.WebPQuality < 0 || p.WebPQuality > 100) {
		return invalid("webp quality must be between 0 and 100, got %d", p.WebPQuality)
	}
	if p.Workers < 1 {
		return invalid("workers must be at least 1, got %d", p.Workers)
	}
	return nil
}

// HasFormat reports whether f is enabled
func (p ParameterSet) HasFormat(f types.Format) bool {
	return lo.Contains(p.Formats, f)
}

// ExportFormats returns the enabled formats deduplicated, in canonical export order
func (p ParameterSet) ExportFormats() []types.Format {
	return lo.Filter(types.AllFormats(), func(f types.Format, _ int) bool {
		return p.HasFormat(f)
	})
}

// TotalItems is the number of (file, copy) items for fileCount sources
func (p ParameterSet) TotalItems(fileCount int) int {
	return fileCount * p.Copies
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}
