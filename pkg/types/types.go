package types

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Dimensions is the pixel size of an image at some point of the pipeline
type Dimensions struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Ratio returns width/height
func (d Dimensions) Ratio() float64 {
	return float64(d.Width) / float64(d.Height)
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// IsZero reports whether no size was given
func (d Dimensions) IsZero() bool {
	return d == Dimensions{}
}

// ParseDimensions reads a "WIDTHxHEIGHT" size such as "640x480". An empty string is the zero size.
func ParseDimensions(s string) (Dimensions, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Dimensions{}, nil
	}
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return Dimensions{}, fmt.Errorf("size %q is not WIDTHxHEIGHT", s)
	}
	w, werr := strconv.Atoi(strings.TrimSpace(ws))
	h, herr := strconv.Atoi(strings.TrimSpace(hs))
	if werr != nil || herr != nil || w <= 0 || h <= 0 {
		return Dimensions{}, fmt.Errorf("size %q needs two positive integers", s)
	}
	return Dimensions{Width: w, Height: h}, nil
}

// Rectangle is a pixel rectangle inside a containing image.
// X+Width must not exceed the container width, Y+Height the container height.
type Rectangle struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Within reports whether r fits inside an image of size d
func (r Rectangle) Within(d Dimensions) bool {
	return r.X >= 0 && r.Y >= 0 && r.Width >= 0 && r.Height >= 0 &&
		r.X+r.Width <= d.Width && r.Y+r.Height <= d.Height
}

// Size returns the rectangle's dimensions
func (r Rectangle) Size() Dimensions {
	return Dimensions{Width: r.Width, Height: r.Height}
}

// Axis selects the direction of a flip or shear
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// SelectMode mirrors the selection operations of photo editors. Only Replace is used by the pipeline.
type SelectMode int

const (
	SelectReplace SelectMode = iota
	SelectAdd
	SelectSubtract
)

// OpKind identifies a backend primitive
type OpKind string

const (
	OpScale      OpKind = "scale"
	OpCrop       OpKind = "crop"
	OpRotate     OpKind = "rotate"
	OpFlip       OpKind = "flip"
	OpShear      OpKind = "shear"
	OpBlur       OpKind = "blur"
	OpNoise      OpKind = "noise"
	OpBrightness OpKind = "brightness"
	OpExposure   OpKind = "exposure"
	OpSelect     OpKind = "select"
	OpFill       OpKind = "fill"
	OpSelectNone OpKind = "select-none"
)

// OperationStep describes one backend call with concrete arguments.
// Only the fields relevant to Kind are set.
type OperationStep struct {
	Kind OpKind `json:"kind" yaml:"kind"`

	// scale
	Width  int `json:"width,omitempty" yaml:"width,omitempty"`
	Height int `json:"height,omitempty" yaml:"height,omitempty"`

	// crop, select
	Rect Rectangle  `json:"rect,omitempty" yaml:"rect,omitempty"`
	Mode SelectMode `json:"mode,omitempty" yaml:"mode,omitempty"`

	// rotate
	Degrees float64 `json:"degrees,omitempty" yaml:"degrees,omitempty"`

	// flip, shear
	Axis Axis `json:"axis,omitempty" yaml:"axis,omitempty"`

	// shear magnitude, blur radius, noise fraction, brightness, exposure stops
	Amount float64 `json:"amount,omitempty" yaml:"amount,omitempty"`
	// brightness only
	Contrast float64 `json:"contrast,omitempty" yaml:"contrast,omitempty"`

	// fill
	Color color.NRGBA `json:"-" yaml:"-"`

	// After is the predicted image size once the step has run
	After Dimensions `json:"after" yaml:"after"`
}

func (s OperationStep) String() string {
	switch s.Kind {
	case OpScale:
		return fmt.Sprintf("scale %dx%d", s.Width, s.Height)
	case OpCrop:
		return fmt.Sprintf("crop %dx%d+%d+%d", s.Rect.Width, s.Rect.Height, s.Rect.X, s.Rect.Y)
	case OpSelect:
		return fmt.Sprintf("select %dx%d+%d+%d", s.Rect.Width, s.Rect.Height, s.Rect.X, s.Rect.Y)
	case OpRotate:
		return fmt.Sprintf("rotate %gdeg", s.Degrees)
	case OpFlip:
		return fmt.Sprintf("flip %s", s.Axis)
	case OpShear:
		return fmt.Sprintf("shear %s %g", s.Axis, s.Amount)
	case OpBrightness:
		return fmt.Sprintf("brightness %.4f contrast %g", s.Amount, s.Contrast)
	case OpFill:
		return fmt.Sprintf("fill #%02x%02x%02x", s.Color.R, s.Color.G, s.Color.B)
	case OpSelectNone:
		return string(s.Kind)
	default:
		return fmt.Sprintf("%s %g", s.Kind, s.Amount)
	}
}

// RotatedBounds returns the canvas size needed to hold an image of size d rotated by degrees
func RotatedBounds(d Dimensions, degrees float64) Dimensions {
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	sin, cos = math.Abs(sin), math.Abs(cos)
	w := float64(d.Width)
	h := float64(d.Height)
	return Dimensions{
		Width:  max(1, int(math.Round(w*cos+h*sin))),
		Height: max(1, int(math.Round(w*sin+h*cos))),
	}
}

// ShearedBounds returns the canvas size after shearing by magnitude pixels along axis
func ShearedBounds(d Dimensions, axis Axis, magnitude float64) Dimensions {
	grow := int(math.Abs(math.Round(magnitude)))
	if axis == Vertical {
		d.Height += grow
	} else {
		d.Width += grow
	}
	return d
}

// Format is an export file format
type Format string

const (
	FormatJPEG Format = "jpg"
	FormatPNG  Format = "png"
	FormatTIFF Format = "tif"
	FormatPSD  Format = "psd"
	FormatWebP Format = "webp"
)

// AllFormats lists the supported export formats in export order
func AllFormats() []Format {
	return []Format{FormatJPEG, FormatPNG, FormatTIFF, FormatPSD, FormatWebP}
}

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// ParseFormat accepts the common spellings of a format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	case "psd":
		return FormatPSD, nil
	case "webp":
		return FormatWebP, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// OutputPath is the destination of one exported format
type OutputPath struct {
	Format Format
	Path   string
}

// OutputTarget is where one processed copy gets written
type OutputTarget struct {
	Dir   string
	Base  string
	Paths []OutputPath
}

// RunStats counts batch progress. Processed counts every attempted item, failed ones included.
type RunStats struct {
	Total     int `json:"total" yaml:"total"`
	Processed int `json:"processed" yaml:"processed"`
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Failed    int `json:"failed" yaml:"failed"`
	Files     int `json:"files" yaml:"files"`
}

// Fraction returns Processed/Total, 0 for an empty run
func (s RunStats) Fraction() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Processed) / float64(s.Total)
}
