// Package backend defines the image primitives the pipeline drives and ships an
// implementation on top of disintegration/imaging and golang.org/x/image.
package backend

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

// ErrUnsupportedFormat is returned when a file cannot be decoded or encoded
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ErrReleased is returned when a released handle is used again
var ErrReleased = errors.New("image already released")

// Image is an opaque handle to a loaded image owned by a Backend
type Image interface {
	Dimensions() types.Dimensions
}

// SaveOptions carries the per-format encoder settings
type SaveOptions struct {
	JPEGQuality  int // 1-12
	WebPQuality  int // 0-100
	WebPLossless bool
}

// Backend executes primitive operations on image handles. Operations mutate the handle in
// place and are applied in the order issued. Every successful Load must be paired with Release.
type Backend interface {
	Load(path string) (Image, error)
	Release(img Image)

	Scale(img Image, width, height int) error
	Crop(img Image, rect types.Rectangle) error
	Rotate(img Image, degrees float64) error
	Flip(img Image, axis types.Axis) error
	Shear(img Image, axis types.Axis, magnitude float64) error
	GaussianBlur(img Image, radius float64) error
	AddNoise(img Image, amount float64) error
	BrightnessContrast(img Image, brightness, contrast float64) error
	Exposure(img Image, stops float64) error
	SelectRectangle(img Image, rect types.Rectangle, mode types.SelectMode) error
	Fill(img Image, c color.Color) error
	SelectNone(img Image) error
	Flatten(img Image) error
	ConvertRGB(img Image) error
	Save(img Image, path string, format types.Format, opts SaveOptions) error
}

// Apply dispatches one planned step to the matching primitive
func Apply(b Backend, img Image, step types.OperationStep) error {
	switch step.Kind {
	case types.OpScale:
		return b.Scale(img, step.Width, step.Height)
	case types.OpCrop:
		return b.Crop(img, step.Rect)
	case types.OpRotate:
		return b.Rotate(img, step.Degrees)
	case types.OpFlip:
		return b.Flip(img, step.Axis)
	case types.OpShear:
		return b.Shear(img, step.Axis, step.Amount)
	case types.OpBlur:
		return b.GaussianBlur(img, step.Amount)
	case types.OpNoise:
		return b.AddNoise(img, step.Amount)
	case types.OpBrightness:
		return b.BrightnessContrast(img, step.Amount, step.Contrast)
	case types.OpExposure:
		return b.Exposure(img, step.Amount)
	case types.OpSelect:
		return b.SelectRectangle(img, step.Rect, step.Mode)
	case types.OpFill:
		return b.Fill(img, step.Color)
	case types.OpSelectNone:
		return b.SelectNone(img)
	}
	return fmt.Errorf("unknown operation %q", step.Kind)
}
