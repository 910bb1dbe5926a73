// Package chain turns a parameter set into the ordered list of backend operations for one copy.
//
// Planning is pure: the chain never touches pixels. It tracks the image size step by step so
// that every geometric decision reads the size produced by the step before it.
package chain

import (
	"image/color"
	"math"

	"github.com/VicDc/AI-Dataset-Augmenter/pkg/cropper"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/params"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

// Scale factors between the user-facing units and the backend's
const (
	NoiseScale      = 100.0 // percent -> fraction
	BrightnessScale = 150.0 // +-150 -> +-1
)

// CutoutColor is the opaque fill used by the cutout augmentation
var CutoutColor = color.NRGBA{R: 0, G: 0, B: 0, A: 255}

// RectSampler draws the cutout rectangle
type RectSampler interface {
	Sample(drawable types.Dimensions, maxPercent float64) types.Rectangle
}

// Chain plans operation sequences
type Chain struct {
	sampler RectSampler
}

// New creates a chain drawing cutouts from sampler
func New(sampler RectSampler) *Chain {
	return &Chain{sampler: sampler}
}

// Plan returns the steps for one copy of an image currently sized dims, and the size the
// image will have after all of them.
func (c *Chain) Plan(p params.ParameterSet, dims types.Dimensions) ([]types.OperationStep, types.Dimensions) {
	pl := planner{dims: dims}

	switch {
	case p.Resize && !p.ResizeTo.IsZero():
		pl.add(types.OperationStep{Kind: types.OpScale, Width: p.ResizeTo.Width, Height: p.ResizeTo.Height})
	case p.Resize:
		pl.add(types.OperationStep{
			Kind:   types.OpScale,
			Width:  scaled(dims.Width, p.ResizePercent),
			Height: scaled(dims.Height, p.ResizePercent),
		})
	}

	if !p.AspectRatio.IsNone() {
		pl.add(types.OperationStep{
			Kind: types.OpCrop,
			Rect: cropper.CenterCrop(pl.dims, p.AspectRatio.Ratio()),
		})
	}

	if p.RotationDegrees != 0 {
		pl.add(types.OperationStep{Kind: types.OpRotate, Degrees: p.RotationDegrees})
	}
	if p.FlipHorizontal {
		pl.add(types.OperationStep{Kind: types.OpFlip, Axis: types.Horizontal})
	}
	if p.FlipVertical {
		pl.add(types.OperationStep{Kind: types.OpFlip, Axis: types.Vertical})
	}

	// Both shear components are issued whenever shear is on; a zero magnitude is a backend no-op.
	if p.Shear {
		pl.add(types.OperationStep{Kind: types.OpShear, Axis: types.Horizontal, Amount: p.ShearHorizontal})
		pl.add(types.OperationStep{Kind: types.OpShear, Axis: types.Vertical, Amount: p.ShearVertical})
	}

	if p.Blur && p.BlurRadius > 0 {
		pl.add(types.OperationStep{Kind: types.OpBlur, Amount: p.BlurRadius})
	}
	if p.Noise && p.NoisePercent > 0 {
		pl.add(types.OperationStep{Kind: types.OpNoise, Amount: p.NoisePercent / NoiseScale})
	}
	if p.Brightness {
		pl.add(types.OperationStep{Kind: types.OpBrightness, Amount: p.BrightnessValue / BrightnessScale})
	}
	if p.Exposure && p.ExposureStops != 0 {
		pl.add(types.OperationStep{Kind: types.OpExposure, Amount: p.ExposureStops})
	}

	if p.Cutout && p.CutoutMaxPercent > 0 && c.sampler != nil {
		rect := c.sampler.Sample(pl.dims, p.CutoutMaxPercent)
		pl.add(types.OperationStep{Kind: types.OpSelect, Rect: rect, Mode: types.SelectReplace})
		pl.add(types.OperationStep{Kind: types.OpFill, Color: CutoutColor})
		pl.add(types.OperationStep{Kind: types.OpSelectNone})
	}

	return pl.steps, pl.dims
}

type planner struct {
	dims  types.Dimensions
	steps []types.OperationStep
}

func (pl *planner) add(step types.OperationStep) {
	pl.dims = Apply(pl.dims, step)
	step.After = pl.dims
	pl.steps = append(pl.steps, step)
}

// Apply returns the image size after step runs on an image of size d
func Apply(d types.Dimensions, step types.OperationStep) types.Dimensions {
	switch step.Kind {
	case types.OpScale:
		return types.Dimensions{Width: step.Width, Height: step.Height}
	case types.OpCrop:
		return step.Rect.Size()
	case types.OpRotate:
		return types.RotatedBounds(d, step.Degrees)
	case types.OpShear:
		return types.ShearedBounds(d, step.Axis, step.Amount)
	}
	return d
}

func scaled(size int, percent float64) int {
	return max(1, int(math.Round(float64(size)*percent/100)))
}
