package chain

import (
	"fmt"
	"math"

	"github.com/VicDc/AI-Dataset-Augmenter/pkg/params"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

// RandomSpec bounds the transform drawn for each generated dataset version
type RandomSpec struct {
	MinRotation      float64 // degrees, clockwise
	MaxRotation      float64
	MinZoom          float64 // percent on top of the fill factor
	MaxZoom          float64
	MirrorHorizontal bool // each version flips with probability 1/2
	MirrorVertical   bool
}

// DefaultRandomSpec returns small rotations and a slight zoom-in
func DefaultRandomSpec() RandomSpec {
	return RandomSpec{MinRotation: -15, MaxRotation: 15, MinZoom: 100, MaxZoom: 110}
}

// Validate checks the ranges
func (s RandomSpec) Validate() error {
	if s.MinRotation > s.MaxRotation {
		return fmt.Errorf("%w: rotation range %g..%g is empty", params.ErrInvalidParameter, s.MinRotation, s.MaxRotation)
	}
	if s.MinZoom <= 0 || s.MinZoom > s.MaxZoom {
		return fmt.Errorf("%w: zoom range %g..%g must be positive and ordered", params.ErrInvalidParameter, s.MinZoom, s.MaxZoom)
	}
	return nil
}

// Source draws the random values of a version
type Source interface {
	Uniform(lo, hi float64) float64
	Chance(p float64) bool
}

// Random plans randomly transformed versions of an image. It satisfies the batch Planner.
type Random struct {
	spec RandomSpec
	src  Source
}

// NewRandom creates a planner drawing from src
func NewRandom(spec RandomSpec, src Source) *Random {
	return &Random{spec: spec, src: src}
}

// Plan ignores the parameter set; every call draws a new version
func (r *Random) Plan(_ params.ParameterSet, dims types.Dimensions) ([]types.OperationStep, types.Dimensions) {
	return RandomPlan(r.spec, dims, r.src)
}

// RandomPlan draws one version: zoom, rotation about the center, a centered crop back to
// dims, then optional flips. The zoom is multiplied by |cos|+|sin| of the angle so the
// rotated content still covers the canvas and no empty corners survive the crop.
func RandomPlan(spec RandomSpec, dims types.Dimensions, src Source) ([]types.OperationStep, types.Dimensions) {
	angle := src.Uniform(spec.MinRotation, spec.MaxRotation)
	zoom := src.Uniform(spec.MinZoom, spec.MaxZoom)

	rad := angle * math.Pi / 180
	percent := zoom * (math.Abs(math.Cos(rad)) + math.Abs(math.Sin(rad)))

	pl := planner{dims: dims}
	pl.add(types.OperationStep{
		Kind:   types.OpScale,
		Width:  scaled(dims.Width, percent),
		Height: scaled(dims.Height, percent),
	})
	if angle != 0 {
		pl.add(types.OperationStep{Kind: types.OpRotate, Degrees: angle})
	}

	keep := types.Dimensions{Width: min(dims.Width, pl.dims.Width), Height: min(dims.Height, pl.dims.Height)}
	if keep != pl.dims {
		pl.add(types.OperationStep{
			Kind: types.OpCrop,
			Rect: types.Rectangle{
				X:      (pl.dims.Width - keep.Width) / 2,
				Y:      (pl.dims.Height - keep.Height) / 2,
				Width:  keep.Width,
				Height: keep.Height,
			},
		})
	}

	if spec.MirrorHorizontal && src.Chance(0.5) {
		pl.add(types.OperationStep{Kind: types.OpFlip, Axis: types.Horizontal})
	}
	if spec.MirrorVertical && src.Chance(0.5) {
		pl.add(types.OperationStep{Kind: types.OpFlip, Axis: types.Vertical})
	}
	return pl.steps, pl.dims
}
