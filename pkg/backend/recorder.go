package backend

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

// Recorder is a Backend that logs every call instead of touching pixels.
// Image sizes follow the same geometry rules as Processor.
type Recorder struct {
	mu sync.Mutex

	// Sizes maps a path to the size Load reports; DefaultSize is used otherwise
	Sizes       map[string]types.Dimensions
	DefaultSize types.Dimensions
	// LoadErrors makes Load fail for the given paths
	LoadErrors map[string]error
	// OpErrors makes the given primitive fail
	OpErrors map[types.OpKind]error
	// SaveError makes every Save fail
	SaveError error

	calls   []string
	saved   []string
	live    int
	maxLive int
	loads   int
	frees   int
}

// NewRecorder returns a recorder reporting 100x100 images
func NewRecorder() *Recorder {
	return &Recorder{
		Sizes:       map[string]types.Dimensions{},
		DefaultSize: types.Dimensions{Width: 100, Height: 100},
		LoadErrors:  map[string]error{},
		OpErrors:    map[types.OpKind]error{},
	}
}

type recordedImage struct {
	path     string
	dims     types.Dimensions
	released bool
}

func (r *recordedImage) Dimensions() types.Dimensions { return r.dims }

// Calls returns the recorded call log
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Saved returns every path passed to Save
func (r *Recorder) Saved() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.saved...)
}

// Live returns loaded minus released images
func (r *Recorder) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

// MaxLive returns the peak of Live over the recorder's lifetime
func (r *Recorder) MaxLive() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxLive
}

// Balanced reports whether every Load was paired with exactly one Release
func (r *Recorder) Balanced() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loads == r.frees && r.live == 0
}

func (r *Recorder) record(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *Recorder) op(img Image, kind types.OpKind, desc string, next func(types.Dimensions) types.Dimensions) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ri, ok := img.(*recordedImage)
	if !ok || ri == nil {
		return fmt.Errorf("foreign image handle %T", img)
	}
	if ri.released {
		return ErrReleased
	}
	r.record("%s", desc)
	if err := r.OpErrors[kind]; err != nil {
		return err
	}
	if next != nil {
		ri.dims = next(ri.dims)
	}
	return nil
}

func (r *Recorder) Load(path string) (Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("load %s", path)
	if err := r.LoadErrors[path]; err != nil {
		return nil, err
	}
	dims, ok := r.Sizes[path]
	if !ok {
		dims = r.DefaultSize
	}
	r.loads++
	r.live++
	r.maxLive = max(r.maxLive, r.live)
	return &recordedImage{path: path, dims: dims}, nil
}

func (r *Recorder) Release(img Image) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ri, ok := img.(*recordedImage)
	if !ok || ri == nil || ri.released {
		return
	}
	ri.released = true
	r.frees++
	r.live--
	r.record("release %s", ri.path)
}

func (r *Recorder) Scale(img Image, width, height int) error {
	return r.op(img, types.OpScale, fmt.Sprintf("scale %dx%d", width, height), func(types.Dimensions) types.Dimensions {
		return types.Dimensions{Width: width, Height: height}
	})
}

func (r *Recorder) Crop(img Image, rect types.Rectangle) error {
	return r.op(img, types.OpCrop, fmt.Sprintf("crop %dx%d+%d+%d", rect.Width, rect.Height, rect.X, rect.Y), func(types.Dimensions) types.Dimensions {
		return rect.Size()
	})
}

func (r *Recorder) Rotate(img Image, degrees float64) error {
	return r.op(img, types.OpRotate, fmt.Sprintf("rotate %g", degrees), func(d types.Dimensions) types.Dimensions {
		return types.RotatedBounds(d, degrees)
	})
}

func (r *Recorder) Flip(img Image, axis types.Axis) error {
	return r.op(img, types.OpFlip, fmt.Sprintf("flip %s", axis), nil)
}

func (r *Recorder) Shear(img Image, axis types.Axis, magnitude float64) error {
	return r.op(img, types.OpShear, fmt.Sprintf("shear %s %g", axis, magnitude), func(d types.Dimensions) types.Dimensions {
		return types.ShearedBounds(d, axis, magnitude)
	})
}

func (r *Recorder) GaussianBlur(img Image, radius float64) error {
	return r.op(img, types.OpBlur, fmt.Sprintf("blur %g", radius), nil)
}

func (r *Recorder) AddNoise(img Image, amount float64) error {
	return r.op(img, types.OpNoise, fmt.Sprintf("noise %g", amount), nil)
}

func (r *Recorder) BrightnessContrast(img Image, brightness, contrast float64) error {
	return r.op(img, types.OpBrightness, fmt.Sprintf("brightness %g %g", brightness, contrast), nil)
}

func (r *Recorder) Exposure(img Image, stops float64) error {
	return r.op(img, types.OpExposure, fmt.Sprintf("exposure %g", stops), nil)
}

func (r *Recorder) SelectRectangle(img Image, rect types.Rectangle, mode types.SelectMode) error {
	return r.op(img, types.OpSelect, fmt.Sprintf("select %dx%d+%d+%d", rect.Width, rect.Height, rect.X, rect.Y), nil)
}

func (r *Recorder) Fill(img Image, c color.Color) error {
	cr, cg, cb, _ := c.RGBA()
	return r.op(img, types.OpFill, fmt.Sprintf("fill %d,%d,%d", cr>>8, cg>>8, cb>>8), nil)
}

func (r *Recorder) SelectNone(img Image) error {
	return r.op(img, types.OpSelectNone, "select-none", nil)
}

func (r *Recorder) Flatten(img Image) error {
	return r.op(img, "flatten", "flatten", nil)
}

func (r *Recorder) ConvertRGB(img Image) error {
	return r.op(img, "convert", "convert-rgb", nil)
}

func (r *Recorder) Save(img Image, path string, format types.Format, _ SaveOptions) error {
	err := r.op(img, "save", fmt.Sprintf("save %s %s", format, path), nil)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SaveError != nil {
		return r.SaveError
	}
	r.saved = append(r.saved, path)
	return nil
}
