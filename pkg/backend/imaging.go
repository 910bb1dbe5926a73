package backend

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/anthonynsimon/bild/noise"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/VicDc/AI-Dataset-Augmenter/pkg/psd"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

// Flattened images are composited over this background
var flattenBackground = color.NRGBA{255, 255, 255, 255}

// Processor is the imaging-based Backend
type Processor struct {
	live atomic.Int64
}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{}
}

// Live returns the number of loaded, not yet released images
func (p *Processor) Live() int {
	return int(p.live.Load())
}

type handle struct {
	img       image.Image
	selection *image.Rectangle
	released  bool
}

func (h *handle) Dimensions() types.Dimensions {
	if h.img == nil {
		return types.Dimensions{}
	}
	b := h.img.Bounds()
	return types.Dimensions{Width: b.Dx(), Height: b.Dy()}
}

// nrgba converts the pixels to NRGBA with a zero origin, once
func (h *handle) nrgba() *image.NRGBA {
	if n, ok := h.img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	n := imaging.Clone(h.img)
	h.img = n
	return n
}

func (p *Processor) handle(img Image) (*handle, error) {
	h, ok := img.(*handle)
	if !ok || h == nil {
		return nil, fmt.Errorf("foreign image handle %T", img)
	}
	if h.released {
		return nil, ErrReleased
	}
	return h, nil
}

// Load decodes an image file. jpeg/png/gif/bmp/tiff/webp and flattened psd are supported.
func (p *Processor) Load(path string) (Image, error) {
	var (
		img image.Image
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".psd") {
		img, err = loadPSD(path)
	} else {
		img, err = imaging.Open(path, imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("failed to load image %s: empty image", path)
	}
	p.live.Add(1)
	return &handle{img: img}, nil
}

func loadPSD(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return psd.Decode(bufio.NewReader(f))
}

// Release drops the pixels of img. Releasing twice is a no-op.
func (p *Processor) Release(img Image) {
	h, ok := img.(*handle)
	if !ok || h == nil || h.released {
		return
	}
	h.released = true
	h.img = nil
	h.selection = nil
	p.live.Add(-1)
}

// Scale resizes to exactly width x height
func (p *Processor) Scale(img Image, width, height int) error {
	h, err := p.handle(img)
	if err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid scale size %dx%d", width, height)
	}
	h.img = imaging.Resize(h.img, width, height, imaging.CatmullRom)
	return nil
}

// Crop keeps rect
func (p *Processor) Crop(img Image, rect types.Rectangle) error {
	h, err := p.handle(img)
	if err != nil {
		return err
	}
	if !rect.Within(h.Dimensions()) || rect.Width == 0 || rect.Height == 0 {
		return fmt.Errorf("crop rectangle %+v outside %s", rect, h.Dimensions())
	}
	h.img = imaging.Crop(h.img, toImageRect(rect).Add(h.img.Bounds().Min))
	return nil
}

// Rotate turns the canvas clockwise by degrees, growing it to the rotated bounding box.
// Uncovered corners stay transparent until the image is flattened.
func (p *Processor) Rotate(img Image, degrees float64) error {
	h, err := p.handle(img)
	if err != nil {
		return err
	}

	switch math.Mod(math.Mod(degrees, 360)+360, 360) {
	case 0:
		return nil
	case 90:
		h.img = imaging.Rotate270(h.img)
		return nil
	case 180:
		h.img = imaging.Rotate180(h.img)
		return nil
	case 270:
		h.img = imaging.Rotate90(h.img)
		return nil
	}

	src := h.nrgba()
	size := types.RotatedBounds(h.Dimensions(), degrees)
	sin, cos := math.Sincos(degrees * math.Pi / 180)

	scx, scy := float64(src.Rect.Dx())/2, float64(src.Rect.Dy())/2
	dcx, dcy := float64(size.Width)/2, float64(size.Height)/2
	s2d := f64.Aff3{
		cos, -sin, dcx - (cos*scx - sin*scy),
		sin, cos, dcy - (sin*scx + cos*scy),
	}

	h.img = transform(src, size, s2d)
	return nil
}

// Flip mirrors the image along axis
func (p *Processor) Flip(img Image, axis types.Axis) error {
	h, err := p.handle(img)
	if err != nil {
		return err
	}
	if axis == types.Vertical {
		h.img = imaging.FlipV(h.img)
	} else {
		h.img = imaging.FlipH(h.img)
	}
	return nil
}

// Shear displaces the far edge by magnitude pixels along axis. The canvas grows by the
// absolute magnitude so no pixels are lost; zero is a no-op.
func (p *Processor) Shear(img Image, axis types.Axis, magnitude float64) error {
	h, err := p.handle(img)
	if err != nil {
		return err
	}
	m := math.Round(magnitude)
	if m == 0 {
		return nil
	}

	src := h.nrgba()
	w, ht := float64(src.Rect.Dx()), float64(src.Rect.Dy())
	offset := math.Max(0, -m)

	var s2d f64.Aff3
	if axis == types.Vertical {
		s2d = f64.Aff3{1, 0, 0, m / w, 1, offset}
	} else {
		s2d = f64.Aff3{1, m / ht, offset, 0, 1, 0}
	}

	h.img = transform(src, types.ShearedBounds(h.Dimensions(), axis, m), s2d)
	return nil
}

// GaussianBlur blurs with sigma equal to radius
func (p *Processor) GaussianBlur(img Image, radius float64) error {
	h, err := p.handle(img)
	if err != nil {
		return err
	}
	if radius <= 0 {
		return nil
	}
	h.img = imaging.Blur(h.img, radius)
	return nil
}

// AddNoise blends gaussian noise over the image with opacity amount (0-1)
func (p *Processor) AddNoise(img Image, amount float64) error {
	h, err := p.handle(img)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return nil
	}
	d := h.Dimensions()
	layer := noise.Generate(d.Width, d.Height, &noise.Options{NoiseFn: noise.Gaussian})
	h.img = imaging.Overlay(h.img, layer, h.img.Bounds().Min, math.Min(amount, 1))
	return nil
}

// BrightnessContrast takes both values in the -1..1 range
func (p *Processor) BrightnessContrast(img Image, brightness, contrast float64) error {
	h, err := p.handle(img)
	if err != nil {
		return err
	}
	if brightness != 0 {
		h.img = imaging.AdjustBrightness(h.img, clamp(brightness, -1, 1)*100)
	}
	if contrast != 0 {
		h.img = imaging.AdjustContrast(h.img, clamp(contrast, -1, 1)*100)
	}
	return nil
}

// Exposure scales linear light by 2^stops
func (p *Processor) Exposure(img Image, stops float64) error {
	h, err := p.handle(img)
	if err != nil {
		return err
	}
	if stops == 0 {
		return nil
	}

	var lut [256]uint8
	gain := math.Exp2(stops)
	for i := range lut {
		v := srgbToLinear(float64(i)/255) * gain
		lut[i] = uint8(clamp(linearToSRGB(v)*255+0.5, 0, 255))
	}

	h.img = imaging.AdjustFunc(h.img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: lut[c.R], G: lut[c.G], B: lut[c.B], A: c.A}
	})
	return nil
}

// SelectRectangle sets the area Fill paints
func (p *Processor) SelectRectangle(img Image, rect types.Rectangle, mode types.SelectMode) error {
	h, err := p.handle(img)
	if err != nil {
		return err
	}
	r := toImageRect(rect).Intersect(image.Rect(0, 0, h.Dimensions().Width, h.Dimensions().Height))

	switch {
	case mode == types.SelectReplace:
		h.selection = &r
	case h.selection == nil:
		if mode == types.SelectAdd {
			h.selection = &r
		}
	case mode == types.SelectAdd:
		u := h.selection.Union(r)
		h.selection = &u
	case mode == types.SelectSubtract && h.selection.In(r):
		h.selection = nil
	}
	return nil
}

// Fill paints the selection, or the whole image without one, with c
func (p *Processor) Fill(img Image, c color.Color) error {
	h, err := p.handle(img)
	if err != nil {
		return err
	}
	dst := h.nrgba()
	area := dst.Rect
	if h.selection != nil {
		area = *h.selection
	}
	if area.Empty() {
		return nil
	}
	draw.Draw(dst, area, image.NewUniform(c), image.Point{}, draw.Src)
	return nil
}

// SelectNone clears the selection
func (p *Processor) SelectNone(img Image) error {
	h, err := p.handle(img)
	if err != nil {
		return err
	}
	h.selection = nil
	return nil
}

// Flatten composites the image onto an opaque background
func (p *Processor) Flatten(img Image) error {
	h, err := p.handle(img)
	if err != nil {
		return err
	}
	if opaque(h.img) {
		return nil
	}
	d := h.Dimensions()
	bg := imaging.New(d.Width, d.Height, flattenBackground)
	h.img = imaging.Overlay(bg, h.img, image.Point{}, 1)
	return nil
}

// ConvertRGB converts paletted, gray or CMYK pixels to 8-bit RGB
func (p *Processor) ConvertRGB(img Image) error {
	h, err := p.handle(img)
	if err != nil {
		return err
	}
	h.nrgba()
	return nil
}

// Save writes the image in format
func (p *Processor) Save(img Image, path string, format types.Format, opts SaveOptions) error {
	h, err := p.handle(img)
	if err != nil {
		return err
	}
	return SaveImage(h.img, path, format, opts)
}

// SaveImage encodes img to path
func SaveImage(img image.Image, path string, format types.Format, opts SaveOptions) error {
	switch format {
	case types.FormatJPEG:
		return imaging.Save(img, path, imaging.JPEGQuality(JPEGPercent(opts.JPEGQuality)))
	case types.FormatPNG:
		return imaging.Save(img, path, imaging.PNGCompressionLevel(png.BestCompression))
	case types.FormatTIFF:
		return writeFile(path, func(f *os.File) error {
			return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Uncompressed})
		})
	case types.FormatPSD:
		return writeFile(path, func(f *os.File) error {
			return psd.Encode(f, img)
		})
	case types.FormatWebP:
		return writeFile(path, func(f *os.File) error {
			return webp.Encode(f, img, &webp.Options{Lossless: opts.WebPLossless, Quality: float32(opts.WebPQuality)})
		})
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// JPEGPercent maps the 1-12 quality scale onto the encoder's 1-100
func JPEGPercent(q int) int {
	return int(clamp(math.Round(float64(q)/12*100), 1, 100))
}

func writeFile(path string, encode func(f *os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return encode(f)
}

func transform(src *image.NRGBA, size types.Dimensions, s2d f64.Aff3) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.BiLinear.Transform(dst, s2d, src, src.Rect, draw.Over, nil)
	return dst
}

func opaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

func toImageRect(r types.Rectangle) image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func srgbToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func linearToSRGB(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

// Helper functions
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
