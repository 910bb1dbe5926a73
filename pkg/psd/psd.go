// Package psd reads and writes the flattened composite of Photoshop documents.
//
// Decoding is done by github.com/oov/psd behind a size guard: the header and section
// lengths are checked against the bytes actually present before any pixel buffer is
// sized. The encoder emits an 8-bit RGB document with no layers whose composite image is
// the flattened input.
package psd

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	photoshop "github.com/oov/psd"
)

const signature = "8BPS"

// Color modes used in the header
const (
	modeGrayscale = 1
	modeRGB       = 3
)

// Compression of the image data section
const (
	compressionRaw = 0
	compressionRLE = 1
)

// Limits from the file format: version 1 is PSD, version 2 is PSB
const (
	maxDimension      = 30000
	maxLargeDimension = 300000
	maxChannels       = 56
	// deflate cannot beat this ratio, so zip compressed planes need at least 1/1032 of
	// their decoded size
	maxDeflateRatio = 1032
)

// ErrFormat is returned for data that is not a valid document, including documents
// whose header promises more pixels than the file carries
var ErrFormat = errors.New("psd: invalid format")

type header struct {
	Signature [4]byte
	Version   uint16
	Reserved  [6]byte
	Channels  uint16
	Height    uint32
	Width     uint32
	Depth     uint16
	ColorMode uint16
}

const headerSize = 26

// Encode writes img as a flattened 8-bit RGB document. Alpha is dropped.
func Encode(w io.Writer, img image.Image) error {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= 0 || height <= 0 || width > maxDimension || height > maxDimension {
		return fmt.Errorf("psd: cannot encode %dx%d image", width, height)
	}

	bw := bufio.NewWriter(w)
	h := header{
		Version:   1,
		Channels:  3,
		Height:    uint32(height),
		Width:     uint32(width),
		Depth:     8,
		ColorMode: modeRGB,
	}
	copy(h.Signature[:], signature)
	if err := binary.Write(bw, binary.BigEndian, h); err != nil {
		return err
	}

	// empty color mode data, image resources, layer and mask information
	for i := 0; i < 3; i++ {
		if err := binary.Write(bw, binary.BigEndian, uint32(0)); err != nil {
			return err
		}
	}

	if err := binary.Write(bw, binary.BigEndian, uint16(compressionRaw)); err != nil {
		return err
	}

	row := make([]byte, width)
	for ch := 0; ch < 3; ch++ {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				row[x-b.Min.X] = [3]uint8{c.R, c.G, c.B}[ch]
			}
			if _, err := bw.Write(row); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// DecodeConfig returns the color model and size of a document
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := readHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	model := color.NRGBAModel
	if h.ColorMode == modeGrayscale {
		model = color.GrayModel
	}
	return image.Config{ColorModel: model, Width: int(h.Width), Height: int(h.Height)}, nil
}

// Decode reads the composite image of a document. The body is buffered as it arrives and
// checked against the header before it is handed to the decoder.
func Decode(r io.Reader) (image.Image, error) {
	var raw [headerSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	h, err := readHeader(bytes.NewReader(raw[:]))
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("psd: read: %w", err)
	}
	if err := checkBody(h, body); err != nil {
		return nil, err
	}

	doc, _, err := photoshop.Decode(io.MultiReader(bytes.NewReader(raw[:]), bytes.NewReader(body)),
		&photoshop.DecodeOptions{SkipLayerImage: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if doc.Picker == nil {
		return nil, fmt.Errorf("%w: no composite image", ErrFormat)
	}
	return doc.Picker, nil
}

func readHeader(r io.Reader) (header, error) {
	var h header
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return h, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if string(h.Signature[:]) != signature {
		return h, ErrFormat
	}

	limit := uint32(maxDimension)
	switch h.Version {
	case 1:
	case 2:
		limit = maxLargeDimension
	default:
		return h, fmt.Errorf("%w: version %d", ErrFormat, h.Version)
	}
	if h.Width == 0 || h.Height == 0 || h.Width > limit || h.Height > limit {
		return h, fmt.Errorf("%w: size %dx%d", ErrFormat, h.Width, h.Height)
	}
	if h.Channels == 0 || h.Channels > maxChannels {
		return h, fmt.Errorf("%w: %d channels", ErrFormat, h.Channels)
	}
	switch h.Depth {
	case 1, 8, 16, 32:
	default:
		return h, fmt.Errorf("%w: %d-bit depth", ErrFormat, h.Depth)
	}
	return h, nil
}

// checkBody walks the section lengths of body and rejects it unless the image data
// section holds at least the smallest encoding of every plane the header describes.
func checkBody(h header, body []byte) error {
	off := uint64(0)
	size := uint64(len(body))

	skip := func(name string, width int) error {
		if size-off < uint64(width) {
			return fmt.Errorf("%w: truncated %s length", ErrFormat, name)
		}
		var n uint64
		if width == 8 {
			n = binary.BigEndian.Uint64(body[off:])
		} else {
			n = uint64(binary.BigEndian.Uint32(body[off:]))
		}
		off += uint64(width)
		if n > size-off {
			return fmt.Errorf("%w: %s section of %d bytes exceeds the file", ErrFormat, name, n)
		}
		off += n
		return nil
	}

	layerWidth := 4
	if h.Version == 2 {
		layerWidth = 8
	}
	if err := skip("color mode", 4); err != nil {
		return err
	}
	if err := skip("image resources", 4); err != nil {
		return err
	}
	if err := skip("layer and mask", layerWidth); err != nil {
		return err
	}

	if size-off < 2 {
		return fmt.Errorf("%w: missing image data", ErrFormat)
	}
	compression := binary.BigEndian.Uint16(body[off:])
	off += 2

	rows := uint64(h.Channels) * uint64(h.Height)
	rowBytes := (uint64(h.Width)*uint64(h.Depth) + 7) / 8

	var need uint64
	switch compression {
	case compressionRaw:
		need = rows * rowBytes
	case compressionRLE:
		countSize := uint64(2)
		if h.Version == 2 {
			countSize = 4
		}
		// a PackBits run covers at most 128 bytes in 2
		need = rows*countSize + rows*((rowBytes+127)/128)*2
	default:
		need = rows * rowBytes / maxDeflateRatio
	}
	if have := size - off; have < need {
		return fmt.Errorf("%w: image data holds %d bytes, %dx%d needs at least %d",
			ErrFormat, have, h.Width, h.Height, need)
	}
	return nil
}
