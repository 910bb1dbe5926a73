package psd

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 10), uint8(y * 20), uint8(x + y), 255})
		}
	}
	return img
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

// document assembles a version 1 document with empty sections around data
func document(h header, compression uint16, data []byte) []byte {
	var buf bytes.Buffer
	h.Version = 1
	copy(h.Signature[:], signature)
	_ = binary.Write(&buf, binary.BigEndian, h)
	for i := 0; i < 3; i++ {
		_ = binary.Write(&buf, binary.BigEndian, uint32(0))
	}
	_ = binary.Write(&buf, binary.BigEndian, compression)
	buf.Write(data)
	return buf.Bytes()
}

func TestEncodeDecode(t *testing.T) {
	src := createTestImage(7, 5)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, src))
	assert.Equal(t, "8BPS", buf.String()[:4])

	cfg, err := DecodeConfig(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Width)
	assert.Equal(t, 5, cfg.Height)

	decoded, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, src.Bounds(), decoded.Bounds())

	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			assert.Equal(t, src.NRGBAAt(x, y), nrgbaAt(decoded, x, y), "pixel %d,%d", x, y)
		}
	}
}

func TestRegisteredFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, createTestImage(3, 2)))

	img, format, err := image.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "psd", format)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
}

func TestEncodeOffsetBounds(t *testing.T) {
	src := createTestImage(10, 10).SubImage(image.Rect(3, 4, 8, 6))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, src))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 5, 2), decoded.Bounds())
	assert.Equal(t, src.(*image.NRGBA).NRGBAAt(3, 4), nrgbaAt(decoded, 0, 0))
}

// rleGrayDocument builds a 4x2 grayscale document with PackBits rows
func rleGrayDocument() []byte {
	var data bytes.Buffer
	row0 := []byte{0xFD, 9}          // repeat 9 four times
	row1 := []byte{0x03, 1, 2, 3, 4} // four literals
	_ = binary.Write(&data, binary.BigEndian, []uint16{uint16(len(row0)), uint16(len(row1))})
	data.Write(row0)
	data.Write(row1)
	return document(header{Channels: 1, Height: 2, Width: 4, Depth: 8, ColorMode: modeGrayscale},
		compressionRLE, data.Bytes())
}

func TestDecodeRLEGray(t *testing.T) {
	img, err := Decode(bytes.NewReader(rleGrayDocument()))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())

	want := []uint8{9, 9, 9, 9, 1, 2, 3, 4}
	for i, v := range want {
		c := color.GrayModel.Convert(img.At(i%4, i/4)).(color.Gray)
		assert.Equal(t, v, c.Y, "pixel %d", i)
	}
}

func TestDecodeCMYK(t *testing.T) {
	// 2x1, four raw planes
	doc := document(header{Channels: 4, Height: 1, Width: 2, Depth: 8, ColorMode: 4},
		compressionRaw, []byte{255, 0, 255, 255, 255, 255, 0, 255})

	img, err := Decode(bytes.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 1), img.Bounds())
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("GIF89a garbage")))
	assert.ErrorIs(t, err, ErrFormat)

	doc := rleGrayDocument()
	_, err = Decode(bytes.NewReader(doc[:len(doc)-4]))
	assert.ErrorIs(t, err, ErrFormat)

	channels := rleGrayDocument()
	binary.BigEndian.PutUint16(channels[12:], 65535)
	_, err = Decode(bytes.NewReader(channels))
	assert.ErrorIs(t, err, ErrFormat)

	section := rleGrayDocument()
	binary.BigEndian.PutUint32(section[headerSize+4:], 0xFFFFFFF0)
	_, err = Decode(bytes.NewReader(section))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestDecodeTruncatedLargeHeader(t *testing.T) {
	// 44 bytes claiming a 20000x20000 raw RGB composite
	doc := document(header{Channels: 3, Height: 20000, Width: 20000, Depth: 8, ColorMode: modeRGB},
		compressionRaw, []byte{1, 2, 3, 4})
	require.Len(t, doc, 44)

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	_, err := Decode(bytes.NewReader(doc))

	runtime.ReadMemStats(&after)
	assert.ErrorIs(t, err, ErrFormat)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))

	rle := document(header{Channels: 56, Height: 30000, Width: 30000, Depth: 8, ColorMode: modeRGB},
		compressionRLE, []byte{0, 1})
	_, err = Decode(bytes.NewReader(rle))
	assert.ErrorIs(t, err, ErrFormat)
}
