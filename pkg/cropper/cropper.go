package cropper

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

// Target is an aspect ratio to center-crop to. The zero Width/Height target means "keep".
type Target struct {
	Width  int
	Height int
	Name   string
}

// Supported targets, in selector order
var (
	None       = Target{0, 0, "none"}
	Square     = Target{1, 1, "1:1"}
	Standard   = Target{4, 3, "4:3"}
	Classic    = Target{3, 2, "3:2"}
	Widescreen = Target{16, 9, "16:9"}
)

// Targets returns the selectable targets by index (0 = keep)
func Targets() []Target {
	return []Target{None, Square, Standard, Classic, Widescreen}
}

// IsNone reports whether cropping is disabled
func (t Target) IsNone() bool {
	return t.Width <= 0 || t.Height <= 0
}

// Ratio returns width/height, 0 for None
func (t Target) Ratio() float64 {
	if t.IsNone() {
		return 0
	}
	return float64(t.Width) / float64(t.Height)
}

func (t Target) String() string {
	if t.IsNone() {
		return None.Name
	}
	return t.Name
}

// ParseTarget accepts a label ("16:9", "none", "keep") or the selector index ("0".."4")
func ParseTarget(s string) (Target, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "none", "keep":
		return None, nil
	}
	if idx, err := strconv.Atoi(s); err == nil {
		targets := Targets()
		if idx < 0 || idx >= len(targets) {
			return None, fmt.Errorf("aspect ratio index %d out of range 0-%d", idx, len(targets)-1)
		}
		return targets[idx], nil
	}
	for _, t := range Targets() {
		if t.Name == s {
			return t, nil
		}
	}
	return None, fmt.Errorf("unsupported aspect ratio %q", s)
}

// MarshalText encodes the target label
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a label or index
func (t *Target) UnmarshalText(text []byte) error {
	parsed, err := ParseTarget(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// CenterCrop computes the centered rectangle of d that matches ratio without scaling.
// An image wider than ratio loses columns on both sides; otherwise, including the exact
// match, it loses rows, so an already matching image yields the full rectangle.
func CenterCrop(d types.Dimensions, ratio float64) types.Rectangle {
	if ratio <= 0 || d.Width <= 0 || d.Height <= 0 {
		return types.Rectangle{Width: d.Width, Height: d.Height}
	}

	if d.Ratio() > ratio {
		newWidth := clamp(int(math.Round(float64(d.Height)*ratio)), 1, d.Width)
		return types.Rectangle{
			X:      (d.Width - newWidth) / 2,
			Y:      0,
			Width:  newWidth,
			Height: d.Height,
		}
	}

	newHeight := clamp(int(math.Round(float64(d.Width)/ratio)), 1, d.Height)
	return types.Rectangle{
		X:      0,
		Y:      (d.Height - newHeight) / 2,
		Width:  d.Width,
		Height: newHeight,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
