package cropper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

func TestTargets(t *testing.T) {
	targets := Targets()
	require.Len(t, targets, 5)

	assert.True(t, targets[0].IsNone())
	assert.Equal(t, 0.0, targets[0].Ratio())
	assert.InDelta(t, 1.0, targets[1].Ratio(), 1e-12)
	assert.InDelta(t, 4.0/3.0, targets[2].Ratio(), 1e-12)
	assert.InDelta(t, 3.0/2.0, targets[3].Ratio(), 1e-12)
	assert.InDelta(t, 16.0/9.0, targets[4].Ratio(), 1e-12)
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{in: "", want: None},
		{in: "keep", want: None},
		{in: "None", want: None},
		{in: "1:1", want: Square},
		{in: "16:9", want: Widescreen},
		{in: "2", want: Standard},
		{in: "3", want: Classic},
		{in: "5", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "21:9", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTarget(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTargetText(t *testing.T) {
	var target Target
	require.NoError(t, target.UnmarshalText([]byte("3:2")))
	assert.Equal(t, Classic, target)

	text, err := Widescreen.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "16:9", string(text))

	assert.Error(t, target.UnmarshalText([]byte("bogus")))
}

func TestCenterCrop(t *testing.T) {
	tests := []struct {
		name  string
		dims  types.Dimensions
		ratio float64
		want  types.Rectangle
	}{
		{
			name:  "too wide for square",
			dims:  types.Dimensions{Width: 200, Height: 100},
			ratio: 1,
			want:  types.Rectangle{X: 50, Y: 0, Width: 100, Height: 100},
		},
		{
			name:  "too tall for square",
			dims:  types.Dimensions{Width: 100, Height: 300},
			ratio: 1,
			want:  types.Rectangle{X: 0, Y: 100, Width: 100, Height: 100},
		},
		{
			name:  "odd remainder floors the offset",
			dims:  types.Dimensions{Width: 101, Height: 50},
			ratio: 1,
			want:  types.Rectangle{X: 25, Y: 0, Width: 50, Height: 50},
		},
		{
			name:  "exact 4:3 takes the row branch with no offset",
			dims:  types.Dimensions{Width: 400, Height: 300},
			ratio: Standard.Ratio(),
			want:  types.Rectangle{X: 0, Y: 0, Width: 400, Height: 300},
		},
		{
			name:  "exact 16:9",
			dims:  types.Dimensions{Width: 1920, Height: 1080},
			ratio: Widescreen.Ratio(),
			want:  types.Rectangle{X: 0, Y: 0, Width: 1920, Height: 1080},
		},
		{
			name:  "landscape to 3:2 rounds the width",
			dims:  types.Dimensions{Width: 1000, Height: 333},
			ratio: Classic.Ratio(),
			want:  types.Rectangle{X: 250, Y: 0, Width: 500, Height: 333},
		},
		{
			name:  "no ratio keeps everything",
			dims:  types.Dimensions{Width: 10, Height: 20},
			ratio: 0,
			want:  types.Rectangle{Width: 10, Height: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CenterCrop(tt.dims, tt.ratio)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Within(tt.dims))
		})
	}
}

func TestCenterCropIdempotent(t *testing.T) {
	for _, target := range Targets()[1:] {
		for _, k := range []int{1, 3, 7, 40, 120} {
			d := types.Dimensions{Width: target.Width * k, Height: target.Height * k}

			first := CenterCrop(d, target.Ratio())
			second := CenterCrop(first.Size(), target.Ratio())

			assert.Equal(t, d, first.Size(), "%s on %s", target, d)
			assert.Equal(t, d, second.Size(), "%s on %s", target, d)
			assert.Zero(t, second.X)
			assert.Zero(t, second.Y)
		}
	}
}
