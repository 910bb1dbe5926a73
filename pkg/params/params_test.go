package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

func validParams() ParameterSet {
	p := Default()
	p.SourceDir = "/in"
	p.DestDir = "/out"
	return p
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, validParams().Validate())

	p := Default()
	assert.Equal(t, 1, p.Copies)
	assert.Equal(t, "_aug", p.Suffix)
	assert.Equal(t, []types.Format{types.FormatJPEG}, p.Formats)
	assert.Equal(t, 10, p.JPEGQuality)
	assert.True(t, p.AspectRatio.IsNone())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *ParameterSet)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *ParameterSet) {}},
		{name: "zero copies", mutate: func(p *ParameterSet) { p.Copies = 0 }, wantErr: true},
		{name: "negative copies", mutate: func(p *ParameterSet) { p.Copies = -3 }, wantErr: true},
		{name: "resize zero percent", mutate: func(p *ParameterSet) { p.Resize = true; p.ResizePercent = 0 }, wantErr: true},
		{name: "resize to size", mutate: func(p *ParameterSet) {
			p.Resize = true
			p.ResizePercent = 0
			p.ResizeTo = types.Dimensions{Width: 640, Height: 480}
		}},
		{name: "resize to half size", mutate: func(p *ParameterSet) {
			p.Resize = true
			p.ResizeTo = types.Dimensions{Width: 640}
		}, wantErr: true},
		{name: "disabled resize ignores percent", mutate: func(p *ParameterSet) { p.Resize = false; p.ResizePercent = -10 }},
		{name: "no formats", mutate: func(p *ParameterSet) { p.Formats = nil }, wantErr: true},
		{name: "unknown format", mutate: func(p *ParameterSet) { p.Formats = []types.Format{"gif"} }, wantErr: true},
		{name: "jpeg quality too low", mutate: func(p *ParameterSet) { p.JPEGQuality = 0 }, wantErr: true},
		{name: "jpeg quality too high", mutate: func(p *ParameterSet) { p.JPEGQuality = 13 }, wantErr: true},
		{name: "jpeg quality bounds", mutate: func(p *ParameterSet) { p.JPEGQuality = 12 }},
		{
			name:   "jpeg quality ignored without jpeg",
			mutate: func(p *ParameterSet) { p.Formats = []types.Format{types.FormatPNG}; p.JPEGQuality = 99 },
		},
		{
			name:    "webp quality out of range",
			mutate:  func(p *ParameterSet) { p.Formats = []types.Format{types.FormatWebP}; p.WebPQuality = 101 },
			wantErr: true,
		},
		{name: "disabled blur ignores radius", mutate: func(p *ParameterSet) { p.BlurRadius = -1 }},
		{name: "missing source", mutate: func(p *ParameterSet) { p.SourceDir = " " }, wantErr: true},
		{name: "missing destination", mutate: func(p *ParameterSet) { p.DestDir = "" }, wantErr: true},
		{name: "zero workers", mutate: func(p *ParameterSet) { p.Workers = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)

			err := p.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidParameter)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestExportFormats(t *testing.T) {
	p := validParams()
	p.Formats = []types.Format{types.FormatPSD, types.FormatJPEG, types.FormatPSD, types.FormatPNG}

	assert.Equal(t, []types.Format{types.FormatJPEG, types.FormatPNG, types.FormatPSD}, p.ExportFormats())
	assert.True(t, p.HasFormat(types.FormatPNG))
	assert.False(t, p.HasFormat(types.FormatTIFF))
}

func TestTotalItems(t *testing.T) {
	p := validParams()
	p.Copies = 3
	assert.Equal(t, 12, p.TotalItems(4))
}
