package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VicDc/AI-Dataset-Augmenter/pkg/cropper"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/params"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

func TestDefaultRoundTrip(t *testing.T) {
	p, err := Default().ToParams()
	require.NoError(t, err)
	assert.Equal(t, params.Default(), p)
}

func TestSaveAndLoad(t *testing.T) {
	for _, ext := range []string{".json", ".yaml", ".yml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			c := Default()
			c.Source.Dir = "/data/in"
			c.Source.DestDir = "/data/out"
			c.Geometry.AspectRatio = "16:9"
			c.Geometry.RotationDegrees = -12.5
			c.Geometry.ResizeTo = "640x480"
			c.Output.Formats = []string{"png", "webp"}
			c.Run.Seed = 99

			path := filepath.Join(t.TempDir(), "nested", "config"+ext)
			require.NoError(t, c.SaveToFile(path))

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, c, loaded)
		})
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  copies: 4\ngeometry:\n  aspect_ratio: \"2\"\n"), 0644))

	c, err := LoadFromFile(path)
	require.NoError(t, err)

	p, err := c.ToParams()
	require.NoError(t, err)
	assert.Equal(t, 4, p.Copies)
	assert.Equal(t, cropper.Standard, p.AspectRatio)
	assert.Equal(t, "_aug", p.Suffix)
	assert.Equal(t, []types.Format{types.FormatJPEG}, p.Formats)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	ini := filepath.Join(dir, "config.ini")
	require.NoError(t, os.WriteFile(ini, []byte("x=1"), 0644))
	_, err = LoadFromFile(ini)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[output\ncopies="), 0644))
	_, err = LoadFromFile(bad)
	assert.Error(t, err)
}

func TestToParamsRejectsUnknownNames(t *testing.T) {
	c := Default()
	c.Output.Formats = []string{"gif"}
	_, err := c.ToParams()
	assert.Error(t, err)

	c = Default()
	c.Geometry.AspectRatio = "21:9"
	_, err = c.ToParams()
	assert.Error(t, err)
	assert.ErrorIs(t, c.Validate(), params.ErrInvalidParameter)
}

func TestResizeTo(t *testing.T) {
	c := Default()
	c.Geometry.Resize = true
	c.Geometry.ResizeTo = "640x480"

	p, err := c.ToParams()
	require.NoError(t, err)
	assert.Equal(t, types.Dimensions{Width: 640, Height: 480}, p.ResizeTo)
	assert.Equal(t, "640x480", FromParams(p).Geometry.ResizeTo)

	c.Geometry.ResizeTo = "640"
	_, err = c.ToParams()
	assert.ErrorContains(t, err, "geometry.resize_to")
}

func TestValidate(t *testing.T) {
	c := Default()
	assert.ErrorIs(t, c.Validate(), params.ErrInvalidParameter)

	c.Source.Dir = "in"
	c.Source.DestDir = "out"
	assert.NoError(t, c.Validate())

	c.Output.Copies = 0
	assert.ErrorIs(t, c.Validate(), params.ErrInvalidParameter)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"AUGMENT_SOURCE":  "/in",
		"AUGMENT_DEST":    "/out",
		"AUGMENT_FORMATS": "png, tiff,,",
		"AUGMENT_COPIES":  "3",
		"AUGMENT_SEED":    "42",
		"AUGMENT_WORKERS": "4",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	c := Default()
	require.NoError(t, c.ApplyEnv(lookup))
	assert.Equal(t, "/in", c.Source.Dir)
	assert.Equal(t, "/out", c.Source.DestDir)
	assert.Equal(t, []string{"png", "tiff"}, c.Output.Formats)
	assert.Equal(t, 3, c.Output.Copies)
	assert.Equal(t, int64(42), c.Run.Seed)
	assert.Equal(t, 4, c.Run.Workers)
	assert.Equal(t, "_aug", c.Output.Suffix)

	env["AUGMENT_COPIES"] = "many"
	assert.Error(t, Default().ApplyEnv(lookup))
}
