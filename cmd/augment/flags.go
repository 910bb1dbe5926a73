package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/VicDc/AI-Dataset-Augmenter/internal/config"
)

// configFlag is a command line flag backed by one config field
type configFlag struct {
	name  string
	usage string
	field func(c *config.Config) any
}

var configFlags = []configFlag{
	{"source", "source image directory", func(c *config.Config) any { return &c.Source.Dir }},
	{"dest", "destination directory", func(c *config.Config) any { return &c.Source.DestDir }},
	{"recursive", "include subfolders", func(c *config.Config) any { return &c.Source.IncludeSubfolders }},
	{"keep-structure", "mirror the source folder structure", func(c *config.Config) any { return &c.Source.KeepStructure }},

	{"resize", "resize by --resize-percent, or to --resize-to when given", func(c *config.Config) any { return &c.Geometry.Resize }},
	{"resize-percent", "resize percentage", func(c *config.Config) any { return &c.Geometry.ResizePercent }},
	{"resize-to", "resize to an exact WIDTHxHEIGHT such as 640x480", func(c *config.Config) any { return &c.Geometry.ResizeTo }},
	{"aspect", "center crop to none|1:1|4:3|3:2|16:9 (or 0-4)", func(c *config.Config) any { return &c.Geometry.AspectRatio }},
	{"rotate", "rotation in degrees, clockwise", func(c *config.Config) any { return &c.Geometry.RotationDegrees }},
	{"flip-h", "flip horizontally", func(c *config.Config) any { return &c.Geometry.FlipHorizontal }},
	{"flip-v", "flip vertically", func(c *config.Config) any { return &c.Geometry.FlipVertical }},
	{"shear", "enable shear", func(c *config.Config) any { return &c.Geometry.Shear }},
	{"shear-h", "horizontal shear in pixels", func(c *config.Config) any { return &c.Geometry.ShearHorizontal }},
	{"shear-v", "vertical shear in pixels", func(c *config.Config) any { return &c.Geometry.ShearVertical }},

	{"blur", "enable gaussian blur", func(c *config.Config) any { return &c.Augment.Blur }},
	{"blur-radius", "blur radius in pixels", func(c *config.Config) any { return &c.Augment.BlurRadius }},
	{"noise", "enable noise", func(c *config.Config) any { return &c.Augment.Noise }},
	{"noise-percent", "noise amount 0-100", func(c *config.Config) any { return &c.Augment.NoisePercent }},
	{"cutout", "enable random cutout", func(c *config.Config) any { return &c.Augment.Cutout }},
	{"cutout-max", "maximum cutout size in percent of each side", func(c *config.Config) any { return &c.Augment.CutoutMaxPercent }},
	{"brightness", "enable brightness", func(c *config.Config) any { return &c.Augment.Brightness }},
	{"brightness-value", "brightness -150..150", func(c *config.Config) any { return &c.Augment.BrightnessValue }},
	{"exposure", "enable exposure", func(c *config.Config) any { return &c.Augment.Exposure }},
	{"exposure-stops", "exposure in stops", func(c *config.Config) any { return &c.Augment.ExposureStops }},

	{"copies", "copies per image", func(c *config.Config) any { return &c.Output.Copies }},
	{"prefix", "output name prefix", func(c *config.Config) any { return &c.Output.Prefix }},
	{"suffix", "output name suffix", func(c *config.Config) any { return &c.Output.Suffix }},
	{"format", "export formats: jpg,png,tif,psd,webp", func(c *config.Config) any { return &c.Output.Formats }},
	{"jpeg-quality", "JPEG quality 1-12", func(c *config.Config) any { return &c.Output.JPEGQuality }},
	{"webp-quality", "WebP quality 0-100", func(c *config.Config) any { return &c.Output.WebPQuality }},
	{"webp-lossless", "lossless WebP", func(c *config.Config) any { return &c.Output.WebPLossless }},
	{"manifest", "write a run manifest (.yaml, .json or .parquet)", func(c *config.Config) any { return &c.Output.Manifest }},

	{"seed", "cutout random seed, 0 for time based", func(c *config.Config) any { return &c.Run.Seed }},
	{"workers", "images processed in parallel", func(c *config.Config) any { return &c.Run.Workers }},
}

// bindConfigFlags registers every config flag on fs, storing values in c
func bindConfigFlags(fs *pflag.FlagSet, c *config.Config) {
	for _, f := range configFlags {
		switch p := f.field(c).(type) {
		case *string:
			fs.StringVar(p, f.name, *p, f.usage)
		case *bool:
			fs.BoolVar(p, f.name, *p, f.usage)
		case *int:
			fs.IntVar(p, f.name, *p, f.usage)
		case *int64:
			fs.Int64Var(p, f.name, *p, f.usage)
		case *float64:
			fs.Float64Var(p, f.name, *p, f.usage)
		case *[]string:
			fs.StringSliceVar(p, f.name, *p, f.usage)
		default:
			panic(fmt.Sprintf("flag %s: unsupported field type %T", f.name, p))
		}
	}
}

// applyChangedFlags copies the fields of the flags the user set from src onto dst
func applyChangedFlags(fs *pflag.FlagSet, dst, src *config.Config) {
	for _, f := range configFlags {
		if !fs.Changed(f.name) {
			continue
		}
		switch d := f.field(dst).(type) {
		case *string:
			*d = *f.field(src).(*string)
		case *bool:
			*d = *f.field(src).(*bool)
		case *int:
			*d = *f.field(src).(*int)
		case *int64:
			*d = *f.field(src).(*int64)
		case *float64:
			*d = *f.field(src).(*float64)
		case *[]string:
			*d = append([]string(nil), *f.field(src).(*[]string)...)
		}
	}
}
