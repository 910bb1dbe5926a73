package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/VicDc/AI-Dataset-Augmenter/pkg/cropper"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/params"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "AUGMENT_"

// Config holds the application configuration
type Config struct {
	Source   SourceConfig   `json:"source" yaml:"source" toml:"source"`
	Geometry GeometryConfig `json:"geometry" yaml:"geometry" toml:"geometry"`
	Augment  AugmentConfig  `json:"augment" yaml:"augment" toml:"augment"`
	Output   OutputConfig   `json:"output" yaml:"output" toml:"output"`
	Run      RunConfig      `json:"run" yaml:"run" toml:"run"`
}

// SourceConfig selects the input and output trees
type SourceConfig struct {
	Dir               string `json:"dir" yaml:"dir" toml:"dir"`
	DestDir           string `json:"dest_dir" yaml:"dest_dir" toml:"dest_dir"`
	IncludeSubfolders bool   `json:"include_subfolders" yaml:"include_subfolders" toml:"include_subfolders"`
	KeepStructure     bool   `json:"keep_structure" yaml:"keep_structure" toml:"keep_structure"`
}

// GeometryConfig holds the geometric transforms
type GeometryConfig struct {
	Resize          bool    `json:"resize" yaml:"resize" toml:"resize"`
	ResizePercent   float64 `json:"resize_percent" yaml:"resize_percent" toml:"resize_percent"`
	ResizeTo        string  `json:"resize_to,omitempty" yaml:"resize_to,omitempty" toml:"resize_to,omitempty"`
	AspectRatio     string  `json:"aspect_ratio" yaml:"aspect_ratio" toml:"aspect_ratio"`
	RotationDegrees float64 `json:"rotation_degrees" yaml:"rotation_degrees" toml:"rotation_degrees"`
	FlipHorizontal  bool    `json:"flip_horizontal" yaml:"flip_horizontal" toml:"flip_horizontal"`
	FlipVertical    bool    `json:"flip_vertical" yaml:"flip_vertical" toml:"flip_vertical"`
	Shear           bool    `json:"shear" yaml:"shear" toml:"shear"`
	ShearHorizontal float64 `json:"shear_horizontal" yaml:"shear_horizontal" toml:"shear_horizontal"`
	ShearVertical   float64 `json:"shear_vertical" yaml:"shear_vertical" toml:"shear_vertical"`
}

// AugmentConfig holds the photometric augmentations
type AugmentConfig struct {
	Blur             bool    `json:"blur" yaml:"blur" toml:"blur"`
	BlurRadius       float64 `json:"blur_radius" yaml:"blur_radius" toml:"blur_radius"`
	Noise            bool    `json:"noise" yaml:"noise" toml:"noise"`
	NoisePercent     float64 `json:"noise_percent" yaml:"noise_percent" toml:"noise_percent"`
	Cutout           bool    `json:"cutout" yaml:"cutout" toml:"cutout"`
	CutoutMaxPercent float64 `json:"cutout_max_percent" yaml:"cutout_max_percent" toml:"cutout_max_percent"`
	Brightness       bool    `json:"brightness" yaml:"brightness" toml:"brightness"`
	BrightnessValue  float64 `json:"brightness_value" yaml:"brightness_value" toml:"brightness_value"`
	Exposure         bool    `json:"exposure" yaml:"exposure" toml:"exposure"`
	ExposureStops    float64 `json:"exposure_stops" yaml:"exposure_stops" toml:"exposure_stops"`
}

// OutputConfig holds naming and export settings
type OutputConfig struct {
	Copies       int      `json:"copies" yaml:"copies" toml:"copies"`
	Prefix       string   `json:"prefix" yaml:"prefix" toml:"prefix"`
	Suffix       string   `json:"suffix" yaml:"suffix" toml:"suffix"`
	Formats      []string `json:"formats" yaml:"formats" toml:"formats"`
	JPEGQuality  int      `json:"jpeg_quality" yaml:"jpeg_quality" toml:"jpeg_quality"`
	WebPQuality  int      `json:"webp_quality" yaml:"webp_quality" toml:"webp_quality"`
	WebPLossless bool     `json:"webp_lossless" yaml:"webp_lossless" toml:"webp_lossless"`
	Manifest     string   `json:"manifest,omitempty" yaml:"manifest,omitempty" toml:"manifest,omitempty"`
}

// RunConfig holds execution settings
type RunConfig struct {
	Seed    int64 `json:"seed" yaml:"seed" toml:"seed"`
	Workers int   `json:"workers" yaml:"workers" toml:"workers"`
}

// Default returns a configuration with default values
func Default() *Config {
	return FromParams(params.Default())
}

// FromParams converts a parameter set to its file form
func FromParams(p params.ParameterSet) *Config {
	var resizeTo string
	if !p.ResizeTo.IsZero() {
		resizeTo = p.ResizeTo.String()
	}
	formats := make([]string, 0, len(p.Formats))
	for _, f := range p.Formats {
		formats = append(formats, string(f))
	}

	return &Config{
		Source: SourceConfig{
			Dir:               p.SourceDir,
			DestDir:           p.DestDir,
			IncludeSubfolders: p.IncludeSubfolders,
			KeepStructure:     p.KeepStructure,
		},
		Geometry: GeometryConfig{
			Resize:          p.Resize,
			ResizePercent:   p.ResizePercent,
			ResizeTo:        resizeTo,
			AspectRatio:     p.AspectRatio.String(),
			RotationDegrees: p.RotationDegrees,
			FlipHorizontal:  p.FlipHorizontal,
			FlipVertical:    p.FlipVertical,
			Shear:           p.Shear,
			ShearHorizontal: p.ShearHorizontal,
			ShearVertical:   p.ShearVertical,
		},
		Augment: AugmentConfig{
			Blur:             p.Blur,
			BlurRadius:       p.BlurRadius,
			Noise:            p.Noise,
			NoisePercent:     p.NoisePercent,
			Cutout:           p.Cutout,
			CutoutMaxPercent: p.CutoutMaxPercent,
			Brightness:       p.Brightness,
			BrightnessValue:  p.BrightnessValue,
			Exposure:         p.Exposure,
			ExposureStops:    p.ExposureStops,
		},
		Output: OutputConfig{
			Copies:       p.Copies,
			Prefix:       p.Prefix,
			Suffix:       p.Suffix,
			Formats:      formats,
			JPEGQuality:  p.JPEGQuality,
			WebPQuality:  p.WebPQuality,
			WebPLossless: p.WebPLossless,
		},
		Run: RunConfig{
			Seed:    p.Seed,
			Workers: p.Workers,
		},
	}
}

// ToParams converts the configuration to a parameter set. Names are parsed, not validated.
func (c *Config) ToParams() (params.ParameterSet, error) {
	aspect, err := cropper.ParseTarget(c.Geometry.AspectRatio)
	if err != nil {
		return params.ParameterSet{}, fmt.Errorf("geometry.aspect_ratio: %w", err)
	}

	resizeTo, err := types.ParseDimensions(c.Geometry.ResizeTo)
	if err != nil {
		return params.ParameterSet{}, fmt.Errorf("geometry.resize_to: %w", err)
	}

	formats := make([]types.Format, 0, len(c.Output.Formats))
	for _, name := range c.Output.Formats {
		f, err := types.ParseFormat(name)
		if err != nil {
			return params.ParameterSet{}, fmt.Errorf("output.formats: %w", err)
		}
		formats = append(formats, f)
	}

	return params.ParameterSet{
		SourceDir:         c.Source.Dir,
		DestDir:           c.Source.DestDir,
		IncludeSubfolders: c.Source.IncludeSubfolders,
		KeepStructure:     c.Source.KeepStructure,

		Resize:          c.Geometry.Resize,
		ResizePercent:   c.Geometry.ResizePercent,
		ResizeTo:        resizeTo,
		AspectRatio:     aspect,
		RotationDegrees: c.Geometry.RotationDegrees,
		FlipHorizontal:  c.Geometry.FlipHorizontal,
		FlipVertical:    c.Geometry.FlipVertical,
		Shear:           c.Geometry.Shear,
		ShearHorizontal: c.Geometry.ShearHorizontal,
		ShearVertical:   c.Geometry.ShearVertical,

		Blur:             c.Augment.Blur,
		BlurRadius:       c.Augment.BlurRadius,
		Noise:            c.Augment.Noise,
		NoisePercent:     c.Augment.NoisePercent,
		Cutout:           c.Augment.Cutout,
		CutoutMaxPercent: c.Augment.CutoutMaxPercent,
		Brightness:       c.Augment.Brightness,
		BrightnessValue:  c.Augment.BrightnessValue,
		Exposure:         c.Augment.Exposure,
		ExposureStops:    c.Augment.ExposureStops,

		Copies:       c.Output.Copies,
		Prefix:       c.Output.Prefix,
		Suffix:       c.Output.Suffix,
		Formats:      formats,
		JPEGQuality:  c.Output.JPEGQuality,
		WebPQuality:  c.Output.WebPQuality,
		WebPLossless: c.Output.WebPLossless,

		Seed:    c.Run.Seed,
		Workers: c.Run.Workers,
	}, nil
}

// LoadFromFile loads configuration from a JSON, YAML or TOML file on top of the defaults
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		err = json.Unmarshal(data, config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	case ".toml":
		err = toml.Unmarshal(data, config)
	default:
		return nil, fmt.Errorf("unsupported config file type %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Marshal encodes the configuration in the format named by ext (".json", ".yaml", ".toml")
func (c *Config) Marshal(ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".json":
		return json.MarshalIndent(c, "", "  ")
	case ".yaml", ".yml":
		return yaml.Marshal(c)
	case ".toml":
		var b strings.Builder
		if err := toml.NewEncoder(&b).Encode(c); err != nil {
			return nil, err
		}
		return []byte(b.String()), nil
	}
	return nil, fmt.Errorf("unsupported config file type %q", ext)
}

// SaveToFile saves configuration, picking the encoding from the file extension
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal(filepath.Ext(filename))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	p, err := c.ToParams()
	if err != nil {
		return fmt.Errorf("%w: %v", params.ErrInvalidParameter, err)
	}
	return p.Validate()
}

// ApplyEnv overrides fields from AUGMENT_* variables. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}

	str("SOURCE", &c.Source.Dir)
	str("DEST", &c.Source.DestDir)
	str("PREFIX", &c.Output.Prefix)
	str("SUFFIX", &c.Output.Suffix)
	str("ASPECT_RATIO", &c.Geometry.AspectRatio)
	str("MANIFEST", &c.Output.Manifest)

	if v, ok := lookup(EnvPrefix + "FORMATS"); ok {
		c.Output.Formats = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "SEED"); ok {
		seed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%sSEED: %w", EnvPrefix, err)
		}
		c.Run.Seed = seed
	}

	for key, dst := range map[string]*int{
		"COPIES":       &c.Output.Copies,
		"JPEG_QUALITY": &c.Output.JPEGQuality,
		"WEBP_QUALITY": &c.Output.WebPQuality,
		"WORKERS":      &c.Run.Workers,
	} {
		if err := integer(key, dst); err != nil {
			return err
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./augment.yaml"
	}
	return filepath.Join(home, ".config", "augment", "config.yaml")
}
