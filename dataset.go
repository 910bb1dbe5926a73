package augmenter

import (
	"fmt"
	"iter"
	"path/filepath"
	"strings"

	"github.com/VicDc/AI-Dataset-Augmenter/internal/utils"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/chain"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/cutout"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/output"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/params"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

// DatasetOptions configures a generated dataset: numbered versions of one image, each with
// its own random rotation, zoom and mirroring, all on the canvas of the source.
type DatasetOptions struct {
	Image    string
	DestDir  string
	Prefix   string
	Versions int
	Format   types.Format
	Random   chain.RandomSpec
	Seed     int64 // 0 picks one from the clock
	Workers  int   // versions only repeat for a seed with a single worker
}

// DefaultDatasetOptions returns ten JPEG versions named version_0001 onwards
func DefaultDatasetOptions() DatasetOptions {
	return DatasetOptions{
		Prefix:   "version_",
		Versions: 10,
		Format:   types.FormatJPEG,
		Random:   chain.DefaultRandomSpec(),
		Workers:  1,
	}
}

// Params converts the options to the parameter set the batch runner executes
func (o DatasetOptions) Params() (params.ParameterSet, error) {
	if strings.TrimSpace(o.Image) == "" {
		return params.ParameterSet{}, fmt.Errorf("%w: source image is required", params.ErrInvalidParameter)
	}
	if err := o.Random.Validate(); err != nil {
		return params.ParameterSet{}, err
	}

	p := params.Default()
	p.SourceDir = filepath.Dir(o.Image)
	p.DestDir = o.DestDir
	p.IncludeSubfolders = false
	p.KeepStructure = false
	p.Copies = o.Versions
	p.Prefix = o.Prefix
	p.Suffix = ""
	p.Formats = []types.Format{o.Format}
	p.JPEGQuality = params.MaxJPEGQuality
	p.Seed = o.Seed
	p.Workers = o.Workers
	if err := p.Validate(); err != nil {
		return params.ParameterSet{}, err
	}
	return p, nil
}

// NewDataset builds a pipeline that writes o.Versions random versions of o.Image
func NewDataset(o DatasetOptions, opts ...Option) (*Augmenter, error) {
	p, err := o.Params()
	if err != nil {
		return nil, err
	}

	a := &Augmenter{
		params:   p,
		planner:  chain.NewRandom(o.Random, cutout.NewSeeded(o.Seed)),
		resolver: output.NewSequenceResolver(p.DestDir, o.Prefix, p.Formats),
		files: func() iter.Seq2[string, error] {
			return utils.SingleImage(o.Image)
		},
	}
	return a.init(opts)
}
