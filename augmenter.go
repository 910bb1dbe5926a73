// Package augmenter produces augmented copies of an image dataset.
//
// A run walks a source directory, and for every image and every requested copy it applies a fixed
// chain of operations, then exports the result in each enabled format:
//
//  1. resize by a percentage or to an exact size
//  2. center crop to an aspect ratio
//  3. rotate, growing the canvas
//  4. flip horizontally, then vertically
//  5. shear horizontally, then vertically
//  6. gaussian blur
//  7. noise
//  8. brightness
//  9. exposure
//  10. cutout, a random black rectangle
//
// Basic usage:
//
//	p := params.Default()
//	p.SourceDir = "dataset/raw"
//	p.DestDir = "dataset/augmented"
//	p.Copies = 3
//	p.Cutout = true
//	p.Formats = []types.Format{types.FormatPNG}
//
//	aug, err := augmenter.New(p)
//	if err != nil {
//		log.Fatal(err)
//	}
//	stats, err := aug.Run(context.Background())
//
// NewDataset builds the other kind of run: numbered versions of a single image, each with
// a random rotation, zoom and mirroring, written on the canvas size of the source.
//
// Item failures never stop a run. They are reported through the Notifier and counted in the
// returned RunStats.
//
// The package consists of these components:
//
//  1. Params (pkg/params): the validated run configuration
//  2. Chain (pkg/chain): plans the operation steps for one copy
//  3. Backend (pkg/backend): executes steps on pixels
//  4. Output (pkg/output): names and places exported files
//  5. Batch (pkg/batch): drives items, progress and release
package augmenter

import (
	"context"
	"fmt"
	"iter"

	"github.com/sirupsen/logrus"

	"github.com/VicDc/AI-Dataset-Augmenter/internal/notify"
	"github.com/VicDc/AI-Dataset-Augmenter/internal/utils"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/backend"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/batch"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/chain"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/cutout"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/manifest"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/output"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/params"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

// Version of the augmenter library
const Version = "1.0.0"

// Augmenter wires the pipeline components for one parameter set
type Augmenter struct {
	params       params.ParameterSet
	backend      backend.Backend
	planner      batch.Planner
	resolver     batch.Resolver
	files        func() iter.Seq2[string, error]
	notifier     batch.Notifier
	logger       logrus.FieldLogger
	collector    *manifest.Collector
	manifestPath string
}

// Option configures an Augmenter
type Option func(*Augmenter)

// WithBackend replaces the imaging backend
func WithBackend(b backend.Backend) Option {
	return func(a *Augmenter) {
		a.backend = b
	}
}

// WithNotifier replaces the log notifier
func WithNotifier(n batch.Notifier) Option {
	return func(a *Augmenter) {
		a.notifier = n
	}
}

// WithLogger sets the logger for the run
func WithLogger(logger logrus.FieldLogger) Option {
	return func(a *Augmenter) {
		a.logger = logger
	}
}

// WithManifest writes a run manifest to path once the run ends
func WithManifest(path string) Option {
	return func(a *Augmenter) {
		a.manifestPath = path
	}
}

// New validates p and builds the pipeline
func New(p params.ParameterSet, opts ...Option) (*Augmenter, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	a := &Augmenter{
		params:   p,
		planner:  chain.New(cutout.NewSeeded(p.Seed)),
		resolver: output.NewResolver(p),
		files: func() iter.Seq2[string, error] {
			return utils.ImageFiles(p.SourceDir, p.IncludeSubfolders)
		},
	}
	return a.init(opts)
}

func (a *Augmenter) init(opts []Option) (*Augmenter, error) {
	collector := manifest.NewCollector()
	a.backend = backend.NewProcessor()
	a.logger = logrus.StandardLogger()
	a.collector = collector
	for _, opt := range opts {
		opt(a)
	}
	if a.manifestPath != "" {
		if err := manifest.CheckPath(a.manifestPath); err != nil {
			return nil, fmt.Errorf("%w: manifest: %w", params.ErrInvalidParameter, err)
		}
	}

	a.logger = a.logger.WithField("run_id", collector.RunID())
	if a.notifier == nil {
		a.notifier = notify.NewLogNotifier(a.logger)
	}
	return a, nil
}

// RunID identifies this run in logs and the manifest
func (a *Augmenter) RunID() string {
	return a.collector.RunID()
}

// Params returns the validated parameter set
func (a *Augmenter) Params() params.ParameterSet {
	return a.params
}

// Run processes the source directory, or the single image of a dataset
func (a *Augmenter) Run(ctx context.Context) (types.RunStats, error) {
	runner := batch.NewRunner(a.params, a.backend, a.planner, a.resolver, a.notifier,
		batch.WithWorkers(a.params.Workers),
		batch.WithRecorder(a.collector),
		batch.WithLogger(a.logger),
	)

	stats, err := runner.Run(ctx, a.files())

	if a.manifestPath != "" {
		if werr := a.collector.WriteFile(a.manifestPath, stats); werr != nil {
			a.logger.WithError(werr).Error("Failed to write manifest")
		} else {
			a.logger.WithField("path", a.manifestPath).Info("Manifest written")
		}
	}
	return stats, err
}

// Plan loads path and returns the steps the first copy would run, without writing anything.
// Cutout rectangles are drawn from the run's sampler, so later copies will differ.
func (a *Augmenter) Plan(path string) ([]types.OperationStep, types.Dimensions, error) {
	img, err := a.backend.Load(path)
	if err != nil {
		return nil, types.Dimensions{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	defer a.backend.Release(img)

	steps, final := a.planner.Plan(a.params, img.Dimensions())
	return steps, final, nil
}

// Entries returns the manifest entries recorded so far
func (a *Augmenter) Entries() []manifest.Entry {
	return a.collector.Entries()
}
