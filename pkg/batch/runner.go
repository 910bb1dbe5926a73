// Package batch runs the augmentation over every (file, copy) item of a run.
package batch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/VicDc/AI-Dataset-Augmenter/pkg/backend"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/manifest"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/params"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

var (
	// ErrNoInputFiles is returned when discovery yields nothing
	ErrNoInputFiles = errors.New("no input images found")
	// ErrItemProcessing is wrapped by every per-item failure
	ErrItemProcessing = errors.New("item processing failed")
)

// ItemError describes a failed item. It matches both ErrItemProcessing and its cause.
type ItemError struct {
	Path  string
	Copy  int
	Stage string
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s (copy %d): %s: %v", e.Path, e.Copy, e.Stage, e.Err)
}

func (e *ItemError) Unwrap() []error {
	return []error{ErrItemProcessing, e.Err}
}

// Planner produces the operation steps for one copy
type Planner interface {
	Plan(p params.ParameterSet, dims types.Dimensions) ([]types.OperationStep, types.Dimensions)
}

// Resolver decides where a copy is written
type Resolver interface {
	Resolve(source string, copyIndex, totalCopies int) (types.OutputTarget, error)
}

// Notifier receives progress. Calls are serialized and fractions never decrease.
type Notifier interface {
	RunStarted(total int)
	Progress(fraction float64, text string)
	ItemFailed(path string, copyIndex int, err error)
	Finished(stats types.RunStats)
}

// Option configures a Runner
type Option func(*Runner)

// WithWorkers processes up to n items at once. Values below 1 mean sequential.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = max(1, n)
	}
}

// WithRecorder appends every item outcome to rec
func WithRecorder(rec manifest.Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithLogger sets the logger used for per-item debug output
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// Runner executes a batch
type Runner struct {
	params   params.ParameterSet
	backend  backend.Backend
	planner  Planner
	resolver Resolver
	notifier Notifier
	recorder manifest.Recorder
	logger   logrus.FieldLogger
	workers  int

	mu    sync.Mutex
	stats types.RunStats
}

// NewRunner creates a runner for the validated parameter set p
func NewRunner(p params.ParameterSet, b backend.Backend, planner Planner, resolver Resolver, notifier Notifier, opts ...Option) *Runner {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	r := &Runner{
		params:   p,
		backend:  b,
		planner:  planner,
		resolver: resolver,
		notifier: notifier,
		logger:   logger,
		workers:  1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type item struct {
	path      string
	copyIndex int
}

// Run processes every copy of every file. Item failures are reported and skipped, so the
// returned error is only set for discovery failures, an empty input or cancellation.
// ctx is checked between items; an item that has started always finishes.
func (r *Runner) Run(ctx context.Context, files iter.Seq2[string, error]) (types.RunStats, error) {
	r.mu.Lock()
	r.stats = types.RunStats{}
	r.mu.Unlock()
	defer func() {
		r.notifier.Finished(r.Stats())
	}()

	var sources []string
	for path, err := range files {
		if err != nil {
			return r.Stats(), fmt.Errorf("failed to discover source images: %w", err)
		}
		sources = append(sources, path)
	}

	r.mu.Lock()
	r.stats.Files = len(sources)
	r.stats.Total = r.params.TotalItems(len(sources))
	total := r.stats.Total
	r.mu.Unlock()

	r.notifier.RunStarted(total)
	if len(sources) == 0 {
		return r.Stats(), ErrNoInputFiles
	}

	items := func(yield func(item) bool) {
		for _, path := range sources {
			for i := 1; i <= r.params.Copies; i++ {
				if !yield(item{path: path, copyIndex: i}) {
					return
				}
			}
		}
	}

	if r.workers <= 1 {
		for it := range items {
			if err := ctx.Err(); err != nil {
				return r.Stats(), err
			}
			r.process(it)
		}
		return r.Stats(), nil
	}

	var g errgroup.Group
	g.SetLimit(r.workers)
	var cancelled error
	for it := range items {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		g.Go(func() error {
			r.process(it)
			return nil
		})
	}
	_ = g.Wait()
	return r.Stats(), cancelled
}

// Stats returns a snapshot of the counters
func (r *Runner) Stats() types.RunStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *Runner) process(it item) {
	start := time.Now()
	entry, err := r.processItem(it)
	entry.Source = it.path
	entry.Copy = it.copyIndex
	entry.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		entry.Status = manifest.StatusFailed
		entry.Error = err.Error()
	} else {
		entry.Status = manifest.StatusOK
	}
	if r.recorder != nil {
		r.recorder.Record(entry)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.Processed++
	if err != nil {
		r.stats.Failed++
		r.notifier.ItemFailed(it.path, it.copyIndex, err)
	} else {
		r.stats.Succeeded++
	}
	r.notifier.Progress(r.stats.Fraction(), fmt.Sprintf("processed: %s (copy %d)", filepath.Base(it.path), it.copyIndex))
}

func (r *Runner) processItem(it item) (entry manifest.Entry, err error) {
	fail := func(stage string, cause error) (manifest.Entry, error) {
		return entry, &ItemError{Path: it.path, Copy: it.copyIndex, Stage: stage, Err: cause}
	}

	img, err := r.backend.Load(it.path)
	if err != nil {
		return fail("load", err)
	}
	defer r.backend.Release(img)

	if err := r.backend.Flatten(img); err != nil {
		return fail("flatten", err)
	}

	steps, _ := r.planner.Plan(r.params, img.Dimensions())
	log := r.logger.WithFields(logrus.Fields{
		"file":  it.path,
		"copy":  it.copyIndex,
		"size":  img.Dimensions().String(),
		"steps": len(steps),
	})
	log.Debug("Applying operations")

	for _, step := range steps {
		entry.Steps = append(entry.Steps, step.String())
		if err := backend.Apply(r.backend, img, step); err != nil {
			return fail(string(step.Kind), err)
		}
	}

	if err := r.backend.ConvertRGB(img); err != nil {
		return fail("convert", err)
	}
	if err := r.backend.Flatten(img); err != nil {
		return fail("flatten", err)
	}
	dims := img.Dimensions()
	entry.Width, entry.Height = dims.Width, dims.Height

	target, err := r.resolver.Resolve(it.path, it.copyIndex, r.params.Copies)
	if err != nil {
		return fail("resolve", err)
	}

	opts := backend.SaveOptions{
		JPEGQuality:  r.params.JPEGQuality,
		WebPQuality:  r.params.WebPQuality,
		WebPLossless: r.params.WebPLossless,
	}
	for _, out := range target.Paths {
		if err := r.backend.Save(img, out.Path, out.Format, opts); err != nil {
			return fail("save "+string(out.Format), err)
		}
		entry.Outputs = append(entry.Outputs, out.Path)
	}

	log.WithField("outputs", len(entry.Outputs)).Debug("Saved copy")
	return entry, nil
}
