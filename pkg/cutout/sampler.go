// Package cutout draws the random values of a run: the occlusion rectangles of the cutout
// augmentation and the transform parameters of generated dataset versions.
package cutout

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

// Sampler produces random rectangles inside a drawable. It is safe for concurrent use.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New wraps an explicit random source
func New(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// NewSeeded returns a deterministic sampler. A zero seed picks one from the clock.
func NewSeeded(seed int64) *Sampler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := uint64(seed)
	return New(rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15)))
}

// Sample returns one rectangle. Width and height fractions are drawn independently from
// [0, maxPercent/100]; the origin is uniform over every position that keeps the rectangle
// inside drawable, so a full-width cut always starts at x=0.
func (s *Sampler) Sample(drawable types.Dimensions, maxPercent float64) types.Rectangle {
	if drawable.Width <= 0 || drawable.Height <= 0 || maxPercent <= 0 {
		return types.Rectangle{}
	}
	limit := math.Min(maxPercent, 100) / 100

	s.mu.Lock()
	defer s.mu.Unlock()

	cutW := extent(drawable.Width, s.unitClosed()*limit)
	cutH := extent(drawable.Height, s.unitClosed()*limit)

	return types.Rectangle{
		X:      s.rng.IntN(drawable.Width - cutW + 1),
		Y:      s.rng.IntN(drawable.Height - cutH + 1),
		Width:  cutW,
		Height: cutH,
	}
}

// Uniform returns a value drawn from [lo, hi]
func (s *Sampler) Uniform(lo, hi float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + (hi-lo)*s.unitClosed()
}

// Chance reports true with probability p
func (s *Sampler) Chance(p float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < p
}

// unitClosed draws from [0, 1] with both ends reachable. Callers hold mu.
func (s *Sampler) unitClosed() float64 {
	return float64(s.rng.Uint64N(1<<53+1)) / (1 << 53)
}

func extent(size int, fraction float64) int {
	n := int(math.Round(float64(size) * fraction))
	if n > size {
		return size
	}
	return n
}
