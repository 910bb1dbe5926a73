package cutout

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

func TestSampleStaysInBounds(t *testing.T) {
	params := rand.New(rand.NewPCG(1, 2))
	s := NewSeeded(42)

	for i := 0; i < 1000; i++ {
		d := types.Dimensions{Width: 1 + params.IntN(2000), Height: 1 + params.IntN(2000)}
		pct := params.Float64() * 100

		r := s.Sample(d, pct)

		require.GreaterOrEqual(t, r.X, 0, "trial %d", i)
		require.GreaterOrEqual(t, r.Y, 0, "trial %d", i)
		require.LessOrEqual(t, r.X+r.Width, d.Width, "trial %d: %+v in %s", i, r, d)
		require.LessOrEqual(t, r.Y+r.Height, d.Height, "trial %d: %+v in %s", i, r, d)
		require.LessOrEqual(t, float64(r.Width), float64(d.Width)*pct/100+0.5)
		require.LessOrEqual(t, float64(r.Height), float64(d.Height)*pct/100+0.5)
	}
}

func TestSampleDeterministic(t *testing.T) {
	d := types.Dimensions{Width: 640, Height: 480}

	a := NewSeeded(7)
	b := NewSeeded(7)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Sample(d, 25), b.Sample(d, 25))
	}
}

func TestSampleFullSize(t *testing.T) {
	// a 1x1 drawable at 100% can only produce a 0 or 1 pixel cut at the origin
	s := NewSeeded(3)
	for i := 0; i < 100; i++ {
		r := s.Sample(types.Dimensions{Width: 1, Height: 1}, 100)
		assert.Zero(t, r.X)
		assert.Zero(t, r.Y)
		assert.True(t, r.Within(types.Dimensions{Width: 1, Height: 1}))
	}
}

func TestSampleDisabled(t *testing.T) {
	s := NewSeeded(3)
	assert.Equal(t, types.Rectangle{}, s.Sample(types.Dimensions{Width: 10, Height: 10}, 0))
	assert.Equal(t, types.Rectangle{}, s.Sample(types.Dimensions{}, 50))
}

// maxSource always returns the largest value, pinning every draw to its upper bound.
type maxSource struct{}

func (maxSource) Uint64() uint64 { return ^uint64(0) }

func TestSampleReachesLimit(t *testing.T) {
	s := New(rand.New(maxSource{}))
	d := types.Dimensions{Width: 100, Height: 80}

	r := s.Sample(d, 50)

	assert.Equal(t, 50, r.Width)
	assert.Equal(t, 40, r.Height)
	assert.True(t, r.Within(d))
}

func TestSampleZeroSource(t *testing.T) {
	s := New(rand.New(rand.NewPCG(0, 0)))
	for i := 0; i < 100; i++ {
		r := s.Sample(types.Dimensions{Width: 10, Height: 10}, 30)
		assert.LessOrEqual(t, r.Width, 3)
		assert.LessOrEqual(t, r.Height, 3)
	}
}

func TestUniform(t *testing.T) {
	s := NewSeeded(11)
	for i := 0; i < 500; i++ {
		v := s.Uniform(-15, 15)
		require.GreaterOrEqual(t, v, -15.0)
		require.LessOrEqual(t, v, 15.0)
	}
	assert.Equal(t, 100.0, s.Uniform(100, 100))
	assert.Equal(t, 110.0, New(rand.New(maxSource{})).Uniform(100, 110))
}

func TestChance(t *testing.T) {
	s := NewSeeded(5)
	hits := 0
	for i := 0; i < 1000; i++ {
		if s.Chance(0.5) {
			hits++
		}
	}
	assert.InDelta(t, 500, hits, 100)
	assert.False(t, s.Chance(0))
	assert.True(t, s.Chance(1))
}
