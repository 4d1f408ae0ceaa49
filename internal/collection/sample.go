package collection

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/paveg/clump/internal/config"
	"github.com/paveg/clump/internal/errors"
	"github.com/paveg/clump/internal/record"
)

// SampleOptions controls Sample and SampleFrac.
type SampleOptions struct {
	// Replace draws with replacement, so items may repeat.
	Replace bool
	// Weights names a numeric key used as the relative draw weight.
	Weights string
	// Seed makes the draw reproducible. Zero falls back to the configured
	// seed, and to a random one when that is zero too.
	Seed uint64
}

func (o SampleOptions) rng() *rand.Rand {
	seed := o.Seed
	if seed == 0 {
		seed = config.GetGlobalConfig().SampleSeed
	}
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // sampling, not security
	}
	return rand.New(rand.NewPCG(seed, seed)) //nolint:gosec // sampling, not security
}

// Sample draws n items. Without replacement n may not exceed the length.
func (c *Collection) Sample(n int, opts SampleOptions) (*Collection, error) {
	if n < 0 {
		return nil, errors.NewArgumentError("Sample", fmt.Sprintf("n must be non-negative, got %d", n))
	}
	if !opts.Replace && n > len(c.items) {
		return nil, errors.NewArgumentError("Sample",
			fmt.Sprintf("cannot take %d items without replacement from %d", n, len(c.items)))
	}

	if n > 0 && len(c.items) == 0 {
		return nil, errors.NewArgumentError("Sample", "cannot sample from an empty collection")
	}

	weights, err := c.sampleWeights(opts.Weights)
	if err != nil {
		return nil, err
	}

	rng := opts.rng()
	picked := make([]int, 0, n)
	if opts.Replace {
		for range n {
			picked = append(picked, draw(rng, len(c.items), weights, nil))
		}
	} else {
		taken := make([]bool, len(c.items))
		for range n {
			i := draw(rng, len(c.items), weights, taken)
			taken[i] = true
			picked = append(picked, i)
		}
	}

	items := make([]any, len(picked))
	for i, idx := range picked {
		items[i] = record.CloneValue(c.items[idx])
	}
	return c.derive(items), nil
}

// SampleFrac draws round(frac*len) items.
func (c *Collection) SampleFrac(frac float64, opts SampleOptions) (*Collection, error) {
	if frac < 0 || math.IsNaN(frac) {
		return nil, errors.NewArgumentError("SampleFrac", fmt.Sprintf("frac must be non-negative, got %v", frac))
	}
	if !opts.Replace && frac > 1 {
		return nil, errors.NewArgumentError("SampleFrac",
			fmt.Sprintf("frac must be at most 1 without replacement, got %v", frac))
	}
	return c.Sample(int(math.Round(frac*float64(len(c.items)))), opts)
}

// sampleWeights returns one weight per item, or nil for uniform draws.
func (c *Collection) sampleWeights(key string) ([]float64, error) {
	if key == "" {
		return nil, nil
	}
	recs, err := c.dictOnly("Sample")
	if err != nil {
		return nil, err
	}
	weights := make([]float64, len(recs))
	for i, r := range recs {
		v, ok := r[key]
		if !ok {
			return nil, errors.NewKeyNotFoundError("Sample", key, i)
		}
		w, ok := record.ToFloat(v)
		if !ok || w < 0 || math.IsNaN(w) {
			return nil, errors.NewValueError("Sample", key, fmt.Sprintf("weight on record %d must be a non-negative number, got %v", i, v))
		}
		weights[i] = w
	}
	return weights, nil
}

// draw picks an index not yet taken, proportionally to weights when given.
// When every remaining weight is zero it falls back to a uniform draw.
func draw(rng *rand.Rand, n int, weights []float64, taken []bool) int {
	available := func(i int) bool { return taken == nil || !taken[i] }

	var total float64
	if weights != nil {
		for i, w := range weights {
			if available(i) {
				total += w
			}
		}
	}

	if total > 0 {
		target := rng.Float64() * total
		last := -1
		for i, w := range weights {
			if !available(i) || w == 0 {
				continue
			}
			last = i
			target -= w
			if target < 0 {
				return i
			}
		}
		return last
	}

	free := make([]int, 0, n)
	for i := range n {
		if available(i) {
			free = append(free, i)
		}
	}
	return free[rng.IntN(len(free))]
}
