package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func TestSample(t *testing.T) {
	tests := []struct {
		name       string
		values     []float64
		wantMean   float64
		wantStdDev float64
		wantCount  int
	}{
		{
			name:      "empty",
			values:    nil,
			wantMean:  0,
			wantCount: 0,
		},
		{
			name:      "single value has zero std dev",
			values:    []float64{42},
			wantMean:  42,
			wantCount: 1,
		},
		{
			name:       "known sample",
			values:     []float64{2, 4, 4, 4, 5, 5, 7, 9},
			wantMean:   5,
			wantStdDev: math.Sqrt(32.0 / 7.0),
			wantCount:  8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sample(tt.values)
			assert.InDelta(t, tt.wantMean, got.Mean, tolerance)
			assert.InDelta(t, tt.wantStdDev, got.StdDev, tolerance)
			assert.Equal(t, tt.wantCount, got.Count)
		})
	}
}

func TestPopulationStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	// classic example: population std dev is exactly 2
	assert.InDelta(t, 2.0, PopulationStdDev(values, 5), tolerance)
	assert.Zero(t, PopulationStdDev(nil, 0))
}

func TestCombinePooledScenario(t *testing.T) {
	// two trial sets: (mean=100, std=10, n=50) and (mean=120, std=15, n=50)
	a := Distribution{Mean: 100, StdDev: 10, Count: 50}
	b := Distribution{Mean: 120, StdDev: 15, Count: 50}

	got, err := Combine([]Distribution{a, b})
	require.NoError(t, err)

	assert.InDelta(t, 110, got.Mean, tolerance)
	assert.Equal(t, 100, got.Count)

	// pooled variance carries both within-set and between-set dispersion:
	// E[x^2] - mean^2 = (50*(100+10000) + 50*(225+14400))/100 - 110^2 = 262.5
	assert.InDelta(t, math.Sqrt(262.5), got.StdDev, tolerance)
}

func TestCombineAssociativeCommutative(t *testing.T) {
	a := Distribution{Mean: 100, StdDev: 10, Count: 50}
	b := Distribution{Mean: 120, StdDev: 15, Count: 30}
	c := Distribution{Mean: 90, StdDev: 5, Count: 70}

	abc, err := Combine([]Distribution{a, b, c})
	require.NoError(t, err)

	// commutative: any permutation pools to the same result
	cba, err := Combine([]Distribution{c, b, a})
	require.NoError(t, err)
	assert.InDelta(t, abc.Mean, cba.Mean, tolerance)
	assert.InDelta(t, abc.StdDev, cba.StdDev, tolerance)
	assert.Equal(t, abc.Count, cba.Count)

	// associative: combine(combine(a,b), c) == combine(a,b,c)
	ab, err := Combine([]Distribution{a, b})
	require.NoError(t, err)
	nested, err := Combine([]Distribution{ab, c})
	require.NoError(t, err)
	assert.InDelta(t, abc.Mean, nested.Mean, tolerance)
	assert.InDelta(t, abc.StdDev, nested.StdDev, tolerance)
	assert.Equal(t, abc.Count, nested.Count)
}

func TestCombineSkipsEmptyAndErrorsOnNothing(t *testing.T) {
	a := Distribution{Mean: 100, StdDev: 10, Count: 50}

	got, err := Combine([]Distribution{a, {Count: 0}})
	require.NoError(t, err)
	assert.InDelta(t, 100, got.Mean, tolerance)
	assert.Equal(t, 50, got.Count)

	_, err = Combine(nil)
	assert.Error(t, err)
}

func TestCombineMatchesSampleOfConcatenation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	groupA := make([]float64, 40)
	groupB := make([]float64, 60)

	for i := range groupA {
		groupA[i] = 100 + rng.NormFloat64()*10
	}

	for i := range groupB {
		groupB[i] = 120 + rng.NormFloat64()*15
	}

	combined, err := Combine([]Distribution{Sample(groupA), Sample(groupB)})
	require.NoError(t, err)

	all := append(append([]float64{}, groupA...), groupB...)
	direct := Sample(all)

	assert.InDelta(t, direct.Mean, combined.Mean, 1e-9)
	// pooling uses sample std devs inside an E[x^2] identity, so the pooled
	// spread differs from the exact concatenated sample std dev by O(1/n)
	assert.InDelta(t, direct.StdDev, combined.StdDev, direct.StdDev*0.02)
}
