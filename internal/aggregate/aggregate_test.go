package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"mean", Mean, false},
		{"", Mean, false},
		{" MEAN ", Mean, false},
		{"p5", Mode{Percentile: 5}, false},
		{"p12.5", Mode{Percentile: 12.5}, false},
		{"p100", Mode{Percentile: 100}, false},
		{"p0", Mode{}, true},
		{"p101", Mode{}, true},
		{"pabc", Mode{}, true},
		{"median", Mode{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "mean", Mean.String())
	assert.Equal(t, "p5", Mode{Percentile: 5}.String())
	assert.Equal(t, "p12.5", Mode{Percentile: 12.5}.String())
}

func TestPoolMean(t *testing.T) {
	assert.Equal(t, 0.0, Pool(nil, Mean))
	assert.InDelta(t, 30.0, Pool([]float64{20, 30, 40}, Mean), 1e-12)
}

func TestPoolInfinity(t *testing.T) {
	inf := math.Inf(1)
	assert.True(t, math.IsInf(Pool([]float64{inf, inf, inf}, Mean), 1))
	assert.True(t, math.IsInf(Pool([]float64{35, inf}, Mean), 1))
}

func TestPoolPercentile(t *testing.T) {
	values := []float64{50, 10, 40, 20, 30}

	assert.Equal(t, 10.0, Pool(values, Mode{Percentile: 5}))
	assert.Equal(t, 30.0, Pool(values, Mode{Percentile: 50}))
	assert.Equal(t, 50.0, Pool(values, Mode{Percentile: 100}))
	assert.Equal(t, []float64{50, 10, 40, 20, 30}, values, "input must not be reordered")
}

func TestSummarize(t *testing.T) {
	inf := math.Inf(1)
	s := Summarize([]float64{30, inf, 40, inf})

	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 2, s.Infinite)
	assert.Equal(t, 30.0, s.FiniteMin)
	assert.Equal(t, 40.0, s.FiniteMax)
	assert.Greater(t, s.StdDev, 0.0)

	empty := Summarize([]float64{inf})
	assert.Equal(t, 1, empty.Infinite)
	assert.Equal(t, 0.0, empty.FiniteMin)
	assert.Equal(t, 0.0, empty.StdDev)
}
