package rank

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentileFromTxCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		count    int
		expected int
	}{
		{count: -3, expected: 10},
		{count: 0, expected: 10},
		{count: 1, expected: 20},
		{count: 9, expected: 20},
		{count: 10, expected: 30},
		{count: 20, expected: 45},
		{count: 50, expected: 60},
		{count: 99, expected: 60},
		{count: 100, expected: 70},
		{count: 250, expected: 80},
		{count: 500, expected: 90},
		{count: 1000, expected: 95},
		{count: 1999, expected: 95},
		{count: 2000, expected: 99},
		{count: 50000, expected: 99},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, PercentileFromTxCount(tc.count), "count %d", tc.count)
	}
}

func TestPercentileFromScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score    int
		expected int
	}{
		{score: 0, expected: 10},
		{score: 9, expected: 10},
		{score: 10, expected: 20},
		{score: 45, expected: 60},
		{score: 90, expected: 99},
		{score: 100, expected: 99},
		{score: 450, expected: 60},
		{score: 1000, expected: 99},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, PercentileFromScore(tc.score), "score %d", tc.score)
	}
}

func TestTier(t *testing.T) {
	assert.Equal(t, "Top 1%", Tier(99))
	assert.Equal(t, "Top 5%", Tier(95))
	assert.Equal(t, "Top 25%", Tier(80))
	assert.Equal(t, "Rising", Tier(10))
}

type fakeLookup struct {
	percentile int
	ok         bool
	err        error
	years      *[]int
}

func (f fakeLookup) PercentileForTxCount(_ context.Context, year, _ int) (int, bool, error) {
	if f.years != nil {
		*f.years = append(*f.years, year)
	}
	return f.percentile, f.ok, f.err
}

func TestEstimatorFromTxCount(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		lookup   Lookup
		expected int
	}{
		{name: "no lookup", lookup: nil, expected: 70},
		{name: "override used verbatim", lookup: fakeLookup{percentile: 42, ok: true}, expected: 42},
		{name: "lookup has no answer", lookup: fakeLookup{ok: false}, expected: 70},
		{name: "lookup error", lookup: fakeLookup{err: errors.New("boom")}, expected: 70},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NewEstimator(tc.lookup).FromTxCount(ctx, 2025, 150))
		})
	}

	var nilEstimator *Estimator
	assert.Equal(t, 99, nilEstimator.FromTxCount(ctx, 2025, 2000))
}

func TestEstimatorPassesYear(t *testing.T) {
	var years []int
	e := NewEstimator(fakeLookup{percentile: 50, ok: true, years: &years})

	assert.Equal(t, 50, e.FromTxCount(context.Background(), 2023, 10))
	assert.Equal(t, 50, e.FromTxCount(context.Background(), 2025, 10))
	assert.Equal(t, []int{2023, 2025}, years)
}
