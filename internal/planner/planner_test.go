package planner

import (
	"encoding/json"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/dj-transition/internal/domain"
)

func analysis(tempo float64, key int, durationMs float64, starts ...float64) domain.TrackAnalysis {
	a := domain.TrackAnalysis{
		Tempo:      tempo,
		Key:        key,
		DurationMs: durationMs,
		Sections:   []domain.Section{},
	}
	for _, s := range starts {
		start := s
		a.Sections = append(a.Sections, domain.Section{Start: &start})
	}
	return a
}

func TestPlanMatchingKeys(t *testing.T) {
	plan := Plan(analysis(120, 5, 0), analysis(128, 5, 0))

	assert.InDelta(t, 1.0667, plan.TempoRatio, 1e-4)
	assert.Equal(t, 16.0, plan.From.Duration)
	assert.Equal(t, 16.0, plan.To.Duration)
	assert.Equal(t, 0.0, plan.From.Start)
	assert.Equal(t, 0.0, plan.To.Start)
	assert.Equal(t, domain.StrategySmooth, plan.Strategy)
}

func TestTempoRatio(t *testing.T) {
	tests := []struct {
		name     string
		from, to float64
		expected float64
	}{
		{name: "faster target", from: 120, to: 130, expected: 130.0 / 120.0},
		{name: "slower target", from: 174, to: 87, expected: 0.5},
		{name: "zero source tempo", from: 0, to: 120, expected: 120 / 1e-6},
		{name: "negative source tempo", from: -10, to: 120, expected: 120 / 1e-6},
		{name: "huge target tempo", from: 0, to: 1e308, expected: math.MaxFloat64},
		{name: "huge negative target tempo", from: 0, to: -1e308, expected: -math.MaxFloat64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratio := TempoRatio(tt.from, tt.to)
			assert.False(t, math.IsInf(ratio, 0))
			assert.False(t, math.IsNaN(ratio))
			assert.InDelta(t, tt.expected, ratio, 1e-9*math.Abs(tt.expected))
		})
	}
}

func TestHarmonicBonus(t *testing.T) {
	assert.Equal(t, 4.0, HarmonicBonus(5, 5))
	assert.Equal(t, 0.0, HarmonicBonus(5, 6))
	assert.Equal(t, 0.0, HarmonicBonus(-1, -1), "unknown keys never match")
	assert.Equal(t, 4.0, HarmonicBonus(0, 0))
}

func TestPlanWindowDurations(t *testing.T) {
	for _, keys := range [][2]int{{1, 1}, {1, 2}, {-1, -1}, {-1, 3}} {
		plan := Plan(analysis(120, keys[0], 0), analysis(120, keys[1], 0))
		bonus := HarmonicBonus(keys[0], keys[1])

		assert.Equal(t, BaseCrossfadeSec+bonus, plan.From.Duration)
		assert.Equal(t, plan.From.Duration, plan.To.Duration)
		assert.GreaterOrEqual(t, plan.From.Duration, BaseCrossfadeSec)
	}
}

func TestPlanOutroFallsBackToDuration(t *testing.T) {
	// 200s track without sections: outro anchored at 188s
	plan := Plan(analysis(120, 2, 200000), analysis(120, 3, 0))
	assert.Equal(t, 188.0, plan.From.Start)

	// Matching keys move the start back by the bonus
	plan = Plan(analysis(120, 2, 200000), analysis(120, 2, 0))
	assert.Equal(t, 184.0, plan.From.Start)

	// Short track clamps at zero
	plan = Plan(analysis(120, 2, 5000), analysis(120, 2, 0))
	assert.Equal(t, 0.0, plan.From.Start)
}

func TestPlanUsesSections(t *testing.T) {
	source := analysis(126, 9, 300000, 0, 32.5, 250)
	target := analysis(128, 9, 280000, 8.5, 40)

	plan := Plan(source, target)

	assert.Equal(t, 246.0, plan.From.Start)
	assert.Equal(t, 8.5, plan.To.Start)
}

func TestPlanMalformedSectionsFallBack(t *testing.T) {
	var source, target domain.TrackAnalysis
	require.NoError(t, json.Unmarshal([]byte(`{"tempo": 120, "duration_ms": 100000, "sections": [{"start": 30}, {"label": "outro"}]}`), &source))
	require.NoError(t, json.Unmarshal([]byte(`{"tempo": 120, "sections": [{"start": "soon"}]}`), &target))

	plan := Plan(source, target)

	assert.Equal(t, 88.0, plan.From.Start)
	assert.Equal(t, 0.0, plan.To.Start)
}

func TestPlanDefaults(t *testing.T) {
	plan := Plan(domain.DefaultTrackAnalysis(), domain.DefaultTrackAnalysis())

	assert.Equal(t, 1.0, plan.TempoRatio)
	assert.Equal(t, domain.Window{Start: 0, Duration: 12}, plan.From)
	assert.Equal(t, domain.Window{Start: 0, Duration: 12}, plan.To)
}

func TestPlanStartsNeverNegative(t *testing.T) {
	source := analysis(120, 4, 0, -30)
	target := analysis(120, 4, 0, -5)

	plan := Plan(source, target)

	assert.GreaterOrEqual(t, plan.From.Start, 0.0)
	assert.GreaterOrEqual(t, plan.To.Start, 0.0)
}

func TestPlanConcurrentCalls(t *testing.T) {
	source := analysis(122, 3, 240000, 0, 200)
	target := analysis(124, 3, 240000, 4)
	expected := Plan(source, target)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, expected, Plan(source, target))
		}()
	}
	wg.Wait()
}
