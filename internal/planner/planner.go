// Package planner proposes crossfade windows between two analysed tracks.
//
// The planner is a pure function: it performs no I/O, holds no state and
// never fails. Missing analysis fields are substituted with defaults by the
// domain decoder before they reach Plan.
package planner

import (
	"math"

	"github.com/jaki95/dj-transition/internal/domain"
)

const (
	// BaseCrossfadeSec is the crossfade length before any harmonic bonus.
	BaseCrossfadeSec = 12.0

	// HarmonicBonusSec widens and advances the window when keys match.
	HarmonicBonusSec = 4.0

	tempoFloor = 1e-6
)

// Plan proposes a transition from source into target.
func Plan(source, target domain.TrackAnalysis) domain.TransitionPlan {
	bonus := HarmonicBonus(source.Key, target.Key)
	duration := BaseCrossfadeSec + bonus

	return domain.TransitionPlan{
		TempoRatio: TempoRatio(source.Tempo, target.Tempo),
		From: domain.Window{
			Start:    math.Max(outroStart(source)-bonus, 0),
			Duration: duration,
		},
		To: domain.Window{
			Start:    introStart(target),
			Duration: duration,
		},
		Strategy: domain.StrategySmooth,
	}
}

// TempoRatio is target/source with the source tempo floored away from zero.
// The ratio saturates at ±math.MaxFloat64.
func TempoRatio(sourceTempo, targetTempo float64) float64 {
	ratio := targetTempo / math.Max(sourceTempo, tempoFloor)
	switch {
	case math.IsInf(ratio, 1):
		return math.MaxFloat64
	case math.IsInf(ratio, -1):
		return -math.MaxFloat64
	}
	return ratio
}

// HarmonicBonus returns HarmonicBonusSec when both keys are known and equal.
func HarmonicBonus(sourceKey, targetKey int) float64 {
	if sourceKey == targetKey && sourceKey != domain.UnknownKey {
		return HarmonicBonusSec
	}
	return 0
}

// outroStart anchors the transition at the last section of the source, or
// one crossfade before the end when no section start is available.
func outroStart(source domain.TrackAnalysis) float64 {
	if start, ok := source.LastSectionStart(); ok {
		return start
	}
	return math.Max(source.DurationSec()-BaseCrossfadeSec, 0)
}

func introStart(target domain.TrackAnalysis) float64 {
	if start, ok := target.FirstSectionStart(); ok {
		return math.Max(start, 0)
	}
	return 0
}
