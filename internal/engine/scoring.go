package engine

import "github.com/slatewise/parlayforge/internal/rules"

// smallSampleSize is the observation count below which a category's backing
// sample draws the flat penalty.
const (
	smallSampleSize    = 10
	smallSamplePenalty = -0.5
)

// Score combines the pattern score, reliability signal, and model confidence
// into one scalar under the given preset. Missing optional signals resolve
// to the preset's documented defaults; a missing reliability signal also
// draws the preset's penalty so an unknown signal never beats a known one.
func Score(c CandidatePick, patternScore float64, preset rules.WeightPreset) ScoreBreakdown {
	breakdown := ScoreBreakdown{
		Pattern: patternScore * preset.PatternWeight,
	}

	reliability := preset.DefaultReliability
	if c.HitRate != nil {
		reliability = *c.HitRate
	} else {
		breakdown.MissingPenalty = preset.MissingReliabilityPenalty
	}
	breakdown.Reliability = reliability * preset.ReliabilityWeight

	confidence := c.Confidence
	if confidence == 0 {
		confidence = preset.DefaultConfidence
	}
	breakdown.Confidence = confidence * preset.ConfidenceWeight

	if c.SampleSize != nil && *c.SampleSize < smallSampleSize {
		breakdown.SamplePenalty = smallSamplePenalty
	}

	breakdown.Total = breakdown.Pattern + breakdown.Reliability + breakdown.Confidence +
		breakdown.MissingPenalty + breakdown.SamplePenalty

	return breakdown
}
