package analytics

import "math"

// DefaultSplitDistance is one kilometer in meters.
const DefaultSplitDistance = 1000.0

// Split is a derived sub-segment of an activity with uniform-pace timing.
type Split struct {
	Index        int     `json:"index"`
	Distance     float64 `json:"distance"`
	TimeSeconds  float64 `json:"time_seconds"`
	PaceMinPerKm float64 `json:"pace_min_per_km"`
}

// ComputeSplits derives per-split-distance timings from aggregate distance
// (meters) and moving time (seconds), assuming uniform pace across the whole
// activity. This is an approximation: it does not consult time/distance
// streams, so every full split carries the same time and pace. A trailing
// partial split covers any distance remainder.
//
// Zero distance or time yields no splits. splitDistance <= 0 falls back to
// DefaultSplitDistance.
func ComputeSplits(distance float64, movingTime int, splitDistance float64) []Split {
	if distance <= 0 || movingTime <= 0 {
		return nil
	}
	if splitDistance <= 0 {
		splitDistance = DefaultSplitDistance
	}

	fullSplits := int(distance / splitDistance)
	remainder := math.Mod(distance, splitDistance)
	timePerMeter := float64(movingTime) / distance

	splits := make([]Split, 0, fullSplits+1)
	for i := 0; i < fullSplits; i++ {
		t := timePerMeter * splitDistance
		splits = append(splits, Split{
			Index:        i + 1,
			Distance:     splitDistance,
			TimeSeconds:  round2(t),
			PaceMinPerKm: round2((t / 60.0) / (splitDistance / 1000.0)),
		})
	}

	if remainder > 0 {
		t := timePerMeter * remainder
		splits = append(splits, Split{
			Index:        fullSplits + 1,
			Distance:     round2(remainder),
			TimeSeconds:  round2(t),
			PaceMinPerKm: round2((t / 60.0) / (remainder / 1000.0)),
		})
	}

	return splits
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
