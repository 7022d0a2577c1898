// Package frecency scores noted paths by blending how often and how
// recently they were noted.
package frecency

import "math"

// SecondsPerHour converts Unix second deltas to the hour scale the scorer uses.
const SecondsPerHour = 3600.0

// Score returns the frecency of a record relative to the corpus it was read
// from. maxCount and oldestAgeHours describe the whole corpus; bias is the
// weight in [0,1] given to recency over frequency.
//
// A record as old as the oldest record in the corpus has zero recency, so in a
// single-record corpus the score is driven by frequency alone.
func Score(count int64, ageHours float64, maxCount int64, oldestAgeHours float64, bias float64) float64 {
	freq := 0.0
	if maxCount > 0 {
		freq = float64(count) / float64(maxCount)
	}

	recency := 0.0
	if ageHours < oldestAgeHours {
		recency = 1 - ageHours/oldestAgeHours
	}

	return math.FMA(1-bias, freq, bias*recency)
}

// AgeHours returns the fractional number of hours between ts and now, both
// in Unix seconds.
func AgeHours(now, ts int64) float64 {
	return float64(now-ts) / SecondsPerHour
}
