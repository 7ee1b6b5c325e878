package moderation

import "math"

// clamp bounds v to [lo, hi]. An inverted range returns v unchanged; config
// validation rejects such ranges at startup.
func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		return v
	}
	return math.Min(hi, math.Max(lo, v))
}

// round6 trims float noise before values are persisted or compared.
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
