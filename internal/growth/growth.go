// Package growth implements the outreach prediction core: channel scoring,
// per-step response probability modeling, priority weighting, and the
// optimal-stopping rule. Every exported operation is a deterministic function
// of its inputs.
package growth

import (
	"math"
	"strings"
)

func clamp(min, max, v float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(0.0, 1.0, v)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// normalizeChannel lower-cases a channel name and replaces spaces with
// underscores, matching the key format of the encoding tables.
func normalizeChannel(channel string) string {
	return strings.ReplaceAll(strings.ToLower(channel), " ", "_")
}
