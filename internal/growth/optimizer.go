package growth

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/internal/storage/models"
	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

const (
	defaultStoppingThreshold = 0.05

	// Steps whose adjusted probability drops under this floor are not worth
	// executing even when every marginal gain clears the threshold.
	probabilityFloor = 0.05

	maxDefaultSteps = 5
)

// OptimizationResult describes where to stop an outreach sequence and why.
type OptimizationResult struct {
	OptimalStep              int       `json:"optimal_step"`
	Reason                   string    `json:"reason"`
	MarginalGains            []float64 `json:"marginal_gains"`
	StoppingThreshold        float64   `json:"stopping_threshold"`
	TotalExpectedProbability float64   `json:"total_expected_probability"`
	ROIScore                 float64   `json:"roi_score"`
}

// EfficiencyAnalysis reports cumulative response probability against
// cumulative effort for each step of a sequence.
type EfficiencyAnalysis struct {
	CumulativeProbabilities []float64 `json:"cumulative_probabilities"`
	CumulativeCosts         []float64 `json:"cumulative_costs"`
	EfficiencyRatios        []float64 `json:"efficiency_ratios"`
	MostEfficientStep       int       `json:"most_efficient_step"`
	MaxEfficiency           float64   `json:"max_efficiency"`
}

// SequenceOptimizer finds the marginal-gain stopping point of a sequence of
// per-step response probabilities.
type SequenceOptimizer struct {
	defaultThreshold float64
}

func NewSequenceOptimizer() *SequenceOptimizer {
	return &SequenceOptimizer{defaultThreshold: defaultStoppingThreshold}
}

// stoppingThreshold personalizes the marginal-gain cutoff: high-intent,
// engaged, or enterprise targets warrant more persistence (lower threshold).
// Clamped to [0.01, 0.15].
func (o *SequenceOptimizer) stoppingThreshold(profile models.CompanyProfile, history *models.EngagementHistory) float64 {
	threshold := o.defaultThreshold

	threshold -= 0.02 * normalizeScore(profile.IntentScore)
	threshold -= 0.015 * normalizeScore(profile.EngagementScore)

	switch profile.CompanySize {
	case "small":
		threshold += 0.01
	case "large":
		threshold -= 0.01
	case "enterprise":
		threshold -= 0.02
	}

	if history != nil {
		threshold -= 0.01 * clamp01(history.ResponseRate)
	}

	return clamp(0.01, 0.15, threshold)
}

// FindOptimalStoppingPoint determines where continuing the sequence stops
// paying for itself. Marginal gain at step i is the drop to the next step's
// probability; the last step's gain is half its own probability.
func (o *SequenceOptimizer) FindOptimalStoppingPoint(probabilities []float64, profile models.CompanyProfile, history *models.EngagementHistory) OptimizationResult {
	if len(probabilities) == 0 {
		return OptimizationResult{
			OptimalStep:       1,
			Reason:            "No probabilities provided",
			MarginalGains:     []float64{},
			StoppingThreshold: o.defaultThreshold,
		}
	}

	threshold := o.stoppingThreshold(profile.WithDefaults(), history)

	// Gains are compared unrounded; rounding happens only on output.
	gains := make([]float64, len(probabilities))
	for i := range probabilities {
		if i < len(probabilities)-1 {
			gains[i] = probabilities[i] - probabilities[i+1]
		} else {
			gains[i] = probabilities[i] * 0.5
		}
	}

	optimal := 0
	for i, gain := range gains {
		if gain < threshold {
			optimal = i + 1
			break
		}
	}
	if optimal == 0 {
		// Every gain cleared the threshold: run the full sequence, capped,
		// unless a step's probability has collapsed below the floor.
		optimal = min(len(probabilities), maxDefaultSteps)
		for i, p := range probabilities {
			if p < probabilityFloor {
				optimal = max(1, i)
				break
			}
		}
	}

	roundedGains := make([]float64, len(gains))
	for i, g := range gains {
		roundedGains[i] = round4(g)
	}

	expectedSum := 0.0
	noResponse := 1.0
	for _, p := range probabilities[:optimal] {
		expectedSum += p
		noResponse *= 1.0 - clamp01(p)
	}

	result := OptimizationResult{
		OptimalStep:              optimal,
		Reason:                   o.stoppingReason(optimal, roundedGains, threshold, expectedSum, len(probabilities)),
		MarginalGains:            roundedGains,
		StoppingThreshold:        round4(threshold),
		TotalExpectedProbability: round4(1.0 - noResponse),
		ROIScore:                 round4(expectedSum / float64(optimal)),
	}

	logger.Debug("Optimal stopping point computed",
		zap.Int("optimal_step", result.OptimalStep),
		zap.Float64("threshold", result.StoppingThreshold),
		zap.Float64("roi_score", result.ROIScore),
	)

	return result
}

func (o *SequenceOptimizer) stoppingReason(optimal int, gains []float64, threshold, expectedSum float64, totalSteps int) string {
	switch {
	case optimal == 1 && totalSteps == 1:
		return "Only one step in sequence."
	case optimal >= totalSteps:
		return fmt.Sprintf(
			"Continue through all %d steps. Marginal gains remain above threshold (%s).",
			totalSteps, formatPercent(threshold))
	case optimal == 1:
		return fmt.Sprintf(
			"Stop after first attempt. Marginal gain to step 2 (%s) is below threshold (%s).",
			formatPercent(gains[0]), formatPercent(threshold))
	default:
		return fmt.Sprintf(
			"Optimal stopping point at step %d. Marginal gain drops from %s to %s, below threshold of %s. Expected cumulative probability: %s.",
			optimal,
			formatPercent(gains[optimal-2]),
			formatPercent(gains[optimal-1]),
			formatPercent(threshold),
			formatPercent(expectedSum))
	}
}

// AnalyzeSequenceEfficiency computes cumulative probability per unit of
// cumulative cost at each step. A nil or mismatched cost slice means unit
// cost per step.
func (o *SequenceOptimizer) AnalyzeSequenceEfficiency(probabilities, stepCosts []float64) EfficiencyAnalysis {
	analysis := EfficiencyAnalysis{
		CumulativeProbabilities: make([]float64, 0, len(probabilities)),
		CumulativeCosts:         make([]float64, 0, len(probabilities)),
		EfficiencyRatios:        make([]float64, 0, len(probabilities)),
	}

	if len(stepCosts) != len(probabilities) {
		stepCosts = make([]float64, len(probabilities))
		for i := range stepCosts {
			stepCosts[i] = 1.0
		}
	}

	noResponse := 1.0
	totalCost := 0.0
	for i, p := range probabilities {
		noResponse *= 1.0 - clamp01(p)
		totalCost += stepCosts[i]

		cumProb := round4(1.0 - noResponse)
		ratio := 0.0
		if totalCost > 0 {
			ratio = round4(cumProb / totalCost)
		}

		analysis.CumulativeProbabilities = append(analysis.CumulativeProbabilities, cumProb)
		analysis.CumulativeCosts = append(analysis.CumulativeCosts, round4(totalCost))
		analysis.EfficiencyRatios = append(analysis.EfficiencyRatios, ratio)

		if ratio > analysis.MaxEfficiency {
			analysis.MaxEfficiency = ratio
			analysis.MostEfficientStep = i + 1
		}
	}

	return analysis
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
