package growth

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

const (
	defaultFollowupDecay = 0.7

	// Channel weights span [0.3, 1.2] across the score range [0, 1].
	minChannelWeight = 0.3
	maxChannelWeight = 1.2
)

// ErrInvalidDecay is the contract violation raised when a follow-up decay
// outside (0, 1] is configured.
var ErrInvalidDecay = errors.New("followup decay must be in (0, 1]")

// ErrLengthMismatch is the contract violation raised when base probabilities
// and sequence stages disagree in count.
var ErrLengthMismatch = errors.New("probabilities and sequence must have the same length")

// PriorityWeightingEngine scales step probabilities by how well-ranked each
// stage's channel is, with an extra penalty on follow-up stages.
type PriorityWeightingEngine struct {
	followupDecay float64
}

func NewPriorityWeightingEngine() *PriorityWeightingEngine {
	return &PriorityWeightingEngine{followupDecay: defaultFollowupDecay}
}

// SetFollowupDecay replaces the follow-up penalty. Values outside (0, 1]
// are rejected and the current value is kept.
func (e *PriorityWeightingEngine) SetFollowupDecay(decay float64) error {
	if decay <= 0 || decay > 1 {
		return fmt.Errorf("%w, got: %v", ErrInvalidDecay, decay)
	}
	e.followupDecay = decay
	return nil
}

// ChannelWeight maps a channel score in [0, 1] linearly onto
// [minChannelWeight, maxChannelWeight].
func (e *PriorityWeightingEngine) ChannelWeight(channelScore float64) float64 {
	return minChannelWeight + channelScore*(maxChannelWeight-minChannelWeight)
}

// ApplyChannelPriorityWeight adjusts a base probability by the channel's
// weight, applying the follow-up decay for non-initial stages. Out-of-range
// inputs are clamped with a warning rather than rejected.
func (e *PriorityWeightingEngine) ApplyChannelPriorityWeight(baseProbability, channelScore float64, stageType StageType) float64 {
	if baseProbability < 0 || baseProbability > 1 {
		logger.Warn("Base probability out of range, clamping",
			zap.Float64("base_probability", baseProbability),
		)
		baseProbability = clamp01(baseProbability)
	}
	if channelScore < 0 || channelScore > 1 {
		logger.Warn("Channel score out of range, clamping",
			zap.Float64("channel_score", channelScore),
		)
		channelScore = clamp01(channelScore)
	}

	weighted := baseProbability * e.ChannelWeight(channelScore)
	if stageType == StageFollowup {
		weighted *= e.followupDecay
	}

	return clamp01(weighted)
}

// WeightedStage is a sequence stage annotated with the weighting inputs and
// the priority-adjusted probability.
type WeightedStage struct {
	SequenceStage
	BaseProbability     float64 `json:"base_probability"`
	ChannelWeight       float64 `json:"channel_weight"`
	FollowupDecay       float64 `json:"followup_decay"`
	AdjustedProbability float64 `json:"priority_adjusted_probability"`
}

// ApplyWeightsToSequence weights every stage of a sequence against its base
// probability. Stages without a channel score weight at a neutral 0.5, and
// FollowupDecay reports the decay actually applied (1.0 for initial stages).
func (e *PriorityWeightingEngine) ApplyWeightsToSequence(baseProbabilities []float64, sequence []SequenceStage) ([]WeightedStage, error) {
	if len(baseProbabilities) != len(sequence) {
		return nil, fmt.Errorf("%w: %d probabilities, %d stages",
			ErrLengthMismatch, len(baseProbabilities), len(sequence))
	}

	weighted := make([]WeightedStage, 0, len(sequence))
	for i, stage := range sequence {
		base := baseProbabilities[i]

		score := 0.5
		if stage.ChannelScore != nil {
			score = clamp01(*stage.ChannelScore)
		}

		decayApplied := 1.0
		if stage.Type == StageFollowup {
			decayApplied = e.followupDecay
		}

		weighted = append(weighted, WeightedStage{
			SequenceStage:       stage,
			BaseProbability:     round4(base),
			ChannelWeight:       round4(e.ChannelWeight(score)),
			FollowupDecay:       decayApplied,
			AdjustedProbability: round4(e.ApplyChannelPriorityWeight(base, score, stage.Type)),
		})
	}

	return weighted, nil
}

// CumulativeProbability returns, per step, the probability of at least one
// response by that step: 1 - prod(1 - p_i).
func (e *PriorityWeightingEngine) CumulativeProbability(probabilities []float64) []float64 {
	cumulative := make([]float64, 0, len(probabilities))
	noResponse := 1.0
	for _, p := range probabilities {
		noResponse *= 1.0 - clamp01(p)
		cumulative = append(cumulative, round4(1.0-noResponse))
	}
	return cumulative
}

// MarginalGains returns the per-step lift of the cumulative curve.
func (e *PriorityWeightingEngine) MarginalGains(cumulative []float64) []float64 {
	gains := make([]float64, 0, len(cumulative))
	for i, c := range cumulative {
		if i == 0 {
			gains = append(gains, round4(c))
			continue
		}
		gains = append(gains, round4(c-cumulative[i-1]))
	}
	return gains
}
