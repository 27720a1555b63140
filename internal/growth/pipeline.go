package growth

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/internal/storage/models"
	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

// batchWorkers bounds concurrent predictions in BatchPredict.
const batchWorkers = 8

// StepPrediction is one step of a predicted growth curve. DecayAdjusted,
// ChannelEffectiveness, and Features expose the intermediate values behind
// Probability. The channel score, weight, and primary flag are only present
// for dynamically built sequences.
type StepPrediction struct {
	Step                 int       `json:"step"`
	Channel              string    `json:"channel"`
	DisplayName          string    `json:"display_name,omitempty"`
	Type                 StageType `json:"type,omitempty"`
	Probability          float64   `json:"probability"`
	BaseProbability      float64   `json:"base_probability"`
	DecayAdjusted        float64   `json:"decay_adjusted"`
	ChannelEffectiveness float64   `json:"channel_effectiveness"`
	Features             []float64 `json:"features"`
	ChannelScore         *float64  `json:"channel_score,omitempty"`
	ChannelWeight        *float64  `json:"channel_weight,omitempty"`
	IsPrimaryChannel     *bool     `json:"is_primary_channel,omitempty"`
}

// SequenceMetrics summarizes the shape of a predicted curve.
type SequenceMetrics struct {
	CumulativeProbabilities []float64 `json:"cumulative_probabilities"`
	OptimalProbability      float64   `json:"optimal_probability"`
	DiminishingReturnsRatio float64   `json:"diminishing_returns_ratio"`
	WastedEffortRatio       float64   `json:"wasted_effort_ratio"`
	EfficiencyScore         float64   `json:"efficiency_score"`
	TotalSteps              int       `json:"total_steps"`
	StepsSaved              int       `json:"steps_saved"`
}

// Prediction is the full growth-curve result for one company.
type Prediction struct {
	CompanyID                        string           `json:"company_id"`
	Steps                            []StepPrediction `json:"steps"`
	OptimalStoppingPoint             int              `json:"optimal_stopping_point"`
	StoppingReason                   string           `json:"stopping_reason"`
	ExpectedTotalResponseProbability float64          `json:"expected_total_response_probability"`
	ROIScore                         float64          `json:"roi_score"`
	MarginalGains                    []float64        `json:"marginal_gains"`
	StoppingThreshold                float64          `json:"stopping_threshold"`
	Metrics                          SequenceMetrics  `json:"metrics"`
	ModelInfo                        ModelInfo        `json:"model_info"`
	DynamicSequenceUsed              bool             `json:"dynamic_sequence_used"`
	Error                            string           `json:"error,omitempty"`
}

// Pipeline wires the prediction engines into the end-to-end growth curve
// computation. All dependencies are injected so tests can swap the model.
type Pipeline struct {
	model     *ModelManager
	channels  *ChannelPredictor
	builder   *SequenceBuilder
	engine    *ProbabilityEngine
	weighting *PriorityWeightingEngine
	optimizer *SequenceOptimizer
}

func NewPipeline(model *ModelManager) *Pipeline {
	return &Pipeline{
		model:     model,
		channels:  NewChannelPredictor(),
		builder:   NewSequenceBuilder(),
		engine:    NewProbabilityEngine(),
		weighting: NewPriorityWeightingEngine(),
		optimizer: NewSequenceOptimizer(),
	}
}

// PredictTopChannels exposes the channel ranking directly.
func (p *Pipeline) PredictTopChannels(profile models.CompanyProfile, history *models.EngagementHistory, numChannels int) []ChannelScore {
	return p.channels.PredictTopChannels(profile, history, numChannels)
}

// PredictGrowthCurve computes the per-step response probabilities, applies
// priority weighting when a dynamic sequence carries channel scores, and
// finds the optimal stopping point. It never panics up to the caller; any
// failure degrades to a single-step error result.
func (p *Pipeline) PredictGrowthCurve(profile models.CompanyProfile, history *models.EngagementHistory, sequence []SequenceStage, useDynamicChannels bool) (prediction Prediction) {
	profile = profile.WithDefaults()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Growth prediction panicked",
				zap.String("company_id", profile.ID),
				zap.Any("panic", r),
			)
			prediction = p.errorPrediction(profile.ID, fmt.Errorf("%v", r))
		}
	}()

	if sequence == nil {
		if useDynamicChannels {
			top := p.channels.PredictTopChannels(profile, history, 2)
			built, err := p.builder.BuildSequence(top)
			if err != nil {
				return p.errorPrediction(profile.ID, err)
			}
			sequence = built
		} else {
			sequence = fallbackSequence()
		}
	}

	steps, baseProbs := p.computeStepPredictions(profile, history, sequence)

	if useDynamicChannels && sequenceHasScores(sequence) {
		weighted, err := p.weighting.ApplyWeightsToSequence(baseProbs, sequence)
		if err != nil {
			return p.errorPrediction(profile.ID, err)
		}
		for i, ws := range weighted {
			steps[i].Probability = ws.AdjustedProbability
			if sequence[i].ChannelScore != nil {
				score := round4(*sequence[i].ChannelScore)
				weight := ws.ChannelWeight
				primary := sequence[i].IsPrimary
				steps[i].ChannelScore = &score
				steps[i].ChannelWeight = &weight
				steps[i].IsPrimaryChannel = &primary
			}
		}
	}

	finalProbs := make([]float64, len(steps))
	for i, s := range steps {
		finalProbs[i] = s.Probability
	}

	opt := p.optimizer.FindOptimalStoppingPoint(finalProbs, profile, history)

	return Prediction{
		CompanyID:                        profile.ID,
		Steps:                            steps,
		OptimalStoppingPoint:             opt.OptimalStep,
		StoppingReason:                   opt.Reason,
		ExpectedTotalResponseProbability: opt.TotalExpectedProbability,
		ROIScore:                         opt.ROIScore,
		MarginalGains:                    opt.MarginalGains,
		StoppingThreshold:                opt.StoppingThreshold,
		Metrics:                          p.computeMetrics(finalProbs, opt.OptimalStep),
		ModelInfo:                        p.model.Info(),
		DynamicSequenceUsed:              useDynamicChannels && sequence != nil,
	}
}

// BatchPredict runs growth curves for many companies with bounded
// parallelism, preserving input order. Histories are not consulted in batch
// mode.
func (p *Pipeline) BatchPredict(ctx context.Context, profiles []models.CompanyProfile) []Prediction {
	predictions := make([]Prediction, len(profiles))

	var wg sync.WaitGroup
	sem := make(chan struct{}, batchWorkers)

	for i, profile := range profiles {
		if profile.ID == "" {
			profile.ID = "unknown"
		}

		select {
		case <-ctx.Done():
			predictions[i] = p.errorPrediction(profile.ID, ctx.Err())
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, profile models.CompanyProfile) {
			defer wg.Done()
			defer func() { <-sem }()
			predictions[i] = p.PredictGrowthCurve(profile, nil, nil, true)
		}(i, profile)
	}

	wg.Wait()
	return predictions
}

// computeStepPredictions runs the model and decay for each stage. It returns
// the decayed predictions alongside the pre-decay base probabilities, which
// priority weighting operates on.
func (p *Pipeline) computeStepPredictions(profile models.CompanyProfile, history *models.EngagementHistory, sequence []SequenceStage) ([]StepPrediction, []float64) {
	steps := make([]StepPrediction, 0, len(sequence))
	baseProbs := make([]float64, 0, len(sequence))

	for i, stage := range sequence {
		stepNumber := i + 1
		channel := stage.Channel
		if channel == "" {
			channel = "email"
		}

		features := p.engine.ComputeStepFeatures(profile, stepNumber, channel, history)
		base := p.model.PredictResponseProbability(features)

		decayed := p.engine.ApplyDecayModel(base, stepNumber, profile, history)
		effectiveness := p.engine.ComputeChannelEffectiveness(channel, profile)

		steps = append(steps, StepPrediction{
			Step:                 stepNumber,
			Channel:              channel,
			DisplayName:          stage.DisplayName,
			Type:                 stage.Type,
			Probability:          round4(clamp01(decayed * effectiveness)),
			BaseProbability:      round4(base),
			DecayAdjusted:        round4(decayed),
			ChannelEffectiveness: round4(effectiveness),
			Features:             features,
		})
		baseProbs = append(baseProbs, base)
	}

	return steps, baseProbs
}

func (p *Pipeline) computeMetrics(probabilities []float64, optimalStep int) SequenceMetrics {
	metrics := SequenceMetrics{
		CumulativeProbabilities: p.weighting.CumulativeProbability(probabilities),
		TotalSteps:              len(probabilities),
		StepsSaved:              max(0, len(probabilities)-optimalStep),
	}

	if len(metrics.CumulativeProbabilities) >= optimalStep && optimalStep > 0 {
		metrics.OptimalProbability = metrics.CumulativeProbabilities[optimalStep-1]
	}

	metrics.DiminishingReturnsRatio = 1.0
	if len(probabilities) >= 2 {
		if first := probabilities[0]; first > 0 {
			metrics.DiminishingReturnsRatio = round4(probabilities[len(probabilities)-1] / first)
		} else {
			metrics.DiminishingReturnsRatio = 0
		}
	}

	if optimalStep < len(probabilities) {
		pre, post := 0.0, 0.0
		for i, prob := range probabilities {
			if i < optimalStep {
				pre += prob
			} else {
				post += prob
			}
		}
		if pre > 0 {
			metrics.WastedEffortRatio = round4(post / pre)
		}
	}

	if optimalStep > 0 {
		metrics.EfficiencyScore = round4(metrics.OptimalProbability / float64(optimalStep))
	}

	return metrics
}

func (p *Pipeline) errorPrediction(companyID string, err error) Prediction {
	return Prediction{
		CompanyID:            companyID,
		Steps:                []StepPrediction{},
		OptimalStoppingPoint: 1,
		StoppingReason:       fmt.Sprintf("Error: %v", err),
		MarginalGains:        []float64{},
		StoppingThreshold:    defaultStoppingThreshold,
		ModelInfo:            p.model.Info(),
		Error:                err.Error(),
	}
}

func sequenceHasScores(sequence []SequenceStage) bool {
	for _, stage := range sequence {
		if stage.ChannelScore != nil {
			return true
		}
	}
	return false
}

// fallbackSequence is the static plan used when no sequence is supplied and
// dynamic channel selection is disabled.
func fallbackSequence() []SequenceStage {
	return []SequenceStage{
		{Step: 1, Channel: "LinkedIn", Type: StageInitial, DisplayName: "LinkedIn Initial", IsPrimary: true},
		{Step: 2, Channel: "LinkedIn", Type: StageFollowup, DisplayName: "LinkedIn Follow-up", IsPrimary: true},
		{Step: 3, Channel: "Email", Type: StageInitial, DisplayName: "Email Initial", IsPrimary: false},
		{Step: 4, Channel: "Email", Type: StageFollowup, DisplayName: "Email Follow-up", IsPrimary: false},
	}
}
