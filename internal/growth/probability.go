package growth

import (
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/internal/storage/models"
	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

// defaultResponseRate is the assumed response rate when no history exists.
const defaultResponseRate = 0.25

// minStepProbability floors the decayed probability (fatigue floor).
const minStepProbability = 0.01

// ProbabilityEngine derives feature vectors and applies the decay model.
type ProbabilityEngine struct {
	channelEncoding map[string]float64
}

func NewProbabilityEngine() *ProbabilityEngine {
	return &ProbabilityEngine{
		channelEncoding: map[string]float64{
			"linkedin":          0.8,
			"linkedin_followup": 0.6,
			"email":             0.7,
			"email_followup":    0.5,
			"phone":             0.9,
			"whatsapp":          0.75,
		},
	}
}

// ComputeStepFeatures builds the fixed-order 8-slot feature vector:
// [intent, signal, engagement, channel encoding, 1/step, time decay,
// historical response rate, sequence position].
func (e *ProbabilityEngine) ComputeStepFeatures(profile models.CompanyProfile, stepNumber int, channel string, history *models.EngagementHistory) []float64 {
	profile = profile.WithDefaults()

	channelType, ok := e.channelEncoding[normalizeChannel(channel)]
	if !ok {
		channelType = 0.5
	}

	lastContact := ""
	if history != nil {
		lastContact = history.LastContactTime
	}

	maxSteps := profile.MaxOutreachSteps
	sequencePosition := 1.0 - float64(stepNumber-1)/float64(maxSteps)

	return []float64{
		normalizeScore(profile.IntentScore),
		normalizeScore(profile.SignalStrength),
		normalizeScore(profile.EngagementScore),
		channelType,
		1.0 / float64(stepNumber),
		e.timeDecay(lastContact),
		historicalResponseRate(history),
		sequencePosition,
	}
}

// ApplyDecayModel adjusts a base probability for contact fatigue:
// adjusted = base * exp(-decayFactor * (step-1)), floored at 0.01. Step 1 is
// never decayed.
func (e *ProbabilityEngine) ApplyDecayModel(baseProbability float64, stepNumber int, profile models.CompanyProfile, history *models.EngagementHistory) float64 {
	decayFactor := e.decayFactor(profile, history)
	adjusted := baseProbability * math.Exp(-decayFactor*float64(stepNumber-1))
	return math.Max(adjusted, minStepProbability)
}

// decayFactor is higher for disengaged companies (faster probability drop)
// and lower for engaged ones. Clamped to [0.05, 0.8].
func (e *ProbabilityEngine) decayFactor(profile models.CompanyProfile, history *models.EngagementHistory) float64 {
	baseDecay := 0.3

	engagement := normalizeScore(profile.EngagementScore)
	intent := normalizeScore(profile.IntentScore)

	responseAdjustment := 0.0
	if history != nil {
		responseAdjustment = -0.15 * history.ResponseRate
	}

	factor := baseDecay - 0.2*engagement + responseAdjustment - 0.1*intent
	return clamp(0.05, 0.8, factor)
}

// ComputeChannelEffectiveness is the profile-conditional channel multiplier.
// Conditions compose multiplicatively when more than one fires.
func (e *ProbabilityEngine) ComputeChannelEffectiveness(channel string, profile models.CompanyProfile) float64 {
	profile = profile.WithDefaults()
	normalized := normalizeChannel(channel)
	industry := strings.ToLower(profile.Industry)

	effectiveness := 1.0

	if strings.Contains(industry, "tech") || strings.Contains(industry, "software") {
		if strings.Contains(normalized, "linkedin") {
			effectiveness *= 1.2
		}
	}

	if profile.CompanySize == "large" || profile.CompanySize == "enterprise" {
		if strings.Contains(normalized, "email") {
			effectiveness *= 1.15
		}
	}

	if profile.IntentScore > 80 && normalized == "phone" {
		effectiveness *= 1.3
	}

	return effectiveness
}

func normalizeScore(score float64) float64 {
	return clamp01(score / 100.0)
}

var lastContactLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// timeDecay buckets time since last contact: too-soon contact is fatigued,
// the 3-7 day window is optimal, and older contacts cool off. An empty
// timestamp means no prior contact (fresh, 1.0).
func (e *ProbabilityEngine) timeDecay(lastContactTime string) float64 {
	if lastContactTime == "" {
		return 1.0
	}

	lastContact, err := parseLastContact(lastContactTime)
	if err != nil {
		logger.Warn("Error parsing last contact time",
			zap.String("last_contact_time", lastContactTime),
			zap.Error(err),
		)
		return 1.0
	}

	daysSince := int(time.Since(lastContact).Hours() / 24)

	switch {
	case daysSince < 1:
		return 0.3 // too soon
	case daysSince <= 3:
		return 0.7
	case daysSince <= 7:
		return 1.0 // optimal window
	case daysSince <= 14:
		return 0.8
	default:
		return 0.6 // interest may have waned
	}
}

func parseLastContact(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range lastContactLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func historicalResponseRate(history *models.EngagementHistory) float64 {
	if history == nil {
		return defaultResponseRate
	}
	return clamp01(history.ResponseRate)
}
