package growth

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/internal/storage/models"
	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

// ChannelScore is a scored outreach channel with a human-readable rationale.
type ChannelScore struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// availableChannels fixes the channel set and the tie-break order of the
// ranking (stable sort keeps this order for equal scores).
var availableChannels = []string{"LinkedIn", "Email", "Phone", "WhatsApp", "Twitter", "Direct Message"}

// Empirical effectiveness baselines per channel.
var channelBaselines = map[string]float64{
	"LinkedIn":       0.78,
	"Email":          0.65,
	"Phone":          0.82,
	"WhatsApp":       0.71,
	"Twitter":        0.52,
	"Direct Message": 0.68,
}

var industryAffinities = map[string]map[string]float64{
	"LinkedIn": {
		"Technology":    0.95,
		"Finance":       0.92,
		"Healthcare":    0.85,
		"Retail":        0.75,
		"Manufacturing": 0.70,
	},
	"Email": {
		"Technology":    0.80,
		"Finance":       0.88,
		"Healthcare":    0.90,
		"Retail":        0.82,
		"Manufacturing": 0.85,
	},
	"Phone": {
		"Technology":    0.70,
		"Finance":       0.85,
		"Healthcare":    0.88,
		"Retail":        0.75,
		"Manufacturing": 0.80,
	},
	"WhatsApp": {
		"Technology":    0.60,
		"Finance":       0.50,
		"Healthcare":    0.65,
		"Retail":        0.75,
		"Manufacturing": 0.72,
	},
	"Twitter": {
		"Technology":    0.72,
		"Finance":       0.65,
		"Healthcare":    0.45,
		"Retail":        0.68,
		"Manufacturing": 0.40,
	},
	"Direct Message": {
		"Technology":    0.75,
		"Finance":       0.68,
		"Healthcare":    0.60,
		"Retail":        0.72,
		"Manufacturing": 0.65,
	},
}

var sizeAffinities = map[string]map[string]float64{
	"LinkedIn": {
		"small":      0.75,
		"medium":     0.85,
		"large":      0.90,
		"enterprise": 0.92,
	},
	"Email": {
		"small":      0.88,
		"medium":     0.85,
		"large":      0.82,
		"enterprise": 0.80,
	},
	"Phone": {
		"small":      0.70,
		"medium":     0.80,
		"large":      0.85,
		"enterprise": 0.88,
	},
	"WhatsApp": {
		"small":      0.80,
		"medium":     0.72,
		"large":      0.60,
		"enterprise": 0.50,
	},
	"Twitter": {
		"small":      0.65,
		"medium":     0.70,
		"large":      0.75,
		"enterprise": 0.68,
	},
	"Direct Message": {
		"small":      0.78,
		"medium":     0.75,
		"large":      0.70,
		"enterprise": 0.65,
	},
}

// ChannelPredictor ranks outreach channels for a company profile.
type ChannelPredictor struct{}

func NewChannelPredictor() *ChannelPredictor {
	return &ChannelPredictor{}
}

// PredictTopChannels scores every available channel and returns the top
// numChannels by composite score. numChannels is clamped to the channel set;
// missing profile fields fall back to defaults, so this always answers.
func (p *ChannelPredictor) PredictTopChannels(profile models.CompanyProfile, history *models.EngagementHistory, numChannels int) []ChannelScore {
	profile = profile.WithDefaults()

	if numChannels < 1 {
		numChannels = 1
	}
	if numChannels > len(availableChannels) {
		numChannels = len(availableChannels)
	}

	logger.Info("Computing top channels",
		zap.String("company_id", profile.ID),
		zap.Int("num_channels", numChannels),
	)

	type ranked struct {
		name  string
		score float64
	}

	scores := make([]ranked, 0, len(availableChannels))
	for _, channel := range availableChannels {
		scores = append(scores, ranked{channel, p.scoreChannel(channel, profile, history)})
	}

	// Stable sort keeps input iteration order for equal scores.
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	top := make([]ChannelScore, 0, numChannels)
	for _, r := range scores[:numChannels] {
		top = append(top, ChannelScore{
			Name:      r.name,
			Score:     round4(r.score),
			Reasoning: channelReasoning(r.name, r.score, profile),
		})
	}

	return top
}

// scoreChannel combines baseline effectiveness, industry and size affinity,
// company signals, and historical per-channel performance.
func (p *ChannelPredictor) scoreChannel(channel string, profile models.CompanyProfile, history *models.EngagementHistory) float64 {
	baseline, ok := channelBaselines[channel]
	if !ok {
		baseline = 0.6
	}

	industryBoost := affinity(industryAffinities, channel, profile.Industry)
	sizeBoost := affinity(sizeAffinities, channel, profile.CompanySize)

	intent := clamp01(profile.IntentScore / 100.0)
	engagement := clamp01(profile.EngagementScore / 100.0)
	signal := clamp01(profile.SignalStrength / 100.0)
	signalBoost := (intent + engagement + signal) / 3.0

	historyBoost := 0.0
	if history != nil && history.ChannelPerformance != nil {
		if perf, ok := history.ChannelPerformance[channel]; ok {
			historyBoost = clamp01(perf.ResponseRate)
		} else {
			historyBoost = 0.5
		}
	}

	composite := baseline*0.3 +
		industryBoost*0.25 +
		sizeBoost*0.15 +
		signalBoost*0.2 +
		historyBoost*0.1

	return clamp01(composite)
}

func affinity(table map[string]map[string]float64, channel, key string) float64 {
	if byKey, ok := table[channel]; ok {
		if v, ok := byKey[key]; ok {
			return v
		}
	}
	return 0.7
}

func channelReasoning(channel string, score float64, profile models.CompanyProfile) string {
	switch {
	case score > 0.80:
		return fmt.Sprintf("%s is highly recommended for %s %s-sized companies with high intent (score: %.2f)",
			channel, profile.Industry, profile.CompanySize, score)
	case score > 0.65:
		return fmt.Sprintf("%s is suitable for %s companies (score: %.2f)",
			channel, profile.Industry, score)
	default:
		return fmt.Sprintf("%s is a secondary option for %s companies (score: %.2f)",
			channel, profile.Industry, score)
	}
}
