package growth

import (
	"reflect"
	"testing"

	"github.com/rishibpanchal/ReachIQ/internal/storage/models"
)

func healthcareEnterprise() models.CompanyProfile {
	return models.CompanyProfile{
		ID:               "company_1",
		Name:             "Acme Health",
		Industry:         "Healthcare",
		CompanySize:      "enterprise",
		IntentScore:      85,
		SignalStrength:   75,
		EngagementScore:  70,
		MaxOutreachSteps: 5,
	}
}

func TestPredictTopChannelsRanking(t *testing.T) {
	predictor := NewChannelPredictor()

	channels := predictor.PredictTopChannels(healthcareEnterprise(), nil, 6)
	if len(channels) != 6 {
		t.Fatalf("got %d channels, want 6", len(channels))
	}

	rank := make(map[string]int)
	for i, ch := range channels {
		rank[ch.Name] = i
	}

	// Healthcare enterprises favor direct channels over Twitter.
	if rank["Phone"] > rank["Twitter"] {
		t.Errorf("Phone ranked %d, below Twitter at %d", rank["Phone"], rank["Twitter"])
	}
	if rank["Email"] > rank["Twitter"] {
		t.Errorf("Email ranked %d, below Twitter at %d", rank["Email"], rank["Twitter"])
	}

	for i := 1; i < len(channels); i++ {
		if channels[i].Score > channels[i-1].Score {
			t.Errorf("channels not sorted: %v at %d above %v at %d",
				channels[i].Score, i, channels[i-1].Score, i-1)
		}
	}
}

func TestPredictTopChannelsCountClamped(t *testing.T) {
	predictor := NewChannelPredictor()
	profile := healthcareEnterprise()

	if got := predictor.PredictTopChannels(profile, nil, 0); len(got) != 1 {
		t.Errorf("numChannels=0 returned %d channels, want 1", len(got))
	}
	if got := predictor.PredictTopChannels(profile, nil, 100); len(got) != len(availableChannels) {
		t.Errorf("numChannels=100 returned %d channels, want %d", len(got), len(availableChannels))
	}
}

func TestPredictTopChannelsScoresBounded(t *testing.T) {
	predictor := NewChannelPredictor()

	channels := predictor.PredictTopChannels(healthcareEnterprise(), nil, 6)
	for _, ch := range channels {
		if ch.Score < 0 || ch.Score > 1 {
			t.Errorf("channel %s score %v out of [0,1]", ch.Name, ch.Score)
		}
		if ch.Reasoning == "" {
			t.Errorf("channel %s missing reasoning", ch.Name)
		}
	}
}

func TestPredictTopChannelsHistoryBoost(t *testing.T) {
	predictor := NewChannelPredictor()
	profile := healthcareEnterprise()

	without := predictor.PredictTopChannels(profile, nil, 6)

	history := &models.EngagementHistory{
		ResponseRate: 0.4,
		ChannelPerformance: map[string]models.ChannelPerformance{
			"Phone": {ResponseRate: 0.9},
		},
	}
	with := predictor.PredictTopChannels(profile, history, 6)

	phoneWithout, phoneWith := -1.0, -1.0
	for _, ch := range without {
		if ch.Name == "Phone" {
			phoneWithout = ch.Score
		}
	}
	for _, ch := range with {
		if ch.Name == "Phone" {
			phoneWith = ch.Score
		}
	}

	if phoneWith <= phoneWithout {
		t.Errorf("Phone score with history %v, want above %v", phoneWith, phoneWithout)
	}
}

func TestPredictTopChannelsDeterministic(t *testing.T) {
	predictor := NewChannelPredictor()
	profile := healthcareEnterprise()

	first := predictor.PredictTopChannels(profile, nil, 3)
	second := predictor.PredictTopChannels(profile, nil, 3)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated ranking differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestPredictTopChannelsEmptyProfileDefaults(t *testing.T) {
	predictor := NewChannelPredictor()

	channels := predictor.PredictTopChannels(models.CompanyProfile{ID: "x"}, nil, 2)
	if len(channels) != 2 {
		t.Fatalf("got %d channels, want 2", len(channels))
	}
	for _, ch := range channels {
		if ch.Score <= 0 {
			t.Errorf("channel %s scored %v with default profile", ch.Name, ch.Score)
		}
	}
}
