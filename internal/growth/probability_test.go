package growth

import (
	"testing"
	"time"

	"github.com/rishibpanchal/ReachIQ/internal/storage/models"
)

func TestComputeStepFeatures(t *testing.T) {
	engine := NewProbabilityEngine()

	profile := models.CompanyProfile{
		ID:               "company_1",
		Industry:         "Technology",
		CompanySize:      "medium",
		IntentScore:      80,
		SignalStrength:   60,
		EngagementScore:  40,
		MaxOutreachSteps: 5,
	}

	features := engine.ComputeStepFeatures(profile, 1, "LinkedIn", nil)
	if len(features) != FeatureCount {
		t.Fatalf("got %d features, want %d", len(features), FeatureCount)
	}

	want := []float64{0.8, 0.6, 0.4, 0.8, 1.0, 1.0, defaultResponseRate, 1.0}
	for i, w := range want {
		if features[i] != w {
			t.Errorf("feature[%d] = %v, want %v", i, features[i], w)
		}
	}
}

func TestComputeStepFeaturesLaterStep(t *testing.T) {
	engine := NewProbabilityEngine()
	profile := models.CompanyProfile{ID: "c", IntentScore: 50, MaxOutreachSteps: 5}

	features := engine.ComputeStepFeatures(profile, 3, "Email Followup", nil)

	if features[3] != 0.5 {
		t.Errorf("email followup encoding = %v, want 0.5", features[3])
	}
	if features[4] != 1.0/3.0 {
		t.Errorf("step recency = %v, want 1/3", features[4])
	}
	if features[7] != 1.0-2.0/5.0 {
		t.Errorf("sequence position = %v, want 0.6", features[7])
	}
}

func TestComputeStepFeaturesChannelEncoding(t *testing.T) {
	engine := NewProbabilityEngine()
	profile := models.CompanyProfile{ID: "c", MaxOutreachSteps: 5}

	cases := map[string]float64{
		"LinkedIn":          0.8,
		"LinkedIn Followup": 0.6,
		"Email":             0.7,
		"Phone":             0.9,
		"WhatsApp":          0.75,
		"Carrier Pigeon":    0.5,
	}

	for channel, want := range cases {
		features := engine.ComputeStepFeatures(profile, 1, channel, nil)
		if features[3] != want {
			t.Errorf("encoding for %q = %v, want %v", channel, features[3], want)
		}
	}
}

func TestTimeDecayBuckets(t *testing.T) {
	engine := NewProbabilityEngine()
	now := time.Now()

	cases := []struct {
		daysAgo int
		want    float64
	}{
		{0, 0.3},
		{2, 0.7},
		{5, 1.0},
		{10, 0.8},
		{30, 0.6},
	}

	for _, tc := range cases {
		ts := now.AddDate(0, 0, -tc.daysAgo).Format(time.RFC3339)
		if got := engine.timeDecay(ts); got != tc.want {
			t.Errorf("timeDecay(%d days ago) = %v, want %v", tc.daysAgo, got, tc.want)
		}
	}
}

func TestTimeDecayEmptyAndMalformed(t *testing.T) {
	engine := NewProbabilityEngine()

	if got := engine.timeDecay(""); got != 1.0 {
		t.Errorf("timeDecay(empty) = %v, want 1.0", got)
	}
	if got := engine.timeDecay("not-a-timestamp"); got != 1.0 {
		t.Errorf("timeDecay(malformed) = %v, want 1.0", got)
	}
}

func TestApplyDecayModel(t *testing.T) {
	engine := NewProbabilityEngine()
	profile := models.CompanyProfile{ID: "c", IntentScore: 50, EngagementScore: 50, MaxOutreachSteps: 5}

	base := 0.6

	// Step 1 is never decayed.
	if got := engine.ApplyDecayModel(base, 1, profile, nil); got != base {
		t.Errorf("step 1 decayed: got %v, want %v", got, base)
	}

	prev := base
	for step := 2; step <= 5; step++ {
		got := engine.ApplyDecayModel(base, step, profile, nil)
		if got >= prev {
			t.Errorf("step %d probability %v not below step %d's %v", step, got, step-1, prev)
		}
		if got < minStepProbability {
			t.Errorf("step %d probability %v below floor %v", step, got, minStepProbability)
		}
		prev = got
	}
}

func TestApplyDecayModelFloor(t *testing.T) {
	engine := NewProbabilityEngine()
	profile := models.CompanyProfile{ID: "c", MaxOutreachSteps: 5}

	if got := engine.ApplyDecayModel(0.001, 10, profile, nil); got != minStepProbability {
		t.Errorf("floored probability = %v, want %v", got, minStepProbability)
	}
}

func TestDecayFactorClamped(t *testing.T) {
	engine := NewProbabilityEngine()

	// Highly engaged profile with strong response history pushes the raw
	// factor below the lower bound.
	engaged := models.CompanyProfile{ID: "c", IntentScore: 100, EngagementScore: 100, MaxOutreachSteps: 5}
	history := &models.EngagementHistory{ResponseRate: 1.0}
	if got := engine.decayFactor(engaged, history); got != 0.05 {
		t.Errorf("decay factor for engaged profile = %v, want 0.05", got)
	}

	cold := models.CompanyProfile{ID: "c", MaxOutreachSteps: 5}
	got := engine.decayFactor(cold, nil)
	if got < 0.05 || got > 0.8 {
		t.Errorf("decay factor %v out of [0.05, 0.8]", got)
	}
}

func TestComputeChannelEffectiveness(t *testing.T) {
	engine := NewProbabilityEngine()

	tech := models.CompanyProfile{ID: "c", Industry: "Technology", CompanySize: "medium", IntentScore: 50}
	if got := engine.ComputeChannelEffectiveness("LinkedIn", tech); got != 1.2 {
		t.Errorf("tech LinkedIn effectiveness = %v, want 1.2", got)
	}

	enterprise := models.CompanyProfile{ID: "c", Industry: "Finance", CompanySize: "enterprise", IntentScore: 50}
	if got := engine.ComputeChannelEffectiveness("Email Followup", enterprise); got != 1.15 {
		t.Errorf("enterprise email effectiveness = %v, want 1.15", got)
	}

	hot := models.CompanyProfile{ID: "c", Industry: "Retail", CompanySize: "small", IntentScore: 90}
	if got := engine.ComputeChannelEffectiveness("Phone", hot); got != 1.3 {
		t.Errorf("high intent phone effectiveness = %v, want 1.3", got)
	}

	neutral := models.CompanyProfile{ID: "c", Industry: "Retail", CompanySize: "small", IntentScore: 40}
	if got := engine.ComputeChannelEffectiveness("WhatsApp", neutral); got != 1.0 {
		t.Errorf("neutral effectiveness = %v, want 1.0", got)
	}

	// Conditions compose: tech enterprise with high intent on a channel
	// matching several rules multiplies them.
	techEnterprise := models.CompanyProfile{ID: "c", Industry: "Software", CompanySize: "enterprise", IntentScore: 90}
	if got := engine.ComputeChannelEffectiveness("Email", techEnterprise); got != 1.15 {
		t.Errorf("software enterprise email effectiveness = %v, want 1.15", got)
	}
}
