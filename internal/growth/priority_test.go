package growth

import (
	"errors"
	"math"
	"testing"
)

func TestChannelWeightEndpoints(t *testing.T) {
	engine := NewPriorityWeightingEngine()

	if got := engine.ChannelWeight(0); got != 0.3 {
		t.Errorf("ChannelWeight(0) = %v, want 0.3", got)
	}
	if got := engine.ChannelWeight(1); math.Abs(got-1.2) > 1e-9 {
		t.Errorf("ChannelWeight(1) = %v, want 1.2", got)
	}
	if got := engine.ChannelWeight(0.5); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("ChannelWeight(0.5) = %v, want 0.75", got)
	}
}

func TestSetFollowupDecay(t *testing.T) {
	engine := NewPriorityWeightingEngine()

	if err := engine.SetFollowupDecay(0.5); err != nil {
		t.Fatalf("SetFollowupDecay(0.5) returned error: %v", err)
	}

	for _, bad := range []float64{0, -0.1, 1.01} {
		err := engine.SetFollowupDecay(bad)
		if !errors.Is(err, ErrInvalidDecay) {
			t.Errorf("SetFollowupDecay(%v) error = %v, want ErrInvalidDecay", bad, err)
		}
	}

	// Rejected values leave the configured decay untouched.
	got := engine.ApplyChannelPriorityWeight(0.5, 1.0, StageFollowup)
	want := clamp01(0.5 * engine.ChannelWeight(1.0) * 0.5)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("weighted probability = %v, want %v", got, want)
	}
}

func TestApplyChannelPriorityWeight(t *testing.T) {
	engine := NewPriorityWeightingEngine()

	initial := engine.ApplyChannelPriorityWeight(0.5, 0.8, StageInitial)
	followup := engine.ApplyChannelPriorityWeight(0.5, 0.8, StageFollowup)

	if followup >= initial {
		t.Errorf("followup %v not below initial %v", followup, initial)
	}

	wantInitial := 0.5 * (0.3 + 0.8*0.9)
	if math.Abs(initial-wantInitial) > 1e-9 {
		t.Errorf("initial weighted = %v, want %v", initial, wantInitial)
	}
	if math.Abs(followup-wantInitial*0.7) > 1e-9 {
		t.Errorf("followup weighted = %v, want %v", followup, wantInitial*0.7)
	}
}

func TestApplyChannelPriorityWeightClampsInputs(t *testing.T) {
	engine := NewPriorityWeightingEngine()

	if got := engine.ApplyChannelPriorityWeight(1.5, 2.0, StageInitial); got != 1.0 {
		t.Errorf("out-of-range inputs gave %v, want 1.0", got)
	}
	if got := engine.ApplyChannelPriorityWeight(-0.2, 0.5, StageInitial); got != 0 {
		t.Errorf("negative probability gave %v, want 0", got)
	}
}

func TestApplyWeightsToSequenceLengthMismatch(t *testing.T) {
	engine := NewPriorityWeightingEngine()

	sequence := fallbackSequence()
	_, err := engine.ApplyWeightsToSequence([]float64{0.5, 0.4}, sequence)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("got error %v, want ErrLengthMismatch", err)
	}
}

func TestApplyWeightsToSequence(t *testing.T) {
	engine := NewPriorityWeightingEngine()
	builder := NewSequenceBuilder()

	sequence, err := builder.BuildSequence([]ChannelScore{
		{Name: "Phone", Score: 0.8},
		{Name: "Email", Score: 0.6},
	})
	if err != nil {
		t.Fatalf("BuildSequence returned error: %v", err)
	}

	probs := []float64{0.5, 0.45, 0.4, 0.35}
	weighted, err := engine.ApplyWeightsToSequence(probs, sequence)
	if err != nil {
		t.Fatalf("ApplyWeightsToSequence returned error: %v", err)
	}
	if len(weighted) != 4 {
		t.Fatalf("got %d weighted stages, want 4", len(weighted))
	}

	for i, ws := range weighted {
		if ws.BaseProbability != round4(probs[i]) {
			t.Errorf("stage %d base = %v, want %v", i+1, ws.BaseProbability, probs[i])
		}
		if ws.AdjustedProbability < 0 || ws.AdjustedProbability > 1 {
			t.Errorf("stage %d adjusted %v out of [0,1]", i+1, ws.AdjustedProbability)
		}
	}

	// Follow-up on the same channel with the same weight decays harder.
	if weighted[1].AdjustedProbability >= weighted[0].AdjustedProbability {
		t.Errorf("followup %v not below initial %v",
			weighted[1].AdjustedProbability, weighted[0].AdjustedProbability)
	}

	// FollowupDecay reports the decay actually applied per stage.
	for i, ws := range weighted {
		want := 1.0
		if ws.Type == StageFollowup {
			want = defaultFollowupDecay
		}
		if ws.FollowupDecay != want {
			t.Errorf("stage %d followup decay = %v, want %v", i+1, ws.FollowupDecay, want)
		}
	}
}

func TestApplyWeightsToSequenceWithoutScores(t *testing.T) {
	engine := NewPriorityWeightingEngine()

	// Missing channel scores weight as a neutral 0.5 (weight 0.75), and
	// follow-up stages still take the decay.
	probs := []float64{0.5, 0.4, 0.3, 0.2}
	weighted, err := engine.ApplyWeightsToSequence(probs, fallbackSequence())
	if err != nil {
		t.Fatalf("ApplyWeightsToSequence returned error: %v", err)
	}

	for i, ws := range weighted {
		if ws.ChannelWeight != 0.75 {
			t.Errorf("unscored stage %d weight = %v, want 0.75", i+1, ws.ChannelWeight)
		}

		want := probs[i] * 0.75
		if ws.Type == StageFollowup {
			want *= defaultFollowupDecay
		}
		if math.Abs(ws.AdjustedProbability-round4(want)) > 1e-9 {
			t.Errorf("unscored stage %d adjusted = %v, want %v", i+1, ws.AdjustedProbability, round4(want))
		}
	}
}

func TestCumulativeProbability(t *testing.T) {
	engine := NewPriorityWeightingEngine()

	cumulative := engine.CumulativeProbability([]float64{0.5, 0.5})
	if len(cumulative) != 2 {
		t.Fatalf("got %d entries, want 2", len(cumulative))
	}
	if cumulative[0] != 0.5 {
		t.Errorf("cumulative[0] = %v, want 0.5", cumulative[0])
	}
	if cumulative[1] != 0.75 {
		t.Errorf("cumulative[1] = %v, want 0.75", cumulative[1])
	}

	// Monotone non-decreasing, bounded by 1.
	long := engine.CumulativeProbability([]float64{0.3, 0.25, 0.2, 0.15, 0.1})
	for i := 1; i < len(long); i++ {
		if long[i] < long[i-1] {
			t.Errorf("cumulative[%d] = %v below cumulative[%d] = %v", i, long[i], i-1, long[i-1])
		}
	}
	if last := long[len(long)-1]; last > 1 {
		t.Errorf("cumulative exceeds 1: %v", last)
	}
}

func TestMarginalGains(t *testing.T) {
	engine := NewPriorityWeightingEngine()

	cumulative := []float64{0.5, 0.75, 0.875}
	gains := engine.MarginalGains(cumulative)

	want := []float64{0.5, 0.25, 0.125}
	for i, w := range want {
		if math.Abs(gains[i]-w) > 1e-9 {
			t.Errorf("gain[%d] = %v, want %v", i, gains[i], w)
		}
	}
}
