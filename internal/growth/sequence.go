package growth

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

// ErrTooFewChannels is the contract violation raised when the sequence
// builder receives fewer than two ranked channels.
var ErrTooFewChannels = errors.New("sequence builder requires at least 2 top channels")

type StageType string

const (
	StageInitial  StageType = "initial"
	StageFollowup StageType = "followup"
)

// SequenceStage is one step of an outreach plan. ChannelScore is a pointer so
// statically defined sequences, which carry no score, stay distinguishable
// from dynamically built ones.
type SequenceStage struct {
	Step         int       `json:"step"`
	Channel      string    `json:"channel"`
	ChannelScore *float64  `json:"channel_score,omitempty"`
	Type         StageType `json:"type"`
	DisplayName  string    `json:"display_name"`
	IsPrimary    bool      `json:"is_primary"`
}

// SequenceBuilder turns the top two ranked channels into the fixed 4-stage
// plan: primary initial, primary follow-up, secondary initial, secondary
// follow-up.
type SequenceBuilder struct{}

func NewSequenceBuilder() *SequenceBuilder {
	return &SequenceBuilder{}
}

func (b *SequenceBuilder) BuildSequence(topChannels []ChannelScore) ([]SequenceStage, error) {
	if len(topChannels) < 2 {
		logger.Error("Invalid top channels list", zap.Int("got", len(topChannels)))
		return nil, fmt.Errorf("%w, got: %d", ErrTooFewChannels, len(topChannels))
	}

	primary := topChannels[0]
	secondary := topChannels[1]

	logger.Info("Building sequence",
		zap.String("primary", primary.Name),
		zap.Float64("primary_score", primary.Score),
		zap.String("secondary", secondary.Name),
		zap.Float64("secondary_score", secondary.Score),
	)

	primaryScore := primary.Score
	secondaryScore := secondary.Score

	sequence := []SequenceStage{
		{
			Step:         1,
			Channel:      primary.Name,
			ChannelScore: &primaryScore,
			Type:         StageInitial,
			DisplayName:  fmt.Sprintf("%s Initial", primary.Name),
			IsPrimary:    true,
		},
		{
			Step:         2,
			Channel:      primary.Name,
			ChannelScore: &primaryScore,
			Type:         StageFollowup,
			DisplayName:  fmt.Sprintf("%s Follow-up", primary.Name),
			IsPrimary:    true,
		},
		{
			Step:         3,
			Channel:      secondary.Name,
			ChannelScore: &secondaryScore,
			Type:         StageInitial,
			DisplayName:  fmt.Sprintf("%s Initial", secondary.Name),
			IsPrimary:    false,
		},
		{
			Step:         4,
			Channel:      secondary.Name,
			ChannelScore: &secondaryScore,
			Type:         StageFollowup,
			DisplayName:  fmt.Sprintf("%s Follow-up", secondary.Name),
			IsPrimary:    false,
		},
	}

	return sequence, nil
}

// ValidateSequence checks the structural invariants of a built sequence:
// exactly 4 stages, required fields set, step numbers equal to position.
func (b *SequenceBuilder) ValidateSequence(sequence []SequenceStage) error {
	if len(sequence) != 4 {
		return fmt.Errorf("sequence must have exactly 4 stages, got %d", len(sequence))
	}

	for i, stage := range sequence {
		if stage.Channel == "" {
			return fmt.Errorf("stage %d missing channel", i+1)
		}
		if stage.DisplayName == "" {
			return fmt.Errorf("stage %d missing display name", i+1)
		}
		if stage.Type != StageInitial && stage.Type != StageFollowup {
			return fmt.Errorf("stage %d has invalid type %q", i+1, stage.Type)
		}
		if stage.Step != i+1 {
			return fmt.Errorf("stage %d has incorrect step number: %d", i+1, stage.Step)
		}
	}

	return nil
}
