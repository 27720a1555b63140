package models

// CompanyProfile is the immutable snapshot of a prospective buyer supplied by
// the data provider. Scores are on a 0-100 scale.
type CompanyProfile struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Industry         string  `json:"industry"`
	CompanySize      string  `json:"company_size"`
	IntentScore      float64 `json:"intent_score"`
	SignalStrength   float64 `json:"signal_strength"`
	EngagementScore  float64 `json:"engagement_score"`
	MaxOutreachSteps int     `json:"max_outreach_steps"`
	Location         string  `json:"location"`
}

// WithDefaults fills the categorical fields callers may omit. Numeric zeros
// are honored as real values; only empty strings and a non-positive step cap
// get defaults.
func (p CompanyProfile) WithDefaults() CompanyProfile {
	if p.Industry == "" {
		p.Industry = "Technology"
	}
	if p.CompanySize == "" {
		p.CompanySize = "medium"
	}
	if p.MaxOutreachSteps <= 0 {
		p.MaxOutreachSteps = 5
	}
	return p
}

type ChannelPerformance struct {
	ResponseRate float64 `json:"response_rate"`
}

// EngagementHistory is optional prior-contact data. A nil *EngagementHistory
// is the valid no-prior-contact state, never an error.
type EngagementHistory struct {
	ResponseRate             float64                       `json:"response_rate"`
	LastContactTime          string                        `json:"last_contact_time,omitempty"`
	TotalContacts            int                           `json:"total_contacts"`
	SuccessfulContacts       int                           `json:"successful_contacts"`
	AverageResponseTimeHours float64                       `json:"average_response_time_hours"`
	ChannelPerformance       map[string]ChannelPerformance `json:"channel_performance,omitempty"`
}
