package models

import "testing"

func TestWithDefaults(t *testing.T) {
	got := CompanyProfile{ID: "c"}.WithDefaults()

	if got.Industry != "Technology" {
		t.Errorf("industry = %q, want Technology", got.Industry)
	}
	if got.CompanySize != "medium" {
		t.Errorf("company size = %q, want medium", got.CompanySize)
	}
	if got.MaxOutreachSteps != 5 {
		t.Errorf("max outreach steps = %d, want 5", got.MaxOutreachSteps)
	}
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	in := CompanyProfile{
		ID:               "c",
		Industry:         "Finance",
		CompanySize:      "enterprise",
		IntentScore:      0,
		MaxOutreachSteps: 3,
	}
	got := in.WithDefaults()

	if got.Industry != "Finance" {
		t.Errorf("industry = %q, want Finance", got.Industry)
	}
	if got.CompanySize != "enterprise" {
		t.Errorf("company size = %q, want enterprise", got.CompanySize)
	}
	if got.MaxOutreachSteps != 3 {
		t.Errorf("max outreach steps = %d, want 3", got.MaxOutreachSteps)
	}

	// Numeric zero scores are legitimate values, not absences.
	if got.IntentScore != 0 {
		t.Errorf("intent score = %v, want 0", got.IntentScore)
	}
}
