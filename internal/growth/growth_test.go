package growth

import (
	"os"
	"testing"

	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stdout"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestClamp(t *testing.T) {
	cases := []struct {
		min, max, v, want float64
	}{
		{0, 1, 0.5, 0.5},
		{0, 1, -0.2, 0},
		{0, 1, 1.7, 1},
		{0.05, 0.8, 0.9, 0.8},
		{0.05, 0.8, 0.01, 0.05},
	}

	for _, tc := range cases {
		if got := clamp(tc.min, tc.max, tc.v); got != tc.want {
			t.Errorf("clamp(%v, %v, %v) = %v, want %v", tc.min, tc.max, tc.v, got, tc.want)
		}
	}
}

func TestRound4(t *testing.T) {
	if got := round4(0.123456); got != 0.1235 {
		t.Errorf("round4(0.123456) = %v, want 0.1235", got)
	}
	if got := round4(0.5); got != 0.5 {
		t.Errorf("round4(0.5) = %v, want 0.5", got)
	}
}

func TestNormalizeChannel(t *testing.T) {
	cases := map[string]string{
		"LinkedIn":          "linkedin",
		"LinkedIn Followup": "linkedin_followup",
		"Email Followup":    "email_followup",
		"phone":             "phone",
	}

	for in, want := range cases {
		if got := normalizeChannel(in); got != want {
			t.Errorf("normalizeChannel(%q) = %q, want %q", in, got, want)
		}
	}
}
