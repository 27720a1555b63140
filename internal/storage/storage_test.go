package storage

import (
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stdout"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestResolveCompanyID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"company_7", "company_7"},
		{"BUY_00001", "company_2"},
		{"BUY_100", "company_1"},
		{"BUY_199", "company_100"},
		{"anything-else", "anything-else"},
	}

	for _, tc := range cases {
		got, err := ResolveCompanyID(tc.in)
		if err != nil {
			t.Errorf("ResolveCompanyID(%q) returned error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ResolveCompanyID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveCompanyIDInvalidBuyer(t *testing.T) {
	if _, err := ResolveCompanyID("BUY_abc"); err == nil {
		t.Fatal("invalid buyer id accepted")
	}
}

func TestSynthesizeCompanyDeterministic(t *testing.T) {
	first := SynthesizeCompany("company_42")
	second := SynthesizeCompany("company_42")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("synthesis not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}

	if first.ID != "company_42" {
		t.Errorf("id = %q, want company_42", first.ID)
	}
	if first.IntentScore < 30 || first.IntentScore > 95 {
		t.Errorf("intent score %v out of [30, 95]", first.IntentScore)
	}
	if first.SignalStrength < 40 || first.SignalStrength > 90 {
		t.Errorf("signal strength %v out of [40, 90]", first.SignalStrength)
	}
	if first.EngagementScore < 20 || first.EngagementScore > 85 {
		t.Errorf("engagement score %v out of [20, 85]", first.EngagementScore)
	}
	if first.MaxOutreachSteps != 5 {
		t.Errorf("max outreach steps = %d, want 5", first.MaxOutreachSteps)
	}
}

func TestSynthesizeHistory(t *testing.T) {
	now := time.Now()

	withHistory := 0
	for _, company := range SeedCompanies(100) {
		id := company.ID
		history := SynthesizeHistory(id, now)
		if history == nil {
			continue
		}
		withHistory++

		if history.ResponseRate < 0.1 || history.ResponseRate >= 0.5 {
			t.Errorf("%s response rate %v out of [0.1, 0.5)", id, history.ResponseRate)
		}
		if history.TotalContacts < 1 {
			t.Errorf("%s total contacts %d below 1", id, history.TotalContacts)
		}
		if _, err := time.Parse(time.RFC3339, history.LastContactTime); err != nil {
			t.Errorf("%s last contact %q not RFC3339: %v", id, history.LastContactTime, err)
		}
	}

	// Roughly 70% of ids carry history.
	if withHistory < 50 || withHistory > 90 {
		t.Errorf("%d of 100 ids had history, expected around 70", withHistory)
	}
}

func TestSynthesizeHistoryDeterministic(t *testing.T) {
	now := time.Now()

	first := SynthesizeHistory("company_3", now)
	second := SynthesizeHistory("company_3", now)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("history synthesis not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestSeedCompanies(t *testing.T) {
	companies := SeedCompanies(10)
	if len(companies) != 10 {
		t.Fatalf("got %d companies, want 10", len(companies))
	}

	if companies[0].ID != "company_1" {
		t.Errorf("first id = %q, want company_1", companies[0].ID)
	}
	if companies[9].ID != "company_10" {
		t.Errorf("last id = %q, want company_10", companies[9].ID)
	}
}

func TestMatchesQuery(t *testing.T) {
	company := SynthesizeCompany("company_1")
	company.Name = "Globex Health"
	company.Industry = "Healthcare"

	if !MatchesQuery(company, "globex") {
		t.Error("name match failed")
	}
	if !MatchesQuery(company, "health") {
		t.Error("industry match failed")
	}
	if MatchesQuery(company, "finance") {
		t.Error("non-match reported as match")
	}
}
