package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rishibpanchal/ReachIQ/internal/storage/models"
	"github.com/rishibpanchal/ReachIQ/pkg/utils"
)

// Store is the data provider contract. A missing company or missing history is
// reported as (nil, nil): valid, not exceptional.
type Store interface {
	GetCompany(ctx context.Context, companyID string) (*models.CompanyProfile, error)
	GetHistory(ctx context.Context, companyID string) (*models.EngagementHistory, error)
	ListCompanies(ctx context.Context) ([]models.CompanyProfile, error)
	SearchCompanies(ctx context.Context, query string, limit int) ([]models.CompanyProfile, error)
	Close() error
}

var industries = []string{"Technology", "Healthcare", "Finance", "Retail", "Manufacturing"}
var companySizes = []string{"small", "medium", "large", "enterprise"}

// ResolveCompanyID maps buyer ids (BUY_XXXXX) onto the company id space.
func ResolveCompanyID(companyID string) (string, error) {
	if !strings.HasPrefix(companyID, "BUY_") {
		return companyID, nil
	}
	buyerNum, err := strconv.Atoi(strings.TrimPrefix(companyID, "BUY_"))
	if err != nil {
		return "", fmt.Errorf("invalid buyer id %q: %w", companyID, err)
	}
	return fmt.Sprintf("company_%d", (buyerNum%100)+1), nil
}

// SynthesizeCompany derives a consistent profile for an id that is not in the
// store, so repeated lookups of the same unknown id agree.
func SynthesizeCompany(companyID string) models.CompanyProfile {
	h := utils.HashUint64(companyID)
	return models.CompanyProfile{
		ID:               companyID,
		Name:             fmt.Sprintf("Company %s", companyID),
		Industry:         industries[h%5],
		CompanySize:      companySizes[h%4],
		IntentScore:      float64(30 + h%66),
		SignalStrength:   float64(40 + h%51),
		EngagementScore:  float64(20 + h%66),
		MaxOutreachSteps: 5,
		Location:         "USA",
	}
}

// SynthesizeHistory returns engagement history for roughly 70% of ids and nil
// for the rest, mirroring the share of companies with prior contact.
func SynthesizeHistory(companyID string, now time.Time) *models.EngagementHistory {
	h := utils.HashUint64(companyID)
	if h%10 <= 2 {
		return nil
	}

	daysAgo := int(h % 31)
	lastContact := now.AddDate(0, 0, -daysAgo)

	return &models.EngagementHistory{
		ResponseRate:             0.1 + float64(h%40)/100.0,
		LastContactTime:          lastContact.Format(time.RFC3339),
		TotalContacts:            1 + int(h%10),
		SuccessfulContacts:       int(h % 6),
		AverageResponseTimeHours: float64(2 + h%71),
	}
}

// SeedCompanies builds the deterministic starter dataset.
func SeedCompanies(count int) []models.CompanyProfile {
	companies := make([]models.CompanyProfile, 0, count)
	for i := 1; i <= count; i++ {
		id := fmt.Sprintf("company_%d", i)
		profile := SynthesizeCompany(id)
		profile.Name = fmt.Sprintf("Company %d", i)
		companies = append(companies, profile)
	}
	return companies
}

// MatchesQuery reports whether a company matches a name/industry search.
func MatchesQuery(c models.CompanyProfile, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Industry), q)
}
