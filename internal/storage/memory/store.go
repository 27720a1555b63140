package memory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/internal/storage"
	"github.com/rishibpanchal/ReachIQ/internal/storage/models"
	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

// Store is the seeded in-memory data provider. Unknown ids are synthesized
// deterministically on first lookup so every id resolves to a stable profile.
type Store struct {
	mu        sync.RWMutex
	companies map[string]models.CompanyProfile
	order     []string
}

func NewStore(seedCount int) *Store {
	s := &Store{
		companies: make(map[string]models.CompanyProfile),
	}

	for _, c := range storage.SeedCompanies(seedCount) {
		s.companies[c.ID] = c
		s.order = append(s.order, c.ID)
	}

	logger.Info("In-memory store seeded", zap.Int("companies", len(s.order)))
	return s
}

func (s *Store) GetCompany(ctx context.Context, companyID string) (*models.CompanyProfile, error) {
	resolved, err := storage.ResolveCompanyID(companyID)
	if err != nil {
		logger.Warn("Unresolvable company id", zap.String("company_id", companyID), zap.Error(err))
		return nil, nil
	}

	s.mu.RLock()
	company, ok := s.companies[resolved]
	s.mu.RUnlock()
	if ok {
		return &company, nil
	}

	logger.Info("Synthesizing company profile", zap.String("company_id", resolved))
	company = storage.SynthesizeCompany(resolved)

	s.mu.Lock()
	if existing, ok := s.companies[resolved]; ok {
		company = existing
	} else {
		s.companies[resolved] = company
		s.order = append(s.order, resolved)
	}
	s.mu.Unlock()

	return &company, nil
}

func (s *Store) GetHistory(ctx context.Context, companyID string) (*models.EngagementHistory, error) {
	resolved, err := storage.ResolveCompanyID(companyID)
	if err != nil {
		return nil, nil
	}
	return storage.SynthesizeHistory(resolved, time.Now()), nil
}

func (s *Store) ListCompanies(ctx context.Context) ([]models.CompanyProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	companies := make([]models.CompanyProfile, 0, len(s.order))
	for _, id := range s.order {
		companies = append(companies, s.companies[id])
	}
	return companies, nil
}

func (s *Store) SearchCompanies(ctx context.Context, query string, limit int) ([]models.CompanyProfile, error) {
	all, err := s.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}

	var results []models.CompanyProfile
	for _, c := range all {
		if storage.MatchesQuery(c, query) {
			results = append(results, c)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

func (s *Store) Close() error {
	return nil
}
