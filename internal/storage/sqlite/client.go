package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/internal/storage"
	"github.com/rishibpanchal/ReachIQ/internal/storage/models"
	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

// Client is the SQLite-backed data provider. Same contract as the in-memory
// store: unknown ids are synthesized deterministically and persisted.
type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema(seedCount int) error {
	schema := `
	CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		industry TEXT NOT NULL,
		company_size TEXT NOT NULL,
		intent_score REAL NOT NULL,
		signal_strength REAL NOT NULL,
		engagement_score REAL NOT NULL,
		max_outreach_steps INTEGER NOT NULL,
		location TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_companies_industry ON companies(industry);
	CREATE INDEX IF NOT EXISTS idx_companies_size ON companies(company_size);

	CREATE TABLE IF NOT EXISTS engagement_history (
		company_id TEXT PRIMARY KEY,
		response_rate REAL NOT NULL,
		last_contact_time TEXT,
		total_contacts INTEGER NOT NULL,
		successful_contacts INTEGER NOT NULL,
		avg_response_time_hours REAL,
		FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS channel_performance (
		company_id TEXT NOT NULL,
		channel TEXT NOT NULL,
		response_rate REAL NOT NULL,
		PRIMARY KEY (company_id, channel),
		FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE CASCADE
	);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	var count int
	err = c.db.QueryRow("SELECT COUNT(*) FROM companies").Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count companies: %w", err)
	}

	if count == 0 && seedCount > 0 {
		if err := c.seed(seedCount); err != nil {
			return fmt.Errorf("failed to seed companies: %w", err)
		}
		logger.Info("SQLite store seeded", zap.Int("companies", seedCount))
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) seed(count int) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, company := range storage.SeedCompanies(count) {
		if err := insertCompany(tx, company); err != nil {
			return err
		}
		if history := storage.SynthesizeHistory(company.ID, time.Now()); history != nil {
			if err := insertHistory(tx, company.ID, history); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func insertCompany(e execer, company models.CompanyProfile) error {
	query := `
		INSERT INTO companies (id, name, industry, company_size, intent_score, signal_strength,
			engagement_score, max_outreach_steps, location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`

	_, err := e.Exec(
		query,
		company.ID,
		company.Name,
		company.Industry,
		company.CompanySize,
		company.IntentScore,
		company.SignalStrength,
		company.EngagementScore,
		company.MaxOutreachSteps,
		company.Location,
	)
	if err != nil {
		return fmt.Errorf("failed to insert company: %w", err)
	}
	return nil
}

func insertHistory(e execer, companyID string, history *models.EngagementHistory) error {
	query := `
		INSERT INTO engagement_history (company_id, response_rate, last_contact_time,
			total_contacts, successful_contacts, avg_response_time_hours)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(company_id) DO NOTHING
	`

	_, err := e.Exec(
		query,
		companyID,
		history.ResponseRate,
		history.LastContactTime,
		history.TotalContacts,
		history.SuccessfulContacts,
		history.AverageResponseTimeHours,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history: %w", err)
	}
	return nil
}

func (c *Client) GetCompany(ctx context.Context, companyID string) (*models.CompanyProfile, error) {
	resolved, err := storage.ResolveCompanyID(companyID)
	if err != nil {
		logger.Warn("Unresolvable company id", zap.String("company_id", companyID), zap.Error(err))
		return nil, nil
	}

	company, err := c.queryCompany(ctx, resolved)
	if err != nil {
		return nil, err
	}
	if company != nil {
		return company, nil
	}

	logger.Info("Synthesizing company profile", zap.String("company_id", resolved))
	synthesized := storage.SynthesizeCompany(resolved)
	if err := insertCompany(c.db, synthesized); err != nil {
		return nil, err
	}
	if history := storage.SynthesizeHistory(resolved, time.Now()); history != nil {
		if err := insertHistory(c.db, resolved, history); err != nil {
			return nil, err
		}
	}

	return &synthesized, nil
}

func (c *Client) queryCompany(ctx context.Context, id string) (*models.CompanyProfile, error) {
	query := `
		SELECT id, name, industry, company_size, intent_score, signal_strength,
			engagement_score, max_outreach_steps, location
		FROM companies WHERE id = ?
	`

	var company models.CompanyProfile
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.Industry,
		&company.CompanySize,
		&company.IntentScore,
		&company.SignalStrength,
		&company.EngagementScore,
		&company.MaxOutreachSteps,
		&company.Location,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	return &company, nil
}

func (c *Client) GetHistory(ctx context.Context, companyID string) (*models.EngagementHistory, error) {
	resolved, err := storage.ResolveCompanyID(companyID)
	if err != nil {
		return nil, nil
	}

	query := `
		SELECT response_rate, last_contact_time, total_contacts, successful_contacts,
			avg_response_time_hours
		FROM engagement_history WHERE company_id = ?
	`

	var history models.EngagementHistory
	var lastContact sql.NullString
	var avgHours sql.NullFloat64

	err = c.db.QueryRowContext(ctx, query, resolved).Scan(
		&history.ResponseRate,
		&lastContact,
		&history.TotalContacts,
		&history.SuccessfulContacts,
		&avgHours,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	history.LastContactTime = lastContact.String
	history.AverageResponseTimeHours = avgHours.Float64

	perf, err := c.queryChannelPerformance(ctx, resolved)
	if err != nil {
		return nil, err
	}
	history.ChannelPerformance = perf

	return &history, nil
}

func (c *Client) queryChannelPerformance(ctx context.Context, companyID string) (map[string]models.ChannelPerformance, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT channel, response_rate FROM channel_performance WHERE company_id = ?`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel performance: %w", err)
	}
	defer rows.Close()

	var perf map[string]models.ChannelPerformance
	for rows.Next() {
		var channel string
		var rate float64
		if err := rows.Scan(&channel, &rate); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if perf == nil {
			perf = make(map[string]models.ChannelPerformance)
		}
		perf[channel] = models.ChannelPerformance{ResponseRate: rate}
	}

	return perf, rows.Err()
}

func (c *Client) ListCompanies(ctx context.Context) ([]models.CompanyProfile, error) {
	query := `
		SELECT id, name, industry, company_size, intent_score, signal_strength,
			engagement_score, max_outreach_steps, location
		FROM companies ORDER BY rowid
	`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []models.CompanyProfile
	for rows.Next() {
		var company models.CompanyProfile
		err := rows.Scan(
			&company.ID,
			&company.Name,
			&company.Industry,
			&company.CompanySize,
			&company.IntentScore,
			&company.SignalStrength,
			&company.EngagementScore,
			&company.MaxOutreachSteps,
			&company.Location,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		companies = append(companies, company)
	}

	return companies, rows.Err()
}

func (c *Client) SearchCompanies(ctx context.Context, query string, limit int) ([]models.CompanyProfile, error) {
	all, err := c.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}

	var results []models.CompanyProfile
	for _, company := range all {
		if storage.MatchesQuery(company, query) {
			results = append(results, company)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}
