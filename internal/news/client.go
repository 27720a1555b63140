package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/pkg/circuitbreaker"
	"github.com/rishibpanchal/ReachIQ/pkg/logger"
	"github.com/rishibpanchal/ReachIQ/pkg/retry"
)

// ErrNotConfigured means no GNews API key was provided.
var ErrNotConfigured = errors.New("gnews api key not configured")

// Article is a normalized news article for the dashboard feed.
type Article struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Image       string   `json:"image"`
	PublishedAt string   `json:"publishedAt"`
	Source      string   `json:"source"`
	SourceURL   string   `json:"sourceUrl"`
	Category    string   `json:"category"`
	Entities    []string `json:"entities,omitempty"`
}

type gnewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

type gnewsResponse struct {
	Articles []gnewsArticle  `json:"articles"`
	Errors   json.RawMessage `json:"errors"`
}

// headlinePlan fixes which categories feed the world view and how many
// articles each contributes before deduplication.
var headlinePlan = []struct {
	category string
	max      int
}{
	{"general", 6},
	{"business", 5},
	{"technology", 4},
	{"world", 4},
	{"science", 4},
	{"health", 4},
	{"entertainment", 3},
}

// searchTerms pull in industry-relevant coverage beyond the headline
// categories. Kept to two queries to stay inside upstream rate limits.
var searchTerms = []string{"B2B marketing", "digital marketing"}

// Client fetches and normalizes articles from the GNews API. Upstream calls
// go through a retry policy and a circuit breaker so a flaky feed cannot
// stall request handling.
type Client struct {
	apiKey      string
	baseURL     string
	maxArticles int
	httpClient  *http.Client
	breaker     *circuitbreaker.CircuitBreaker
	retryCfg    retry.Config
	enricher    *Enricher
}

func NewClient(apiKey, baseURL string, maxArticles int, timeout time.Duration, enricher *Enricher) *Client {
	if maxArticles <= 0 {
		maxArticles = 24
	}

	return &Client{
		apiKey:      apiKey,
		baseURL:     baseURL,
		maxArticles: maxArticles,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: circuitbreaker.NewCircuitBreaker("gnews", circuitbreaker.Config{
			FailureThreshold: 5,
			SuccessThreshold: 2,
			Cooloff:          30 * time.Second,
		}),
		retryCfg: retry.Config{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2.0,
		},
		enricher: enricher,
	}
}

// WorldFeed aggregates headlines across the category plan plus the industry
// search terms, dedupes by URL, and returns the newest articles first. A
// partial upstream failure still returns the articles that did load.
func (c *Client) WorldFeed(ctx context.Context) ([]Article, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	articles := make([]Article, 0, c.maxArticles)
	seen := make(map[string]bool)
	var firstErr error

	appendArticles := func(fetched []gnewsArticle, category string) {
		for _, a := range fetched {
			if a.URL == "" || seen[a.URL] {
				continue
			}
			seen[a.URL] = true
			articles = append(articles, normalizeArticle(a, category))
		}
	}

	for _, plan := range headlinePlan {
		fetched, err := c.fetch(ctx, "top-headlines", url.Values{
			"category": {plan.category},
			"lang":     {"en"},
			"max":      {fmt.Sprintf("%d", plan.max)},
		})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			logger.Warn("Headline fetch failed",
				zap.String("category", plan.category),
				zap.Error(err),
			)
			continue
		}
		appendArticles(fetched, plan.category)
	}

	for _, term := range searchTerms {
		fetched, err := c.fetch(ctx, "search", url.Values{
			"q":    {term},
			"lang": {"en"},
			"max":  {"4"},
		})
		if err != nil {
			logger.Warn("Search fetch failed", zap.String("term", term), zap.Error(err))
			continue
		}
		appendArticles(fetched, "industry")
	}

	if len(articles) == 0 && firstErr != nil {
		return nil, firstErr
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt > articles[j].PublishedAt
	})
	if len(articles) > c.maxArticles {
		articles = articles[:c.maxArticles]
	}

	if c.enricher != nil {
		c.enricher.EnrichAll(ctx, articles)
	}

	logger.Info("World feed assembled", zap.Int("articles", len(articles)))
	return articles, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) ([]gnewsArticle, error) {
	params.Set("apikey", c.apiKey)
	requestURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	var fetched []gnewsArticle
	err := c.breaker.Execute(ctx, func() error {
		result, err := retry.DoWithResult(ctx, c.retryCfg, func() ([]gnewsArticle, error) {
			return c.doRequest(ctx, requestURL)
		})
		if err != nil {
			return err
		}
		fetched = result
		return nil
	})

	return fetched, err
}

func (c *Client) doRequest(ctx context.Context, requestURL string) ([]gnewsArticle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "ReachIQ/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gnews returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed gnewsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Errors) > 0 && string(parsed.Errors) != "null" {
		return nil, fmt.Errorf("gnews returned error: %s", truncate(string(parsed.Errors), 200))
	}

	return parsed.Articles, nil
}

func normalizeArticle(a gnewsArticle, category string) Article {
	id := a.URL
	if id == "" {
		id = a.Title
	}

	source := a.Source.Name
	if source == "" {
		source = "Unknown"
	}

	return Article{
		ID:          truncate(id, 100),
		Title:       a.Title,
		Description: a.Description,
		URL:         a.URL,
		Image:       a.Image,
		PublishedAt: a.PublishedAt,
		Source:      source,
		SourceURL:   a.Source.URL,
		Category:    category,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
