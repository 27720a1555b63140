package news

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	prose "github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

// Enricher fills missing article descriptions from page metadata and tags
// organizations, people, and places named in headlines.
type Enricher struct {
	httpClient *http.Client
}

func NewEnricher(timeout time.Duration) *Enricher {
	return &Enricher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// EnrichAll mutates the slice in place. Enrichment is best-effort: a failed
// scrape or tag leaves the article as fetched.
func (e *Enricher) EnrichAll(ctx context.Context, articles []Article) {
	for i := range articles {
		if articles[i].Description == "" && articles[i].URL != "" {
			if desc, err := e.scrapeDescription(ctx, articles[i].URL); err == nil {
				articles[i].Description = desc
			} else {
				logger.Debug("Description scrape failed",
					zap.String("url", articles[i].URL),
					zap.Error(err),
				)
			}
		}

		articles[i].Entities = extractEntities(articles[i].Title)
	}
}

// scrapeDescription pulls the page's meta description, preferring the
// Open Graph tag.
func (e *Enricher) scrapeDescription(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "ReachIQ/1.0")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok && desc != "" {
		return strings.TrimSpace(desc), nil
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok && desc != "" {
		return strings.TrimSpace(desc), nil
	}

	return "", nil
}

// extractEntities tags named entities in a headline, deduplicated and in
// order of first appearance.
func extractEntities(headline string) []string {
	if headline == "" {
		return nil
	}

	doc, err := prose.NewDocument(headline)
	if err != nil {
		logger.Debug("Entity tagging failed", zap.Error(err))
		return nil
	}

	seen := make(map[string]bool)
	var entities []string
	for _, ent := range doc.Entities() {
		text := strings.TrimSpace(ent.Text)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		entities = append(entities, text)
	}

	return entities
}
