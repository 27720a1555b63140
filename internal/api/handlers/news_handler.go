package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/internal/cache/redis"
	"github.com/rishibpanchal/ReachIQ/internal/metrics"
	"github.com/rishibpanchal/ReachIQ/internal/news"
	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

const newsCacheTTL = 10 * time.Minute

type NewsHandler struct {
	client *news.Client
	cache  *redis.Client
}

func NewNewsHandler(client *news.Client, cache *redis.Client) *NewsHandler {
	return &NewsHandler{client: client, cache: cache}
}

func (h *NewsHandler) GetWorldNews(c *fiber.Ctx) error {
	if h.cache != nil {
		var cached []news.Article
		hit, err := h.cache.GetNews(c.Context(), "world", &cached)
		if err != nil {
			logger.Warn("News cache lookup failed", zap.Error(err))
		}
		if hit {
			metrics.CacheHits.WithLabelValues("news").Inc()
			return c.JSON(fiber.Map{
				"status": "success",
				"data": fiber.Map{
					"articles": cached,
					"total":    len(cached),
				},
			})
		}
		metrics.CacheMisses.WithLabelValues("news").Inc()
	}

	articles, err := h.client.WorldFeed(c.Context())
	if err != nil {
		metrics.NewsFetches.WithLabelValues("error").Inc()

		if errors.Is(err, news.ErrNotConfigured) {
			return c.JSON(fiber.Map{
				"status": "success",
				"data": fiber.Map{
					"articles": []news.Article{},
					"total":    0,
					"error":    "News API key not configured",
				},
			})
		}

		logger.Error("Failed to fetch world news", zap.Error(err))
		return c.JSON(fiber.Map{
			"status": "success",
			"data": fiber.Map{
				"articles": []news.Article{},
				"total":    0,
				"error":    err.Error(),
			},
		})
	}

	metrics.NewsFetches.WithLabelValues("success").Inc()

	if h.cache != nil {
		if err := h.cache.SetNews(c.Context(), "world", articles, newsCacheTTL); err != nil {
			logger.Warn("Failed to cache news", zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data": fiber.Map{
			"articles": articles,
			"total":    len(articles),
		},
	})
}
