package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/internal/storage"
	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

type DashboardHandler struct {
	store storage.Store
}

func NewDashboardHandler(store storage.Store) *DashboardHandler {
	return &DashboardHandler{store: store}
}

func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	companies, err := h.store.ListCompanies(c.Context())
	if err != nil {
		logger.Error("Failed to load dashboard stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error fetching dashboard stats",
		})
	}

	var high, medium, low int
	for _, company := range companies {
		switch {
		case company.IntentScore >= 75:
			high++
		case company.IntentScore >= 50:
			medium++
		default:
			low++
		}
	}

	intentDistribution := []fiber.Map{
		{"name": "High Intent", "value": high, "color": "#22c55e"},
		{"name": "Medium Intent", "value": medium, "color": "#eab308"},
		{"name": "Low Intent", "value": low, "color": "#ef4444"},
	}

	// Placeholder series until outreach outcomes are recorded.
	channelEffectiveness := []fiber.Map{
		{"channel": "LinkedIn", "effectiveness": 85, "count": 234},
		{"channel": "Email", "effectiveness": 72, "count": 456},
		{"channel": "Phone", "effectiveness": 91, "count": 123},
		{"channel": "WhatsApp", "effectiveness": 78, "count": 189},
	}

	successRateTrend := []fiber.Map{
		{"date": "Jan", "rate": 32},
		{"date": "Feb", "rate": 38},
		{"date": "Mar", "rate": 42},
		{"date": "Apr", "rate": 45},
		{"date": "May", "rate": 48},
		{"date": "Jun", "rate": 52},
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data": fiber.Map{
			"total_companies":         len(companies),
			"high_intent_companies":   high,
			"medium_intent_companies": medium,
			"low_intent_companies":    low,
			"intent_distribution":     intentDistribution,
			"channel_effectiveness":   channelEffectiveness,
			"success_rate_trend":      successRateTrend,
		},
	})
}
