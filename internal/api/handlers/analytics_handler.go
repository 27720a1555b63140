package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/internal/cache/redis"
	"github.com/rishibpanchal/ReachIQ/internal/growth"
	"github.com/rishibpanchal/ReachIQ/internal/metrics"
	"github.com/rishibpanchal/ReachIQ/internal/storage"
	"github.com/rishibpanchal/ReachIQ/internal/storage/models"
	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

const maxBatchCompanies = 50

type AnalyticsHandler struct {
	pipeline *growth.Pipeline
	store    storage.Store
	cache    *redis.Client
}

func NewAnalyticsHandler(pipeline *growth.Pipeline, store storage.Store, cache *redis.Client) *AnalyticsHandler {
	return &AnalyticsHandler{
		pipeline: pipeline,
		store:    store,
		cache:    cache,
	}
}

// legacySequence is the fixed plan used by the per-company GET endpoint. The
// follow-up stages are encoded as distinct channels rather than stage types,
// which older clients expect.
func legacySequence() []growth.SequenceStage {
	return []growth.SequenceStage{
		{Step: 1, Channel: "LinkedIn", Type: growth.StageInitial},
		{Step: 2, Channel: "LinkedIn Followup", Type: growth.StageInitial},
		{Step: 3, Channel: "Email", Type: growth.StageInitial},
		{Step: 4, Channel: "Email Followup", Type: growth.StageInitial},
	}
}

func (h *AnalyticsHandler) GetGrowthCurve(c *fiber.Ctx) error {
	companyID := c.Params("companyID")

	resolved, err := storage.ResolveCompanyID(companyID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid company ID",
		})
	}

	if h.cache != nil {
		var cached growth.Prediction
		hit, err := h.cache.GetPrediction(c.Context(), resolved, &cached)
		if err != nil {
			logger.Warn("Prediction cache lookup failed", zap.Error(err))
		}
		if hit {
			metrics.CacheHits.WithLabelValues("prediction").Inc()
			return c.JSON(fiber.Map{
				"status": "success",
				"data":   cached,
			})
		}
		metrics.CacheMisses.WithLabelValues("prediction").Inc()
	}

	logger.Info("Fetching growth curve", zap.String("company_id", resolved))

	profile, err := h.store.GetCompany(c.Context(), resolved)
	if err != nil {
		logger.Error("Failed to load company", zap.String("company_id", resolved), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error computing growth curve",
		})
	}
	if profile == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Company " + companyID + " not found",
		})
	}

	history, err := h.store.GetHistory(c.Context(), resolved)
	if err != nil {
		logger.Warn("Failed to load history, predicting without it",
			zap.String("company_id", resolved),
			zap.Error(err),
		)
		history = nil
	}

	prediction := h.predict(*profile, history, legacySequence())

	if h.cache != nil {
		if err := h.cache.SetPrediction(c.Context(), resolved, prediction); err != nil {
			logger.Warn("Failed to cache prediction", zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   prediction,
	})
}

func (h *AnalyticsHandler) PredictCustom(c *fiber.Ctx) error {
	var req struct {
		CompanyProfile   models.CompanyProfile     `json:"company_profile"`
		OutreachSequence []growth.SequenceStage    `json:"outreach_sequence"`
		HistoricalData   *models.EngagementHistory `json:"historical_data"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse custom prediction request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	logger.Info("Processing custom growth curve prediction")

	if req.CompanyProfile.ID == "" {
		req.CompanyProfile.ID = "custom"
	}

	prediction := h.predict(req.CompanyProfile, req.HistoricalData, req.OutreachSequence)

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   prediction,
	})
}

func (h *AnalyticsHandler) BatchGrowthCurves(c *fiber.Ctx) error {
	var req struct {
		CompanyIDs []string `json:"company_ids"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if len(req.CompanyIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "company_ids is required",
		})
	}
	if len(req.CompanyIDs) > maxBatchCompanies {
		req.CompanyIDs = req.CompanyIDs[:maxBatchCompanies]
	}

	logger.Info("Processing batch growth curves", zap.Int("companies", len(req.CompanyIDs)))
	metrics.BatchSize.Observe(float64(len(req.CompanyIDs)))

	profiles := make([]models.CompanyProfile, 0, len(req.CompanyIDs))
	for _, companyID := range req.CompanyIDs {
		resolved, err := storage.ResolveCompanyID(companyID)
		if err != nil {
			logger.Warn("Skipping invalid company ID", zap.String("company_id", companyID))
			continue
		}

		profile, err := h.store.GetCompany(c.Context(), resolved)
		if err != nil || profile == nil {
			logger.Warn("Skipping company without profile", zap.String("company_id", resolved))
			continue
		}
		profiles = append(profiles, *profile)
	}

	predictions := h.pipeline.BatchPredict(c.Context(), profiles)

	return c.JSON(fiber.Map{
		"status": "success",
		"data": fiber.Map{
			"predictions": predictions,
			"count":       len(predictions),
		},
	})
}

func (h *AnalyticsHandler) GetTopChannels(c *fiber.Ctx) error {
	companyID := c.Params("companyID")

	resolved, err := storage.ResolveCompanyID(companyID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid company ID",
		})
	}

	numChannels := c.QueryInt("num_channels", 2)

	profile, err := h.store.GetCompany(c.Context(), resolved)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error ranking channels",
		})
	}
	if profile == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Company " + companyID + " not found",
		})
	}

	history, err := h.store.GetHistory(c.Context(), resolved)
	if err != nil {
		history = nil
	}

	channels := h.pipeline.PredictTopChannels(*profile, history, numChannels)
	if len(channels) > 0 {
		metrics.ChannelSelected.WithLabelValues(channels[0].Name).Inc()
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data": fiber.Map{
			"company_id": resolved,
			"channels":   channels,
		},
	})
}

// OptimizationInsights aggregates stopping behavior across the stored
// companies, grouped into intent bands.
func (h *AnalyticsHandler) OptimizationInsights(c *fiber.Ctx) error {
	companies, err := h.store.ListCompanies(c.Context())
	if err != nil {
		logger.Error("Failed to list companies", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error getting insights",
		})
	}

	type band struct {
		count         int
		stoppingSum   float64
		conversionSum float64
	}
	bands := map[string]*band{
		"High Intent":   {},
		"Medium Intent": {},
		"Low Intent":    {},
	}

	totalStopping := 0.0
	totalROI := 0.0
	stoppingCounts := make(map[int]int)

	for _, profile := range companies {
		prediction := h.pipeline.PredictGrowthCurve(profile, nil, nil, true)
		if prediction.Error != "" {
			continue
		}

		name := intentBand(profile.IntentScore)
		b := bands[name]
		b.count++
		b.stoppingSum += float64(prediction.OptimalStoppingPoint)
		b.conversionSum += prediction.ExpectedTotalResponseProbability

		totalStopping += float64(prediction.OptimalStoppingPoint)
		totalROI += prediction.ROIScore
		stoppingCounts[prediction.OptimalStoppingPoint]++
	}

	total := 0
	for _, b := range bands {
		total += b.count
	}
	if total == 0 {
		return c.JSON(fiber.Map{
			"status": "success",
			"data": fiber.Map{
				"average_optimal_step": 0,
				"total_predictions":    0,
				"insights":             []fiber.Map{},
			},
		})
	}

	mostCommon, mostCommonCount := 0, 0
	for step, count := range stoppingCounts {
		if count > mostCommonCount || (count == mostCommonCount && step < mostCommon) {
			mostCommon, mostCommonCount = step, count
		}
	}

	insights := make([]fiber.Map, 0, len(bands))
	for _, name := range []string{"High Intent", "Medium Intent", "Low Intent"} {
		b := bands[name]
		if b.count == 0 {
			continue
		}
		insights = append(insights, fiber.Map{
			"category":               name,
			"average_stopping_point": roundTo(b.stoppingSum/float64(b.count), 1),
			"conversion_rate":        roundTo(b.conversionSum/float64(b.count), 2),
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data": fiber.Map{
			"average_optimal_step":       roundTo(totalStopping/float64(total), 1),
			"most_common_stopping_point": mostCommon,
			"average_roi_score":          roundTo(totalROI/float64(total), 2),
			"total_predictions":          total,
			"insights":                   insights,
		},
	})
}

func (h *AnalyticsHandler) predict(profile models.CompanyProfile, history *models.EngagementHistory, sequence []growth.SequenceStage) growth.Prediction {
	start := time.Now()
	prediction := h.pipeline.PredictGrowthCurve(profile, history, sequence, true)
	metrics.PredictionDuration.WithLabelValues("single").Observe(time.Since(start).Seconds())

	if prediction.Error != "" {
		metrics.PredictionTotal.WithLabelValues("error").Inc()
	} else {
		metrics.PredictionTotal.WithLabelValues("success").Inc()
		metrics.OptimalStoppingStep.Observe(float64(prediction.OptimalStoppingPoint))
		metrics.ROIScore.Observe(prediction.ROIScore)
	}

	return prediction
}

func intentBand(intentScore float64) string {
	switch {
	case intentScore >= 75:
		return "High Intent"
	case intentScore >= 50:
		return "Medium Intent"
	default:
		return "Low Intent"
	}
}

func roundTo(v float64, digits int) float64 {
	scale := 1.0
	for i := 0; i < digits; i++ {
		scale *= 10
	}
	return float64(int(v*scale+0.5)) / scale
}
