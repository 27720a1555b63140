package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PredictionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reachiq_prediction_duration_seconds",
			Help:    "Growth prediction duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"prediction_type"},
	)

	PredictionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reachiq_prediction_total",
			Help: "Total number of growth predictions",
		},
		[]string{"status"},
	)

	OptimalStoppingStep = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reachiq_optimal_stopping_step",
			Help:    "Distribution of recommended stopping steps",
			Buckets: []float64{1, 2, 3, 4, 5, 6},
		},
	)

	ROIScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reachiq_roi_score",
			Help:    "Distribution of prediction ROI scores",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	ChannelSelected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reachiq_channel_selected_total",
			Help: "Total times a channel was ranked primary",
		},
		[]string{"channel"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reachiq_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reachiq_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	NewsFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reachiq_news_fetches_total",
			Help: "Total upstream news fetches",
		},
		[]string{"status"},
	)

	BatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reachiq_batch_size",
			Help:    "Number of companies per batch prediction request",
			Buckets: []float64{1, 5, 10, 20, 50},
		},
	)
)

func Init() {
	prometheus.MustRegister(PredictionDuration)
	prometheus.MustRegister(PredictionTotal)
	prometheus.MustRegister(OptimalStoppingStep)
	prometheus.MustRegister(ROIScore)
	prometheus.MustRegister(ChannelSelected)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(NewsFetches)
	prometheus.MustRegister(BatchSize)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
