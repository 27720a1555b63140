package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// SetPrediction caches a serialized growth-curve prediction under the
// company's cache key.
func (c *Client) SetPrediction(ctx context.Context, companyID string, prediction interface{}) error {
	data, err := json.Marshal(prediction)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}

	err = c.client.Set(ctx, fmt.Sprintf("prediction:%s", companyID), data, c.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set prediction cache: %w", err)
	}

	logger.Debug("Prediction cached", zap.String("company_id", companyID), zap.Duration("ttl", c.ttl))
	return nil
}

// GetPrediction loads a cached prediction into prediction. The boolean
// reports whether the key existed.
func (c *Client) GetPrediction(ctx context.Context, companyID string, prediction interface{}) (bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf("prediction:%s", companyID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get prediction cache: %w", err)
	}

	err = json.Unmarshal(data, prediction)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal prediction: %w", err)
	}

	logger.Debug("Prediction cache hit", zap.String("company_id", companyID))
	return true, nil
}

// InvalidatePredictions drops every cached prediction, for when the model or
// company data has been reloaded.
func (c *Client) InvalidatePredictions(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "prediction:*", 0).Iterator()
	for iter.Next(ctx) {
		err := c.client.Del(ctx, iter.Val()).Err()
		if err != nil {
			logger.Warn("Failed to delete cache key", zap.Error(err))
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to iterate cache keys: %w", err)
	}

	logger.Info("Prediction cache invalidated")
	return nil
}

// SetNews caches a news feed payload under a feed name, with a shorter TTL
// than predictions since upstream articles churn.
func (c *Client) SetNews(ctx context.Context, feed string, articles interface{}, ttl time.Duration) error {
	data, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("failed to marshal articles: %w", err)
	}

	err = c.client.Set(ctx, fmt.Sprintf("news:%s", feed), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set news cache: %w", err)
	}

	logger.Debug("News cached", zap.String("feed", feed))
	return nil
}

func (c *Client) GetNews(ctx context.Context, feed string, articles interface{}) (bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf("news:%s", feed)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get news cache: %w", err)
	}

	err = json.Unmarshal(data, articles)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal articles: %w", err)
	}

	logger.Debug("News cache hit", zap.String("feed", feed))
	return true, nil
}
