package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	sqlInjectionPattern = regexp.MustCompile(`(?i)(union|select|insert|update|delete|drop|create|alter|exec|script|javascript|onerror|onload)`)
	xssPattern          = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)
	companyIDPattern    = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)
)

type Config struct {
	MaxBatchSize        int
	MaxBodySize         int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxBatchSize == 0 {
		cfg.MaxBatchSize = 50
	}
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = 1 * 1024 * 1024
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == "POST" || c.Method() == "PUT" {
			contentType := c.Get("Content-Type")
			if contentType != "" {
				allowed := false
				for _, allowedType := range cfg.AllowedContentTypes {
					if strings.Contains(contentType, allowedType) {
						allowed = true
						break
					}
				}
				if !allowed {
					return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
						"error": "Unsupported content type",
					})
				}
			}

			if len(c.Body()) > cfg.MaxBodySize {
				return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
					"error": "Request body too large",
				})
			}
		}

		path := c.Path()

		if strings.HasSuffix(path, "/growth-curve/custom") && c.Method() == "POST" {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			profile, ok := req["company_profile"].(map[string]interface{})
			if !ok || len(profile) == 0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "company_profile is required and must be an object",
				})
			}
		}

		if strings.HasSuffix(path, "/growth-curve/batch") && c.Method() == "POST" {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			ids, ok := req["company_ids"].([]interface{})
			if !ok || len(ids) == 0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "company_ids is required and must be a non-empty array",
				})
			}
			if len(ids) > cfg.MaxBatchSize {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Too many company IDs in batch",
				})
			}
			for _, raw := range ids {
				id, ok := raw.(string)
				if !ok || !companyIDPattern.MatchString(id) {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "Invalid company ID in batch",
					})
				}
			}
		}

		if query := c.Query("q"); query != "" {
			if sqlInjectionPattern.MatchString(query) || xssPattern.MatchString(query) {
				cfg.Logger.Warn("Suspicious search query rejected",
					zap.String("ip", c.IP()),
					zap.String("query", query),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid search query",
				})
			}
		}

		return c.Next()
	}
}
