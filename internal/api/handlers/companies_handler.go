package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/internal/storage"
	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

type CompaniesHandler struct {
	store storage.Store
}

func NewCompaniesHandler(store storage.Store) *CompaniesHandler {
	return &CompaniesHandler{store: store}
}

func (h *CompaniesHandler) ListCompanies(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	if search := c.Query("search"); search != "" {
		companies, err := h.store.SearchCompanies(c.Context(), search, limit)
		if err != nil {
			logger.Error("Company search failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error fetching companies",
			})
		}

		return c.JSON(fiber.Map{
			"status": "success",
			"data": fiber.Map{
				"companies": companies,
				"total":     len(companies),
				"page":      page,
				"limit":     limit,
			},
		})
	}

	all, err := h.store.ListCompanies(c.Context())
	if err != nil {
		logger.Error("Failed to list companies", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error fetching companies",
		})
	}

	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data": fiber.Map{
			"companies": all[start:end],
			"total":     len(all),
			"page":      page,
			"limit":     limit,
		},
	})
}

func (h *CompaniesHandler) GetCompany(c *fiber.Ctx) error {
	companyID := c.Params("companyID")

	resolved, err := storage.ResolveCompanyID(companyID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid company ID",
		})
	}

	company, err := h.store.GetCompany(c.Context(), resolved)
	if err != nil {
		logger.Error("Failed to fetch company", zap.String("company_id", resolved), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error fetching company",
		})
	}
	if company == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Company " + companyID + " not found",
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   company,
	})
}
