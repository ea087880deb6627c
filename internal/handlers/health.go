package handlers

import (
	"github.com/barangay-konek/portal-api/internal/cache"
	"github.com/barangay-konek/portal-api/internal/config"
	"github.com/barangay-konek/portal-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthHandler reports service and collaborator health.
type HealthHandler struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Store cache.Cache
}

// Check handles GET /health
// @Summary Service health
// @Description Probes the database, Authorizer, and cache
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Cfg, h.DB, h.Store)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
