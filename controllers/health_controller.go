package controllers

import (
	"github.com/gin-gonic/gin"

	"rescueradar/services"
)

type HealthController struct {
	health *services.HealthService
}

func NewHealthController(health *services.HealthService) *HealthController {
	return &HealthController{health: health}
}

// Health reports per-service configuration and store reachability
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Success 206 {object} models.HealthResponse "Degraded"
// @Router /health [get]
func (hc *HealthController) Health(c *gin.Context) {
	resp, status := hc.health.Check(c.Request.Context())
	c.JSON(status, resp)
}
