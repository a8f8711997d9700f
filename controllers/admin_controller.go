package controllers

import (
	"github.com/gin-gonic/gin"

	"rescueradar/models"
	"rescueradar/services"
	"rescueradar/utils"
)

// HubStatsProvider exposes live feed counters
type HubStatsProvider interface {
	GetStats() models.WSHubStats
}

type AdminController struct {
	submissions *services.ReportSubmissionService
	hub         HubStatsProvider
	development bool
}

func NewAdminController(submissions *services.ReportSubmissionService, hub HubStatsProvider, development bool) *AdminController {
	return &AdminController{
		submissions: submissions,
		hub:         hub,
		development: development,
	}
}

// GetReport returns the full stored report
// @Summary Get report
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} models.APIResponse{data=models.Report}
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.APIResponse
// @Router /admin/reports/{id} [get]
func (ac *AdminController) GetReport(c *gin.Context) {
	report, err := ac.submissions.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load report", ac.development)
		return
	}

	utils.SuccessResponse(c, "Report retrieved successfully", report)
}

// @Summary Live feed statistics
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.WSHubStats}
// @Router /admin/ws/stats [get]
func (ac *AdminController) WebSocketStats(c *gin.Context) {
	utils.SuccessResponse(c, "Live feed statistics", ac.hub.GetStats())
}
