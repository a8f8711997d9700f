package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rescueradar/models"
	"rescueradar/services"
	"rescueradar/utils"
)

type ReportController struct {
	submissions *services.ReportSubmissionService
	development bool
}

func NewReportController(submissions *services.ReportSubmissionService, development bool) *ReportController {
	return &ReportController{
		submissions: submissions,
		development: development,
	}
}

// SubmitReport runs the complete report workflow
// @Summary Submit report
// @Description Analyze, save, notify and generate a QR code for a new report
// @Tags Reports
// @Accept json
// @Produce json
// @Param request body models.SubmitReportRequest true "Report data"
// @Success 200 {object} models.SubmitReportResponse
// @Failure 400 {object} models.APIResponse
// @Failure 500 {object} models.SubmitReportResponse
// @Router /report [post]
func (rc *ReportController) SubmitReport(c *gin.Context) {
	var req models.SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	result, err := rc.submissions.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to submit report", rc.development)
		return
	}

	if !result.Success() {
		c.JSON(http.StatusInternalServerError, models.SubmitReportResponse{
			Success:  false,
			Message:  "Report submission failed or incomplete",
			Workflow: result,
		})
		return
	}

	c.JSON(http.StatusOK, models.SubmitReportResponse{
		Success:   true,
		Message:   "Report submitted successfully",
		ReportID:  result.ReportID,
		Workflow:  result,
		QRCodeURL: result.QRCodeURL,
	})
}

// SaveReport persists a report without the AI, notification and QR steps
// @Summary Save report
// @Tags Reports
// @Accept json
// @Produce json
// @Param request body models.SubmitReportRequest true "Report data"
// @Success 200 {object} models.SaveReportResponse
// @Failure 400 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse
// @Router /save-report [post]
func (rc *ReportController) SaveReport(c *gin.Context) {
	var req models.SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	report, err := rc.submissions.Save(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Internal server error", rc.development)
		return
	}

	c.JSON(http.StatusOK, models.SaveReportResponse{
		Success:  true,
		ReportID: report.ID,
		Data:     report,
		Message:  "Report saved successfully",
	})
}
