package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rescueradar/models"
	"rescueradar/services"
	"rescueradar/utils"
)

type AIController struct {
	ai          *services.AIService
	validator   *utils.ValidationService
	development bool
}

func NewAIController(ai *services.AIService, development bool) *AIController {
	return &AIController{
		ai:          ai,
		validator:   utils.NewValidationService(),
		development: development,
	}
}

// Analyze classifies a report description with the language model
// @Summary AI analysis
// @Tags AI
// @Accept json
// @Produce json
// @Param request body models.AnalysisRequest true "Report text"
// @Success 200 {object} models.AnalysisResponse
// @Failure 400 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse
// @Router /ai-analysis [post]
func (ac *AIController) Analyze(c *gin.Context) {
	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	trim(&req.Description, &req.Location, &req.ImageURL, &req.AnimalType, &req.SituationType)
	if !validate(c, ac.validator, &req) {
		return
	}

	analysis, fallback, err := ac.ai.Analyze(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to analyze report", ac.development)
		return
	}

	c.JSON(http.StatusOK, models.AnalysisResponse{
		Success:     true,
		Analysis:    analysis,
		AIModel:     ac.ai.Model(),
		Fallback:    fallback,
		ProcessedAt: time.Now().UTC(),
	})
}
