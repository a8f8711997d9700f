package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"rescueradar/models"
	"rescueradar/repositories"
	"rescueradar/services"
	"rescueradar/utils"
)

type MapController struct {
	feed          *services.FeedService
	places        *services.PlaceService
	submissions   *services.ReportSubmissionService
	notifications *services.NotificationService
	validator     *utils.ValidationService
	development   bool
}

func NewMapController(
	feed *services.FeedService,
	places *services.PlaceService,
	submissions *services.ReportSubmissionService,
	notifications *services.NotificationService,
	development bool,
) *MapController {
	return &MapController{
		feed:          feed,
		places:        places,
		submissions:   submissions,
		notifications: notifications,
		validator:     utils.NewValidationService(),
		development:   development,
	}
}

// ActiveReports lists reports for the map
// @Summary Active reports
// @Tags Map
// @Produce json
// @Param limit query int false "Maximum reports" default(100)
// @Param urgency query string false "Comma-separated urgency levels"
// @Param time_range query string false "all, 24h, 7d or 30d"
// @Param search query string false "Substring over description, location and animal type"
// @Success 200 {object} models.ActiveReportsResponse
// @Router /reports/active [get]
func (mc *MapController) ActiveReports(c *gin.Context) {
	limit := repositories.DefaultListLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
		if limit > repositories.MaxListLimit {
			limit = repositories.MaxListLimit
		}
	}

	timeRange := strings.ToLower(strings.TrimSpace(c.Query("time_range")))
	switch timeRange {
	case "", services.TimeRangeAll, services.TimeRange24h, services.TimeRange7d, services.TimeRange30d:
	default:
		utils.BadRequestResponse(c, "time_range must be one of all, 24h, 7d, 30d")
		return
	}

	filter := models.ReportFilter{
		Urgency:   services.ParseUrgencyList(c.Query("urgency")),
		TimeRange: timeRange,
		Search:    strings.TrimSpace(c.Query("search")),
	}

	c.JSON(http.StatusOK, mc.feed.ActiveReports(c.Request.Context(), filter, limit))
}

// NearbyOrganizations finds rescue organizations within 10 km
// @Summary Nearby organizations
// @Tags Map
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param keyword query string false "Places keyword"
// @Success 200 {object} models.NearbyOrganizationsResponse
// @Failure 400 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /organizations/nearby [get]
func (mc *MapController) NearbyOrganizations(c *gin.Context) {
	var req models.NearbyOrganizationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.BadRequestResponse(c, "lat and lng must be numbers")
		return
	}
	trim(&req.Keyword)
	if !validate(c, mc.validator, &req) {
		return
	}

	orgs, err := mc.places.Nearby(c.Request.Context(), *req.Lat, *req.Lng, req.Keyword)
	if err != nil {
		respondError(c, err, "Failed to fetch nearby organizations", mc.development)
		return
	}

	c.JSON(http.StatusOK, models.NearbyOrganizationsResponse{
		Success:       true,
		Organizations: orgs,
		Total:         len(orgs),
		RadiusKm:      services.OrganizationSearchRadiusMeters / 1000.0,
	})
}

// AlertOrganization emails a chosen organization about a stored report
// @Summary Alert organization
// @Tags Map
// @Accept json
// @Produce json
// @Param request body models.OrganizationAlertRequest true "Alert target"
// @Success 200 {object} models.EmailNotifyResponse
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /organizations/alert [post]
func (mc *MapController) AlertOrganization(c *gin.Context) {
	var req models.OrganizationAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	trim(&req.ReportID, &req.Email, &req.OrganizationName)
	if !validate(c, mc.validator, &req) {
		return
	}

	report, err := mc.submissions.GetReport(c.Request.Context(), req.ReportID)
	if err != nil {
		respondError(c, err, "Failed to load report", mc.development)
		return
	}

	result, err := mc.notifications.SendOrganizationAlert(c.Request.Context(), report, req)
	if err != nil {
		respondError(c, err, "Failed to send organization alert", mc.development)
		return
	}

	c.JSON(http.StatusOK, models.EmailNotifyResponse{
		Success:   true,
		EmailSent: true,
		Details:   result,
	})
}
