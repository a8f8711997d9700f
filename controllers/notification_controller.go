package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rescueradar/models"
	"rescueradar/services"
	"rescueradar/utils"
)

type NotificationController struct {
	notifications *services.NotificationService
	whatsapp      *services.WhatsAppService
	rescuePhone   string
	validator     *utils.ValidationService
	development   bool
}

func NewNotificationController(notifications *services.NotificationService, whatsapp *services.WhatsAppService, rescuePhone string, development bool) *NotificationController {
	return &NotificationController{
		notifications: notifications,
		whatsapp:      whatsapp,
		rescuePhone:   rescuePhone,
		validator:     utils.NewValidationService(),
		development:   development,
	}
}

// EmailNotify renders and sends a report email
// @Summary Email notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param request body models.EmailNotifyRequest true "Email notification"
// @Success 200 {object} models.EmailNotifyResponse
// @Failure 400 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse
// @Router /email-notify [post]
func (nc *NotificationController) EmailNotify(c *gin.Context) {
	var req models.EmailNotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	trim(&req.ReportID, &req.Email, &req.NotificationType)
	if !validate(c, nc.validator, &req) {
		return
	}

	result, err := nc.notifications.SendEmail(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to send email notification", nc.development)
		return
	}

	c.JSON(http.StatusOK, models.EmailNotifyResponse{
		Success:   true,
		EmailSent: true,
		Details:   result,
	})
}

// WhatsAppNotify sends a WhatsApp message and the rescue team alert
// @Summary WhatsApp notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param request body models.WhatsAppNotifyRequest true "WhatsApp notification"
// @Success 200 {object} models.WhatsAppNotifyResponse
// @Failure 400 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse
// @Router /whatsapp-notify [post]
func (nc *NotificationController) WhatsAppNotify(c *gin.Context) {
	var req models.WhatsAppNotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	trim(&req.PhoneNumber, &req.Message, &req.ReportID, &req.UrgencyLevel, &req.RescueTeamPhone)
	if req.RescueTeamPhone == "" && !utils.IsPlaceholder(nc.rescuePhone) {
		req.RescueTeamPhone = nc.rescuePhone
	}
	if !validate(c, nc.validator, &req) {
		return
	}

	result, err := nc.whatsapp.Send(c.Request.Context(), req)
	if err != nil {
		if status, code, ok := services.ProviderErrorStatus(err); ok {
			logrus.WithField("error_code", code).Warnf("WhatsApp provider rejected message: %v", err)
			c.JSON(status, gin.H{
				"success":    false,
				"message":    err.Error(),
				"error_code": code,
			})
			return
		}
		respondError(c, err, "Failed to send WhatsApp notification", nc.development)
		return
	}

	c.JSON(http.StatusOK, models.WhatsAppNotifyResponse{
		Success:      true,
		WhatsAppSent: true,
		Details:      result,
	})
}
