package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"rescueradar/models"
	"rescueradar/services"
	"rescueradar/utils"
)

type QRController struct {
	qr          *services.QRService
	validator   *utils.ValidationService
	development bool
}

func NewQRController(qr *services.QRService, development bool) *QRController {
	return &QRController{
		qr:          qr,
		validator:   utils.NewValidationService(),
		development: development,
	}
}

// GenerateQR renders a QR code for a report page or an explicit URL
// @Summary Generate QR code
// @Tags QR
// @Produce json,image/png,image/svg+xml
// @Param report_id query string false "Report ID"
// @Param url query string false "Explicit URL"
// @Param format query string false "png or svg" default(png)
// @Param size query int false "Pixels, 64..2048" default(200)
// @Param margin query int false "Quiet zone modules, 0..20" default(4)
// @Param color query string false "Foreground #rrggbb"
// @Param background query string false "Background #rrggbb"
// @Param download query bool false "Return an attachment"
// @Success 200 {object} models.QRResponse
// @Failure 400 {object} models.APIResponse
// @Router /generate-qr [get]
func (qc *QRController) GenerateQR(c *gin.Context) {
	var req models.QRRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid query parameters")
		return
	}
	trim(&req.ReportID, &req.URL, &req.Format, &req.Color, &req.Background)
	if !validate(c, qc.validator, &req) {
		return
	}

	code, err := qc.qr.Generate(req)
	if err != nil {
		respondError(c, err, "Failed to generate QR code", qc.development)
		return
	}

	if req.Download {
		filename := services.DownloadFilename(req, code.Format)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Header("Cache-Control", "public, max-age=86400")
		c.Data(http.StatusOK, code.ContentType, code.Content)
		return
	}

	c.JSON(http.StatusOK, models.QRResponse{
		Success: true,
		QRCode:  code,
	})
}
