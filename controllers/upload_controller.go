package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rescueradar/models"
	"rescueradar/services"
	"rescueradar/utils"
)

// multipart overhead allowed on top of the image itself
const uploadFormSlack = 1 << 20

type UploadController struct {
	uploads     *services.UploadService
	development bool
}

func NewUploadController(uploads *services.UploadService, development bool) *UploadController {
	return &UploadController{
		uploads:     uploads,
		development: development,
	}
}

// UploadImage stores a report photo
// @Summary Upload image
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "JPEG, PNG or WebP, at most 10MB"
// @Success 200 {object} models.UploadImageResponse
// @Failure 400 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse
// @Router /upload-image [post]
func (uc *UploadController) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxImageSize+uploadFormSlack)

	header, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.BadRequestResponse(c, "File size too large. Maximum 10MB allowed.")
			return
		}
		utils.BadRequestResponse(c, "No image file provided")
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.BadRequestResponse(c, "No image file provided")
		return
	}
	defer file.Close()

	image, err := uc.uploads.Upload(c.Request.Context(), file, header.Size)
	if err != nil {
		respondError(c, err, "Failed to upload image", uc.development)
		return
	}

	c.JSON(http.StatusOK, models.UploadImageResponse{
		Success:       true,
		UploadedImage: *image,
	})
}
