package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rescueradar/utils"
)

// respondError renders validation failures field by field and maps everything
// else through the service error chain.
func respondError(c *gin.Context, err error, fallbackMessage string, development bool) {
	if validationErrors, ok := utils.GetValidationErrors(err); ok {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}
	if utils.StatusCodeOf(err) >= 500 {
		logrus.WithField("request_id", c.GetString("request_id")).Errorf("%s: %v", fallbackMessage, err)
	}
	utils.ServiceErrorResponse(c, err, fallbackMessage, development)
}

// validate runs struct validation and writes the 400 response on failure
func validate(c *gin.Context, v *utils.ValidationService, req interface{}) bool {
	if errs := v.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return false
	}
	return true
}

func trim(values ...*string) {
	for _, v := range values {
		*v = strings.TrimSpace(*v)
	}
}
