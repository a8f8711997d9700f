package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rescueradar/models"
	"rescueradar/utils"
)

// ErrorHandler recovers panics and renders errors attached with c.Error
type ErrorHandler struct {
	environment string
	logger      *logrus.Logger
}

func NewErrorHandler(environment string, logger *logrus.Logger) *ErrorHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ErrorHandler{
		environment: environment,
		logger:      logger,
	}
}

func (eh *ErrorHandler) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				eh.handlePanic(c, err)
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			eh.handleGinErrors(c)
		}
	}
}

func (eh *ErrorHandler) handlePanic(c *gin.Context, err interface{}) {
	stack := string(debug.Stack())
	eh.logger.WithFields(logrus.Fields{
		"panic":      err,
		"stack":      stack,
		"request_id": c.GetString("request_id"),
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
	}).Error("Panic recovered")

	response := models.NewErrorResponse("INTERNAL_ERROR", "Internal server error", "PANIC_RECOVERED", c.GetString("request_id"))
	if eh.environment == "development" {
		response.WithDetails("panic", err).WithDetails("stack", stack)
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, response)
}

func (eh *ErrorHandler) handleGinErrors(c *gin.Context) {
	for _, ginErr := range c.Errors {
		fields := logrus.Fields{
			"error":      ginErr.Err.Error(),
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"ip":         c.ClientIP(),
		}
		if utils.StatusCodeOf(ginErr.Err) >= http.StatusInternalServerError {
			eh.logger.WithFields(fields).Error("Server error")
		} else {
			eh.logger.WithFields(fields).Warn("Client error")
		}
	}

	err := c.Errors.Last().Err
	if validationErrors, ok := utils.GetValidationErrors(err); ok {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}
	utils.ServiceErrorResponse(c, err, "An unexpected error occurred", eh.environment == "development")
}
