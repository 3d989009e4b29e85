package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/postcheck/internal/errors"
	"github.com/zfogg/postcheck/internal/logger"
	"go.uber.org/zap"
)

// Envelope wraps every JSON body the API returns
type Envelope struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// RespondOK sends a 200 success envelope
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// RespondWithAPIError sends a structured API error response
func RespondWithAPIError(c *gin.Context, apiErr *errors.APIError) {
	if apiErr.Status >= http.StatusInternalServerError {
		logger.Log.Error("API error",
			zap.String("code", string(apiErr.Code)),
			zap.String("message", apiErr.Message),
			zap.String("field", apiErr.Field),
			zap.Int("status", apiErr.Status),
		)
	} else if apiErr.Status >= http.StatusBadRequest {
		logger.Log.Warn("API error",
			zap.String("code", string(apiErr.Code)),
			zap.String("message", apiErr.Message),
			zap.String("field", apiErr.Field),
		)
	}

	c.JSON(apiErr.Status, Envelope{
		Success: false,
		Error: &ErrorResponse{
			Code:    string(apiErr.Code),
			Message: apiErr.Message,
			Field:   apiErr.Field,
			Details: apiErr.Details,
		},
	})
}

// AbortWithAPIError responds and stops the middleware chain
func AbortWithAPIError(c *gin.Context, apiErr *errors.APIError) {
	RespondWithAPIError(c, apiErr)
	c.Abort()
}

// RespondNotFound sends a 404 Not Found response
func RespondNotFound(c *gin.Context, resource string) {
	RespondWithAPIError(c, errors.NotFound(resource))
}

// RespondBadRequest sends a 400 Bad Request response
func RespondBadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "bad request"
	}
	RespondWithAPIError(c, errors.BadRequest(message))
}

// RespondInternalError sends a 500 Internal Server Error response
func RespondInternalError(c *gin.Context, message string) {
	if message == "" {
		message = "internal server error"
	}
	RespondWithAPIError(c, errors.InternalError(message))
}

// RespondValidationError sends a 422 Unprocessable Entity response
func RespondValidationError(c *gin.Context, field, message string) {
	RespondWithAPIError(c, errors.ValidationError(field, message))
}
