package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"Error"`
}

// RespondWithError writes the error body and records the code on the context
// for the request logger.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.Set(ContextKeyErrorCode, errorCode)
	c.AbortWithStatusJSON(statusCode, ErrorResponse{Error: message})
}

// ContextKeyErrorCode is the gin context key holding the last error code.
const ContextKeyErrorCode = "error_code"

func BadRequest(c *gin.Context, errorCode string, message string) {
	if message == "" {
		message = MsgMissingAttributes
	}
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func TooManyRequests(c *gin.Context) {
	RespondWithError(c, http.StatusTooManyRequests, RateLimitExceeded, MsgRateLimited)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = MsgInternal
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// RespondWithServiceError maps err with FromService and writes the response.
// Unmapped errors are attached to the context so the request logger reports
// them.
func RespondWithServiceError(c *gin.Context, err error) {
	info := FromService(err)
	if info.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	RespondWithError(c, info.Status, info.Code, info.Message)
}
