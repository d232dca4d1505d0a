// ================== internal/pkg/response/response.go ==================
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridharani/dharani-api/pkg/apperr"
)

// APIResponse is the uniform envelope for every JSON response
type APIResponse struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Code       string      `json:"code,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

// JSON writes an envelope with an explicit status code
func JSON(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success:    statusCode < 400,
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	})
}

// Success sends a 200 OK response with data
func Success(c *gin.Context, data interface{}, message ...string) {
	msg := "ok"
	if len(message) > 0 {
		msg = message[0]
	}
	JSON(c, http.StatusOK, msg, data)
}

// Created sends a 201 Created response
func Created(c *gin.Context, data interface{}, message ...string) {
	msg := "created"
	if len(message) > 0 {
		msg = message[0]
	}
	JSON(c, http.StatusCreated, msg, data)
}

// Accepted sends a 202 Accepted response. Used when a request was taken in
// but its outcome is pending (e.g. a verification routed to manual review).
func Accepted(c *gin.Context, data interface{}, message string) {
	JSON(c, http.StatusAccepted, message, data)
}

// Paginated sends a list payload with paging metadata under data
func Paginated(c *gin.Context, items interface{}, total int64, limit int, page int) {
	JSON(c, http.StatusOK, "ok", gin.H{
		"items": items,
		"total": total,
		"limit": limit,
		"page":  page,
	})
}

// Error sends an error envelope with custom status code and message
func Error(c *gin.Context, statusCode int, message string, errorCode ...string) {
	code := ""
	if len(errorCode) > 0 {
		code = errorCode[0]
	}

	c.JSON(statusCode, APIResponse{
		Success:    false,
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	})
}

func BadRequest(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusBadRequest, message, errorCode...)
}

func Unauthorized(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusUnauthorized, message, errorCode...)
}

func Forbidden(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusForbidden, message, errorCode...)
}

func NotFound(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusNotFound, message, errorCode...)
}

func Conflict(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusConflict, message, errorCode...)
}

func ValidationFailed(c *gin.Context, message string) {
	Error(c, http.StatusUnprocessableEntity, message, "VALIDATION_FAILED")
}

func InternalServerError(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusInternalServerError, message, errorCode...)
}

func ServiceUnavailable(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusServiceUnavailable, message, errorCode...)
}

func GatewayTimeout(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusGatewayTimeout, message, errorCode...)
}

// BindJSONError handles JSON decode errors in request body
func BindJSONError(c *gin.Context, err error) {
	BadRequest(c, "Invalid request format", "INVALID_JSON")
}

// DatabaseError handles database operation errors
func DatabaseError(c *gin.Context, message string) {
	InternalServerError(c, message, "DATABASE_ERROR")
}

// FromError maps domain error kinds to their HTTP representation.
// Unrecognized errors become a 500.
func FromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		NotFound(c, err.Error(), "NOT_FOUND")
	case errors.Is(err, apperr.ErrUnauthorized):
		Unauthorized(c, err.Error(), "UNAUTHORIZED")
	case errors.Is(err, apperr.ErrForbidden):
		Forbidden(c, err.Error(), "FORBIDDEN")
	case errors.Is(err, apperr.ErrBadRequest):
		BadRequest(c, err.Error(), "BAD_REQUEST")
	case errors.Is(err, apperr.ErrDuplicate):
		Conflict(c, err.Error(), "DUPLICATE")
	case errors.Is(err, apperr.ErrInvalidTransition):
		Conflict(c, err.Error(), "INVALID_TRANSITION")
	case errors.Is(err, apperr.ErrNoWorkerAvailable):
		ServiceUnavailable(c, err.Error(), "NO_WORKER_AVAILABLE")
	case errors.Is(err, apperr.ErrCollaboratorTimeout):
		GatewayTimeout(c, err.Error(), "COLLABORATOR_TIMEOUT")
	default:
		InternalServerError(c, "Something went wrong", "INTERNAL")
	}
}
