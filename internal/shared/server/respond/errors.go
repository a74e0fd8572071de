package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hippo-backend/internal/shared/apperr"
	"hippo-backend/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if appID := c.GetString("applicationId"); appID != "" {
		fields["application_id"] = appID
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// Err maps a classified error onto its HTTP status. Unclassified errors become
// a 500 without leaking their text.
func Err(c *gin.Context, err error) {
	status, code := statusFor(err)
	msg := apperr.MessageOf(err)
	if status == http.StatusInternalServerError {
		telemetry.Error("http.internal", map[string]any{
			"request_id": c.GetString("requestId"),
			"path":       c.Request.URL.Path,
			"err":        err,
		})
		msg = "Unexpected server error"
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	var details interface{}
	if status == http.StatusBadGateway {
		var e *apperr.Error
		if errors.As(err, &e) && e.Err != nil {
			details = gin.H{"cause": e.Err.Error()}
		}
	}
	Error(c, status, code, msg, details)
}

func statusFor(err error) (int, string) {
	switch apperr.KindOf(err) {
	case apperr.ErrUnauthenticated:
		return http.StatusUnauthorized, "unauthorized"
	case apperr.ErrForbidden:
		return http.StatusForbidden, "forbidden"
	case apperr.ErrNotFound:
		return http.StatusNotFound, "not_found"
	case apperr.ErrValidation:
		return http.StatusBadRequest, "validation_error"
	case apperr.ErrUpstream:
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
