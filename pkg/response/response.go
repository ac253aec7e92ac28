package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/linguasaurus-bot/pkg/errors"
)

// GenericFailure is shown to chat users when the failure must not leak detail.
const GenericFailure = "Something went wrong on our side. Please try again later."

// Envelope represents the ops endpoint response contract.
type Envelope struct {
	Data  interface{}      `json:"data,omitempty"`
	Error *appErrors.Error `json:"error,omitempty"`
}

// JSON sends a success response for the ops server.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, Envelope{Data: data})
}

// Error sends an ops error response with internal detail stripped.
func Error(c *gin.Context, status int, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.JSON(status, Envelope{Error: &appErrors.Error{Code: appErr.Code, Message: appErr.Message}})
}

// Notice converts an error into the text shown to a chat user.
func Notice(err error) string {
	if err == nil {
		return ""
	}
	appErr := appErrors.FromError(err)
	switch appErr.Code {
	case appErrors.CodeUnauthorized, appErrors.CodeBadRequest, appErrors.CodeNotFound:
		return capitalize(appErr.Message)
	default:
		return GenericFailure
	}
}

// StatusFor maps an error code to the HTTP status used by the ops server.
func StatusFor(err error) int {
	switch appErrors.FromError(err).Code {
	case appErrors.CodeNotFound:
		return http.StatusNotFound
	case appErrors.CodeBadRequest:
		return http.StatusBadRequest
	case appErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusServiceUnavailable
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
