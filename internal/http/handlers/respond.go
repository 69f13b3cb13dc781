package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the body of every failure: error is always set, details
// carries the underlying cause for server faults.
type APIError struct {
	Error     string   `json:"error"`
	Details   string   `json:"details,omitempty"`
	Code      string   `json:"code,omitempty"`
	Fields    []string `json:"fields,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message, details string, fields []string) {
	ctx.JSON(status, APIError{
		Error:     message,
		Details:   details,
		Code:      code,
		Fields:    fields,
		RequestID: requestIDFrom(ctx),
	})
}

func RespondBadRequest(ctx *gin.Context, message, details string) {
	RespondError(ctx, http.StatusBadRequest, "invalid_body", message, details, nil)
}

func RespondMissingFields(ctx *gin.Context, message string, fields []string) {
	RespondError(ctx, http.StatusBadRequest, "missing_fields", message, "", fields)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, "", nil)
}

func RespondInternal(ctx *gin.Context, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, details, nil)
}

func RespondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, MessageResponse{Message: message})
}
