package middlewares

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		// keep the caller's id when one is sent
		id := ctx.GetHeader(requestIDHeader)

		if id == "" {
			id = uuid.NewString()
		}

		ctx.Writer.Header().Set(requestIDHeader, id)
		ctx.Set(CtxRequestID, id)

		ctx.Next()
	}
}

func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx *gin.Context) {
		start := time.Now()

		route := ctx.FullPath()
		if route == "" {
			route = ctx.Request.URL.Path // fallback (e.g. 404)
		}

		method := ctx.Request.Method

		ctx.Next()

		lat := time.Since(start)
		status := ctx.Writer.Status()

		reqID, _ := ctx.Get(CtxRequestID)

		logAttrs := []any{
			"method", method,
			"route", route,
			"status", status,
			"latency_ms", lat.Milliseconds(),
			"request_id", reqID,
		}

		if lambdaID, ok := ctx.Get(CtxLambdaID); ok {
			if s, ok := lambdaID.(string); ok && s != "" {
				logAttrs = append(logAttrs, "aws_request_id", s)
			}
		}

		switch {
		case status >= 500:
			log.ErrorContext(ctx.Request.Context(), "http_request", logAttrs...)
		case status >= 400:
			log.WarnContext(ctx.Request.Context(), "http_request", logAttrs...)
		default:
			log.InfoContext(ctx.Request.Context(), "http_request", logAttrs...)
		}
	}
}
