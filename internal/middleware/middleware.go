package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yigit/skillmart/internal/app/models/dto"
	"github.com/yigit/skillmart/internal/pkg/logger"
	"github.com/yigit/skillmart/internal/pkg/reporting"
)

// RequestIDHeader carries the request correlation id
const RequestIDHeader = "X-Request-ID"

// RequestLogger attaches a request-scoped zerolog logger to the request context and logs
// each completed request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		l := logger.Get().With().Str("requestID", requestID).Logger()
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		event := logger.Ctx(c.Request.Context()).Info()
		if status >= http.StatusInternalServerError {
			event = logger.Ctx(c.Request.Context()).Error()
		} else if status >= http.StatusBadRequest {
			event = logger.Ctx(c.Request.Context()).Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("clientIP", c.ClientIP()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("Request completed")
	}
}

// Recovery stores reporter on the gin context for HandleAPIError and turns panics into a
// 500 response after reporting them
func Recovery(reporter reporting.Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(reporterKey, reporter)

		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Ctx(c.Request.Context()).Error().
					Interface("panic", recovered).
					Str("path", c.Request.URL.Path).
					Msg("Recovered from panic")
				reporter.Panic(c.Request, recovered)

				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(
					dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
			}
		}()

		c.Next()
	}
}
