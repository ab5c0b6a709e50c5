package api

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nekogravitycat/link-catalog-backend/internal/auth"
	"github.com/nekogravitycat/link-catalog-backend/internal/event"
	"github.com/nekogravitycat/link-catalog-backend/internal/metrics"
)

const (
	CorrelationIDHeader = "X-Correlation-Id"
	correlationIDKey    = "correlationID"
)

// RequestLogger assigns a correlation id to each request (reusing the one the
// client sent, if any) and logs the request once it completes.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(correlationIDKey, id)
		c.Header(CorrelationIDHeader, id)
		c.Request = c.Request.WithContext(event.WithCorrelationID(c.Request.Context(), id))

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"route", routeLabel(c),
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"correlation_id", id,
		}
		if sub := auth.GetUserID(c); sub != "" {
			attrs = append(attrs, "subject", sub)
		}

		switch {
		case status >= 500:
			logger.ErrorContext(c.Request.Context(), "request", attrs...)
		case status >= 400:
			logger.WarnContext(c.Request.Context(), "request", attrs...)
		default:
			logger.InfoContext(c.Request.Context(), "request", attrs...)
		}
	}
}

// Metrics records Prometheus request metrics labelled by route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.HTTPInFlight.Inc()
		defer metrics.HTTPInFlight.Dec()

		c.Next()

		labels := []string{c.Request.Method, routeLabel(c), strconv.Itoa(c.Writer.Status())}
		metrics.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	}
}

// routeLabel keeps label cardinality low by using the matched route template.
func routeLabel(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}
