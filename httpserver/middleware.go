package httpserver

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/graphflow/logger"
	"github.com/kbukum/graphflow/observability"
)

// recovery returns a Gin middleware that recovers from panics, logs the
// stack against log, and responds with a 500 instead of crashing the
// server.
func recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("panic recovered", logger.Fields(
					"error", fmt.Sprintf("%v", err),
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// requestID injects a unique X-Request-Id header into every request and
// response, reusing a caller-supplied one when present.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// requestMetrics spans and records every request through an
// observability.OperationContext, keyed by the request id requestID set.
// metrics may be nil, in which case the span is still recorded but no
// OpenTelemetry counters are incremented.
func requestMetrics(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID, _ := c.Get("request_id")
		oc := observability.NewOperationContext("httpserver", c.FullPath(), fmt.Sprintf("%v", requestID), "", metrics)
		ctx, span := oc.StartSpanForOperation(c.Request.Context(), "http."+c.Request.Method)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := "ok"
		var reqErr error
		if last := c.Errors.Last(); last != nil {
			status = "error"
			reqErr = last
		} else if c.Writer.Status() >= http.StatusBadRequest {
			status = "error"
		}
		oc.EndOperation(ctx, span, status, reqErr)
	}
}
