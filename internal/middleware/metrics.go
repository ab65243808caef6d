package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"

	"github.com/mbeoliero/parley/pkg/metrics"
)

// RequestIdHeader carries the request id in both directions
const RequestIdHeader = "X-Request-Id"

// RequestId echoes the caller's X-Request-Id, or assigns a new one
func RequestId() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id := string(c.GetHeader(RequestIdHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIdHeader, id)
		c.Header(RequestIdHeader, id)
		c.Next(ctx)
	}
}

// Metrics records request latency by matched route. Unmatched paths share one label.
func Metrics() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRequest(string(c.Method()), route, strconv.Itoa(c.Response.StatusCode()), start)
	}
}
