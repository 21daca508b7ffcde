package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "digi3",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "digi3",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	reorders = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "digi3",
		Name:      "board_reorders_total",
		Help:      "Drag and drop reorders by outcome.",
	}, []string{"outcome"})

	denials = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "digi3",
		Name:      "permission_denials_total",
		Help:      "Operations refused by the permission evaluator, by action.",
	}, []string{"action"})
)

// Middleware records every request under its route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

func ReorderApplied() { reorders.WithLabelValues("applied").Inc() }

func ReorderRejected() { reorders.WithLabelValues("rejected").Inc() }

func PermissionDenied(action string) { denials.WithLabelValues(action).Inc() }

// Handler serves the default registry.
func Handler() gin.HandlerFunc { return gin.WrapH(promhttp.Handler()) }
