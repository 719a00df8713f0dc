package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// APICollector exposes HTTP API Prometheus metrics and provides a gin
// middleware to populate them.
type APICollector struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDurations *prometheus.HistogramVec
}

// NewAPICollector registers HTTP API metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewAPICollector(reg prometheus.Registerer) (*APICollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linksim_http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by method, route, and status code.",
	}, []string{"method", "route", "code"})
	requests, err := registerCounterVec(reg, requests, "linksim_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "linksim_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"method", "route"})
	durations, err = registerHistogramVec(reg, durations, "linksim_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &APICollector{
		RequestsTotal:    requests,
		RequestDurations: durations,
	}, nil
}

// Middleware records request counts and durations for every handled route.
func (c *APICollector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		if c == nil {
			return
		}

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		code := strconv.Itoa(ctx.Writer.Status())

		if c.RequestsTotal != nil {
			c.RequestsTotal.WithLabelValues(method, route, code).Inc()
		}
		if c.RequestDurations != nil {
			c.RequestDurations.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		}
	}
}
