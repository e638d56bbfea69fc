package main

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// metricsRegistry holds the application-specific Prometheus collectors.
	metricsRegistry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "calories",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "calories",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "calories",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	gatewayOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "calories",
			Subsystem: "entries",
			Name:      "store_operations_total",
			Help:      "Entry store operations issued by the gateway.",
		},
		[]string{"op", "success"},
	)
)

func init() {
	metricsRegistry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		gatewayOps,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// metricsHandler exposes the registry on GET /metrics.
func metricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
}

// instrumentRequests records request metrics labelled by the matched route
// template, so entry ids never end up in label values.
func instrumentRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// recordGatewayOp counts one gateway store call.
func recordGatewayOp(op string, err error) {
	gatewayOps.WithLabelValues(op, strconv.FormatBool(err == nil)).Inc()
}
