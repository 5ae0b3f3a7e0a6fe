package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"CafePOS/Models"
)

var (
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	SalesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cafe_sales_total",
			Help: "Checkouts by payment method and outcome",
		},
		[]string{"payment_method", "outcome"},
	)

	SalesRevenue = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cafe_sales_revenue_total",
			Help: "Revenue of successful checkouts",
		},
	)

	registerOnce sync.Once
)

func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HttpRequestsTotal, HttpRequestDuration, SalesTotal, SalesRevenue)
	})
}

// RecordSale counts a checkout attempt.
func RecordSale(method string, total float64, err error) {
	if m, perr := Models.ParsePaymentMethod(method); perr == nil {
		method = string(m)
	} else {
		method = "unknown"
	}
	if err != nil {
		SalesTotal.WithLabelValues(method, "failed").Inc()
		return
	}
	SalesTotal.WithLabelValues(method, "success").Inc()
	SalesRevenue.Add(total)
}

func PrometheusMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		path := "undefined"
		if route := c.Route(); route != nil && route.Path != "" {
			path = route.Path
		}

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
		}

		HttpRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		HttpRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
		return err
	}
}
