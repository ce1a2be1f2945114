package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name.
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis command errors",
	},
	[]string{"command"},
)

// PublishAttempts counts scheduled publish attempts by channel and outcome.
var PublishAttempts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "publish_attempts_total",
		Help: "Total number of publish attempts by channel and outcome",
	},
	[]string{"channel", "outcome"},
)

// InitMetrics creates the Prometheus middleware and registers the /metrics endpoint handler.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	prom := fiberprometheus.New(serviceName)
	return prom
}

// MetricsMiddleware returns the Fiber handler that records HTTP metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
