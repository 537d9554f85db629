package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mente-aberta-api/internal/persistence"
)

const readinessTimeout = 2 * time.Second

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

type dependencyStatus struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// Ready reports readiness. Postgres is required; Redis is optional and reported as disabled when
// no address is configured.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	pg := probe(ctx, h.postgres.Ping)
	rd := dependencyStatus{Status: "disabled"}
	if h.redis.Enabled() {
		rd = probe(ctx, h.redis.Ping)
	}

	deps := fiber.Map{"postgres": pg, "redis": rd}
	if pg.Status == "ok" && rd.Status != "error" {
		return c.JSON(fiber.Map{"status": "ready", "dependencies": deps})
	}
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": deps,
		},
	})
}

func probe(ctx context.Context, ping func(context.Context) error) dependencyStatus {
	start := time.Now()
	err := ping(ctx)
	status := dependencyStatus{LatencyMS: time.Since(start).Milliseconds(), Status: "ok"}
	if err != nil {
		status.Status = "error"
		status.Error = err.Error()
	}
	return status
}
