package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
)

// Version is reported by the info and readiness endpoints.
const Version = "1.0.0"

// Pinger is a dependency that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db          Pinger
	rdb         *redis.Client
	environment string
	startAt     time.Time
	now         func() time.Time
}

func NewHealthHandler(db Pinger, rdb *redis.Client, environment string) *HealthHandler {
	return &HealthHandler{
		db:          db,
		rdb:         rdb,
		environment: environment,
		startAt:     time.Now(),
		now:         time.Now,
	}
}

// Info handles GET /
func (h *HealthHandler) Info(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "SteamSurf API",
		"version":     Version,
		"environment": h.environment,
	})
}

// Health handles GET /health
func (h *HealthHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Server is running",
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// Live handles GET /health/live
func (h *HealthHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready with dependency checks.
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	db := checkDB(ctx, h.db)
	cache := checkRedis(ctx, h.rdb)
	checks := fiber.Map{"database": db, "redis": cache}

	// Redis is optional; only an unreachable configured instance degrades.
	overallStatus := "healthy"
	if db["status"] != "up" || cache["status"] == "down" {
		overallStatus = "degraded"
	}

	uptimeSeconds := int(time.Since(h.startAt).Seconds())

	resp := fiber.Map{
		"status":         overallStatus,
		"checks":         checks,
		"uptime_seconds": uptimeSeconds,
		"version":        Version,
	}

	status := fiber.StatusOK
	if overallStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(resp)
}

func checkDB(ctx context.Context, db Pinger) fiber.Map {
	start := time.Now()
	err := db.Ping(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return fiber.Map{
			"status":     "down",
			"latency_ms": latency,
			"error":      "connection failed",
		}
	}
	return fiber.Map{
		"status":     "up",
		"latency_ms": latency,
	}
}

func checkRedis(ctx context.Context, rdb *redis.Client) fiber.Map {
	if rdb == nil {
		return fiber.Map{
			"status": "disabled",
		}
	}

	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return fiber.Map{
			"status":     "down",
			"latency_ms": latency,
			"error":      "connection failed",
		}
	}
	return fiber.Map{
		"status":     "up",
		"latency_ms": latency,
	}
}
