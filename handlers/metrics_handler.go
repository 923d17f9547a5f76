package handlers

import (
	"database/sql"

	"github.com/fenilmodi00/mc-discord-bots/shared"
	"github.com/gofiber/fiber/v2"
)

type MetricsHandler struct {
	HTTP         *shared.HTTPMetrics
	Interactions []*shared.InteractionMetrics
	FeedRequests func() int64
	DBStats      func() sql.DBStats
}

func NewMetricsHandler(httpMetrics *shared.HTTPMetrics, interactions []*shared.InteractionMetrics, feedRequests func() int64, dbStats func() sql.DBStats) *MetricsHandler {
	return &MetricsHandler{HTTP: httpMetrics, Interactions: interactions, FeedRequests: feedRequests, DBStats: dbStats}
}

// GetMetrics returns NDB2 call counters, per-bot interaction counters, feed
// fetch counts and connection pool stats
func (h *MetricsHandler) GetMetrics(c *fiber.Ctx) error {
	metrics := fiber.Map{}

	if h.HTTP != nil {
		metrics["ndb2_http"] = h.HTTP.Snapshot()
	}

	interactions := make([]shared.InteractionMetricsSnapshot, 0, len(h.Interactions))
	for _, m := range h.Interactions {
		interactions = append(interactions, m.Snapshot())
	}
	metrics["interactions"] = interactions

	if h.FeedRequests != nil {
		metrics["feed_requests"] = h.FeedRequests()
	}

	if h.DBStats != nil {
		dbStats := h.DBStats()
		metrics["database_stats"] = fiber.Map{
			"open_connections":     dbStats.OpenConnections,
			"in_use":               dbStats.InUse,
			"idle":                 dbStats.Idle,
			"wait_count":           dbStats.WaitCount,
			"wait_duration_ms":     dbStats.WaitDuration.Milliseconds(),
			"max_idle_closed":      dbStats.MaxIdleClosed,
			"max_idle_time_closed": dbStats.MaxIdleTimeClosed,
			"max_lifetime_closed":  dbStats.MaxLifetimeClosed,
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    metrics,
	})
}
