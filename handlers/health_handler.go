package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// BotStatus is implemented by *bots.Session
type BotStatus interface {
	Name() string
	Ready() bool
}

// FeedStatus is implemented by *services.FeedService
type FeedStatus interface {
	ShowNames() []string
	HasEpisodes(name string) bool
}

type HealthHandler struct {
	Bots    []BotStatus
	Feeds   FeedStatus
	DBCheck func(ctx context.Context) error
}

func NewHealthHandler(bots []BotStatus, feeds FeedStatus, dbCheck func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{Bots: bots, Feeds: feeds, DBCheck: dbCheck}
}

// GetHealth reports gateway, database and feed state. Any bot not ready or a
// failing database makes the response 503.
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	healthy := true

	bots := fiber.Map{}
	for _, bot := range h.Bots {
		ready := bot.Ready()
		bots[bot.Name()] = ready
		healthy = healthy && ready
	}

	database := "disabled"
	if h.DBCheck != nil {
		if err := h.DBCheck(c.UserContext()); err != nil {
			database = err.Error()
			healthy = false
		} else {
			database = "ok"
		}
	}

	feeds := fiber.Map{}
	if h.Feeds != nil {
		for _, name := range h.Feeds.ShowNames() {
			feeds[name] = h.Feeds.HasEpisodes(name)
		}
	}

	status, code := "ok", fiber.StatusOK
	if !healthy {
		status, code = "degraded", fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"bots":      bots,
		"database":  database,
		"feeds":     feeds,
		"timestamp": time.Now().Unix(),
	})
}
