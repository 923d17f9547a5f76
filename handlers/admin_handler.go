package handlers

import (
	"context"
	"time"

	"github.com/fenilmodi00/mc-discord-bots/models"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// FeedRefreshRunner is implemented by *jobs.FeedRefreshJob
type FeedRefreshRunner interface {
	Run(ctx context.Context) error
}

// EpisodeLister is implemented by *services.FeedService
type EpisodeLister interface {
	Search(show, term string) []models.Episode
	FetchRecent(show string) (*models.Episode, bool)
	HasShow(name string) bool
}

type AdminHandler struct {
	FeedJob FeedRefreshRunner
	Feeds   EpisodeLister
}

func NewAdminHandler(feedJob FeedRefreshRunner, feeds EpisodeLister) *AdminHandler {
	return &AdminHandler{FeedJob: feedJob, Feeds: feeds}
}

// TriggerFeedRefresh manually runs the feed refresh job
func (h *AdminHandler) TriggerFeedRefresh(c *fiber.Ctx) error {
	logrus.Info("Manual feed refresh triggered via admin endpoint")

	startTime := time.Now()
	err := h.FeedJob.Run(c.UserContext())
	duration := time.Since(startTime)

	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success":  false,
			"error":    err.Error(),
			"duration": duration.String(),
		})
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Feed refresh completed",
		"duration":  duration.String(),
		"timestamp": time.Now(),
	})
}

// GetEpisodes returns a show's episodes matching ?q=, or its most recent one,
// for debugging feed parsing
func (h *AdminHandler) GetEpisodes(c *fiber.Ctx) error {
	show := c.Params("show")
	if !h.Feeds.HasShow(show) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "No show with that name",
		})
	}

	var episodes []models.Episode
	if term := c.Query("q"); term != "" {
		episodes = h.Feeds.Search(show, term)
	} else if recent, ok := h.Feeds.FetchRecent(show); ok {
		episodes = []models.Episode{*recent}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    episodes,
		"count":   len(episodes),
	})
}
