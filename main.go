package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fenilmodi00/mc-discord-bots/bots"
	"github.com/fenilmodi00/mc-discord-bots/config"
	"github.com/fenilmodi00/mc-discord-bots/database"
	"github.com/fenilmodi00/mc-discord-bots/handlers"
	"github.com/fenilmodi00/mc-discord-bots/jobs"
	"github.com/fenilmodi00/mc-discord-bots/services"
	"github.com/fenilmodi00/mc-discord-bots/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	shared.ConfigureLogging(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// NDB2 client
	clientFactory := shared.NewHTTPClientFactory(cfg.GetNDB2Timeout())
	defer clientFactory.CleanupAllClients()
	httpMetrics := shared.NewHTTPMetrics()
	ndb2Client := services.NewNDB2Client(
		cfg.NDB2BaseURL,
		cfg.NDB2ClientID,
		clientFactory.CreateOptimizedHTTPClient(cfg.GetNDB2Timeout()),
		httpMetrics,
	)

	// Announcement tracking is optional
	var messageStore *database.PredictionMessageStore
	var dbCheck func(context.Context) error
	if cfg.DatabaseURL != "" {
		if err := database.Connect(cfg.DatabaseURL); err != nil {
			logrus.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		if err := database.Migrate(ctx, database.DB); err != nil {
			logrus.Fatalf("Migration failed: %v", err)
		}
		messageStore = database.NewPredictionMessageStore(database.DB)
		dbCheck = database.HealthCheck

		cleanupJob := jobs.NewMessageCleanupJob(messageStore, cfg.GetMessageRetention())
		go func() {
			ticker := time.NewTicker(24 * time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					_ = cleanupJob.Run(ctx)
				}
			}
		}()
	} else {
		logrus.Warn("DATABASE_URL not set, prediction announcements will not be refreshed")
	}

	// Show feeds
	feedService := services.NewFeedService(cfg.GetFeeds(), config.DefaultFeedPolitenessConfig())
	feedJob := jobs.NewFeedRefreshJob(feedService, 2*time.Minute)
	go func() {
		if err := feedJob.Run(ctx); err != nil {
			logrus.WithError(err).Warn("Initial feed refresh incomplete")
		}
		feedJob.StartPeriodicUpdates(ctx, cfg.GetFeedRefreshInterval())
	}()

	// Bots
	ndb2Metrics := shared.NewInteractionMetrics("ndb2")
	contentMetrics := shared.NewInteractionMetrics("content")
	var botStatuses []handlers.BotStatus
	var sessions []*bots.Session

	ndb2Session, err := bots.NewSession("ndb2", cfg.DiscordNDB2Token, cfg.DiscordAppIDNDB2, discordgo.IntentsGuilds)
	if err != nil {
		logrus.Fatalf("Failed to create NDB2 bot: %v", err)
	}
	var ndb2Store bots.MessageStore
	if messageStore != nil {
		ndb2Store = messageStore
	}
	ndb2Bot := bots.NewNDB2Bot(ndb2Client, ndb2Store, ndb2Metrics, cfg.GetNDB2Timeout()).
		WithAnnouncementChannel(cfg.PredictionsChannelID)
	ndb2Session.Discord().AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		ndb2Bot.HandleInteraction(ctx, s, i)
	})
	sessions = append(sessions, ndb2Session)

	if cfg.DiscordContentToken != "" {
		contentSession, err := bots.NewSession("content", cfg.DiscordContentToken, cfg.DiscordAppIDContent, discordgo.IntentsGuilds)
		if err != nil {
			logrus.Fatalf("Failed to create content bot: %v", err)
		}
		contentBot := bots.NewContentBot(feedService, contentMetrics)
		contentSession.Discord().AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			contentBot.HandleInteraction(ctx, s, i)
		})
		sessions = append(sessions, contentSession)
	}

	if cfg.DiscordEventsToken != "" {
		eventsSession, err := bots.NewSession("events", cfg.DiscordEventsToken, "", discordgo.IntentsGuilds|discordgo.IntentsGuildScheduledEvents)
		if err != nil {
			logrus.Fatalf("Failed to create events bot: %v", err)
		}
		eventsBot := bots.NewEventsBot(feedService, cfg.ContentChannelID)
		eventsSession.Discord().AddHandler(func(s *discordgo.Session, e *discordgo.GuildScheduledEventUpdate) {
			eventsBot.HandleScheduledEventUpdate(s, e)
		})
		sessions = append(sessions, eventsSession)
	}

	commandsBySession := map[string][]*discordgo.ApplicationCommand{
		"ndb2":    bots.NDB2Commands(),
		"content": bots.ContentCommands(feedService.ShowNames()),
	}
	for _, session := range sessions {
		if err := session.Open(); err != nil {
			logrus.Fatalf("Failed to start bot: %v", err)
		}
		defer session.Close()
		botStatuses = append(botStatuses, session)

		commands, ok := commandsBySession[session.Name()]
		if !ok {
			continue
		}
		if session.AppID() == "" {
			logrus.WithField("bot", session.Name()).Warn("No application ID configured, skipping command registration")
			continue
		}
		if err := session.RegisterCommands(cfg.DiscordGuildID, commands); err != nil {
			logrus.WithError(err).WithField("bot", session.Name()).Error("Failed to register commands")
		}
	}

	// Ops server
	healthHandler := handlers.NewHealthHandler(botStatuses, feedService, dbCheck)
	metricsHandler := handlers.NewMetricsHandler(httpMetrics, []*shared.InteractionMetrics{ndb2Metrics, contentMetrics}, feedService.RequestCount, database.GetConnectionStats)
	adminHandler := handlers.NewAdminHandler(feedJob, feedService)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", healthHandler.GetHealth)
	app.Get("/metrics", metricsHandler.GetMetrics)

	admin := app.Group("/admin")
	admin.Post("/feeds/refresh", adminHandler.TriggerFeedRefresh)
	admin.Get("/feeds/:show/episodes", adminHandler.GetEpisodes)

	go func() {
		logrus.Infof("Ops server starting on port %s", cfg.ServerPort)
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			logrus.WithError(err).Error("Ops server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logrus.WithError(err).Warn("Ops server shutdown incomplete")
	}
	httpMetrics.LogHTTPSummary()
}
