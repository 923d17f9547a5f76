package bots

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fenilmodi00/mc-discord-bots/models"
	"github.com/fenilmodi00/mc-discord-bots/services"
)

// Responder is the part of *discordgo.Session the bots send through
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponse(interaction *discordgo.Interaction, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// CommandRegistrar installs slash commands for an application
type CommandRegistrar interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// PredictionAPI is implemented by *services.NDB2Client
type PredictionAPI interface {
	GetPrediction(ctx context.Context, id int) (*models.EnhancedPrediction, error)
	AddPrediction(ctx context.Context, discordID, text string, dueDate time.Time) (*models.EnhancedPrediction, error)
	AddBet(ctx context.Context, predictionID int, discordID string, endorsed bool) (*models.EnhancedPrediction, error)
	AddVote(ctx context.Context, predictionID int, discordID string, vote bool) (*models.EnhancedPrediction, error)
	TriggerPrediction(ctx context.Context, id int, discordID string, closedDate *time.Time) (*models.EnhancedPrediction, error)
	RetirePrediction(ctx context.Context, id int, discordID string) (*models.EnhancedPrediction, error)
	GetScores(ctx context.Context, discordID, seasonID string) (*models.Scores, error)
	SearchPredictions(ctx context.Context, options services.SearchOptions) ([]models.ShortEnhancedPrediction, error)
	GetLeaderboard(ctx context.Context, view models.LeaderboardType) (*models.Leaderboard, error)
}

// MessageStore is implemented by *database.PredictionMessageStore
type MessageStore interface {
	Save(ctx context.Context, message models.PredictionMessage) error
	ListByPrediction(ctx context.Context, predictionID int) ([]models.PredictionMessage, error)
	Delete(ctx context.Context, channelID, messageID string) error
}

// EpisodeLookup is implemented by *services.FeedService
type EpisodeLookup interface {
	HasShow(name string) bool
	Show(name string) (services.ShowFeed, bool)
	Search(show, term string) []models.Episode
	FetchRecent(show string) (*models.Episode, bool)
	GetEpisodeByNumber(show string, number int) (*models.Episode, bool)
	FindEpisodeByURL(link string) (*models.Episode, bool)
}
