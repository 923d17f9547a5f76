package bots

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/fenilmodi00/mc-discord-bots/models"
	"github.com/sirupsen/logrus"
)

const (
	predictCommand = "predict"
	contentCommand = "content"
)

func statusChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(models.AllPredictionLifeCycles))
	for _, status := range models.AllPredictionLifeCycles {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: string(status), Value: string(status)})
	}
	return choices
}

func sortChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(models.AllSortByOptions))
	for _, option := range models.AllSortByOptions {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: string(option), Value: string(option)})
	}
	return choices
}

func predictionIDOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "id",
		Description: "Prediction ID",
		Required:    true,
	}
}

// NDB2Commands returns the /predict command tree
func NDB2Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        predictCommand,
			Description: "Make, view and bet on predictions",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "new",
					Description: "Make a new prediction",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "text", Description: "What will happen", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "due", Description: "Due date, YYYY-MM-DD", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "view",
					Description: "Show a prediction",
					Options:     []*discordgo.ApplicationCommandOption{predictionIDOption()},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "retire",
					Description: "Retire one of your open predictions",
					Options:     []*discordgo.ApplicationCommandOption{predictionIDOption()},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "trigger",
					Description: "Close a prediction for voting",
					Options: []*discordgo.ApplicationCommandOption{
						predictionIDOption(),
						{Type: discordgo.ApplicationCommandOptionString, Name: "closed", Description: "Date it came true, YYYY-MM-DD"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "score",
					Description: "Show your scores",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "season",
							Description: "Season to score",
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "current", Value: "current"},
								{Name: "last", Value: "last"},
							},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leaderboard",
					Description: "Show a leaderboard",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "type",
							Description: "Leaderboard to show",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "points", Value: string(models.LeaderboardPoints)},
								{Name: "predictions", Value: string(models.LeaderboardPredictions)},
								{Name: "bets", Value: string(models.LeaderboardBets)},
							},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "search",
					Description: "Search predictions",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "keyword", Description: "Text to look for"},
						{Type: discordgo.ApplicationCommandOptionString, Name: "status", Description: "Prediction status", Choices: statusChoices()},
						{Type: discordgo.ApplicationCommandOptionString, Name: "sort", Description: "Sort order", Choices: sortChoices()},
						pageOption(),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List predictions by status",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "status", Description: "Prediction status", Choices: statusChoices()},
						pageOption(),
					},
				},
			},
		},
	}
}

// ContentCommands returns the /content command tree with one show choice per feed
func ContentCommands(shows []string) []*discordgo.ApplicationCommand {
	showChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(shows))
	for _, show := range shows {
		showChoices = append(showChoices, &discordgo.ApplicationCommandOptionChoice{Name: show, Value: show})
	}
	showOption := func() *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "show",
			Description: "Show to search",
			Required:    true,
			Choices:     showChoices,
		}
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        contentCommand,
			Description: "Find show episodes",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "search",
					Description: "Search a show's episodes",
					Options: []*discordgo.ApplicationCommandOption{
						showOption(),
						{Type: discordgo.ApplicationCommandOptionString, Name: "term", Description: "Search term", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "recent",
					Description: "Most recent episode",
					Options:     []*discordgo.ApplicationCommandOption{showOption()},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "episode-number",
					Description: "Find an episode by number",
					Options: []*discordgo.ApplicationCommandOption{
						showOption(),
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "episode-number", Description: "Episode number", Required: true},
					},
				},
			},
		},
	}
}

// RegisterCommands replaces the application's commands, guild-scoped when
// guildID is set
func RegisterCommands(registrar CommandRegistrar, appID, guildID string, commands []*discordgo.ApplicationCommand) error {
	registered, err := registrar.ApplicationCommandBulkOverwrite(appID, guildID, commands)
	if err != nil {
		return fmt.Errorf("failed to register commands for app %s: %w", appID, err)
	}

	logrus.WithFields(logrus.Fields{
		"component": "CommandRegistrar",
		"app_id":    appID,
		"guild_id":  guildID,
		"commands":  len(registered),
	}).Info("Registered application commands")
	return nil
}

func pageOption() *discordgo.ApplicationCommandOption {
	firstPage := 1.0
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "page",
		Description: "Results page, starting at 1",
		MinValue:    &firstPage,
	}
}
