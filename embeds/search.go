package embeds

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/fenilmodi00/mc-discord-bots/models"
)

// SearchResultsSize caps the predictions listed in one search embed
const SearchResultsSize = 10

const searchSnippetLength = 200

// SearchResults renders a prediction search. query describes the filters used.
func SearchResults(query string, results []models.ShortEnhancedPrediction) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Prediction Search Results",
		Color: ColorOpen,
	}
	if query != "" {
		embed.Description = query
	}

	if len(results) == 0 {
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "No results", Value: "No predictions matched that search."},
		}
		return embed
	}

	if len(results) > SearchResultsSize {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Showing %d of %d results", SearchResultsSize, len(results)),
		}
		results = results[:SearchResultsSize]
	}

	for _, p := range results {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("#%d %s", p.ID, strings.ToUpper(string(p.Status))),
			Value: fmt.Sprintf("%s\nBy %s, due %s",
				truncate(p.Text, searchSnippetLength),
				UserMention(p.Predictor.DiscordID),
				DiscordTimestamp(p.DueDate, TimestampLongDate)),
		})
	}
	return embed
}
