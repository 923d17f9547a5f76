package embeds

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/fenilmodi00/mc-discord-bots/models"
)

// Scores renders a user's score card. season is shown in the title when set.
func Scores(discordID, season string, scores *models.Scores) *discordgo.MessageEmbed {
	title := "NDB2 Scores"
	if season != "" {
		title = fmt.Sprintf("NDB2 Scores (%s season)", season)
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("Scores for %s", UserMention(discordID)),
		Color:       ColorOpen,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Points",
				Value:  fmt.Sprintf("%d (Rank #%d)", scores.Score.Points, scores.Score.Rank),
				Inline: true,
			},
			{Name: "Predictions", Value: rankedTally(scores.Predictions), Inline: true},
			{Name: "Bets", Value: rankedTally(scores.Bets), Inline: true},
			{
				Name: "Votes",
				Value: fmt.Sprintf("Sycophantic: %d\nContrarian: %d\nPending: %d",
					scores.Votes.Sycophantic, scores.Votes.Contrarian, scores.Votes.Pending),
				Inline: true,
			},
		},
	}
}

func rankedTally(t models.RankedTally) string {
	return strings.Join([]string{
		fmt.Sprintf("Successful: %d", t.Successful),
		fmt.Sprintf("Failed: %d", t.Failed),
		fmt.Sprintf("Pending: %d", t.Pending),
		fmt.Sprintf("Retired: %d", t.Retired),
		fmt.Sprintf("Rank #%d", t.Rank),
	}, "\n")
}
