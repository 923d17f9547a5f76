package embeds

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/fenilmodi00/mc-discord-bots/models"
)

// LeaderboardSize is how many leaders the embed lists
const LeaderboardSize = 10

var leaderboardTitles = map[models.LeaderboardType]string{
	models.LeaderboardPoints:      "Points Leaderboard",
	models.LeaderboardPredictions: "Predictions Leaderboard",
	models.LeaderboardBets:        "Bets Leaderboard",
}

// Leaderboard renders the top leaders of one board type
func Leaderboard(board *models.Leaderboard) *discordgo.MessageEmbed {
	title, ok := leaderboardTitles[board.Type]
	if !ok {
		title = "Leaderboard"
	}

	description := "All-time standings"
	if board.Season != nil {
		description = fmt.Sprintf("%s season, %s to %s", board.Season.Name,
			DiscordTimestamp(board.Season.Start, TimestampShortDate),
			DiscordTimestamp(board.Season.End, TimestampShortDate))
	}

	leaders := board.Leaders
	if len(leaders) > LeaderboardSize {
		leaders = leaders[:LeaderboardSize]
	}
	lines := make([]string, 0, len(leaders))
	for _, leader := range leaders {
		lines = append(lines, fmt.Sprintf("#%d %s %s", leader.Rank, UserMention(leader.DiscordID), leaderValue(board.Type, leader)))
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       ColorSuccessful,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Leaders", Value: joinLines(lines)},
		},
	}
}

func leaderValue(boardType models.LeaderboardType, leader models.Leader) string {
	switch boardType {
	case models.LeaderboardPoints:
		if leader.Points != nil {
			return fmt.Sprintf("(%d points)", *leader.Points)
		}
	case models.LeaderboardPredictions:
		if leader.Predictions != nil {
			return tallyValue(leader.Predictions, "predictions")
		}
	case models.LeaderboardBets:
		if leader.Bets != nil {
			return tallyValue(leader.Bets, "bets")
		}
	}
	return ""
}

func tallyValue(tally *models.LeaderTally, noun string) string {
	return fmt.Sprintf("(%d successful of %d %s)", tally.Successful, tally.Total, noun)
}
