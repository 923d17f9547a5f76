package embeds

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/fenilmodi00/mc-discord-bots/models"
)

const episodeSummaryLength = 350

// Episode renders a single show episode
func Episode(episode *models.Episode) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       truncate(episode.Title, 256),
		URL:         episode.URL,
		Description: truncate(episode.Summary, episodeSummaryLength),
		Color:       ColorContent,
		Footer:      &discordgo.MessageEmbedFooter{Text: episode.Show},
	}
	if episode.ImageURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: episode.ImageURL}
	}
	if episode.EpisodeNumber > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Episode", Value: strconv.Itoa(episode.EpisodeNumber), Inline: true,
		})
	}
	if !episode.Published.IsZero() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Published", Value: DiscordTimestamp(episode.Published, TimestampLongDate), Inline: true,
		})
	}
	return embed
}

// EpisodeSearchResults renders the matches of a show search
func EpisodeSearchResults(showTitle, imageURL, term string, episodes []models.Episode) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("Search results for \"%s\"", term),
		Color:  ColorContent,
		Author: &discordgo.MessageEmbedAuthor{Name: showTitle},
	}
	if imageURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: imageURL}
	}

	if len(episodes) == 0 {
		embed.Description = "No results found."
		return embed
	}

	for _, episode := range episodes {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  truncate(episode.Title, 256),
			Value: fmt.Sprintf("%s\n%s", truncate(episode.Summary, 200), episode.URL),
		})
	}
	return embed
}
