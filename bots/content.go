package bots

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/fenilmodi00/mc-discord-bots/embeds"
	"github.com/fenilmodi00/mc-discord-bots/shared"
	"github.com/sirupsen/logrus"
)

const (
	newsShow           = "news"
	searchResultsLimit = 3
)

// ContentBot answers /content lookups against the show feeds
type ContentBot struct {
	feeds   EpisodeLookup
	metrics *shared.InteractionMetrics
	logger  *logrus.Entry
}

func NewContentBot(feeds EpisodeLookup, metrics *shared.InteractionMetrics) *ContentBot {
	if metrics == nil {
		metrics = shared.NewInteractionMetrics("content")
	}
	return &ContentBot{
		feeds:   feeds,
		metrics: metrics,
		logger:  logrus.WithField("component", "ContentBot"),
	}
}

// HandleInteraction answers /content commands and ignores everything else
func (b *ContentBot) HandleInteraction(_ context.Context, s Responder, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.Name != contentCommand {
		return
	}

	name, options := subcommand(data)
	logger := b.logger.WithFields(logrus.Fields{
		"interaction": "content " + name,
		"id":          i.ID,
	})

	r, err := b.handle(name, options)
	b.metrics.Record("content "+name, err == nil)
	if err != nil {
		respondWithError(s, i, logger, err)
		return
	}
	if err := respond(s, i, r); err != nil {
		logger.WithError(err).Error("Failed to send reply")
	}
}

func (b *ContentBot) handle(name string, options commandOptions) (*reply, error) {
	show := strings.ToLower(strings.TrimSpace(options.stringValue("show")))
	if show == newsShow {
		return nil, newUserError("The `/content %s` command does not work for news.", name)
	}
	if !b.feeds.HasShow(show) {
		return nil, newUserError("No show with that name.")
	}

	switch name {
	case "search":
		return b.search(show, options.stringValue("term"))

	case "recent":
		episode, ok := b.feeds.FetchRecent(show)
		if !ok {
			return nil, newUserError("No episodes found for that show yet.")
		}
		return embedReply(embeds.Episode(episode)), nil

	case "episode-number":
		number, ok := options.intValue("episode-number")
		if !ok {
			return nil, newUserError("An episode number is required.")
		}
		episode, ok := b.feeds.GetEpisodeByNumber(show, number)
		if !ok {
			return nil, newUserError("No episode with that number.")
		}
		return embedReply(embeds.Episode(episode)), nil
	}
	return nil, newUserError("Unknown subcommand.")
}

func (b *ContentBot) search(show, term string) (*reply, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, newUserError("A search term is required.")
	}

	results := b.feeds.Search(show, term)
	if len(results) > searchResultsLimit {
		results = results[:searchResultsLimit]
	}

	title, imageURL := show, ""
	if feed, ok := b.feeds.Show(show); ok {
		if feed.Title != "" {
			title = feed.Title
		}
		imageURL = feed.ImageURL
	}
	b.logger.WithFields(logrus.Fields{
		"show":    show,
		"term":    term,
		"results": len(results),
	}).Debug("Searched episodes")
	return embedReply(embeds.EpisodeSearchResults(title, imageURL, term, results)), nil
}

func embedReply(embed *discordgo.MessageEmbed) *reply {
	return &reply{data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}}
}
