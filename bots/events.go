package bots

import (
	"github.com/bwmarrin/discordgo"
	"github.com/fenilmodi00/mc-discord-bots/embeds"
	"github.com/sirupsen/logrus"
)

// EventsBot posts the matching episode when a scheduled stream ends
type EventsBot struct {
	feeds            EpisodeLookup
	contentChannelID string
	logger           *logrus.Entry
}

func NewEventsBot(feeds EpisodeLookup, contentChannelID string) *EventsBot {
	return &EventsBot{
		feeds:            feeds,
		contentChannelID: contentChannelID,
		logger:           logrus.WithField("component", "EventsBot"),
	}
}

// HandleScheduledEventUpdate reacts to completed events whose location is an
// episode link. Anything else is ignored.
func (b *EventsBot) HandleScheduledEventUpdate(s Responder, e *discordgo.GuildScheduledEventUpdate) {
	if e == nil || e.GuildScheduledEvent == nil {
		return
	}
	event := e.GuildScheduledEvent
	if event.Status != discordgo.GuildScheduledEventStatusCompleted {
		return
	}

	logger := b.logger.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_name": event.Name,
		"location":   event.EntityMetadata.Location,
	})
	if b.contentChannelID == "" {
		logger.Warn("Content channel not configured, skipping completed event")
		return
	}

	episode, ok := b.feeds.FindEpisodeByURL(event.EntityMetadata.Location)
	if !ok {
		logger.Debug("No episode matches completed event")
		return
	}

	_, err := s.ChannelMessageSendComplex(b.contentChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embeds.Episode(episode)},
	})
	if err != nil {
		logger.WithError(err).Error("Failed to post episode for completed event")
		return
	}
	logger.WithField("episode", episode.Title).Info("Posted episode for completed event")
}
