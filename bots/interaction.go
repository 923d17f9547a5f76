package bots

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fenilmodi00/mc-discord-bots/shared"
	"github.com/sirupsen/logrus"
)

const dateOptionLayout = "2006-01-02"

// userError is a rejected input whose message is safe to show as is
type userError struct {
	message string
}

func (e *userError) Error() string { return e.message }

func newUserError(format string, args ...interface{}) error {
	return &userError{message: fmt.Sprintf(format, args...)}
}

// replyMessageFor picks the text shown to a user for a failed interaction
func replyMessageFor(err error) string {
	var ue *userError
	if errors.As(err, &ue) {
		return ue.message
	}
	return shared.UserMessageFor(err)
}

// reply is what a handler wants sent back for one interaction
type reply struct {
	data      *discordgo.InteractionResponseData
	ephemeral bool
	// recordPrediction, when non-zero, stores the sent message so later changes
	// to that prediction refresh it
	recordPrediction int
}

func respond(s Responder, i *discordgo.InteractionCreate, r *reply) error {
	if r.ephemeral {
		r.data.Flags |= discordgo.MessageFlagsEphemeral
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: r.data,
	})
}

func respondWithError(s Responder, i *discordgo.InteractionCreate, logger *logrus.Entry, err error) {
	logger.WithFields(logrus.Fields{
		"diagnostic": shared.DiagnosticFor(err),
	}).Warn("Interaction failed")

	respondErr := respond(s, i, &reply{
		data:      &discordgo.InteractionResponseData{Content: replyMessageFor(err)},
		ephemeral: true,
	})
	if respondErr != nil {
		logger.WithError(respondErr).Error("Failed to send error reply")
	}
}

// interactionUser returns the invoking user in guilds and DMs alike
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// commandOptions flattens a subcommand's options by name
type commandOptions map[string]*discordgo.ApplicationCommandInteractionDataOption

// subcommand returns the invoked subcommand name and its options
func subcommand(data discordgo.ApplicationCommandInteractionData) (string, commandOptions) {
	options := commandOptions{}
	if len(data.Options) == 0 {
		return "", options
	}
	sub := data.Options[0]
	if sub.Type != discordgo.ApplicationCommandOptionSubCommand {
		for _, option := range data.Options {
			options[option.Name] = option
		}
		return "", options
	}
	for _, option := range sub.Options {
		options[option.Name] = option
	}
	return sub.Name, options
}

func (o commandOptions) stringValue(name string) string {
	if option, ok := o[name]; ok {
		if value, ok := option.Value.(string); ok {
			return value
		}
	}
	return ""
}

func (o commandOptions) intValue(name string) (int, bool) {
	option, ok := o[name]
	if !ok {
		return 0, false
	}
	switch value := option.Value.(type) {
	case float64:
		return int(value), true
	case int64:
		return int(value), true
	case int:
		return value, true
	}
	return 0, false
}

func (o commandOptions) dateValue(name string) (*time.Time, error) {
	raw := o.stringValue(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(dateOptionLayout, raw, time.UTC)
	if err != nil {
		return nil, newUserError("%q is not a date. Use the format YYYY-MM-DD.", raw)
	}
	return &parsed, nil
}
