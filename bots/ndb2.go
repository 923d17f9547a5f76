package bots

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fenilmodi00/mc-discord-bots/embeds"
	"github.com/fenilmodi00/mc-discord-bots/models"
	"github.com/fenilmodi00/mc-discord-bots/services"
	"github.com/fenilmodi00/mc-discord-bots/shared"
	"github.com/sirupsen/logrus"
)

// NDB2Bot answers /predict commands and prediction buttons
type NDB2Bot struct {
	api     PredictionAPI
	store   MessageStore
	metrics *shared.InteractionMetrics
	timeout time.Duration
	logger  *logrus.Entry

	announceChannelID string
}

type commandHandler func(ctx context.Context, s Responder, i *discordgo.InteractionCreate, user *discordgo.User, options commandOptions) (*reply, error)

type buttonHandler func(ctx context.Context, s Responder, i *discordgo.InteractionCreate, user *discordgo.User, predictionID int) (*reply, error)

// NewNDB2Bot creates the bot. store may be nil, in which case posted messages
// are not tracked and only the clicked message is refreshed after a change.
func NewNDB2Bot(api PredictionAPI, store MessageStore, metrics *shared.InteractionMetrics, timeout time.Duration) *NDB2Bot {
	if metrics == nil {
		metrics = shared.NewInteractionMetrics("ndb2")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NDB2Bot{
		api:     api,
		store:   store,
		metrics: metrics,
		timeout: timeout,
		logger:  logrus.WithField("component", "NDB2Bot"),
	}
}

// WithAnnouncementChannel makes new predictions also post to channelID
func (b *NDB2Bot) WithAnnouncementChannel(channelID string) *NDB2Bot {
	b.announceChannelID = channelID
	return b
}

func (b *NDB2Bot) commandHandlers() map[string]commandHandler {
	return map[string]commandHandler{
		"new":         b.handleNewPrediction,
		"view":        b.handleViewPrediction,
		"retire":      b.handleRetirePrediction,
		"trigger":     b.handleTriggerPrediction,
		"score":       b.handleViewScore,
		"leaderboard": b.handleViewLeaderboard,
		"search":      b.handleSearchPredictions,
		"list":        b.handleListPredictions,
	}
}

func (b *NDB2Bot) buttonHandlers() map[string]buttonHandler {
	return map[string]buttonHandler{
		embeds.ActionEndorse: b.betHandler(true),
		embeds.ActionUndorse: b.betHandler(false),
		embeds.ActionAffirm:  b.voteHandler(true),
		embeds.ActionNegate:  b.voteHandler(false),
		embeds.ActionDetails: b.handleViewDetails,
	}
}

// HandleInteraction routes one interaction. Interactions for other commands
// are ignored.
func (b *NDB2Bot) HandleInteraction(ctx context.Context, s Responder, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		if data.Name != predictCommand {
			return
		}
		name, options := subcommand(data)
		handler, ok := b.commandHandlers()[name]
		if !ok {
			b.finish(ctx, s, i, "predict "+name, nil, newUserError("Unknown subcommand."))
			return
		}
		b.run(ctx, s, i, "predict "+name, func(ctx context.Context, user *discordgo.User) (*reply, error) {
			return handler(ctx, s, i, user, options)
		})

	case discordgo.InteractionMessageComponent:
		action, predictionID, err := embeds.ParseButtonCustomID(i.MessageComponentData().CustomID)
		if err != nil {
			return
		}
		handler, ok := b.buttonHandlers()[action]
		if !ok {
			return
		}
		b.run(ctx, s, i, "button "+action, func(ctx context.Context, user *discordgo.User) (*reply, error) {
			return handler(ctx, s, i, user, predictionID)
		})
	}
}

func (b *NDB2Bot) run(ctx context.Context, s Responder, i *discordgo.InteractionCreate, name string, handle func(context.Context, *discordgo.User) (*reply, error)) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	user := interactionUser(i)
	if user == nil {
		b.finish(ctx, s, i, name, nil, newUserError("Could not identify who sent this."))
		return
	}

	r, err := handle(ctx, user)
	b.finish(ctx, s, i, name, r, err)
}

func (b *NDB2Bot) finish(ctx context.Context, s Responder, i *discordgo.InteractionCreate, name string, r *reply, err error) {
	logger := b.logger.WithFields(logrus.Fields{
		"interaction": name,
		"id":          i.ID,
	})
	b.metrics.Record(name, err == nil)

	if err != nil {
		respondWithError(s, i, logger, err)
		return
	}

	if err := respond(s, i, r); err != nil {
		logger.WithError(err).Error("Failed to send reply")
		return
	}

	if r.recordPrediction != 0 && b.store != nil {
		message, err := s.InteractionResponse(i.Interaction)
		if err != nil {
			logger.WithError(err).Warn("Failed to fetch reply for tracking")
			return
		}
		err = b.store.Save(ctx, models.PredictionMessage{
			PredictionID: r.recordPrediction,
			ChannelID:    message.ChannelID,
			MessageID:    message.ID,
		})
		if err != nil {
			logger.WithError(err).Warn("Failed to track prediction message")
		}
	}
}

func predictionReply(p *models.EnhancedPrediction, content string) *reply {
	return &reply{
		data: &discordgo.InteractionResponseData{
			Content:    content,
			Embeds:     []*discordgo.MessageEmbed{embeds.PredictionSummary(p)},
			Components: embeds.PredictionButtons(p),
		},
		recordPrediction: p.ID,
	}
}

func (b *NDB2Bot) handleNewPrediction(ctx context.Context, s Responder, i *discordgo.InteractionCreate, user *discordgo.User, options commandOptions) (*reply, error) {
	text := strings.TrimSpace(options.stringValue("text"))
	if text == "" {
		return nil, newUserError("A prediction needs some text.")
	}
	due, err := options.dateValue("due")
	if err != nil {
		return nil, err
	}
	if due == nil {
		return nil, newUserError("A prediction needs a due date.")
	}

	prediction, err := b.api.AddPrediction(ctx, user.ID, text, *due)
	if err != nil {
		return nil, err
	}
	if b.announceChannelID != "" && b.announceChannelID != i.ChannelID {
		b.announce(ctx, s, prediction)
	}
	return predictionReply(prediction, fmt.Sprintf("%s made a new prediction.", embeds.UserMention(user.ID))), nil
}

// announce posts p to the announcement channel and tracks the message.
// Failures are logged since the prediction already exists.
func (b *NDB2Bot) announce(ctx context.Context, s Responder, p *models.EnhancedPrediction) {
	logger := b.logger.WithFields(logrus.Fields{
		"prediction_id": p.ID,
		"channel_id":    b.announceChannelID,
	})
	message, err := s.ChannelMessageSendComplex(b.announceChannelID, &discordgo.MessageSend{
		Content:    fmt.Sprintf("%s made a new prediction.", embeds.UserMention(p.Predictor.DiscordID)),
		Embeds:     []*discordgo.MessageEmbed{embeds.PredictionSummary(p)},
		Components: embeds.PredictionButtons(p),
	})
	if err != nil {
		logger.WithError(err).Warn("Failed to announce prediction")
		return
	}
	if b.store == nil {
		return
	}
	err = b.store.Save(ctx, models.PredictionMessage{PredictionID: p.ID, ChannelID: message.ChannelID, MessageID: message.ID})
	if err != nil {
		logger.WithError(err).Warn("Failed to track prediction announcement")
	}
}

func (b *NDB2Bot) handleViewPrediction(ctx context.Context, _ Responder, _ *discordgo.InteractionCreate, _ *discordgo.User, options commandOptions) (*reply, error) {
	id, ok := options.intValue("id")
	if !ok {
		return nil, newUserError("A prediction ID is required.")
	}
	prediction, err := b.api.GetPrediction(ctx, id)
	if err != nil {
		return nil, err
	}
	return predictionReply(prediction, ""), nil
}

func (b *NDB2Bot) handleRetirePrediction(ctx context.Context, s Responder, _ *discordgo.InteractionCreate, user *discordgo.User, options commandOptions) (*reply, error) {
	id, ok := options.intValue("id")
	if !ok {
		return nil, newUserError("A prediction ID is required.")
	}
	prediction, err := b.api.RetirePrediction(ctx, id, user.ID)
	if err != nil {
		return nil, err
	}
	b.RefreshPredictionMessages(ctx, s, prediction, nil)
	return predictionReply(prediction, fmt.Sprintf("Prediction #%d has been retired.", prediction.ID)), nil
}

func (b *NDB2Bot) handleTriggerPrediction(ctx context.Context, s Responder, _ *discordgo.InteractionCreate, user *discordgo.User, options commandOptions) (*reply, error) {
	id, ok := options.intValue("id")
	if !ok {
		return nil, newUserError("A prediction ID is required.")
	}
	closed, err := options.dateValue("closed")
	if err != nil {
		return nil, err
	}

	prediction, err := b.api.TriggerPrediction(ctx, id, user.ID, closed)
	if err != nil {
		return nil, err
	}
	b.RefreshPredictionMessages(ctx, s, prediction, nil)
	return predictionReply(prediction,
		fmt.Sprintf("Prediction #%d has been triggered by %s. Voting is open.", prediction.ID, embeds.UserMention(user.ID))), nil
}

func (b *NDB2Bot) handleViewScore(ctx context.Context, _ Responder, _ *discordgo.InteractionCreate, user *discordgo.User, options commandOptions) (*reply, error) {
	season := options.stringValue("season")
	scores, err := b.api.GetScores(ctx, user.ID, season)
	if err != nil {
		return nil, err
	}
	return &reply{
		data:      &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embeds.Scores(user.ID, season, scores)}},
		ephemeral: true,
	}, nil
}

func (b *NDB2Bot) handleViewLeaderboard(ctx context.Context, _ Responder, _ *discordgo.InteractionCreate, _ *discordgo.User, options commandOptions) (*reply, error) {
	view := models.LeaderboardType(options.stringValue("type"))
	if view == "" {
		view = models.LeaderboardPoints
	}
	board, err := b.api.GetLeaderboard(ctx, view)
	if err != nil {
		return nil, err
	}
	return &reply{
		data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embeds.Leaderboard(board)}},
	}, nil
}

func (b *NDB2Bot) handleSearchPredictions(ctx context.Context, _ Responder, _ *discordgo.InteractionCreate, _ *discordgo.User, options commandOptions) (*reply, error) {
	search := services.SearchOptions{Keyword: strings.TrimSpace(options.stringValue("keyword"))}
	var filters []string
	if search.Keyword != "" {
		filters = append(filters, fmt.Sprintf("keyword: %s", search.Keyword))
	}
	if status := options.stringValue("status"); status != "" {
		search.Statuses = []models.PredictionLifeCycle{models.PredictionLifeCycle(status)}
		filters = append(filters, "status: "+status)
	}
	if sortBy := options.stringValue("sort"); sortBy != "" {
		search.SortBy = []models.SortByOption{models.SortByOption(sortBy)}
		filters = append(filters, "sort: "+sortBy)
	}
	if page, ok := options.intValue("page"); ok && page > 1 {
		search.Page = page
		filters = append(filters, fmt.Sprintf("page: %d", page))
	}
	return b.searchReply(ctx, search, strings.Join(filters, ", "))
}

func (b *NDB2Bot) handleListPredictions(ctx context.Context, _ Responder, _ *discordgo.InteractionCreate, _ *discordgo.User, options commandOptions) (*reply, error) {
	status := models.PredictionLifeCycle(options.stringValue("status"))
	if status == "" {
		status = models.PredictionOpen
	}
	search := services.SearchOptions{
		Statuses: []models.PredictionLifeCycle{status},
		SortBy:   []models.SortByOption{listSortOrder(status)},
	}
	filters := "status: " + string(status)
	if page, ok := options.intValue("page"); ok && page > 1 {
		search.Page = page
		filters += fmt.Sprintf(", page: %d", page)
	}
	return b.searchReply(ctx, search, filters)
}

// listSortOrder orders each status list by the date most relevant to it
func listSortOrder(status models.PredictionLifeCycle) models.SortByOption {
	switch status {
	case models.PredictionRetired:
		return models.SortRetiredDesc
	case models.PredictionClosed:
		return models.SortClosedDesc
	case models.PredictionSuccessful, models.PredictionFailed:
		return models.SortJudgedDesc
	default:
		return models.SortDueAsc
	}
}

func (b *NDB2Bot) searchReply(ctx context.Context, search services.SearchOptions, description string) (*reply, error) {
	results, err := b.api.SearchPredictions(ctx, search)
	if err != nil {
		return nil, err
	}
	return &reply{
		data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embeds.SearchResults(description, results)}},
	}, nil
}

func (b *NDB2Bot) betHandler(endorsed bool) buttonHandler {
	return func(ctx context.Context, s Responder, i *discordgo.InteractionCreate, user *discordgo.User, predictionID int) (*reply, error) {
		prediction, err := b.api.AddBet(ctx, predictionID, user.ID, endorsed)
		if err != nil {
			return nil, err
		}
		b.RefreshPredictionMessages(ctx, s, prediction, i.Message)

		verb := "endorsed"
		if !endorsed {
			verb = "undorsed"
		}
		return ephemeralText(fmt.Sprintf("You have successfully %s prediction #%d.", verb, prediction.ID)), nil
	}
}

func (b *NDB2Bot) voteHandler(vote bool) buttonHandler {
	return func(ctx context.Context, s Responder, i *discordgo.InteractionCreate, user *discordgo.User, predictionID int) (*reply, error) {
		prediction, err := b.api.AddVote(ctx, predictionID, user.ID, vote)
		if err != nil {
			return nil, err
		}
		b.RefreshPredictionMessages(ctx, s, prediction, i.Message)

		verb := "affirmed"
		if !vote {
			verb = "negated"
		}
		return ephemeralText(fmt.Sprintf("You have %s prediction #%d.", verb, prediction.ID)), nil
	}
}

func (b *NDB2Bot) handleViewDetails(ctx context.Context, _ Responder, _ *discordgo.InteractionCreate, _ *discordgo.User, predictionID int) (*reply, error) {
	prediction, err := b.api.GetPrediction(ctx, predictionID)
	if err != nil {
		return nil, err
	}
	return &reply{
		data:      &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embeds.PredictionDetails(prediction)}},
		ephemeral: true,
	}, nil
}

func ephemeralText(content string) *reply {
	return &reply{
		data:      &discordgo.InteractionResponseData{Content: content},
		ephemeral: true,
	}
}

// RefreshPredictionMessages re-renders every tracked message showing p, plus
// clicked when it is not already tracked. Failures are logged and skipped.
func (b *NDB2Bot) RefreshPredictionMessages(ctx context.Context, s Responder, p *models.EnhancedPrediction, clicked *discordgo.Message) {
	type target struct{ channelID, messageID string }
	var targets []target
	seen := make(map[target]bool)
	add := func(t target) {
		if t.channelID == "" || t.messageID == "" || seen[t] {
			return
		}
		seen[t] = true
		targets = append(targets, t)
	}

	if clicked != nil {
		add(target{clicked.ChannelID, clicked.ID})
	}
	if b.store != nil {
		messages, err := b.store.ListByPrediction(ctx, p.ID)
		if err != nil {
			b.logger.WithError(err).WithField("prediction_id", p.ID).Warn("Failed to list tracked messages")
		}
		for _, m := range messages {
			add(target{m.ChannelID, m.MessageID})
		}
	}

	messageEmbeds := []*discordgo.MessageEmbed{embeds.PredictionSummary(p)}
	components := embeds.PredictionButtons(p)
	for _, t := range targets {
		_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         t.messageID,
			Channel:    t.channelID,
			Embeds:     &messageEmbeds,
			Components: &components,
		})
		if err == nil {
			continue
		}
		logger := b.logger.WithFields(logrus.Fields{
			"prediction_id": p.ID,
			"channel_id":    t.channelID,
			"message_id":    t.messageID,
		})
		if isUnknownMessage(err) && b.store != nil {
			if err := b.store.Delete(ctx, t.channelID, t.messageID); err != nil {
				logger.WithError(err).Warn("Failed to forget deleted prediction message")
			}
			continue
		}
		logger.WithError(err).Warn("Failed to refresh prediction message")
	}
}

// isUnknownMessage reports whether Discord rejected an edit because the
// message no longer exists
func isUnknownMessage(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage
}
