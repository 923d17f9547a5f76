package bots

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fenilmodi00/mc-discord-bots/models"
	"github.com/fenilmodi00/mc-discord-bots/services"
)

type fakeSession struct {
	mu        sync.Mutex
	responses []*discordgo.InteractionResponse
	sent      map[string][]*discordgo.MessageSend
	edits     []*discordgo.MessageEdit
	sendErr   error
	editErr   error
	commands  []*discordgo.ApplicationCommand
	reply     *discordgo.Message
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		sent:  make(map[string][]*discordgo.MessageSend),
		reply: &discordgo.Message{ID: "reply-1", ChannelID: "channel-1"},
	}
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) InteractionResponse(_ *discordgo.Interaction, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.reply, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent[channelID] = append(f.sent[channelID], data)
	return &discordgo.Message{ID: "sent-1", ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, m)
	if f.editErr != nil {
		return nil, f.editErr
	}
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

func (f *fakeSession) ApplicationCommandBulkOverwrite(_ string, _ string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.commands = commands
	return commands, nil
}

// lastResponse returns the most recent response, or nil
func (f *fakeSession) lastResponse() *discordgo.InteractionResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		return nil
	}
	return f.responses[len(f.responses)-1]
}

type apiCall struct {
	method string
	args   []interface{}
}

type fakeAPI struct {
	mu          sync.Mutex
	calls       []apiCall
	prediction  *models.EnhancedPrediction
	scores      *models.Scores
	results     []models.ShortEnhancedPrediction
	leaderboard *models.Leaderboard
	err         error
}

func (f *fakeAPI) record(method string, args ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, apiCall{method: method, args: args})
}

func (f *fakeAPI) predictionResult() (*models.EnhancedPrediction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.prediction, nil
}

func (f *fakeAPI) GetPrediction(_ context.Context, id int) (*models.EnhancedPrediction, error) {
	f.record("GetPrediction", id)
	return f.predictionResult()
}

func (f *fakeAPI) AddPrediction(_ context.Context, discordID, text string, dueDate time.Time) (*models.EnhancedPrediction, error) {
	f.record("AddPrediction", discordID, text, dueDate)
	return f.predictionResult()
}

func (f *fakeAPI) AddBet(_ context.Context, predictionID int, discordID string, endorsed bool) (*models.EnhancedPrediction, error) {
	f.record("AddBet", predictionID, discordID, endorsed)
	return f.predictionResult()
}

func (f *fakeAPI) AddVote(_ context.Context, predictionID int, discordID string, vote bool) (*models.EnhancedPrediction, error) {
	f.record("AddVote", predictionID, discordID, vote)
	return f.predictionResult()
}

func (f *fakeAPI) TriggerPrediction(_ context.Context, id int, discordID string, closedDate *time.Time) (*models.EnhancedPrediction, error) {
	f.record("TriggerPrediction", id, discordID, closedDate)
	return f.predictionResult()
}

func (f *fakeAPI) RetirePrediction(_ context.Context, id int, discordID string) (*models.EnhancedPrediction, error) {
	f.record("RetirePrediction", id, discordID)
	return f.predictionResult()
}

func (f *fakeAPI) GetScores(_ context.Context, discordID, seasonID string) (*models.Scores, error) {
	f.record("GetScores", discordID, seasonID)
	if f.err != nil {
		return nil, f.err
	}
	return f.scores, nil
}

func (f *fakeAPI) SearchPredictions(_ context.Context, options services.SearchOptions) ([]models.ShortEnhancedPrediction, error) {
	f.record("SearchPredictions", options)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeAPI) GetLeaderboard(_ context.Context, view models.LeaderboardType) (*models.Leaderboard, error) {
	f.record("GetLeaderboard", view)
	if f.err != nil {
		return nil, f.err
	}
	return f.leaderboard, nil
}

func (f *fakeAPI) lastCall() apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return apiCall{}
	}
	return f.calls[len(f.calls)-1]
}

type fakeStore struct {
	mu       sync.Mutex
	messages []models.PredictionMessage
	listErr  error
}

func (f *fakeStore) Save(_ context.Context, message models.PredictionMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeStore) ListByPrediction(_ context.Context, predictionID int) ([]models.PredictionMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.PredictionMessage
	for _, m := range f.messages {
		if m.PredictionID == predictionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.messages[:0]
	for _, m := range f.messages {
		if m.ChannelID != channelID || m.MessageID != messageID {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	return nil
}

var errStoreDown = errors.New("store unavailable")

// commandInteraction builds a slash command interaction invoking one subcommand
func commandInteraction(command, sub string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:   "interaction-1",
			Type: discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{
				Name: command,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: sub, Type: discordgo.ApplicationCommandOptionSubCommand, Options: options},
				},
			},
			Member: &discordgo.Member{User: &discordgo.User{ID: "100", Username: "predictor"}},
		},
	}
}

func buttonInteraction(customID string, message *discordgo.Message) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:      "interaction-2",
			Type:    discordgo.InteractionMessageComponent,
			Data:    discordgo.MessageComponentInteractionData{CustomID: customID},
			Message: message,
			Member:  &discordgo.Member{User: &discordgo.User{ID: "200", Username: "better"}},
		},
	}
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

// intOption mirrors how the gateway decodes integer options into float64
func intOption(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(value)}
}

func openPrediction(id int) *models.EnhancedPrediction {
	return &models.EnhancedPrediction{
		ShortEnhancedPrediction: models.ShortEnhancedPrediction{
			ID:          id,
			Predictor:   models.UserRef{ID: "u1", DiscordID: "100"},
			Text:        "Starship reaches orbit",
			CreatedDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			DueDate:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			Status:      models.PredictionOpen,
			Payouts:     models.Payouts{Endorse: 1.5, Undorse: 0.8},
		},
	}
}
