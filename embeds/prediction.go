package embeds

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fenilmodi00/mc-discord-bots/models"
)

// Button actions carried in component custom IDs as "<action>:<prediction id>"
const (
	ActionEndorse = "endorse"
	ActionUndorse = "undorse"
	ActionAffirm  = "affirm"
	ActionNegate  = "negate"
	ActionDetails = "details"
)

// PredictionSummary renders the public announcement for a prediction
func PredictionSummary(p *models.EnhancedPrediction) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Predictor", Value: UserMention(p.Predictor.DiscordID), Inline: true},
		{Name: "Status", Value: strings.ToUpper(string(p.Status)), Inline: true},
		{
			Name:  "Due",
			Value: fmt.Sprintf("%s (%s)", DiscordTimestamp(p.DueDate, TimestampLongDateTime), DiscordTimestamp(p.DueDate, TimestampRelative)),
		},
		{
			Name:   "Bets",
			Value:  fmt.Sprintf("%d endorsed, %d undorsed", len(p.Endorsements()), len(p.Undorsements())),
			Inline: true,
		},
		{
			Name:   "Payouts",
			Value:  fmt.Sprintf("Endorse %sx, Undorse %sx", formatMultiplier(p.Payouts.Endorse), formatMultiplier(p.Payouts.Undorse)),
			Inline: true,
		},
	}

	if p.Status == models.PredictionClosed {
		closed := p.ClosedDate
		if closed == nil {
			closed = p.TriggeredDate
		}
		value := fmt.Sprintf("%d yes, %d no", len(p.YesVotes()), len(p.NoVotes()))
		if closed != nil {
			value += fmt.Sprintf("\nClosed %s", DiscordTimestamp(*closed, TimestampLongDateTime))
		}
		if p.Triggerer != nil {
			value += fmt.Sprintf(" by %s", UserMention(p.Triggerer.DiscordID))
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Votes", Value: value})
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Prediction #%d", p.ID),
		Description: truncate(p.Text, MaxDescriptionLength),
		Color:       StatusColor(p.Status),
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: predictionThumbnail},
		Fields:      fields,
		Timestamp:   p.CreatedDate.Format(time.RFC3339),
	}
}

// PredictionButtons returns the buttons valid for the prediction's status:
// betting while it can still be retired, voting while it can still be judged,
// details always.
func PredictionButtons(p *models.EnhancedPrediction) []discordgo.MessageComponent {
	var buttons []discordgo.MessageComponent
	if !p.Status.IsTerminal() {
		if p.Status.CanTransitionTo(models.PredictionRetired) {
			buttons = append(buttons,
				discordgo.Button{Label: "Endorse", Style: discordgo.SuccessButton, CustomID: ButtonCustomID(ActionEndorse, p.ID)},
				discordgo.Button{Label: "Undorse", Style: discordgo.DangerButton, CustomID: ButtonCustomID(ActionUndorse, p.ID)},
			)
		}
		if p.Status.CanTransitionTo(models.PredictionSuccessful) {
			buttons = append(buttons,
				discordgo.Button{Label: "Affirm", Style: discordgo.SuccessButton, CustomID: ButtonCustomID(ActionAffirm, p.ID)},
				discordgo.Button{Label: "Negate", Style: discordgo.DangerButton, CustomID: ButtonCustomID(ActionNegate, p.ID)},
			)
		}
	}
	buttons = append(buttons,
		discordgo.Button{Label: "Details", Style: discordgo.SecondaryButton, CustomID: ButtonCustomID(ActionDetails, p.ID)},
	)

	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

// ButtonCustomID builds the custom ID for a prediction button
func ButtonCustomID(action string, predictionID int) string {
	return action + ":" + strconv.Itoa(predictionID)
}

// ParseButtonCustomID splits a custom ID built by ButtonCustomID
func ParseButtonCustomID(customID string) (string, int, error) {
	action, rawID, found := strings.Cut(customID, ":")
	if !found || action == "" {
		return "", 0, fmt.Errorf("malformed button id %q", customID)
	}
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return "", 0, fmt.Errorf("malformed prediction id in button %q: %w", customID, err)
	}
	return action, id, nil
}
