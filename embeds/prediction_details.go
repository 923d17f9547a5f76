package embeds

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fenilmodi00/mc-discord-bots/models"
	"github.com/shopspring/decimal"
)

const (
	detailsTitle        = "Detailed Prediction View"
	predictionThumbnail = "https://res.cloudinary.com/dj5enq03a/image/upload/v1679231457/Discord%20Assets/5067685_evmy8z.png"

	// MinimumBetsForRisk is the bet count below which NDB2 gives no risk verdict
	MinimumBetsForRisk = 4

	accuracyDisclaimer = "The data in this detail reply is current at the time of click but could become out of date as different bets or votes are made. These kinds of replies (ephemeral replies, that only you can see) cannot be edited after the fact, so to ensure you are getting the most up to date info, click the Details button again to get a new reply as needed."
)

// Field names used by the details view
const (
	FieldStatus          = "Current Prediction Status"
	FieldRiskAssessment  = "Risk Assessment"
	FieldCurrentOdds     = "Current Odds"
	FieldEndorsements    = "✅ Endorsements"
	FieldUndorsements    = "❌ Undorsements"
	FieldYesVotes        = "✅ Yes Votes"
	FieldNoVotes         = "❌ No Votes"
	FieldNotes           = "Notes"
	FieldPayouts         = "Payouts"
	FieldPayoutBreakdown = "Payout Breakdown"
)

type fieldBuilder func(p *models.EnhancedPrediction) []*discordgo.MessageEmbedField

var detailFieldsByStatus = map[models.PredictionLifeCycle]fieldBuilder{
	models.PredictionOpen: func(p *models.EnhancedPrediction) []*discordgo.MessageEmbedField {
		return []*discordgo.MessageEmbedField{
			riskAssessmentField(p),
			currentOddsField(p.Payouts),
			endorsementsField(p),
			undorsementsField(p),
			notesField(),
		}
	},
	models.PredictionClosed: func(p *models.EnhancedPrediction) []*discordgo.MessageEmbedField {
		return []*discordgo.MessageEmbedField{
			endorsementsField(p),
			undorsementsField(p),
			yesVotesField(p),
			noVotesField(p),
			notesField(),
		}
	},
	models.PredictionRetired: func(p *models.EnhancedPrediction) []*discordgo.MessageEmbedField {
		return []*discordgo.MessageEmbedField{
			endorsementsField(p),
			undorsementsField(p),
		}
	},
	models.PredictionSuccessful: judgedFields,
	models.PredictionFailed:     judgedFields,
}

func judgedFields(p *models.EnhancedPrediction) []*discordgo.MessageEmbedField {
	return []*discordgo.MessageEmbedField{
		payoutSummaryField(p),
		payoutBreakdownField(p),
		yesVotesField(p),
		noVotesField(p),
	}
}

// PredictionDetails renders the detailed view of a prediction. The field set is
// chosen by status alone; an unknown status gets only the status field.
func PredictionDetails(p *models.EnhancedPrediction) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{statusField(p)}
	if build, ok := detailFieldsByStatus[p.Status]; ok {
		fields = append(fields, build(p)...)
	}

	return &discordgo.MessageEmbed{
		Title:       detailsTitle,
		Description: truncate(p.Text, MaxDescriptionLength-len(fieldSpacer)) + fieldSpacer,
		Color:       StatusColor(p.Status),
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: predictionThumbnail},
		Fields:      fields,
	}
}

// StatusColor maps a status to its embed color
func StatusColor(status models.PredictionLifeCycle) int {
	switch status {
	case models.PredictionClosed:
		return ColorClosed
	case models.PredictionRetired:
		return ColorRetired
	case models.PredictionSuccessful:
		return ColorSuccessful
	case models.PredictionFailed:
		return ColorFailed
	default:
		return ColorOpen
	}
}

func statusField(p *models.EnhancedPrediction) *discordgo.MessageEmbedField {
	value := strings.ToUpper(string(p.Status))
	if p.Status == models.PredictionRetired && p.RetiredDate != nil {
		value += fmt.Sprintf("\nThis prediction was retired by the predictor at %s (%s).",
			DiscordTimestamp(*p.RetiredDate, TimestampLongDateTime),
			DiscordTimestamp(*p.RetiredDate, TimestampRelative))
	}
	return &discordgo.MessageEmbedField{Name: FieldStatus, Value: value + fieldSpacer}
}

func riskAssessmentField(p *models.EnhancedPrediction) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{
		Name:  FieldRiskAssessment,
		Value: RiskAssessment(len(p.Bets), p.Payouts),
	}
}

// RiskAssessment describes which side of an open prediction is risky. The side
// with the lower payout multiplier is the favored, safe one.
func RiskAssessment(betCount int, payouts models.Payouts) string {
	if betCount < MinimumBetsForRisk {
		return fmt.Sprintf("There aren't enough bets to get a good picture on this prediction's risk level yet. NDB2 makes a determination once there are at least four bets, but there are only %d at this moment.", betCount)
	}

	switch {
	case payouts.Endorse > payouts.Undorse:
		return "Endorsing this prediction is currently considered __risky__, while undorsing it is considered __safe__. Most people seem to think it will fail, so endorse at your own risk. Undorsement rewards will be lower."
	case payouts.Endorse < payouts.Undorse:
		return "Endorsing this prediction is currently considered __safe__, while undorsing it is considered __risky__. Most people seem to think it will pass, so endorsement rewards will be lower. Undorse at your own risk."
	default:
		return "Endorsing and undorsing this prediction currently pay out the same. Opinion appears to be evenly split."
	}
}

func currentOddsField(payouts models.Payouts) *discordgo.MessageEmbedField {
	endorse := formatMultiplier(payouts.Endorse)
	undorse := formatMultiplier(payouts.Undorse)
	return &discordgo.MessageEmbedField{
		Name: FieldCurrentOdds,
		Value: fmt.Sprintf("A successful prediction would pay current endorsers at %s times their wager (days). Undorsers would lose %s times their wager.\n\nA failed prediction would pay out current undorsers at %s times their wager (days), and endorsers would lose %s times their wager.",
			endorse, undorse, undorse, endorse) + fieldSpacer,
	}
}

func formatMultiplier(multiplier float64) string {
	return decimal.NewFromFloat(multiplier).Round(2).String()
}

func endorsementsField(p *models.EnhancedPrediction) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: FieldEndorsements, Value: betLines(p, p.Endorsements())}
}

func undorsementsField(p *models.EnhancedPrediction) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: FieldUndorsements, Value: betLines(p, p.Undorsements())}
}

func yesVotesField(p *models.EnhancedPrediction) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: FieldYesVotes, Value: voteLines(p.YesVotes())}
}

func noVotesField(p *models.EnhancedPrediction) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: FieldNoVotes, Value: voteLines(p.NoVotes())}
}

func notesField() *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: FieldNotes, Value: accuracyDisclaimer}
}

func betLines(p *models.EnhancedPrediction, bets []models.EnhancedPredictionBet) string {
	lines := make([]string, 0, len(bets))
	for _, bet := range bets {
		lines = append(lines, fmt.Sprintf("%s %s (%d points wagered)",
			UserMention(bet.Better.DiscordID),
			DiscordTimestamp(bet.Date, TimestampLongDate),
			BetWager(bet, p.DueDate)))
	}
	return joinLines(lines)
}

func voteLines(votes []models.EnhancedPredictionVote) string {
	lines := make([]string, 0, len(votes))
	for _, vote := range votes {
		lines = append(lines, UserMention(vote.Voter.DiscordID))
	}
	return joinLines(lines)
}

// WagerDays is the number of whole days between a bet and the prediction's due
// date, floored
func WagerDays(dueDate, betDate time.Time) int {
	const day = 24 * time.Hour
	lead := dueDate.Sub(betDate)
	days := lead / day
	if lead < 0 && lead%day != 0 {
		days--
	}
	return int(days)
}

// BetWager returns the server-reported wager, deriving it from the due date
// when the server sent none
func BetWager(bet models.EnhancedPredictionBet, dueDate time.Time) int {
	if bet.Wager > 0 {
		return bet.Wager
	}
	return WagerDays(dueDate, bet.Date)
}

func payoutSummaryField(p *models.EnhancedPrediction) *discordgo.MessageEmbedField {
	endorse := formatMultiplier(p.Payouts.Endorse)
	undorse := formatMultiplier(p.Payouts.Undorse)

	var value string
	if p.Status == models.PredictionSuccessful {
		value = fmt.Sprintf("This prediction was judged successful. Endorsers were paid %s times their wager, and undorsers lost %s times their wager.", endorse, undorse)
	} else {
		value = fmt.Sprintf("This prediction was judged a failure. Undorsers were paid %s times their wager, and endorsers lost %s times their wager.", undorse, endorse)
	}
	if p.JudgedDate != nil {
		value += fmt.Sprintf(" Judgment was made %s.", DiscordTimestamp(*p.JudgedDate, TimestampLongDateTime))
	}
	return &discordgo.MessageEmbedField{Name: FieldPayouts, Value: value + fieldSpacer}
}

func payoutBreakdownField(p *models.EnhancedPrediction) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: FieldPayoutBreakdown, Value: joinLines(PayoutLines(p))}
}

// PayoutLines lists each bettor's point change on a judged prediction, endorsers
// first. Winners gain wager times their side's payout, losers lose wager times
// their own side's payout, rounded to whole points.
func PayoutLines(p *models.EnhancedPrediction) []string {
	endorsersWon := p.Status == models.PredictionSuccessful
	endorse := decimal.NewFromFloat(p.Payouts.Endorse)
	undorse := decimal.NewFromFloat(p.Payouts.Undorse)

	lines := make([]string, 0, len(p.Bets))
	for _, bet := range p.Endorsements() {
		lines = append(lines, payoutLine(bet, p.DueDate, endorse, endorsersWon))
	}
	for _, bet := range p.Undorsements() {
		lines = append(lines, payoutLine(bet, p.DueDate, undorse, !endorsersWon))
	}
	return lines
}

func payoutLine(bet models.EnhancedPredictionBet, dueDate time.Time, multiplier decimal.Decimal, won bool) string {
	points := decimal.NewFromInt(int64(BetWager(bet, dueDate))).Mul(multiplier).Round(0)
	sign := "+"
	if !won {
		sign = "-"
	}
	return fmt.Sprintf("%s %s%s points", UserMention(bet.Better.DiscordID), sign, points.String())
}
