package models

import (
	"encoding/json"
	"time"
)

// PredictionLifeCycle is the status of a prediction as reported by NDB2
type PredictionLifeCycle string

const (
	PredictionOpen       PredictionLifeCycle = "open"
	PredictionRetired    PredictionLifeCycle = "retired"
	PredictionClosed     PredictionLifeCycle = "closed"
	PredictionSuccessful PredictionLifeCycle = "successful"
	PredictionFailed     PredictionLifeCycle = "failed"
)

// AllPredictionLifeCycles lists every status in lifecycle order
var AllPredictionLifeCycles = []PredictionLifeCycle{
	PredictionOpen,
	PredictionRetired,
	PredictionClosed,
	PredictionSuccessful,
	PredictionFailed,
}

var lifeCycleTransitions = map[PredictionLifeCycle][]PredictionLifeCycle{
	PredictionOpen:   {PredictionRetired, PredictionClosed},
	PredictionClosed: {PredictionSuccessful, PredictionFailed},
}

// Valid reports whether s is one of the five known statuses
func (s PredictionLifeCycle) Valid() bool {
	for _, known := range AllPredictionLifeCycles {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition can happen
func (s PredictionLifeCycle) IsTerminal() bool {
	return s == PredictionRetired || s == PredictionSuccessful || s == PredictionFailed
}

// CanTransitionTo reports whether NDB2 may move a prediction from s to next
func (s PredictionLifeCycle) CanTransitionTo(next PredictionLifeCycle) bool {
	for _, allowed := range lifeCycleTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SortByOption is a `{field}-{asc|desc}` search ordering accepted by NDB2
type SortByOption string

const (
	SortCreatedAsc    SortByOption = "created_date-asc"
	SortCreatedDesc   SortByOption = "created_date-desc"
	SortDueAsc        SortByOption = "due_date-asc"
	SortDueDesc       SortByOption = "due_date-desc"
	SortRetiredAsc    SortByOption = "retired_date-asc"
	SortRetiredDesc   SortByOption = "retired_date-desc"
	SortTriggeredAsc  SortByOption = "triggered_date-asc"
	SortTriggeredDesc SortByOption = "triggered_date-desc"
	SortClosedAsc     SortByOption = "closed_date-asc"
	SortClosedDesc    SortByOption = "closed_date-desc"
	SortJudgedAsc     SortByOption = "judged_date-asc"
	SortJudgedDesc    SortByOption = "judged_date-desc"
)

// AllSortByOptions lists every accepted sort key
var AllSortByOptions = []SortByOption{
	SortCreatedAsc, SortCreatedDesc,
	SortDueAsc, SortDueDesc,
	SortRetiredAsc, SortRetiredDesc,
	SortTriggeredAsc, SortTriggeredDesc,
	SortClosedAsc, SortClosedDesc,
	SortJudgedAsc, SortJudgedDesc,
}

// Valid reports whether o is an accepted sort key
func (o SortByOption) Valid() bool {
	for _, known := range AllSortByOptions {
		if o == known {
			return true
		}
	}
	return false
}

// LeaderboardType selects which ranking NDB2 returns
type LeaderboardType string

const (
	LeaderboardPoints      LeaderboardType = "points"
	LeaderboardPredictions LeaderboardType = "predictions"
	LeaderboardBets        LeaderboardType = "bets"
)

// Valid reports whether t is a known leaderboard view
func (t LeaderboardType) Valid() bool {
	switch t {
	case LeaderboardPoints, LeaderboardPredictions, LeaderboardBets:
		return true
	}
	return false
}

// Server error codes reported in the envelope's errorCode field
const (
	ErrorCodeServer            = "SERVER_ERROR"
	ErrorCodeAuthentication    = "AUTHENTICATION_ERROR"
	ErrorCodeBadRequest        = "BAD_REQUEST"
	ErrorCodeMalformedBodyData = "MALFORMED_BODY_DATA"
)

// Envelope is the wrapper NDB2 puts around every response body
type Envelope struct {
	Success   bool            `json:"success"`
	ErrorCode string          `json:"errorCode,omitempty"`
	Message   *string         `json:"message"`
	Data      json.RawMessage `json:"data"`
}

// UserRef identifies an NDB2 user and their Discord account
type UserRef struct {
	ID        string `json:"id"`
	DiscordID string `json:"discord_id"`
}

type Payouts struct {
	Endorse float64 `json:"endorse"`
	Undorse float64 `json:"undorse"`
}

type EnhancedPredictionBet struct {
	ID       int       `json:"id"`
	Date     time.Time `json:"date"`
	Endorsed bool      `json:"endorsed"`
	Wager    int       `json:"wager"`
	Better   UserRef   `json:"better"`
}

type EnhancedPredictionVote struct {
	ID        string    `json:"id"`
	Vote      bool      `json:"vote"`
	VotedDate time.Time `json:"voted_date"`
	Voter     UserRef   `json:"voter"`
}

// ShortEnhancedPrediction is a prediction without its bets and votes, as returned by search
type ShortEnhancedPrediction struct {
	ID            int                 `json:"id"`
	Predictor     UserRef             `json:"predictor"`
	Text          string              `json:"text"`
	CreatedDate   time.Time           `json:"created_date"`
	DueDate       time.Time           `json:"due_date"`
	ClosedDate    *time.Time          `json:"closed_date"`
	TriggeredDate *time.Time          `json:"triggered_date"`
	Triggerer     *UserRef            `json:"triggerer"`
	JudgedDate    *time.Time          `json:"judged_date"`
	RetiredDate   *time.Time          `json:"retired_date"`
	Status        PredictionLifeCycle `json:"status"`
	Payouts       Payouts             `json:"payouts"`
}

type EnhancedPrediction struct {
	ShortEnhancedPrediction
	Bets  []EnhancedPredictionBet  `json:"bets"`
	Votes []EnhancedPredictionVote `json:"votes"`
}

// Endorsements returns the endorsing bets in wager order
func (p *EnhancedPrediction) Endorsements() []EnhancedPredictionBet {
	return p.filterBets(true)
}

// Undorsements returns the undorsing bets in wager order
func (p *EnhancedPrediction) Undorsements() []EnhancedPredictionBet {
	return p.filterBets(false)
}

func (p *EnhancedPrediction) filterBets(endorsed bool) []EnhancedPredictionBet {
	bets := make([]EnhancedPredictionBet, 0, len(p.Bets))
	for _, bet := range p.Bets {
		if bet.Endorsed == endorsed {
			bets = append(bets, bet)
		}
	}
	return bets
}

// YesVotes returns the affirmative votes in voting order
func (p *EnhancedPrediction) YesVotes() []EnhancedPredictionVote {
	return p.filterVotes(true)
}

// NoVotes returns the negative votes in voting order
func (p *EnhancedPrediction) NoVotes() []EnhancedPredictionVote {
	return p.filterVotes(false)
}

func (p *EnhancedPrediction) filterVotes(vote bool) []EnhancedPredictionVote {
	votes := make([]EnhancedPredictionVote, 0, len(p.Votes))
	for _, v := range p.Votes {
		if v.Vote == vote {
			votes = append(votes, v)
		}
	}
	return votes
}

type RankedTally struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Pending    int `json:"pending"`
	Retired    int `json:"retired"`
	Rank       int `json:"rank"`
}

type Scores struct {
	Score struct {
		Points int `json:"points"`
		Rank   int `json:"rank"`
	} `json:"score"`
	Predictions RankedTally `json:"predictions"`
	Bets        RankedTally `json:"bets"`
	Votes       struct {
		Sycophantic int `json:"sycophantic"`
		Contrarian  int `json:"contrarian"`
		Pending     int `json:"pending"`
	} `json:"votes"`
}

type LeaderTally struct {
	Successful   int `json:"successful"`
	Unsuccessful int `json:"unsuccessful"`
	Total        int `json:"total"`
}

// Leader is one row of a leaderboard; only the field matching the board type is set
type Leader struct {
	ID          string       `json:"id"`
	DiscordID   string       `json:"discord_id"`
	Rank        int          `json:"rank"`
	Points      *int         `json:"points,omitempty"`
	Predictions *LeaderTally `json:"predictions,omitempty"`
	Bets        *LeaderTally `json:"bets,omitempty"`
}

type Season struct {
	ID    int       `json:"id"`
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Leaderboard struct {
	Type    LeaderboardType `json:"type"`
	Season  *Season         `json:"season,omitempty"`
	Leaders []Leader        `json:"leaders"`
}
