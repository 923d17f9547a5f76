package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fenilmodi00/mc-discord-bots/models"
	"github.com/fenilmodi00/mc-discord-bots/shared"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// NDB2Client is a typed gateway to the NDB2 prediction API. It is safe for
// concurrent use, keeps no cache and never retries. Every error it returns is a
// *shared.APIError.
type NDB2Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	metrics    *shared.HTTPMetrics
}

// SearchOptions filters and orders a prediction search. Zero values are omitted.
type SearchOptions struct {
	Statuses []models.PredictionLifeCycle
	Keyword  string
	SortBy   []models.SortByOption
	Page     int
}

type addPredictionBody struct {
	Text      string `json:"text"`
	DueDate   string `json:"due_date"`
	DiscordID string `json:"discord_id"`
}

type addBetBody struct {
	DiscordID string `json:"discord_id"`
	Endorsed  bool   `json:"endorsed"`
}

type addVoteBody struct {
	DiscordID string `json:"discord_id"`
	Vote      bool   `json:"vote"`
}

type triggerBody struct {
	DiscordID  *string `json:"discord_id,omitempty"`
	ClosedDate *string `json:"closed_date,omitempty"`
}

type retireBody struct {
	DiscordID string `json:"discord_id"`
}

// NewNDB2Client creates a client for baseURL authenticating with token. A nil
// httpClient gets a plain client with no timeout; metrics may be nil.
func NewNDB2Client(baseURL, token string, httpClient *http.Client, metrics *shared.HTTPMetrics) *NDB2Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &NDB2Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
		metrics:    metrics,
	}
}

// GetPrediction fetches one prediction with its bets and votes
func (c *NDB2Client) GetPrediction(ctx context.Context, id int) (*models.EnhancedPrediction, error) {
	return doRequest[*models.EnhancedPrediction](ctx, c, apiRequest{
		operation: "GetPrediction",
		method:    http.MethodGet,
		path:      []string{"api", "predictions", strconv.Itoa(id)},
	})
}

// AddPrediction creates a prediction for discordID due at dueDate
func (c *NDB2Client) AddPrediction(ctx context.Context, discordID, text string, dueDate time.Time) (*models.EnhancedPrediction, error) {
	return doRequest[*models.EnhancedPrediction](ctx, c, apiRequest{
		operation: "AddPrediction",
		method:    http.MethodPost,
		path:      []string{"api", "predictions"},
		body: addPredictionBody{
			Text:      text,
			DueDate:   dueDate.UTC().Format(time.RFC3339),
			DiscordID: discordID,
		},
	})
}

// AddBet endorses (true) or undorses (false) a prediction
func (c *NDB2Client) AddBet(ctx context.Context, predictionID int, discordID string, endorsed bool) (*models.EnhancedPrediction, error) {
	return doRequest[*models.EnhancedPrediction](ctx, c, apiRequest{
		operation: "AddBet",
		method:    http.MethodPost,
		path:      []string{"api", "predictions", strconv.Itoa(predictionID), "bets"},
		body:      addBetBody{DiscordID: discordID, Endorsed: endorsed},
	})
}

// AddVote casts a yes (true) or no (false) vote on a closed prediction
func (c *NDB2Client) AddVote(ctx context.Context, predictionID int, discordID string, vote bool) (*models.EnhancedPrediction, error) {
	return doRequest[*models.EnhancedPrediction](ctx, c, apiRequest{
		operation: "AddVote",
		method:    http.MethodPost,
		path:      []string{"api", "predictions", strconv.Itoa(predictionID), "votes"},
		body:      addVoteBody{DiscordID: discordID, Vote: vote},
	})
}

// TriggerPrediction closes a prediction for judgment. An empty discordID means
// the trigger was automatic; a nil closedDate lets the server use now.
func (c *NDB2Client) TriggerPrediction(ctx context.Context, id int, discordID string, closedDate *time.Time) (*models.EnhancedPrediction, error) {
	body := triggerBody{}
	if discordID != "" {
		body.DiscordID = &discordID
	}
	if closedDate != nil {
		formatted := closedDate.UTC().Format(time.RFC3339)
		body.ClosedDate = &formatted
	}

	return doRequest[*models.EnhancedPrediction](ctx, c, apiRequest{
		operation: "TriggerPrediction",
		method:    http.MethodPost,
		path:      []string{"api", "predictions", strconv.Itoa(id), "trigger"},
		body:      body,
	})
}

// RetirePrediction withdraws a prediction on behalf of its predictor
func (c *NDB2Client) RetirePrediction(ctx context.Context, id int, discordID string) (*models.EnhancedPrediction, error) {
	return doRequest[*models.EnhancedPrediction](ctx, c, apiRequest{
		operation: "RetirePrediction",
		method:    http.MethodPatch,
		path:      []string{"api", "predictions", strconv.Itoa(id), "retire"},
		body:      retireBody{DiscordID: discordID},
	})
}

// GetScores fetches a user's scores, scoped to seasonID when non-empty
func (c *NDB2Client) GetScores(ctx context.Context, discordID, seasonID string) (*models.Scores, error) {
	path := []string{"api", "users", "discord_id", discordID, "scores"}
	if seasonID != "" {
		path = append(path, "seasons", seasonID)
	}
	return doRequest[*models.Scores](ctx, c, apiRequest{
		operation: "GetScores",
		method:    http.MethodGet,
		path:      path,
	})
}

// SearchPredictions runs a filtered search. Unknown statuses or sort keys are
// rejected before any request is made.
func (c *NDB2Client) SearchPredictions(ctx context.Context, options SearchOptions) ([]models.ShortEnhancedPrediction, error) {
	const operation = "SearchPredictions"

	query := url.Values{}
	for _, status := range options.Statuses {
		if !status.Valid() {
			return nil, c.reject(operation, fmt.Sprintf("invalid prediction status %q", status))
		}
		query.Add("status", string(status))
	}
	if options.Keyword != "" {
		query.Set("keyword", options.Keyword)
	}
	for _, sortBy := range options.SortBy {
		if !sortBy.Valid() {
			return nil, c.reject(operation, fmt.Sprintf("invalid sort option %q", sortBy))
		}
		query.Add("sort_by", string(sortBy))
	}
	if options.Page > 0 {
		query.Set("page", strconv.Itoa(options.Page))
	}

	return doRequest[[]models.ShortEnhancedPrediction](ctx, c, apiRequest{
		operation: operation,
		method:    http.MethodGet,
		path:      []string{"api", "predictions", "search"},
		query:     query,
	})
}

// GetLeaderboard fetches the leaderboard for one view
func (c *NDB2Client) GetLeaderboard(ctx context.Context, view models.LeaderboardType) (*models.Leaderboard, error) {
	const operation = "GetLeaderboard"
	if !view.Valid() {
		return nil, c.reject(operation, fmt.Sprintf("invalid leaderboard type %q", view))
	}

	return doRequest[*models.Leaderboard](ctx, c, apiRequest{
		operation: operation,
		method:    http.MethodGet,
		path:      []string{"api", "scores"},
		query:     url.Values{"view": []string{string(view)}},
	})
}

func (c *NDB2Client) reject(operation, reason string) error {
	apiErr := shared.NewUnexpectedError(reason).WithOperation(operation)
	apiErr.LogError()
	c.record(operation, 0, 0, apiErr)
	return apiErr
}

func (c *NDB2Client) record(operation string, statusCode int, elapsed time.Duration, apiErr *shared.APIError) {
	if c.metrics == nil {
		return
	}
	kind := ""
	isTimeout := false
	if apiErr != nil {
		kind = string(apiErr.Kind)
		var netErr net.Error
		isTimeout = errors.As(apiErr.Cause, &netErr) && netErr.Timeout()
	}
	c.metrics.RecordHTTPRequest(operation, statusCode, elapsed, kind, isTimeout)
}

type apiRequest struct {
	operation string
	method    string
	path      []string
	query     url.Values
	body      interface{}
}

// doRequest performs one NDB2 call and decodes the envelope's data into T
func doRequest[T any](ctx context.Context, c *NDB2Client, r apiRequest) (T, error) {
	var result T
	requestID := uuid.NewString()
	started := time.Now()

	logger := logrus.WithFields(logrus.Fields{
		"component":  "NDB2Client",
		"operation":  r.operation,
		"method":     r.method,
		"request_id": requestID,
	})

	statusCode, data, apiErr := c.execute(ctx, r, requestID)
	if apiErr == nil {
		if isJSONNull(data) {
			apiErr = shared.NewMalformedResponseError(statusCode, errors.New("data is null"))
		} else if err := json.Unmarshal(data, &result); err != nil {
			apiErr = shared.NewMalformedResponseError(statusCode, err)
		}
	}

	elapsed := time.Since(started)
	c.record(r.operation, statusCode, elapsed, apiErr)

	if apiErr != nil {
		apiErr.WithOperation(r.operation).LogError()
		var zero T
		return zero, apiErr
	}

	logger.WithFields(logrus.Fields{
		"status_code":   statusCode,
		"response_time": elapsed,
	}).Debug("NDB2 request completed")
	return result, nil
}

// execute sends the request and returns the validated envelope's data. The
// returned status code is 0 when no response arrived.
func (c *NDB2Client) execute(ctx context.Context, r apiRequest, requestID string) (int, json.RawMessage, *shared.APIError) {
	endpoint, err := url.JoinPath(c.baseURL, r.path...)
	if err != nil {
		return 0, nil, shared.NewUnexpectedError(err)
	}
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return 0, nil, shared.NewUnexpectedError(err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		return 0, nil, shared.NewUnexpectedError(err)
	}
	shared.SetJSONHeaders(req, r.body != nil)
	shared.SetBearerToken(req, c.token)
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, shared.NewTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, shared.NewTransportError(err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	envelope, err := ValidateEnvelope(raw, ok)
	if err != nil {
		return resp.StatusCode, nil, shared.NewMalformedResponseError(resp.StatusCode, err)
	}
	if !ok || !envelope.Success {
		return resp.StatusCode, nil, shared.NewHTTPError(resp.StatusCode, envelope.ErrorCode, envelope.Message)
	}
	return resp.StatusCode, envelope.Data, nil
}
