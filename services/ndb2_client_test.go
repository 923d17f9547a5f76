package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fenilmodi00/mc-discord-bots/models"
	"github.com/fenilmodi00/mc-discord-bots/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const predictionFortyTwo = `{
	"success": true,
	"message": null,
	"data": {
		"id": 42,
		"predictor": {"id": "u1", "discord_id": "100"},
		"text": "Starship reaches orbit",
		"created_date": "2024-01-01T00:00:00Z",
		"due_date": "2024-01-10T00:00:00Z",
		"closed_date": null,
		"triggered_date": null,
		"triggerer": null,
		"judged_date": null,
		"retired_date": null,
		"status": "open",
		"payouts": {"endorse": 1.5, "undorse": 0.8},
		"bets": [
			{"id": 1, "date": "2024-01-01T00:00:00Z", "endorsed": true, "wager": 9, "better": {"id": "u1", "discord_id": "100"}},
			{"id": 2, "date": "2024-01-02T00:00:00Z", "endorsed": true, "wager": 8, "better": {"id": "u2", "discord_id": "200"}},
			{"id": 3, "date": "2024-01-03T00:00:00Z", "endorsed": true, "wager": 7, "better": {"id": "u3", "discord_id": "300"}},
			{"id": 4, "date": "2024-01-04T00:00:00Z", "endorsed": true, "wager": 6, "better": {"id": "u4", "discord_id": "400"}},
			{"id": 5, "date": "2024-01-05T00:00:00Z", "endorsed": true, "wager": 5, "better": {"id": "u5", "discord_id": "500"}}
		],
		"votes": []
	}
}`

type recordedRequest struct {
	method string
	path   string
	query  map[string][]string
	header http.Header
	body   map[string]interface{}
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var (
		requests []recordedRequest
		mu       sync.Mutex
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorded := recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			header: r.Header.Clone(),
		}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &recorded.body)
		}
		mu.Lock()
		requests = append(requests, recorded)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestGetPredictionOpenWithBets(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, predictionFortyTwo)
	metrics := shared.NewHTTPMetrics()
	client := NewNDB2Client(server.URL, "secret", server.Client(), metrics)

	prediction, err := client.GetPrediction(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, 42, prediction.ID)
	assert.Equal(t, models.PredictionOpen, prediction.Status)
	assert.Len(t, prediction.Bets, 5)
	assert.Empty(t, prediction.Votes)
	assert.Equal(t, 1.5, prediction.Payouts.Endorse)
	assert.Equal(t, 0.8, prediction.Payouts.Undorse)
	assert.Nil(t, prediction.ClosedDate)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "/api/predictions/42", req.path)
	assert.Equal(t, "Bearer secret", req.header.Get("Authorization"))
	assert.NotEmpty(t, req.header.Get("X-Request-ID"))

	snapshot := metrics.Snapshot()
	assert.Equal(t, int64(1), snapshot.SuccessfulRequests)
	assert.Equal(t, int64(1), snapshot.StatusCodeCounts[http.StatusOK])
}

func TestGetPredictionIsIdempotent(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, predictionFortyTwo)
	client := NewNDB2Client(server.URL, "secret", server.Client(), nil)

	first, err := client.GetPrediction(context.Background(), 42)
	require.NoError(t, err)
	second, err := client.GetPrediction(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHTTPErrorKeepsServerMessage(t *testing.T) {
	server, _ := newTestServer(t, http.StatusBadRequest,
		`{"success":false,"errorCode":"BAD_REQUEST","message":"due_date required"}`)
	metrics := shared.NewHTTPMetrics()
	client := NewNDB2Client(server.URL, "secret", server.Client(), metrics)

	_, err := client.AddPrediction(context.Background(), "100", "text", time.Now())
	require.Error(t, err)

	apiErr, ok := shared.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, shared.ErrorKindHTTP, apiErr.Kind)
	assert.Equal(t, "due_date required", apiErr.UserMessage)
	assert.Contains(t, apiErr.Diagnostic, "400")
	assert.Contains(t, apiErr.Diagnostic, "BAD_REQUEST")
	assert.Equal(t, "AddPrediction", apiErr.Operation)

	assert.Equal(t, int64(1), metrics.Snapshot().ErrorKindCounts[string(shared.ErrorKindHTTP)])
}

func TestHTTPErrorWithoutMessage(t *testing.T) {
	server, _ := newTestServer(t, http.StatusInternalServerError,
		`{"success":false,"errorCode":"SERVER_ERROR","message":null}`)
	client := NewNDB2Client(server.URL, "secret", server.Client(), nil)

	_, err := client.GetPrediction(context.Background(), 1)
	apiErr, ok := shared.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, shared.UserMessageNoServerError, apiErr.UserMessage)
	assert.Contains(t, apiErr.Diagnostic, "500")
}

func TestSuccessStatusWithoutDataIsMalformed(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, `{"success":true,"message":null}`)
	client := NewNDB2Client(server.URL, "secret", server.Client(), nil)

	_, err := client.GetPrediction(context.Background(), 42)
	apiErr, ok := shared.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, shared.ErrorKindMalformed, apiErr.Kind)
	assert.Equal(t, shared.UserMessageMalformed, apiErr.UserMessage)
	assert.Contains(t, apiErr.Diagnostic, "HTTP Status 200 from NDB2 API but response failed type predicate.")
}

func TestNonJSONErrorBodyIsMalformed(t *testing.T) {
	server, _ := newTestServer(t, http.StatusBadGateway, `<html>Bad Gateway</html>`)
	client := NewNDB2Client(server.URL, "secret", server.Client(), nil)

	_, err := client.GetPrediction(context.Background(), 42)
	apiErr, ok := shared.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, shared.ErrorKindMalformed, apiErr.Kind)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestDataOfWrongShapeIsMalformed(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, `{"success":true,"message":null,"data":"not a prediction"}`)
	client := NewNDB2Client(server.URL, "secret", server.Client(), nil)

	_, err := client.GetPrediction(context.Background(), 42)
	apiErr, ok := shared.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, shared.ErrorKindMalformed, apiErr.Kind)
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	metrics := shared.NewHTTPMetrics()
	client := NewNDB2Client(baseURL, "secret", nil, metrics)

	_, err := client.GetPrediction(context.Background(), 42)
	apiErr, ok := shared.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, shared.ErrorKindTransport, apiErr.Kind)
	assert.Equal(t, shared.UserMessageTransport, apiErr.UserMessage)
	assert.Zero(t, apiErr.StatusCode)
	assert.Empty(t, metrics.Snapshot().StatusCodeCounts)
}

func TestRequestBodies(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, predictionFortyTwo)
	client := NewNDB2Client(server.URL, "secret", server.Client(), nil)
	ctx := context.Background()
	closed := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := client.AddBet(ctx, 42, "200", true)
	require.NoError(t, err)
	_, err = client.AddVote(ctx, 42, "300", false)
	require.NoError(t, err)
	_, err = client.TriggerPrediction(ctx, 42, "", &closed)
	require.NoError(t, err)
	_, err = client.TriggerPrediction(ctx, 42, "400", nil)
	require.NoError(t, err)
	_, err = client.RetirePrediction(ctx, 42, "100")
	require.NoError(t, err)

	got := *requests
	require.Len(t, got, 5)

	assert.Equal(t, "/api/predictions/42/bets", got[0].path)
	assert.Equal(t, map[string]interface{}{"discord_id": "200", "endorsed": true}, got[0].body)
	assert.Equal(t, "application/json", got[0].header.Get("Content-Type"))

	assert.Equal(t, "/api/predictions/42/votes", got[1].path)
	assert.Equal(t, map[string]interface{}{"discord_id": "300", "vote": false}, got[1].body)

	assert.Equal(t, "/api/predictions/42/trigger", got[2].path)
	assert.Equal(t, map[string]interface{}{"closed_date": "2024-02-01T00:00:00Z"}, got[2].body)
	assert.Equal(t, map[string]interface{}{"discord_id": "400"}, got[3].body)

	assert.Equal(t, http.MethodPatch, got[4].method)
	assert.Equal(t, "/api/predictions/42/retire", got[4].path)
}

func TestSearchRepeatsArrayParams(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, `{"success":true,"message":null,"data":[]}`)
	client := NewNDB2Client(server.URL, "secret", server.Client(), nil)

	results, err := client.SearchPredictions(context.Background(), SearchOptions{
		Statuses: []models.PredictionLifeCycle{models.PredictionOpen, models.PredictionClosed},
		Keyword:  "starship",
		SortBy:   []models.SortByOption{models.SortDueAsc, models.SortCreatedDesc},
		Page:     2,
	})
	require.NoError(t, err)
	assert.Empty(t, results)

	req := (*requests)[0]
	assert.Equal(t, "/api/predictions/search", req.path)
	assert.Equal(t, []string{"open", "closed"}, req.query["status"])
	assert.Equal(t, []string{"due_date-asc", "created_date-desc"}, req.query["sort_by"])
	assert.Equal(t, []string{"starship"}, req.query["keyword"])
	assert.Equal(t, []string{"2"}, req.query["page"])
}

func TestInvalidEnumsAreRejectedBeforeRequest(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, `{"success":true,"message":null,"data":[]}`)
	client := NewNDB2Client(server.URL, "secret", server.Client(), nil)
	ctx := context.Background()

	_, err := client.SearchPredictions(ctx, SearchOptions{Statuses: []models.PredictionLifeCycle{"pending"}})
	apiErr, ok := shared.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, shared.ErrorKindUnexpected, apiErr.Kind)
	assert.Contains(t, apiErr.Diagnostic, "pending")

	_, err = client.SearchPredictions(ctx, SearchOptions{SortBy: []models.SortByOption{"text-asc"}})
	require.Error(t, err)

	_, err = client.GetLeaderboard(ctx, "votes")
	require.Error(t, err)

	assert.Empty(t, *requests)
}

func TestScoresAndLeaderboardPaths(t *testing.T) {
	tests := []struct {
		name string
		call func(*NDB2Client) error
		path string
		view string
	}{
		{
			name: "scores",
			call: func(c *NDB2Client) error { _, err := c.GetScores(context.Background(), "100", ""); return err },
			path: "/api/users/discord_id/100/scores",
		},
		{
			name: "season scores",
			call: func(c *NDB2Client) error { _, err := c.GetScores(context.Background(), "100", "current"); return err },
			path: "/api/users/discord_id/100/scores/seasons/current",
		},
		{
			name: "leaderboard",
			call: func(c *NDB2Client) error {
				_, err := c.GetLeaderboard(context.Background(), models.LeaderboardBets)
				return err
			},
			path: "/api/scores",
			view: "bets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, requests := newTestServer(t, http.StatusOK, `{"success":true,"message":null,"data":{}}`)
			client := NewNDB2Client(server.URL+"/", "secret", server.Client(), nil)

			require.NoError(t, tt.call(client))
			req := (*requests)[0]
			assert.Equal(t, tt.path, req.path)
			if tt.view != "" {
				assert.Equal(t, []string{tt.view}, req.query["view"])
			}
		})
	}
}

func TestConcurrentCalls(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, predictionFortyTwo)
	metrics := shared.NewHTTPMetrics()
	client := NewNDB2Client(server.URL, "secret", server.Client(), metrics)

	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := client.GetPrediction(context.Background(), 42)
			errs <- err
		}()
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, <-errs)
	}
	assert.Equal(t, int64(10), metrics.Snapshot().TotalRequests)
}

func ExampleNDB2Client_GetPrediction() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.TrimSpace(predictionFortyTwo)))
	}))
	defer server.Close()

	client := NewNDB2Client(server.URL, "token", server.Client(), nil)
	prediction, err := client.GetPrediction(context.Background(), 42)
	if err != nil {
		fmt.Println(shared.UserMessageFor(err))
		return
	}
	fmt.Println(prediction.Status, len(prediction.Bets))
	// Output: open 5
}
