package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fenilmodi00/mc-discord-bots/models"
	"github.com/fenilmodi00/mc-discord-bots/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	name  string
	ready bool
}

func (b fakeBot) Name() string { return b.name }
func (b fakeBot) Ready() bool  { return b.ready }

type fakeFeeds struct{}

func (fakeFeeds) ShowNames() []string          { return []string{"launchpad"} }
func (fakeFeeds) HasEpisodes(name string) bool { return name == "launchpad" }
func (fakeFeeds) HasShow(name string) bool     { return name == "launchpad" }
func (fakeFeeds) Search(_, term string) []models.Episode {
	return []models.Episode{{Show: "launchpad", Title: "Result for " + term}}
}
func (fakeFeeds) FetchRecent(string) (*models.Episode, bool) {
	return &models.Episode{Show: "launchpad", Title: "Latest"}, true
}

type fakeJob struct {
	err  error
	runs int
}

func (j *fakeJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		bots       []BotStatus
		dbCheck    func(context.Context) error
		wantCode   int
		wantStatus string
		wantDB     string
	}{
		{
			name:       "all ready without database",
			bots:       []BotStatus{fakeBot{"ndb2", true}, fakeBot{"content", true}},
			wantCode:   fiber.StatusOK,
			wantStatus: "ok",
			wantDB:     "disabled",
		},
		{
			name:       "bot not ready",
			bots:       []BotStatus{fakeBot{"ndb2", true}, fakeBot{"events", false}},
			dbCheck:    func(context.Context) error { return nil },
			wantCode:   fiber.StatusServiceUnavailable,
			wantStatus: "degraded",
			wantDB:     "ok",
		},
		{
			name:       "database down",
			bots:       []BotStatus{fakeBot{"ndb2", true}},
			dbCheck:    func(context.Context) error { return errors.New("database ping failed") },
			wantCode:   fiber.StatusServiceUnavailable,
			wantStatus: "degraded",
			wantDB:     "database ping failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/health", NewHealthHandler(tt.bots, fakeFeeds{}, tt.dbCheck).GetHealth)

			resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			body := decode(t, resp.Body)
			assert.Equal(t, tt.wantStatus, body["status"])
			assert.Equal(t, tt.wantDB, body["database"])
			assert.Equal(t, map[string]interface{}{"launchpad": true}, body["feeds"])
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	httpMetrics := shared.NewHTTPMetrics()
	httpMetrics.RecordHTTPRequest("getPrediction", 200, 20*time.Millisecond, "", false)
	interactions := shared.NewInteractionMetrics("ndb2")
	interactions.Record("predict view", true)

	app := fiber.New()
	feedRequests := func() int64 { return 3 }
	handler := NewMetricsHandler(httpMetrics, []*shared.InteractionMetrics{interactions}, feedRequests, func() sql.DBStats {
		return sql.DBStats{OpenConnections: 2}
	})
	app.Get("/metrics", handler.GetMetrics)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode(t, resp.Body)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(100), data["ndb2_http"].(map[string]interface{})["success_rate"])
	assert.Equal(t, float64(3), data["feed_requests"])
	require.Len(t, data["interactions"], 1)
	bot := data["interactions"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "ndb2", bot["bot_name"])
	assert.Equal(t, float64(2), data["database_stats"].(map[string]interface{})["open_connections"])
}

func TestAdminHandler(t *testing.T) {
	job := &fakeJob{}
	app := fiber.New()
	handler := NewAdminHandler(job, fakeFeeds{})
	app.Post("/admin/feeds/refresh", handler.TriggerFeedRefresh)
	app.Get("/admin/feeds/:show/episodes", handler.GetEpisodes)

	resp, err := app.Test(httptest.NewRequest("POST", "/admin/feeds/refresh", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, job.runs)

	job.err = errors.New("feed down")
	resp, err = app.Test(httptest.NewRequest("POST", "/admin/feeds/refresh", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/admin/feeds/launchpad/episodes?q=orbit", nil))
	require.NoError(t, err)
	body := decode(t, resp.Body)
	assert.Equal(t, float64(1), body["count"])

	resp, err = app.Test(httptest.NewRequest("GET", "/admin/feeds/unknown/episodes", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
