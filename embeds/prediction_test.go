package embeds

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/fenilmodi00/mc-discord-bots/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buttonIDs(t *testing.T, components []discordgo.MessageComponent) []string {
	t.Helper()
	require.Len(t, components, 1)
	row, ok := components[0].(discordgo.ActionsRow)
	require.True(t, ok)

	ids := make([]string, 0, len(row.Components))
	for _, component := range row.Components {
		button, ok := component.(discordgo.Button)
		require.True(t, ok)
		ids = append(ids, button.CustomID)
	}
	return ids
}

func TestPredictionButtonsByStatus(t *testing.T) {
	tests := []struct {
		status models.PredictionLifeCycle
		want   []string
	}{
		{models.PredictionOpen, []string{"endorse:42", "undorse:42", "details:42"}},
		{models.PredictionClosed, []string{"affirm:42", "negate:42", "details:42"}},
		{models.PredictionRetired, []string{"details:42"}},
		{models.PredictionSuccessful, []string{"details:42"}},
		{models.PredictionFailed, []string{"details:42"}},
		{models.PredictionLifeCycle("pending"), []string{"details:42"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, buttonIDs(t, PredictionButtons(newPrediction(tt.status))))
		})
	}
}

func TestParseButtonCustomID(t *testing.T) {
	action, id, err := ParseButtonCustomID(ButtonCustomID(ActionUndorse, 7))
	require.NoError(t, err)
	assert.Equal(t, ActionUndorse, action)
	assert.Equal(t, 7, id)

	for _, bad := range []string{"", "details", ":7", "details:abc"} {
		_, _, err := ParseButtonCustomID(bad)
		assert.Error(t, err, bad)
	}
}

func TestPredictionSummary(t *testing.T) {
	p := newPrediction(models.PredictionClosed)
	closed := day(10)
	p.ClosedDate = &closed
	p.Triggerer = &models.UserRef{ID: "u9", DiscordID: "900"}
	p.Votes = []models.EnhancedPredictionVote{vote("v1", "300", true)}

	embed := PredictionSummary(p)
	assert.Equal(t, "Prediction #42", embed.Title)
	assert.Equal(t, ColorClosed, embed.Color)

	last := embed.Fields[len(embed.Fields)-1]
	assert.Equal(t, "Votes", last.Name)
	assert.Contains(t, last.Value, "1 yes, 0 no")
	assert.Contains(t, last.Value, "<@900>")
}

func TestLeaderboard(t *testing.T) {
	points := 120
	board := &models.Leaderboard{
		Type: models.LeaderboardPoints,
		Leaders: []models.Leader{
			{ID: "u1", DiscordID: "100", Rank: 1, Points: &points},
		},
	}

	embed := Leaderboard(board)
	assert.Equal(t, "Points Leaderboard", embed.Title)
	assert.Equal(t, "#1 <@100> (120 points)", embed.Fields[0].Value)

	empty := Leaderboard(&models.Leaderboard{Type: models.LeaderboardBets})
	assert.Equal(t, "None", empty.Fields[0].Value)
}

func TestSearchResults(t *testing.T) {
	embed := SearchResults("", nil)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "No predictions matched that search.", embed.Fields[0].Value)

	results := make([]models.ShortEnhancedPrediction, SearchResultsSize+2)
	for i := range results {
		results[i] = newPrediction(models.PredictionOpen).ShortEnhancedPrediction
		results[i].ID = i + 1
	}
	embed = SearchResults("status: open", results)
	assert.Len(t, embed.Fields, SearchResultsSize)
	assert.Equal(t, "#1 OPEN", embed.Fields[0].Name)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Showing 10 of 12 results", embed.Footer.Text)
}

func TestEpisodeEmbed(t *testing.T) {
	embed := Episode(&models.Episode{
		Show:          "meco",
		Title:         "Starship",
		URL:           "https://example.com/200",
		EpisodeNumber: 200,
		Published:     day(3),
	})

	assert.Equal(t, "Starship", embed.Title)
	assert.Equal(t, "https://example.com/200", embed.URL)
	assert.Nil(t, embed.Thumbnail)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "200", embed.Fields[0].Value)

	results := EpisodeSearchResults("Main Engine Cut Off", "", "mars", nil)
	assert.Equal(t, "No results found.", results.Description)
}
