package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFeeds(t *testing.T) {
	cfg := &Config{FeedURLs: " LaunchPad=https://feeds.invalid/lp.xml, broken ,offnominal=https://feeds.invalid/on.xml,=https://x"}

	feeds := cfg.GetFeeds()

	require.Len(t, feeds, 2)
	assert.Equal(t, FeedSource{Name: "launchpad", URL: "https://feeds.invalid/lp.xml"}, feeds[0])
	assert.Equal(t, "offnominal", feeds[1].Name)
	assert.Empty(t, (&Config{}).GetFeeds())
}

func TestDurationsFallBackToDefaults(t *testing.T) {
	cfg := &Config{NDB2HTTPTimeoutSeconds: "abc", FeedRefreshMinutes: "-3", MessageRetentionDays: ""}
	assert.Equal(t, 10*time.Second, cfg.GetNDB2Timeout())
	assert.Equal(t, 15*time.Minute, cfg.GetFeedRefreshInterval())
	assert.Equal(t, 90*24*time.Hour, cfg.GetMessageRetention())

	cfg = &Config{NDB2HTTPTimeoutSeconds: "3", FeedRefreshMinutes: "5", MessageRetentionDays: "7"}
	assert.Equal(t, 3*time.Second, cfg.GetNDB2Timeout())
	assert.Equal(t, 5*time.Minute, cfg.GetFeedRefreshInterval())
	assert.Equal(t, 7*24*time.Hour, cfg.GetMessageRetention())
}

func TestValidateListsMissingKeys(t *testing.T) {
	err := (&Config{NDB2ClientID: "client"}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NDB2_API_BASEURL")
	assert.Contains(t, err.Error(), "DISCORD_NDB2_TOKEN")
	assert.NotContains(t, err.Error(), "NDB2_CLIENT_ID")

	assert.NoError(t, (&Config{NDB2BaseURL: "http://ndb2", NDB2ClientID: "c", DiscordNDB2Token: "t"}).Validate())
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("NDB2_API_BASEURL", "http://ndb2.invalid")
	t.Setenv("FEED_URLS", "launchpad=https://feeds.invalid/lp.xml")
	t.Setenv("SERVER_PORT", "9090")

	cfg := LoadConfig()

	assert.Equal(t, "http://ndb2.invalid", cfg.NDB2BaseURL)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Len(t, cfg.GetFeeds(), 1)
}
