package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort  string
	LogLevel    string
	LogFormat   string
	DatabaseURL string

	NDB2BaseURL            string
	NDB2ClientID           string
	NDB2HTTPTimeoutSeconds string

	DiscordNDB2Token     string
	DiscordContentToken  string
	DiscordEventsToken   string
	DiscordAppIDNDB2     string
	DiscordAppIDContent  string
	DiscordGuildID       string
	ContentChannelID     string
	PredictionsChannelID string

	FeedURLs           string
	FeedRefreshMinutes string

	MessageRetentionDays string
}

// FeedSource is one named RSS feed, e.g. "wm=https://feeds.example.com/wm.xml"
type FeedSource struct {
	Name string
	URL  string
}

// FeedPolitenessConfig holds the delay between consecutive feed fetches
type FeedPolitenessConfig struct {
	MinimumDelay time.Duration `json:"minimum_delay"`
	UserAgent    string        `json:"user_agent"`
}

// DefaultFeedPolitenessConfig returns the default feed fetch politeness settings
func DefaultFeedPolitenessConfig() *FeedPolitenessConfig {
	return &FeedPolitenessConfig{
		MinimumDelay: 500 * time.Millisecond,
		UserAgent:    "mc-discord-bots/1.0",
	}
}

// GetNDB2Timeout returns the NDB2 HTTP timeout, or 10 seconds if unset or invalid
func (c *Config) GetNDB2Timeout() time.Duration {
	if c.NDB2HTTPTimeoutSeconds == "" {
		return 10 * time.Second
	}

	seconds, err := strconv.Atoi(c.NDB2HTTPTimeoutSeconds)
	if err != nil || seconds <= 0 {
		logrus.Warnf("Invalid NDB2_HTTP_TIMEOUT_SECONDS value: %s, using default 10 seconds", c.NDB2HTTPTimeoutSeconds)
		return 10 * time.Second
	}

	return time.Duration(seconds) * time.Second
}

// GetFeedRefreshInterval returns how often feeds are re-fetched, default 15 minutes
func (c *Config) GetFeedRefreshInterval() time.Duration {
	if c.FeedRefreshMinutes == "" {
		return 15 * time.Minute
	}

	minutes, err := strconv.Atoi(c.FeedRefreshMinutes)
	if err != nil || minutes <= 0 {
		logrus.Warnf("Invalid FEED_REFRESH_MINUTES value: %s, using default 15 minutes", c.FeedRefreshMinutes)
		return 15 * time.Minute
	}

	return time.Duration(minutes) * time.Minute
}

// GetMessageRetention returns how long announcement references are kept, default 90 days
func (c *Config) GetMessageRetention() time.Duration {
	if c.MessageRetentionDays == "" {
		return 90 * 24 * time.Hour
	}

	days, err := strconv.Atoi(c.MessageRetentionDays)
	if err != nil || days <= 0 {
		logrus.Warnf("Invalid MESSAGE_RETENTION_DAYS value: %s, using default 90 days", c.MessageRetentionDays)
		return 90 * 24 * time.Hour
	}

	return time.Duration(days) * 24 * time.Hour
}

// GetFeeds parses FEED_URLS. Malformed entries are skipped with a warning.
func (c *Config) GetFeeds() []FeedSource {
	var feeds []FeedSource
	for _, entry := range strings.Split(c.FeedURLs, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, url, found := strings.Cut(entry, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		url = strings.TrimSpace(url)
		if !found || name == "" || url == "" {
			logrus.Warnf("Ignoring malformed FEED_URLS entry: %s", entry)
			continue
		}
		feeds = append(feeds, FeedSource{Name: name, URL: url})
	}
	return feeds
}

// Validate reports every required key that is missing
func (c *Config) Validate() error {
	required := []struct{ key, value string }{
		{"NDB2_API_BASEURL", c.NDB2BaseURL},
		{"NDB2_CLIENT_ID", c.NDB2ClientID},
		{"DISCORD_NDB2_TOKEN", c.DiscordNDB2Token},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		NDB2BaseURL:            getEnv("NDB2_API_BASEURL", ""),
		NDB2ClientID:           getEnv("NDB2_CLIENT_ID", ""),
		NDB2HTTPTimeoutSeconds: getEnv("NDB2_HTTP_TIMEOUT_SECONDS", "10"),

		DiscordNDB2Token:     getEnv("DISCORD_NDB2_TOKEN", ""),
		DiscordContentToken:  getEnv("DISCORD_CONTENT_TOKEN", ""),
		DiscordEventsToken:   getEnv("DISCORD_EVENTS_TOKEN", ""),
		DiscordAppIDNDB2:     getEnv("DISCORD_APP_ID_NDB2", ""),
		DiscordAppIDContent:  getEnv("DISCORD_APP_ID_CONTENT", ""),
		DiscordGuildID:       getEnv("DISCORD_GUILD_ID", ""),
		ContentChannelID:     getEnv("CONTENT_CHANNEL_ID", ""),
		PredictionsChannelID: getEnv("PREDICTIONS_CHANNEL_ID", ""),

		FeedURLs:           getEnv("FEED_URLS", ""),
		FeedRefreshMinutes: getEnv("FEED_REFRESH_MINUTES", "15"),

		MessageRetentionDays: getEnv("MESSAGE_RETENTION_DAYS", "90"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
