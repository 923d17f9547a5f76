package bots

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Session wraps one bot's gateway connection
type Session struct {
	name    string
	appID   string
	discord *discordgo.Session
	logger  *logrus.Entry
}

// NewSession creates a session for token without connecting
func NewSession(name, token, appID string, intents discordgo.Intent) (*Session, error) {
	discord, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s session: %w", name, err)
	}
	discord.Identify.Intents = intents

	logger := logrus.WithFields(logrus.Fields{"component": "Session", "bot": name})
	discord.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		logger.WithField("user", r.User.Username).Info("Bot is ready")
	})
	return &Session{name: name, appID: appID, discord: discord, logger: logger}, nil
}

// Open connects to the gateway
func (s *Session) Open() error {
	if err := s.discord.Open(); err != nil {
		return fmt.Errorf("failed to open %s session: %w", s.name, err)
	}
	return nil
}

func (s *Session) Close() error {
	return s.discord.Close()
}

// Ready reports whether the gateway handshake has completed
func (s *Session) Ready() bool {
	return s.discord.DataReady
}

func (s *Session) Name() string { return s.name }

func (s *Session) AppID() string { return s.appID }

func (s *Session) Discord() *discordgo.Session { return s.discord }

// RegisterCommands installs commands for this session's application
func (s *Session) RegisterCommands(guildID string, commands []*discordgo.ApplicationCommand) error {
	return RegisterCommands(s.discord, s.appID, guildID, commands)
}
