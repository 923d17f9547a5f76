package models

import "time"

// Episode is a single item from a show's RSS feed
type Episode struct {
	Show          string    `json:"show"`
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	EpisodeNumber int       `json:"episode_number"`
	Published     time.Time `json:"published"`
	Summary       string    `json:"summary"`
	ImageURL      string    `json:"image_url,omitempty"`
}

// PredictionMessage links a posted Discord message to the prediction it shows
type PredictionMessage struct {
	PredictionID int       `json:"prediction_id"`
	ChannelID    string    `json:"channel_id"`
	MessageID    string    `json:"message_id"`
	CreatedAt    time.Time `json:"created_at"`
}
