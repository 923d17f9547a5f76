package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fenilmodi00/mc-discord-bots/models"
)

// PredictionMessageStore records which Discord messages show which prediction
type PredictionMessageStore struct {
	db *sql.DB
}

func NewPredictionMessageStore(db *sql.DB) *PredictionMessageStore {
	return &PredictionMessageStore{db: db}
}

// Save records a message. Saving the same message twice is a no-op.
func (s *PredictionMessageStore) Save(ctx context.Context, message models.PredictionMessage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prediction_messages (prediction_id, channel_id, message_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (channel_id, message_id) DO NOTHING
	`, message.PredictionID, message.ChannelID, message.MessageID)
	if err != nil {
		return fmt.Errorf("failed to save prediction message: %w", err)
	}
	return nil
}

// ListByPrediction returns the messages showing predictionID, oldest first
func (s *PredictionMessageStore) ListByPrediction(ctx context.Context, predictionID int) ([]models.PredictionMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT prediction_id, channel_id, message_id, created_at
		FROM prediction_messages
		WHERE prediction_id = $1
		ORDER BY created_at ASC
	`, predictionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prediction messages: %w", err)
	}
	defer rows.Close()

	var messages []models.PredictionMessage
	for rows.Next() {
		var message models.PredictionMessage
		if err := rows.Scan(&message.PredictionID, &message.ChannelID, &message.MessageID, &message.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prediction message: %w", err)
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

// Delete forgets a message, e.g. after Discord reports it gone
func (s *PredictionMessageStore) Delete(ctx context.Context, channelID, messageID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM prediction_messages WHERE channel_id = $1 AND message_id = $2
	`, channelID, messageID)
	if err != nil {
		return fmt.Errorf("failed to delete prediction message: %w", err)
	}
	return nil
}

// DeleteOlderThan forgets messages recorded before cutoff and reports how many
// were removed
func (s *PredictionMessageStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM prediction_messages WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune prediction messages: %w", err)
	}
	return result.RowsAffected()
}
