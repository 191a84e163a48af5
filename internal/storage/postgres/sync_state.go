package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"sermon_sync/internal/domain"
)

type SyncStateStore struct {
	db *sqlx.DB
}

func NewSyncStateStore(db *sqlx.DB) *SyncStateStore {
	return &SyncStateStore{db: db}
}

func (s *SyncStateStore) Get(ctx context.Context, channelID string) (*domain.SyncState, error) {
	var state domain.SyncState
	query := `
		SELECT id, channel_id, last_synced_at, last_video_id, total_synced
		FROM sync_state
		WHERE channel_id = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &state, query, channelID)
	if errors.Is(err, sql.ErrNoRows) {
		// Return empty state for channels never synced
		return &domain.SyncState{ChannelID: channelID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Checkpoint records one reconciled video. Run it in the same transaction as
// the sermon write so progress never runs ahead of stored data.
func (s *SyncStateStore) Checkpoint(ctx context.Context, channelID, videoID string) error {
	query := `
		INSERT INTO sync_state (channel_id, last_video_id, total_synced)
		VALUES ($1, $2, 1)
		ON CONFLICT (channel_id) DO UPDATE SET
			last_video_id = EXCLUDED.last_video_id,
			total_synced = sync_state.total_synced + 1`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, channelID, videoID)
	return err
}

func (s *SyncStateStore) MarkCompleted(ctx context.Context, channelID string, at time.Time) error {
	query := `
		INSERT INTO sync_state (channel_id, last_synced_at)
		VALUES ($1, $2)
		ON CONFLICT (channel_id) DO UPDATE SET
			last_synced_at = EXCLUDED.last_synced_at`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, channelID, at)
	return err
}
