package service

import (
	"context"

	"sermon_sync/internal/domain"
)

const (
	statusConfigured    = "YouTube API configured"
	statusNotConfigured = "YouTube API not configured"
)

// Status reports whether the source has a credential, plus the channel's
// sync progress when channelID is set and the progress can be read.
func (s *SyncService) Status(ctx context.Context, channelID string) (*domain.SourceStatus, error) {
	status := &domain.SourceStatus{
		Configured: s.source.Configured(),
		Message:    statusNotConfigured,
	}
	if status.Configured {
		status.Message = statusConfigured
	}

	if channelID == "" {
		return status, nil
	}

	state, err := s.syncState.Get(ctx, channelID)
	if err != nil {
		s.logger.Warn("failed to read sync state",
			"channel_id", channelID,
			"error", err,
		)
		return status, nil
	}
	status.LastSyncedAt = state.LastSyncedAt
	status.TotalSynced = state.TotalSynced

	return status, nil
}
