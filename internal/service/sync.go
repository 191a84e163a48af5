package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sermon_sync/internal/config"
	"sermon_sync/internal/domain"
	"sermon_sync/internal/metrics"
)

const DefaultMaxResults = 10

type SyncService struct {
	source     Source
	reconciler *Reconciler
	syncState  SyncStateStore
	txManager  TransactionManager
	publisher  Publisher
	logger     *slog.Logger
	config     config.SyncConfig
	now        func() time.Time
}

// NewSyncService wires a sync pass. publisher may be nil.
func NewSyncService(
	source Source,
	sermons SermonStore,
	syncState SyncStateStore,
	txManager TransactionManager,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *SyncService {
	return &SyncService{
		source:     source,
		reconciler: NewReconciler(sermons),
		syncState:  syncState,
		txManager:  txManager,
		publisher:  publisher,
		logger:     logger.With("source", source.ID()),
		config:     cfg,
		now:        time.Now,
	}
}

// Sync runs one pass over the channel's most recent videos. On failure the
// returned result is zero; videos reconciled before the failure stay stored.
func (s *SyncService) Sync(ctx context.Context, channelID string, maxResults int) (domain.SyncResult, error) {
	startTime := s.now()
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	logger := s.logger.With("channel_id", channelID)
	logger.Info("starting sync",
		"source_name", s.source.Name(),
		"max_results", maxResults,
		"failure_policy", s.config.FailurePolicy,
	)

	videos, err := s.source.ListRecent(ctx, channelID, maxResults)
	switch {
	case errors.Is(err, domain.ErrSourceNotConfigured):
		logger.Warn("source not configured, skipping sync")
		metrics.SyncPassesTotal.WithLabelValues(metrics.PassSkipped).Inc()
		return domain.SyncResult{}, nil
	case err != nil && s.abortOnFetchError():
		return s.fail(logger, fmt.Errorf("list recent videos: %w", err))
	case err != nil:
		logger.Error("failed to list videos, syncing nothing", "error", err)
		metrics.SyncPassesTotal.WithLabelValues(metrics.PassFailed).Inc()
		return domain.SyncResult{}, nil
	}

	logger.Info("fetched videos from source", "count", len(videos))

	stats := &domain.SyncStats{
		ChannelID: channelID,
		Fetched:   len(videos),
	}

	for _, video := range videos {
		if err := s.syncVideo(ctx, logger, channelID, video, stats); err != nil {
			return s.fail(logger, err)
		}

		if err := s.pause(ctx); err != nil {
			return s.fail(logger, err)
		}
	}

	if err := s.syncState.MarkCompleted(ctx, channelID, s.now().UTC()); err != nil {
		return s.fail(logger, fmt.Errorf("mark sync completed: %w", err))
	}

	stats.Duration = s.now().Sub(startTime)
	metrics.SyncPassesTotal.WithLabelValues(metrics.PassSucceeded).Inc()
	metrics.SyncPassDuration.Observe(stats.Duration.Seconds())

	logger.Info("sync completed",
		"fetched", stats.Fetched,
		"created", stats.Created,
		"updated", stats.Updated,
		"detail_misses", stats.DetailMisses,
		"publish_errors", stats.PublishErrs,
		"duration", stats.Duration,
	)

	return stats.Result(), nil
}

func (s *SyncService) syncVideo(ctx context.Context, logger *slog.Logger, channelID string, video domain.VideoSummary, stats *domain.SyncStats) error {
	detail, err := s.fetchDetail(ctx, logger, video.VideoID)
	if err != nil {
		return err
	}
	if detail == nil || detail.Duration == "" {
		stats.DetailMisses++
		metrics.DetailMissesTotal.Inc()
	}

	var (
		sermon  *domain.Sermon
		outcome domain.Outcome
	)
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		sermon, outcome, err = s.reconciler.Reconcile(txCtx, video, detail)
		if err != nil {
			return err
		}

		if err := s.syncState.Checkpoint(txCtx, channelID, video.VideoID); err != nil {
			return fmt.Errorf("checkpoint %s: %w", video.VideoID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	switch outcome {
	case domain.OutcomeCreated:
		stats.Created++
	case domain.OutcomeUpdated:
		stats.Updated++
	}
	metrics.SyncItemsTotal.WithLabelValues(outcome.String()).Inc()

	logger.Debug("reconciled video",
		"video_id", video.VideoID,
		"sermon_id", sermon.ID,
		"outcome", outcome.String(),
	)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, sermon, outcome); err != nil {
			stats.PublishErrs++
			metrics.PublishErrorsTotal.Inc()
			logger.Warn("failed to publish sermon event",
				"video_id", video.VideoID,
				"error", err,
			)
		}
	}

	return nil
}

// fetchDetail returns a nil detail for lookups that should degrade to an
// absent duration. A missing video is always a miss, never a failure.
func (s *SyncService) fetchDetail(ctx context.Context, logger *slog.Logger, videoID string) (*domain.VideoDetail, error) {
	detail, err := s.source.FetchDetail(ctx, videoID)
	switch {
	case err == nil:
		return detail, nil
	case errors.Is(err, domain.ErrVideoNotFound), errors.Is(err, domain.ErrSourceNotConfigured):
		logger.Warn("video detail unavailable", "video_id", videoID, "error", err)
		return nil, nil
	case s.abortOnFetchError():
		return nil, fmt.Errorf("fetch video detail: %w", err)
	default:
		logger.Error("failed to fetch video detail, continuing without duration",
			"video_id", videoID,
			"error", err,
		)
		return nil, nil
	}
}

func (s *SyncService) pause(ctx context.Context) error {
	if s.config.ItemDelay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.config.ItemDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *SyncService) abortOnFetchError() bool {
	return s.config.FailurePolicy == config.FailurePolicyAbort
}

func (s *SyncService) fail(logger *slog.Logger, err error) (domain.SyncResult, error) {
	metrics.SyncPassesTotal.WithLabelValues(metrics.PassFailed).Inc()
	logger.Error("sync failed", "error", err)
	return domain.SyncResult{}, err
}
