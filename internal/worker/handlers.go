package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"sermon_sync/internal/domain"
	"sermon_sync/internal/tasks"
)

// Syncer runs one sync pass.
type Syncer interface {
	Sync(ctx context.Context, channelID string, maxResults int) (domain.SyncResult, error)
}

type TaskHandler struct {
	syncer Syncer
	logger *slog.Logger
}

func NewTaskHandler(syncer Syncer, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		syncer: syncer,
		logger: logger.With("component", "worker"),
	}
}

// HandleSyncSermonsTask runs a pass for the payload's channel. A failed pass
// is returned so asynq retries it; a malformed payload is never retried.
func (h *TaskHandler) HandleSyncSermonsTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.SyncSermonsPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal task payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.ChannelID == "" {
		return fmt.Errorf("task payload has no channel id: %w", asynq.SkipRetry)
	}

	result, err := h.syncer.Sync(ctx, p.ChannelID, p.MaxResults)
	if err != nil {
		return fmt.Errorf("sync channel %s: %w", p.ChannelID, err)
	}

	h.logger.Info("sync task finished",
		"channel_id", p.ChannelID,
		"created", result.Created,
		"updated", result.Updated,
	)
	return nil
}
