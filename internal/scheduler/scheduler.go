package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"sermon_sync/internal/domain"
)

// Syncer defines the interface for sync operations.
type Syncer interface {
	Sync(ctx context.Context, channelID string, maxResults int) (domain.SyncResult, error)
}

type Config struct {
	ChannelID   string
	MaxResults  int
	Interval    time.Duration
	PassTimeout time.Duration
}

type Scheduler struct {
	syncer Syncer
	cfg    Config
	logger *slog.Logger
}

func NewScheduler(syncer Syncer, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &Scheduler{
		syncer: syncer,
		cfg:    cfg,
		logger: logger.With("channel_id", cfg.ChannelID),
	}
}

// Handle controls a started scheduler.
type Handle struct {
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// Stop cancels the ticker and every in-flight pass, then waits for them.
func (h *Handle) Stop() {
	h.stopOnce.Do(h.cancel)
	<-h.done
}

// Done is closed once the scheduler and all of its passes have exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Start runs one pass immediately and one more every interval. Passes run in
// their own goroutines and may overlap when one outlasts the interval.
func (s *Scheduler) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.logger.Info("scheduler started", "interval", s.cfg.Interval)

	var passes sync.WaitGroup
	trigger := func() {
		passes.Add(1)
		go func() {
			defer passes.Done()
			s.runSync(ctx)
		}()
	}

	go func() {
		defer close(h.done)
		defer passes.Wait()

		trigger()

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("scheduler stopped")
				return
			case <-ticker.C:
				trigger()
			}
		}
	}()

	return h
}

func (s *Scheduler) runSync(ctx context.Context) {
	syncCtx := ctx
	if s.cfg.PassTimeout > 0 {
		var cancel context.CancelFunc
		syncCtx, cancel = context.WithTimeout(ctx, s.cfg.PassTimeout)
		defer cancel()
	}

	result, err := s.syncer.Sync(syncCtx, s.cfg.ChannelID, s.cfg.MaxResults)
	if err != nil {
		s.logger.Error("scheduled sync failed", "error", err)
		return
	}

	s.logger.Info("scheduled sync finished",
		"created", result.Created,
		"updated", result.Updated,
	)
}
