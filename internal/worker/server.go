package worker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"sermon_sync/internal/tasks"
)

type Config struct {
	Redis      asynq.RedisClientOpt
	ChannelID  string
	MaxResults int
	Interval   time.Duration
	Timeout    time.Duration
}

// Runner drives sync passes through Redis: an asynq scheduler enqueues the
// task every interval and a single-slot server executes it, so passes never
// overlap in this mode.
type Runner struct {
	scheduler *asynq.Scheduler
	server    *asynq.Server
	client    *asynq.Client
	mux       *asynq.ServeMux
	cfg       Config
	logger    *slog.Logger
}

func NewRunner(cfg Config, handler *TaskHandler, logger *slog.Logger) *Runner {
	logger = logger.With("component", "asynq")

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSyncSermons, handler.HandleSyncSermonsTask)

	return &Runner{
		scheduler: asynq.NewScheduler(cfg.Redis, &asynq.SchedulerOpts{}),
		server: asynq.NewServer(cfg.Redis, asynq.Config{
			Concurrency: 1,
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				delay := time.Minute << n
				if delay > cfg.Interval {
					delay = cfg.Interval
				}
				logger.Warn("task failed, retrying", "type", task.Type(), "attempt", n+1, "delay", delay, "error", err)
				return delay
			},
		}),
		client: asynq.NewClient(cfg.Redis),
		mux:    mux,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the periodic task, enqueues one pass right away and starts
// processing. Call Shutdown to stop.
func (r *Runner) Start() error {
	task, err := tasks.NewSyncSermonsTask(r.cfg.ChannelID, r.cfg.MaxResults)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	opts := []asynq.Option{asynq.MaxRetry(3)}
	if r.cfg.Timeout > 0 {
		opts = append(opts, asynq.Timeout(r.cfg.Timeout))
	}

	schedule := fmt.Sprintf("@every %s", r.cfg.Interval)
	if _, err := r.scheduler.Register(schedule, task, opts...); err != nil {
		return fmt.Errorf("register task: %w", err)
	}

	if err := r.server.Start(r.mux); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	if err := r.scheduler.Start(); err != nil {
		r.server.Shutdown()
		return fmt.Errorf("start scheduler: %w", err)
	}

	if err := Enqueue(r.client, r.cfg.ChannelID, r.cfg.MaxResults, opts...); err != nil {
		r.logger.Error("failed to enqueue initial sync", "error", err)
	}

	r.logger.Info("asynq runner started", "schedule", schedule)
	return nil
}

func (r *Runner) Shutdown() {
	r.scheduler.Shutdown()
	r.server.Shutdown()
	if err := r.client.Close(); err != nil {
		r.logger.Warn("failed to close asynq client", "error", err)
	}
	r.logger.Info("asynq runner stopped")
}

// Enqueue schedules one sync pass for immediate processing.
func Enqueue(enqueuer tasks.TaskEnqueuer, channelID string, maxResults int, opts ...asynq.Option) error {
	task, err := tasks.NewSyncSermonsTask(channelID, maxResults)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	if _, err := enqueuer.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}
