package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"sermon_sync/internal/domain"
)

type Source interface {
	ID() string
	Name() string
	Configured() bool
	ListRecent(ctx context.Context, channelID string, maxResults int) ([]domain.VideoSummary, error)
	FetchDetail(ctx context.Context, videoID string) (*domain.VideoDetail, error)
}

type SermonStore interface {
	// Upsert inserts or wholesale-replaces the sermon keyed by its video id
	// and reports whether a new row was created.
	Upsert(ctx context.Context, sermon *domain.Sermon) (id int64, created bool, err error)
}

type SyncStateStore interface {
	Get(ctx context.Context, channelID string) (*domain.SyncState, error)
	Checkpoint(ctx context.Context, channelID, videoID string) error
	MarkCompleted(ctx context.Context, channelID string, at time.Time) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, sermon *domain.Sermon, outcome domain.Outcome) error
	Close() error
}
