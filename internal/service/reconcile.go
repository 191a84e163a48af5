package service

import (
	"context"
	"fmt"
	"time"

	"sermon_sync/internal/domain"
	"sermon_sync/internal/duration"
)

// Reconciler maps one upstream video onto the sermon store.
type Reconciler struct {
	sermons SermonStore
	now     func() time.Time
}

func NewReconciler(sermons SermonStore) *Reconciler {
	return &Reconciler{sermons: sermons, now: time.Now}
}

// Reconcile persists the video as a sermon. An existing sermon with the same
// video id has every synced field replaced.
func (r *Reconciler) Reconcile(ctx context.Context, video domain.VideoSummary, detail *domain.VideoDetail) (*domain.Sermon, domain.Outcome, error) {
	sermon := BuildSermon(video, detail, r.now())

	id, created, err := r.sermons.Upsert(ctx, sermon)
	if err != nil {
		return nil, 0, fmt.Errorf("upsert sermon %s: %w", video.VideoID, err)
	}
	sermon.ID = id

	if created {
		return sermon, domain.OutcomeCreated, nil
	}
	return sermon, domain.OutcomeUpdated, nil
}

// BuildSermon derives the candidate record for a video. A nil detail, or one
// without a duration, leaves DurationSeconds unset.
func BuildSermon(video domain.VideoSummary, detail *domain.VideoDetail, now time.Time) *domain.Sermon {
	syncedAt := now.UTC()

	sermon := &domain.Sermon{
		YoutubeVideoID: video.VideoID,
		Title:          video.Title,
		Description:    optional(video.Description),
		Speaker:        optional(video.ChannelTitle),
		YoutubeURL:     optional(domain.WatchURL(video.VideoID)),
		ThumbnailURL:   optional(video.Thumbnails.Best()),
		PublishedAt:    video.PublishedAt,
		SyncedAt:       &syncedAt,
		IsActive:       true,
	}

	if detail != nil && detail.Duration != "" {
		seconds := duration.ToSeconds(detail.Duration)
		sermon.DurationSeconds = &seconds
	}

	return sermon
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
