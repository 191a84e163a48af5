package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"sermon_sync/internal/domain"
)

const (
	SourceID   = "youtube"
	SourceName = "YouTube Data API v3"
)

var (
	// ErrNotConfigured is returned by every call when no API key is set.
	ErrNotConfigured = domain.ErrSourceNotConfigured
	ErrVideoNotFound = domain.ErrVideoNotFound
)

// Config holds YouTube source configuration.
type Config struct {
	APIKey         string
	Endpoint       string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Source lists a channel's recent uploads and looks up per-video details.
type Source struct {
	service        *ytapi.Service
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

// New creates a new YouTube source. A Source without an API key is valid
// and answers every call with ErrNotConfigured.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Source, error) {
	s := &Source{
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("source", SourceID),
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = 1
	}

	if cfg.APIKey == "" {
		s.logger.Warn("youtube api key not configured, sync will be a no-op")
		return s, nil
	}

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &transport.APIKey{
			Key:       cfg.APIKey,
			Transport: http.DefaultTransport,
		},
	}

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	s.service = service

	return s, nil
}

// ID returns the source identifier.
func (s *Source) ID() string {
	return SourceID
}

// Name returns human-readable name.
func (s *Source) Name() string {
	return SourceName
}

// Configured reports whether an API key was supplied.
func (s *Source) Configured() bool {
	return s.service != nil
}

// ListRecent returns up to maxResults of the channel's videos, newest first.
func (s *Source) ListRecent(ctx context.Context, channelID string, maxResults int) ([]domain.VideoSummary, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	var resp *ytapi.SearchListResponse
	err := s.withRetry(ctx, "search.list", func(ctx context.Context) error {
		var err error
		resp, err = s.service.Search.List([]string{"snippet"}).
			ChannelId(channelID).
			Order("date").
			Type("video").
			MaxResults(int64(maxResults)).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list channel %s: %w", channelID, err)
	}

	videos := make([]domain.VideoSummary, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		videos = append(videos, s.transform(item))
	}

	s.logger.Debug("listed channel videos",
		"channel_id", channelID,
		"requested", maxResults,
		"videos", len(videos),
	)

	return videos, nil
}

// FetchDetail looks up one video including its encoded duration.
func (s *Source) FetchDetail(ctx context.Context, videoID string) (*domain.VideoDetail, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	var resp *ytapi.VideoListResponse
	err := s.withRetry(ctx, "videos.list", func(ctx context.Context) error {
		var err error
		resp, err = s.service.Videos.List([]string{"snippet", "contentDetails"}).
			Id(videoID).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch video %s: %w", videoID, err)
	}

	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("fetch video %s: %w", videoID, ErrVideoNotFound)
	}

	detail := &domain.VideoDetail{VideoID: videoID}
	if cd := resp.Items[0].ContentDetails; cd != nil {
		detail.Duration = cd.Duration
	}

	return detail, nil
}

func (s *Source) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}

		if attempt == s.maxAttempts || !isRetryable(err) {
			break
		}

		backoff := s.calculateBackoff(attempt)
		s.logger.Warn("request failed, retrying",
			"op", op,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return err
}

func (s *Source) calculateBackoff(attempt int) time.Duration {
	backoff := s.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if s.maxBackoff > 0 && backoff > s.maxBackoff {
		backoff = s.maxBackoff
	}
	return backoff
}

func (s *Source) transform(item *ytapi.SearchResult) domain.VideoSummary {
	video := domain.VideoSummary{VideoID: item.Id.VideoId}

	snippet := item.Snippet
	if snippet == nil {
		return video
	}

	video.Title = snippet.Title
	video.Description = snippet.Description
	video.ChannelTitle = snippet.ChannelTitle

	if snippet.PublishedAt != "" {
		publishedAt, err := time.Parse(time.RFC3339, snippet.PublishedAt)
		if err != nil {
			s.logger.Warn("failed to parse publish date",
				"video_id", video.VideoID,
				"published_at", snippet.PublishedAt,
			)
		} else {
			video.PublishedAt = &publishedAt
		}
	}

	if t := snippet.Thumbnails; t != nil {
		if t.High != nil {
			video.Thumbnails.High = t.High.Url
		}
		if t.Medium != nil {
			video.Thumbnails.Medium = t.Medium.Url
		}
		if t.Default != nil {
			video.Thumbnails.Default = t.Default.Url
		}
	}

	return video
}
