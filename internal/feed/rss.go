package feed

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eduncan911/podcast"

	"sermon_sync/internal/domain"
)

const untitled = "Untitled sermon"

type Channel struct {
	Title       string
	Description string
	Link        string
}

// BaseURL prefers the configured link and otherwise rebuilds the site root
// from the request, honoring X-Forwarded-Proto.
func BaseURL(configured string, r *http.Request) string {
	if configured != "" {
		return configured
	}

	scheme := "https"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS == nil {
		scheme = "http"
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// Write renders sermons as a podcast RSS document. Items link to the YouTube
// watch page; sermons have no audio enclosure.
func Write(w io.Writer, ch Channel, sermons []domain.Sermon, now time.Time) error {
	p := podcast.New(ch.Title, ch.Link, ch.Description, nil, &now)
	p.Generator = "sermon_sync"

	for _, s := range sermons {
		title := s.Title
		if title == "" {
			title = untitled
		}
		item := podcast.Item{
			GUID:        s.YoutubeVideoID,
			Title:       title,
			Description: title,
			Link:        domain.WatchURL(s.YoutubeVideoID),
		}
		if s.Description != nil && *s.Description != "" {
			item.Description = *s.Description
		}
		if s.YoutubeURL != nil && *s.YoutubeURL != "" {
			item.Link = *s.YoutubeURL
		}
		if s.PublishedAt != nil {
			item.AddPubDate(s.PublishedAt)
		}
		if s.DurationSeconds != nil {
			item.AddDuration(int64(*s.DurationSeconds))
		}
		if s.ThumbnailURL != nil && *s.ThumbnailURL != "" {
			item.AddImage(*s.ThumbnailURL)
		}
		if s.Speaker != nil && *s.Speaker != "" {
			item.IAuthor = *s.Speaker
		}

		if _, err := p.AddItem(item); err != nil {
			return fmt.Errorf("add item %s: %w", s.YoutubeVideoID, err)
		}
	}

	return p.Encode(w)
}
