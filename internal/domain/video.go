package domain

import "time"

// VideoSummary is one search hit for a channel's recent uploads.
type VideoSummary struct {
	VideoID      string
	Title        string
	Description  string
	ChannelTitle string
	PublishedAt  *time.Time
	Thumbnails   Thumbnails
}

type Thumbnails struct {
	High    string
	Medium  string
	Default string
}

// Best returns the highest resolution thumbnail available, or "".
func (t Thumbnails) Best() string {
	switch {
	case t.High != "":
		return t.High
	case t.Medium != "":
		return t.Medium
	default:
		return t.Default
	}
}

// VideoDetail is the per-video lookup result. Duration keeps the source's
// ISO-8601 encoding (e.g. "PT1H2M3S").
type VideoDetail struct {
	VideoID  string
	Duration string
}

const watchURLPrefix = "https://www.youtube.com/watch?v="

// WatchURL builds the public watch page URL for a video.
func WatchURL(videoID string) string {
	return watchURLPrefix + videoID
}
