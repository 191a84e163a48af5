package domain

import "time"

// Sermon is a sermon video mirrored from the church's YouTube channel.
type Sermon struct {
	ID              int64      `db:"id" json:"id"`
	YoutubeVideoID  string     `db:"youtube_video_id" json:"youtubeVideoId"` // unique natural key
	Title           string     `db:"title" json:"title"`
	Description     *string    `db:"description" json:"description,omitempty"`
	Speaker         *string    `db:"speaker" json:"speaker,omitempty"`
	YoutubeURL      *string    `db:"youtube_url" json:"youtubeUrl,omitempty"`
	ThumbnailURL    *string    `db:"thumbnail_url" json:"thumbnailUrl,omitempty"`
	PublishedAt     *time.Time `db:"published_at" json:"publishedAt,omitempty"`
	DurationSeconds *int       `db:"duration_seconds" json:"durationSeconds,omitempty"`
	SyncedAt        *time.Time `db:"synced_at" json:"syncedAt,omitempty"`
	IsActive        bool       `db:"is_active" json:"isActive"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
}

// SermonPatch carries the fields an administrator may change by hand.
// Nil fields are left untouched.
type SermonPatch struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty"`
	Speaker     *string `json:"speaker,omitempty" validate:"omitempty,max=255"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p SermonPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Speaker == nil && p.IsActive == nil
}
