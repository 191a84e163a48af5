package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"sermon_sync/internal/domain"
)

// ErrNotFound is returned when a sermon lookup matches no row.
var ErrNotFound = domain.ErrSermonNotFound

const sermonColumns = `id, youtube_video_id, title, description, speaker, youtube_url,
	thumbnail_url, published_at, duration_seconds, synced_at, is_active, created_at, updated_at`

type SermonStore struct {
	db *sqlx.DB
}

func NewSermonStore(db *sqlx.DB) *SermonStore {
	return &SermonStore{db: db}
}

// Upsert inserts the sermon or replaces every synced column of the row with
// the same video id. The xmax system column is 0 only for freshly inserted
// tuples, which tells the two outcomes apart in one round trip.
func (s *SermonStore) Upsert(ctx context.Context, sermon *domain.Sermon) (int64, bool, error) {
	query := `
		INSERT INTO sermons (
			youtube_video_id, title, description, speaker, youtube_url,
			thumbnail_url, published_at, duration_seconds, synced_at, is_active
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		ON CONFLICT (youtube_video_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			speaker = EXCLUDED.speaker,
			youtube_url = EXCLUDED.youtube_url,
			thumbnail_url = EXCLUDED.thumbnail_url,
			published_at = EXCLUDED.published_at,
			duration_seconds = EXCLUDED.duration_seconds,
			synced_at = EXCLUDED.synced_at,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING id, (xmax = 0) AS inserted`

	var (
		id       int64
		inserted bool
	)
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		sermon.YoutubeVideoID,
		sermon.Title,
		sermon.Description,
		sermon.Speaker,
		sermon.YoutubeURL,
		sermon.ThumbnailURL,
		sermon.PublishedAt,
		sermon.DurationSeconds,
		sermon.SyncedAt,
		sermon.IsActive,
	).Scan(&id, &inserted)
	if err != nil {
		return 0, false, err
	}

	return id, inserted, nil
}

func (s *SermonStore) FindByExternalID(ctx context.Context, videoID string) (*domain.Sermon, error) {
	var sermon domain.Sermon
	query := `SELECT ` + sermonColumns + ` FROM sermons WHERE youtube_video_id = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &sermon, query, videoID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sermon, nil
}

// Update applies an administrator's patch. Nil patch fields keep the stored
// value.
func (s *SermonStore) Update(ctx context.Context, id int64, patch domain.SermonPatch) (*domain.Sermon, error) {
	query := `
		UPDATE sermons SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			speaker = COALESCE($4, speaker),
			is_active = COALESCE($5, is_active),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sermonColumns

	var sermon domain.Sermon
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &sermon, query,
		id,
		patch.Title,
		patch.Description,
		patch.Speaker,
		patch.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update sermon %d: %w", id, err)
	}
	return &sermon, nil
}

// ListActive returns active sermons, most recently published first.
func (s *SermonStore) ListActive(ctx context.Context, limit int) ([]domain.Sermon, error) {
	query := `
		SELECT ` + sermonColumns + `
		FROM sermons
		WHERE is_active
		ORDER BY published_at DESC NULLS LAST, id DESC
		LIMIT $1`

	sermons := make([]domain.Sermon, 0)
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &sermons, query, limit); err != nil {
		return nil, err
	}
	return sermons, nil
}
