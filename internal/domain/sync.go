package domain

import "time"

// Outcome is what reconciliation did with one video.
type Outcome int

const (
	OutcomeCreated Outcome = iota + 1
	OutcomeUpdated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// SyncResult is the per-pass summary reported to callers.
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// SyncStats holds statistics about a sync operation.
type SyncStats struct {
	ChannelID    string
	Fetched      int
	Created      int
	Updated      int
	DetailMisses int
	PublishErrs  int
	Duration     time.Duration
}

func (s *SyncStats) Result() SyncResult {
	return SyncResult{Created: s.Created, Updated: s.Updated}
}

type SyncState struct {
	ID           int64      `db:"id"`
	ChannelID    string     `db:"channel_id"`
	LastSyncedAt *time.Time `db:"last_synced_at"`
	LastVideoID  *string    `db:"last_video_id"`
	TotalSynced  int64      `db:"total_synced"`
}

// SourceStatus tells an operator whether syncing can do anything.
type SourceStatus struct {
	Configured   bool       `json:"configured"`
	Message      string     `json:"message"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
	TotalSynced  int64      `json:"totalSynced"`
}
