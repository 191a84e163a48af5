package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TypeSyncSermons = "sermons:sync"

type SyncSermonsPayload struct {
	ChannelID  string `json:"channel_id"`
	MaxResults int    `json:"max_results"`
}

func NewSyncSermonsTask(channelID string, maxResults int) (*asynq.Task, error) {
	payload, err := json.Marshal(SyncSermonsPayload{
		ChannelID:  channelID,
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSyncSermons, payload), nil
}

// TaskEnqueuer is implemented by asynq.Client.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
