package tasks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSyncSermonsTask(t *testing.T) {
	task, err := NewSyncSermonsTask("UC1", 25)
	require.NoError(t, err)
	assert.Equal(t, TypeSyncSermons, task.Type())

	var p SyncSermonsPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, SyncSermonsPayload{ChannelID: "UC1", MaxResults: 25}, p)
}
