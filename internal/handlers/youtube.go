package handlers

import (
	"context"
	"fmt"
	"net/http"
)

const defaultMaxResults = 10

type SyncRequest struct {
	ChannelID  string `json:"channelId" validate:"required"`
	MaxResults *int   `json:"maxResults,omitempty" validate:"omitempty,min=1,max=50"`
}

type SyncResponse struct {
	Success bool   `json:"success"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Message string `json:"message"`
}

// SyncYouTube runs a sync pass and blocks until it finishes. The pass keeps
// going if the client disconnects.
func (h *Handlers) SyncYouTube(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	maxResults := defaultMaxResults
	if req.MaxResults != nil {
		maxResults = *req.MaxResults
	}

	ctx := context.WithoutCancel(r.Context())
	if h.passTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.passTimeout)
		defer cancel()
	}

	result, err := h.syncer.Sync(ctx, req.ChannelID, maxResults)
	if err != nil {
		h.internalError(w, r, "sync failed", err)
		return
	}

	writeJSON(w, http.StatusOK, SyncResponse{
		Success: true,
		Created: result.Created,
		Updated: result.Updated,
		Message: fmt.Sprintf("Synced %d videos: %d created, %d updated",
			result.Created+result.Updated, result.Created, result.Updated),
	})
}

func (h *Handlers) YouTubeStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.syncer.Status(r.Context(), h.channelID)
	if err != nil {
		h.internalError(w, r, "status failed", err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
