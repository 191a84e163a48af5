package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"sermon_sync/internal/domain"
	"sermon_sync/internal/feed"
)

const defaultListLimit = 100

type Syncer interface {
	Sync(ctx context.Context, channelID string, maxResults int) (domain.SyncResult, error)
	Status(ctx context.Context, channelID string) (*domain.SourceStatus, error)
}

type SermonStore interface {
	ListActive(ctx context.Context, limit int) ([]domain.Sermon, error)
	FindByExternalID(ctx context.Context, videoID string) (*domain.Sermon, error)
	Update(ctx context.Context, id int64, patch domain.SermonPatch) (*domain.Sermon, error)
}

type Handlers struct {
	syncer    Syncer
	sermons   SermonStore
	channelID   string
	passTimeout time.Duration
	feed        feed.Channel
	validate  *validator.Validate
	logger    *slog.Logger
	now       func() time.Time
}

// New builds the handlers. channelID is the configured channel reported by
// the status endpoint; passTimeout bounds a sync started over HTTP.
func New(
	syncer Syncer,
	sermons SermonStore,
	channelID string,
	passTimeout time.Duration,
	feedChannel feed.Channel,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		syncer:      syncer,
		sermons:     sermons,
		channelID:   channelID,
		passTimeout: passTimeout,
		feed:        feedChannel,
		validate:    validator.New(),
		logger:      logger.With("component", "http"),
		now:         time.Now,
	}
}

type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// internalError logs the cause and answers with a generic message.
func (h *Handlers) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg, "error", err, "path", r.URL.Path)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		resp := errorResponse{Error: "validation failed", Details: map[string]string{}}
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				resp.Details[fe.Field()] = fe.Tag()
			}
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return false
	}

	return true
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}
