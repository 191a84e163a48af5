package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"sermon_sync/internal/domain"
)

func (h *Handlers) ListSermons(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > defaultListLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	sermons, err := h.sermons.ListActive(r.Context(), limit)
	if err != nil {
		h.internalError(w, r, "list sermons failed", err)
		return
	}

	writeJSON(w, http.StatusOK, sermons)
}

func (h *Handlers) GetSermon(w http.ResponseWriter, r *http.Request) {
	videoID := mux.Vars(r)["videoId"]

	sermon, err := h.sermons.FindByExternalID(r.Context(), videoID)
	if errors.Is(err, domain.ErrSermonNotFound) {
		writeError(w, http.StatusNotFound, "sermon not found")
		return
	}
	if err != nil {
		h.internalError(w, r, "get sermon failed", err)
		return
	}

	writeJSON(w, http.StatusOK, sermon)
}

func (h *Handlers) UpdateSermon(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sermon id")
		return
	}

	var patch domain.SermonPatch
	if !h.decodeAndValidate(w, r, &patch) {
		return
	}
	if patch.Empty() {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	sermon, err := h.sermons.Update(r.Context(), id, patch)
	if errors.Is(err, domain.ErrSermonNotFound) {
		writeError(w, http.StatusNotFound, "sermon not found")
		return
	}
	if err != nil {
		h.internalError(w, r, "update sermon failed", err)
		return
	}

	writeJSON(w, http.StatusOK, sermon)
}
