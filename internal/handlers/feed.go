package handlers

import (
	"bytes"
	"net/http"

	"sermon_sync/internal/feed"
)

func (h *Handlers) SermonFeed(w http.ResponseWriter, r *http.Request) {
	sermons, err := h.sermons.ListActive(r.Context(), defaultListLimit)
	if err != nil {
		h.internalError(w, r, "list sermons for feed failed", err)
		return
	}

	ch := h.feed
	ch.Link = feed.BaseURL(ch.Link, r)

	var buf bytes.Buffer
	if err := feed.Write(&buf, ch, sermons, h.now()); err != nil {
		h.internalError(w, r, "render feed failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
