package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/varunrmantri23/nexacode/internal/core"
)

// previewPolicy keeps previews in an opaque origin even when opened outside
// the sandboxed iframe.
const previewPolicy = "sandbox allow-scripts"

func (h *handler) sessionPreview(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.serveError(w, err)
		return
	}
	doc, version := s.Document()
	w.Header().Set("X-Preview-Version", strconv.FormatUint(version, 10))
	serveDocument(w, r, doc)
}

func (h *handler) projectPreview(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.serveError(w, err)
		return
	}
	serveDocument(w, r, p.Output)
}

func serveDocument(w http.ResponseWriter, r *http.Request, doc string) {
	etag := core.DocumentETag(doc)
	w.Header().Set("Content-Security-Policy", previewPolicy)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", etag)

	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// sessionEvents streams a reload event after every recomputation of the
// session's preview. The stream ends when the client goes away or the
// session closes.
func (h *handler) sessionEvents(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.serveError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	_, version := s.Document()
	writeEvent(w, "ready", version)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-ch:
			if !ok {
				_, _ = w.Write([]byte("event: closed\ndata: 1\n\n"))
				flusher.Flush()
				return
			}
			_, version := s.Document()
			writeEvent(w, "reload", version)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, version uint64) {
	_, _ = w.Write([]byte("event: " + event + "\ndata: " + strconv.FormatUint(version, 10) + "\n\n"))
}
