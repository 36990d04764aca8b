package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/session"
	"github.com/starford/raido/internal/store"
)

// Handler holds the page and devtools route handlers.
type Handler struct {
	mgr     *session.Manager
	journal store.SessionJournal
	title   string
}

// NewHandler creates a new Handler. journal may be nil; the devtools
// session detail then only covers live state.
func NewHandler(mgr *session.Manager, journal store.SessionJournal, title string) *Handler {
	return &Handler{mgr: mgr, journal: journal, title: title}
}

// NewSession handles GET /: create a session and redirect to its page.
func (h *Handler) NewSession(w http.ResponseWriter, r *http.Request) {
	sess := h.mgr.Create()
	http.Redirect(w, r, "/s/"+sess.ID(), http.StatusSeeOther)
}

// GetPage handles GET /s/{id}. Query parameters act as the submitted form,
// so back/forward navigation carrying _gen restores that generation.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	h.processPage(w, r, r.URL.Query())
}

// PostPage handles POST /s/{id}: one component-tree request per submit.
func (h *Handler) PostPage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	h.processPage(w, r, r.Form)
}

func (h *Handler) processPage(w http.ResponseWriter, r *http.Request, form map[string][]string) {
	id := chi.URLParam(r, "id")
	page, err := h.mgr.Process(id, form)
	if err != nil {
		status, msg := errStatus(err)
		slog.Error("process request failed",
			slog.String("session", id),
			slog.String("error", err.Error()))
		http.Error(w, msg, status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, pageShell, h.title, id, page.HTML)
}

// pageShell wraps a rendered tree in a minimal document whose single form
// posts back to the session.
const pageShell = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body>
<form method="post" action="/s/%s">
%s
</form>
</body>
</html>
`

// ListSessions handles GET /api/sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": h.mgr.List(),
		"total":    h.mgr.Count(),
	})
}

// GetSession handles GET /api/sessions/{id}: live summary plus the
// journaled generations.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := h.mgr.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	out := map[string]any{
		"id":          sess.ID(),
		"created_at":  sess.CreatedAt(),
		"last_seen":   sess.LastSeen(),
		"generations": sess.Generations(),
	}
	if h.journal != nil {
		gens, jErr := h.journal.Generations(id)
		if jErr != nil {
			slog.Error("journal read failed", slog.String("session", id), slog.String("error", jErr.Error()))
		} else {
			out["history"] = gens
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// DeleteSession handles DELETE /api/sessions/{id}. Removes the live
// session; journal history is kept.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.mgr.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// errStatus maps processing errors to HTTP responses. Protocol misuse
// (answer with no pending call, stale resume target) means the tree no
// longer matches the page that was submitted.
func errStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, apperr.ErrGenerationNotFound):
		return http.StatusNotFound, "generation not found"
	case errors.Is(err, apperr.ErrAnswerWithoutCall), errors.Is(err, apperr.ErrBadResumeTarget):
		return http.StatusConflict, "session state conflict"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
