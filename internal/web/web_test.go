package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/starford/raido/internal/session"
	"github.com/starford/raido/internal/testutil"
)

// testEnv wires a manager over the counter demo tree and a router.
// authToken "" means auth disabled.
func testEnv(t *testing.T, authToken string) (*session.Manager, http.Handler) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := testutil.TestDB(t)
	mgr := session.NewManager(testutil.CounterRoot, logger, session.WithJournal(db))
	router := NewRouter(mgr, db, "test", authToken != "", authToken, nil)
	return mgr, router
}

func createSession(t *testing.T, router http.Handler) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("new session status = %d", w.Code)
	}
	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "/s/") {
		t.Fatalf("redirect = %q", loc)
	}
	return strings.TrimPrefix(loc, "/s/")
}

func TestNewSessionRedirects(t *testing.T) {
	mgr, router := testEnv(t, "")
	id := createSession(t, router)
	if len(id) != 26 {
		t.Errorf("session id = %q, want ULID", id)
	}
	if mgr.Count() != 1 {
		t.Errorf("live sessions = %d, want 1", mgr.Count())
	}
}

func TestGetPageRendersTree(t *testing.T) {
	_, router := testEnv(t, "")
	id := createSession(t, router)

	req := httptest.NewRequest(http.MethodGet, "/s/"+id, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "count: 0") {
		t.Errorf("body = %q, want rendered counter", body)
	}
	if !strings.Contains(body, `action="/s/`+id+`"`) {
		t.Errorf("body = %q, want form posting back to session", body)
	}
}

func TestPostPageRunsAction(t *testing.T) {
	_, router := testEnv(t, "")
	id := createSession(t, router)

	// First render: generation 0.
	req := httptest.NewRequest(http.MethodGet, "/s/"+id, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	form := url.Values{}
	form.Set(session.GenParam, "0")
	form.Set("_a0", "1")
	req = httptest.NewRequest(http.MethodPost, "/s/"+id, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "count: 1") {
		t.Errorf("body = %q, want incremented counter", w.Body.String())
	}
}

func TestGetPageUnknownSession(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/s/01UNKNOWN", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetPageBadGeneration(t *testing.T) {
	_, router := testEnv(t, "")
	id := createSession(t, router)

	req := httptest.NewRequest(http.MethodGet, "/s/"+id, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	req = httptest.NewRequest(http.MethodGet, "/s/"+id+"?_gen=42", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListSessionsAPI(t *testing.T) {
	_, router := testEnv(t, "")
	createSession(t, router)
	createSession(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var out struct {
		Sessions []session.Info `json:"sessions"`
		Total    int            `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Total != 2 || len(out.Sessions) != 2 {
		t.Errorf("total = %d, sessions = %d", out.Total, len(out.Sessions))
	}
}

func TestGetSessionAPIWithHistory(t *testing.T) {
	_, router := testEnv(t, "")
	id := createSession(t, router)

	// Render once so a generation lands in the journal.
	req := httptest.NewRequest(http.MethodGet, "/s/"+id, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	req = httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["id"] != id {
		t.Errorf("id = %v", out["id"])
	}
	if out["generations"].(float64) != 1 {
		t.Errorf("generations = %v, want 1", out["generations"])
	}
	history, ok := out["history"].([]any)
	if !ok || len(history) != 1 {
		t.Errorf("history = %v, want one journaled generation", out["history"])
	}
}

func TestDeleteSessionAPI(t *testing.T) {
	mgr, router := testEnv(t, "")
	id := createSession(t, router)

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	if mgr.Count() != 0 {
		t.Errorf("live sessions = %d, want 0", mgr.Count())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", w.Code)
	}
}

func TestAPIAuth(t *testing.T) {
	_, router := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", w.Code)
	}

	// Pages stay open.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusSeeOther {
		t.Errorf("page status = %d, want 303", w.Code)
	}
}
