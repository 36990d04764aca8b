package mcpserver

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/raido/internal/session"
	"github.com/starford/raido/internal/store"
)

func testServer(t *testing.T) (*Server, *store.DB) {
	t.Helper()

	dbFile, err := os.CreateTemp("", "raido-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	srv := New(db)
	return srv, db
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call
	// the handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_sessions":
		result, err = srv.listSessions(ctx, req)
	case "inspect_session":
		result, err = srv.inspectSession(ctx, req)
	case "session_state":
		result, err = srv.sessionState(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func seedSession(t *testing.T, db *store.DB, id string, gens int) {
	t.Helper()
	now := time.Now().UTC()
	if err := db.EnsureSession(id, now); err != nil {
		t.Fatal(err)
	}
	for g := 0; g < gens; g++ {
		entries := []session.JournalEntry{
			{Owner: "counter", Field: "count", Value: "1"},
		}
		if err := db.RecordGeneration(id, g, now, entries); err != nil {
			t.Fatal(err)
		}
	}
}

func TestListSessions(t *testing.T) {
	srv, db := testServer(t)
	seedSession(t, db, "01SESSIONA", 1)
	seedSession(t, db, "01SESSIONB", 1)

	r := callTool(t, srv, "list_sessions", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "01SESSIONA") || !strings.Contains(text, "01SESSIONB") {
		t.Errorf("list = %q, want both sessions", text)
	}
}

func TestInspectSession(t *testing.T) {
	srv, db := testServer(t)
	seedSession(t, db, "01SESSIONA", 3)

	r := callTool(t, srv, "inspect_session", map[string]interface{}{"id": "01SESSIONA"})
	text := resultText(r)
	if !strings.Contains(text, `"generations": 3`) {
		t.Errorf("inspect = %q, want 3 generations", text)
	}
}

func TestInspectSessionMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "inspect_session", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing session")
	}
}

func TestSessionStateLatestAndExplicit(t *testing.T) {
	srv, db := testServer(t)
	seedSession(t, db, "01SESSIONA", 2)

	r := callTool(t, srv, "session_state", map[string]interface{}{"id": "01SESSIONA"})
	text := resultText(r)
	if !strings.Contains(text, `"gen": 1`) {
		t.Errorf("latest state = %q, want gen 1", text)
	}

	r = callTool(t, srv, "session_state", map[string]interface{}{
		"id":  "01SESSIONA",
		"gen": "0",
	})
	text = resultText(r)
	if !strings.Contains(text, `"gen": 0`) {
		t.Errorf("explicit state = %q, want gen 0", text)
	}

	r = callTool(t, srv, "session_state", map[string]interface{}{
		"id":  "01SESSIONA",
		"gen": "9",
	})
	if !r.IsError {
		t.Error("expected error for unknown generation")
	}
}
