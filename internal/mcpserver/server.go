// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the Raido session journal for devtools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/store"
)

// Server wraps the MCP server with Raido devtools.
type Server struct {
	mcp     *server.MCPServer
	journal store.SessionJournal
}

// New creates a new MCP server with all devtools registered.
func New(journal store.SessionJournal) *Server {
	s := &Server{journal: journal}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List journaled UI sessions, most recently updated first."),
		mcp.WithString("limit", mcp.Description("Maximum number of sessions to return (empty for all)")),
	), s.listSessions)

	s.mcp.AddTool(mcp.NewTool("inspect_session",
		mcp.WithDescription("Show a session's metadata and how many backtracking generations it has recorded."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Session ID (ULID)")),
	), s.inspectSession)

	s.mcp.AddTool(mcp.NewTool("session_state",
		mcp.WithDescription("Dump the journaled state entries of one generation of a session. "+
			"Each entry names the owning component, the field, and the value it held "+
			"when the generation was captured. See the raido://component-model resource "+
			"for how generations and backtracking work."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Session ID (ULID)")),
		mcp.WithString("gen", mcp.Description("Generation number (empty for the latest)")),
	), s.sessionState)

	// Resource: component model reference.
	s.mcp.AddResource(
		mcp.NewResource("raido://component-model", "Component Model",
			mcp.WithResourceDescription("How Raido components, call/answer transfer, and backtracking generations fit together."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readComponentModelResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 0
	if v, err := req.RequireString("limit"); err == nil && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid limit: %s", v)), nil
		}
		limit = n
	}

	rows, err := s.journal.ListSessions(limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(rows, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) inspectSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	row, err := s.journal.GetSession(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	gens, err := s.journal.Generations(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary := struct {
		store.SessionRow
		Generations int `json:"generations"`
	}{SessionRow: *row, Generations: len(gens)}

	out, _ := json.MarshalIndent(summary, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) sessionState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	gens, err := s.journal.Generations(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(gens) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no generations recorded for session %s", id)), nil
	}

	want := gens[len(gens)-1].Gen
	if v, gerr := req.RequireString("gen"); gerr == nil && v != "" {
		n, perr := strconv.Atoi(v)
		if perr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid gen: %s", v)), nil
		}
		want = n
	}

	for _, g := range gens {
		if g.Gen == want {
			out, _ := json.MarshalIndent(g, "", "  ")
			return mcp.NewToolResultText(string(out)), nil
		}
	}
	return mcp.NewToolResultError(fmt.Sprintf("generation %d not recorded for session %s", want, id)), nil
}

func (s *Server) readComponentModelResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://component-model",
			MIMEType: "text/markdown",
			Text:     ComponentModelDoc,
		},
	}, nil
}
