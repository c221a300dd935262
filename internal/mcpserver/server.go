// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the Laguz note collection for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/laguz/internal/notes"
)

// Server wraps the MCP server with Laguz tools.
type Server struct {
	mcp   *server.MCPServer
	model *notes.Model
}

// New creates a new MCP server with all Laguz tools registered.
func New(model *notes.Model) *Server {
	s := &Server{model: model}

	s.mcp = server.NewMCPServer(
		"Laguz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes. filter is one of active (default), dirty, all."),
		mcp.WithString("filter", mcp.Description("View to list: active, dirty, or all")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a single note record by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id (e.g. note-1700000000000)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note from raw content. Returns the full record "+
			"including the generated id. See the laguz://note-record resource for the "+
			"record format."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note content")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Replace the content of an existing note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New content")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("remove_note",
		mcp.WithDescription("Mark a note as removed. The record is kept as a tombstone "+
			"and disappears from the active view only."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.removeNote)

	// Resource: stored record format.
	s.mcp.AddResource(
		mcp.NewResource("laguz://note-record", "Note Record Format",
			mcp.WithResourceDescription("Shape of the JSON record stored under each note key."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteRecordResource,
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

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := "active"
	if f, err := req.RequireString("filter"); err == nil && f != "" {
		filter = f
	}

	var out any
	switch filter {
	case "active":
		out = s.model.Sorted(notes.ByCreatedDate)
	case "dirty":
		out = s.model.Dirty()
	case "all":
		out = s.model.All()
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown filter: %s", filter)), nil
	}

	data, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, ok := s.model.Get(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	data, _ := json.MarshalIndent(n, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.model.Create(content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, _ := json.MarshalIndent(n, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, ok := s.model.Get(id); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	if err := s.model.Save(id, content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s", id)), nil
}

func (s *Server) removeNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, ok := s.model.Get(id); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	if err := s.model.Remove(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed: %s", id)), nil
}

func (s *Server) readNoteRecordResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "laguz://note-record",
			MIMEType: "text/markdown",
			Text:     NoteRecordContract,
		},
	}, nil
}
