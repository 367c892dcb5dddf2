// Package mcp exposes the AI-coach surface: an MCP server whose tools let a
// hosted LLM log meals and workout sets on the user's behalf. The tool
// handlers are thin passthroughs to the service layer; all validation and
// persistence rules live there.
package mcp

import (
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/liftlog/internal/service"
)

// New creates the coach MCP server with both tool schemas and the daily
// summary resource registered.
func New(svc *service.Service, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("liftlog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("liftlog fitness coach. Log meals against the food catalog and record workout sets in the active session. Read liftlog://daily_summary for today's context before answering diet or training questions."),
	)

	h := &handlers{svc: svc, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolLogMeal, Handler: h.logMeal},
		server.ServerTool{Tool: toolLogWorkoutSet, Handler: h.logWorkoutSet},
	)

	s.AddResources(
		server.ServerResource{Resource: resDailySummary, Handler: h.dailySummary},
	)

	return s
}

// NewHTTPHandler wraps the MCP server in its streamable HTTP transport for
// mounting under the main router.
func NewHTTPHandler(s *server.MCPServer) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s)
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	svc *service.Service
	log *slog.Logger
}

var resDailySummary = mcp.NewResource(
	"liftlog://daily_summary",
	"Daily Summary",
	mcp.WithResourceDescription("Today's meals and workouts plus weekly volume, muscle distribution and personal records"),
	mcp.WithMIMEType("application/json"),
)

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
