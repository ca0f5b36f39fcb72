// Package mcp exposes the exercise catalog, saved sessions, and workout
// history to MCP clients.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/nextrep/internal/history"
	"github.com/meltforce/nextrep/internal/models"
	"github.com/meltforce/nextrep/internal/storage"
)

// DataSource abstracts the data layer for MCP tools.
type DataSource interface {
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	GetExercise(ctx context.Context, id int) (models.Exercise, bool, error)
	ListSessions(ctx context.Context) ([]models.Session, error)
	SetsForExercise(ctx context.Context, exerciseID int) ([]models.WorkoutSetRecord, error)
	RecentWorkoutSets(ctx context.Context, limit int) ([]models.WorkoutSetRecord, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)

// New creates an MCP server with all tools registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("NextRep", version,
		server.WithToolCapabilities(false),
		server.WithInstructions("NextRep workout tracking server. Query the exercise catalog, saved workout sessions, and per-exercise set history grouped into workout runs."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolListSessions, Handler: h.listSessions},
		server.ServerTool{Tool: toolGetExerciseHistory, Handler: h.getExerciseHistory},
		server.ServerTool{Tool: toolGetRecentRuns, Handler: h.getRecentRuns},
	)

	return s
}

// handlers holds dependencies for MCP tool handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// groupRuns is shared by the history tools.
func groupRuns(recs []models.WorkoutSetRecord) []history.Run {
	return history.GroupByRun(recs)
}
