package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/DridhaTeamHQ/tria-server/internal/infra"
	"github.com/DridhaTeamHQ/tria-server/internal/middleware"
	"github.com/DridhaTeamHQ/tria-server/internal/storage"
)

// Enqueuer hands accepted jobs to the worker queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobID string) error
}

// App carries the shared dependencies of all HTTP handlers.
type App struct {
	SQL    infra.SQLExecutor
	Logger infra.Logger
	Config *infra.Config
	Store  *storage.FileStore
	Queue  Enqueuer
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{
			"code":    errCode,
			"message": message,
		},
	})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
