package handlers

import "net/http"

// Health is the liveness probe. It reports nothing about Postgres or Redis;
// a failing dependency surfaces on the job endpoints, not here.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok", "service": "tria"})
}
