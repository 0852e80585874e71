package handlers

import (
	"net/http"
	"strconv"

	"github.com/DridhaTeamHQ/tria-server/internal/sqlinline"
)

func (a *App) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	row := a.SQL.QueryRow(r.Context(), sqlinline.QAnalyticsSummary)
	var totalUsers, totalJobs, succeeded, failed, last24 int64
	if err := row.Scan(&totalUsers, &totalJobs, &succeeded, &failed, &last24); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load analytics")
		return
	}

	limit := listLimit(r, 5)
	topPresets, err := a.analyticsPairs(r, sqlinline.QAnalyticsTopPresets, "preset_id", "uses", limit)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load analytics")
		return
	}
	countries, err := a.analyticsPairs(r, sqlinline.QAnalyticsCountries, "country", "jobs", limit)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load analytics")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"total_users":    totalUsers,
		"total_jobs":     totalJobs,
		"jobs_succeeded": succeeded,
		"jobs_failed":    failed,
		"jobs_last_24h":  last24,
		"top_presets":    topPresets,
		"countries":      countries,
	})
}

func (a *App) analyticsPairs(r *http.Request, query, keyName, countName string, limit int) ([]map[string]any, error) {
	rows, err := a.SQL.Query(r.Context(), query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []map[string]any
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			continue
		}
		items = append(items, map[string]any{keyName: key, countName: count})
	}
	return items, nil
}

func listLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 50 {
		return fallback
	}
	return n
}
