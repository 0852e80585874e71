package handlers

import (
	"net/http"
	"strconv"

	"github.com/DridhaTeamHQ/tria-server/internal/sqlinline"
)

func (a *App) CostsSummary(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 90 {
			a.error(w, http.StatusBadRequest, "bad_request", "days must be 1-90")
			return
		}
		days = n
	}

	rows, err := a.SQL.Query(r.Context(), sqlinline.QCostSummary, days)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load cost summary")
		return
	}
	defer rows.Close()

	var items []map[string]any
	var totalUSD float64
	for rows.Next() {
		var provider, model string
		var calls, units, failures int64
		var estimatedUSD float64
		if err := rows.Scan(&provider, &model, &calls, &units, &estimatedUSD, &failures); err != nil {
			continue
		}
		totalUSD += estimatedUSD
		items = append(items, map[string]any{
			"provider":      provider,
			"model":         model,
			"calls":         calls,
			"units":         units,
			"estimated_usd": estimatedUSD,
			"failures":      failures,
		})
	}
	a.json(w, http.StatusOK, map[string]any{
		"days":                days,
		"total_estimated_usd": totalUSD,
		"items":               items,
	})
}
