package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DridhaTeamHQ/tria-server/internal/tryon"
)

// PresetsList is public; the client renders the scene picker from it.
func (a *App) PresetsList(w http.ResponseWriter, r *http.Request) {
	presets := tryon.Presets()
	items := make([]map[string]any, 0, len(presets))
	for _, p := range presets {
		items = append(items, presetDTO(p))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) PresetGet(w http.ResponseWriter, r *http.Request) {
	preset, err := tryon.LookupPreset(chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "unknown preset")
		return
	}
	a.json(w, http.StatusOK, presetDTO(preset))
}

func presetDTO(p tryon.Preset) map[string]any {
	zones := make([]string, 0, len(p.AnchorZones))
	for _, z := range p.AnchorZones {
		zones = append(zones, string(z))
	}
	return map[string]any{
		"id":           p.ID,
		"name":         p.Name,
		"scene":        p.Scene,
		"authority":    string(p.Authority),
		"anchor_zones": zones,
		"default_zone": string(p.DefaultZone),
	}
}
