package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DridhaTeamHQ/tria-server/internal/http/handlers"
	"github.com/DridhaTeamHQ/tria-server/internal/middleware"
)

// NewRouter wires the public API surface. Everything under /v1 except the
// health check, the preset catalog, token issuance and static assets requires
// a bearer token.
func NewRouter(app *handlers.App, countryLookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.CORSOrigins),
		middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute),
		middleware.Geo(countryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/presets", app.PresetsList)
	r.Get("/v1/presets/{id}", app.PresetGet)
	r.Post("/v1/auth/token", app.AuthToken)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.Config.JWTSecret))

		r.Route("/v1/tryon", func(r chi.Router) {
			r.Post("/", app.TryonCreate)
			r.Get("/{id}", app.TryonStatus)
			r.Get("/{id}/result", app.TryonResult)
			r.Get("/{id}/download", app.TryonDownload)
		})
		r.Get("/v1/me", app.Me)
		r.Put("/v1/me", app.MeUpdate)
		r.Get("/v1/analytics/summary", app.AnalyticsSummary)
		r.Get("/v1/costs/summary", app.CostsSummary)
	})

	fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(app.Store.BasePath())))
	r.Get("/static/*", fileServer.ServeHTTP)

	return r
}
