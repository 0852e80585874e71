package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/DridhaTeamHQ/tria-server/internal/infra"
	"github.com/DridhaTeamHQ/tria-server/internal/middleware"
	"github.com/DridhaTeamHQ/tria-server/internal/storage"
)

// stubSQL routes by query constant so each test pins exactly the statements
// its handler is expected to run.
type stubSQL struct {
	rows    map[string]pgx.Row
	results map[string]pgx.Rows
	rowArgs map[string][]any
}

func (s *stubSQL) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (s *stubSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	if s.rowArgs == nil {
		s.rowArgs = map[string][]any{}
	}
	s.rowArgs[query] = args
	if row, ok := s.rows[query]; ok {
		return row
	}
	return SimpleRow{}
}

func (s *stubSQL) Query(_ context.Context, query string, _ ...any) (pgx.Rows, error) {
	if rows, ok := s.results[query]; ok {
		return rows, nil
	}
	return &SliceRows{}, nil
}

type stubEnqueuer struct {
	jobIDs []string
	err    error
}

func (s *stubEnqueuer) Enqueue(_ context.Context, jobID string) error {
	if s.err != nil {
		return s.err
	}
	s.jobIDs = append(s.jobIDs, jobID)
	return nil
}

func testApp(t *testing.T, sql infra.SQLExecutor) (*App, *stubEnqueuer) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	q := &stubEnqueuer{}
	return &App{
		SQL:    sql,
		Logger: zerolog.Nop(),
		Config: &infra.Config{
			JWTSecret:      "test-secret",
			StorageBaseURL: "http://localhost:8080/static",
		},
		Store: store,
		Queue: q,
	}, q
}

// authedRequest attaches a user ID and, optionally, a chi id URL param.
func authedRequest(r *http.Request, userID, jobID string) *http.Request {
	ctx := middleware.ContextWithUserID(r.Context(), userID)
	if jobID != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", jobID)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return r.WithContext(ctx)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	app, _ := testApp(t, &stubSQL{})
	rec := httptest.NewRecorder()
	app.Health(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
