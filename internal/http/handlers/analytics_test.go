package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/DridhaTeamHQ/tria-server/internal/sqlinline"
)

func TestAnalyticsSummary(t *testing.T) {
	t.Parallel()

	sql := &stubSQL{
		rows: map[string]pgx.Row{
			sqlinline.QAnalyticsSummary: NewSimpleRow(func(dest ...any) error {
				*(dest[0].(*int64)) = 42
				*(dest[1].(*int64)) = 100
				*(dest[2].(*int64)) = 90
				*(dest[3].(*int64)) = 10
				*(dest[4].(*int64)) = 7
				return nil
			}),
		},
		results: map[string]pgx.Rows{
			sqlinline.QAnalyticsTopPresets: &SliceRows{Rows: [][]any{
				{"cafe_window", int64(60)},
				{"studio_minimal", int64(40)},
			}},
			sqlinline.QAnalyticsCountries: &SliceRows{Rows: [][]any{
				{"ID", int64(80)},
				{"unknown", int64(20)},
			}},
		},
	}
	app, _ := testApp(t, sql)

	rec := httptest.NewRecorder()
	app.AnalyticsSummary(rec, httptest.NewRequest(http.MethodGet, "/v1/analytics/summary", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		TotalUsers int64            `json:"total_users"`
		JobsLast24 int64            `json:"jobs_last_24h"`
		TopPresets []map[string]any `json:"top_presets"`
		Countries  []map[string]any `json:"countries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalUsers != 42 || resp.JobsLast24 != 7 {
		t.Errorf("unexpected counters: %+v", resp)
	}
	if len(resp.TopPresets) != 2 || resp.TopPresets[0]["preset_id"] != "cafe_window" {
		t.Errorf("unexpected top presets: %v", resp.TopPresets)
	}
	if len(resp.Countries) != 2 || resp.Countries[0]["country"] != "ID" {
		t.Errorf("unexpected countries: %v", resp.Countries)
	}
}

func TestCostsSummary(t *testing.T) {
	t.Parallel()

	sql := &stubSQL{
		results: map[string]pgx.Rows{
			sqlinline.QCostSummary: &SliceRows{Rows: [][]any{
				{"gemini", "gemini-2.5-flash-image", int64(12), int64(20), 0.78, int64(1)},
				{"openai", "gpt-4o-mini", int64(36), int64(36), 0.12, int64(0)},
			}},
		},
	}
	app, _ := testApp(t, sql)

	rec := httptest.NewRecorder()
	app.CostsSummary(rec, httptest.NewRequest(http.MethodGet, "/v1/costs/summary?days=30", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Days     int              `json:"days"`
		TotalUSD float64          `json:"total_estimated_usd"`
		Items    []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Days != 30 {
		t.Errorf("days = %d", resp.Days)
	}
	if resp.TotalUSD < 0.89 || resp.TotalUSD > 0.91 {
		t.Errorf("total = %v, want ~0.90", resp.TotalUSD)
	}
	if len(resp.Items) != 2 {
		t.Errorf("items = %v", resp.Items)
	}
}

func TestCostsSummaryRejectsBadDays(t *testing.T) {
	t.Parallel()

	app, _ := testApp(t, &stubSQL{})
	rec := httptest.NewRecorder()
	app.CostsSummary(rec, httptest.NewRequest(http.MethodGet, "/v1/costs/summary?days=900", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPresetsList(t *testing.T) {
	t.Parallel()

	app, _ := testApp(t, &stubSQL{})
	rec := httptest.NewRecorder()
	app.PresetsList(rec, httptest.NewRequest(http.MethodGet, "/v1/presets", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) == 0 {
		t.Fatal("no presets returned")
	}
	for _, item := range resp.Items {
		for _, field := range []string{"id", "name", "authority", "anchor_zones", "default_zone"} {
			if _, ok := item[field]; !ok {
				t.Errorf("preset item missing %q: %v", field, item)
			}
		}
	}
}

func TestPresetGet(t *testing.T) {
	t.Parallel()

	app, _ := testApp(t, &stubSQL{})
	rec := httptest.NewRecorder()
	req := authedRequest(httptest.NewRequest(http.MethodGet, "/v1/presets/cafe_window", nil), "", "cafe_window")
	app.PresetGet(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["id"] != "cafe_window" {
		t.Errorf("id = %v", resp["id"])
	}

	rec = httptest.NewRecorder()
	req = authedRequest(httptest.NewRequest(http.MethodGet, "/v1/presets/nope", nil), "", "nope")
	app.PresetGet(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
