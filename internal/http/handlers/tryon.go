package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/DridhaTeamHQ/tria-server/internal/infra"
	"github.com/DridhaTeamHQ/tria-server/internal/middleware"
	"github.com/DridhaTeamHQ/tria-server/internal/sqlinline"
	"github.com/DridhaTeamHQ/tria-server/internal/tryon"
	"github.com/DridhaTeamHQ/tria-server/pkg/zip"
)

// maxUploadBytes caps each decoded upload at 8 MiB.
const maxUploadBytes = 8 << 20

type tryonCreateRequest struct {
	PersonImage  string `json:"person_image"`
	GarmentImage string `json:"garment_image"`
	PersonMIME   string `json:"person_mime"`
	GarmentMIME  string `json:"garment_mime"`
	PresetID     string `json:"preset_id"`
	AnchorZone   string `json:"anchor_zone"`
	Pose         string `json:"pose"`
	Quality      string `json:"quality"`
}

// jobOptions is what the API persists on the job row for the worker.
type jobOptions struct {
	PersonKey   string `json:"person_key"`
	GarmentKey  string `json:"garment_key"`
	PersonMIME  string `json:"person_mime"`
	GarmentMIME string `json:"garment_mime"`
	Pose        string `json:"pose,omitempty"`
	Quality     string `json:"quality,omitempty"`
}

func (a *App) TryonCreate(w http.ResponseWriter, r *http.Request) {
	var req tryonCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	preset, err := tryon.LookupPreset(req.PresetID)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown preset_id")
		return
	}
	person, err := decodeUpload(req.PersonImage)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "person_image: "+err.Error())
		return
	}
	garment, err := decodeUpload(req.GarmentImage)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "garment_image: "+err.Error())
		return
	}

	userID := a.currentUserID(r)
	jobID := uuid.NewString()
	personMIME := normalizeImageMIME(req.PersonMIME)
	garmentMIME := normalizeImageMIME(req.GarmentMIME)

	opts := jobOptions{
		PersonKey:   uploadKey(userID, jobID, "person", personMIME),
		GarmentKey:  uploadKey(userID, jobID, "garment", garmentMIME),
		PersonMIME:  personMIME,
		GarmentMIME: garmentMIME,
		Pose:        req.Pose,
		Quality:     string(tryon.NormalizeQuality(req.Quality)),
	}
	if _, err := a.Store.Write(r.Context(), opts.PersonKey, person); err != nil {
		a.Logger.Error().Err(err).Msg("store person upload failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store upload")
		return
	}
	if _, err := a.Store.Write(r.Context(), opts.GarmentKey, garment); err != nil {
		a.Logger.Error().Err(err).Msg("store garment upload failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store upload")
		return
	}

	optsJSON, _ := json.Marshal(opts)
	country := middleware.CountryFromContext(r.Context())
	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertTryonJob,
		jobID, userID, preset.ID, req.AnchorZone, optsJSON, country)
	var insertedID string
	if err := row.Scan(&insertedID); err != nil {
		a.Logger.Error().Err(err).Msg("insert try-on job failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create job")
		return
	}
	if err := a.Queue.Enqueue(r.Context(), jobID); err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("enqueue failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue job")
		return
	}
	a.json(w, http.StatusAccepted, map[string]any{
		"id":     jobID,
		"status": "QUEUED",
	})
}

func (a *App) TryonStatus(w http.ResponseWriter, r *http.Request) {
	job, err := a.loadJob(r)
	if err != nil {
		if infra.IsNoRows(err) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":          job.ID,
		"status":      job.Status,
		"preset_id":   job.PresetID,
		"anchor_zone": job.AnchorZone,
		"error":       job.Error,
		"created_at":  job.CreatedAt,
		"updated_at":  job.UpdatedAt,
	})
}

func (a *App) TryonResult(w http.ResponseWriter, r *http.Request) {
	job, err := a.loadJob(r)
	if err != nil {
		if infra.IsNoRows(err) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	if job.Status != "SUCCEEDED" {
		a.json(w, http.StatusOK, map[string]any{
			"id":     job.ID,
			"status": job.Status,
			"error":  job.Error,
		})
		return
	}
	assets, err := a.loadJobAssets(r, job.ID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load assets")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":     job.ID,
		"status": job.Status,
		"assets": assets,
		"debug":  json.RawMessage(job.Debug),
	})
}

func (a *App) TryonDownload(w http.ResponseWriter, r *http.Request) {
	job, err := a.loadJob(r)
	if err != nil {
		if infra.IsNoRows(err) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	if job.Status != "SUCCEEDED" {
		a.error(w, http.StatusConflict, "not_ready", "job has not succeeded")
		return
	}
	assets, err := a.loadJobAssets(r, job.ID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load assets")
		return
	}
	var archive []zip.Asset
	for _, asset := range assets {
		key, _ := asset["storage_key"].(string)
		mime, _ := asset["mime"].(string)
		data, err := a.Store.Read(r.Context(), key)
		if err != nil {
			a.Logger.Warn().Err(err).Str("key", key).Msg("asset read failed, skipping")
			continue
		}
		archive = append(archive, zip.Asset{
			Filename: path.Base(key),
			MIME:     mime,
			Data:     data,
		})
	}
	if len(archive) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no downloadable assets")
		return
	}
	payload := zip.ArchiveAssets(archive)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "tryon-"+job.ID+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

type jobRow struct {
	ID         string
	UserID     string
	Status     string
	PresetID   string
	AnchorZone string
	Options    []byte
	Error      string
	Debug      []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (a *App) loadJob(r *http.Request) (*jobRow, error) {
	jobID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, fmt.Errorf("invalid job id: %w", err)
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectJobForUser, jobID, a.currentUserID(r))
	var job jobRow
	if err := row.Scan(&job.ID, &job.UserID, &job.Status, &job.PresetID, &job.AnchorZone,
		&job.Options, &job.Error, &job.Debug, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return nil, err
	}
	return &job, nil
}

func (a *App) loadJobAssets(r *http.Request, jobID string) ([]map[string]any, error) {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QSelectJobAssets, jobID, a.currentUserID(r))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []map[string]any
	for rows.Next() {
		var id, kind, storageKey, mime string
		var bytesLen int64
		var width, height int
		var props []byte
		var createdAt time.Time
		if err := rows.Scan(&id, &kind, &storageKey, &mime, &bytesLen, &width, &height, &props, &createdAt); err != nil {
			continue
		}
		items = append(items, map[string]any{
			"id":          id,
			"kind":        kind,
			"storage_key": storageKey,
			"mime":        mime,
			"bytes":       bytesLen,
			"width":       width,
			"height":      height,
			"url":         strings.TrimSuffix(a.Config.StorageBaseURL, "/") + "/" + storageKey,
			"created_at":  createdAt,
		})
	}
	return items, nil
}

func decodeUpload(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("image required")
	}
	// Accept data URLs as sent by browser canvas exports.
	if idx := strings.Index(encoded, ";base64,"); idx >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64")
	}
	if len(data) > maxUploadBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxUploadBytes)
	}
	return data, nil
}

func normalizeImageMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return "image/jpeg"
	case "image/webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

func extensionForMIME(mime string) string {
	switch mime {
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}

func uploadKey(userID, jobID, name, mime string) string {
	return fmt.Sprintf("uploads/%s/%s/%s.%s", userID, jobID, name, extensionForMIME(mime))
}
