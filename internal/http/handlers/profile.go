package handlers

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"time"

	"github.com/DridhaTeamHQ/tria-server/internal/infra"
	"github.com/DridhaTeamHQ/tria-server/internal/middleware"
	"github.com/DridhaTeamHQ/tria-server/internal/sqlinline"
)

const tokenTTL = 30 * 24 * time.Hour

type tokenRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// AuthToken upserts the user by email and issues a signed bearer token.
func (a *App) AuthToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "valid email required")
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QUpsertUserByEmail, req.Email, req.DisplayName)
	var userID, plan string
	if err := row.Scan(&userID, &plan); err != nil {
		a.Logger.Error().Err(err).Msg("user upsert failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create user")
		return
	}

	token, err := middleware.SignJWT(a.Config.JWTSecret, middleware.TokenClaims{
		Sub:      userID,
		Plan:     plan,
		Exp:      time.Now().Add(tokenTTL).Unix(),
		Issuer:   "tria-server",
		Audience: "tria-app",
	})
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  map[string]any{"id": userID, "plan": plan},
	})
}

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectUserByID, userID)
	profile, err := scanUserProfile(row.Scan)
	if err != nil {
		if infra.IsNoRows(err) {
			a.error(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load profile")
		return
	}
	a.json(w, http.StatusOK, profile)
}

type profileUpdateRequest struct {
	DisplayName string         `json:"display_name"`
	Properties  map[string]any `json:"properties"`
}

func (a *App) MeUpdate(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	props, err := json.Marshal(req.Properties)
	if err != nil || req.Properties == nil {
		props = []byte(`{}`)
	}
	userID := a.currentUserID(r)
	row := a.SQL.QueryRow(r.Context(), sqlinline.QUpdateUserProfile, userID, req.DisplayName, props)
	profile, err := scanUserProfile(row.Scan)
	if err != nil {
		if infra.IsNoRows(err) {
			a.error(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to update profile")
		return
	}
	a.json(w, http.StatusOK, profile)
}

func scanUserProfile(scan func(dest ...any) error) (map[string]any, error) {
	var id, email, displayName, plan string
	var props []byte
	var createdAt, updatedAt time.Time
	if err := scan(&id, &email, &displayName, &plan, &props, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return map[string]any{
		"id":           id,
		"email":        email,
		"display_name": displayName,
		"plan":         plan,
		"properties":   json.RawMessage(props),
		"created_at":   createdAt,
		"updated_at":   updatedAt,
	}, nil
}
