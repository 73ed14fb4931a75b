package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/cafe-republic/api/internal/database"
	"github.com/cafe-republic/api/internal/service"
	"github.com/jackc/pgx/v5/pgtype"
)

// SettingsStore defines the database methods needed by settings reads.
type SettingsStore interface {
	GetSettings(ctx context.Context) (database.CafeSettings, error)
}

// SettingsService writes the settings row and resizes the table pool
// atomically; satisfied by *service.TableService.
type SettingsService interface {
	UpdateSettings(ctx context.Context, arg database.UpdateSettingsParams) (database.CafeSettings, error)
}

// SettingsHandler handles cafe settings endpoints.
type SettingsHandler struct {
	store SettingsStore
	svc   SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(store SettingsStore, svc SettingsService) *SettingsHandler {
	return &SettingsHandler{store: store, svc: svc}
}

// --- Request / Response types ---

type settingsRequest struct {
	CafeName    string `json:"cafe_name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Gstin       string `json:"gstin"`
	TotalTables int32  `json:"total_tables"`
}

type settingsResponse struct {
	CafeName    string    `json:"cafe_name"`
	Address     *string   `json:"address"`
	Phone       *string   `json:"phone"`
	Gstin       *string   `json:"gstin"`
	TotalTables int32     `json:"total_tables"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// --- Handlers ---

// Get handles GET /admin/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		log.Printf("ERROR: get settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

// Update handles PUT /admin/settings. The settings row and the physical
// table set change in one transaction, so the two never disagree.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.CafeName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cafe_name is required"})
		return
	}

	params := database.UpdateSettingsParams{
		CafeName:    req.CafeName,
		TotalTables: req.TotalTables,
	}
	if req.Address != "" {
		params.Address = pgtype.Text{String: req.Address, Valid: true}
	}
	if req.Phone != "" {
		params.Phone = pgtype.Text{String: req.Phone, Valid: true}
	}
	if req.Gstin != "" {
		params.Gstin = pgtype.Text{String: req.Gstin, Valid: true}
	}

	settings, err := h.svc.UpdateSettings(r.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTableCount):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "total_tables must be at least 1"})
		case errors.Is(err, service.ErrTablesOccupied):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "cannot remove occupied tables"})
		default:
			log.Printf("ERROR: update settings: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

func toSettingsResponse(s database.CafeSettings) settingsResponse {
	resp := settingsResponse{
		CafeName:    s.CafeName,
		TotalTables: s.TotalTables,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.Address.Valid {
		resp.Address = &s.Address.String
	}
	if s.Phone.Valid {
		resp.Phone = &s.Phone.String
	}
	if s.Gstin.Valid {
		resp.Gstin = &s.Gstin.String
	}
	return resp
}
