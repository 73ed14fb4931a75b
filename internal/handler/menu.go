package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/cafe-republic/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// MenuStore defines the database methods needed by menu handlers.
type MenuStore interface {
	ListMenuItems(ctx context.Context) ([]database.MenuItem, error)
	ListAvailableMenuItems(ctx context.Context) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	SetMenuItemAvailability(ctx context.Context, arg database.SetMenuItemAvailabilityParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) error
}

// MenuHandler handles menu endpoints.
type MenuHandler struct {
	store MenuStore
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

// --- Request / Response types ---

type menuItemRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	Category     string `json:"category"`
	ImageURL     string `json:"image_url"`
	IsAvailable  *bool  `json:"is_available"`
	IsVegetarian bool   `json:"is_vegetarian"`
	IsSpicy      bool   `json:"is_spicy"`
	IsBestseller bool   `json:"is_bestseller"`
}

type availabilityRequest struct {
	IsAvailable bool `json:"is_available"`
}

type menuItemResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	Price        string    `json:"price"`
	Category     string    `json:"category"`
	ImageURL     *string   `json:"image_url"`
	IsAvailable  bool      `json:"is_available"`
	IsVegetarian bool      `json:"is_vegetarian"`
	IsSpicy      bool      `json:"is_spicy"`
	IsBestseller bool      `json:"is_bestseller"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// --- Handlers ---

// ListPublic handles GET /menu -- the customer-facing menu, available
// items only.
func (h *MenuHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListAvailableMenuItems(r.Context())
	if err != nil {
		log.Printf("ERROR: list available menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponses(items))
}

// List handles GET /admin/menu -- everything, including unavailable items.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListMenuItems(r.Context())
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponses(items))
}

// Get handles GET /admin/menu/{id}.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseMenuItemID(w, r)
	if !ok {
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: get menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Create handles POST /admin/menu.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, errMsg := menuItemParams(req)
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

// Update handles PUT /admin/menu/{id}. Price changes never touch existing
// order line items; those carry their own price_at_order.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseMenuItemID(w, r)
	if !ok {
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, errMsg := menuItemParams(req)
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
		return
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:           id,
		Name:         params.Name,
		Description:  params.Description,
		Price:        params.Price,
		Category:     params.Category,
		ImageURL:     params.ImageURL,
		IsAvailable:  params.IsAvailable,
		IsVegetarian: params.IsVegetarian,
		IsSpicy:      params.IsSpicy,
		IsBestseller: params.IsBestseller,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: update menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// SetAvailability handles PATCH /admin/menu/{id}/availability -- the
// quick out-of-stock toggle.
func (h *MenuHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := parseMenuItemID(w, r)
	if !ok {
		return
	}

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	item, err := h.store.SetMenuItemAvailability(r.Context(), database.SetMenuItemAvailabilityParams{
		ID:          id,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: set menu item availability: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Delete handles DELETE /admin/menu/{id}.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseMenuItemID(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteMenuItem(r.Context(), id); err != nil {
		log.Printf("ERROR: delete menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Helpers ---

func parseMenuItemID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return uuid.Nil, false
	}
	return id, true
}

func menuItemParams(req menuItemRequest) (database.CreateMenuItemParams, string) {
	if req.Name == "" {
		return database.CreateMenuItemParams{}, "name is required"
	}
	if req.Category == "" {
		return database.CreateMenuItemParams{}, "category is required"
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return database.CreateMenuItemParams{}, "price must be a non-negative decimal"
	}
	var priceNum pgtype.Numeric
	_ = priceNum.Scan(price.StringFixed(2))

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	params := database.CreateMenuItemParams{
		Name:         req.Name,
		Price:        priceNum,
		Category:     req.Category,
		IsAvailable:  available,
		IsVegetarian: req.IsVegetarian,
		IsSpicy:      req.IsSpicy,
		IsBestseller: req.IsBestseller,
	}
	if req.Description != "" {
		params.Description = pgtype.Text{String: req.Description, Valid: true}
	}
	if req.ImageURL != "" {
		params.ImageURL = pgtype.Text{String: req.ImageURL, Valid: true}
	}
	return params, ""
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	resp := menuItemResponse{
		ID:           m.ID,
		Name:         m.Name,
		Price:        numericToString(m.Price),
		Category:     m.Category,
		IsAvailable:  m.IsAvailable,
		IsVegetarian: m.IsVegetarian,
		IsSpicy:      m.IsSpicy,
		IsBestseller: m.IsBestseller,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Description.Valid {
		resp.Description = &m.Description.String
	}
	if m.ImageURL.Valid {
		resp.ImageURL = &m.ImageURL.String
	}
	return resp
}

func toMenuItemResponses(items []database.MenuItem) []menuItemResponse {
	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		resp[i] = toMenuItemResponse(m)
	}
	return resp
}
