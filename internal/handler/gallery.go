package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cafe-republic/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// GalleryStore defines the database methods needed by gallery handlers.
type GalleryStore interface {
	ListGalleryCategories(ctx context.Context) ([]database.GalleryCategory, error)
	CreateGalleryCategory(ctx context.Context, name string) (database.GalleryCategory, error)
	CountImagesByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	DeleteGalleryCategory(ctx context.Context, id uuid.UUID) error
	ListGalleryImages(ctx context.Context) ([]database.GalleryImage, error)
	CreateGalleryImage(ctx context.Context, arg database.CreateGalleryImageParams) (database.GalleryImage, error)
	DeleteGalleryImage(ctx context.Context, id uuid.UUID) error
}

// GalleryHandler handles gallery category and image endpoints.
type GalleryHandler struct {
	store GalleryStore
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(store GalleryStore) *GalleryHandler {
	return &GalleryHandler{store: store}
}

// --- Request / Response types ---

type galleryCategoryRequest struct {
	Name string `json:"name"`
}

type galleryImageRequest struct {
	CategoryID string `json:"category_id"`
	Title      string `json:"title"`
	ImageURL   string `json:"image_url"`
}

type galleryCategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type galleryImageResponse struct {
	ID         uuid.UUID  `json:"id"`
	CategoryID *uuid.UUID `json:"category_id"`
	Title      *string    `json:"title"`
	ImageURL   string     `json:"image_url"`
	CreatedAt  time.Time  `json:"created_at"`
}

// --- Category handlers ---

// ListCategories handles GET /gallery/categories. Public alongside the
// image list so the site can render the gallery without auth.
func (h *GalleryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListGalleryCategories(r.Context())
	if err != nil {
		log.Printf("ERROR: list gallery categories: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]galleryCategoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = galleryCategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateCategory handles POST /admin/gallery/categories.
func (h *GalleryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req galleryCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	category, err := h.store.CreateGalleryCategory(r.Context(), name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "category already exists"})
			return
		}
		log.Printf("ERROR: create gallery category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, galleryCategoryResponse{ID: category.ID, Name: category.Name, CreatedAt: category.CreatedAt})
}

// DeleteCategory handles DELETE /admin/gallery/categories/{id}. A
// category still holding images cannot be removed.
func (h *GalleryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category ID"})
		return
	}

	count, err := h.store.CountImagesByCategory(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: count images by category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if count > 0 {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "category has images; delete or move them first"})
		return
	}

	if err := h.store.DeleteGalleryCategory(r.Context(), id); err != nil {
		log.Printf("ERROR: delete gallery category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Image handlers ---

// ListImages handles GET /gallery.
func (h *GalleryHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.store.ListGalleryImages(r.Context())
	if err != nil {
		log.Printf("ERROR: list gallery images: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]galleryImageResponse, len(images))
	for i, img := range images {
		resp[i] = toGalleryImageResponse(img)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateImage handles POST /admin/gallery.
func (h *GalleryHandler) CreateImage(w http.ResponseWriter, r *http.Request) {
	var req galleryImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.ImageURL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "image_url is required"})
		return
	}

	params := database.CreateGalleryImageParams{ImageURL: req.ImageURL}
	if req.CategoryID != "" {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category ID"})
			return
		}
		params.CategoryID = pgtype.UUID{Bytes: categoryID, Valid: true}
	}
	if req.Title != "" {
		params.Title = pgtype.Text{String: req.Title, Valid: true}
	}

	image, err := h.store.CreateGalleryImage(r.Context(), params)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category not found"})
			return
		}
		log.Printf("ERROR: create gallery image: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, toGalleryImageResponse(image))
}

// DeleteImage handles DELETE /admin/gallery/{id}.
func (h *GalleryHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid image ID"})
		return
	}

	if err := h.store.DeleteGalleryImage(r.Context(), id); err != nil {
		log.Printf("ERROR: delete gallery image: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func toGalleryImageResponse(img database.GalleryImage) galleryImageResponse {
	resp := galleryImageResponse{
		ID:        img.ID,
		ImageURL:  img.ImageURL,
		CreatedAt: img.CreatedAt,
	}
	if img.CategoryID.Valid {
		id := uuid.UUID(img.CategoryID.Bytes)
		resp.CategoryID = &id
	}
	if img.Title.Valid {
		resp.Title = &img.Title.String
	}
	return resp
}
