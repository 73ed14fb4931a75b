package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/cafe-republic/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// NotificationStore defines the database methods needed by notification handlers.
type NotificationStore interface {
	ListNotifications(ctx context.Context, arg database.ListNotificationsParams) ([]database.AdminNotification, error)
	MarkNotificationRead(ctx context.Context, id uuid.UUID) (database.AdminNotification, error)
	MarkAllNotificationsRead(ctx context.Context) error
}

// NotificationHandler handles admin notification endpoints.
type NotificationHandler struct {
	store NotificationStore
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(store NotificationStore) *NotificationHandler {
	return &NotificationHandler{store: store}
}

type notificationResponse struct {
	ID          uuid.UUID  `json:"id"`
	OrderID     *uuid.UUID `json:"order_id"`
	TableNumber int32      `json:"table_number"`
	Message     string     `json:"message"`
	IsRead      bool       `json:"is_read"`
	CreatedAt   time.Time  `json:"created_at"`
}

// List handles GET /admin/notifications. ?unread=true filters to unread.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 200 {
		limit = 200
	}

	notifications, err := h.store.ListNotifications(r.Context(), database.ListNotificationsParams{
		UnreadOnly: r.URL.Query().Get("unread") == "true",
		Limit:      int32(limit),
	})
	if err != nil {
		log.Printf("ERROR: list notifications: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]notificationResponse, len(notifications))
	for i, n := range notifications {
		resp[i] = toNotificationResponse(n)
	}
	writeJSON(w, http.StatusOK, resp)
}

// MarkRead handles PATCH /admin/notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid notification ID"})
		return
	}

	notification, err := h.store.MarkNotificationRead(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "notification not found"})
			return
		}
		log.Printf("ERROR: mark notification read: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toNotificationResponse(notification))
}

// MarkAllRead handles POST /admin/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.store.MarkAllNotificationsRead(r.Context()); err != nil {
		log.Printf("ERROR: mark all notifications read: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "all read"})
}

func toNotificationResponse(n database.AdminNotification) notificationResponse {
	resp := notificationResponse{
		ID:          n.ID,
		TableNumber: n.TableNumber,
		Message:     n.Message,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
	if n.OrderID.Valid {
		id := uuid.UUID(n.OrderID.Bytes)
		resp.OrderID = &id
	}
	return resp
}
