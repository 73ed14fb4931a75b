package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/cafe-republic/api/internal/database"
	"github.com/cafe-republic/api/internal/enum"
	"github.com/google/uuid"
)

// TableStore defines the database methods needed by table handlers.
type TableStore interface {
	ListTables(ctx context.Context) ([]database.CafeTable, error)
}

// TableHandler handles table endpoints.
type TableHandler struct {
	store TableStore
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(store TableStore) *TableHandler {
	return &TableHandler{store: store}
}

type tableResponse struct {
	ID             int32      `json:"id"`
	Status         string     `json:"status"`
	CurrentOrderID *uuid.UUID `json:"current_order_id"`
}

// List handles GET /tables. Public: the ordering page validates the
// customer's table number against this list before submitting.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.ListTables(r.Context())
	if err != nil {
		log.Printf("ERROR: list tables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = tableResponse{ID: t.ID, Status: t.Status}
		if t.CurrentOrderID.Valid {
			id := uuid.UUID(t.CurrentOrderID.Bytes)
			resp[i].CurrentOrderID = &id
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListAvailable handles GET /tables/available.
func (h *TableHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.ListTables(r.Context())
	if err != nil {
		log.Printf("ERROR: list tables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]tableResponse, 0, len(tables))
	for _, t := range tables {
		if t.Status == enum.TableStatusAvailable {
			resp = append(resp, tableResponse{ID: t.ID, Status: t.Status})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
