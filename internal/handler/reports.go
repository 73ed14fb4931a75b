package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/cafe-republic/api/internal/database"
	"github.com/cafe-republic/api/internal/report"
)

// ReportStore defines the database methods needed by report handlers.
type ReportStore interface {
	ListOrdersBetween(ctx context.Context, arg database.ListOrdersBetweenParams) ([]database.Order, error)
	ListOrderItemsDetailBetween(ctx context.Context, arg database.ListOrderItemsDetailBetweenParams) ([]database.OrderItemDetailRow, error)
}

// ReportHandler handles sales report endpoints.
type ReportHandler struct {
	store ReportStore
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(store ReportStore) *ReportHandler {
	return &ReportHandler{store: store}
}

// Get handles GET /admin/reports?start_date=&end_date=. Defaults to the
// last 30 days when no range is given.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	summary, _, ok := h.buildSummary(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Export handles GET /admin/reports/export -- the same report as CSV.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	summary, orders, ok := h.buildSummary(w, r)
	if !ok {
		return
	}

	filename := "sales-report-" + time.Now().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := report.WriteCSV(w, summary, orders); err != nil {
		log.Printf("ERROR: write report CSV: %v", err)
	}
}

func (h *ReportHandler) buildSummary(w http.ResponseWriter, r *http.Request) (report.Summary, []database.Order, bool) {
	start, end, errMsg := reportRange(r)
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
		return report.Summary{}, nil, false
	}

	orders, err := h.store.ListOrdersBetween(r.Context(), database.ListOrdersBetweenParams{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		log.Printf("ERROR: list orders for report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return report.Summary{}, nil, false
	}

	items, err := h.store.ListOrderItemsDetailBetween(r.Context(), database.ListOrderItemsDetailBetweenParams{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		log.Printf("ERROR: list order items for report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return report.Summary{}, nil, false
	}

	return report.Aggregate(orders, items), orders, true
}

// reportRange parses ?range=today|week|month or explicit
// start_date/end_date (YYYY-MM-DD, both inclusive). Explicit dates win.
func reportRange(r *http.Request) (start, end time.Time, errMsg string) {
	now := time.Now()
	start = now.AddDate(0, 0, -30)
	end = now

	switch rng := r.URL.Query().Get("range"); rng {
	case "":
	case "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case "week":
		start = now.AddDate(0, 0, -7)
	case "month":
		start = now.AddDate(0, -1, 0)
	default:
		return time.Time{}, time.Time{}, "range must be today, week or month"
	}

	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return time.Time{}, time.Time{}, "start_date must be YYYY-MM-DD"
		}
		start = t
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return time.Time{}, time.Time{}, "end_date must be YYYY-MM-DD"
		}
		end = t.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, "end_date must not be before start_date"
	}
	return start, end, ""
}
