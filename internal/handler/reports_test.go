package handler_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cafe-republic/api/internal/database"
	"github.com/cafe-republic/api/internal/enum"
	"github.com/cafe-republic/api/internal/handler"
	"github.com/go-chi/chi/v5"
)

type mockReportStore struct {
	orders     []database.Order
	items      []database.OrderItemDetailRow
	lastParams database.ListOrdersBetweenParams
}

func (m *mockReportStore) ListOrdersBetween(ctx context.Context, arg database.ListOrdersBetweenParams) ([]database.Order, error) {
	m.lastParams = arg
	return m.orders, nil
}

func (m *mockReportStore) ListOrderItemsDetailBetween(ctx context.Context, arg database.ListOrderItemsDetailBetweenParams) ([]database.OrderItemDetailRow, error) {
	return m.items, nil
}

func newReportRouter(store *mockReportStore) http.Handler {
	h := handler.NewReportHandler(store)
	r := chi.NewRouter()
	r.Get("/admin/reports", h.Get)
	r.Get("/admin/reports/export", h.Export)
	return r
}

func TestGetReport_Summary(t *testing.T) {
	completed := makeTestOrder(t, enum.OrderStatusCompleted)
	completed.IsPaid = true
	completed.PaymentMode = enum.PaymentModeUPI
	cancelled := makeTestOrder(t, enum.OrderStatusCancelled)

	store := &mockReportStore{orders: []database.Order{completed, cancelled}}
	rr := doRequest(t, newReportRouter(store), http.MethodGet, "/admin/reports")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["total_orders"].(float64) != 2 {
		t.Errorf("expected total_orders 2, got %v", resp["total_orders"])
	}
	if resp["completed_orders"].(float64) != 1 {
		t.Errorf("expected completed_orders 1, got %v", resp["completed_orders"])
	}
	if resp["revenue"] != "500.00" {
		t.Errorf("expected revenue 500.00, got %v", resp["revenue"])
	}
	if resp["revenue_lost"] != "500.00" {
		t.Errorf("expected revenue_lost 500.00, got %v", resp["revenue_lost"])
	}
}

func TestGetReport_RangeToday(t *testing.T) {
	store := &mockReportStore{}
	rr := doRequest(t, newReportRouter(store), http.MethodGet, "/admin/reports?range=today")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	midnight := time.Now().Truncate(24 * time.Hour)
	if store.lastParams.StartDate.Hour() != 0 || store.lastParams.StartDate.Minute() != 0 {
		t.Errorf("expected start of day, got %v", store.lastParams.StartDate)
	}
	if store.lastParams.StartDate.Before(midnight.AddDate(0, 0, -1)) {
		t.Errorf("start %v too far in the past for range=today", store.lastParams.StartDate)
	}
}

func TestGetReport_InvalidRange(t *testing.T) {
	rr := doRequest(t, newReportRouter(&mockReportStore{}), http.MethodGet, "/admin/reports?range=year")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if resp := decodeResponse(t, rr); !strings.Contains(resp["error"].(string), "range") {
		t.Errorf("expected range error, got %v", resp["error"])
	}
}

func TestGetReport_ExplicitDates(t *testing.T) {
	store := &mockReportStore{}
	rr := doRequest(t, newReportRouter(store), http.MethodGet, "/admin/reports?start_date=2026-08-01&end_date=2026-08-15")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := store.lastParams.StartDate.Format(time.DateOnly); got != "2026-08-01" {
		t.Errorf("expected start 2026-08-01, got %s", got)
	}
	// end_date is inclusive, so the query upper bound is the next day.
	if got := store.lastParams.EndDate.Format(time.DateOnly); got != "2026-08-16" {
		t.Errorf("expected end 2026-08-16, got %s", got)
	}
}

func TestGetReport_BadDateFormat(t *testing.T) {
	rr := doRequest(t, newReportRouter(&mockReportStore{}), http.MethodGet, "/admin/reports?start_date=01-08-2026")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGetReport_EndBeforeStart(t *testing.T) {
	rr := doRequest(t, newReportRouter(&mockReportStore{}), http.MethodGet, "/admin/reports?start_date=2026-08-15&end_date=2026-08-01")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestExportReport_CSVHeaders(t *testing.T) {
	completed := makeTestOrder(t, enum.OrderStatusCompleted)
	completed.IsPaid = true
	completed.PaymentMode = enum.PaymentModeCash

	store := &mockReportStore{orders: []database.Order{completed}}
	rr := doRequest(t, newReportRouter(store), http.MethodGet, "/admin/reports/export")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected text/csv content type, got %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "sales-report-") {
		t.Errorf("expected sales-report filename, got %q", cd)
	}
	body := rr.Body.String()
	if !strings.HasPrefix(body, "\xef\xbb\xbf") {
		t.Error("expected UTF-8 BOM prefix")
	}
	if !strings.Contains(body, "SALES SUMMARY") {
		t.Error("expected summary section in CSV")
	}
}
