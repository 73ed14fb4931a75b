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
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Mock store ---

type mockInvoiceStore struct {
	invoices map[uuid.UUID]database.Invoice
	byOrder  map[uuid.UUID]database.Invoice
	settings database.CafeSettings
}

func newMockInvoiceStore() *mockInvoiceStore {
	return &mockInvoiceStore{
		invoices: make(map[uuid.UUID]database.Invoice),
		byOrder:  make(map[uuid.UUID]database.Invoice),
		settings: database.CafeSettings{
			ID:       1,
			CafeName: "Cafe Republic",
			Address:  pgtype.Text{String: "12 MG Road, Bengaluru", Valid: true},
			Gstin:    pgtype.Text{String: "29ABCDE1234F1Z5", Valid: true},
		},
	}
}

func (m *mockInvoiceStore) add(inv database.Invoice) {
	m.invoices[inv.ID] = inv
	m.byOrder[inv.OrderID] = inv
}

func (m *mockInvoiceStore) GetInvoice(_ context.Context, id uuid.UUID) (database.Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return database.Invoice{}, pgx.ErrNoRows
	}
	return inv, nil
}

func (m *mockInvoiceStore) GetInvoiceByOrder(_ context.Context, orderID uuid.UUID) (database.Invoice, error) {
	inv, ok := m.byOrder[orderID]
	if !ok {
		return database.Invoice{}, pgx.ErrNoRows
	}
	return inv, nil
}

func (m *mockInvoiceStore) ListInvoices(_ context.Context, _ database.ListInvoicesParams) ([]database.Invoice, error) {
	var items []database.Invoice
	for _, inv := range m.invoices {
		items = append(items, inv)
	}
	return items, nil
}

func (m *mockInvoiceStore) GetSettings(_ context.Context) (database.CafeSettings, error) {
	return m.settings, nil
}

// --- Helpers ---

func makeTestInvoice(t *testing.T) database.Invoice {
	t.Helper()
	return database.Invoice{
		ID:            uuid.New(),
		OrderID:       uuid.New(),
		InvoiceNumber: "INV-A1B2C3D4",
		TableNumber:   5,
		Subtotal:      makeNumeric(t, "500.00"),
		Cgst:          makeNumeric(t, "12.50"),
		Sgst:          makeNumeric(t, "12.50"),
		RoundOff:      makeNumeric(t, "0.00"),
		Total:         makeNumeric(t, "525.00"),
		PaymentMode:   enum.PaymentModeCash,
		Items:         []byte(`[{"menu_item_id":"` + uuid.New().String() + `","name":"Masala Chai","quantity":2,"price":"250.00","total":"500.00"}]`),
		CreatedAt:     time.Now(),
	}
}

func newInvoiceRouter(store *mockInvoiceStore) http.Handler {
	h := handler.NewInvoiceHandler(store)
	r := chi.NewRouter()
	r.Get("/admin/invoices", h.List)
	r.Get("/admin/invoices/{id}", h.Get)
	r.Get("/admin/invoices/{id}/print", h.Print)
	r.Get("/admin/orders/{id}/invoice", h.GetByOrder)
	return r
}

// --- Tests ---

func TestGetInvoice_ItemSnapshotDecoded(t *testing.T) {
	store := newMockInvoiceStore()
	inv := makeTestInvoice(t)
	store.add(inv)
	router := newInvoiceRouter(store)

	rr := doRequest(t, router, "GET", "/admin/invoices/"+inv.ID.String())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["invoice_number"] != "INV-A1B2C3D4" {
		t.Errorf("invoice_number: got %v, want INV-A1B2C3D4", resp["invoice_number"])
	}
	items, ok := resp["items"].([]interface{})
	if !ok || len(items) != 1 {
		t.Fatalf("expected 1 item in snapshot, got %v", resp["items"])
	}
	item := items[0].(map[string]interface{})
	if item["name"] != "Masala Chai" {
		t.Errorf("item name: got %v, want Masala Chai", item["name"])
	}
}

func TestGetInvoice_NotFound(t *testing.T) {
	router := newInvoiceRouter(newMockInvoiceStore())

	rr := doRequest(t, router, "GET", "/admin/invoices/"+uuid.New().String())

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestGetInvoiceByOrder(t *testing.T) {
	store := newMockInvoiceStore()
	inv := makeTestInvoice(t)
	store.add(inv)
	router := newInvoiceRouter(store)

	rr := doRequest(t, router, "GET", "/admin/orders/"+inv.OrderID.String()+"/invoice")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	if resp["order_id"] != inv.OrderID.String() {
		t.Errorf("order_id: got %v, want %v", resp["order_id"], inv.OrderID)
	}
}

func TestPrintInvoice_RendersHTML(t *testing.T) {
	store := newMockInvoiceStore()
	inv := makeTestInvoice(t)
	store.add(inv)
	router := newInvoiceRouter(store)

	rr := doRequest(t, router, "GET", "/admin/invoices/"+inv.ID.String()+"/print")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type: got %v, want text/html", ct)
	}

	body := rr.Body.String()
	for _, want := range []string{
		"Cafe Republic",
		"29ABCDE1234F1Z5",
		"INV-A1B2C3D4",
		"Masala Chai",
		"525.00",
		"CGST @2.5%",
		"Paid via CASH",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("printed invoice missing %q", want)
		}
	}
}
