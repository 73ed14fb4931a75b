package handler

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/cafe-republic/api/internal/database"
	"github.com/cafe-republic/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InvoiceStore defines the database methods needed by invoice handlers.
type InvoiceStore interface {
	GetInvoice(ctx context.Context, id uuid.UUID) (database.Invoice, error)
	GetInvoiceByOrder(ctx context.Context, orderID uuid.UUID) (database.Invoice, error)
	ListInvoices(ctx context.Context, arg database.ListInvoicesParams) ([]database.Invoice, error)
	GetSettings(ctx context.Context) (database.CafeSettings, error)
}

// InvoiceHandler handles invoice endpoints.
type InvoiceHandler struct {
	store InvoiceStore
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(store InvoiceStore) *InvoiceHandler {
	return &InvoiceHandler{store: store}
}

type invoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	OrderID       uuid.UUID             `json:"order_id"`
	InvoiceNumber string                `json:"invoice_number"`
	TableNumber   int32                 `json:"table_number"`
	Subtotal      string                `json:"subtotal"`
	Cgst          string                `json:"cgst"`
	Sgst          string                `json:"sgst"`
	RoundOff      string                `json:"round_off"`
	Total         string                `json:"total"`
	PaymentMode   string                `json:"payment_mode"`
	Items         []service.InvoiceLine `json:"items"`
	CreatedAt     time.Time             `json:"created_at"`
}

type invoiceListResponse struct {
	Invoices []invoiceResponse `json:"invoices"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// List handles GET /admin/invoices.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 200 {
		limit = 200
	}
	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	invoices, err := h.store.ListInvoices(r.Context(), database.ListInvoicesParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		log.Printf("ERROR: list invoices: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]invoiceResponse, len(invoices))
	for i, inv := range invoices {
		resp[i] = dbInvoiceToResponse(inv)
	}
	writeJSON(w, http.StatusOK, invoiceListResponse{Invoices: resp, Limit: limit, Offset: offset})
}

// Get handles GET /admin/invoices/{id}.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.fetchInvoice(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dbInvoiceToResponse(inv))
}

// GetByOrder handles GET /admin/orders/{id}/invoice.
func (h *InvoiceHandler) GetByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	inv, err := h.store.GetInvoiceByOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "invoice not found"})
			return
		}
		log.Printf("ERROR: get invoice by order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, dbInvoiceToResponse(inv))
}

// Print handles GET /admin/invoices/{id}/print -- a self-contained HTML
// page the operator prints from the browser.
func (h *InvoiceHandler) Print(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.fetchInvoice(w, r)
	if !ok {
		return
	}

	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		log.Printf("ERROR: get settings for invoice print: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	var lines []service.InvoiceLine
	if err := json.Unmarshal(inv.Items, &lines); err != nil {
		log.Printf("ERROR: unmarshal invoice items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	data := invoicePrintData{
		CafeName:      settings.CafeName,
		Address:       settings.Address.String,
		Phone:         settings.Phone.String,
		Gstin:         settings.Gstin.String,
		InvoiceNumber: inv.InvoiceNumber,
		TableNumber:   inv.TableNumber,
		Date:          inv.CreatedAt.Format("02 Jan 2006 15:04"),
		Subtotal:      numericToString(inv.Subtotal),
		Cgst:          numericToString(inv.Cgst),
		Sgst:          numericToString(inv.Sgst),
		RoundOff:      numericToString(inv.RoundOff),
		Total:         numericToString(inv.Total),
		PaymentMode:   inv.PaymentMode,
		Lines:         lines,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := invoiceTemplate.Execute(w, data); err != nil {
		log.Printf("ERROR: render invoice: %v", err)
	}
}

func (h *InvoiceHandler) fetchInvoice(w http.ResponseWriter, r *http.Request) (database.Invoice, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid invoice ID"})
		return database.Invoice{}, false
	}

	inv, err := h.store.GetInvoice(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "invoice not found"})
			return database.Invoice{}, false
		}
		log.Printf("ERROR: get invoice: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return database.Invoice{}, false
	}
	return inv, true
}

func dbInvoiceToResponse(inv database.Invoice) invoiceResponse {
	resp := invoiceResponse{
		ID:            inv.ID,
		OrderID:       inv.OrderID,
		InvoiceNumber: inv.InvoiceNumber,
		TableNumber:   inv.TableNumber,
		Subtotal:      numericToString(inv.Subtotal),
		Cgst:          numericToString(inv.Cgst),
		Sgst:          numericToString(inv.Sgst),
		RoundOff:      numericToString(inv.RoundOff),
		Total:         numericToString(inv.Total),
		PaymentMode:   inv.PaymentMode,
		CreatedAt:     inv.CreatedAt,
	}
	if err := json.Unmarshal(inv.Items, &resp.Items); err != nil {
		log.Printf("ERROR: unmarshal invoice items: %v", err)
		resp.Items = nil
	}
	return resp
}

type invoicePrintData struct {
	CafeName      string
	Address       string
	Phone         string
	Gstin         string
	InvoiceNumber string
	TableNumber   int32
	Date          string
	Subtotal      string
	Cgst          string
	Sgst          string
	RoundOff      string
	Total         string
	PaymentMode   string
	Lines         []service.InvoiceLine
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.InvoiceNumber}}</title>
<style>
body { font-family: monospace; max-width: 360px; margin: 0 auto; }
table { width: 100%; border-collapse: collapse; }
td, th { padding: 2px 4px; text-align: left; }
.num { text-align: right; }
.rule { border-top: 1px dashed #000; }
.center { text-align: center; }
@media print { .no-print { display: none; } }
</style>
</head>
<body onload="window.print()">
<div class="center">
<h2>{{.CafeName}}</h2>
{{if .Address}}<div>{{.Address}}</div>{{end}}
{{if .Phone}}<div>Ph: {{.Phone}}</div>{{end}}
{{if .Gstin}}<div>GSTIN: {{.Gstin}}</div>{{end}}
</div>
<p>Invoice: {{.InvoiceNumber}}<br>
Table: {{.TableNumber}}<br>
Date: {{.Date}}</p>
<table>
<tr class="rule"><th>Item</th><th class="num">Qty</th><th class="num">Rate</th><th class="num">Amount</th></tr>
{{range .Lines}}
<tr><td>{{.Name}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.Price}}</td><td class="num">{{.Total}}</td></tr>
{{end}}
<tr class="rule"><td colspan="3">Subtotal</td><td class="num">{{.Subtotal}}</td></tr>
<tr><td colspan="3">CGST @2.5%</td><td class="num">{{.Cgst}}</td></tr>
<tr><td colspan="3">SGST @2.5%</td><td class="num">{{.Sgst}}</td></tr>
<tr><td colspan="3">Round Off</td><td class="num">{{.RoundOff}}</td></tr>
<tr class="rule"><td colspan="3"><b>Total</b></td><td class="num"><b>{{.Total}}</b></td></tr>
</table>
<p class="center">Paid via {{.PaymentMode}}<br>Thank you, visit again!</p>
</body>
</html>`))
