package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/cafe-republic/api/internal/database"
	"github.com/cafe-republic/api/internal/enum"
	"github.com/cafe-republic/api/internal/service"
	"github.com/cafe-republic/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
	AdvanceStatus(ctx context.Context, orderID uuid.UUID) (database.Order, error)
	MarkCompleted(ctx context.Context, orderID uuid.UUID) (database.Order, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID) (database.Order, error)
	CompleteAndFreeTable(ctx context.Context, orderID uuid.UUID, paymentMode string) (*service.CompleteResult, error)
	EditOrder(ctx context.Context, orderID uuid.UUID, items []service.CreateOrderLineRequest) (*service.CreateOrderResult, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}

// OrderStore defines the database methods needed by order read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderItemsDetailByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItemDetailRow, error)
}

// Broadcaster pushes order events to connected dashboards.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	Broadcast(event ws.Event)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	hub   Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, hub: hub}
}

// --- Request / Response types ---

type createOrderRequest struct {
	TableNumber int32              `json:"table_number"`
	Items       []orderLineRequest `json:"items"`
}

type orderLineRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int32  `json:"quantity"`
}

type editOrderRequest struct {
	Items []orderLineRequest `json:"items"`
}

type billOrderRequest struct {
	PaymentMode string `json:"payment_mode"`
}

type orderResponse struct {
	ID          uuid.UUID           `json:"id"`
	TableNumber int32               `json:"table_number"`
	Status      string              `json:"status"`
	TotalPrice  string              `json:"total_price"`
	IsPaid      bool                `json:"is_paid"`
	PaymentMode string              `json:"payment_mode"`
	Origin      string              `json:"origin"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Items       []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID           uuid.UUID `json:"id"`
	MenuItemID   uuid.UUID `json:"menu_item_id"`
	Name         string    `json:"name,omitempty"`
	Category     string    `json:"category,omitempty"`
	Quantity     int32     `json:"quantity"`
	PriceAtOrder string    `json:"price_at_order"`
}

type createOrderResponse struct {
	orderResponse
	Appended bool `json:"appended"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// --- Handlers ---

// CreatePublic handles POST /orders, the customer self-ordering path.
// Origin is fixed server-side; a client cannot tag its own order as
// staff-entered (or the reverse), and the ONLINE tag is what raises the
// admin notification.
func (h *OrderHandler) CreatePublic(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, enum.OrderOriginOnline)
}

// CreateStaff handles POST /admin/orders, the counter-entry path.
func (h *OrderHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, enum.OrderOriginStaff)
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request, origin string) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.TableNumber <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table_number is required"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}
	for i, item := range req.Items {
		if item.MenuItemID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": formatItemError(i, "menu_item_id is required")})
			return
		}
		if item.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": formatItemError(i, "quantity must be > 0")})
			return
		}
	}

	lines := make([]service.CreateOrderLineRequest, len(req.Items))
	for i, item := range req.Items {
		lines[i] = service.CreateOrderLineRequest{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		TableNumber: req.TableNumber,
		Origin:      origin,
		Items:       lines,
	})
	if err != nil {
		h.writeOrderError(w, "create order", err)
		return
	}

	h.broadcastOrder(ws.EventOrderCreated, result.Order)

	resp := createOrderResponse{
		orderResponse: dbOrderToResponse(result.Order),
		Appended:      result.Appended,
	}
	resp.Items = make([]orderItemResponse, len(result.Items))
	for i, item := range result.Items {
		resp.Items[i] = dbOrderItemToResponse(item)
	}

	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /admin/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
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

	params := database.ListOrdersParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	}

	if s := r.URL.Query().Get("status"); s != "" {
		params.Status = pgtype.Text{String: s, Valid: true}
	}
	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date format, use YYYY-MM-DD"})
			return
		}
		params.StartDate = pgtype.Timestamptz{Time: t, Valid: true}
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end_date format, use YYYY-MM-DD"})
			return
		}
		params.EndDate = pgtype.Timestamptz{Time: t.AddDate(0, 0, 1), Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o)
	}

	writeJSON(w, http.StatusOK, orderListResponse{
		Orders: resp,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /admin/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsDetailByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dbOrderToResponse(order)
	resp.Items = make([]orderItemResponse, len(items))
	for i, item := range items {
		resp.Items[i] = orderItemResponse{
			ID:           item.ID,
			MenuItemID:   item.MenuItemID,
			Name:         item.Name,
			Category:     item.Category,
			Quantity:     item.Quantity,
			PriceAtOrder: numericToString(item.PriceAtOrder),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Advance handles POST /admin/orders/{id}/advance.
func (h *OrderHandler) Advance(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	updated, err := h.svc.AdvanceStatus(r.Context(), orderID)
	if err != nil {
		h.writeOrderError(w, "advance order status", err)
		return
	}

	h.broadcastOrder(ws.EventOrderUpdated, updated)
	writeJSON(w, http.StatusOK, dbOrderToResponse(updated))
}

// MarkCompleted handles POST /admin/orders/{id}/complete -- the manual
// shortcut that closes an order without capturing payment or billing.
func (h *OrderHandler) MarkCompleted(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	updated, err := h.svc.MarkCompleted(r.Context(), orderID)
	if err != nil {
		h.writeOrderError(w, "mark order completed", err)
		return
	}

	h.broadcastOrder(ws.EventOrderUpdated, updated)
	writeJSON(w, http.StatusOK, dbOrderToResponse(updated))
}

// Bill handles POST /admin/orders/{id}/bill -- settle with payment and
// generate the invoice.
func (h *OrderHandler) Bill(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req billOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.PaymentMode == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payment_mode is required"})
		return
	}

	result, err := h.svc.CompleteAndFreeTable(r.Context(), orderID, req.PaymentMode)
	if err != nil {
		h.writeOrderError(w, "bill order", err)
		return
	}

	h.broadcastOrder(ws.EventOrderUpdated, result.Order)
	writeJSON(w, http.StatusOK, struct {
		Order   orderResponse   `json:"order"`
		Invoice invoiceResponse `json:"invoice"`
	}{
		Order:   dbOrderToResponse(result.Order),
		Invoice: dbInvoiceToResponse(result.Invoice),
	})
}

// EditItems handles PUT /admin/orders/{id}/items -- wholesale replacement
// of the line-item set.
func (h *OrderHandler) EditItems(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req editOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}

	lines := make([]service.CreateOrderLineRequest, len(req.Items))
	for i, item := range req.Items {
		lines[i] = service.CreateOrderLineRequest{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
		}
	}

	result, err := h.svc.EditOrder(r.Context(), orderID, lines)
	if err != nil {
		h.writeOrderError(w, "edit order", err)
		return
	}

	h.broadcastOrder(ws.EventOrderUpdated, result.Order)

	resp := dbOrderToResponse(result.Order)
	resp.Items = make([]orderItemResponse, len(result.Items))
	for i, item := range result.Items {
		resp.Items[i] = dbOrderItemToResponse(item)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Cancel handles POST /admin/orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	updated, err := h.svc.CancelOrder(r.Context(), orderID)
	if err != nil {
		h.writeOrderError(w, "cancel order", err)
		return
	}

	h.broadcastOrder(ws.EventOrderUpdated, updated)
	writeJSON(w, http.StatusOK, dbOrderToResponse(updated))
}

// Delete handles DELETE /admin/orders/{id}. Super admin only; the role
// check lives in the router.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteOrder(r.Context(), orderID); err != nil {
		h.writeOrderError(w, "delete order", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Helpers ---

func parseOrderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return uuid.Nil, false
	}
	return orderID, true
}

func formatItemError(idx int, msg string) string {
	return "items[" + strconv.Itoa(idx) + "]: " + msg
}

// writeOrderError maps service errors to HTTP status codes.
func (h *OrderHandler) writeOrderError(w http.ResponseWriter, op string, err error) {
	switch {
	case isOrderValidationError(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrOrderNotFound) || errors.Is(err, service.ErrTableNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrOrderTerminal),
		errors.Is(err, service.ErrStatusConflict),
		errors.Is(err, service.ErrCancelUnpaid):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func isOrderValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidMenuItemID) ||
		errors.Is(err, service.ErrMenuItemNotFound) ||
		errors.Is(err, service.ErrMenuItemUnavailable) ||
		errors.Is(err, service.ErrInvalidOrigin) ||
		errors.Is(err, service.ErrInvalidPaymentMode)
}

func (h *OrderHandler) broadcastOrder(eventType string, order database.Order) {
	payload, err := json.Marshal(dbOrderToResponse(order))
	if err != nil {
		log.Printf("ERROR: marshal order event: %v", err)
		return
	}
	h.hub.Broadcast(ws.Event{Type: eventType, Payload: payload})
}

func dbOrderToResponse(o database.Order) orderResponse {
	return orderResponse{
		ID:          o.ID,
		TableNumber: o.TableNumber,
		Status:      o.Status,
		TotalPrice:  numericToString(o.TotalPrice),
		IsPaid:      o.IsPaid,
		PaymentMode: o.PaymentMode,
		Origin:      o.Origin,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func dbOrderItemToResponse(item database.OrderItem) orderItemResponse {
	return orderItemResponse{
		ID:           item.ID,
		MenuItemID:   item.MenuItemID,
		Quantity:     item.Quantity,
		PriceAtOrder: numericToString(item.PriceAtOrder),
	}
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}
