package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cafe-republic/api/internal/database"
	"github.com/cafe-republic/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrEmptyItems          = errors.New("items are required")
	ErrInvalidQuantity     = errors.New("quantity must be > 0")
	ErrInvalidMenuItemID   = errors.New("invalid menu_item_id")
	ErrMenuItemNotFound    = errors.New("menu item not found")
	ErrMenuItemUnavailable = errors.New("menu item is not available")
	ErrInvalidOrigin       = errors.New("invalid origin")
	ErrTableNotFound       = errors.New("table not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderTerminal       = errors.New("order is already completed or cancelled")
	ErrStatusConflict      = errors.New("order status changed, please retry")
	ErrCancelUnpaid        = errors.New("order must be paid before cancellation")
	ErrInvalidPaymentMode  = errors.New("invalid payment_mode")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order lifecycle.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetTableForUpdate(ctx context.Context, id int32) (database.CafeTable, error)
	OccupyTable(ctx context.Context, arg database.OccupyTableParams) (database.CafeTable, error)
	FreeTableByOrder(ctx context.Context, arg database.FreeTableByOrderParams) error
	GetMenuItemForOrder(ctx context.Context, id uuid.UUID) (database.GetMenuItemForOrderRow, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	SetOrderStatus(ctx context.Context, arg database.SetOrderStatusParams) (database.Order, error)
	CompleteOrderPaid(ctx context.Context, arg database.CompleteOrderPaidParams) (database.Order, error)
	AddToOrderTotal(ctx context.Context, arg database.AddToOrderTotalParams) (database.Order, error)
	SetOrderTotal(ctx context.Context, arg database.SetOrderTotalParams) (database.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	ListOrderItemsDetailByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItemDetailRow, error)
	DeleteOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) error
	CreateInvoice(ctx context.Context, arg database.CreateInvoiceParams) (database.Invoice, error)
	GetInvoiceByOrder(ctx context.Context, orderID uuid.UUID) (database.Invoice, error)
	CreateNotification(ctx context.Context, arg database.CreateNotificationParams) (database.AdminNotification, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	TableNumber int32
	Origin      string
	Items       []CreateOrderLineRequest
}

// CreateOrderLineRequest is a single cart line.
type CreateOrderLineRequest struct {
	MenuItemID string
	Quantity   int32
}

// CreateOrderResult reports what the engine did: Appended is true when the
// cart was merged into the table's open order instead of creating a new one.
type CreateOrderResult struct {
	Order    database.Order
	Items    []database.OrderItem
	Appended bool
}

// CompleteResult is the settled order with its generated invoice.
type CompleteResult struct {
	Order   database.Order
	Invoice database.Invoice
}

// OrderService is the order/table/invoice lifecycle engine.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// resolvedLine is a cart line with its server-side price resolved.
type resolvedLine struct {
	menuItemID uuid.UUID
	quantity   int32
	unitPrice  decimal.Decimal
}

// CreateOrder validates the cart against the live table list and either
// opens a new order (binding the table) or appends to the table's open
// order. A customer ordering twice at the same table before settlement must
// not fragment into two orders.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if req.Origin != enum.OrderOriginStaff && req.Origin != enum.OrderOriginOnline {
		return nil, ErrInvalidOrigin
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// Table validation happens before any write; an unknown table number
	// must never produce an orphaned order.
	table, err := store.GetTableForUpdate(ctx, req.TableNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("get table: %w", err)
	}

	lines, cartTotal, err := s.resolveLines(ctx, store, req.Items)
	if err != nil {
		return nil, err
	}

	// Append path: the table already has a live order bound to it.
	if table.Status == enum.TableStatusOccupied && table.CurrentOrderID.Valid {
		existing, err := store.GetOrderForUpdate(ctx, uuid.UUID(table.CurrentOrderID.Bytes))
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get bound order: %w", err)
		}
		if err == nil && !enum.IsTerminalOrderStatus(existing.Status) {
			items, err := s.insertLines(ctx, store, existing.ID, lines)
			if err != nil {
				return nil, err
			}
			updated, err := store.AddToOrderTotal(ctx, database.AddToOrderTotalParams{
				ID:    existing.ID,
				Delta: decimalToNumeric(cartTotal),
			})
			if err != nil {
				return nil, fmt.Errorf("add to order total: %w", err)
			}
			if err := s.notifyOnline(ctx, store, updated, req.Origin, true); err != nil {
				return nil, err
			}
			if err := tx.Commit(ctx); err != nil {
				return nil, fmt.Errorf("commit tx: %w", err)
			}
			return &CreateOrderResult{Order: updated, Items: items, Appended: true}, nil
		}
		// Stale binding (terminal or missing order): fall through and rebind.
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		TableNumber: req.TableNumber,
		Status:      enum.OrderStatusNew,
		TotalPrice:  decimalToNumeric(cartTotal),
		PaymentMode: enum.PaymentModePending,
		Origin:      req.Origin,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items, err := s.insertLines(ctx, store, order.ID, lines)
	if err != nil {
		return nil, err
	}

	if _, err := store.OccupyTable(ctx, database.OccupyTableParams{
		ID:      req.TableNumber,
		Status:  enum.TableStatusOccupied,
		OrderID: order.ID,
	}); err != nil {
		return nil, fmt.Errorf("occupy table: %w", err)
	}

	if err := s.notifyOnline(ctx, store, order, req.Origin, false); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &CreateOrderResult{Order: order, Items: items}, nil
}

// AdvanceStatus moves the order one step along
// NEW → PREPARING → READY → SERVED → COMPLETED. The write is conditional on
// the status the caller observed, so two terminals racing on the same order
// surface ErrStatusConflict instead of silently double-advancing.
func (s *OrderService) AdvanceStatus(ctx context.Context, orderID uuid.UUID) (database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if enum.IsTerminalOrderStatus(current.Status) {
		return database.Order{}, ErrOrderTerminal
	}

	next := enum.NextOrderStatus(current.Status)
	updated, err := store.SetOrderStatus(ctx, database.SetOrderStatusParams{
		ID:             orderID,
		Status:         next,
		ExpectedStatus: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrStatusConflict
		}
		return database.Order{}, fmt.Errorf("set order status: %w", err)
	}

	// Landing on a terminal state frees the table in the same transaction,
	// keeping occupancy consistent with the bound order.
	if enum.IsTerminalOrderStatus(next) {
		if err := store.FreeTableByOrder(ctx, database.FreeTableByOrderParams{
			OrderID: orderID,
			Status:  enum.TableStatusAvailable,
		}); err != nil {
			return database.Order{}, fmt.Errorf("free table: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}

// MarkCompleted is the manual override: any non-terminal order straight to
// COMPLETED, bypassing intermediate states. It captures no payment and
// generates no invoice; billing goes through CompleteAndFreeTable.
func (s *OrderService) MarkCompleted(ctx context.Context, orderID uuid.UUID) (database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if enum.IsTerminalOrderStatus(current.Status) {
		return database.Order{}, ErrOrderTerminal
	}

	updated, err := store.SetOrderStatus(ctx, database.SetOrderStatusParams{
		ID:             orderID,
		Status:         enum.OrderStatusCompleted,
		ExpectedStatus: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrStatusConflict
		}
		return database.Order{}, fmt.Errorf("set order status: %w", err)
	}

	if err := store.FreeTableByOrder(ctx, database.FreeTableByOrderParams{
		OrderID: orderID,
		Status:  enum.TableStatusAvailable,
	}); err != nil {
		return database.Order{}, fmt.Errorf("free table: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}

// CancelOrder refuses to cancel prepared-but-unpaid orders: food already on
// the grill is revenue the café must not lose. Only NEW or already-paid
// orders can be cancelled.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID) (database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if enum.IsTerminalOrderStatus(current.Status) {
		return database.Order{}, ErrOrderTerminal
	}
	if current.Status != enum.OrderStatusNew && !current.IsPaid {
		return database.Order{}, ErrCancelUnpaid
	}

	updated, err := store.SetOrderStatus(ctx, database.SetOrderStatusParams{
		ID:             orderID,
		Status:         enum.OrderStatusCancelled,
		ExpectedStatus: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrStatusConflict
		}
		return database.Order{}, fmt.Errorf("set order status: %w", err)
	}

	if err := store.FreeTableByOrder(ctx, database.FreeTableByOrderParams{
		OrderID: orderID,
		Status:  enum.TableStatusAvailable,
	}); err != nil {
		return database.Order{}, fmt.Errorf("free table: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}

// CompleteAndFreeTable settles an order: status COMPLETED, paid, payment
// mode recorded, table freed, and the invoice generated — one transaction.
// This is the only path that produces an invoice. Re-billing an already
// completed order returns the stored invoice rather than a second one.
func (s *OrderService) CompleteAndFreeTable(ctx context.Context, orderID uuid.UUID, paymentMode string) (*CompleteResult, error) {
	if !enum.IsSettlementPaymentMode(paymentMode) {
		return nil, ErrInvalidPaymentMode
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if current.Status == enum.OrderStatusCancelled {
		return nil, ErrOrderTerminal
	}

	items, err := store.ListOrderItemsDetailByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	// A settled order keeps its captured payment mode; rebilling only
	// returns the stored invoice. Completed-but-unpaid orders (the manual
	// shortcut) still get their payment captured here.
	updated := current
	if !(current.Status == enum.OrderStatusCompleted && current.IsPaid) {
		updated, err = store.CompleteOrderPaid(ctx, database.CompleteOrderPaidParams{
			ID:          orderID,
			Status:      enum.OrderStatusCompleted,
			PaymentMode: paymentMode,
			NotStatus:   enum.OrderStatusCancelled,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrStatusConflict
			}
			return nil, fmt.Errorf("complete order: %w", err)
		}

		if err := store.FreeTableByOrder(ctx, database.FreeTableByOrderParams{
			OrderID: orderID,
			Status:  enum.TableStatusAvailable,
		}); err != nil {
			return nil, fmt.Errorf("free table: %w", err)
		}
	}

	params, err := BuildInvoice(updated, paymentMode, items)
	if err != nil {
		return nil, err
	}
	invoice, err := store.CreateInvoice(ctx, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Duplicate invoice number: already billed, fetch the original.
			invoice, err = store.GetInvoiceByOrder(ctx, orderID)
			if err != nil {
				return nil, fmt.Errorf("get existing invoice: %w", err)
			}
		} else {
			return nil, fmt.Errorf("create invoice: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &CompleteResult{Order: updated, Invoice: invoice}, nil
}

// EditOrder replaces the whole line-item set and recomputes the total.
// Status is untouched; terminal orders cannot be edited.
func (s *OrderService) EditOrder(ctx context.Context, orderID uuid.UUID, items []CreateOrderLineRequest) (*CreateOrderResult, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if enum.IsTerminalOrderStatus(current.Status) {
		return nil, ErrOrderTerminal
	}

	lines, total, err := s.resolveLines(ctx, store, items)
	if err != nil {
		return nil, err
	}

	if err := store.DeleteOrderItemsByOrder(ctx, orderID); err != nil {
		return nil, fmt.Errorf("delete order items: %w", err)
	}
	inserted, err := s.insertLines(ctx, store, orderID, lines)
	if err != nil {
		return nil, err
	}
	updated, err := store.SetOrderTotal(ctx, database.SetOrderTotalParams{
		ID:         orderID,
		TotalPrice: decimalToNumeric(total),
	})
	if err != nil {
		return nil, fmt.Errorf("set order total: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &CreateOrderResult{Order: updated, Items: inserted}, nil
}

// DeleteOrder hard-deletes the order and its line items. Destructive and
// non-recoverable; the handler gates it behind the super-admin role.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := store.GetOrderForUpdate(ctx, orderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("get order: %w", err)
	}

	// Expected only on terminal orders, but clear any lingering binding so
	// the occupancy invariant survives a privileged delete of a live order.
	if err := store.FreeTableByOrder(ctx, database.FreeTableByOrderParams{
		OrderID: orderID,
		Status:  enum.TableStatusAvailable,
	}); err != nil {
		return fmt.Errorf("free table: %w", err)
	}
	if err := store.DeleteOrderItemsByOrder(ctx, orderID); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if err := store.DeleteOrder(ctx, orderID); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	return tx.Commit(ctx)
}

// --- helpers ---

// resolveLines validates the cart and resolves unit prices from the live
// menu. price_at_order freezes these for history; later menu edits must not
// drift old totals.
func (s *OrderService) resolveLines(ctx context.Context, store OrderStore, items []CreateOrderLineRequest) ([]resolvedLine, decimal.Decimal, error) {
	lines := make([]resolvedLine, 0, len(items))
	total := decimal.Zero
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, decimal.Zero, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
		id, err := uuid.Parse(item.MenuItemID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("items[%d]: %w", i, ErrInvalidMenuItemID)
		}
		mi, err := store.GetMenuItemForOrder(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, decimal.Zero, fmt.Errorf("items[%d]: %w", i, ErrMenuItemNotFound)
			}
			return nil, decimal.Zero, fmt.Errorf("items[%d]: get menu item: %w", i, err)
		}
		if !mi.IsAvailable {
			return nil, decimal.Zero, fmt.Errorf("items[%d]: %w", i, ErrMenuItemUnavailable)
		}
		price := numericToDecimal(mi.Price)
		total = total.Add(price.Mul(decimal.NewFromInt32(item.Quantity)))
		lines = append(lines, resolvedLine{menuItemID: id, quantity: item.Quantity, unitPrice: price})
	}
	return lines, total, nil
}

func (s *OrderService) insertLines(ctx context.Context, store OrderStore, orderID uuid.UUID, lines []resolvedLine) ([]database.OrderItem, error) {
	items := make([]database.OrderItem, 0, len(lines))
	for _, line := range lines {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:      orderID,
			MenuItemID:   line.menuItemID,
			Quantity:     line.quantity,
			PriceAtOrder: decimalToNumeric(line.unitPrice),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// notifyOnline records a dashboard notification for self-service orders;
// staff-entered orders stay quiet.
func (s *OrderService) notifyOnline(ctx context.Context, store OrderStore, order database.Order, origin string, appended bool) error {
	if origin != enum.OrderOriginOnline {
		return nil
	}
	msg := fmt.Sprintf("New online order for table %d", order.TableNumber)
	if appended {
		msg = fmt.Sprintf("Items added to table %d order", order.TableNumber)
	}
	if _, err := store.CreateNotification(ctx, database.CreateNotificationParams{
		OrderID:     pgtype.UUID{Bytes: order.ID, Valid: true},
		TableNumber: order.TableNumber,
		Message:     msg,
	}); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
