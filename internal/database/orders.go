package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, table_number, status, total_price, is_paid, payment_mode, origin, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.TableNumber,
		&o.Status,
		&o.TotalPrice,
		&o.IsPaid,
		&o.PaymentMode,
		&o.Origin,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

const createOrder = `
INSERT INTO orders (table_number, status, total_price, is_paid, payment_mode, origin)
VALUES ($1, $2, $3, false, $4, $5)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	TableNumber int32
	Status      string
	TotalPrice  pgtype.Numeric
	PaymentMode string
	Origin      string
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.TableNumber,
		arg.Status,
		arg.TotalPrice,
		arg.PaymentMode,
		arg.Origin,
	)
	return scanOrder(row)
}

const getOrder = `
SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOrderForUpdate = `
SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR NO KEY UPDATE`

// GetOrderForUpdate locks the order row for the remainder of the
// transaction, serializing concurrent lifecycle operations.
func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, id))
}

const listOrders = `
SELECT ` + orderColumns + ` FROM orders
WHERE ($1::text IS NULL OR status = $1)
  AND ($2::timestamptz IS NULL OR created_at >= $2)
  AND ($3::timestamptz IS NULL OR created_at < $3)
ORDER BY created_at DESC
LIMIT $4 OFFSET $5`

type ListOrdersParams struct {
	Status    pgtype.Text
	StartDate pgtype.Timestamptz
	EndDate   pgtype.Timestamptz
	Limit     int32
	Offset    int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders,
		arg.Status,
		arg.StartDate,
		arg.EndDate,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const listOrdersBetween = `
SELECT ` + orderColumns + ` FROM orders
WHERE created_at >= $1 AND created_at < $2
ORDER BY created_at DESC`

type ListOrdersBetweenParams struct {
	StartDate time.Time
	EndDate   time.Time
}

func (q *Queries) ListOrdersBetween(ctx context.Context, arg ListOrdersBetweenParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersBetween, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const setOrderStatus = `
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3
RETURNING ` + orderColumns

type SetOrderStatusParams struct {
	ID             uuid.UUID
	Status         string
	ExpectedStatus string
}

// SetOrderStatus is an optimistic conditional transition: it returns
// pgx.ErrNoRows when the order is missing or its status changed underneath
// the caller.
func (q *Queries) SetOrderStatus(ctx context.Context, arg SetOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, setOrderStatus, arg.ID, arg.Status, arg.ExpectedStatus)
	return scanOrder(row)
}

const completeOrderPaid = `
UPDATE orders
SET status = $2, is_paid = true, payment_mode = $3, updated_at = now()
WHERE id = $1 AND status <> $4
RETURNING ` + orderColumns

type CompleteOrderPaidParams struct {
	ID          uuid.UUID
	Status      string
	PaymentMode string
	NotStatus   string
}

func (q *Queries) CompleteOrderPaid(ctx context.Context, arg CompleteOrderPaidParams) (Order, error) {
	row := q.db.QueryRow(ctx, completeOrderPaid, arg.ID, arg.Status, arg.PaymentMode, arg.NotStatus)
	return scanOrder(row)
}

const addToOrderTotal = `
UPDATE orders
SET total_price = total_price + $2, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type AddToOrderTotalParams struct {
	ID    uuid.UUID
	Delta pgtype.Numeric
}

func (q *Queries) AddToOrderTotal(ctx context.Context, arg AddToOrderTotalParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, addToOrderTotal, arg.ID, arg.Delta))
}

const setOrderTotal = `
UPDATE orders
SET total_price = $2, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type SetOrderTotalParams struct {
	ID         uuid.UUID
	TotalPrice pgtype.Numeric
}

func (q *Queries) SetOrderTotal(ctx context.Context, arg SetOrderTotalParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, setOrderTotal, arg.ID, arg.TotalPrice))
}

const deleteOrder = `
DELETE FROM orders WHERE id = $1`

func (q *Queries) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteOrder, id)
	return err
}

// --- order items ---

const orderItemColumns = `id, order_id, menu_item_id, quantity, price_at_order, created_at`

func scanOrderItem(row interface{ Scan(dest ...any) error }) (OrderItem, error) {
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.MenuItemID,
		&i.Quantity,
		&i.PriceAtOrder,
		&i.CreatedAt,
	)
	return i, err
}

const createOrderItem = `
INSERT INTO order_items (order_id, menu_item_id, quantity, price_at_order)
VALUES ($1, $2, $3, $4)
RETURNING ` + orderItemColumns

type CreateOrderItemParams struct {
	OrderID      uuid.UUID
	MenuItemID   uuid.UUID
	Quantity     int32
	PriceAtOrder pgtype.Numeric
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.MenuItemID,
		arg.Quantity,
		arg.PriceAtOrder,
	)
	return scanOrderItem(row)
}

const listOrderItemsByOrder = `
SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY created_at`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		i, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listOrderItemsDetailByOrder = `
SELECT oi.id, oi.order_id, oi.menu_item_id, oi.quantity, oi.price_at_order, oi.created_at,
       m.name, m.category
FROM order_items oi
JOIN menu_items m ON m.id = oi.menu_item_id
WHERE oi.order_id = $1
ORDER BY oi.created_at`

type OrderItemDetailRow struct {
	OrderItem
	Name     string
	Category string
}

func (q *Queries) ListOrderItemsDetailByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItemDetailRow, error) {
	rows, err := q.db.Query(ctx, listOrderItemsDetailByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItemDetailRow
	for rows.Next() {
		var r OrderItemDetailRow
		if err := rows.Scan(
			&r.ID, &r.OrderID, &r.MenuItemID, &r.Quantity, &r.PriceAtOrder, &r.CreatedAt,
			&r.Name, &r.Category,
		); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const listOrderItemsDetailBetween = `
SELECT oi.id, oi.order_id, oi.menu_item_id, oi.quantity, oi.price_at_order, oi.created_at,
       m.name, m.category
FROM order_items oi
JOIN menu_items m ON m.id = oi.menu_item_id
JOIN orders o ON o.id = oi.order_id
WHERE o.created_at >= $1 AND o.created_at < $2`

type ListOrderItemsDetailBetweenParams struct {
	StartDate time.Time
	EndDate   time.Time
}

func (q *Queries) ListOrderItemsDetailBetween(ctx context.Context, arg ListOrderItemsDetailBetweenParams) ([]OrderItemDetailRow, error) {
	rows, err := q.db.Query(ctx, listOrderItemsDetailBetween, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItemDetailRow
	for rows.Next() {
		var r OrderItemDetailRow
		if err := rows.Scan(
			&r.ID, &r.OrderID, &r.MenuItemID, &r.Quantity, &r.PriceAtOrder, &r.CreatedAt,
			&r.Name, &r.Category,
		); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const deleteOrderItemsByOrder = `
DELETE FROM order_items WHERE order_id = $1`

func (q *Queries) DeleteOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteOrderItemsByOrder, orderID)
	return err
}
