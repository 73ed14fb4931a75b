package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const invoiceColumns = `id, order_id, invoice_number, table_number, subtotal,
	cgst, sgst, round_off, total, payment_mode, items, created_at`

func scanInvoice(row interface{ Scan(dest ...any) error }) (Invoice, error) {
	var v Invoice
	err := row.Scan(
		&v.ID,
		&v.OrderID,
		&v.InvoiceNumber,
		&v.TableNumber,
		&v.Subtotal,
		&v.Cgst,
		&v.Sgst,
		&v.RoundOff,
		&v.Total,
		&v.PaymentMode,
		&v.Items,
		&v.CreatedAt,
	)
	return v, err
}

const createInvoice = `
INSERT INTO invoices (order_id, invoice_number, table_number, subtotal,
	cgst, sgst, round_off, total, payment_mode, items)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (invoice_number) DO NOTHING
RETURNING ` + invoiceColumns

type CreateInvoiceParams struct {
	OrderID       uuid.UUID
	InvoiceNumber string
	TableNumber   int32
	Subtotal      pgtype.Numeric
	Cgst          pgtype.Numeric
	Sgst          pgtype.Numeric
	RoundOff      pgtype.Numeric
	Total         pgtype.Numeric
	PaymentMode   string
	Items         []byte
}

// CreateInvoice inserts the billing snapshot. Re-billing the same order hits
// the unique invoice_number and returns pgx.ErrNoRows; callers then fetch
// the stored invoice instead of writing a second one.
func (q *Queries) CreateInvoice(ctx context.Context, arg CreateInvoiceParams) (Invoice, error) {
	row := q.db.QueryRow(ctx, createInvoice,
		arg.OrderID,
		arg.InvoiceNumber,
		arg.TableNumber,
		arg.Subtotal,
		arg.Cgst,
		arg.Sgst,
		arg.RoundOff,
		arg.Total,
		arg.PaymentMode,
		arg.Items,
	)
	return scanInvoice(row)
}

const getInvoice = `
SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

func (q *Queries) GetInvoice(ctx context.Context, id uuid.UUID) (Invoice, error) {
	return scanInvoice(q.db.QueryRow(ctx, getInvoice, id))
}

const getInvoiceByOrder = `
SELECT ` + invoiceColumns + ` FROM invoices WHERE order_id = $1`

func (q *Queries) GetInvoiceByOrder(ctx context.Context, orderID uuid.UUID) (Invoice, error) {
	return scanInvoice(q.db.QueryRow(ctx, getInvoiceByOrder, orderID))
}

const listInvoices = `
SELECT ` + invoiceColumns + ` FROM invoices ORDER BY created_at DESC LIMIT $1 OFFSET $2`

type ListInvoicesParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListInvoices(ctx context.Context, arg ListInvoicesParams) ([]Invoice, error) {
	rows, err := q.db.Query(ctx, listInvoices, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Invoice
	for rows.Next() {
		v, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}
