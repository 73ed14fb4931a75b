package database

import (
	"context"

	"github.com/google/uuid"
)

const tableColumns = `id, status, current_order_id`

func scanTable(row interface{ Scan(dest ...any) error }) (CafeTable, error) {
	var t CafeTable
	err := row.Scan(&t.ID, &t.Status, &t.CurrentOrderID)
	return t, err
}

const getTable = `
SELECT ` + tableColumns + ` FROM cafe_tables WHERE id = $1`

func (q *Queries) GetTable(ctx context.Context, id int32) (CafeTable, error) {
	return scanTable(q.db.QueryRow(ctx, getTable, id))
}

const getTableForUpdate = `
SELECT ` + tableColumns + ` FROM cafe_tables WHERE id = $1 FOR NO KEY UPDATE`

// GetTableForUpdate locks the table row; the table is the shared resource
// every staff terminal and the public ordering page contend on.
func (q *Queries) GetTableForUpdate(ctx context.Context, id int32) (CafeTable, error) {
	return scanTable(q.db.QueryRow(ctx, getTableForUpdate, id))
}

const listTables = `
SELECT ` + tableColumns + ` FROM cafe_tables ORDER BY id`

func (q *Queries) ListTables(ctx context.Context) ([]CafeTable, error) {
	rows, err := q.db.Query(ctx, listTables)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CafeTable
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const occupyTable = `
UPDATE cafe_tables
SET status = $2, current_order_id = $3
WHERE id = $1
RETURNING ` + tableColumns

type OccupyTableParams struct {
	ID      int32
	Status  string
	OrderID uuid.UUID
}

func (q *Queries) OccupyTable(ctx context.Context, arg OccupyTableParams) (CafeTable, error) {
	return scanTable(q.db.QueryRow(ctx, occupyTable, arg.ID, arg.Status, arg.OrderID))
}

const freeTableByOrder = `
UPDATE cafe_tables
SET status = $2, current_order_id = NULL
WHERE current_order_id = $1`

type FreeTableByOrderParams struct {
	OrderID uuid.UUID
	Status  string
}

// FreeTableByOrder clears the binding wherever it points; a no-op when no
// table references the order.
func (q *Queries) FreeTableByOrder(ctx context.Context, arg FreeTableByOrderParams) error {
	_, err := q.db.Exec(ctx, freeTableByOrder, arg.OrderID, arg.Status)
	return err
}

const maxTableID = `
SELECT COALESCE(MAX(id), 0) FROM cafe_tables`

func (q *Queries) MaxTableID(ctx context.Context) (int32, error) {
	var max int32
	err := q.db.QueryRow(ctx, maxTableID).Scan(&max)
	return max, err
}

const countOccupiedAbove = `
SELECT COUNT(*) FROM cafe_tables WHERE id > $1 AND status = $2`

type CountOccupiedAboveParams struct {
	ID     int32
	Status string
}

func (q *Queries) CountOccupiedAbove(ctx context.Context, arg CountOccupiedAboveParams) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countOccupiedAbove, arg.ID, arg.Status).Scan(&n)
	return n, err
}

const insertTable = `
INSERT INTO cafe_tables (id, status) VALUES ($1, $2)`

type InsertTableParams struct {
	ID     int32
	Status string
}

func (q *Queries) InsertTable(ctx context.Context, arg InsertTableParams) error {
	_, err := q.db.Exec(ctx, insertTable, arg.ID, arg.Status)
	return err
}

const deleteTablesAbove = `
DELETE FROM cafe_tables WHERE id > $1`

func (q *Queries) DeleteTablesAbove(ctx context.Context, id int32) error {
	_, err := q.db.Exec(ctx, deleteTablesAbove, id)
	return err
}
