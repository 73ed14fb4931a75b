package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, name, description, price, category, image_url,
	is_available, is_vegetarian, is_spicy, is_bestseller, created_at, updated_at`

func scanMenuItem(row interface{ Scan(dest ...any) error }) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Description,
		&m.Price,
		&m.Category,
		&m.ImageURL,
		&m.IsAvailable,
		&m.IsVegetarian,
		&m.IsSpicy,
		&m.IsBestseller,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

const listMenuItems = `
SELECT ` + menuItemColumns + ` FROM menu_items ORDER BY category, name`

func (q *Queries) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	return q.queryMenuItems(ctx, listMenuItems)
}

const listAvailableMenuItems = `
SELECT ` + menuItemColumns + ` FROM menu_items WHERE is_available ORDER BY category, name`

func (q *Queries) ListAvailableMenuItems(ctx context.Context) ([]MenuItem, error) {
	return q.queryMenuItems(ctx, listAvailableMenuItems)
}

func (q *Queries) queryMenuItems(ctx context.Context, sql string) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const getMenuItem = `
SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = $1`

func (q *Queries) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, getMenuItem, id))
}

const getMenuItemForOrder = `
SELECT id, name, price, is_available FROM menu_items WHERE id = $1`

type GetMenuItemForOrderRow struct {
	ID          uuid.UUID
	Name        string
	Price       pgtype.Numeric
	IsAvailable bool
}

// GetMenuItemForOrder resolves the live price for a line item; prices are
// always looked up server-side, never trusted from the client.
func (q *Queries) GetMenuItemForOrder(ctx context.Context, id uuid.UUID) (GetMenuItemForOrderRow, error) {
	var r GetMenuItemForOrderRow
	err := q.db.QueryRow(ctx, getMenuItemForOrder, id).Scan(&r.ID, &r.Name, &r.Price, &r.IsAvailable)
	return r, err
}

const createMenuItem = `
INSERT INTO menu_items (name, description, price, category, image_url,
	is_available, is_vegetarian, is_spicy, is_bestseller)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + menuItemColumns

type CreateMenuItemParams struct {
	Name         string
	Description  pgtype.Text
	Price        pgtype.Numeric
	Category     string
	ImageURL     pgtype.Text
	IsAvailable  bool
	IsVegetarian bool
	IsSpicy      bool
	IsBestseller bool
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.Category,
		arg.ImageURL,
		arg.IsAvailable,
		arg.IsVegetarian,
		arg.IsSpicy,
		arg.IsBestseller,
	)
	return scanMenuItem(row)
}

const updateMenuItem = `
UPDATE menu_items
SET name = $2, description = $3, price = $4, category = $5, image_url = $6,
    is_available = $7, is_vegetarian = $8, is_spicy = $9, is_bestseller = $10,
    updated_at = now()
WHERE id = $1
RETURNING ` + menuItemColumns

type UpdateMenuItemParams struct {
	ID           uuid.UUID
	Name         string
	Description  pgtype.Text
	Price        pgtype.Numeric
	Category     string
	ImageURL     pgtype.Text
	IsAvailable  bool
	IsVegetarian bool
	IsSpicy      bool
	IsBestseller bool
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItem,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.Category,
		arg.ImageURL,
		arg.IsAvailable,
		arg.IsVegetarian,
		arg.IsSpicy,
		arg.IsBestseller,
	)
	return scanMenuItem(row)
}

const setMenuItemAvailability = `
UPDATE menu_items SET is_available = $2, updated_at = now()
WHERE id = $1
RETURNING ` + menuItemColumns

type SetMenuItemAvailabilityParams struct {
	ID          uuid.UUID
	IsAvailable bool
}

func (q *Queries) SetMenuItemAvailability(ctx context.Context, arg SetMenuItemAvailabilityParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, setMenuItemAvailability, arg.ID, arg.IsAvailable))
}

const deleteMenuItem = `
DELETE FROM menu_items WHERE id = $1`

func (q *Queries) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteMenuItem, id)
	return err
}
