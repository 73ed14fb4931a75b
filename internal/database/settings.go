package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const settingsColumns = `id, cafe_name, address, phone, gstin, total_tables, updated_at`

func scanSettings(row interface{ Scan(dest ...any) error }) (CafeSettings, error) {
	var s CafeSettings
	err := row.Scan(&s.ID, &s.CafeName, &s.Address, &s.Phone, &s.Gstin, &s.TotalTables, &s.UpdatedAt)
	return s, err
}

const getSettings = `
SELECT ` + settingsColumns + ` FROM cafe_settings WHERE id = 1`

func (q *Queries) GetSettings(ctx context.Context) (CafeSettings, error) {
	return scanSettings(q.db.QueryRow(ctx, getSettings))
}

const updateSettings = `
UPDATE cafe_settings
SET cafe_name = $1, address = $2, phone = $3, gstin = $4, total_tables = $5, updated_at = now()
WHERE id = 1
RETURNING ` + settingsColumns

type UpdateSettingsParams struct {
	CafeName    string
	Address     pgtype.Text
	Phone       pgtype.Text
	Gstin       pgtype.Text
	TotalTables int32
}

func (q *Queries) UpdateSettings(ctx context.Context, arg UpdateSettingsParams) (CafeSettings, error) {
	row := q.db.QueryRow(ctx, updateSettings,
		arg.CafeName,
		arg.Address,
		arg.Phone,
		arg.Gstin,
		arg.TotalTables,
	)
	return scanSettings(row)
}
