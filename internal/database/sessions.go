package database

import (
	"context"

	"github.com/google/uuid"
)

const sessionColumns = `id, employee_id, code, full_name, role, login_at`

func scanSession(row interface{ Scan(dest ...any) error }) (AdminSession, error) {
	var s AdminSession
	err := row.Scan(&s.ID, &s.EmployeeID, &s.Code, &s.FullName, &s.Role, &s.LoginAt)
	return s, err
}

const createAdminSession = `
INSERT INTO admin_sessions (employee_id, code, full_name, role)
VALUES ($1, $2, $3, $4)
RETURNING ` + sessionColumns

type CreateAdminSessionParams struct {
	EmployeeID uuid.UUID
	Code       string
	FullName   string
	Role       string
}

func (q *Queries) CreateAdminSession(ctx context.Context, arg CreateAdminSessionParams) (AdminSession, error) {
	row := q.db.QueryRow(ctx, createAdminSession,
		arg.EmployeeID,
		arg.Code,
		arg.FullName,
		arg.Role,
	)
	return scanSession(row)
}

const listAdminSessions = `
SELECT ` + sessionColumns + ` FROM admin_sessions ORDER BY login_at DESC LIMIT $1 OFFSET $2`

type ListAdminSessionsParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListAdminSessions(ctx context.Context, arg ListAdminSessionsParams) ([]AdminSession, error) {
	rows, err := q.db.Query(ctx, listAdminSessions, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AdminSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
