package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const employeeColumns = `id, employee_id, full_name, hashed_password, email,
	phone, role, is_active, created_at, updated_at`

func scanEmployee(row interface{ Scan(dest ...any) error }) (Employee, error) {
	var e Employee
	err := row.Scan(
		&e.ID,
		&e.EmployeeID,
		&e.FullName,
		&e.HashedPassword,
		&e.Email,
		&e.Phone,
		&e.Role,
		&e.IsActive,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

const getEmployeeByCode = `
SELECT ` + employeeColumns + ` FROM employees WHERE employee_id = $1`

func (q *Queries) GetEmployeeByCode(ctx context.Context, employeeID string) (Employee, error) {
	return scanEmployee(q.db.QueryRow(ctx, getEmployeeByCode, employeeID))
}

const getEmployee = `
SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

func (q *Queries) GetEmployee(ctx context.Context, id uuid.UUID) (Employee, error) {
	return scanEmployee(q.db.QueryRow(ctx, getEmployee, id))
}

const listEmployees = `
SELECT ` + employeeColumns + ` FROM employees ORDER BY created_at`

func (q *Queries) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := q.db.Query(ctx, listEmployees)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const createEmployee = `
INSERT INTO employees (employee_id, full_name, hashed_password, email, phone, role, is_active)
VALUES ($1, $2, $3, $4, $5, $6, true)
RETURNING ` + employeeColumns

type CreateEmployeeParams struct {
	EmployeeID     string
	FullName       string
	HashedPassword string
	Email          pgtype.Text
	Phone          pgtype.Text
	Role           string
}

func (q *Queries) CreateEmployee(ctx context.Context, arg CreateEmployeeParams) (Employee, error) {
	row := q.db.QueryRow(ctx, createEmployee,
		arg.EmployeeID,
		arg.FullName,
		arg.HashedPassword,
		arg.Email,
		arg.Phone,
		arg.Role,
	)
	return scanEmployee(row)
}

const updateEmployee = `
UPDATE employees
SET full_name = $2, email = $3, phone = $4, role = $5, updated_at = now()
WHERE id = $1
RETURNING ` + employeeColumns

type UpdateEmployeeParams struct {
	ID       uuid.UUID
	FullName string
	Email    pgtype.Text
	Phone    pgtype.Text
	Role     string
}

func (q *Queries) UpdateEmployee(ctx context.Context, arg UpdateEmployeeParams) (Employee, error) {
	row := q.db.QueryRow(ctx, updateEmployee,
		arg.ID,
		arg.FullName,
		arg.Email,
		arg.Phone,
		arg.Role,
	)
	return scanEmployee(row)
}

const setEmployeeActive = `
UPDATE employees SET is_active = $2, updated_at = now()
WHERE id = $1
RETURNING ` + employeeColumns

type SetEmployeeActiveParams struct {
	ID       uuid.UUID
	IsActive bool
}

func (q *Queries) SetEmployeeActive(ctx context.Context, arg SetEmployeeActiveParams) (Employee, error) {
	return scanEmployee(q.db.QueryRow(ctx, setEmployeeActive, arg.ID, arg.IsActive))
}

const setEmployeePassword = `
UPDATE employees SET hashed_password = $2, updated_at = now()
WHERE id = $1`

type SetEmployeePasswordParams struct {
	ID             uuid.UUID
	HashedPassword string
}

func (q *Queries) SetEmployeePassword(ctx context.Context, arg SetEmployeePasswordParams) error {
	_, err := q.db.Exec(ctx, setEmployeePassword, arg.ID, arg.HashedPassword)
	return err
}

const deleteEmployee = `
DELETE FROM employees WHERE id = $1`

func (q *Queries) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteEmployee, id)
	return err
}
