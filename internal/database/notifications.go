package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const notificationColumns = `id, order_id, table_number, message, is_read, created_at`

func scanNotification(row interface{ Scan(dest ...any) error }) (AdminNotification, error) {
	var n AdminNotification
	err := row.Scan(&n.ID, &n.OrderID, &n.TableNumber, &n.Message, &n.IsRead, &n.CreatedAt)
	return n, err
}

const createNotification = `
INSERT INTO admin_notifications (order_id, table_number, message)
VALUES ($1, $2, $3)
RETURNING ` + notificationColumns

type CreateNotificationParams struct {
	OrderID     pgtype.UUID
	TableNumber int32
	Message     string
}

func (q *Queries) CreateNotification(ctx context.Context, arg CreateNotificationParams) (AdminNotification, error) {
	row := q.db.QueryRow(ctx, createNotification, arg.OrderID, arg.TableNumber, arg.Message)
	return scanNotification(row)
}

const listNotifications = `
SELECT ` + notificationColumns + ` FROM admin_notifications
WHERE NOT $1::bool OR NOT is_read
ORDER BY created_at DESC
LIMIT $2`

type ListNotificationsParams struct {
	UnreadOnly bool
	Limit      int32
}

func (q *Queries) ListNotifications(ctx context.Context, arg ListNotificationsParams) ([]AdminNotification, error) {
	rows, err := q.db.Query(ctx, listNotifications, arg.UnreadOnly, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AdminNotification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

const markNotificationRead = `
UPDATE admin_notifications SET is_read = true WHERE id = $1
RETURNING ` + notificationColumns

func (q *Queries) MarkNotificationRead(ctx context.Context, id uuid.UUID) (AdminNotification, error) {
	return scanNotification(q.db.QueryRow(ctx, markNotificationRead, id))
}

const markAllNotificationsRead = `
UPDATE admin_notifications SET is_read = true WHERE NOT is_read`

func (q *Queries) MarkAllNotificationsRead(ctx context.Context) error {
	_, err := q.db.Exec(ctx, markAllNotificationsRead)
	return err
}
