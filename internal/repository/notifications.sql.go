package repository

import (
	"context"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/google/uuid"
)

const createNotification = `
INSERT INTO notifications (id, user_id, message, type, related_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING read, created_at`

func (q *Queries) CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	err := q.db.QueryRow(ctx, createNotification, n.ID, n.UserID, n.Message, string(n.Type), n.RelatedID).
		Scan(&n.Read, &n.CreatedAt)
	return n, err
}

const listNotificationsByUser = `
SELECT id, user_id, message, type, read, related_id, created_at
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC, id`

func (q *Queries) ListNotificationsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	rows, err := q.db.Query(ctx, listNotificationsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var typ string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &typ, &n.Read, &n.RelatedID, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = domain.NotificationType(typ)
		out = append(out, n)
	}
	return out, rows.Err()
}

const countUnreadNotifications = `SELECT count(*) FROM notifications WHERE user_id = $1 AND NOT read`

func (q *Queries) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countUnreadNotifications, userID).Scan(&n)
	return n, err
}

const markNotificationRead = `UPDATE notifications SET read = true WHERE user_id = $1 AND id = $2`

func (q *Queries) MarkNotificationRead(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, markNotificationRead, userID, id)
	return tag.RowsAffected(), err
}

const markAllNotificationsRead = `UPDATE notifications SET read = true WHERE user_id = $1 AND NOT read`

func (q *Queries) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, markAllNotificationsRead, userID)
	return tag.RowsAffected(), err
}

const deleteNotification = `DELETE FROM notifications WHERE user_id = $1 AND id = $2`

func (q *Queries) DeleteNotification(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteNotification, userID, id)
	return tag.RowsAffected(), err
}
