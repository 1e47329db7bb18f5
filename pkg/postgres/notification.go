package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// InsertNotification inserts an in-app notification record
func (d *DB) InsertNotification(ctx context.Context, n *db.Notification) error {
	var shiftID *string
	if n.ShiftID != "" {
		shiftID = &n.ShiftID
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO notification (id, user_id, title, body, shift_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, n.ID, n.UserID, n.Title, n.Body, shiftID, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// GetNotifications retrieves a volunteer's most recent notifications, newest first
func (d *DB) GetNotifications(ctx context.Context, userID string, limit int) ([]db.Notification, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, user_id, title, body, COALESCE(shift_id, ''), created_at, read_at
		FROM notification
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications for %s: %w", userID, err)
	}

	notifications, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.Notification, error) {
		var n db.Notification
		err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.ShiftID, &n.CreatedAt, &n.ReadAt)
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}
	return notifications, nil
}
