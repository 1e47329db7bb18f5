package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// NotificationWriter defines the database operations needed to record notifications
type NotificationWriter interface {
	InsertNotification(ctx context.Context, notification *db.Notification) error
}

// Publisher pushes messages to connected clients
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Dispatcher records in-app notifications and pushes them to open streams
type Dispatcher struct {
	store     NotificationWriter
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewDispatcher creates a Dispatcher. publisher may be nil when no streams are served.
func NewDispatcher(store NotificationWriter, publisher Publisher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// NotifyConfirmed tells a volunteer their signup for a shift was confirmed.
// The notification is stored first; a failed push to open streams is logged only
// since the volunteer will still see it in their notification list.
func (d *Dispatcher) NotifyConfirmed(ctx context.Context, userID, shiftTypeName, shiftDate, shiftID string) error {
	n := &db.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     "Shift confirmed",
		Body:      fmt.Sprintf("Your signup for %s on %s has been confirmed.", shiftTypeName, shiftDate),
		ShiftID:   shiftID,
		CreatedAt: d.now(),
	}

	if err := d.store.InsertNotification(ctx, n); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	if d.publisher == nil {
		return nil
	}

	msg := Message{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Body:      n.Body,
		ShiftID:   n.ShiftID,
		CreatedAt: n.CreatedAt,
	}
	if err := d.publisher.Publish(ctx, msg); err != nil {
		d.logger.Warn("Failed to push notification to open streams",
			zap.String("user_id", userID),
			zap.String("notification_id", n.ID),
			zap.Error(err))
	}

	return nil
}
