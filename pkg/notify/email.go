package notify

import (
	"context"

	"go.uber.org/zap"
)

// ConfirmationEmail holds the details of a shift confirmation e-mail
type ConfirmationEmail struct {
	To            string
	VolunteerName string
	ShiftName     string
	ShiftDate     string
	ShiftTime     string
	Location      string
	ShiftID       string
}

// LogMailer records confirmation e-mails in the log instead of sending them.
// It is used when e-mail delivery is disabled.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendConfirmationEmail(ctx context.Context, email ConfirmationEmail) error {
	m.logger.Info("E-mail delivery disabled, skipping confirmation e-mail",
		zap.String("to", email.To),
		zap.String("shift_id", email.ShiftID),
		zap.String("shift_date", email.ShiftDate))
	return nil
}
