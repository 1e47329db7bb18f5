package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// GetSignup retrieves a single signup by ID
func (d *DB) GetSignup(ctx context.Context, signupID string) (*model.Signup, error) {
	var s model.Signup
	var status string
	var previous *string
	err := d.pool.QueryRow(ctx, `
		SELECT id, user_id, shift_id, status, previous_status, created_at
		FROM signup
		WHERE id = $1
	`, signupID).Scan(&s.ID, &s.UserID, &s.ShiftID, &status, &previous, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get signup %s: %w", signupID, translateError(err))
	}
	s.Status = model.SignupStatus(status)
	if previous != nil {
		s.PreviousStatus = model.SignupStatus(*previous)
	}
	return &s, nil
}

// InsertSignup inserts a signup record. A second signup by the same volunteer
// for the same shift returns db.ErrConflict.
func (d *DB) InsertSignup(ctx context.Context, s *model.Signup) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO signup (id, user_id, shift_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, s.ID, s.UserID, s.ShiftID, string(s.Status), s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert signup %s: %w", s.ID, translateError(err))
	}
	return nil
}

// ConfirmSignup moves a PENDING signup to CONFIRMED and records the approving
// rule in one transaction. The status guard makes concurrent approvals safe.
func (d *DB) ConfirmSignup(ctx context.Context, approval *db.AutoApproval) error {
	return d.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE signup
			SET status = 'CONFIRMED', updated_at = $2
			WHERE id = $1 AND status = 'PENDING'
		`, approval.SignupID, approval.ApprovedAt)
		if err != nil {
			return fmt.Errorf("failed to confirm signup %s: %w", approval.SignupID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("signup %s is not pending: %w", approval.SignupID, db.ErrConflict)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO auto_approval (id, signup_id, rule_id, approved_at)
			VALUES ($1, $2, $3, $4)
		`, approval.ID, approval.SignupID, approval.RuleID, approval.ApprovedAt)
		if err != nil {
			return fmt.Errorf("failed to record auto approval for signup %s: %w", approval.SignupID, err)
		}
		return nil
	})
}

// CancelSignup marks a signup canceled, remembering the status it held so that
// cancellations after confirmation count against attendance
func (d *DB) CancelSignup(ctx context.Context, signupID string, previous model.SignupStatus, at time.Time) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE signup
		SET status = 'CANCELED', previous_status = $2, updated_at = $3
		WHERE id = $1 AND status = $2
	`, signupID, string(previous), at)
	if err != nil {
		return fmt.Errorf("failed to cancel signup %s: %w", signupID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("signup %s changed status before it could be canceled: %w", signupID, db.ErrConflict)
	}
	return nil
}
