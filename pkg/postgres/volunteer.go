package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// GetVolunteer retrieves a single volunteer by ID
func (d *DB) GetVolunteer(ctx context.Context, userID string) (*model.Volunteer, error) {
	var v model.Volunteer
	var grade string
	err := d.pool.QueryRow(ctx, `
		SELECT id, email, name, grade, created_at
		FROM volunteer
		WHERE id = $1
	`, userID).Scan(&v.ID, &v.Email, &v.Name, &grade, &v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get volunteer %s: %w", userID, translateError(err))
	}
	v.Grade = model.Grade(grade)
	return &v, nil
}

// GetVolunteerWithSignups retrieves a volunteer together with every signup they
// have made, each joined with its shift
func (d *DB) GetVolunteerWithSignups(ctx context.Context, userID string) (*db.VolunteerHistory, error) {
	volunteer, err := d.GetVolunteer(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, err := d.pool.Query(ctx, `
		SELECT s.id, s.user_id, s.shift_id, s.status, s.previous_status, s.created_at,
		       sh.id, sh.shift_type_id, sh.location, sh.start_time, sh.end_time
		FROM signup s
		JOIN shift sh ON sh.id = s.shift_id
		WHERE s.user_id = $1
		ORDER BY sh.start_time
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query signups for volunteer %s: %w", userID, err)
	}

	signups, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.SignupWithShift, error) {
		var sw model.SignupWithShift
		var status string
		var previous *string
		err := row.Scan(
			&sw.Signup.ID, &sw.Signup.UserID, &sw.Signup.ShiftID, &status, &previous, &sw.Signup.CreatedAt,
			&sw.Shift.ID, &sw.Shift.ShiftTypeID, &sw.Shift.Location, &sw.Shift.Start, &sw.Shift.End,
		)
		sw.Signup.Status = model.SignupStatus(status)
		if previous != nil {
			sw.Signup.PreviousStatus = model.SignupStatus(*previous)
		}
		return sw, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan signups for volunteer %s: %w", userID, err)
	}

	return &db.VolunteerHistory{Volunteer: *volunteer, Signups: signups}, nil
}

// InsertVolunteer inserts a volunteer record
func (d *DB) InsertVolunteer(ctx context.Context, v *model.Volunteer) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO volunteer (id, email, name, grade, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, v.ID, v.Email, v.Name, string(v.Grade), v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert volunteer %s: %w", v.ID, translateError(err))
	}
	return nil
}
