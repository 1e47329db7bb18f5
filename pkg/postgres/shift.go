package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// GetShift retrieves a shift joined with its shift type
func (d *DB) GetShift(ctx context.Context, shiftID string) (*db.ShiftWithType, error) {
	var s db.ShiftWithType
	err := d.pool.QueryRow(ctx, `
		SELECT sh.id, sh.shift_type_id, sh.location, sh.start_time, sh.end_time, st.id, st.name
		FROM shift sh
		JOIN shift_type st ON st.id = sh.shift_type_id
		WHERE sh.id = $1
	`, shiftID).Scan(
		&s.Shift.ID, &s.Shift.ShiftTypeID, &s.Shift.Location, &s.Shift.Start, &s.Shift.End,
		&s.ShiftType.ID, &s.ShiftType.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get shift %s: %w", shiftID, translateError(err))
	}
	return &s, nil
}

// GetShiftType retrieves a single shift type by ID
func (d *DB) GetShiftType(ctx context.Context, shiftTypeID string) (*model.ShiftType, error) {
	var st model.ShiftType
	err := d.pool.QueryRow(ctx, `SELECT id, name FROM shift_type WHERE id = $1`, shiftTypeID).Scan(&st.ID, &st.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get shift type %s: %w", shiftTypeID, translateError(err))
	}
	return &st, nil
}

// InsertShiftType inserts a shift type, leaving an existing one with the same ID untouched
func (d *DB) InsertShiftType(ctx context.Context, st *model.ShiftType) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO shift_type (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, st.ID, st.Name)
	if err != nil {
		return fmt.Errorf("failed to insert shift type %s: %w", st.ID, err)
	}
	return nil
}

// InsertShifts inserts multiple shift records in a batch. Shifts whose ID
// already exists are skipped so re-running a schedule is harmless.
func (d *DB) InsertShifts(ctx context.Context, shifts []model.Shift) (int, error) {
	if len(shifts) == 0 {
		return 0, nil
	}

	inserted := 0
	err := d.inTx(ctx, func(tx pgx.Tx) error {
		for _, s := range shifts {
			tag, err := tx.Exec(ctx, `
				INSERT INTO shift (id, shift_type_id, location, start_time, end_time)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO NOTHING
			`, s.ID, s.ShiftTypeID, s.Location, s.Start, s.End)
			if err != nil {
				return fmt.Errorf("failed to insert shift %s: %w", s.ID, translateError(err))
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
