package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/volunteer-hub/pkg/db"
)

const ruleColumns = `
	id, name, description, enabled, priority, is_global, shift_type_id, location,
	min_grade, min_completed_shifts, min_attendance_rate, min_account_age_days,
	max_days_in_advance, require_shift_type_experience, expression,
	criteria_logic, stop_on_match, created_at, updated_at`

func scanRule(row pgx.CollectableRow) (db.AutoAcceptRule, error) {
	var r db.AutoAcceptRule
	err := row.Scan(
		&r.ID, &r.Name, &r.Description, &r.Enabled, &r.Priority, &r.Global, &r.ShiftTypeID, &r.Location,
		&r.MinGrade, &r.MinCompletedShifts, &r.MinAttendanceRate, &r.MinAccountAgeDays,
		&r.MaxDaysInAdvance, &r.RequireShiftTypeExperience, &r.Expression,
		&r.CriteriaLogic, &r.StopOnMatch, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// GetEnabledRulesForShift retrieves enabled rules whose scope covers the shift
// type and location, highest priority first with older rules winning ties.
// A location narrows the scope; is_global is only consulted when no location is set.
func (d *DB) GetEnabledRulesForShift(ctx context.Context, shiftTypeID, location string) ([]db.AutoAcceptRule, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+ruleColumns+`
		FROM auto_accept_rule
		WHERE enabled
		  AND (
		        (COALESCE(location, '') <> '' AND COALESCE(shift_type_id, '') <> '' AND location = $2 AND shift_type_id = $1)
		     OR (COALESCE(location, '') <> '' AND COALESCE(shift_type_id, '') = '' AND location = $2)
		     OR (COALESCE(location, '') = '' AND is_global)
		     OR (COALESCE(location, '') = '' AND NOT is_global AND shift_type_id = $1)
		  )
		ORDER BY priority DESC, created_at, id
	`, shiftTypeID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules for shift type %s: %w", shiftTypeID, err)
	}

	rules, err := pgx.CollectRows(rows, scanRule)
	if err != nil {
		return nil, fmt.Errorf("failed to scan rule: %w", err)
	}
	return rules, nil
}

// GetRules retrieves every rule, enabled or not
func (d *DB) GetRules(ctx context.Context) ([]db.AutoAcceptRule, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+ruleColumns+` FROM auto_accept_rule ORDER BY priority DESC, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}

	rules, err := pgx.CollectRows(rows, scanRule)
	if err != nil {
		return nil, fmt.Errorf("failed to scan rule: %w", err)
	}
	return rules, nil
}

// GetRule retrieves a single rule by ID
func (d *DB) GetRule(ctx context.Context, ruleID string) (*db.AutoAcceptRule, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+ruleColumns+` FROM auto_accept_rule WHERE id = $1`, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rule %s: %w", ruleID, err)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, scanRule)
	if err != nil {
		return nil, fmt.Errorf("failed to get rule %s: %w", ruleID, translateError(err))
	}
	return &rule, nil
}

// InsertRule inserts a rule record. CreatedAt and UpdatedAt are set by the database.
func (d *DB) InsertRule(ctx context.Context, r *db.AutoAcceptRule) error {
	err := d.pool.QueryRow(ctx, `
		INSERT INTO auto_accept_rule (
			id, name, description, enabled, priority, is_global, shift_type_id, location,
			min_grade, min_completed_shifts, min_attendance_rate, min_account_age_days,
			max_days_in_advance, require_shift_type_experience, expression,
			criteria_logic, stop_on_match
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at
	`,
		r.ID, r.Name, r.Description, r.Enabled, r.Priority, r.Global, r.ShiftTypeID, r.Location,
		r.MinGrade, r.MinCompletedShifts, r.MinAttendanceRate, r.MinAccountAgeDays,
		r.MaxDaysInAdvance, r.RequireShiftTypeExperience, r.Expression,
		r.CriteriaLogic, r.StopOnMatch,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert rule %s: %w", r.ID, translateError(err))
	}
	return nil
}

// SetRuleEnabled enables or disables a rule
func (d *DB) SetRuleEnabled(ctx context.Context, ruleID string, enabled bool) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE auto_accept_rule SET enabled = $2, updated_at = NOW() WHERE id = $1
	`, ruleID, enabled)
	if err != nil {
		return fmt.Errorf("failed to update rule %s: %w", ruleID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update rule %s: %w", ruleID, db.ErrNotFound)
	}
	return nil
}

// DeleteRule deletes a rule. Past auto_approval records keep their row with a null rule_id.
func (d *DB) DeleteRule(ctx context.Context, ruleID string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM auto_accept_rule WHERE id = $1`, ruleID)
	if err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", ruleID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete rule %s: %w", ruleID, db.ErrNotFound)
	}
	return nil
}
