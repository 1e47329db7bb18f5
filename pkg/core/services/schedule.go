package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/internal/config"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// ShiftScheduleStore defines the database operations for scheduling shifts
type ShiftScheduleStore interface {
	GetShiftType(ctx context.Context, shiftTypeID string) (*model.ShiftType, error)
	InsertShifts(ctx context.Context, shifts []model.Shift) (int, error)
}

// ScheduleResult reports the shifts generated for a window
type ScheduleResult struct {
	Shifts   []model.Shift
	Inserted int
}

// shiftNamespace seeds deterministic shift IDs so rescheduling a window is idempotent
var shiftNamespace = uuid.MustParse("4f7f3f9e-8d0b-4d55-9a53-0c1d2b6a7e10")

// ScheduleShifts expands each recurring shift's rrule between from and until
// (inclusive) in loc and inserts the resulting shifts. With dryRun nothing is stored.
func ScheduleShifts(ctx context.Context, store ShiftScheduleStore, logger *zap.Logger, recurring []config.RecurringShift, loc *time.Location, from, until time.Time, dryRun bool) (*ScheduleResult, error) {
	if until.Before(from) {
		return nil, fmt.Errorf("until %s is before from %s: %w", until.Format(time.DateOnly), from.Format(time.DateOnly), ErrInvalidInput)
	}
	if loc == nil {
		loc = time.UTC
	}

	logger.Debug("Scheduling shifts",
		zap.Time("from", from),
		zap.Time("until", until),
		zap.Int("recurring_shifts", len(recurring)))

	var shifts []model.Shift
	for i, rs := range recurring {
		if _, err := store.GetShiftType(ctx, rs.ShiftTypeID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, fmt.Errorf("recurringShifts[%d]: unknown shift type %q: %w", i, rs.ShiftTypeID, ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to fetch shift type: %w", err)
		}

		starts, err := occurrences(rs.RRule, from.In(loc), until.In(loc))
		if err != nil {
			return nil, fmt.Errorf("failed to expand rrule for recurringShifts[%d]: %w", i, err)
		}

		duration := time.Duration(rs.DurationMinutes) * time.Minute
		for _, start := range starts {
			shifts = append(shifts, model.Shift{
				ID:          shiftID(rs.ShiftTypeID, rs.Location, start),
				ShiftTypeID: rs.ShiftTypeID,
				Location:    rs.Location,
				Start:       start,
				End:         start.Add(duration),
			})
		}

		logger.Debug("Expanded recurring shift",
			zap.String("shift_type_id", rs.ShiftTypeID),
			zap.String("location", rs.Location),
			zap.Int("occurrences", len(starts)))
	}

	sort.SliceStable(shifts, func(i, j int) bool { return shifts[i].Start.Before(shifts[j].Start) })

	result := &ScheduleResult{Shifts: shifts}
	if dryRun {
		logger.Info("Dry run, shifts not stored", zap.Int("shifts", len(shifts)))
		return result, nil
	}

	inserted, err := store.InsertShifts(ctx, shifts)
	if err != nil {
		return nil, fmt.Errorf("failed to insert shifts: %w", err)
	}
	result.Inserted = inserted

	logger.Info("Scheduled shifts", zap.Int("generated", len(shifts)), zap.Int("inserted", inserted))
	return result, nil
}

// occurrences returns the rrule's start times within [from, until]. DTSTART is
// pinned to midnight of from so BYHOUR/BYMINUTE set the time of day.
func occurrences(rule string, from, until time.Time) ([]time.Time, error) {
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, err
	}

	dtstart := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	r.DTStart(dtstart)

	return r.Between(from, until, true), nil
}

func shiftID(shiftTypeID, location string, start time.Time) string {
	key := fmt.Sprintf("%s|%s|%s", shiftTypeID, location, start.UTC().Format(time.RFC3339))
	return uuid.NewSHA1(shiftNamespace, []byte(key)).String()
}
