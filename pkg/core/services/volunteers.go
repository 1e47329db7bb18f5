package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// DirectoryStore defines the database operations for registering volunteers and shift types
type DirectoryStore interface {
	InsertVolunteer(ctx context.Context, volunteer *model.Volunteer) error
	InsertShiftType(ctx context.Context, shiftType *model.ShiftType) error
}

// NewVolunteer holds the details needed to register a volunteer
type NewVolunteer struct {
	Email string `validate:"required,email"`
	Name  string `validate:"required"`
	Grade string `validate:"omitempty,oneof=GREEN YELLOW PINK"`
}

// AddVolunteer registers a volunteer. Grade defaults to GREEN.
func AddVolunteer(ctx context.Context, store DirectoryStore, logger *zap.Logger, now time.Time, in NewVolunteer) (*model.Volunteer, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("volunteer validation failed: %w: %w", ErrInvalidInput, err)
	}

	grade := model.GradeGreen
	if in.Grade != "" {
		grade = model.Grade(in.Grade)
	}

	volunteer := &model.Volunteer{
		ID:        uuid.New().String(),
		Email:     in.Email,
		Name:      in.Name,
		Grade:     grade,
		CreatedAt: now,
	}
	if err := store.InsertVolunteer(ctx, volunteer); err != nil {
		return nil, fmt.Errorf("failed to insert volunteer: %w", err)
	}

	logger.Info("Added volunteer", zap.String("user_id", volunteer.ID), zap.String("grade", string(grade)))
	return volunteer, nil
}

// AddShiftType registers a shift type. Re-adding an existing ID is a no-op.
func AddShiftType(ctx context.Context, store DirectoryStore, logger *zap.Logger, id, name string) (*model.ShiftType, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return nil, fmt.Errorf("shift type id and name are required: %w", ErrInvalidInput)
	}
	if strings.ContainsAny(id+name, "\r\n") {
		return nil, fmt.Errorf("shift type id and name must be a single line: %w", ErrInvalidInput)
	}

	shiftType := &model.ShiftType{ID: id, Name: name}
	if err := store.InsertShiftType(ctx, shiftType); err != nil {
		return nil, fmt.Errorf("failed to insert shift type: %w", err)
	}

	logger.Info("Added shift type", zap.String("shift_type_id", id))
	return shiftType, nil
}

// ImportFailure is an entry that could not be imported. Index is its position in the input.
type ImportFailure struct {
	Index int
	Email string
	Err   error
}

// ImportResult reports the outcome of a bulk volunteer import
type ImportResult struct {
	Added    []model.Volunteer
	Existing int
	Failed   []ImportFailure
}

// ImportVolunteers registers every entry whose e-mail is not yet known. Existing
// volunteers are left untouched, so an import can be re-run. Invalid entries are
// reported and skipped; a store failure aborts the import.
func ImportVolunteers(ctx context.Context, store DirectoryStore, logger *zap.Logger, now time.Time, entries []NewVolunteer) (*ImportResult, error) {
	result := &ImportResult{}

	for i, in := range entries {
		v, err := AddVolunteer(ctx, store, logger, now, in)
		switch {
		case err == nil:
			result.Added = append(result.Added, *v)
		case errors.Is(err, db.ErrConflict):
			result.Existing++
		case errors.Is(err, ErrInvalidInput):
			result.Failed = append(result.Failed, ImportFailure{Index: i, Email: in.Email, Err: err})
		default:
			return nil, fmt.Errorf("import stopped after %d of %d entries: %w", i, len(entries), err)
		}
	}

	logger.Info("Imported volunteers",
		zap.Int("added", len(result.Added)),
		zap.Int("existing", result.Existing),
		zap.Int("failed", len(result.Failed)))

	return result, nil
}
