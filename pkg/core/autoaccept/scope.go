package autoaccept

import (
	"fmt"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// Scope decides which shifts a rule applies to.
// Implementations: GlobalScope, ShiftTypeScope, LocationScope, ShiftTypeAndLocationScope.
type Scope interface {
	AppliesTo(shift *model.Shift) bool
	String() string
}

// GlobalScope applies to every shift
type GlobalScope struct{}

func (GlobalScope) AppliesTo(shift *model.Shift) bool { return true }
func (GlobalScope) String() string                    { return "global" }

// ShiftTypeScope applies to shifts of one type at any location
type ShiftTypeScope struct {
	ShiftTypeID string
}

func (s ShiftTypeScope) AppliesTo(shift *model.Shift) bool {
	return shift.ShiftTypeID == s.ShiftTypeID
}

func (s ShiftTypeScope) String() string {
	return fmt.Sprintf("shiftType=%s", s.ShiftTypeID)
}

// LocationScope applies to shifts of any type at one location
type LocationScope struct {
	Location string
}

func (s LocationScope) AppliesTo(shift *model.Shift) bool {
	return shift.Location == s.Location
}

func (s LocationScope) String() string {
	return fmt.Sprintf("location=%s", s.Location)
}

// ShiftTypeAndLocationScope applies to shifts of one type at one location
type ShiftTypeAndLocationScope struct {
	ShiftTypeID string
	Location    string
}

func (s ShiftTypeAndLocationScope) AppliesTo(shift *model.Shift) bool {
	return shift.ShiftTypeID == s.ShiftTypeID && shift.Location == s.Location
}

func (s ShiftTypeAndLocationScope) String() string {
	return fmt.Sprintf("shiftType=%s,location=%s", s.ShiftTypeID, s.Location)
}

// ScopeFromColumns decodes the stored scope columns of a rule.
// A location always narrows the scope; the global flag only matters when no location is set.
func ScopeFromColumns(global bool, shiftTypeID, location *string) (Scope, error) {
	st := deref(shiftTypeID)
	loc := deref(location)

	switch {
	case loc != "" && st != "":
		return ShiftTypeAndLocationScope{ShiftTypeID: st, Location: loc}, nil
	case loc != "":
		return LocationScope{Location: loc}, nil
	case global:
		return GlobalScope{}, nil
	case st != "":
		return ShiftTypeScope{ShiftTypeID: st}, nil
	default:
		return nil, fmt.Errorf("rule is not global and has neither a shift type nor a location")
	}
}

// ScopeColumns encodes a scope into the stored column representation
func ScopeColumns(scope Scope) (global bool, shiftTypeID, location *string) {
	switch s := scope.(type) {
	case GlobalScope:
		return true, nil, nil
	case ShiftTypeScope:
		return false, &s.ShiftTypeID, nil
	case LocationScope:
		return false, nil, &s.Location
	case ShiftTypeAndLocationScope:
		return false, &s.ShiftTypeID, &s.Location
	}
	return false, nil, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
