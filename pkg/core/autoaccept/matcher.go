package autoaccept

import (
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// Matches reports whether rule accepts the volunteer described by snapshot for shift.
// A rule with no criteria never matches.
func Matches(rule *Rule, snapshot *Snapshot, shift *model.Shift, now time.Time) bool {
	if len(rule.Criteria) == 0 {
		return false
	}

	in := &MatchInput{Snapshot: snapshot, Shift: shift, Now: now}

	results := make([]bool, len(rule.Criteria))
	for i, c := range rule.Criteria {
		results[i] = c.IsSatisfied(in)
	}

	switch rule.Logic {
	case LogicAnd:
		for _, ok := range results {
			if !ok {
				return false
			}
		}
		return true
	case LogicOr:
		for _, ok := range results {
			if ok {
				return true
			}
		}
		return false
	}

	return false
}
