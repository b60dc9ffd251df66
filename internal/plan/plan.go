// Package plan implements the self-paced "read the whole canon in N days"
// reading plan.
//
// The scheduling functions are pure: they take a State and the current time
// and return new values. Persisting a State is the caller's job, done through
// a Store, and Tracker bundles the two for presentation code.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidDuration rejects a plan whose duration is not a positive
	// number of days.
	ErrInvalidDuration = errors.New("plan: duration must be at least one day")

	// ErrNoPlan is returned when no plan is stored, or the stored plan is
	// malformed.
	ErrNoPlan = errors.New("plan: no plan started")

	// ErrStaleAssignment rejects completing an assignment that was not
	// computed from the current state.
	ErrStaleAssignment = errors.New("plan: assignment does not start at the current chapter")

	// ErrNotTarget rejects marking a chapter read that is not the plan's
	// next unread chapter.
	ErrNotTarget = errors.New("plan: chapter is not the current target")

	// ErrCompleted is returned when there is nothing left to read.
	ErrCompleted = errors.New("plan: already completed")
)

// State is the reader's persisted progress.
type State struct {
	StartDate    time.Time
	DurationDays int
	// CurrentIndex is the global index of the next unread chapter. It equals
	// the canon size once the plan is complete.
	CurrentIndex int
}

// New creates a plan starting at start. Invalid durations are rejected here
// so the scheduler never sees them.
func New(start time.Time, durationDays int) (State, error) {
	if durationDays <= 0 {
		return State{}, fmt.Errorf("%w: got %d", ErrInvalidDuration, durationDays)
	}
	return State{StartDate: start, DurationDays: durationDays}, nil
}

// Validate reports whether s could have been produced by this package for a
// canon of total chapters.
func (s State) Validate(total int) error {
	if s.StartDate.IsZero() {
		return errors.New("plan: missing start date")
	}
	if s.DurationDays <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, s.DurationDays)
	}
	if s.CurrentIndex < 0 || s.CurrentIndex > total {
		return fmt.Errorf("plan: current chapter %d outside [0, %d]", s.CurrentIndex, total)
	}
	return nil
}

// record is the flat persisted form: ISO date string, integer, integer.
type record struct {
	StartDate          string `json:"startDate"`
	DurationDays       int    `json:"durationDays"`
	CurrentGlobalIndex int    `json:"currentGlobalIndex"`
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(record{
		StartDate:          s.StartDate.UTC().Format(time.RFC3339Nano),
		DurationDays:       s.DurationDays,
		CurrentGlobalIndex: s.CurrentIndex,
	})
}

func (s *State) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	start, err := ParseStartDate(r.StartDate)
	if err != nil {
		return err
	}
	*s = State{StartDate: start, DurationDays: r.DurationDays, CurrentIndex: r.CurrentGlobalIndex}
	return nil
}

// ParseStartDate accepts RFC 3339 timestamps (with or without fractional
// seconds) and bare YYYY-MM-DD dates.
func ParseStartDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("plan: bad start date %q", v)
	}
	return t, nil
}

// Preset is a suggested plan duration.
type Preset struct {
	Label string `json:"label"`
	Days  int    `json:"days"`
}

// DefaultPresets are the durations offered when starting a plan.
var DefaultPresets = []Preset{
	{Label: "90 days", Days: 90},
	{Label: "6 months", Days: 180},
	{Label: "1 year", Days: 365},
}
