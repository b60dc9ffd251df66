package plan

import (
	"fmt"
	"math"
	"time"

	"bibleread/internal/canon"
)

const day = 24 * time.Hour

// Status classifies what ComputeAssignment produced.
type Status int

const (
	NotStarted Status = iota
	Active
	Completed
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Active:
		return "active"
	case Completed:
		return "completed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Assignment is the inclusive chapter range to read today. It is derived on
// demand and never persisted.
type Assignment struct {
	Start canon.ChapterRef `json:"start"`
	End   canon.ChapterRef `json:"end"`
	// Final is set when End is the last chapter of the canon.
	Final bool `json:"isFinalAssignment"`
}

// Len is the number of chapters in the assignment.
func (a Assignment) Len() int { return a.End.GlobalIndex - a.Start.GlobalIndex + 1 }

// Contains reports whether the global index falls inside the assignment.
func (a Assignment) Contains(globalIndex int) bool {
	return globalIndex >= a.Start.GlobalIndex && globalIndex <= a.End.GlobalIndex
}

// Scheduler computes assignments against a fixed canon index.
type Scheduler struct {
	index *canon.Index
}

func NewScheduler(index *canon.Index) *Scheduler {
	return &Scheduler{index: index}
}

// Index returns the canon index the scheduler was built with.
func (s *Scheduler) Index() *canon.Index { return s.index }

// Total is the number of chapters in the canon.
func (s *Scheduler) Total() int { return s.index.Len() }

// DaysElapsed is the plan's ordinal day number: 1 during the first 24 hours
// after start, 2 during the next 24, and so on. A start in the future counts
// as day 1.
func DaysElapsed(start, today time.Time) int {
	d := today.Sub(start)
	if d <= 0 {
		return 1
	}
	n := int(d / day)
	if d%day != 0 {
		n++
	}
	return max(1, n)
}

// ScheduledEnd is the global index the reader should have reached by the end
// of the given plan day. It depends only on the day and the duration, never
// on the reader's position, so it cannot move while the reader reads.
//
// ceil(total*day/duration) is computed in integers so that the last day
// lands exactly on the last chapter.
func (s *Scheduler) ScheduledEnd(dayNumber, durationDays int) int {
	total := s.Total()
	if durationDays < 1 {
		durationDays = 1
	}
	dayNumber = min(max(dayNumber, 1), durationDays)
	reached := min(total, (total*dayNumber+durationDays-1)/durationDays)
	return s.index.Clamp(reached - 1)
}

// ComputeAssignment returns today's reading for st. A nil plan yields
// NotStarted; a plan past the last chapter yields Completed.
//
// When the reader is at or behind schedule the assignment runs from the next
// unread chapter to today's scheduled end, which includes any backlog from
// earlier days. When the reader is already past today's scheduled end the
// assignment is the single next chapter.
func (s *Scheduler) ComputeAssignment(st *State, today time.Time) (Assignment, Status) {
	if st == nil {
		return Assignment{}, NotStarted
	}
	total := s.Total()
	if st.CurrentIndex >= total {
		return Assignment{}, Completed
	}

	start := s.index.Clamp(st.CurrentIndex)
	end := s.ScheduledEnd(DaysElapsed(st.StartDate, today), st.DurationDays)
	if start > end {
		end = start
	}
	return Assignment{
		Start: s.index.At(start),
		End:   s.index.At(end),
		Final: end == total-1,
	}, Active
}

// IsCurrentTarget reports whether globalIndex is the next unread chapter.
// Callers gate AdvanceOneChapter on it.
func (s *Scheduler) IsCurrentTarget(st State, globalIndex int) bool {
	return globalIndex == st.CurrentIndex
}

// MarkAssignmentComplete moves the plan past the end of a. The assignment
// must have been computed from st; otherwise ErrStaleAssignment is returned
// and the caller should recompute.
func (s *Scheduler) MarkAssignmentComplete(st State, a Assignment) (State, error) {
	if a.Start.GlobalIndex != st.CurrentIndex {
		return st, fmt.Errorf("%w: assignment starts at %d, plan is at %d",
			ErrStaleAssignment, a.Start.GlobalIndex, st.CurrentIndex)
	}
	if a.End.GlobalIndex < a.Start.GlobalIndex {
		return st, fmt.Errorf("%w: empty range %d..%d",
			ErrStaleAssignment, a.Start.GlobalIndex, a.End.GlobalIndex)
	}
	next := st
	next.CurrentIndex = min(a.End.GlobalIndex+1, s.Total())
	return next, nil
}

// AdvanceOneChapter marks the next unread chapter read. It trusts the caller
// to have checked IsCurrentTarget first.
func (s *Scheduler) AdvanceOneChapter(st State) State {
	next := st
	next.CurrentIndex = min(st.CurrentIndex+1, s.Total())
	return next
}

// ChaptersPerDay is the average pace needed to finish in durationDays.
func (s *Scheduler) ChaptersPerDay(durationDays int) float64 {
	if durationDays < 1 {
		return 0
	}
	return float64(s.Total()) / float64(durationDays)
}

// Progress summarises a plan for dashboards.
type Progress struct {
	ChaptersRead  int `json:"chaptersRead"`
	TotalChapters int `json:"totalChapters"`
	Percent       int `json:"percent"`
	Day           int `json:"day"`
	DurationDays  int `json:"durationDays"`
	// ScheduledEnd is the global index due by the end of Day.
	ScheduledEnd int `json:"scheduledEnd"`
	// Behind counts chapters due by today that are still unread.
	Behind int `json:"behind"`
	// Ahead counts chapters read beyond today's schedule.
	Ahead int `json:"ahead"`
}

// Progress computes the dashboard summary for st at today.
func (s *Scheduler) Progress(st State, today time.Time) Progress {
	total := s.Total()
	read := min(max(st.CurrentIndex, 0), total)
	dayNumber := DaysElapsed(st.StartDate, today)
	due := s.ScheduledEnd(dayNumber, st.DurationDays) + 1
	return Progress{
		ChaptersRead:  read,
		TotalChapters: total,
		Percent:       int(math.Round(float64(read) / float64(total) * 100)),
		Day:           dayNumber,
		DurationDays:  st.DurationDays,
		ScheduledEnd:  due - 1,
		Behind:        max(0, due-read),
		Ahead:         max(0, read-due),
	}
}
