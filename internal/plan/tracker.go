package plan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store persists the single reading plan. Load returns ErrNoPlan when no plan
// is stored or the stored record is malformed.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, st State) error
	Clear(ctx context.Context) error
}

// Snapshot is everything a plan dashboard shows.
type Snapshot struct {
	Status     Status      `json:"status"`
	Plan       *State      `json:"plan,omitempty"`
	Progress   *Progress   `json:"progress,omitempty"`
	Assignment *Assignment `json:"assignment,omitempty"`
}

// Tracker is the only way presentation code reads or changes the plan. Every
// mutation reloads the stored state and recomputes from it before saving, so
// a stale view in one client cannot commit a stale assignment.
type Tracker struct {
	mu     sync.Mutex
	store  Store
	sched  *Scheduler
	now    func() time.Time
	logger *zap.Logger
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

func NewTracker(store Store, sched *Scheduler, logger *zap.Logger, opts ...TrackerOption) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{store: store, sched: sched, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Scheduler exposes the scheduler the tracker computes with.
func (t *Tracker) Scheduler() *Scheduler { return t.sched }

// load returns the stored plan, or nil when there is none.
func (t *Tracker) load(ctx context.Context) (*State, error) {
	st, err := t.store.Load(ctx)
	if errors.Is(err, ErrNoPlan) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading plan: %w", err)
	}
	if err := st.Validate(t.sched.Total()); err != nil {
		t.logger.Warn("Ignoring malformed plan", zap.Error(err))
		return nil, nil
	}
	return &st, nil
}

// Snapshot reports the plan, its progress and today's assignment.
func (t *Tracker) Snapshot(ctx context.Context) (Snapshot, error) {
	st, err := t.load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	now := t.now()
	a, status := t.sched.ComputeAssignment(st, now)
	snap := Snapshot{Status: status, Plan: st}
	if st != nil {
		p := t.sched.Progress(*st, now)
		snap.Progress = &p
	}
	if status == Active {
		snap.Assignment = &a
	}
	return snap, nil
}

// Start replaces any existing plan with a new one beginning now.
func (t *Tracker) Start(ctx context.Context, durationDays int) (State, error) {
	st, err := New(t.now(), durationDays)
	if err != nil {
		return State{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.store.Save(ctx, st); err != nil {
		return State{}, fmt.Errorf("saving plan: %w", err)
	}
	t.logger.Info("Plan started",
		zap.Int("duration_days", durationDays),
		zap.Float64("chapters_per_day", t.sched.ChaptersPerDay(durationDays)))
	return st, nil
}

// Reset deletes the plan.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing plan: %w", err)
	}
	t.logger.Info("Plan reset")
	return nil
}

// CompleteToday marks today's assignment, recomputed from the stored state,
// as read. It returns the new state and the assignment that was completed.
func (t *Tracker) CompleteToday(ctx context.Context) (State, Assignment, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, err := t.load(ctx)
	if err != nil {
		return State{}, Assignment{}, err
	}
	a, status := t.sched.ComputeAssignment(st, t.now())
	switch status {
	case NotStarted:
		return State{}, Assignment{}, ErrNoPlan
	case Completed:
		return *st, Assignment{}, ErrCompleted
	}

	next, err := t.sched.MarkAssignmentComplete(*st, a)
	if err != nil {
		return *st, a, err
	}
	if err := t.store.Save(ctx, next); err != nil {
		return *st, a, fmt.Errorf("saving plan: %w", err)
	}
	t.logger.Info("Assignment completed",
		zap.Stringer("from", a.Start),
		zap.Stringer("to", a.End),
		zap.Int("current", next.CurrentIndex))
	return next, a, nil
}

// IsTarget reports whether the chapter at globalIndex is the plan's next
// unread chapter. Without a plan nothing is a target.
func (t *Tracker) IsTarget(ctx context.Context, globalIndex int) (bool, error) {
	st, err := t.load(ctx)
	if err != nil || st == nil {
		return false, err
	}
	return t.sched.IsCurrentTarget(*st, globalIndex), nil
}

// MarkChapterRead advances the plan by one chapter if globalIndex is the
// current target. Any other chapter returns ErrNotTarget and leaves the plan
// unchanged.
func (t *Tracker) MarkChapterRead(ctx context.Context, globalIndex int) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, err := t.load(ctx)
	if err != nil {
		return State{}, err
	}
	if st == nil {
		return State{}, ErrNoPlan
	}
	if st.CurrentIndex >= t.sched.Total() {
		return *st, ErrCompleted
	}
	if !t.sched.IsCurrentTarget(*st, globalIndex) {
		return *st, fmt.Errorf("%w: chapter %d, plan is at %d", ErrNotTarget, globalIndex, st.CurrentIndex)
	}

	next := t.sched.AdvanceOneChapter(*st)
	if err := t.store.Save(ctx, next); err != nil {
		return *st, fmt.Errorf("saving plan: %w", err)
	}
	t.logger.Debug("Chapter read", zap.Int("chapter", globalIndex), zap.Int("current", next.CurrentIndex))
	return next, nil
}
