package plan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"bibleread/internal/canon"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memStore keeps the plan in memory.
type memStore struct {
	st      *State
	saveErr error
}

func (m *memStore) Load(context.Context) (State, error) {
	if m.st == nil {
		return State{}, ErrNoPlan
	}
	return *m.st, nil
}

func (m *memStore) Save(_ context.Context, st State) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.st = &st
	return nil
}

func (m *memStore) Clear(context.Context) error {
	m.st = nil
	return nil
}

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newTestTracker(t *testing.T, store Store) (*Tracker, *testClock) {
	t.Helper()
	clock := &testClock{now: planStart}
	tr := NewTracker(store, NewScheduler(canon.Default()), zaptest.NewLogger(t), WithClock(clock.Now))
	return tr, clock
}

func TestTrackerNotStarted(t *testing.T) {
	tr, _ := newTestTracker(t, &memStore{})
	ctx := context.Background()

	snap, err := tr.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, NotStarted, snap.Status)
	assert.Nil(t, snap.Plan)
	assert.Nil(t, snap.Assignment)

	_, _, err = tr.CompleteToday(ctx)
	assert.ErrorIs(t, err, ErrNoPlan)

	_, err = tr.MarkChapterRead(ctx, 0)
	assert.ErrorIs(t, err, ErrNoPlan)

	ok, err := tr.IsTarget(ctx, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTrackerStartValidatesDuration(t *testing.T) {
	store := &memStore{}
	tr, _ := newTestTracker(t, store)

	_, err := tr.Start(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)
	assert.Nil(t, store.st, "invalid plans are never stored")
}

func TestTrackerDailyFlow(t *testing.T) {
	store := &memStore{}
	tr, clock := newTestTracker(t, store)
	ctx := context.Background()

	_, err := tr.Start(ctx, 90)
	require.NoError(t, err)

	snap, err := tr.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, Active, snap.Status)
	assert.Equal(t, 0, snap.Assignment.Start.GlobalIndex)
	assert.Equal(t, 13, snap.Assignment.End.GlobalIndex)
	assert.Equal(t, 1, snap.Progress.Day)

	st, done, err := tr.CompleteToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, 14, done.Len())
	assert.Equal(t, 14, st.CurrentIndex)
	assert.Equal(t, 14, store.st.CurrentIndex)

	// Ahead of schedule: one extra chapter at a time.
	snap, err = tr.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Assignment.Len())

	// Next day the quota opens again.
	clock.now = clock.now.Add(25 * time.Hour)
	snap, err = tr.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 14, snap.Assignment.Start.GlobalIndex)
	assert.Equal(t, 26, snap.Assignment.End.GlobalIndex)
}

func TestTrackerMarkChapterRead(t *testing.T) {
	store := &memStore{}
	tr, _ := newTestTracker(t, store)
	ctx := context.Background()

	_, err := tr.Start(ctx, 90)
	require.NoError(t, err)

	ok, err := tr.IsTarget(ctx, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = tr.MarkChapterRead(ctx, 5)
	assert.ErrorIs(t, err, ErrNotTarget)
	assert.Equal(t, 0, store.st.CurrentIndex, "non-target chapters leave the plan alone")

	st, err := tr.MarkChapterRead(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, st.CurrentIndex)

	ok, err = tr.IsTarget(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTrackerCompletedPlan(t *testing.T) {
	store := &memStore{st: &State{StartDate: planStart, DurationDays: 90, CurrentIndex: 1188}}
	tr, _ := newTestTracker(t, store)
	ctx := context.Background()

	st, err := tr.MarkChapterRead(ctx, 1188)
	require.NoError(t, err)
	assert.Equal(t, 1189, st.CurrentIndex)

	snap, err := tr.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, Completed, snap.Status)
	assert.Equal(t, 100, snap.Progress.Percent)
	assert.Nil(t, snap.Assignment)

	_, _, err = tr.CompleteToday(ctx)
	assert.ErrorIs(t, err, ErrCompleted)
	_, err = tr.MarkChapterRead(ctx, 1189)
	assert.ErrorIs(t, err, ErrCompleted)
}

func TestTrackerTreatsMalformedPlanAsAbsent(t *testing.T) {
	store := &memStore{st: &State{StartDate: planStart, DurationDays: 0, CurrentIndex: 5}}
	tr, _ := newTestTracker(t, store)

	snap, err := tr.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NotStarted, snap.Status)
}

func TestTrackerSaveFailureKeepsState(t *testing.T) {
	boom := errors.New("disk full")
	store := &memStore{st: &State{StartDate: planStart, DurationDays: 90}, saveErr: boom}
	tr, _ := newTestTracker(t, store)

	_, _, err := tr.CompleteToday(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.st.CurrentIndex)
}

func TestTrackerReset(t *testing.T) {
	store := &memStore{st: &State{StartDate: planStart, DurationDays: 90, CurrentIndex: 40}}
	tr, _ := newTestTracker(t, store)

	require.NoError(t, tr.Reset(context.Background()))
	assert.Nil(t, store.st)
}
