package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bibleread/internal/plan"
)

// Plans is the plan.Store backed by the reading_plan table.
type Plans struct {
	d *DB
}

var _ plan.Store = (*Plans)(nil)

// Plans returns the plan store of d.
func (d *DB) Plans() *Plans { return &Plans{d: d} }

// Load returns the stored plan. A missing row, or a row that cannot be read
// back as a plan, yields plan.ErrNoPlan.
func (p *Plans) Load(ctx context.Context) (plan.State, error) {
	var start sql.NullString
	var duration, current sql.NullInt64
	err := p.d.db.QueryRowContext(ctx,
		`SELECT start_date, duration_days, current_index FROM reading_plan WHERE id = 1`,
	).Scan(&start, &duration, &current)
	if errors.Is(err, sql.ErrNoRows) {
		return plan.State{}, plan.ErrNoPlan
	}
	if err != nil {
		return plan.State{}, fmt.Errorf("failed to load plan: %w", err)
	}

	startDate, err := plan.ParseStartDate(nullStringOr(start, ""))
	if err != nil {
		p.d.logger.Warn("Stored plan has a malformed start date", zap.Error(err))
		return plan.State{}, plan.ErrNoPlan
	}
	return plan.State{
		StartDate:    startDate,
		DurationDays: nullInt64Or(duration, 0),
		CurrentIndex: nullInt64Or(current, -1),
	}, nil
}

// Save replaces the stored plan.
func (p *Plans) Save(ctx context.Context, st plan.State) error {
	_, err := p.d.db.ExecContext(ctx, `
		INSERT INTO reading_plan (id, start_date, duration_days, current_index, updated_at)
		VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			start_date = excluded.start_date,
			duration_days = excluded.duration_days,
			current_index = excluded.current_index,
			updated_at = CURRENT_TIMESTAMP
	`, st.StartDate.UTC().Format(time.RFC3339Nano), st.DurationDays, st.CurrentIndex)
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

// Clear deletes the stored plan.
func (p *Plans) Clear(ctx context.Context) error {
	if _, err := p.d.db.ExecContext(ctx, `DELETE FROM reading_plan`); err != nil {
		return fmt.Errorf("failed to clear plan: %w", err)
	}
	return nil
}
