// Package reminder keeps a rolling window of scheduled local
// reminders, one per calendar day, at the nominal times the timing
// scheduler derives. Scheduling is keyed by day key, so overlapping
// windows replace rather than duplicate, and teardown only touches
// reminders this planner issued.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Brian-Masse/Shorter/internal/domain"
	"github.com/Brian-Masse/Shorter/internal/timing"
)

// WindowDays is the size of the scheduled reminder window.
const WindowDays = 7

// Planner schedules and clears the reminder window.
type Planner struct {
	scheduler *timing.Scheduler
	gateway   domain.NotificationGateway
	state     domain.ReminderStateRepository
	logger    *slog.Logger
}

// NewPlanner creates a planner over the given scheduler, OS gateway,
// and persisted day-key state.
func NewPlanner(
	scheduler *timing.Scheduler,
	gateway domain.NotificationGateway,
	state domain.ReminderStateRepository,
	logger *slog.Logger,
) *Planner {
	return &Planner{
		scheduler: scheduler,
		gateway:   gateway,
		state:     state,
		logger:    logger,
	}
}

// ScheduleWindow registers one reminder for each of the next count
// calendar days starting at from's day. Idempotent: the reminder id is
// the day key, so re-scheduling an overlapping window replaces the
// existing registrations.
func (p *Planner) ScheduleWindow(ctx context.Context, from time.Time, count int) error {
	start := p.scheduler.StartOfDay(from)

	for i := 0; i < count; i++ {
		day := start.Add(time.Duration(i) * 24 * time.Hour)
		firing := p.scheduler.TimeFor(day)
		key := p.scheduler.DayKey(day)

		payload := domain.NotificationPayload{
			Title: "Time to share",
			Body:  fmt.Sprintf("Today's moment was expected at %s", firing.Format(time.Kitchen)),
		}

		if err := p.gateway.ScheduleLocalNotification(ctx, key, firing, payload); err != nil {
			return fmt.Errorf("schedule reminder %s: %w", key, err)
		}
		if err := p.state.SaveScheduledDay(ctx, key, firing); err != nil {
			return fmt.Errorf("record reminder %s: %w", key, err)
		}
	}

	p.logger.Info("reminder window scheduled", "from", p.scheduler.DayKey(from), "count", count)
	return nil
}

// NeedsRefresh reports whether the window has gone stale: true when no
// reminders are tracked, or when the earliest tracked day is strictly
// before now's calendar day.
func (p *Planner) NeedsRefresh(ctx context.Context, now time.Time) (bool, error) {
	days, err := p.state.ScheduledDays(ctx)
	if err != nil {
		return false, fmt.Errorf("load scheduled days: %w", err)
	}
	if len(days) == 0 {
		return true, nil
	}

	earliest := time.Time{}
	for _, firing := range days {
		if earliest.IsZero() || firing.Before(earliest) {
			earliest = firing
		}
	}
	return p.scheduler.StartOfDay(now).After(p.scheduler.StartOfDay(earliest)), nil
}

// ClearAll cancels every reminder this planner issued and forgets the
// tracked day keys. Reminders scheduled by anything else are left
// alone.
func (p *Planner) ClearAll(ctx context.Context) error {
	days, err := p.state.ScheduledDays(ctx)
	if err != nil {
		return fmt.Errorf("load scheduled days: %w", err)
	}
	if len(days) == 0 {
		return nil
	}

	keys := make([]string, 0, len(days))
	for key := range days {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if err := p.gateway.CancelLocalNotifications(ctx, keys); err != nil {
		return fmt.Errorf("cancel reminders: %w", err)
	}
	if err := p.state.DeleteScheduledDays(ctx, keys); err != nil {
		return fmt.Errorf("forget reminders: %w", err)
	}

	p.logger.Info("reminders cleared", "count", len(keys))
	return nil
}

// RefreshWindow rebuilds the window when it has gone stale: old
// entries cleared, a fresh WindowDays-day window written. Returns
// whether a rebuild happened.
func (p *Planner) RefreshWindow(ctx context.Context, now time.Time) (bool, error) {
	stale, err := p.NeedsRefresh(ctx, now)
	if err != nil {
		return false, err
	}
	if !stale {
		return false, nil
	}

	if err := p.ClearAll(ctx); err != nil {
		return false, err
	}
	if err := p.ScheduleWindow(ctx, now, WindowDays); err != nil {
		return false, err
	}
	return true, nil
}
