package reminder

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Brian-Masse/Shorter/internal/domain"
	"github.com/Brian-Masse/Shorter/internal/timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway records the OS-side notification registrations.
type fakeGateway struct {
	scheduled map[string]time.Time
	cancelled []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{scheduled: make(map[string]time.Time)}
}

func (g *fakeGateway) ScheduleLocalNotification(_ context.Context, id string, at time.Time, _ domain.NotificationPayload) error {
	g.scheduled[id] = at
	return nil
}

func (g *fakeGateway) CancelLocalNotifications(_ context.Context, ids []string) error {
	for _, id := range ids {
		delete(g.scheduled, id)
		g.cancelled = append(g.cancelled, id)
	}
	return nil
}

// fakeState is an in-memory day-key ledger.
type fakeState struct {
	days map[string]time.Time
}

func newFakeState() *fakeState {
	return &fakeState{days: make(map[string]time.Time)}
}

func (s *fakeState) ScheduledDays(context.Context) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(s.days))
	for k, v := range s.days {
		out[k] = v
	}
	return out, nil
}

func (s *fakeState) SaveScheduledDay(_ context.Context, key string, firing time.Time) error {
	s.days[key] = firing
	return nil
}

func (s *fakeState) DeleteScheduledDays(_ context.Context, keys []string) error {
	for _, k := range keys {
		delete(s.days, k)
	}
	return nil
}

func newTestPlanner(t *testing.T) (*Planner, *fakeGateway, *fakeState) {
	t.Helper()
	scheduler, err := timing.NewScheduler(domain.DaySeed{0.5, 0.1, 0.9}, time.UTC)
	require.NoError(t, err)

	gateway := newFakeGateway()
	state := newFakeState()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPlanner(scheduler, gateway, state, logger), gateway, state
}

var now = time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)

// TestScheduleWindow_Idempotent verifies scheduling the same window
// twice leaves exactly one reminder per day, keyed by day.
func TestScheduleWindow_Idempotent(t *testing.T) {
	planner, gateway, state := newTestPlanner(t)
	ctx := context.Background()

	require.NoError(t, planner.ScheduleWindow(ctx, now, WindowDays))
	require.NoError(t, planner.ScheduleWindow(ctx, now, WindowDays))

	assert.Len(t, gateway.scheduled, WindowDays)
	assert.Len(t, state.days, WindowDays)

	// Keys are calendar days starting at the from day.
	assert.Contains(t, gateway.scheduled, "2024-07-01")
	assert.Contains(t, gateway.scheduled, "2024-07-07")
	assert.NotContains(t, gateway.scheduled, "2024-07-08")
}

// TestScheduleWindow_OverlappingWindowsReplace verifies a window
// starting mid-way through the previous one re-keys the shared days
// instead of doubling them.
func TestScheduleWindow_OverlappingWindowsReplace(t *testing.T) {
	planner, gateway, _ := newTestPlanner(t)
	ctx := context.Background()

	require.NoError(t, planner.ScheduleWindow(ctx, now, WindowDays))
	require.NoError(t, planner.ScheduleWindow(ctx, now.AddDate(0, 0, 3), WindowDays))

	// Days 1-3 from the first window plus 4-10 from the second.
	assert.Len(t, gateway.scheduled, 10)
}

// TestNeedsRefresh covers the three staleness states.
func TestNeedsRefresh(t *testing.T) {
	planner, _, _ := newTestPlanner(t)
	ctx := context.Background()

	// Nothing tracked yet.
	stale, err := planner.NeedsRefresh(ctx, now)
	require.NoError(t, err)
	assert.True(t, stale)

	require.NoError(t, planner.ScheduleWindow(ctx, now, WindowDays))

	// Window starts today.
	stale, err = planner.NeedsRefresh(ctx, now)
	require.NoError(t, err)
	assert.False(t, stale)

	// Earliest tracked day has fallen behind.
	stale, err = planner.NeedsRefresh(ctx, now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, stale)
}

// TestClearAll cancels only the tracked reminders.
func TestClearAll(t *testing.T) {
	planner, gateway, state := newTestPlanner(t)
	ctx := context.Background()

	require.NoError(t, planner.ScheduleWindow(ctx, now, WindowDays))
	gateway.scheduled["not-ours"] = now

	require.NoError(t, planner.ClearAll(ctx))

	assert.Empty(t, state.days)
	assert.Len(t, gateway.cancelled, WindowDays)
	assert.Contains(t, gateway.scheduled, "not-ours")
}

// TestRefreshWindow rebuilds only when stale and shifts the window
// forward.
func TestRefreshWindow(t *testing.T) {
	planner, gateway, _ := newTestPlanner(t)
	ctx := context.Background()

	rebuilt, err := planner.RefreshWindow(ctx, now)
	require.NoError(t, err)
	assert.True(t, rebuilt)

	rebuilt, err = planner.RefreshWindow(ctx, now)
	require.NoError(t, err)
	assert.False(t, rebuilt, "fresh window left alone")

	later := now.AddDate(0, 0, 2)
	rebuilt, err = planner.RefreshWindow(ctx, later)
	require.NoError(t, err)
	assert.True(t, rebuilt)

	assert.Len(t, gateway.scheduled, WindowDays)
	assert.Contains(t, gateway.scheduled, "2024-07-03")
	assert.Contains(t, gateway.scheduled, "2024-07-09")
	assert.NotContains(t, gateway.scheduled, "2024-07-01", "old entries cancelled")
}
