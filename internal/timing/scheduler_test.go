package timing

import (
	"math/rand"
	"testing"
	"time"

	"github.com/Brian-Masse/Shorter/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T, seed domain.DaySeed) *Scheduler {
	t.Helper()
	s, err := NewScheduler(seed, time.UTC)
	require.NoError(t, err)
	return s
}

// TestTimeFor_KnownSeed walks a short seed table through its window
// scaling and the modular wrap: 0.5 of a 14 hour window is 16:00,
// 0.1 is 10:24, and day 4 wraps back onto day 1's value.
func TestTimeFor_KnownSeed(t *testing.T) {
	s := newTestScheduler(t, domain.DaySeed{0.5, 0.1, 0.9})

	day0 := time.Date(2024, 6, 22, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 22, 16, 0, 0, 0, time.UTC), s.TimeFor(day0))

	day1 := day0.AddDate(0, 0, 1)
	assert.Equal(t, time.Date(2024, 6, 23, 10, 24, 0, 0, time.UTC), s.TimeFor(day1))

	day4 := day0.AddDate(0, 0, 4)
	assert.Equal(t, time.Date(2024, 6, 26, 10, 24, 0, 0, time.UTC), s.TimeFor(day4))
}

// TestTimeFor_PureInDay verifies any two instants on the same calendar
// day map to the same nominal time, including instants on either side
// of the epoch instant's time of day (04:00 UTC).
func TestTimeFor_PureInDay(t *testing.T) {
	s := newTestScheduler(t, domain.DaySeed{0.25, 0.75, 0.5})

	day := time.Date(2024, 8, 10, 0, 0, 1, 0, time.UTC)
	morning := s.TimeFor(day)
	evening := s.TimeFor(day.Add(23 * time.Hour))
	assert.Equal(t, morning, evening)

	beforeBoundary := s.TimeFor(time.Date(2024, 8, 10, 3, 59, 0, 0, time.UTC))
	afterBoundary := s.TimeFor(time.Date(2024, 8, 10, 4, 1, 0, 0, time.UTC))
	assert.Equal(t, beforeBoundary, afterBoundary)
	assert.Equal(t, morning, afterBoundary)
}

// TestTimeFor_WindowBounds verifies seed extremes stay inside the
// [9:00, 23:00) window.
func TestTimeFor_WindowBounds(t *testing.T) {
	day := time.Date(2024, 6, 22, 12, 0, 0, 0, time.UTC)

	low := newTestScheduler(t, domain.DaySeed{0})
	assert.Equal(t, 9, low.TimeFor(day).Hour())

	high := newTestScheduler(t, domain.DaySeed{0.999})
	got := high.TimeFor(day)
	assert.Equal(t, 22, got.Hour())
	assert.Equal(t, 59, got.Minute())
}

// TestTimeFor_ClampsPreLaunchDates verifies timestamps before launch
// all resolve to the launch day's result instead of probing negative
// day indices arbitrarily far back.
func TestTimeFor_ClampsPreLaunchDates(t *testing.T) {
	s := newTestScheduler(t, domain.DaySeed{0.5, 0.1, 0.9})

	launch := time.Date(2024, 6, 22, 0, 0, 0, 0, time.UTC)
	atLaunch := s.TimeFor(launch)
	assert.Equal(t, 2024, atLaunch.Year())
	assert.Equal(t, time.June, atLaunch.Month())
	assert.Equal(t, 22, atLaunch.Day())

	for _, early := range []time.Time{
		launch.AddDate(0, 0, -1),
		launch.AddDate(-2, 0, 0),
		time.Unix(0, 0).UTC(),
	} {
		assert.Equal(t, atLaunch, s.TimeFor(early), "input %v", early)
	}
}

// TestTimeFor_DeterministicAcrossInstances verifies two schedulers
// built from the same seed agree on every day of a 1000 day span.
func TestTimeFor_DeterministicAcrossInstances(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seed := domain.GenerateDaySeed(rng)

	s1 := newTestScheduler(t, seed)
	s2 := newTestScheduler(t, append(domain.DaySeed(nil), seed...))

	day := time.Date(2024, 6, 22, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 1000; i++ {
		got1 := s1.TimeFor(day)
		got2 := s2.TimeFor(day)
		require.Equal(t, got1, got2, "day %d", i)

		require.True(t, got1.Hour() >= StartHour && got1.Hour() < EndHour, "day %d out of window: %v", i, got1)
		day = day.AddDate(0, 0, 1)
	}
}

// TestMostRecentFiringBefore picks today's firing once it has passed
// and yesterday's before that.
func TestMostRecentFiringBefore(t *testing.T) {
	// Firings: 16:00 on the 22nd, 10:24 on the 23rd.
	s := newTestScheduler(t, domain.DaySeed{0.5, 0.1, 0.9})

	before := time.Date(2024, 6, 23, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 22, 16, 0, 0, 0, time.UTC), s.MostRecentFiringBefore(before))

	after := time.Date(2024, 6, 23, 11, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 23, 10, 24, 0, 0, time.UTC), s.MostRecentFiringBefore(after))

	exact := time.Date(2024, 6, 23, 10, 24, 0, 0, time.UTC)
	assert.Equal(t, exact, s.MostRecentFiringBefore(exact))
}

// TestNewScheduler_RejectsInvalidSeed covers the empty and
// out-of-range seed tables.
func TestNewScheduler_RejectsInvalidSeed(t *testing.T) {
	_, err := NewScheduler(nil, time.UTC)
	assert.Error(t, err)

	_, err = NewScheduler(domain.DaySeed{0.5, 1.5}, time.UTC)
	assert.Error(t, err)
}

// TestDayKey formats the calendar day in the scheduler's location.
func TestDayKey(t *testing.T) {
	s := newTestScheduler(t, domain.DaySeed{0.5})
	assert.Equal(t, "2024-06-22", s.DayKey(time.Date(2024, 6, 22, 23, 59, 0, 0, time.UTC)))
}
