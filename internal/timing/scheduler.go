// Package timing derives the daily nominal "expected" time of day from
// the persisted day seed table. The derivation is pure arithmetic over
// the seed, so every device that holds the same table computes the
// same time for the same calendar day, with no network access.
package timing

import (
	"fmt"
	"math"
	"time"

	"github.com/Brian-Masse/Shorter/internal/domain"
)

const (
	// StartHour and EndHour bound the daily window the nominal time
	// falls in, in local hours.
	StartHour = 9
	EndHour   = 23

	// EpochSeconds is the fixed reference instant (Unix seconds). Day
	// indices count calendar days since the day this instant falls on.
	EpochSeconds = 1719028800

	secondsPerDay = 24 * 60 * 60
)

// launchDate returns the product-launch day in the given location.
// Dates before it are clamped so pre-launch timestamps cannot produce
// out-of-range lookups.
func launchDate(loc *time.Location) time.Time {
	return time.Date(2024, time.June, 22, 0, 0, 0, 0, loc)
}

// Scheduler computes nominal firing times over a fixed seed table.
type Scheduler struct {
	seed     domain.DaySeed
	epochDay time.Time
	launch   time.Time
	loc      *time.Location
}

// NewScheduler creates a scheduler over the given seed table,
// computing calendar days in loc (time.Local if nil).
func NewScheduler(seed domain.DaySeed, loc *time.Location) (*Scheduler, error) {
	if err := seed.Validate(); err != nil {
		return nil, fmt.Errorf("new scheduler: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}

	epoch := time.Unix(EpochSeconds, 0).In(loc)
	return &Scheduler{
		seed:     seed,
		epochDay: time.Date(epoch.Year(), epoch.Month(), epoch.Day(), 0, 0, 0, 0, loc),
		launch:   launchDate(loc),
		loc:      loc,
	}, nil
}

// TimeFor returns the nominal time of day for date's calendar day:
// the day's seed value, scaled into the [StartHour, EndHour) window,
// added to the day's local midnight. Truncated to whole minutes. Pure
// in the day: any two instants on the same calendar day map to the
// same result.
func (s *Scheduler) TimeFor(date time.Time) time.Time {
	if date.Before(s.launch) {
		date = s.launch
	}

	// Index from the calendar day, not the raw instant: every instant
	// of a day must share one seed index, whatever time of day the
	// epoch instant falls on. The noon anchor keeps the division whole
	// across DST shifts.
	day := s.StartOfDay(date)
	days := int(math.Floor(day.Add(12 * time.Hour).Sub(s.epochDay).Hours() / 24))
	value := s.seed.ValueAt(days)

	offset := time.Duration(value * float64(EndHour-StartHour) * float64(time.Hour))
	offset = offset.Truncate(time.Minute)

	base := time.Date(day.Year(), day.Month(), day.Day(), StartHour, 0, 0, 0, s.loc)
	return base.Add(offset)
}

// MostRecentFiringBefore returns the latest nominal time at or before
// now: today's if it has already passed, otherwise yesterday's. Lets
// callers answer "has today's prompt fired" without a log of past
// notifications.
func (s *Scheduler) MostRecentFiringBefore(now time.Time) time.Time {
	today := s.TimeFor(now)
	if !today.After(now) {
		return today
	}
	yesterday := s.StartOfDay(now).Add(-secondsPerDay * time.Second)
	return s.TimeFor(yesterday)
}

// StartOfDay returns local midnight of t's calendar day.
func (s *Scheduler) StartOfDay(t time.Time) time.Time {
	day := t.In(s.loc)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc)
}

// DayKey returns the calendar-day identifier reminders are keyed by.
func (s *Scheduler) DayKey(t time.Time) string {
	return t.In(s.loc).Format("2006-01-02")
}
