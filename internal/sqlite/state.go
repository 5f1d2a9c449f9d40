package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Brian-Masse/Shorter/internal/domain"
)

// GetDaySeed retrieves the persisted seed table in position order.
func (s *Store) GetDaySeed(ctx context.Context) (domain.DaySeed, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT value FROM day_seed ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query day seed: %w", err)
	}
	defer rows.Close()

	var seed domain.DaySeed
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan day seed: %w", err)
		}
		seed = append(seed, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day seed: %w", err)
	}

	if len(seed) == 0 {
		return nil, fmt.Errorf("day seed: %w", domain.ErrNotFound)
	}
	return seed, nil
}

// PutDaySeed persists the seed table, replacing any prior one.
func (s *Store) PutDaySeed(ctx context.Context, seed domain.DaySeed) error {
	return s.execTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM day_seed`); err != nil {
			return fmt.Errorf("clear day seed: %w", err)
		}
		for i, v := range seed {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO day_seed (position, value) VALUES (?, ?)`, i, v)
			if err != nil {
				return fmt.Errorf("write day seed value %d: %w", i, err)
			}
		}
		return nil
	})
}

// ScheduledDays returns the tracked reminder day keys and firing times.
func (s *Store) ScheduledDays(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT day_key, firing_time FROM reminders`)
	if err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}
	defer rows.Close()

	days := make(map[string]time.Time)
	for rows.Next() {
		var key string
		var firing time.Time
		if err := rows.Scan(&key, &firing); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		days[key] = firing
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reminders: %w", err)
	}
	return days, nil
}

// SaveScheduledDay records (or replaces) the reminder for dayKey.
func (s *Store) SaveScheduledDay(ctx context.Context, dayKey string, firingTime time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (day_key, firing_time) VALUES (?, ?)
		ON CONFLICT (day_key) DO UPDATE SET firing_time = excluded.firing_time`,
		dayKey, firingTime)
	if err != nil {
		return fmt.Errorf("write reminder %s: %w", dayKey, err)
	}
	return nil
}

// DeleteScheduledDays forgets the reminders for the given day keys.
func (s *Store) DeleteScheduledDays(ctx context.Context, dayKeys []string) error {
	if len(dayKeys) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(dayKeys)), ", ")
	args := make([]any, len(dayKeys))
	for i, key := range dayKeys {
		args[i] = key
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM reminders WHERE day_key IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("delete reminders: %w", err)
	}
	return nil
}
