// Package session ties the per-login lifecycle together: establishing
// the base subscriptions, ensuring a profile record exists, opening
// and closing screen-scoped subscriptions, and tearing everything down
// on logout.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Brian-Masse/Shorter/internal/domain"
	"github.com/Brian-Masse/Shorter/internal/predicate"
	"github.com/Brian-Masse/Shorter/internal/reminder"
	"github.com/Brian-Masse/Shorter/internal/subscription"
)

// Session is the per-login context object passed to all operations,
// replacing any notion of a process-wide singleton so multi-account
// and test scenarios stay tractable.
type Session struct {
	ownerID  string
	email    string
	registry *subscription.Registry
	planner  *reminder.Planner
	profiles domain.ProfileRepository
	logger   *slog.Logger
}

// New creates a session for the authenticated identity.
func New(
	ownerID, email string,
	registry *subscription.Registry,
	planner *reminder.Planner,
	profiles domain.ProfileRepository,
	logger *slog.Logger,
) *Session {
	return &Session{
		ownerID:  ownerID,
		email:    email,
		registry: registry,
		planner:  planner,
		profiles: profiles,
		logger:   logger,
	}
}

// Establish brings the subscription set into the session's base state.
// Stray ad-hoc subscriptions from a previous session are retracted
// first, or screen-scoped queries accumulate without bound. Then the
// base predicates are compiled and registered, and a template profile
// is created if this identity has none yet.
func (s *Session) Establish(ctx context.Context) error {
	if err := s.registry.RemoveAllExcept(ctx, predicate.BaseNames()); err != nil {
		return fmt.Errorf("establish session: clear stray subscriptions: %w", err)
	}

	preds := predicate.Compile(predicate.Snapshot{SelfID: s.ownerID})
	for _, name := range predicate.BaseNames() {
		if err := s.registry.Upsert(ctx, name, preds[name]); err != nil {
			return fmt.Errorf("establish session: %w", err)
		}
	}

	if err := s.ensureProfile(ctx); err != nil {
		return err
	}

	s.logger.Info("session established", "owner_id", s.ownerID)
	return nil
}

// ensureProfile creates a template profile on first login.
func (s *Session) ensureProfile(ctx context.Context) error {
	_, err := s.profiles.GetProfile(ctx, s.ownerID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("establish session: load profile: %w", err)
	}

	template := &domain.Profile{OwnerID: s.ownerID, Email: s.email}
	if err := s.profiles.PutProfile(ctx, template); err != nil {
		return fmt.Errorf("establish session: create template profile: %w", err)
	}
	s.logger.Info("template profile created", "owner_id", s.ownerID)
	return nil
}

// OpenBlockedUsers installs the screen-scoped subscription for the
// blocked-users page.
func (s *Session) OpenBlockedUsers(ctx context.Context) error {
	pred := predicate.CompileBlockedUsers(predicate.Snapshot{SelfID: s.ownerID})
	return s.registry.Upsert(ctx, predicate.SubBlockedUsers, pred)
}

// CloseBlockedUsers retracts the blocked-users subscription when the
// page goes away. A screen that forgets this leaks a subscription.
func (s *Session) CloseBlockedUsers(ctx context.Context) error {
	return s.registry.Remove(ctx, predicate.SubBlockedUsers)
}

// SearchProfiles replaces the screen-scoped search subscription with
// one matching the given name prefix.
func (s *Session) SearchProfiles(ctx context.Context, query string) error {
	pred := predicate.CompileProfileSearch(predicate.Snapshot{SelfID: s.ownerID}, query)
	return s.registry.Upsert(ctx, predicate.SubProfileSearch, pred)
}

// EndSearch retracts the search subscription.
func (s *Session) EndSearch(ctx context.Context) error {
	return s.registry.Remove(ctx, predicate.SubProfileSearch)
}

// Teardown runs the logout sequence: scheduled reminders cleared, then
// every subscription outside the base set retracted. Callers retry
// until it succeeds so the next session starts from a bounded set.
func (s *Session) Teardown(ctx context.Context) error {
	// planner is nil when the host platform owns reminder teardown.
	if s.planner != nil {
		if err := s.planner.ClearAll(ctx); err != nil {
			return fmt.Errorf("teardown session: %w", err)
		}
	}
	if err := s.registry.RemoveAllExcept(ctx, predicate.BaseNames()); err != nil {
		return fmt.Errorf("teardown session: %w", err)
	}

	s.logger.Info("session torn down", "owner_id", s.ownerID)
	return nil
}
