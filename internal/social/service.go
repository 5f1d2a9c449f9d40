// Package social owns every mutation of the friend/block graph and the
// post lifecycle around it. Each (A, B) pair is in exactly one of
// three states: none, friends, or blocked, with blocked pre-empting
// friendship. Mutations are sequences of single-record writes with no
// cross-write atomicity, so every step checks current membership
// before writing; retrying a half-applied operation completes it
// instead of duplicating edges.
package social

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Brian-Masse/Shorter/internal/domain"
	"github.com/Brian-Masse/Shorter/internal/predicate"
)

// ErrBlocked is returned when a friend edge is requested for a pair
// that is in the blocked state.
var ErrBlocked = errors.New("pair is blocked")

// ErrNotPostOwner is returned when a caller tries to delete a post it
// does not own.
var ErrNotPostOwner = errors.New("not the post owner")

// GraphChanged announces that a profile's edges changed. Consumers
// (predicate recompilation, widget refresh) react to it instead of
// observing the records themselves.
type GraphChanged struct {
	OwnerID string
}

// subscriptionRefresher is the slice of the registry this service
// needs: rebuilding a named subscription after the predicate's shape
// changed.
type subscriptionRefresher interface {
	Refresh(ctx context.Context, name string, pred predicate.Predicate) error
}

// expectedTimer yields the nominal time-of-day for a date; used to
// annotate new posts with their expected timestamp.
type expectedTimer interface {
	TimeFor(date time.Time) time.Time
}

// Service is the social graph service for one session.
type Service struct {
	selfID   string
	profiles domain.ProfileRepository
	posts    domain.PostRepository
	subs     subscriptionRefresher
	timer    expectedTimer
	logger   *slog.Logger

	now func() time.Time

	mu       sync.Mutex
	handlers []func(GraphChanged)
}

// NewService creates a graph service scoped to the session identity
// selfID. timer may be nil during the pre-authentication window, in
// which case new posts are left without an expected timestamp.
func NewService(
	selfID string,
	profiles domain.ProfileRepository,
	posts domain.PostRepository,
	subs subscriptionRefresher,
	timer expectedTimer,
	logger *slog.Logger,
) *Service {
	return &Service{
		selfID:   selfID,
		profiles: profiles,
		posts:    posts,
		subs:     subs,
		timer:    timer,
		logger:   logger,
		now:      time.Now,
	}
}

// SelfID returns the session identity this service mutates on behalf of.
func (s *Service) SelfID() string {
	return s.selfID
}

// Self retrieves the session's own profile.
func (s *Service) Self(ctx context.Context) (*domain.Profile, error) {
	return s.profiles.GetProfile(ctx, s.selfID)
}

// OnGraphChanged registers a handler invoked synchronously after a
// graph mutation completes, once per touched profile.
func (s *Service) OnGraphChanged(fn func(GraphChanged)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, fn)
}

func (s *Service) emit(ownerIDs ...string) {
	s.mu.Lock()
	handlers := append([]func(GraphChanged){}, s.handlers...)
	s.mu.Unlock()

	for _, id := range ownerIDs {
		for _, fn := range handlers {
			fn(GraphChanged{OwnerID: id})
		}
	}
}

// refreshSubscriptions rebuilds the graph-shaped base subscriptions.
// Every mutation ends here because the ids a predicate names changed,
// not merely its parameters.
func (s *Service) refreshSubscriptions(ctx context.Context) error {
	preds := predicate.Compile(predicate.Snapshot{SelfID: s.selfID})
	for _, name := range []string{predicate.SubPosts, predicate.SubProfiles} {
		if err := s.subs.Refresh(ctx, name, preds[name]); err != nil {
			return fmt.Errorf("refresh %q: %w", name, err)
		}
	}
	return nil
}
