// Package subscription tracks the named predicate subscriptions this
// client holds against the sync collaborator. Local bookkeeping and
// the remote subscription set move together: a failed remote call
// leaves the local record untouched, so after any sequence of calls
// the remote set is exactly the set of currently upserted names.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Brian-Masse/Shorter/internal/domain"
	"github.com/Brian-Masse/Shorter/internal/predicate"
)

// Registry owns the client's subscription set. Operations on different
// names may run fully concurrently; operations on the same name are
// serialized, last write wins.
type Registry struct {
	transport domain.SubscriptionTransport
	logger    *slog.Logger

	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	active map[string]predicate.Predicate
}

// NewRegistry creates a registry over the given transport.
func NewRegistry(transport domain.SubscriptionTransport, logger *slog.Logger) *Registry {
	return &Registry{
		transport: transport,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
		active:    make(map[string]predicate.Predicate),
	}
}

// nameLock returns the mutex serializing operations on a single name.
func (r *Registry) nameLock(name string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[name]
	if !ok {
		l = &sync.Mutex{}
		r.locks[name] = l
	}
	return l
}

// Upsert registers the named subscription, replacing the predicate in
// place if the name is already held. Re-upserting a structurally equal
// predicate is a no-op with no remote round trip.
func (r *Registry) Upsert(ctx context.Context, name string, pred predicate.Predicate) error {
	l := r.nameLock(name)
	l.Lock()
	defer l.Unlock()
	return r.upsertLocked(ctx, name, pred)
}

func (r *Registry) upsertLocked(ctx context.Context, name string, pred predicate.Predicate) error {
	r.mu.Lock()
	existing, ok := r.active[name]
	r.mu.Unlock()

	if ok && existing.Equal(pred) {
		r.logger.Debug("subscription unchanged", "name", name)
		return nil
	}

	if err := r.transport.RegisterSubscription(ctx, name, pred.Description()); err != nil {
		return fmt.Errorf("register subscription %q: %w", name, err)
	}

	r.mu.Lock()
	r.active[name] = pred
	r.mu.Unlock()

	r.logger.Info("subscription registered", "name", name, "replaced", ok)
	return nil
}

// Remove retracts the named subscription. No-op if the name is not held.
func (r *Registry) Remove(ctx context.Context, name string) error {
	l := r.nameLock(name)
	l.Lock()
	defer l.Unlock()
	return r.removeLocked(ctx, name)
}

func (r *Registry) removeLocked(ctx context.Context, name string) error {
	r.mu.Lock()
	_, ok := r.active[name]
	r.mu.Unlock()
	if !ok {
		return nil
	}

	if err := r.transport.RetractSubscription(ctx, name); err != nil {
		return fmt.Errorf("retract subscription %q: %w", name, err)
	}

	r.mu.Lock()
	delete(r.active, name)
	r.mu.Unlock()

	r.logger.Info("subscription retracted", "name", name)
	return nil
}

// Refresh rebuilds the named subscription: retract, then register the
// new predicate. Used when the predicate changed shape rather than
// parameters, so an in-place replace is not enough. Both steps happen
// under the same per-name lock.
func (r *Registry) Refresh(ctx context.Context, name string, pred predicate.Predicate) error {
	l := r.nameLock(name)
	l.Lock()
	defer l.Unlock()

	if err := r.removeLocked(ctx, name); err != nil {
		return err
	}
	return r.upsertLocked(ctx, name, pred)
}

// RemoveAllExcept retracts every held subscription whose name is not
// in keep. Run on logout and on social-graph churn so screen-scoped
// ad-hoc subscriptions cannot accumulate across sessions. Retraction
// failures are joined and returned; the caller retries to completion.
func (r *Registry) RemoveAllExcept(ctx context.Context, keep []string) error {
	kept := make(map[string]struct{}, len(keep))
	for _, name := range keep {
		kept[name] = struct{}{}
	}

	var errs []error
	for _, name := range r.ActiveNames() {
		if _, ok := kept[name]; ok {
			continue
		}
		if err := r.Remove(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ActiveNames returns the held subscription names in sorted order.
func (r *Registry) ActiveNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.active))
	for name := range r.active {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Active returns the predicate held under name, if any.
func (r *Registry) Active(name string) (predicate.Predicate, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pred, ok := r.active[name]
	return pred, ok
}
