package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// ProfileRepository defines persistence operations for profiles. The
// backing store is the locally materialized collection kept in step
// with the sync collaborator, so writes may fail like remote writes.
type ProfileRepository interface {
	// GetProfile retrieves a profile by owner id. Returns ErrNotFound
	// if no such profile is materialized.
	GetProfile(ctx context.Context, ownerID string) (*Profile, error)

	// PutProfile inserts or replaces a profile.
	PutProfile(ctx context.Context, profile *Profile) error

	// DeleteProfile drops a profile from the local materialization,
	// e.g. when it stops matching any active subscription. No-op if
	// absent.
	DeleteProfile(ctx context.Context, ownerID string) error
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	// GetPost retrieves a post by id. Returns ErrNotFound if absent.
	GetPost(ctx context.Context, id string) (*Post, error)

	// PutPost inserts or replaces a post.
	PutPost(ctx context.Context, post *Post) error

	// DeletePost removes a post by id. No-op if absent.
	DeletePost(ctx context.Context, id string) error

	// PostsOwnedBy retrieves every post created by ownerID.
	PostsOwnedBy(ctx context.Context, ownerID string) ([]Post, error)

	// PostsSharedWith retrieves every post whose audience names ownerID.
	PostsSharedWith(ctx context.Context, ownerID string) ([]Post, error)

	// ListPosts retrieves the full materialized post set, used as a
	// snapshot by the visibility filter on each recomputation.
	ListPosts(ctx context.Context) ([]Post, error)
}

// SeedRepository defines persistence for the day seed table.
type SeedRepository interface {
	// GetDaySeed retrieves the persisted seed table. Returns
	// ErrNotFound if it has never been written.
	GetDaySeed(ctx context.Context) (DaySeed, error)

	// PutDaySeed persists the seed table, replacing any prior one.
	PutDaySeed(ctx context.Context, seed DaySeed) error
}

// ReminderStateRepository tracks which calendar days currently have a
// scheduled reminder, keyed by day key. The planner relies on this set
// instead of querying the OS notification list, so it never touches
// reminders it did not create.
type ReminderStateRepository interface {
	// ScheduledDays returns the day keys with a scheduled reminder and
	// their firing times.
	ScheduledDays(ctx context.Context) (map[string]time.Time, error)

	// SaveScheduledDay records (or replaces) the reminder for dayKey.
	SaveScheduledDay(ctx context.Context, dayKey string, firingTime time.Time) error

	// DeleteScheduledDays forgets the reminders for the given day keys.
	DeleteScheduledDays(ctx context.Context, dayKeys []string) error
}

// SubscriptionTransport is the outbound surface of the sync
// collaborator. These three primitives are the only remote operations
// the subscription registry needs.
type SubscriptionTransport interface {
	// RegisterSubscription installs or replaces the named server-side
	// subscription with the given predicate description.
	RegisterSubscription(ctx context.Context, name, predicateDescription string) error

	// RetractSubscription removes the named subscription.
	RetractSubscription(ctx context.Context, name string) error

	// ListActiveSubscriptions returns the names currently registered
	// remotely.
	ListActiveSubscriptions(ctx context.Context) ([]string, error)
}

// NotificationPayload is the user-facing content of a local reminder.
type NotificationPayload struct {
	Title string
	Body  string
}

// NotificationGateway is the outbound surface of the OS reminder
// service.
type NotificationGateway interface {
	// ScheduleLocalNotification registers one local reminder. Calling
	// it again with the same id replaces the previous registration.
	ScheduleLocalNotification(ctx context.Context, id string, firingTime time.Time, payload NotificationPayload) error

	// CancelLocalNotifications removes the reminders with the given ids.
	CancelLocalNotifications(ctx context.Context, ids []string) error
}
