package predicate

import "github.com/Brian-Masse/Shorter/internal/domain"

// Names of the subscriptions this core maintains. The base set is
// installed for the whole session; the others are screen-scoped and
// must be torn down when the screen that created them goes away.
const (
	SubPosts         = "shorterPostQuery"
	SubProfiles      = "shorterProfileQuery"
	SubTiming        = "timingManagerQuery"
	SubBlockedUsers  = "blockedUsersQuery"
	SubProfileSearch = "profileSearchQuery"
)

// BaseNames returns the session-lifetime subscription names.
func BaseNames() []string {
	return []string{SubPosts, SubProfiles, SubTiming}
}

// Snapshot is the compiler input: the identity the current session
// runs under. An empty SelfID means the pre-authentication window.
type Snapshot struct {
	SelfID string
}

// Compile derives the base subscription predicates from the session
// snapshot. It is a pure function: identical snapshots always yield
// structurally equal predicates, which the registry relies on for its
// no-op check. A snapshot with no identity yields deny-all predicates
// rather than an error, since compilation legitimately runs before
// authentication completes.
func Compile(snap Snapshot) map[string]Predicate {
	if snap.SelfID == "" {
		return map[string]Predicate{
			SubPosts:    MatchNone(),
			SubProfiles: MatchNone(),
			SubTiming:   MatchNone(),
		}
	}
	return map[string]Predicate{
		// The feed: posts I created, or posts whose audience names me.
		SubPosts: Or(
			Equals(FieldOwnerID, snap.SelfID),
			Contains(FieldSharedOwnerIDs, snap.SelfID),
		),
		// Profiles I may see: my own, or anyone who lists me as a friend.
		SubProfiles: Or(
			Equals(FieldOwnerID, snap.SelfID),
			Contains(FieldFriendIDs, snap.SelfID),
		),
		// The canonical day seed, authored once by the reference profile.
		SubTiming: Equals(FieldSeedAuthor, domain.SeedAuthorID),
	}
}

// CompileBlockedUsers derives the screen-scoped predicate for the
// blocked-users page: profiles that this session's identity blocked,
// i.e. whose inverse block edge names us.
func CompileBlockedUsers(snap Snapshot) Predicate {
	if snap.SelfID == "" {
		return MatchNone()
	}
	return Contains(FieldBlockingIDs, snap.SelfID)
}

// CompileProfileSearch derives the screen-scoped predicate for a
// search-by-name query over the compound searchable field.
func CompileProfileSearch(snap Snapshot, query string) Predicate {
	if snap.SelfID == "" || query == "" {
		return MatchNone()
	}
	return HasPrefix(FieldSearchable, query)
}
