package domain

import "strconv"

// Profile is the identity-bound record for a single user. It owns the
// social edges (friends, blocks) and the local moderation state
// (hidden posts, mature-content preference).
type Profile struct {
	// OwnerID is the stable external identity of this profile, unique
	// across the whole graph.
	OwnerID string

	FirstName string
	LastName  string

	PhoneNumber int64
	Email       string

	// FriendIDs is the ordered set of owner ids this profile is friends
	// with. The edge is symmetric: if A lists B, B lists A, except
	// during the transient window between the two writes of a
	// friend-add or friend-remove.
	FriendIDs []string

	// BlockedIDs are the owner ids this profile has blocked.
	BlockedIDs []string

	// BlockingIDs are the owner ids that have blocked this profile.
	// Maintained as the inverse edge of BlockedIDs on the other side.
	BlockingIDs []string

	// HiddenPostIDs are post ids this profile suppressed locally.
	HiddenPostIDs []string

	AllowsMatureContent bool

	// ImageData is the profile picture payload, opaque to this core.
	ImageData []byte

	// MostRecentPostID points at the latest post this profile created.
	// It is a weak reference: it can dangle after a delete and is
	// recomputed by scanning the owner's remaining posts.
	MostRecentPostID string
}

// HasFriend reports whether this profile lists id as a friend.
func (p *Profile) HasFriend(id string) bool {
	return ContainsID(p.FriendIDs, id)
}

// HasBlocked reports whether this profile blocked id.
func (p *Profile) HasBlocked(id string) bool {
	return ContainsID(p.BlockedIDs, id)
}

// IsBlockedBy reports whether id blocked this profile.
func (p *Profile) IsBlockedBy(id string) bool {
	return ContainsID(p.BlockingIDs, id)
}

// HasHidden reports whether this profile hid the post with the given id.
func (p *Profile) HasHidden(postID string) bool {
	return ContainsID(p.HiddenPostIDs, postID)
}

// FullName returns the display name for this profile.
func (p *Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

// SearchableField compounds the name fields into the single string the
// search subscription matches against.
func (p *Profile) SearchableField() string {
	return p.FirstName + "." + p.LastName
}

// IsComplete reports whether the profile has been filled in enough to
// finish onboarding: both names set and a full-length phone number.
func (p *Profile) IsComplete() bool {
	return p.FirstName != "" &&
		p.LastName != "" &&
		len(strconv.FormatInt(p.PhoneNumber, 10)) >= 11
}

// Clone returns a deep copy of the profile. Repositories return clones
// so callers can mutate freely before writing back.
func (p *Profile) Clone() *Profile {
	cp := *p
	cp.FriendIDs = append([]string(nil), p.FriendIDs...)
	cp.BlockedIDs = append([]string(nil), p.BlockedIDs...)
	cp.BlockingIDs = append([]string(nil), p.BlockingIDs...)
	cp.HiddenPostIDs = append([]string(nil), p.HiddenPostIDs...)
	cp.ImageData = append([]byte(nil), p.ImageData...)
	return &cp
}
