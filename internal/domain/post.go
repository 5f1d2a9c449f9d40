package domain

import "time"

// Post represents a single shared moment. Created by its owner profile;
// content is mutated only by the owner, while moderation actions (a
// friendship or relation ending) may shrink its audience.
type Post struct {
	// ID uniquely identifies the post.
	ID string

	// OwnerID is the creator's owner id.
	OwnerID string

	// OwnerName is a denormalized display name, captured at creation.
	OwnerName string

	// SharedOwnerIDs is the audience: the owner ids explicitly granted
	// visibility into this post, independent of the friend graph.
	SharedOwnerIDs []string

	// PostedAt is when the post was created.
	PostedAt time.Time

	// ExpectedAt is the nominal time the post was "supposed" to be
	// shared, filled asynchronously after creation from the day seed.
	// Nil until the session is established.
	ExpectedAt *time.Time

	FullTitle string
	Title     string
	Emoji     string
	Notes     string

	HasMatureContent bool

	// ImageData is the content payload, opaque to this core.
	ImageData []byte
}

// SharedWith reports whether id is in the post's audience.
func (p *Post) SharedWith(id string) bool {
	return ContainsID(p.SharedOwnerIDs, id)
}

// Clone returns a deep copy of the post.
func (p *Post) Clone() *Post {
	cp := *p
	cp.SharedOwnerIDs = append([]string(nil), p.SharedOwnerIDs...)
	cp.ImageData = append([]byte(nil), p.ImageData...)
	if p.ExpectedAt != nil {
		t := *p.ExpectedAt
		cp.ExpectedAt = &t
	}
	return &cp
}
