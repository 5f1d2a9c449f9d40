package syncclient

import (
	"time"

	"github.com/Brian-Masse/Shorter/internal/domain"
)

// frame is the raw JSON envelope on the sync channel. Control frames
// (register, retract, list) carry an id and are answered by an ack or
// subscriptions frame with the same id; change frames arrive unasked
// whenever a record matching an active subscription changes.
type frame struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Predicate string `json:"predicate,omitempty"`

	Names []string `json:"names,omitempty"`
	Error string   `json:"error,omitempty"`

	Collection string         `json:"collection,omitempty"`
	Operation  string         `json:"operation,omitempty"`
	Profile    *profileRecord `json:"profile,omitempty"`
	Post       *postRecord    `json:"post,omitempty"`
	Seed       *seedRecord    `json:"seed,omitempty"`
	RecordID   string         `json:"recordId,omitempty"`
}

const (
	frameRegister      = "register"
	frameRetract       = "retract"
	frameList          = "list"
	frameAck           = "ack"
	frameSubscriptions = "subscriptions"
	frameChange        = "change"
)

const (
	collectionProfiles = "profiles"
	collectionPosts    = "posts"
	collectionTiming   = "timing"

	opUpsert = "upsert"
	opDelete = "delete"
)

// profileRecord is the wire form of a synced profile.
type profileRecord struct {
	OwnerID             string   `json:"ownerId"`
	FirstName           string   `json:"firstName"`
	LastName            string   `json:"lastName"`
	PhoneNumber         int64    `json:"phoneNumber"`
	Email               string   `json:"email"`
	FriendIDs           []string `json:"friendIds"`
	BlockedIDs          []string `json:"blockedIds"`
	BlockingIDs         []string `json:"blockingIds"`
	HiddenPostIDs       []string `json:"hiddenPostIds"`
	AllowsMatureContent bool     `json:"allowsMatureContent"`
	ImageData           []byte   `json:"imageData,omitempty"`
	MostRecentPostID    string   `json:"mostRecentPostId"`
}

func (r *profileRecord) toDomain() *domain.Profile {
	return &domain.Profile{
		OwnerID:             r.OwnerID,
		FirstName:           r.FirstName,
		LastName:            r.LastName,
		PhoneNumber:         r.PhoneNumber,
		Email:               r.Email,
		FriendIDs:           r.FriendIDs,
		BlockedIDs:          r.BlockedIDs,
		BlockingIDs:         r.BlockingIDs,
		HiddenPostIDs:       r.HiddenPostIDs,
		AllowsMatureContent: r.AllowsMatureContent,
		ImageData:           r.ImageData,
		MostRecentPostID:    r.MostRecentPostID,
	}
}

// postRecord is the wire form of a synced post.
type postRecord struct {
	ID               string     `json:"id"`
	OwnerID          string     `json:"ownerId"`
	OwnerName        string     `json:"ownerName"`
	SharedOwnerIDs   []string   `json:"sharedOwnerIds"`
	PostedAt         time.Time  `json:"postedAt"`
	ExpectedAt       *time.Time `json:"expectedAt,omitempty"`
	FullTitle        string     `json:"fullTitle"`
	Title            string     `json:"title"`
	Emoji            string     `json:"emoji"`
	Notes            string     `json:"notes"`
	HasMatureContent bool       `json:"hasMatureContent"`
	ImageData        []byte     `json:"imageData,omitempty"`
}

func (r *postRecord) toDomain() *domain.Post {
	return &domain.Post{
		ID:               r.ID,
		OwnerID:          r.OwnerID,
		OwnerName:        r.OwnerName,
		SharedOwnerIDs:   r.SharedOwnerIDs,
		PostedAt:         r.PostedAt,
		ExpectedAt:       r.ExpectedAt,
		FullTitle:        r.FullTitle,
		Title:            r.Title,
		Emoji:            r.Emoji,
		Notes:            r.Notes,
		HasMatureContent: r.HasMatureContent,
		ImageData:        r.ImageData,
	}
}

// seedRecord is the wire form of the canonical day seed table.
type seedRecord struct {
	Author string    `json:"author"`
	Values []float64 `json:"values"`
}
