// Package feed turns the locally materialized post set into the
// display-ready views. Every function here is pure: same inputs, same
// output, element for element, so recomputations triggered by sync
// invalidation are free of ordering surprises.
package feed

import (
	"sort"
	"time"

	"github.com/Brian-Masse/Shorter/internal/domain"
)

// maxCarouselPosts caps the "my posts" carousel view. The full feed
// view is uncapped.
const maxCarouselPosts = 10

// Options are the viewer-controlled toggles applied to the feed.
type Options struct {
	// IncludeMine keeps posts the viewer created.
	IncludeMine bool

	// IncludeShared keeps posts other profiles shared with the viewer.
	IncludeShared bool

	// PersonFilter, when set, keeps only posts from that owner. It
	// composes with the mine/shared toggles: a post must pass both.
	PersonFilter string
}

// Visible filters and orders the raw post set for the viewer. The
// steps run in a fixed order: blocked owners first (the local cache
// may still hold records from before a block took effect), then
// mature-content and hidden-post suppression, then the mine/shared
// toggles and the person filter, then the sort.
func Visible(posts []domain.Post, viewer *domain.Profile, opts Options) []domain.Post {
	out := make([]domain.Post, 0, len(posts))
	for _, post := range posts {
		if viewer.IsBlockedBy(post.OwnerID) || viewer.HasBlocked(post.OwnerID) {
			continue
		}
		if post.HasMatureContent && !viewer.AllowsMatureContent {
			continue
		}
		if viewer.HasHidden(post.ID) {
			continue
		}

		mine := post.OwnerID == viewer.OwnerID
		if mine && !opts.IncludeMine {
			continue
		}
		if !mine && !opts.IncludeShared {
			continue
		}

		if opts.PersonFilter != "" && post.OwnerID != opts.PersonFilter {
			continue
		}

		out = append(out, post)
	}

	sortNewestFirst(out)
	return out
}

// MyPosts returns the viewer's own posts, newest first, capped for the
// carousel view.
func MyPosts(posts []domain.Post, viewer *domain.Profile) []domain.Post {
	out := make([]domain.Post, 0, maxCarouselPosts)
	for _, post := range posts {
		if post.OwnerID == viewer.OwnerID {
			out = append(out, post)
		}
	}

	sortNewestFirst(out)
	if len(out) > maxCarouselPosts {
		out = out[:maxCarouselPosts]
	}
	return out
}

// ShouldShowPrompt reports whether the feed should prompt the viewer
// to post: true unless their newest post landed after the most recent
// nominal firing time. myPosts must be ordered newest first.
func ShouldShowPrompt(myPosts []domain.Post, lastFiring time.Time) bool {
	if len(myPosts) == 0 {
		return true
	}
	return !myPosts[0].PostedAt.After(lastFiring)
}

// sortNewestFirst orders posts by posted time descending, breaking
// ties by post id so the order is total.
func sortNewestFirst(posts []domain.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].PostedAt.Equal(posts[j].PostedAt) {
			return posts[i].PostedAt.After(posts[j].PostedAt)
		}
		return posts[i].ID < posts[j].ID
	})
}
