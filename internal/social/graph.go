package social

import (
	"context"
	"fmt"

	"github.com/Brian-Masse/Shorter/internal/domain"
)

// AddFriend writes the symmetric friend edge between a and b: first b
// into a's list, then a into b's. If the second write fails the pair
// is left as a half-edge; re-invoking detects the existing half and
// performs only the missing write, so the whole sequence is the unit
// of retry.
func (s *Service) AddFriend(ctx context.Context, a, b string) error {
	if a == b {
		return fmt.Errorf("add friend: cannot friend self")
	}

	pa, err := s.profiles.GetProfile(ctx, a)
	if err != nil {
		return fmt.Errorf("add friend: load %q: %w", a, err)
	}
	pb, err := s.profiles.GetProfile(ctx, b)
	if err != nil {
		return fmt.Errorf("add friend: load %q: %w", b, err)
	}

	if pa.HasBlocked(b) || pa.IsBlockedBy(b) {
		return fmt.Errorf("add friend %q-%q: %w", a, b, ErrBlocked)
	}

	if !pa.HasFriend(b) {
		pa.FriendIDs = domain.AppendID(pa.FriendIDs, b)
		if err := s.profiles.PutProfile(ctx, pa); err != nil {
			return fmt.Errorf("add friend: write %q: %w", a, err)
		}
	}
	if !pb.HasFriend(a) {
		pb.FriendIDs = domain.AppendID(pb.FriendIDs, a)
		if err := s.profiles.PutProfile(ctx, pb); err != nil {
			return fmt.Errorf("add friend: write %q: %w", b, err)
		}
	}

	s.logger.Info("friend edge added", "a", a, "b", b)
	s.emit(a, b)
	return s.refreshSubscriptions(ctx)
}

// AddFriends adds the symmetric edge between self and each id in turn.
func (s *Service) AddFriends(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := s.AddFriend(ctx, s.selfID, id); err != nil {
			return err
		}
	}
	return nil
}

// RemoveFriend severs the friend edge between a and b and strips each
// from the audience of the other's posts. The audience cascade removes
// the ids from the sharing lists only; the posts themselves survive.
func (s *Service) RemoveFriend(ctx context.Context, a, b string) error {
	if err := s.severFriendship(ctx, a, b); err != nil {
		return err
	}

	s.logger.Info("friend edge removed", "a", a, "b", b)
	s.emit(a, b)
	return s.refreshSubscriptions(ctx)
}

// severFriendship removes both halves of the edge and runs the
// audience cascade in both directions. Every step is membership
// checked, so a retry after a mid-sequence failure resumes where the
// previous attempt stopped.
func (s *Service) severFriendship(ctx context.Context, a, b string) error {
	pa, err := s.profiles.GetProfile(ctx, a)
	if err != nil {
		return fmt.Errorf("remove friend: load %q: %w", a, err)
	}
	pb, err := s.profiles.GetProfile(ctx, b)
	if err != nil {
		return fmt.Errorf("remove friend: load %q: %w", b, err)
	}

	if pa.HasFriend(b) {
		pa.FriendIDs = domain.RemoveID(pa.FriendIDs, b)
		if err := s.profiles.PutProfile(ctx, pa); err != nil {
			return fmt.Errorf("remove friend: write %q: %w", a, err)
		}
	}
	if pb.HasFriend(a) {
		pb.FriendIDs = domain.RemoveID(pb.FriendIDs, a)
		if err := s.profiles.PutProfile(ctx, pb); err != nil {
			return fmt.Errorf("remove friend: write %q: %w", b, err)
		}
	}

	if err := s.stripFromAudience(ctx, a, b); err != nil {
		return err
	}
	return s.stripFromAudience(ctx, b, a)
}

// stripFromAudience removes removeID from the audience of every post
// owned by ownerID that names it.
func (s *Service) stripFromAudience(ctx context.Context, ownerID, removeID string) error {
	posts, err := s.posts.PostsOwnedBy(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("audience cascade: list posts of %q: %w", ownerID, err)
	}

	for i := range posts {
		post := &posts[i]
		if !post.SharedWith(removeID) {
			continue
		}
		post.SharedOwnerIDs = domain.RemoveID(post.SharedOwnerIDs, removeID)
		if err := s.posts.PutPost(ctx, post); err != nil {
			return fmt.Errorf("audience cascade: write post %q: %w", post.ID, err)
		}
	}
	return nil
}

// BlockUser moves the (a, b) pair into the blocked state: the block
// edges are written first (b into a's blocked list, a into b's
// blocking list), then any friendship is severed with its audience
// cascade, then the feed subscriptions refresh so a's feed no longer
// matches b's content.
func (s *Service) BlockUser(ctx context.Context, a, b string) error {
	pa, err := s.profiles.GetProfile(ctx, a)
	if err != nil {
		return fmt.Errorf("block user: load %q: %w", a, err)
	}
	pb, err := s.profiles.GetProfile(ctx, b)
	if err != nil {
		return fmt.Errorf("block user: load %q: %w", b, err)
	}

	// Asymmetric field names, symmetric meaning: each side records the
	// block under its own key so its predicates can tell "who I
	// blocked" apart from "who blocked me".
	if !pa.HasBlocked(b) {
		pa.BlockedIDs = domain.AppendID(pa.BlockedIDs, b)
		if err := s.profiles.PutProfile(ctx, pa); err != nil {
			return fmt.Errorf("block user: write %q: %w", a, err)
		}
	}
	if !pb.IsBlockedBy(a) {
		pb.BlockingIDs = domain.AppendID(pb.BlockingIDs, a)
		if err := s.profiles.PutProfile(ctx, pb); err != nil {
			return fmt.Errorf("block user: write %q: %w", b, err)
		}
	}

	if err := s.severFriendship(ctx, a, b); err != nil {
		return err
	}

	s.logger.Info("user blocked", "by", a, "blocked", b)
	s.emit(a, b)
	return s.refreshSubscriptions(ctx)
}

// UnblockUser removes the block edges between a and b. The prior
// friendship and audience memberships are not restored; the users
// re-establish those explicitly.
func (s *Service) UnblockUser(ctx context.Context, a, b string) error {
	pa, err := s.profiles.GetProfile(ctx, a)
	if err != nil {
		return fmt.Errorf("unblock user: load %q: %w", a, err)
	}
	pb, err := s.profiles.GetProfile(ctx, b)
	if err != nil {
		return fmt.Errorf("unblock user: load %q: %w", b, err)
	}

	if pa.HasBlocked(b) {
		pa.BlockedIDs = domain.RemoveID(pa.BlockedIDs, b)
		if err := s.profiles.PutProfile(ctx, pa); err != nil {
			return fmt.Errorf("unblock user: write %q: %w", a, err)
		}
	}
	if pb.IsBlockedBy(a) {
		pb.BlockingIDs = domain.RemoveID(pb.BlockingIDs, a)
		if err := s.profiles.PutProfile(ctx, pb); err != nil {
			return fmt.Errorf("unblock user: write %q: %w", b, err)
		}
	}

	s.logger.Info("user unblocked", "by", a, "unblocked", b)
	s.emit(a, b)
	return s.refreshSubscriptions(ctx)
}
