package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/Brian-Masse/Shorter/internal/domain"
	"github.com/google/uuid"
)

// CreatePostInput carries the user-provided content for a new post.
type CreatePostInput struct {
	FullTitle        string
	Title            string
	Emoji            string
	Notes            string
	HasMatureContent bool
	ImageData        []byte
}

// CreatePost creates a post owned by the session identity. The
// audience defaults to the creator's friend list at creation time, and
// the owner's most-recent-post pointer moves to the new post. The
// expected timestamp is filled by a second write once the day seed is
// available.
func (s *Service) CreatePost(ctx context.Context, input CreatePostInput) (*domain.Post, error) {
	profile, err := s.Self(ctx)
	if err != nil {
		return nil, fmt.Errorf("create post: load profile: %w", err)
	}

	post := &domain.Post{
		ID:               uuid.NewString(),
		OwnerID:          s.selfID,
		OwnerName:        profile.FullName(),
		SharedOwnerIDs:   append([]string(nil), profile.FriendIDs...),
		PostedAt:         s.now(),
		FullTitle:        input.FullTitle,
		Title:            input.Title,
		Emoji:            input.Emoji,
		Notes:            input.Notes,
		HasMatureContent: input.HasMatureContent,
		ImageData:        input.ImageData,
	}

	if err := s.posts.PutPost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: write post: %w", err)
	}

	profile.MostRecentPostID = post.ID
	if err := s.profiles.PutProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("create post: update recent post: %w", err)
	}

	if s.timer != nil {
		expected := s.timer.TimeFor(post.PostedAt)
		post.ExpectedAt = &expected
		if err := s.posts.PutPost(ctx, post); err != nil {
			return nil, fmt.Errorf("create post: annotate expected time: %w", err)
		}
	}

	s.logger.Info("post created", "post_id", post.ID, "audience", len(post.SharedOwnerIDs))
	return post, nil
}

// DeletePost removes a post owned by the session identity. If the
// owner's most-recent-post pointer named it, the pointer is recomputed
// from the remaining posts; it is a weak reference, never trusted to
// stay valid on its own.
func (s *Service) DeletePost(ctx context.Context, postID string) error {
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("delete post: load %q: %w", postID, err)
	}
	if post.OwnerID != s.selfID {
		return fmt.Errorf("delete post %q: %w", postID, ErrNotPostOwner)
	}

	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return fmt.Errorf("delete post %q: %w", postID, err)
	}

	profile, err := s.Self(ctx)
	if err != nil {
		return fmt.Errorf("delete post: load profile: %w", err)
	}
	if profile.MostRecentPostID == postID {
		latest, err := s.latestOwnedPostID(ctx)
		if err != nil {
			return fmt.Errorf("delete post: recompute recent post: %w", err)
		}
		profile.MostRecentPostID = latest
		if err := s.profiles.PutProfile(ctx, profile); err != nil {
			return fmt.Errorf("delete post: update recent post: %w", err)
		}
	}

	s.logger.Info("post deleted", "post_id", postID)
	return nil
}

// latestOwnedPostID scans the session's remaining posts for the most
// recently posted one. Returns "" when none remain.
func (s *Service) latestOwnedPostID(ctx context.Context) (string, error) {
	posts, err := s.posts.PostsOwnedBy(ctx, s.selfID)
	if err != nil {
		return "", err
	}

	var latest *domain.Post
	for i := range posts {
		if latest == nil || posts[i].PostedAt.After(latest.PostedAt) {
			latest = &posts[i]
		}
	}
	if latest == nil {
		return "", nil
	}
	return latest.ID, nil
}

// SetPostHidden adds or removes a post from the session's locally
// suppressed set.
func (s *Service) SetPostHidden(ctx context.Context, postID string, hidden bool) error {
	profile, err := s.Self(ctx)
	if err != nil {
		return fmt.Errorf("hide post: load profile: %w", err)
	}

	if hidden {
		profile.HiddenPostIDs = domain.AppendID(profile.HiddenPostIDs, postID)
	} else {
		profile.HiddenPostIDs = domain.RemoveID(profile.HiddenPostIDs, postID)
	}
	if err := s.profiles.PutProfile(ctx, profile); err != nil {
		return fmt.Errorf("hide post: write profile: %w", err)
	}
	return nil
}

// ToggleMatureContent flips the session's mature-content preference and
// returns the new value.
func (s *Service) ToggleMatureContent(ctx context.Context) (bool, error) {
	profile, err := s.Self(ctx)
	if err != nil {
		return false, fmt.Errorf("toggle mature content: load profile: %w", err)
	}

	profile.AllowsMatureContent = !profile.AllowsMatureContent
	if err := s.profiles.PutProfile(ctx, profile); err != nil {
		return false, fmt.Errorf("toggle mature content: write profile: %w", err)
	}
	return profile.AllowsMatureContent, nil
}

// FillProfile populates the identity fields of the session's profile
// during onboarding and establishes the initial friend edges.
func (s *Service) FillProfile(ctx context.Context, firstName, lastName string, phoneNumber int64, friendIDs []string, imageData []byte) error {
	profile, err := s.Self(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		profile = &domain.Profile{OwnerID: s.selfID}
	} else if err != nil {
		return fmt.Errorf("fill profile: %w", err)
	}

	profile.FirstName = firstName
	profile.LastName = lastName
	profile.PhoneNumber = phoneNumber
	profile.ImageData = imageData

	if err := s.profiles.PutProfile(ctx, profile); err != nil {
		return fmt.Errorf("fill profile: write: %w", err)
	}

	return s.AddFriends(ctx, friendIDs)
}

// UpdateProfile rewrites the identity fields, including the email.
func (s *Service) UpdateProfile(ctx context.Context, firstName, lastName, email string, phoneNumber int64, imageData []byte) error {
	profile, err := s.Self(ctx)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	profile.Email = email
	if err := s.profiles.PutProfile(ctx, profile); err != nil {
		return fmt.Errorf("update profile: write email: %w", err)
	}

	return s.FillProfile(ctx, firstName, lastName, phoneNumber, nil, imageData)
}
