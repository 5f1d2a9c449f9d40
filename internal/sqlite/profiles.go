package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Brian-Masse/Shorter/internal/domain"
)

// GetProfile retrieves a profile by owner id.
func (s *Store) GetProfile(ctx context.Context, ownerID string) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT owner_id, first_name, last_name, phone_number, email,
		       friend_ids, blocked_ids, blocking_ids, hidden_post_ids,
		       allows_mature_content, image_data, most_recent_post_id
		FROM profiles WHERE owner_id = ?`, ownerID)

	var p domain.Profile
	var friendIDs, blockedIDs, blockingIDs, hiddenIDs string
	err := row.Scan(
		&p.OwnerID,
		&p.FirstName,
		&p.LastName,
		&p.PhoneNumber,
		&p.Email,
		&friendIDs,
		&blockedIDs,
		&blockingIDs,
		&hiddenIDs,
		&p.AllowsMatureContent,
		&p.ImageData,
		&p.MostRecentPostID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %q: %w", ownerID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile %q: %w", ownerID, err)
	}

	if p.FriendIDs, err = decodeIDs(friendIDs); err != nil {
		return nil, err
	}
	if p.BlockedIDs, err = decodeIDs(blockedIDs); err != nil {
		return nil, err
	}
	if p.BlockingIDs, err = decodeIDs(blockingIDs); err != nil {
		return nil, err
	}
	if p.HiddenPostIDs, err = decodeIDs(hiddenIDs); err != nil {
		return nil, err
	}
	return &p, nil
}

// PutProfile inserts or replaces a profile.
func (s *Store) PutProfile(ctx context.Context, profile *domain.Profile) error {
	friendIDs, err := encodeIDs(profile.FriendIDs)
	if err != nil {
		return err
	}
	blockedIDs, err := encodeIDs(profile.BlockedIDs)
	if err != nil {
		return err
	}
	blockingIDs, err := encodeIDs(profile.BlockingIDs)
	if err != nil {
		return err
	}
	hiddenIDs, err := encodeIDs(profile.HiddenPostIDs)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (
			owner_id, first_name, last_name, phone_number, email,
			friend_ids, blocked_ids, blocking_ids, hidden_post_ids,
			allows_mature_content, image_data, most_recent_post_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			phone_number = excluded.phone_number,
			email = excluded.email,
			friend_ids = excluded.friend_ids,
			blocked_ids = excluded.blocked_ids,
			blocking_ids = excluded.blocking_ids,
			hidden_post_ids = excluded.hidden_post_ids,
			allows_mature_content = excluded.allows_mature_content,
			image_data = excluded.image_data,
			most_recent_post_id = excluded.most_recent_post_id`,
		profile.OwnerID,
		profile.FirstName,
		profile.LastName,
		profile.PhoneNumber,
		profile.Email,
		friendIDs,
		blockedIDs,
		blockingIDs,
		hiddenIDs,
		profile.AllowsMatureContent,
		profile.ImageData,
		profile.MostRecentPostID,
	)
	if err != nil {
		return fmt.Errorf("write profile %q: %w", profile.OwnerID, err)
	}
	return nil
}

// DeleteProfile removes a profile by owner id. No-op if absent.
func (s *Store) DeleteProfile(ctx context.Context, ownerID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("delete profile %q: %w", ownerID, err)
	}
	return nil
}
