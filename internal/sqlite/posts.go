package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Brian-Masse/Shorter/internal/domain"
)

const postColumns = `
	id, owner_id, owner_name, shared_owner_ids, posted_at, expected_at,
	full_title, title, emoji, notes, has_mature_content, image_data`

func scanPost(row interface{ Scan(...any) error }) (*domain.Post, error) {
	var p domain.Post
	var sharedIDs string
	var expectedAt sql.NullTime

	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.OwnerName,
		&sharedIDs,
		&p.PostedAt,
		&expectedAt,
		&p.FullTitle,
		&p.Title,
		&p.Emoji,
		&p.Notes,
		&p.HasMatureContent,
		&p.ImageData,
	)
	if err != nil {
		return nil, err
	}

	if p.SharedOwnerIDs, err = decodeIDs(sharedIDs); err != nil {
		return nil, err
	}
	if expectedAt.Valid {
		t := expectedAt.Time
		p.ExpectedAt = &t
	}
	return &p, nil
}

// GetPost retrieves a post by id.
func (s *Store) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)

	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan post %q: %w", id, err)
	}
	return post, nil
}

// PutPost inserts or replaces a post.
func (s *Store) PutPost(ctx context.Context, post *domain.Post) error {
	sharedIDs, err := encodeIDs(post.SharedOwnerIDs)
	if err != nil {
		return err
	}

	var expectedAt sql.NullTime
	if post.ExpectedAt != nil {
		expectedAt = sql.NullTime{Time: *post.ExpectedAt, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO posts (`+postColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = excluded.owner_id,
			owner_name = excluded.owner_name,
			shared_owner_ids = excluded.shared_owner_ids,
			posted_at = excluded.posted_at,
			expected_at = excluded.expected_at,
			full_title = excluded.full_title,
			title = excluded.title,
			emoji = excluded.emoji,
			notes = excluded.notes,
			has_mature_content = excluded.has_mature_content,
			image_data = excluded.image_data`,
		post.ID,
		post.OwnerID,
		post.OwnerName,
		sharedIDs,
		post.PostedAt,
		expectedAt,
		post.FullTitle,
		post.Title,
		post.Emoji,
		post.Notes,
		post.HasMatureContent,
		post.ImageData,
	)
	if err != nil {
		return fmt.Errorf("write post %q: %w", post.ID, err)
	}
	return nil
}

// DeletePost removes a post by id. No-op if absent.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete post %q: %w", id, err)
	}
	return nil
}

func (s *Store) queryPosts(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

// PostsOwnedBy retrieves every post created by ownerID, newest first.
func (s *Store) PostsOwnedBy(ctx context.Context, ownerID string) ([]domain.Post, error) {
	return s.queryPosts(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE owner_id = ?
		ORDER BY posted_at DESC, id`, ownerID)
}

// PostsSharedWith retrieves every post whose audience names ownerID.
func (s *Store) PostsSharedWith(ctx context.Context, ownerID string) ([]domain.Post, error) {
	return s.queryPosts(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE EXISTS (
			SELECT 1 FROM json_each(posts.shared_owner_ids)
			WHERE json_each.value = ?
		)
		ORDER BY posted_at DESC, id`, ownerID)
}

// ListPosts retrieves the full materialized post set, newest first.
func (s *Store) ListPosts(ctx context.Context) ([]domain.Post, error) {
	return s.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY posted_at DESC, id`)
}
