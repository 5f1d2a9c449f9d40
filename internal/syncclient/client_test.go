package syncclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Brian-Masse/Shorter/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStores is an in-memory landing zone for the change feed.
type memStores struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
	posts    map[string]*domain.Post
	seed     domain.DaySeed
}

func newMemStores() *memStores {
	return &memStores{
		profiles: make(map[string]*domain.Profile),
		posts:    make(map[string]*domain.Post),
	}
}

func (m *memStores) stores() Stores {
	return Stores{Profiles: m, Posts: m, Seeds: m}
}

func (m *memStores) GetProfile(_ context.Context, ownerID string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[ownerID]
	if !ok {
		return nil, fmt.Errorf("profile %q: %w", ownerID, domain.ErrNotFound)
	}
	return p.Clone(), nil
}

func (m *memStores) PutProfile(_ context.Context, profile *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.OwnerID] = profile.Clone()
	return nil
}

func (m *memStores) DeleteProfile(_ context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, ownerID)
	return nil
}

func (m *memStores) GetPost(_ context.Context, id string) (*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %q: %w", id, domain.ErrNotFound)
	}
	return p.Clone(), nil
}

func (m *memStores) PutPost(_ context.Context, post *domain.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[post.ID] = post.Clone()
	return nil
}

func (m *memStores) DeletePost(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.posts, id)
	return nil
}

func (m *memStores) PostsOwnedBy(context.Context, string) ([]domain.Post, error) { return nil, nil }
func (m *memStores) PostsSharedWith(context.Context, string) ([]domain.Post, error) {
	return nil, nil
}
func (m *memStores) ListPosts(context.Context) ([]domain.Post, error) { return nil, nil }

func (m *memStores) GetDaySeed(context.Context) (domain.DaySeed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seed == nil {
		return nil, fmt.Errorf("day seed: %w", domain.ErrNotFound)
	}
	return m.seed, nil
}

func (m *memStores) PutDaySeed(_ context.Context, seed domain.DaySeed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seed = seed
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestApplyChange_Profiles covers upsert and delete on the profiles
// collection.
func TestApplyChange_Profiles(t *testing.T) {
	stores := newMemStores()
	c := NewClient("ws://unused", stores.stores(), testLogger())
	ctx := context.Background()

	err := c.applyChange(ctx, frame{
		Type:       frameChange,
		Collection: collectionProfiles,
		Operation:  opUpsert,
		Profile:    &profileRecord{OwnerID: "alice", FirstName: "Alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", stores.profiles["alice"].FirstName)

	err = c.applyChange(ctx, frame{
		Type:       frameChange,
		Collection: collectionProfiles,
		Operation:  opDelete,
		RecordID:   "alice",
	})
	require.NoError(t, err)
	assert.NotContains(t, stores.profiles, "alice")
}

// TestApplyChange_SeedAuthorGate verifies only the canonical author's
// seed table is accepted; others are dropped without error so the
// stream keeps flowing.
func TestApplyChange_SeedAuthorGate(t *testing.T) {
	stores := newMemStores()
	c := NewClient("ws://unused", stores.stores(), testLogger())
	ctx := context.Background()

	err := c.applyChange(ctx, frame{
		Type:       frameChange,
		Collection: collectionTiming,
		Operation:  opUpsert,
		Seed:       &seedRecord{Author: "impostor", Values: []float64{0.1}},
	})
	require.NoError(t, err)
	assert.Nil(t, stores.seed)

	err = c.applyChange(ctx, frame{
		Type:       frameChange,
		Collection: collectionTiming,
		Operation:  opUpsert,
		Seed:       &seedRecord{Author: domain.SeedAuthorID, Values: []float64{0.1, 0.2}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DaySeed{0.1, 0.2}, stores.seed)
}

// TestApplyChange_Malformed rejects frames missing their record or
// naming an unknown collection.
func TestApplyChange_Malformed(t *testing.T) {
	c := NewClient("ws://unused", newMemStores().stores(), testLogger())
	ctx := context.Background()

	assert.Error(t, c.applyChange(ctx, frame{Collection: collectionPosts, Operation: opUpsert}))
	assert.Error(t, c.applyChange(ctx, frame{Collection: "moments", Operation: opUpsert}))
}

// TestControlCalls_NotConnected verifies control calls fail fast with
// the sentinel while the channel is down.
func TestControlCalls_NotConnected(t *testing.T) {
	c := NewClient("ws://unused", newMemStores().stores(), testLogger())

	err := c.RegisterSubscription(context.Background(), "shorterPostQuery", "{}")
	require.ErrorIs(t, err, ErrNotConnected)

	_, err = c.ListActiveSubscriptions(context.Background())
	require.ErrorIs(t, err, ErrNotConnected)
}

// collaborator is a minimal in-process sync endpoint: acks every
// control frame and records registered names.
type collaborator struct {
	mu         sync.Mutex
	registered []string

	// push is sent to the client right after the upgrade.
	push []frame
}

func (s *collaborator) handler() http.HandlerFunc {
	upgrader := websocket.Upgrader{}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, f := range s.push {
			if err := conn.WriteJSON(f); err != nil {
				return
			}
		}

		for {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			resp := frame{Type: frameAck, ID: f.ID}
			switch f.Type {
			case frameRegister:
				s.mu.Lock()
				s.registered = append(s.registered, f.Name)
				s.mu.Unlock()
			case frameList:
				s.mu.Lock()
				resp.Type = frameSubscriptions
				resp.Names = append([]string(nil), s.registered...)
				s.mu.Unlock()
			}
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		}
	}
}

// TestClient_EndToEnd runs the client against an in-process
// collaborator: pushed changes land in the store and fire the
// invalidation hook, and control calls round-trip their acks.
func TestClient_EndToEnd(t *testing.T) {
	server := &collaborator{
		push: []frame{
			{
				Type:       frameChange,
				Collection: collectionPosts,
				Operation:  opUpsert,
				Post:       &postRecord{ID: "p1", OwnerID: "alice", PostedAt: time.Now().UTC()},
			},
		},
	}
	srv := httptest.NewServer(server.handler())
	defer srv.Close()

	stores := newMemStores()
	c := NewClient("ws"+strings.TrimPrefix(srv.URL, "http"), stores.stores(), testLogger())

	invalidated := make(chan struct{}, 16)
	c.OnInvalidate(func() { invalidated <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(ctx)
	}()

	select {
	case <-invalidated:
	case <-time.After(5 * time.Second):
		t.Fatal("change event never applied")
	}
	stores.mu.Lock()
	_, ok := stores.posts["p1"]
	stores.mu.Unlock()
	assert.True(t, ok, "pushed post materialized")

	require.NoError(t, c.RegisterSubscription(ctx, "shorterPostQuery", `{"op":"matchNone"}`))

	names, err := c.ListActiveSubscriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"shorterPostQuery"}, names)

	require.NoError(t, c.RetractSubscription(ctx, "shorterPostQuery"))

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("client did not stop")
	}
}
