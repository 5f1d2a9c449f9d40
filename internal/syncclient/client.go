// Package syncclient speaks to the sync collaborator over a single
// websocket: outbound subscription control (register, retract, list)
// and the inbound live change feed that keeps the local store
// materialized. The transport protocol inside the sync engine is out
// of scope; this client only needs the three control primitives and
// the change envelope.
package syncclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/Brian-Masse/Shorter/internal/domain"
	"github.com/gorilla/websocket"
)

const (
	reconnectDelay = 5 * time.Second
	ackTimeout     = 10 * time.Second
)

// ErrNotConnected is returned by control calls while the sync channel
// is down. Callers treat it as a transient remote failure and retry
// with backoff.
var ErrNotConnected = errors.New("sync channel not connected")

// Stores is the slice of the local store the change feed writes into.
type Stores struct {
	Profiles domain.ProfileRepository
	Posts    domain.PostRepository
	Seeds    domain.SeedRepository
}

// Client maintains the sync channel. It implements
// domain.SubscriptionTransport for the registry, and Run drives the
// change feed.
type Client struct {
	url    string
	stores Stores
	logger *slog.Logger

	// onInvalidate, when set, is called after a change event has been
	// applied so the feed views can recompute from the fresh snapshot.
	onInvalidate func()

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[string]chan frame
	nextID  int64

	writeMu sync.Mutex
}

// NewClient creates a sync client for the given endpoint.
func NewClient(url string, stores Stores, logger *slog.Logger) *Client {
	return &Client{
		url:     url,
		stores:  stores,
		logger:  logger,
		pending: make(map[string]chan frame),
	}
}

// OnInvalidate registers the recomputation hook invoked after each
// applied change event. Must be called before Run.
func (c *Client) OnInvalidate(fn func()) {
	c.onInvalidate = fn
}

// Run connects to the sync endpoint and processes change events until
// the context is cancelled, reconnecting on transient errors.
func (c *Client) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := c.connectAndRead(ctx); err != nil {
				c.logger.Error("sync connection error, reconnecting", "error", err)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(reconnectDelay):
				}
			}
		}
	}
}

func (c *Client) connectAndRead(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial sync endpoint: %w", err)
	}
	defer conn.Close()

	// ReadMessage does not watch the context; closing the connection is
	// the only way to unblock it on cancellation.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.conn = nil
		// Unblock any control call still waiting on this connection.
		for id, ch := range c.pending {
			close(ch)
			delete(c.pending, id)
		}
		c.mu.Unlock()
	}()

	c.logger.Info("connected to sync endpoint", "url", c.url)

	var eventsApplied int64
	lastStatsLog := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		var f frame
		if err := json.Unmarshal(message, &f); err != nil {
			c.logger.Error("failed to parse sync frame", "error", err)
			continue
		}

		switch f.Type {
		case frameAck, frameSubscriptions:
			c.deliver(f)
		case frameChange:
			if err := c.applyChange(ctx, f); err != nil {
				c.logger.Error("failed to apply change", "collection", f.Collection, "error", err)
				continue
			}
			eventsApplied++
			if c.onInvalidate != nil {
				c.onInvalidate()
			}
		default:
			c.logger.Warn("unknown sync frame", "type", f.Type)
		}

		if time.Since(lastStatsLog) >= 30*time.Second {
			c.logger.Info("sync stats", "events_applied", eventsApplied)
			lastStatsLog = time.Now()
		}
	}
}

// applyChange writes one change event into the local store.
func (c *Client) applyChange(ctx context.Context, f frame) error {
	switch f.Collection {
	case collectionProfiles:
		if f.Operation == opDelete {
			return c.stores.Profiles.DeleteProfile(ctx, f.RecordID)
		}
		if f.Profile == nil {
			return fmt.Errorf("profile change without record")
		}
		return c.stores.Profiles.PutProfile(ctx, f.Profile.toDomain())

	case collectionPosts:
		if f.Operation == opDelete {
			return c.stores.Posts.DeletePost(ctx, f.RecordID)
		}
		if f.Post == nil {
			return fmt.Errorf("post change without record")
		}
		return c.stores.Posts.PutPost(ctx, f.Post.toDomain())

	case collectionTiming:
		if f.Seed == nil {
			return fmt.Errorf("timing change without record")
		}
		// Only the canonical table is ever accepted; a per-device seed
		// would silently break cross-device agreement.
		if f.Seed.Author != domain.SeedAuthorID {
			c.logger.Warn("ignoring day seed from non-canonical author", "author", f.Seed.Author)
			return nil
		}
		return c.stores.Seeds.PutDaySeed(ctx, domain.DaySeed(f.Seed.Values))

	default:
		return fmt.Errorf("unknown collection %q", f.Collection)
	}
}

// deliver routes an ack to the control call waiting for it.
func (c *Client) deliver(f frame) {
	c.mu.Lock()
	ch, ok := c.pending[f.ID]
	if ok {
		delete(c.pending, f.ID)
	}
	c.mu.Unlock()

	if ok {
		ch <- f
	}
}

// roundTrip sends a control frame and waits for its ack.
func (c *Client) roundTrip(ctx context.Context, f frame) (frame, error) {
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return frame{}, ErrNotConnected
	}
	c.nextID++
	f.ID = strconv.FormatInt(c.nextID, 10)
	ch := make(chan frame, 1)
	c.pending[f.ID] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := conn.WriteJSON(f)
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		delete(c.pending, f.ID)
		c.mu.Unlock()
		return frame{}, fmt.Errorf("write control frame: %w", err)
	}

	select {
	case <-ctx.Done():
		return frame{}, ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			return frame{}, ErrNotConnected
		}
		if resp.Error != "" {
			return frame{}, fmt.Errorf("sync collaborator: %s", resp.Error)
		}
		return resp, nil
	case <-time.After(ackTimeout):
		c.mu.Lock()
		delete(c.pending, f.ID)
		c.mu.Unlock()
		return frame{}, fmt.Errorf("control frame %q: ack timeout", f.Type)
	}
}

// RegisterSubscription installs or replaces the named subscription.
func (c *Client) RegisterSubscription(ctx context.Context, name, predicateDescription string) error {
	_, err := c.roundTrip(ctx, frame{
		Type:      frameRegister,
		Name:      name,
		Predicate: predicateDescription,
	})
	return err
}

// RetractSubscription removes the named subscription.
func (c *Client) RetractSubscription(ctx context.Context, name string) error {
	_, err := c.roundTrip(ctx, frame{Type: frameRetract, Name: name})
	return err
}

// ListActiveSubscriptions returns the names registered remotely.
func (c *Client) ListActiveSubscriptions(ctx context.Context) ([]string, error) {
	resp, err := c.roundTrip(ctx, frame{Type: frameList})
	if err != nil {
		return nil, err
	}
	return resp.Names, nil
}
