/*
Package live pushes room membership changes to connected participants over websockets.

The Hub creates one Feed per room on first subscription and removes it once the feed shuts
down after a period without subscribers. Each Client is a single websocket connection of a
participant; its pumps move frames between the connection and its feed.
*/
package live

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"secretnick/internal/pkg/errs"
	"secretnick/internal/pkg/logx"
)

// Hub tracks the active feeds, keyed by room id.
type Hub struct {
	feeds map[int64]*Feed

	// mu protects feeds.
	mu sync.Mutex

	idleTimeout time.Duration

	// feeds hand themselves back here when their Run loop returns.
	cleanup chan *Feed

	// closed on Shutdown.
	closed chan struct{}

	// wg waits for the cleanup loop during shutdown.
	wg sync.WaitGroup

	// structured logger with hub context.
	logger zerolog.Logger
}

// NewHub constructs a Hub and starts its cleanup loop.
func NewHub() *Hub {
	return newHub(FeedIdleTimeout)
}

func newHub(idle time.Duration) *Hub {
	h := &Hub{
		feeds:       make(map[int64]*Feed),
		idleTimeout: idle,
		cleanup:     make(chan *Feed),
		closed:      make(chan struct{}),
		logger:      logx.Logger().With().Str("component", "Hub").Logger(),
	}

	h.wg.Add(1)
	go h.runCleanupLoop()

	return h
}

func (h *Hub) runCleanupLoop() {
	defer h.wg.Done()

	for {
		select {
		case f := <-h.cleanup:
			h.deleteFeed(f)
		case <-h.closed:
			return
		}
	}
}

// deleteFeed forgets f unless a newer feed already replaced it.
func (h *Hub) deleteFeed(f *Feed) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.feeds[f.RoomID]; ok && cur == f {
		delete(h.feeds, f.RoomID)
		h.logger.Info().Int64("room_id", f.RoomID).Msg("Feed removed.")
	}
}

// feed returns the running feed of roomID, starting one if needed. It returns nil after Shutdown.
func (h *Hub) feed(roomID int64) *Feed {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.feeds == nil {
		return nil
	}

	if f, ok := h.feeds[roomID]; ok && !f.stopped() {
		return f
	}

	f := newFeed(roomID, h.idleTimeout, h.cleanup, h.closed)
	h.feeds[roomID] = f
	go f.Run()

	h.logger.Info().Int64("room_id", roomID).Msg("Feed started.")
	return f
}

func (h *Hub) existing(roomID int64) *Feed {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.feeds[roomID]
}

// Subscribe registers c with the feed of roomID. It reports false once the hub is shut down.
func (h *Hub) Subscribe(roomID int64, c *Client) bool {
	// A feed can time out between lookup and registration; the second attempt gets a fresh one.
	for range 2 {
		f := h.feed(roomID)
		if f == nil {
			return false
		}
		if f.registerClient(c) {
			return true
		}
	}
	return false
}

// Publish delivers e to the current subscribers of its room. Rooms without subscribers drop it.
func (h *Hub) Publish(e Event) {
	if f := h.existing(e.RoomID); f != nil {
		f.publish(e)
	}
}

// UserRemoved disconnects the removed participant and tells the rest of the room.
func (h *Hub) UserRemoved(roomID, userID int64) {
	f := h.existing(roomID)
	if f == nil {
		return
	}

	f.kickUser(userID, errs.NewError(errs.ErrSessionKicked).Message)

	e, err := NewEvent(TypeUserRemoved, roomID, UserRemovedPayload{UserID: userID})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to build USER_REMOVED event.")
		return
	}
	f.publish(e)
}

// Shutdown stops every feed and the cleanup loop.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down hub...")

	h.mu.Lock()
	for _, f := range h.feeds {
		f.Stop()
	}
	h.feeds = nil
	h.mu.Unlock()

	close(h.closed)
	h.wg.Wait()

	h.logger.Info().Msg("Hub shutdown complete.")
}
