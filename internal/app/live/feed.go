package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"secretnick/internal/pkg/logx"
)

const broadcastChannelBuffer = 256

// FeedIdleTimeout is how long a feed without subscribers keeps running.
const FeedIdleTimeout = 2 * time.Minute

type kickRequest struct {
	userID int64
	reason string
}

// Feed fans room events out to the subscribers of one room.
// Its Run loop owns the subscriber set.
type Feed struct {
	RoomID int64

	clients map[*Client]struct{}

	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	kick       chan kickRequest

	// used by Run to hand the feed back to the hub for removal.
	cleanup chan<- *Feed

	// closed by the hub on shutdown; unblocks the cleanup notification.
	hubClosed <-chan struct{}

	stopChan chan struct{}
	stopOnce sync.Once

	// closed when Run returns.
	done chan struct{}

	idleTimeout time.Duration

	// structured logger with room context.
	logger zerolog.Logger
}

func newFeed(roomID int64, idle time.Duration, cleanup chan<- *Feed, hubClosed <-chan struct{}) *Feed {
	return &Feed{
		RoomID:      roomID,
		clients:     make(map[*Client]struct{}),
		broadcast:   make(chan Event, broadcastChannelBuffer),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		kick:        make(chan kickRequest),
		cleanup:     cleanup,
		hubClosed:   hubClosed,
		stopChan:    make(chan struct{}),
		done:        make(chan struct{}),
		idleTimeout: idle,
		logger:      logx.Logger().With().Int64("room_id", roomID).Logger(),
	}
}

// Stop terminates the Run loop. Subscribers have their send channels closed.
func (f *Feed) Stop() {
	f.stopOnce.Do(func() { close(f.stopChan) })
}

func (f *Feed) stopped() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// registerClient hands c to the Run loop. It reports false if the feed has already stopped.
func (f *Feed) registerClient(c *Client) bool {
	c.feed = f
	select {
	case f.register <- c:
		return true
	case <-f.done:
		return false
	}
}

func (f *Feed) unregisterClient(c *Client) {
	select {
	case f.unregister <- c:
	case <-f.done:
	}
}

func (f *Feed) publish(e Event) {
	select {
	case f.broadcast <- e:
	case <-f.done:
	default:
		f.logger.Warn().Str("event_type", string(e.Type)).Msg("Broadcast channel full, dropping event.")
	}
}

func (f *Feed) kickUser(userID int64, reason string) {
	select {
	case f.kick <- kickRequest{userID: userID, reason: reason}:
	case <-f.done:
	}
}

// Run is the feed's event loop. It returns on Stop or after idleTimeout without subscribers.
func (f *Feed) Run() {
	idle := time.NewTimer(f.idleTimeout)

	defer func() {
		idle.Stop()

		for c := range f.clients {
			close(c.send)
		}
		f.clients = nil
		close(f.done)

		select {
		case f.cleanup <- f:
		case <-f.hubClosed:
		}

		f.logger.Info().Msg("Feed stopped.")
	}()

	for {
		select {
		case c := <-f.register:
			f.clients[c] = struct{}{}
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			f.logger.Info().
				Int64("user_id", c.user.ID).
				Int("subscribers", len(f.clients)).
				Msg("Subscriber joined feed.")

		case c := <-f.unregister:
			if _, ok := f.clients[c]; ok {
				f.drop(c)
				close(c.send)
				f.logger.Info().
					Int64("user_id", c.user.ID).
					Int("subscribers", len(f.clients)).
					Msg("Subscriber left feed.")
				f.resetIdle(idle)
			}

		case req := <-f.kick:
			kicked := 0
			for c := range f.clients {
				if c.user.ID == req.userID {
					f.drop(c)
					c.Kick(req.reason)
					kicked++
				}
			}
			if kicked > 0 {
				f.logger.Info().Int64("user_id", req.userID).Int("connections", kicked).Msg("Removed participant disconnected.")
				f.resetIdle(idle)
			}

		case e := <-f.broadcast:
			b, err := json.Marshal(e)
			if err != nil {
				f.logger.Error().Err(err).Str("event_id", e.ID).Msg("Error marshaling event for broadcast.")
				continue
			}

			dropped := false
			for c := range f.clients {
				select {
				case c.send <- b:
				default:
					f.logger.Warn().Int64("user_id", c.user.ID).Msg("Subscriber send channel full, dropping subscriber.")
					f.drop(c)
					close(c.send)
					dropped = true
				}
			}
			if dropped {
				f.resetIdle(idle)
			}

		case <-idle.C:
			f.logger.Info().Dur("idle_timeout", f.idleTimeout).Msg("Feed idle timeout reached.")
			return

		case <-f.stopChan:
			return
		}
	}
}

func (f *Feed) drop(c *Client) {
	delete(f.clients, c)
}

// resetIdle restarts the idle timer once the last subscriber is gone.
func (f *Feed) resetIdle(idle *time.Timer) {
	if len(f.clients) > 0 {
		return
	}
	if !idle.Stop() {
		select {
		case <-idle.C:
		default:
		}
	}
	idle.Reset(f.idleTimeout)
}
