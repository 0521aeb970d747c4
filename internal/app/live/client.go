package live

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"secretnick/internal/app/user"
	"secretnick/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// subscribers only answer pings; anything larger is a misbehaving client.
	maxMessageSize = 512

	sendBuffer = 64

	// WsCloseCodeRemoved is the custom close code sent to a participant detached from the room.
	WsCloseCodeRemoved = 4003
)

var errSendQueueFull = errors.New("client send queue full")

// Client is one websocket subscription of a participant to its room feed.
type Client struct {
	// the feed the client is registered with; set by Hub.Subscribe.
	feed *Feed

	conn *websocket.Conn
	user user.User

	// queued event frames.
	send chan []byte

	// close reason for a removed participant, picked up by WritePump.
	kick chan string

	// structured logger with client context.
	logger zerolog.Logger
}

// NewClient wraps an upgraded connection of u.
func NewClient(conn *websocket.Conn, u user.User) *Client {
	return &Client{
		conn: conn,
		user: u,
		send: make(chan []byte, sendBuffer),
		kick: make(chan string, 1),
		logger: logx.Logger().With().
			Int64("user_id", u.ID).
			Logger(),
	}
}

// UserID returns the id of the subscribed participant.
func (c *Client) UserID() int64 {
	return c.user.ID
}

// SendEvent queues e for delivery without blocking.
func (c *Client) SendEvent(e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	select {
	case c.send <- b:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping event")
		return errSendQueueFull
	}
}

// Kick asks WritePump to close the connection with WsCloseCodeRemoved.
func (c *Client) Kick(reason string) {
	select {
	case c.kick <- reason:
	default:
	}
}

// ReadPump consumes control frames until the connection fails, then unregisters the client.
// Subscribers do not send application messages; any that arrive are discarded.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Subscriber connection closed unexpectedly")
			}
			return
		}
	}
}

func (c *Client) cleanupOnDisconnect() {
	if c.feed != nil {
		c.feed.unregisterClient(c)
	}

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// WritePump writes queued events and heartbeats until the feed drops the client or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case reason := <-c.kick:
			c.writeClose(WsCloseCodeRemoved, reason)
			return

		case message, ok := <-c.send:
			if !ok {
				c.writeClose(websocket.CloseNormalClosure, "")
				return
			}
			if !c.write(websocket.TextMessage, message) {
				return
			}

		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := c.conn.WriteMessage(messageType, data); err != nil {
		c.logger.Debug().Err(err).Int("message_type", messageType).Msg("Error writing to subscriber")
		return false
	}

	return true
}

func (c *Client) writeClose(code int, reason string) {
	c.logger.Info().Int("close_code", code).Str("reason", reason).Msg("Closing subscriber connection.")
	c.write(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
}
