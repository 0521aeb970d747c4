package live

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"secretnick/internal/app/user"
)

// EventType names the kind of an event pushed to subscribers.
type EventType string

const (
	// TypeRoomState is sent once to a new subscriber with the participants it may see.
	TypeRoomState EventType = "ROOM_STATE"

	// TypeUserRemoved announces that the administrator detached a participant.
	TypeUserRemoved EventType = "USER_REMOVED"
)

// Event is the envelope written to websocket subscribers.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	RoomID    int64           `json:"roomId"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// RoomStatePayload is the payload of TypeRoomState.
type RoomStatePayload struct {
	CurrentUserID int64       `json:"currentUserId"`
	Participants  []user.User `json:"participants"`
}

// UserRemovedPayload is the payload of TypeUserRemoved.
type UserRemovedPayload struct {
	UserID int64 `json:"userId"`
}

// NewEvent builds an event with a fresh id and the current time in milliseconds.
func NewEvent(t EventType, roomID int64, payload any) (Event, error) {
	e := Event{
		ID:        uuid.NewString(),
		Type:      t,
		RoomID:    roomID,
		Timestamp: time.Now().UnixMilli(),
	}

	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return Event{}, err
		}
		e.Payload = b
	}

	return e, nil
}
