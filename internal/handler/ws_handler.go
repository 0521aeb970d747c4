package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"secretnick/internal/app/live"
	"secretnick/internal/app/room"
	"secretnick/internal/pkg/errs"
	"secretnick/internal/pkg/logx"
	"secretnick/internal/pkg/resp"
)

// HandleWebSocket subscribes the holder of userCode to the live feed of its room.
// The first frame is a ROOM_STATE event with the participants the caller may see.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := logx.FromContext(r.Context())

		code, ok := accessCodeFrom(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		current, caller, err := deps.View.Room(r.Context(), code)
		if err != nil {
			resp.RespondError(w, r, toCustomError(r.Context(), err, errs.ErrUnauthorized))
			return
		}

		state, err := live.NewEvent(live.TypeRoomState, current.ID, live.RoomStatePayload{
			CurrentUserID: caller.ID,
			Participants:  room.VisibleMembers(current, caller),
		})
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to upgrade connection to WebSocket")
			return
		}

		client := live.NewClient(conn, caller)
		if err := client.SendEvent(state); err != nil {
			logger.Error().Err(err).Msg("Failed to queue ROOM_STATE event")
		}

		if !deps.Hub.Subscribe(current.ID, client) {
			logger.Info().Int64("room_id", current.ID).Msg("WebSocket rejected: hub is shutting down.")
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			_ = conn.Close()
			return
		}

		logger.Info().
			Int64("room_id", current.ID).
			Int64("user_id", caller.ID).
			Msg("WebSocket subscriber registered")

		go client.WritePump()
		client.ReadPump()
	}
}
