package handler

import (
	"net/http"

	"secretnick/internal/pkg/errs"
	"secretnick/internal/pkg/resp"
)

// HandleGetRoom processes GET /api/rooms?userCode=... and returns the caller's room.
func HandleGetRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, ok := accessCodeFrom(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		found, _, err := deps.View.Room(r.Context(), code)
		if err != nil {
			resp.RespondError(w, r, toCustomError(r.Context(), err, errs.ErrRoomNotFound))
			return
		}

		resp.RespondSuccess(w, r, found)
	}
}
