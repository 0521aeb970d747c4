/*
Package handler provides the HTTP handlers of the participant API.
*/
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"secretnick/internal/app/room"
	"secretnick/internal/app/user"
	"secretnick/internal/pkg/accesscode"
	"secretnick/internal/pkg/errs"
	"secretnick/internal/pkg/logx"
	"secretnick/internal/pkg/resp"
)

// RemoveUserResponse is returned after a participant was detached.
type RemoveUserResponse struct {
	Room         *room.Room  `json:"room"`
	Participants []user.User `json:"participants"`
}

// accessCodeFrom returns the caller's access code or false if it is blank or oversized.
func accessCodeFrom(r *http.Request) (string, bool) {
	code := r.URL.Query().Get(logx.AccessCodeParam)
	return code, accesscode.Valid(code)
}

// HandleRemoveUser processes DELETE /api/users/{id}?userCode=...
func HandleRemoveUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || targetID <= 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams).WithDetails(
				errs.FieldDetail{Field: room.FieldID, Message: "Id must be a positive integer."},
			))
			return
		}

		code, ok := accessCodeFrom(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams).WithDetails(
				errs.FieldDetail{Field: room.FieldUserCode, Message: "User code is required."},
			))
			return
		}

		updated, err := deps.Removal.RemoveUser(r.Context(), code, targetID)
		if err != nil {
			resp.RespondError(w, r, toCustomError(r.Context(), err, errs.ErrMemberNotFound))
			return
		}

		if deps.Hub != nil {
			deps.Hub.UserRemoved(updated.ID, targetID)
		}

		resp.RespondSuccess(w, r, RemoveUserResponse{
			Room:         updated,
			Participants: updated.Users,
		})
	}
}

// HandleListUsers processes GET /api/users?userCode=...
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, ok := accessCodeFrom(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		participants, err := deps.View.Participants(r.Context(), code)
		if err != nil {
			resp.RespondError(w, r, toCustomError(r.Context(), err, errs.ErrMemberNotFound))
			return
		}

		resp.RespondSuccess(w, r, participants)
	}
}
