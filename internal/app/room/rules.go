package room

import "secretnick/internal/app/user"

// Field tags of the removal request.
const (
	FieldUserCode = "userCode"
	FieldID       = "id"
)

// RequireAdmin rejects callers that do not administer their room.
func RequireAdmin(caller user.User) *Failure {
	if !caller.IsAdmin {
		return Forbidden(FieldUserCode, "User is not an administrator.")
	}
	return nil
}

// RequireNotSelf rejects an administrator targeting their own account.
func RequireNotSelf(caller user.User, targetID int64) *Failure {
	if caller.ID == targetID {
		return BadRequest(FieldID, "Administrator cannot delete themselves.")
	}
	return nil
}

// TargetStatus describes where a removal target stands relative to the caller's loaded room.
type TargetStatus int

const (
	// TargetLoaded means the target is part of the loaded member set.
	TargetLoaded TargetStatus = iota

	// TargetUnknown means no user with the id exists.
	TargetUnknown

	// TargetInOtherRoom means the user exists but belongs to another room.
	TargetInOtherRoom

	// TargetNotLoaded means the user belongs to the caller's room but the
	// loaded member set does not contain it.
	TargetNotLoaded
)

func (s TargetStatus) String() string {
	switch s {
	case TargetLoaded:
		return "loaded"
	case TargetUnknown:
		return "unknown"
	case TargetInOtherRoom:
		return "other_room"
	case TargetNotLoaded:
		return "not_loaded"
	default:
		return "invalid"
	}
}

// ClassifyMissingTarget decides why a target is absent from the loaded room.
// stored is the result of looking the target up by id, or nil if no such user exists.
func ClassifyMissingTarget(caller user.User, stored *user.User) TargetStatus {
	if stored == nil {
		return TargetUnknown
	}
	if !user.SameRoom(caller, *stored) {
		return TargetInOtherRoom
	}
	return TargetNotLoaded
}

// Failure maps the status to the rejection returned to the caller.
// TargetLoaded yields nil.
func (s TargetStatus) Failure() *Failure {
	switch s {
	case TargetLoaded:
		return nil
	case TargetUnknown:
		return NotFound(FieldID, "User with the specified Id was not found.")
	case TargetInOtherRoom:
		return Forbidden(FieldID, "User with userCode and user with Id belong to different rooms.")
	default:
		f := BadRequest(FieldID, "Data inconsistency detected. User exists in room but not loaded properly.")
		f.Defect = true
		return f
	}
}
