/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Room and Membership Business Logic Errors
const (
	// ErrRoomNotFound indicates that the room or the participant addressing it does not exist.
	ErrRoomNotFound = 2103

	// ErrMemberNotFound indicates that the referenced participant does not exist.
	ErrMemberNotFound = 2301

	// ErrMemberForbidden indicates the caller may not manage the referenced participant.
	ErrMemberForbidden = 2302

	// ErrMemberRequestInvalid indicates the membership change is not valid in the room's current state.
	ErrMemberRequestInvalid = 2303
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrUnauthorized indicates the access code is missing or unknown.
	ErrUnauthorized = 3101

	// ErrSessionKicked indicates that the live connection was closed because the participant left the room.
	ErrSessionKicked = 3004
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
