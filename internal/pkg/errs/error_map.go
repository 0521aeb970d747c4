/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Room and Membership Business Logic Errors
	ErrRoomNotFound:         {Code: ErrRoomNotFound, Message: "Room not found.", Status: http.StatusNotFound},
	ErrMemberNotFound:       {Code: ErrMemberNotFound, Message: "Participant not found.", Status: http.StatusNotFound},
	ErrMemberForbidden:      {Code: ErrMemberForbidden, Message: "You are not allowed to manage this participant.", Status: http.StatusForbidden},
	ErrMemberRequestInvalid: {Code: ErrMemberRequestInvalid, Message: "This participant cannot be removed right now.", Status: http.StatusBadRequest},

	// 3xxx: User, Session, and Security Errors
	ErrUnauthorized:  {Code: ErrUnauthorized, Message: "Your access code is not valid.", Status: http.StatusUnauthorized},
	ErrSessionKicked: {Code: ErrSessionKicked, Message: "You were removed from this room."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
