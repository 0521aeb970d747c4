/*
Package accesscode validates the opaque credentials participants present instead of logging in.

Codes are opaque: only input that can never match a stored code (empty or oversized) is
rejected before a lookup. Whether a code exists is decided by the user directory.
*/
package accesscode

import "strings"

// MaxLength bounds the length of an access code in bytes.
const MaxLength = 64

// Valid checks that code is non-blank and at most MaxLength bytes long.
func Valid(code string) bool {
	return strings.TrimSpace(code) != "" && len(code) <= MaxLength
}
