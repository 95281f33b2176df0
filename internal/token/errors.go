package token

import "errors"

// Verification failures are distinct sentinels so callers can report the
// precise reason a token was rejected. The checks in Service run in a fixed
// order; the first failure wins and later checks are skipped.
var (
	// ErrTokenMalformed means the string is not a parseable JWT or carries
	// claims of the wrong shape.
	ErrTokenMalformed = errors.New("token is malformed")

	// ErrTokenSignatureInvalid means the signature does not verify against
	// the service secret.
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")

	// ErrTokenExpired means the token was well-formed and authentic but its
	// expiry has passed.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenRevoked means the token was explicitly invalidated before its
	// natural expiry.
	ErrTokenRevoked = errors.New("token has been revoked")

	// ErrTokenKindMismatch means an access token was presented where a
	// refresh token was required, or vice versa.
	ErrTokenKindMismatch = errors.New("token kind mismatch")

	// ErrRefreshNotCurrent means the refresh token is authentic but is not
	// the single active one recorded for its user, typically because a newer
	// token replaced it or the user logged out.
	ErrRefreshNotCurrent = errors.New("refresh token is no longer current")

	// ErrVerificationUnavailable means the revocation or refresh state could
	// not be consulted. Verification fails closed: an unreadable blacklist
	// never passes a token through.
	ErrVerificationUnavailable = errors.New("token verification unavailable")
)
