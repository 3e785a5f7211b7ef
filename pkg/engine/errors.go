package engine

import "errors"

// Error is a rejection with a stable numeric code. Codes are part of the
// host-facing contract (they surface through the node's error channel and the
// HTTP API) and must never be renumbered.
type Error struct {
	code uint32
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Code returns the stable numeric error code.
func (e *Error) Code() uint32 { return e.code }

var (
	ErrUnknownCommand       = &Error{1, "unknown command"}
	ErrMalformedInstruction = &Error{2, "malformed instruction"}
	ErrMalformedRecord      = &Error{3, "malformed record"}
	ErrUnauthorized         = &Error{4, "record account not owned by program"}
	ErrUntrustedOracle      = &Error{5, "untrusted oracle account"}
	ErrNoOpenPosition       = &Error{6, "no open position"}
	ErrPositionAlreadyOpen  = &Error{7, "position already open"}
	ErrMaturityNotReached   = &Error{8, "maturity not reached"}
	ErrPriceUnavailable     = &Error{9, "price feed unavailable"}
)

// ErrorCode extracts the stable code from err, unwrapping as needed.
// Returns 0 for nil and for errors outside the closed set.
func ErrorCode(err error) uint32 {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return 0
}
