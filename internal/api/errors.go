package api

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure for the caller's state-repair decision.
type Kind int

const (
	// KindNetwork is a transport-level failure: no connectivity, timeout,
	// connection reset. No response was received.
	KindNetwork Kind = iota
	// KindAuth is a rejected credential or token (401/403).
	KindAuth
	// KindNotFound means the mutation target no longer exists server-side.
	KindNotFound
	// KindServer covers every other non-2xx status and logical failures
	// (an OK transport response whose body reports success=false).
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not found"
	default:
		return "server"
	}
}

// Error is the single failure type surfaced by the gateway.
type Error struct {
	Kind   Kind
	Op     string // "list", "create", "toggle", "delete", "login"
	Status int    // HTTP status, 0 for transport failures
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s failure (status %d)", e.Op, e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s failure: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s failure", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind, defaulting to KindServer for errors that
// did not originate in the gateway.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindServer
}

func classifyStatus(op string, status int) *Error {
	kind := KindServer
	switch status {
	case 401, 403:
		kind = KindAuth
	case 404:
		kind = KindNotFound
	}
	return &Error{Kind: kind, Op: op, Status: status}
}
