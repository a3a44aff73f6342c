// Package httperr is the typed error taxonomy shared by the request parser
// and the connection session (spec §7). Session code
// uses errors.As to recover a *Error and decide the wire response instead of
// comparing sentinel strings, modeled on go-rawhttp's pkg/errors.
package httperr

import (
	"fmt"

	"github.com/yourusername/httpwsd/internal/httpmsg"
)

// Kind categorizes an error the way §7 of the spec does.
type Kind string

const (
	// KindIO covers socket read/write failure; the session ends silently.
	KindIO Kind = "io"
	// KindConnectionClosed means the peer closed at an expected boundary.
	KindConnectionClosed Kind = "connection_closed"
	KindMalformedRequest Kind = "malformed_request"
	KindHeaderTooLarge   Kind = "header_too_large"
	KindPayloadTooLarge  Kind = "payload_too_large"
	KindTimeout          Kind = "timeout"
	KindUpgradeRequired  Kind = "upgrade_required"
	// KindProtocolViolation and KindUnsupported are WebSocket-only kinds;
	// they map to a Close frame, not an HTTP status.
	KindProtocolViolation Kind = "protocol_violation"
	KindUnsupported       Kind = "unsupported"
	KindInternal          Kind = "internal"
)

// Error is the typed error carried through the core. Op names the step that
// failed (e.g. "parse-header-line", "read-chunk-size").
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Op)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error, wrapping an optional underlying cause.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// StatusCode maps a Kind to the HTTP status the Connection Session must
// respond with, per spec §7. Kinds with no HTTP representation (IO,
// ConnectionClosed, and the WebSocket-only kinds) return ok=false — the
// caller ends the connection without writing a response.
func (k Kind) StatusCode() (code httpmsg.StatusCode, ok bool) {
	switch k {
	case KindMalformedRequest:
		return httpmsg.StatusBadRequest, true
	case KindHeaderTooLarge:
		return httpmsg.StatusHeaderTooLarge, true
	case KindPayloadTooLarge:
		return httpmsg.StatusPayloadTooLarge, true
	case KindTimeout:
		return httpmsg.StatusRequestTimeout, true
	case KindUpgradeRequired:
		return httpmsg.StatusUpgradeRequired, true
	case KindInternal:
		return httpmsg.StatusInternalError, true
	default:
		return 0, false
	}
}
