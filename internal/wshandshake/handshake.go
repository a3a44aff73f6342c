// Package wshandshake computes the WebSocket opening-handshake
// Sec-WebSocket-Accept value and validates the upgrade request headers, per
// RFC 6455 §1.3 and spec §4.4.
package wshandshake

import (
	"crypto/sha1"
	"encoding/base64"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/yourusername/httpwsd/internal/httpmsg"
)

// GUID is the fixed magic value RFC 6455 concatenates onto the client's key.
const GUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// ComputeAccept derives Sec-WebSocket-Accept from the client's
// Sec-WebSocket-Key: concatenate with GUID, SHA-1 the ASCII bytes,
// base64-encode the 20-byte digest.
func ComputeAccept(key string) string {
	sum := sha1.Sum([]byte(key + GUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Precondition enumerates why an upgrade request was rejected, so the
// Connection Session can pick 400 vs 426 per spec §4.3.
type Precondition int

const (
	// OK means every upgrade precondition was satisfied.
	OK Precondition = iota
	// VersionMismatch means Sec-WebSocket-Version was present but not "13".
	VersionMismatch
	// Malformed covers every other precondition failure.
	Malformed
)

// Validate checks the upgrade preconditions of spec §4.3: GET method,
// Upgrade: websocket (token case-insensitive), Connection contains Upgrade,
// Sec-WebSocket-Version: 13, and a syntactically valid Sec-WebSocket-Key.
// It also returns the key so the caller can feed it straight to
// ComputeAccept.
func Validate(req *httpmsg.Request) (key string, result Precondition) {
	if req.Method != httpmsg.MethodGet {
		return "", Malformed
	}
	if !req.Headers.HasToken("Upgrade", "websocket") {
		return "", Malformed
	}
	if !req.Headers.HasToken("Connection", "Upgrade") {
		return "", Malformed
	}

	version, hasVersion := req.Headers.Get("Sec-WebSocket-Version")
	if !hasVersion {
		return "", Malformed
	}
	if version != "13" {
		return "", VersionMismatch
	}

	key, hasKey := req.Headers.Get("Sec-WebSocket-Key")
	if !hasKey || !validKey(key) {
		return "", Malformed
	}

	return key, OK
}

// validKey checks that Sec-WebSocket-Key decodes as 16 raw bytes of
// base64 and is a valid header field value to begin with — RFC 6455 §4.1.
func validKey(key string) bool {
	if !httpguts.ValidHeaderFieldValue(key) {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(key))
	if err != nil {
		return false
	}
	return len(decoded) == 16
}
