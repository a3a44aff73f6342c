package wshandshake

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/httpwsd/internal/httpmsg"
)

func TestComputeAcceptKnownVector(t *testing.T) {
	// The RFC 6455 §1.3 worked example.
	got := ComputeAccept("dGhlIHNhbXBsZSBub25jZQ==")
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", got)
}

func validUpgradeRequest() *httpmsg.Request {
	h := httpmsg.NewHeader()
	h.Add("Upgrade", "websocket")
	h.Add("Connection", "Upgrade")
	h.Add("Sec-WebSocket-Version", "13")
	h.Add("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	return &httpmsg.Request{Method: httpmsg.MethodGet, Target: "/", Version: "HTTP/1.1", Headers: h}
}

func TestValidateOK(t *testing.T) {
	key, result := Validate(validUpgradeRequest())
	assert.Equal(t, OK, result)
	assert.Equal(t, "dGhlIHNhbXBsZSBub25jZQ==", key)
}

func TestValidateWrongMethod(t *testing.T) {
	req := validUpgradeRequest()
	req.Method = httpmsg.MethodPost
	_, result := Validate(req)
	assert.Equal(t, Malformed, result)
}

func TestValidateVersionMismatch(t *testing.T) {
	req := validUpgradeRequest()
	req.Headers.Set("Sec-WebSocket-Version", "8")
	_, result := Validate(req)
	assert.Equal(t, VersionMismatch, result)
}

func TestValidateMissingUpgradeToken(t *testing.T) {
	req := validUpgradeRequest()
	req.Headers.Set("Upgrade", "h2c")
	_, result := Validate(req)
	assert.Equal(t, Malformed, result)
}

func TestValidateBadKeyLength(t *testing.T) {
	req := validUpgradeRequest()
	req.Headers.Set("Sec-WebSocket-Key", "dG9vc2hvcnQ=")
	_, result := Validate(req)
	assert.Equal(t, Malformed, result)
}
