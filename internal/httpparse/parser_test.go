package httpparse

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/httpwsd/internal/httperr"
)

// feedByteAtATime writes raw to one end of a net.Pipe one byte at a time, on
// a delay, so the parser must tolerate the header terminator (and any other
// boundary) arriving split across reads.
func feedByteAtATime(t *testing.T, raw []byte) net.Conn {
	t.Helper()
	server, client := net.Pipe()
	go func() {
		for _, b := range raw {
			_, _ = client.Write([]byte{b})
		}
	}()
	t.Cleanup(func() { server.Close(); client.Close() })
	return server
}

func TestReadRequestHeaderTerminatorSplitAcrossReads(t *testing.T) {
	raw := []byte("GET /a HTTP/1.1\r\nHost: x\r\n\r\n")
	conn := feedByteAtATime(t, raw)
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	p := NewParser(conn, DefaultLimits)
	req, err := p.ReadRequest(Hooks{})
	require.NoError(t, err)
	assert.Equal(t, "/a", req.Target)
}

func TestReadRequestContentLengthZero(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	go client.Write([]byte("POST /x HTTP/1.1\r\nContent-Length: 0\r\n\r\n"))

	_ = server.SetDeadline(time.Now().Add(5 * time.Second))
	p := NewParser(server, DefaultLimits)
	req, err := p.ReadRequest(Hooks{})
	require.NoError(t, err)
	assert.Empty(t, req.Body)
}

func TestReadRequestFixedBody(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	go client.Write([]byte("POST /x HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello"))

	_ = server.SetDeadline(time.Now().Add(5 * time.Second))
	p := NewParser(server, DefaultLimits)
	req, err := p.ReadRequest(Hooks{})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(req.Body))
}

func TestReadRequestSingleZeroChunk(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	go client.Write([]byte("POST /x HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n0\r\n\r\n"))

	_ = server.SetDeadline(time.Now().Add(5 * time.Second))
	p := NewParser(server, DefaultLimits)
	req, err := p.ReadRequest(Hooks{})
	require.NoError(t, err)
	assert.Empty(t, req.Body)
}

func TestReadRequestChunkedMultipleChunks(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	go client.Write([]byte("POST /x HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n"))

	_ = server.SetDeadline(time.Now().Add(5 * time.Second))
	p := NewParser(server, DefaultLimits)
	req, err := p.ReadRequest(Hooks{})
	require.NoError(t, err)
	assert.Equal(t, "Wikipedia", string(req.Body))
}

func TestReadRequestChunkedWinsOverContentLength(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	go client.Write([]byte("POST /x HTTP/1.1\r\nContent-Length: 999\r\nTransfer-Encoding: chunked\r\n\r\n3\r\nabc\r\n0\r\n\r\n"))

	_ = server.SetDeadline(time.Now().Add(5 * time.Second))
	p := NewParser(server, DefaultLimits)
	req, err := p.ReadRequest(Hooks{})
	require.NoError(t, err)
	assert.Equal(t, "abc", string(req.Body))
}

func TestReadRequestBodyTooLarge(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	go client.Write([]byte("POST /x HTTP/1.1\r\nContent-Length: 99999999999\r\n\r\n"))

	_ = server.SetDeadline(time.Now().Add(5 * time.Second))
	p := NewParser(server, Limits{MaxHeaderBytes: 16384, MaxBodyBytes: 10})
	_, err := p.ReadRequest(Hooks{})
	require.Error(t, err)

	var herr *httperr.Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, httperr.KindPayloadTooLarge, herr.Kind)
}

func TestReadRequestHeaderTooLarge(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	go client.Write([]byte("GET / HTTP/1.1\r\nX-Big: " + string(make([]byte, 20)) + "\r\n\r\n"))

	_ = server.SetDeadline(time.Now().Add(5 * time.Second))
	p := NewParser(server, Limits{MaxHeaderBytes: 8, MaxBodyBytes: 1024})
	_, err := p.ReadRequest(Hooks{})
	require.Error(t, err)

	var herr *httperr.Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, httperr.KindHeaderTooLarge, herr.Kind)
}

func TestReadRequestConnectionClosedBeforeAnyBytes(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	client.Close()

	_ = server.SetDeadline(time.Now().Add(5 * time.Second))
	p := NewParser(server, DefaultLimits)
	_, err := p.ReadRequest(Hooks{})
	require.Error(t, err)

	var herr *httperr.Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, httperr.KindConnectionClosed, herr.Kind)
}

func TestReadRequestHeaderReadTimeoutIsVisible(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	go client.Write([]byte("GET / HTTP/1.1\r\n"))

	_ = server.SetDeadline(time.Now().Add(30 * time.Millisecond))
	p := NewParser(server, DefaultLimits)
	_, err := p.ReadRequest(Hooks{})
	require.Error(t, err)

	var herr *httperr.Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, httperr.KindTimeout, herr.Kind)
}
