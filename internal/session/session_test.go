package session

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/yourusername/httpwsd/internal/httpmsg"
	"github.com/yourusername/httpwsd/internal/logging"
	"github.com/yourusername/httpwsd/internal/metrics"
)

// handlerFunc adapts a plain function to the Handler interface, the way
// http.HandlerFunc adapts a function to http.Handler.
type handlerFunc func(*httpmsg.Request) *httpmsg.Response

func (f handlerFunc) Handle(req *httpmsg.Request) *httpmsg.Response { return f(req) }

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, err := logging.New(zapcore.ErrorLevel)
	require.NoError(t, err)
	return log
}

func noopUpgrade(context.Context, net.Conn, *logging.Logger, *metrics.Registry) {}

func testOptions() Options {
	return Options{
		MaxHeaderBytes: 16384,
		MaxBodyBytes:   10 * 1024 * 1024,
		IdleTimeout:    2 * time.Second,
		MaxRequests:    100,
	}
}

// scenario 1 of spec.md §8: a plain GET gets 200 with Date/Server/
// Connection: keep-alive.
func TestSessionSimpleGetKeepsAlive(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	echo := handlerFunc(func(req *httpmsg.Request) *httpmsg.Response {
		return httpBuilderOK()
	})

	sess := New(server, testOptions(), echo, noopUpgrade, testLogger(t), metrics.New())
	go sess.Run(context.Background())

	_, err := client.Write([]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.NoError(t, err)

	resp := readResponse(t, client)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "http-rs/0.1.0", resp.Header.Get("Server"))
	assert.NotEmpty(t, resp.Header.Get("Date"))
	assert.Equal(t, "keep-alive", resp.Header.Get("Connection"))
}

// scenario 2 of spec.md §8: two pipelined GETs get two responses in order
// on the same connection, then a third request carrying Connection: close
// ends it.
func TestSessionPipelinedRequestsThenClose(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	seen := make(chan string, 3)
	echo := handlerFunc(func(req *httpmsg.Request) *httpmsg.Response {
		seen <- req.Target
		return httpBuilderOK()
	})

	sess := New(server, testOptions(), echo, noopUpgrade, testLogger(t), metrics.New())
	go sess.Run(context.Background())

	go func() {
		_, _ = client.Write([]byte(
			"GET /one HTTP/1.1\r\nHost: x\r\n\r\n" +
				"GET /two HTTP/1.1\r\nHost: x\r\n\r\n" +
				"GET /three HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n",
		))
	}()

	r := bufio.NewReader(client)
	for i := 0; i < 2; i++ {
		resp := readResponseFrom(t, r)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "keep-alive", resp.Header.Get("Connection"))
	}
	last := readResponseFrom(t, r)
	assert.Equal(t, 200, last.StatusCode)
	assert.Equal(t, "close", last.Header.Get("Connection"))

	var targets []string
	for i := 0; i < 3; i++ {
		select {
		case target := <-seen:
			targets = append(targets, target)
		case <-time.After(time.Second):
			t.Fatal("handler was not invoked for all three requests")
		}
	}
	assert.Equal(t, []string{"/one", "/two", "/three"}, targets)
}

// A successful WebSocket upgrade writes the 101 handshake response, then
// hands control to the injected Upgrader instead of continuing the HTTP
// loop — the Connection Session itself never speaks the frame protocol.
func TestSessionUpgradeHandoff(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	upgraded := make(chan struct{}, 1)
	upgrade := func(ctx context.Context, conn net.Conn, log *logging.Logger, reg *metrics.Registry) {
		upgraded <- struct{}{}
	}

	echo := handlerFunc(func(req *httpmsg.Request) *httpmsg.Response { return httpBuilderOK() })
	sess := New(server, testOptions(), echo, upgrade, testLogger(t), metrics.New())
	go sess.Run(context.Background())

	req := "GET /ws HTTP/1.1\r\n" +
		"Host: x\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Version: 13\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n\r\n"
	_, err := client.Write([]byte(req))
	require.NoError(t, err)

	resp := readResponse(t, client)
	assert.Equal(t, 101, resp.StatusCode)
	assert.Equal(t, "websocket", resp.Header.Get("Upgrade"))
	assert.Equal(t, "Upgrade", resp.Header.Get("Connection"))
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", resp.Header.Get("Sec-Websocket-Accept"))

	select {
	case <-upgraded:
	case <-time.After(time.Second):
		t.Fatal("upgrader was never invoked")
	}
}

// An upgrade attempt that declares intent (Upgrade: websocket) but fails a
// sub-precondition (here, a missing Sec-WebSocket-Key) must get 400, not be
// routed to the handler as an ordinary GET.
func TestSessionMalformedUpgradeGetsBadRequest(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	called := make(chan struct{}, 1)
	echo := handlerFunc(func(req *httpmsg.Request) *httpmsg.Response {
		called <- struct{}{}
		return httpBuilderOK()
	})

	sess := New(server, testOptions(), echo, noopUpgrade, testLogger(t), metrics.New())
	go sess.Run(context.Background())

	req := "GET /ws HTTP/1.1\r\n" +
		"Host: x\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Version: 13\r\n\r\n"
	_, err := client.Write([]byte(req))
	require.NoError(t, err)

	resp := readResponse(t, client)
	assert.Equal(t, 400, resp.StatusCode)

	select {
	case <-called:
		t.Fatal("handler should not be invoked for a malformed upgrade request")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStatusClassBucketsAcrossAllRanges(t *testing.T) {
	cases := map[httpmsg.StatusCode]string{
		100: "1xx",
		200: "2xx",
		301: "3xx",
		404: "4xx",
		500: "5xx",
	}
	for status, want := range cases {
		assert.Equal(t, want, statusClass(status))
	}
}

func httpBuilderOK() *httpmsg.Response {
	resp := httpmsg.NewResponse(httpmsg.StatusOK)
	return resp
}

func readResponse(t *testing.T, conn net.Conn) *http.Response {
	t.Helper()
	return readResponseFrom(t, bufio.NewReader(conn))
}

func readResponseFrom(t *testing.T, r *bufio.Reader) *http.Response {
	t.Helper()
	resp, err := http.ReadResponse(r, nil)
	require.NoError(t, err)
	return resp
}
