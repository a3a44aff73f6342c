// Package session implements the Connection Session of spec §4.3: the
// per-TCP-connection HTTP/1.1 keep-alive loop, including detection of and
// handoff into a WebSocket upgrade.
package session

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/httpwsd/internal/httperr"
	"github.com/yourusername/httpwsd/internal/httpmsg"
	"github.com/yourusername/httpwsd/internal/httpparse"
	"github.com/yourusername/httpwsd/internal/httpwrite"
	"github.com/yourusername/httpwsd/internal/logging"
	"github.com/yourusername/httpwsd/internal/metrics"
	"github.com/yourusername/httpwsd/internal/wshandshake"
)

// Handler answers one HTTP request. Router in internal/handler is the
// concrete implementation wired into cmd/httpwsd.
type Handler interface {
	Handle(req *httpmsg.Request) *httpmsg.Response
}

// Upgrader starts the WebSocket Session main loop once the handshake has
// already been written to conn. It blocks until the session ends.
type Upgrader func(ctx context.Context, conn net.Conn, log *logging.Logger, reg *metrics.Registry)

// Session drives one accepted TCP connection through the HTTP keep-alive
// state machine of spec §4.3, handing off to a WebSocket Session on a
// successful upgrade.
type Session struct {
	conn     net.Conn
	opts     Options
	handler  Handler
	upgrade  Upgrader
	log      *logging.Logger
	reg      *metrics.Registry
	id       string
}

// New builds a Session bound to conn. upgrade is normally
// wssession.Run, injected here to keep this package's compile-time
// dependency graph matching its narrative ("hands off to the WebSocket
// Session") instead of wiring the loop body directly into wssession.
func New(conn net.Conn, opts Options, handler Handler, upgrade Upgrader, log *logging.Logger, reg *metrics.Registry) *Session {
	id := uuid.NewString()
	return &Session{
		conn:    conn,
		opts:    opts,
		handler: handler,
		upgrade: upgrade,
		log:     log.Session("session", id),
		reg:     reg,
		id:      id,
	}
}

// Run drives the keep-alive loop until the connection closes, the request
// cap is hit, the peer asks to close, an unrecoverable error occurs, or ctx
// is cancelled (graceful shutdown).
func (s *Session) Run(ctx context.Context) {
	defer s.conn.Close()

	limits := httpparse.Limits{MaxHeaderBytes: s.opts.MaxHeaderBytes, MaxBodyBytes: s.opts.MaxBodyBytes}
	parser := httpparse.NewParser(s.conn, limits)

	for requestNum := 1; ; requestNum++ {
		select {
		case <-ctx.Done():
			s.log.Debugw("shutting down idle connection", "requests_served", requestNum-1)
			return
		default:
		}

		_ = s.conn.SetReadDeadline(time.Now().Add(s.opts.IdleTimeout))

		hooks := httpparse.Hooks{
			OnFirstByte: func() {
				_ = s.conn.SetReadDeadline(time.Now().Add(HeaderReadTimeout))
			},
			OnHeadersDone: func() {
				_ = s.conn.SetReadDeadline(time.Now().Add(BodyReadTimeout))
			},
		}

		req, err := parser.ReadRequest(hooks)
		if err != nil {
			s.handleReadError(err, requestNum)
			return
		}

		if key, result := wshandshake.Validate(req); result == wshandshake.OK {
			s.handleUpgrade(ctx, key)
			return
		} else if result == wshandshake.VersionMismatch {
			s.writeAndMaybeClose(httpwrite.Status(httpmsg.StatusUpgradeRequired).Text("Upgrade Required").Build(), false)
			return
		} else if req.Headers.HasToken("Upgrade", "websocket") {
			// A request that declares intent to upgrade but fails some other
			// precondition (bad/missing Sec-WebSocket-Key, non-GET, missing
			// Connection: Upgrade, ...) gets 400 per spec §4.3/§4.4, rather
			// than falling through to the static handler as an ordinary GET.
			s.writeAndMaybeClose(httpwrite.Status(httpmsg.StatusBadRequest).Text("Bad Request").Build(), false)
			return
		}

		start := time.Now()
		resp := s.handler.Handle(req)
		s.reg.RequestDuration.Observe(time.Since(start).Seconds())
		s.reg.RequestsTotal.WithLabelValues(statusClass(resp.Status)).Inc()

		keepAlive := s.keepAliveDecision(req, resp, requestNum)
		s.writeAndMaybeClose(resp, keepAlive)
		if !keepAlive {
			return
		}
	}
}

func (s *Session) handleUpgrade(ctx context.Context, key string) {
	accept := wshandshake.ComputeAccept(key)
	resp := httpwrite.Status(httpmsg.StatusSwitchingProtocols).
		Header("Upgrade", "websocket").
		Header("Sec-WebSocket-Accept", accept).
		Build()

	wire := httpwrite.Serialize(resp, httpwrite.Decision{Upgrade: true})
	if _, err := s.conn.Write(wire); err != nil {
		return
	}
	s.reg.WSUpgradesTotal.Inc()
	s.log.Infow("upgraded to websocket")
	_ = s.conn.SetReadDeadline(time.Time{})
	s.upgrade(ctx, s.conn, s.log, s.reg)
}

// keepAliveDecision implements spec §4.3's table: close on HTTP/1.0 without
// an explicit Connection: keep-alive, close on explicit Connection: close,
// close on status >=500 or in {400,408,413,431}, otherwise keep alive
// capped at MaxRequests.
func (s *Session) keepAliveDecision(req *httpmsg.Request, resp *httpmsg.Response, requestNum int) bool {
	if req.Headers.HasToken("Connection", "close") {
		return false
	}
	if req.Version == "HTTP/1.0" && !req.Headers.HasToken("Connection", "keep-alive") {
		return false
	}
	switch resp.Status {
	case httpmsg.StatusBadRequest, httpmsg.StatusRequestTimeout, httpmsg.StatusPayloadTooLarge, httpmsg.StatusHeaderTooLarge:
		return false
	}
	if int(resp.Status) >= 500 {
		return false
	}
	if requestNum >= s.opts.MaxRequests {
		return false
	}
	return true
}

// statusClass buckets a status code into the "2xx"/"3xx"/... label
// prometheus.CounterVec expects, keeping cardinality fixed regardless of
// how many distinct codes the handler returns.
func statusClass(status httpmsg.StatusCode) string {
	return string([]byte{'0' + byte(int(status)/100), 'x', 'x'})
}

func (s *Session) writeAndMaybeClose(resp *httpmsg.Response, keepAlive bool) {
	decision := httpwrite.Decision{KeepAlive: keepAlive, TimeoutSecs: int(s.opts.IdleTimeout.Seconds()), MaxRequests: s.opts.MaxRequests}
	wire := httpwrite.Serialize(resp, decision)
	_, _ = s.conn.Write(wire)
}

// handleReadError maps a parser error to a response per spec §7, writing
// one when the taxonomy has an HTTP representation and always closing the
// connection afterward — a parse failure never resumes keep-alive.
func (s *Session) handleReadError(err error, requestNum int) {
	var herr *httperr.Error
	if !errors.As(err, &herr) {
		s.log.Warnw("unclassified read error", "err", err)
		return
	}

	switch herr.Kind {
	case httperr.KindConnectionClosed:
		s.log.Debugw("connection closed by peer", "requests_served", requestNum-1)
		return
	case httperr.KindIO:
		s.log.Debugw("connection io error", "err", herr.Err)
		return
	}

	code, ok := herr.Kind.StatusCode()
	if !ok {
		return
	}
	resp := httpwrite.Status(code).Text(httpmsg.ReasonPhrase(code)).Build()
	s.writeAndMaybeClose(resp, false)
}
