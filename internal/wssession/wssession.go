// Package wssession implements the WebSocket Session main loop of spec
// §4.6: read the socket, feed an incremental wsframe.Parse loop, dispatch
// by opcode, run a heartbeat loop that sends a Ping every HeartbeatInterval
// and, if no Pong arrives within PongTimeout, closes the session, and
// enforce the single-writer ordering guarantee for outbound frames.
package wssession

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/yourusername/httpwsd/internal/logging"
	"github.com/yourusername/httpwsd/internal/metrics"
	"github.com/yourusername/httpwsd/internal/wsframe"
)

// OnMessage is the demo/application callback for Text and Binary frames;
// Ping, Pong, and Close are handled internally and never reach it.
type OnMessage func(wsframe.Frame) (wsframe.Frame, bool)

// Options configures the heartbeat cadence.
type Options struct {
	HeartbeatInterval time.Duration
	PongTimeout       time.Duration
}

// readTick bounds how long a single conn.Read blocks, so the loop can
// notice ctx cancellation even when the peer sends nothing.
const readTick = 1 * time.Second

type session struct {
	conn      net.Conn
	onMessage OnMessage
	opts      Options
	log       *logging.Logger
	reg       *metrics.Registry

	writeMu sync.Mutex

	pongMu       sync.Mutex
	awaitingPong bool
	pongCh       chan struct{}
}

// Run drives one WebSocket Session until the peer closes, a protocol
// violation or unsupported frame is observed, a heartbeat Ping goes
// unanswered within PongTimeout, or ctx is cancelled. conn is closed on
// return.
func Run(ctx context.Context, conn net.Conn, onMessage OnMessage, opts Options, log *logging.Logger, reg *metrics.Registry) {
	s := &session{conn: conn, onMessage: onMessage, opts: opts, log: log, reg: reg, pongCh: make(chan struct{}, 1)}
	s.run(ctx)
}

func (s *session) run(ctx context.Context) {
	defer s.conn.Close()

	done := make(chan struct{})
	defer close(done)
	go s.heartbeatLoop(ctx, done)

	var buf []byte
	tmp := make([]byte, 4096)

	for {
		select {
		case <-ctx.Done():
			_ = s.writeFrame(wsframe.NewClose(1001, "going away"))
			return
		default:
		}

		_ = s.conn.SetReadDeadline(time.Now().Add(readTick))
		n, err := s.conn.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
		}
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				// readTick only bounds how often the loop wakes up to
				// notice ctx cancellation; the pong deadline itself is
				// enforced by heartbeatLoop, which closes conn directly
				// and surfaces here as the non-timeout branch below.
				continue
			}
			// Any other read error (EOF, reset, heartbeatLoop's deadline
			// close, ...) ends the session; the unparsed remainder of buf
			// is discarded without error per the cancellation semantics
			// of spec §4.6.
			return
		}

		for {
			frame, consumed, perr := wsframe.Parse(buf)
			if perr != nil {
				var pe *wsframe.ParseError
				if !errors.As(perr, &pe) {
					return
				}
				switch pe.Kind {
				case wsframe.Incomplete:
				case wsframe.Unsupported:
					_ = s.writeFrame(wsframe.NewClose(1003, "unsupported"))
					return
				default:
					_ = s.writeFrame(wsframe.NewClose(1002, "protocol error"))
					return
				}
				break
			}

			buf = buf[consumed:]
			s.countFrame(frame.Kind)
			if !s.dispatch(frame) {
				return
			}
		}
	}
}

// dispatch implements the opcode table of spec §4.6: Text/Binary go to
// onMessage, Ping gets an automatic Pong, Pong clears the awaiting-pong flag
// and wakes heartbeatLoop, Close is echoed once and ends the session.
func (s *session) dispatch(f wsframe.Frame) bool {
	switch f.Kind {
	case wsframe.KindText, wsframe.KindBinary:
		reply, ok := s.onMessage(f)
		if !ok {
			return true
		}
		return s.writeFrame(reply) == nil

	case wsframe.KindPing:
		return s.writeFrame(wsframe.NewPong(f.Payload)) == nil

	case wsframe.KindPong:
		s.setAwaitingPong(false)
		select {
		case s.pongCh <- struct{}{}:
		default:
		}
		return true

	case wsframe.KindClose:
		code, reason := uint16(1000), ""
		if f.HasClose {
			code, reason = f.CloseCode, f.CloseReason
		}
		_ = s.writeFrame(wsframe.NewClose(code, reason))
		return false

	default:
		return true
	}
}

// heartbeatLoop implements spec §4.6's heartbeat: every HeartbeatInterval it
// sends a Ping and marks one outstanding, then waits up to PongTimeout for a
// Pong (any Pong counts, whatever its payload). If PongTimeout elapses while still awaiting one, the
// session sends Close(1002) and ends. Closing conn (rather than returning a
// signal through a channel) is what actually unblocks run's conn.Read and
// ends the main loop — see the non-timeout branch there.
func (s *session) heartbeatLoop(ctx context.Context, done <-chan struct{}) {
	for {
		select {
		case <-time.After(s.opts.HeartbeatInterval):
		case <-done:
			return
		case <-ctx.Done():
			return
		}

		s.setAwaitingPong(true)
		if s.writeFrame(wsframe.NewPing(nil)) != nil {
			return
		}

		select {
		case <-s.pongCh:
			// Pong arrived in time; loop back and wait the next interval.
		case <-time.After(s.opts.PongTimeout):
			if s.isAwaitingPong() {
				_ = s.writeFrame(wsframe.NewClose(1002, "pong timeout"))
				_ = s.conn.Close()
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *session) writeFrame(f wsframe.Frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.conn.Write(wsframe.Encode(f))
	return err
}

// setAwaitingPong records whether a Ping probe is outstanding. Per spec §9
// ("heartbeat vs. inbound traffic"), any inbound Pong clears it regardless
// of whether its payload matches the last Ping sent.
func (s *session) setAwaitingPong(v bool) {
	s.pongMu.Lock()
	s.awaitingPong = v
	s.pongMu.Unlock()
}

func (s *session) isAwaitingPong() bool {
	s.pongMu.Lock()
	defer s.pongMu.Unlock()
	return s.awaitingPong
}

func (s *session) countFrame(kind wsframe.Kind) {
	if s.reg == nil {
		return
	}
	s.reg.WSFramesByOpcode.WithLabelValues(kindLabel(kind)).Inc()
}

func kindLabel(kind wsframe.Kind) string {
	switch kind {
	case wsframe.KindText:
		return "text"
	case wsframe.KindBinary:
		return "binary"
	case wsframe.KindPing:
		return "ping"
	case wsframe.KindPong:
		return "pong"
	case wsframe.KindClose:
		return "close"
	default:
		return "unknown"
	}
}
