package httpparse

import (
	"bytes"
	"errors"
	"io"
	"net"
	"strconv"

	"github.com/yourusername/httpwsd/internal/httperr"
	"github.com/yourusername/httpwsd/internal/httpmsg"
)

// readChunkSize is the scratch slab used for each conn.Read call; the
// growBuffer is what actually persists unconsumed bytes across requests.
const readChunkSize = 4096

// Parser drives the incremental, two(+one)-phase request parser of spec
// §4.1 over one TCP connection's lifetime. Its buffer survives across
// requests so a pipelined client's second request — already read off the
// wire while the first was being served — isn't thrown away.
type Parser struct {
	conn   net.Conn
	buf    growBuffer
	limits Limits
}

// NewParser returns a Parser bound to conn with the given size limits.
func NewParser(conn net.Conn, limits Limits) *Parser {
	return &Parser{conn: conn, limits: limits}
}

// Hooks lets the caller react to parser-lifecycle events without the
// Parser knowing anything about deadlines: the Connection Session uses
// these to swap its idle-keepalive read deadline for the per-request header
// deadline on the first byte of a new request, and then for the body
// deadline once headers are complete — see spec §4.3/§5.
type Hooks struct {
	// OnFirstByte is called once, the first time ReadRequest observes any
	// bytes at all for this request.
	OnFirstByte func()
	// OnHeadersDone is called once headers are fully parsed, before body
	// framing begins.
	OnHeadersDone func()
}

// ReadRequest parses exactly one HTTP request, reading from the connection
// as needed. hooks may be the zero value if the caller doesn't need
// deadline transitions (e.g. the synchronous test paths).
func (p *Parser) ReadRequest(hooks Hooks) (*httpmsg.Request, error) {
	headBytes, err := p.readHead(hooks.OnFirstByte)
	if err != nil {
		return nil, err
	}

	head, err := parseHead(headBytes)
	if err != nil {
		return nil, err
	}

	if hooks.OnHeadersDone != nil {
		hooks.OnHeadersDone()
	}

	body, err := p.readBody(head)
	if err != nil {
		return nil, err
	}

	return &httpmsg.Request{
		Method:  head.Method,
		Target:  head.Target,
		Version: head.Version,
		Headers: head.Headers,
		Body:    body,
	}, nil
}

// readHead implements Phase 1: accumulate bytes until CRLFCRLF, enforcing
// the 16 KiB cumulative header cap and distinguishing a clean close (empty
// buffer) from a mid-request close (non-empty buffer).
func (p *Parser) readHead(onFirstByte func()) ([]byte, error) {
	seenByte := p.buf.Len() > 0
	if seenByte && onFirstByte != nil {
		onFirstByte()
	}
	for {
		if idx := bytes.Index(p.buf.Bytes(), []byte(crlf+crlf)); idx != -1 {
			if idx+4 > p.limits.MaxHeaderBytes {
				return nil, httperr.New(httperr.KindHeaderTooLarge, "read-headers", nil)
			}
			head := make([]byte, idx)
			copy(head, p.buf.Bytes()[:idx])
			p.buf.Consume(idx + 4)
			return head, nil
		}

		if p.buf.Len() > p.limits.MaxHeaderBytes {
			return nil, httperr.New(httperr.KindHeaderTooLarge, "read-headers", nil)
		}

		n, err := p.fill()
		if n > 0 && !seenByte {
			seenByte = true
			if onFirstByte != nil {
				onFirstByte()
			}
		}
		if n == 0 && err != nil {
			return nil, classifyReadErr("read-headers", err, p.buf.Len() == 0)
		}
	}
}

// fill reads one chunk from the connection into the persistent buffer.
func (p *Parser) fill() (int, error) {
	tmp := make([]byte, readChunkSize)
	n, err := p.conn.Read(tmp)
	if n > 0 {
		p.buf.Append(tmp[:n])
	}
	return n, err
}

// readBody implements Phase 3: the body-framing selection rule. Transfer-
// Encoding: chunked takes precedence over Content-Length when both are
// present, per RFC 7230 §3.3.3 — this resolves the open question of spec §9
// in favor of "chunked wins", recorded in DESIGN.md.
func (p *Parser) readBody(head *parsedHead) ([]byte, error) {
	if !head.Method.HasBody() {
		return nil, nil
	}

	if lastCoding, ok := head.Headers.LastToken("Transfer-Encoding"); ok && lastCoding == "chunked" {
		return p.readChunkedBody()
	}

	if raw, ok := head.Headers.Get("Content-Length"); ok {
		return p.readFixedBody(raw)
	}

	return nil, nil
}

func (p *Parser) readFixedBody(raw string) ([]byte, error) {
	length, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || length < 0 {
		return nil, httperr.New(httperr.KindMalformedRequest, "parse-content-length", err)
	}
	if length > int64(p.limits.MaxBodyBytes) {
		return nil, httperr.New(httperr.KindPayloadTooLarge, "read-fixed-body", nil)
	}
	if length == 0 {
		return nil, nil
	}
	return p.readN(int(length))
}

// readN ensures the buffer holds at least n unconsumed bytes, reading more
// from the connection as needed, then consumes and returns exactly n bytes.
func (p *Parser) readN(n int) ([]byte, error) {
	for p.buf.Len() < n {
		if _, err := p.fill(); err != nil {
			return nil, classifyReadErr("read-body", err, false)
		}
	}
	out := make([]byte, n)
	copy(out, p.buf.Bytes()[:n])
	p.buf.Consume(n)
	return out, nil
}

// readLine returns the next CRLF-terminated line, without the CRLF,
// consuming it from the buffer. Used by the chunked decoder for chunk-size
// lines and the mandatory chunk separator.
func (p *Parser) readLine() (string, error) {
	for {
		if idx := bytes.Index(p.buf.Bytes(), []byte(crlf)); idx != -1 {
			line := string(p.buf.Bytes()[:idx])
			p.buf.Consume(idx + 2)
			return line, nil
		}
		if _, err := p.fill(); err != nil {
			return "", classifyReadErr("read-chunk-line", err, false)
		}
	}
}

// classifyReadErr maps a raw net.Conn.Read error to the taxonomy of spec
// §7. A deadline exceeded with nothing buffered yet is an idle timeout —
// indistinguishable from a clean close for the session's purposes, so it
// is reported as ConnectionClosed and handled silently; a deadline
// exceeded mid-message is a visible Timeout. EOF with nothing buffered is
// a clean ConnectionClosed, EOF mid-message is MalformedRequest. Anything
// else is a plain Io failure.
func classifyReadErr(op string, err error, emptyBuffer bool) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		if emptyBuffer {
			return httperr.New(httperr.KindConnectionClosed, op, nil)
		}
		return httperr.New(httperr.KindTimeout, op, err)
	}
	if errors.Is(err, io.EOF) {
		if emptyBuffer {
			return httperr.New(httperr.KindConnectionClosed, op, nil)
		}
		return httperr.New(httperr.KindMalformedRequest, op, err)
	}
	return httperr.New(httperr.KindIO, op, err)
}
