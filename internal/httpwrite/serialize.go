package httpwrite

import (
	"strconv"
	"strings"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/yourusername/httpwsd/internal/httpmsg"
)

// ServerName is the literal Server header value. This is wire-visible
// surface the scenarios in spec §8 assert on verbatim — it is kept exactly
// as spec.md names it rather than renamed to this repository's module path.
const ServerName = "http-rs/0.1.0"

// imfFixdate is the fixed HTTP-date format of RFC 7231 §7.1.1.1, e.g.
// "Sun, 06 Nov 1994 08:49:37 GMT".
const imfFixdate = "Mon, 02 Jan 2006 15:04:05 GMT"

// injectedHeaders are the names Serialize always overrides, in the exact
// order spec §4.2 mandates they appear.
var injectedHeaders = []string{"Date", "Server", "Content-Length", "Connection"}

// Decision is the Connection Session's keep-alive verdict (spec §4.3),
// passed in so the writer can emit the matching Connection/Keep-Alive
// headers without knowing the session's state machine.
type Decision struct {
	KeepAlive   bool
	TimeoutSecs int
	MaxRequests int

	// Upgrade marks the 101 handshake response of spec §4.4: Connection
	// must read "Upgrade" rather than the usual keep-alive/close verdict,
	// and no Keep-Alive header is emitted.
	Upgrade bool
}

// Serialize renders resp to wire bytes: status line, the four mandatory
// headers in fixed order (overriding any caller-supplied duplicate),
// caller headers in insertion order (skipping already-injected names), a
// blank line, then the body. When the session keeps the connection alive,
// a Keep-Alive header advertising the enforced ceilings is appended too.
func Serialize(resp *httpmsg.Response, decision Decision) []byte {
	sb := bytebufferpool.Get()
	defer bytebufferpool.Put(sb)

	sb.WriteString("HTTP/1.1 ")
	sb.WriteString(strconv.Itoa(int(resp.Status)))
	sb.WriteByte(' ')
	sb.WriteString(httpmsg.ReasonPhrase(resp.Status))
	sb.WriteString(crlf)

	sb.WriteString("Date: ")
	sb.WriteString(time.Now().UTC().Format(imfFixdate))
	sb.WriteString(crlf)

	sb.WriteString("Server: ")
	sb.WriteString(ServerName)
	sb.WriteString(crlf)

	sb.WriteString("Content-Length: ")
	sb.WriteString(strconv.Itoa(len(resp.Body)))
	sb.WriteString(crlf)

	sb.WriteString("Connection: ")
	switch {
	case decision.Upgrade:
		sb.WriteString("Upgrade")
	case decision.KeepAlive:
		sb.WriteString("keep-alive")
	default:
		sb.WriteString("close")
	}
	sb.WriteString(crlf)

	if decision.KeepAlive && !decision.Upgrade {
		sb.WriteString("Keep-Alive: timeout=")
		sb.WriteString(strconv.Itoa(decision.TimeoutSecs))
		sb.WriteString(", max=")
		sb.WriteString(strconv.Itoa(decision.MaxRequests))
		sb.WriteString(crlf)
	}

	resp.Headers.Each(func(name, value string) {
		if isInjected(name) {
			return
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteString(crlf)
	})

	sb.WriteString(crlf)

	out := make([]byte, 0, sb.Len()+len(resp.Body))
	out = append(out, sb.String()...)
	out = append(out, resp.Body...)
	return out
}

const crlf = "\r\n"

func isInjected(name string) bool {
	for _, injected := range injectedHeaders {
		if strings.EqualFold(name, injected) {
			return true
		}
	}
	return false
}
