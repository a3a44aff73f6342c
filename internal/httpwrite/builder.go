// Package httpwrite builds an httpmsg.Response with a fluent API and
// serializes it to wire bytes with the mandatory server-side headers
// injected, per spec §4.2.
package httpwrite

import (
	"encoding/json"

	"github.com/yourusername/httpwsd/internal/httpmsg"
)

// Builder is a fluent HttpResponse constructor.
type Builder struct {
	resp *httpmsg.Response
}

// Status starts a new response with the given status code.
func Status(code httpmsg.StatusCode) *Builder {
	return &Builder{resp: httpmsg.NewResponse(code)}
}

// Header sets a caller-supplied response header. Names colliding with the
// mandatory injected headers (Date, Server, Content-Length, Connection) are
// kept here but overridden at serialization time — see Serialize.
func (b *Builder) Header(name, value string) *Builder {
	b.resp.Headers.Add(name, value)
	return b
}

// Body sets the raw response body.
func (b *Builder) Body(body []byte) *Builder {
	b.resp.Body = body
	return b
}

// Text sets Content-Type: text/plain; charset=utf-8 and the given body.
func (b *Builder) Text(s string) *Builder {
	b.resp.Headers.Set("Content-Type", "text/plain; charset=utf-8")
	b.resp.Body = []byte(s)
	return b
}

// HTML sets Content-Type: text/html; charset=utf-8 and the given body.
func (b *Builder) HTML(s string) *Builder {
	b.resp.Headers.Set("Content-Type", "text/html; charset=utf-8")
	b.resp.Body = []byte(s)
	return b
}

// JSON marshals v and sets Content-Type: application/json. A marshal
// failure here is a programmer error in the handler, not a wire-level
// concern, so it is reported back to the caller rather than silently
// swallowed.
func (b *Builder) JSON(v any) (*Builder, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	b.resp.Headers.Set("Content-Type", "application/json")
	b.resp.Body = data
	return b, nil
}

// Build returns the constructed response.
func (b *Builder) Build() *httpmsg.Response {
	return b.resp
}
