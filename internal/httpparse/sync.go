package httpparse

import (
	"bytes"

	"github.com/yourusername/httpwsd/internal/httperr"
	"github.com/yourusername/httpwsd/internal/httpmsg"
)

// Head is the parsed request line and headers, exposed for the synchronous
// header-only test variant described in spec §4.1 ("for testing, a
// synchronous variant exposes header parsing only").
type Head struct {
	Method  httpmsg.Method
	Target  string
	Version string
	Headers *httpmsg.Header
}

// ParseHeadersSync consumes a complete byte slice and parses only the
// request line and headers — the body-reading step is skipped entirely, so
// callers can feed this invariant-testing code arbitrary slices without
// needing a live connection. It returns the parsed head and the number of
// bytes consumed (through and including the terminating CRLFCRLF), or
// (nil, 0, nil) if the terminator has not yet arrived, mirroring the
// Incomplete signal of the frame codec.
func ParseHeadersSync(data []byte, maxHeaderBytes int) (*Head, int, error) {
	idx := bytes.Index(data, []byte(crlf+crlf))
	if idx == -1 {
		if len(data) > maxHeaderBytes {
			return nil, 0, httperr.New(httperr.KindHeaderTooLarge, "parse-headers-sync", nil)
		}
		return nil, 0, nil
	}

	head, err := parseHead(data[:idx])
	if err != nil {
		return nil, 0, err
	}

	return &Head{
		Method:  head.Method,
		Target:  head.Target,
		Version: head.Version,
		Headers: head.Headers,
	}, idx + 4, nil
}
