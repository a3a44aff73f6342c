package httpparse

import (
	"strconv"
	"strings"

	"github.com/yourusername/httpwsd/internal/httperr"
)

// readChunkedBody implements the chunked decoding algorithm of spec §4.1:
// repeatedly read a chunk-size line (stripping ;-delimited extensions),
// read that many bytes plus the mandatory CRLF separator, stop at a
// zero-size chunk (after consuming the trailer section up to the blank
// line). The 10 MiB body cap is enforced cumulatively after every chunk.
func (p *Parser) readChunkedBody() ([]byte, error) {
	var body []byte

	for {
		line, err := p.readLine()
		if err != nil {
			return nil, err
		}

		sizeToken := line
		if semi := strings.IndexByte(line, ';'); semi != -1 {
			sizeToken = line[:semi]
		}
		sizeToken = strings.TrimSpace(sizeToken)

		size, err := strconv.ParseUint(sizeToken, 16, 63)
		if err != nil {
			return nil, httperr.New(httperr.KindMalformedRequest, "parse-chunk-size", err)
		}

		if size == 0 {
			if err := p.consumeTrailer(); err != nil {
				return nil, err
			}
			return body, nil
		}

		chunk, err := p.readN(int(size))
		if err != nil {
			return nil, err
		}
		body = append(body, chunk...)
		if len(body) > p.limits.MaxBodyBytes {
			return nil, httperr.New(httperr.KindPayloadTooLarge, "read-chunked-body", nil)
		}

		sep, err := p.readLine()
		if err != nil {
			return nil, err
		}
		if sep != "" {
			return nil, httperr.New(httperr.KindMalformedRequest, "read-chunk-separator", nil)
		}
	}
}

// consumeTrailer reads (and discards) any trailer headers after the
// zero-size chunk, up to and including the terminating blank line. Trailers
// on chunked bodies are explicitly out of scope (spec §1 Non-goals) — we
// only need to advance past them so leftover buffer bytes line up with the
// next request.
func (p *Parser) consumeTrailer() error {
	for {
		line, err := p.readLine()
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}
	}
}
