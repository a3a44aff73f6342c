package httpparse

import (
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/yourusername/httpwsd/internal/httperr"
	"github.com/yourusername/httpwsd/internal/httpmsg"
)

const crlf = "\r\n"

// parsedHead is the result of Phase 2 (spec §4.1): the request line plus
// headers, before any body framing has happened.
type parsedHead struct {
	Method  httpmsg.Method
	Target  string
	Version string
	Headers *httpmsg.Header
}

// parseHead splits the bytes up to (but not including) the header
// terminator on CRLF and parses line 0 as the request line and the rest as
// "name: value" headers. headBytes must not include the trailing CRLFCRLF.
func parseHead(headBytes []byte) (*parsedHead, error) {
	lines := strings.Split(string(headBytes), crlf)

	requestLine, err := parseRequestLine(lines[0])
	if err != nil {
		return nil, err
	}

	headers := httpmsg.NewHeader()
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		// Obsolete line folding starts a continuation line with SP/HTAB;
		// since we already split on CRLF, such a line would show up here
		// as leading whitespace with no colon of its own — reject it.
		if line[0] == ' ' || line[0] == '\t' {
			return nil, httperr.New(httperr.KindMalformedRequest, "parse-header-line", nil)
		}
		name, value, err := parseHeaderLine(line)
		if err != nil {
			return nil, err
		}
		headers.Add(name, value)
	}

	return &parsedHead{
		Method:  requestLine.method,
		Target:  requestLine.target,
		Version: requestLine.version,
		Headers: headers,
	}, nil
}

type requestLine struct {
	method  httpmsg.Method
	target  string
	version string
}

// parseRequestLine validates "<method> SP <target> SP <version>" — exactly
// three tokens separated by single spaces, per spec §4.1 Phase 2.
func parseRequestLine(line string) (*requestLine, error) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return nil, httperr.New(httperr.KindMalformedRequest, "parse-request-line", nil)
	}

	method, ok := httpmsg.ParseMethod(parts[0])
	if !ok {
		return nil, httperr.New(httperr.KindMalformedRequest, "parse-method", nil)
	}

	target := parts[1]
	if target == "" {
		return nil, httperr.New(httperr.KindMalformedRequest, "parse-target", nil)
	}

	version := parts[2]
	if !isSupportedVersion(version) {
		return nil, httperr.New(httperr.KindMalformedRequest, "parse-version", nil)
	}

	return &requestLine{method: method, target: target, version: version}, nil
}

func isSupportedVersion(v string) bool {
	return v == "HTTP/1.1" || v == "HTTP/1.0"
}

// parseHeaderLine splits "name: value", trims surrounding whitespace from
// the value, and validates both per RFC 7230 token/field-value grammar using
// the same validators the wider Go ecosystem uses (golang.org/x/net's
// httpguts), rather than a hand-rolled byte-range check.
func parseHeaderLine(line string) (name, value string, err error) {
	colon := strings.IndexByte(line, ':')
	if colon <= 0 {
		return "", "", httperr.New(httperr.KindMalformedRequest, "parse-header-line", nil)
	}
	name = line[:colon]
	if strings.ContainsAny(name, " \t") {
		// SP/HTAB between field-name and colon is invalid per RFC 7230 §3.2.4.
		return "", "", httperr.New(httperr.KindMalformedRequest, "parse-header-name", nil)
	}
	if !httpguts.ValidHeaderFieldName(name) {
		return "", "", httperr.New(httperr.KindMalformedRequest, "validate-header-name", nil)
	}

	value = strings.TrimSpace(line[colon+1:])
	if !httpguts.ValidHeaderFieldValue(value) {
		return "", "", httperr.New(httperr.KindMalformedRequest, "validate-header-value", nil)
	}

	return name, value, nil
}
