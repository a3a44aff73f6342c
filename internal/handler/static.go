// Package handler is the one concrete HTTP/WebSocket handler wired into
// cmd/httpwsd by default: static file serving under Config.StaticRoot, a
// /metrics endpoint, and the WebSocket echo demo of spec.md §8 scenario 5.
// None of this lives in internal/session or internal/httpparse — per
// spec §1, request routing and static-file serving are explicitly out of
// core scope, so they stay here instead.
package handler

import (
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/httpwsd/internal/httpmsg"
	"github.com/yourusername/httpwsd/internal/httpwrite"
)

// StaticHandler serves files under root for GET/HEAD, 404 on a missing or
// out-of-root path, 405 for any other method.
type StaticHandler struct {
	Root string
}

// Handle implements the core HttpRequest -> HttpResponse contract of
// spec §6 for the static file tree.
func (h StaticHandler) Handle(req *httpmsg.Request) *httpmsg.Response {
	if req.Method != httpmsg.MethodGet && req.Method != httpmsg.MethodHead {
		return httpwrite.Status(httpmsg.StatusMethodNotAllowed).
			Header("Allow", "GET, HEAD").
			Text("Method Not Allowed").
			Build()
	}

	path, ok := h.resolve(req.Target)
	if !ok {
		return httpwrite.Status(httpmsg.StatusNotFound).Text("Not Found").Build()
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return httpwrite.Status(httpmsg.StatusNotFound).Text("Not Found").Build()
	}

	data, err := readFile(path)
	if err != nil {
		return httpwrite.Status(httpmsg.StatusInternalError).Text("Internal Server Error").Build()
	}

	b := httpwrite.Status(httpmsg.StatusOK).
		Header("Content-Type", contentType(path))
	if req.Method == httpmsg.MethodHead {
		return b.Build()
	}
	return b.Body(data).Build()
}

// resolve maps a request target to a filesystem path strictly inside
// h.Root, rejecting any ".." escape after cleaning.
func (h StaticHandler) resolve(target string) (string, bool) {
	if idx := strings.IndexAny(target, "?#"); idx != -1 {
		target = target[:idx]
	}
	clean := filepath.Clean("/" + target)
	if clean == "/" {
		clean = "/index.html"
	}
	full := filepath.Join(h.Root, clean)
	rootAbs, err := filepath.Abs(h.Root)
	if err != nil {
		return "", false
	}
	fullAbs, err := filepath.Abs(full)
	if err != nil {
		return "", false
	}
	if fullAbs != rootAbs && !strings.HasPrefix(fullAbs, rootAbs+string(filepath.Separator)) {
		return "", false
	}
	return fullAbs, true
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func contentType(path string) string {
	ext := filepath.Ext(path)
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
