package handler

import (
	"strings"

	"github.com/yourusername/httpwsd/internal/httpmsg"
	"github.com/yourusername/httpwsd/internal/metrics"
)

// Router is the HttpRequest -> HttpResponse entry point wired into
// internal/session by default: /metrics is handled specially, everything
// else falls through to the static file tree.
type Router struct {
	static  StaticHandler
	metrics MetricsHandler
}

// NewRouter builds a Router serving files under staticRoot and exposing
// reg at /metrics.
func NewRouter(staticRoot string, reg *metrics.Registry) Router {
	return Router{
		static:  StaticHandler{Root: staticRoot},
		metrics: MetricsHandler{Registry: reg},
	}
}

// Handle implements the core HttpRequest -> HttpResponse contract.
func (r Router) Handle(req *httpmsg.Request) *httpmsg.Response {
	if strings.HasPrefix(req.Target, "/metrics") {
		return r.metrics.Handle(req)
	}
	return r.static.Handle(req)
}
