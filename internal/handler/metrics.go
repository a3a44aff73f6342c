package handler

import (
	"net/http/httptest"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourusername/httpwsd/internal/httpmsg"
	"github.com/yourusername/httpwsd/internal/httpwrite"
	"github.com/yourusername/httpwsd/internal/metrics"
)

// MetricsHandler renders GET /metrics via promhttp. promhttp speaks
// net/http.Handler, so we drive it with an httptest.ResponseRecorder and
// copy its output into an HttpResponse rather than teaching the core
// response writer a second serialization path.
type MetricsHandler struct {
	Registry *metrics.Registry
}

// Handle implements the core HttpRequest -> HttpResponse contract for
// GET /metrics.
func (h MetricsHandler) Handle(req *httpmsg.Request) *httpmsg.Response {
	if req.Method != httpmsg.MethodGet {
		return httpwrite.Status(httpmsg.StatusMethodNotAllowed).
			Header("Allow", "GET").
			Text("Method Not Allowed").
			Build()
	}

	rec := httptest.NewRecorder()
	promhttp.HandlerFor(h.Registry.Reg, promhttp.HandlerOpts{}).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	resp := httpwrite.Status(httpmsg.StatusOK).Body(rec.Body.Bytes()).Build()
	for name, values := range rec.Header() {
		for _, v := range values {
			resp.Headers.Add(name, v)
		}
	}
	return resp
}
