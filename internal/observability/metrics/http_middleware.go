package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPMetricsMiddleware instruments requests with Prometheus metrics
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)
		dur := time.Since(start)
		ObserveHTTPRequest(r.Method, normalizePath(r.URL.Path), strconv.Itoa(ww.status), dur)
	})
}

// normalizePath collapses identifier path segments so the path label stays
// low-cardinality.
func normalizePath(p string) string {
	switch {
	case strings.HasPrefix(p, "/api/properties/") && p != "/api/properties/search":
		return "/api/properties/{id}"
	case strings.HasPrefix(p, "/api/offers/") && p != "/api/offers/my":
		if strings.HasSuffix(p, "/status") {
			return "/api/offers/{offerId}/status"
		}
		return "/api/offers/{propertyId}"
	case strings.HasPrefix(p, "/ws/offers/"):
		return "/ws/offers/{propertyId}"
	}
	return p
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets WebSocket upgrades work through the instrumented writer
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}
