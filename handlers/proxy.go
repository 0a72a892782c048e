package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"
)

// BackendProxy forwards authenticated requests to the document-processing
// backend. The backend is an opaque collaborator: the gateway only vouches
// for the caller's identity and passes the request through unchanged apart
// from the identity header.
type BackendProxy struct {
	proxy  *httputil.ReverseProxy
	logger *zap.Logger
}

func NewBackendProxy(target *url.URL, logger *zap.Logger) *BackendProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("backend unreachable",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code":  http.StatusBadGateway,
			"error": "backend unavailable",
		})
	}
	return &BackendProxy{proxy: proxy, logger: logger}
}

// Handler must run behind the AuthMiddleware: it forwards the resolved
// username to the backend and streams the response back. No lock is held
// while delegating.
func (p *BackendProxy) Handler(w http.ResponseWriter, r *http.Request) error {
	session := SessionFromRequest(r)
	r.Header.Set("X-Authenticated-User", session.Username)
	p.proxy.ServeHTTP(w, r)
	return nil
}
