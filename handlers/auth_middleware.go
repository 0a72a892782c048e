package handlers

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/docmill/docgate/core"
	"github.com/docmill/docgate/models"
	"github.com/docmill/docgate/pkg/metrics"
	"github.com/docmill/docgate/pkg/router"
)

const (
	AuthCookieName = "docgate_auth_token"
	LoginPath      = "/login"

	bearerScheme = "Bearer "
)

type sessionKey struct{}

func contextWithSession(ctx context.Context, session models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func sessionFromContext(ctx context.Context) (models.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(models.Session)
	return session, ok
}

// SessionFromRequest extracts the session from the request context.
// It must be called in handlers that are protected by the AuthMiddleware.
// It panics if the session is not found in the request context.
func SessionFromRequest(r *http.Request) models.Session {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		panic("session not found in request context: call this function in handlers that are protected by AuthMiddleware")
	}
	return session
}

// TokenFromRequest extracts the bearer token from the request. The
// Authorization header takes precedence; the auth cookie is the fallback.
// ok is false when neither carrier is present.
func TokenFromRequest(r *http.Request) (token string, ok bool) {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, bearerScheme) {
		if token := strings.TrimPrefix(header, bearerScheme); token != "" {
			return token, true
		}
	}

	cookie, err := r.Cookie(AuthCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// wantsHTML reports whether the client is a browser-navigation request that
// should be redirected rather than given a JSON error body.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// AuthMiddleware verifies the bearer token carried by the request and
// attaches the resolved session to the request context. Requests with no
// token are rejected without invoking the codec. All failure modes look
// identical to the caller; the distinct reason is only logged.
func AuthMiddleware(codec *core.TokenCodec, m *metrics.Metrics, logger *zap.Logger) router.Middleware {

	return func(next http.Handler) router.HandlerFunc {

		return func(w http.ResponseWriter, r *http.Request) error {
			token, ok := TokenFromRequest(r)
			if !ok {
				logger.Debug("no credential presented",
					zap.String("path", r.URL.Path))
				return reject(w, r)
			}

			username, err := codec.Verify(token)
			if err != nil {
				m.ObserveTokenVerification(false)
				logger.Info("token rejected",
					zap.String("path", r.URL.Path),
					zap.String("reason", err.Error()))
				return reject(w, r)
			}
			m.ObserveTokenVerification(true)

			session := models.Session{Username: username, Token: token}
			next.ServeHTTP(w, r.WithContext(contextWithSession(r.Context(), session)))
			return nil
		}
	}
}

// reject answers an unauthenticated request: browsers get a redirect to the
// login page, everything else gets the structured 401 body.
func reject(w http.ResponseWriter, r *http.Request) error {
	if wantsHTML(r) {
		http.Redirect(w, r, LoginPath, http.StatusFound)
		return nil
	}
	return newUnauthorizedError()
}
