package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/docmill/docgate/core"
	"github.com/docmill/docgate/handlers"
	"github.com/docmill/docgate/pkg/metrics"
	"github.com/docmill/docgate/pkg/router"
)

func newTestCodec() *core.TokenCodec {
	return core.NewTokenCodec(core.DeriveKey("test_passphrase"), 24*time.Hour)
}

// newProtectedRouter wires a single protected route that echoes the
// authenticated username.
func newProtectedRouter(codec *core.TokenCodec) *router.Router {
	r := router.New()
	authMiddleware := handlers.AuthMiddleware(codec, metrics.New(), zap.NewNop())
	r.With(authMiddleware).Get("/protected", func(w http.ResponseWriter, req *http.Request) error {
		session := handlers.SessionFromRequest(req)
		_, err := w.Write([]byte(session.Username))
		return err
	})
	return r
}

func Test_TokenFromRequest(t *testing.T) {

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer abc")
		token, ok := handlers.TokenFromRequest(r)
		assert.True(t, ok)
		assert.Equal(t, "abc", token)
	})

	t.Run("cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: handlers.AuthCookieName, Value: "xyz"})
		token, ok := handlers.TokenFromRequest(r)
		assert.True(t, ok)
		assert.Equal(t, "xyz", token)
	})

	t.Run("header takes precedence over cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer from-header")
		r.AddCookie(&http.Cookie{Name: handlers.AuthCookieName, Value: "from-cookie"})
		token, ok := handlers.TokenFromRequest(r)
		assert.True(t, ok)
		assert.Equal(t, "from-header", token)
	})

	t.Run("non-bearer scheme ignored", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		_, ok := handlers.TokenFromRequest(r)
		assert.False(t, ok)
	})

	t.Run("nothing presented", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		_, ok := handlers.TokenFromRequest(r)
		assert.False(t, ok)
	})
}

func Test_AuthMiddleware(t *testing.T) {
	codec := newTestCodec()
	r := newProtectedRouter(codec)

	token, _, err := codec.Issue("administrator")
	require.NoError(t, err)

	t.Run("valid token via header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "administrator", rec.Body.String())
	})

	t.Run("valid token via cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: handlers.AuthCookieName, Value: token})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "administrator", rec.Body.String())
	})

	t.Run("no credential yields json 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"redirect":"/login"`)
	})

	t.Run("no credential redirects browsers to login", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, handlers.LoginPath, rec.Header().Get("Location"))
	})

	t.Run("tampered token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token[:len(token)-2])
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		expiredCodec := core.NewTokenCodec(core.DeriveKey("test_passphrase"), -time.Second)
		expired, _, err := expiredCodec.Issue("administrator")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+expired)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	// the gate must not reveal which failure mode occurred
	t.Run("failure modes are indistinguishable", func(t *testing.T) {
		otherCodec := core.NewTokenCodec(core.DeriveKey("other_passphrase"), 24*time.Hour)
		forged, _, err := otherCodec.Issue("administrator")
		require.NoError(t, err)

		bodies := make(map[string]struct{})
		for _, tok := range []string{"garbage", forged} {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+tok)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			bodies[rec.Body.String()] = struct{}{}
		}
		assert.Len(t, bodies, 1)
	})
}
