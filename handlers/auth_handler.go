package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/docmill/docgate/core"
	"github.com/docmill/docgate/models"
	"github.com/docmill/docgate/pkg/metrics"
	"github.com/docmill/docgate/store"
)

// AppPath is where browser clients land after a successful form login.
const AppPath = "/app"

type AuthHandler struct {
	credentials *core.CredentialSet
	codec       *core.TokenCodec
	authLog     store.AuthLogStore
	metrics     *metrics.Metrics
	logger      *zap.Logger
	validate    *validator.Validate
}

func NewAuthHandler(
	credentials *core.CredentialSet,
	codec *core.TokenCodec,
	authLog store.AuthLogStore,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		codec:       codec,
		authLog:     authLog,
		metrics:     m,
		logger:      logger,
		validate:    validator.New(),
	}
}

// LoginPageHandler serves the embedded login form.
func (h *AuthHandler) LoginPageHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := w.Write(loginPage)
	return err
}

// LoginHandler verifies the submitted credentials and issues a token. JSON
// clients get the token in the response body; form submissions are
// redirected into the application. Both get the auth cookie. The failure
// message never reveals whether the username exists.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) error {
	payload, isJSON, err := decodeLoginPayload(r)
	if err != nil {
		return newLoginFailure(http.StatusBadRequest, "malformed request body")
	}

	if err := h.validate.Struct(payload); err != nil {
		return newLoginFailure(http.StatusBadRequest, "username and password are required")
	}

	if !h.credentials.Verify(payload.Username, payload.Password) {
		h.metrics.ObserveLogin(false)
		h.recordEvent(r, models.AuthEventLoginFailure, payload.Username)
		h.logger.Info("login failed", zap.String("remote", r.RemoteAddr))
		return newLoginFailure(http.StatusUnauthorized, "invalid username or password")
	}

	token, _, err := h.codec.Issue(payload.Username)
	if err != nil {
		return fmt.Errorf("issuing token: %w", err)
	}

	h.metrics.ObserveLogin(true)
	h.recordEvent(r, models.AuthEventLoginSuccess, payload.Username)

	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		MaxAge:   int(h.codec.Exp().Seconds()),
		HttpOnly: true,
		Path:     "/",
	})

	if !isJSON {
		http.Redirect(w, r, AppPath, http.StatusFound)
		return nil
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(LoginResponse{
		Success:  true,
		Token:    token,
		Username: payload.Username,
		Message:  "login successful",
	})
}

// VerifyHandler reports whether the presented credential currently
// authenticates, and for whom.
func (h *AuthHandler) VerifyHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")

	token, ok := TokenFromRequest(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return json.NewEncoder(w).Encode(VerifyResponse{Valid: false})
	}

	username, err := h.codec.Verify(token)
	if err != nil {
		h.metrics.ObserveTokenVerification(false)
		h.logger.Info("verify rejected", zap.String("reason", err.Error()))
		w.WriteHeader(http.StatusUnauthorized)
		return json.NewEncoder(w).Encode(VerifyResponse{Valid: false})
	}

	h.metrics.ObserveTokenVerification(true)
	return json.NewEncoder(w).Encode(VerifyResponse{Valid: true, Username: username})
}

// LogoutHandler clears the auth cookie. Tokens are stateless so there is
// nothing to invalidate server-side; the client is instructed to drop its
// copy.
func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) error {
	username := ""
	if token, ok := TokenFromRequest(r); ok {
		if u, err := h.codec.Verify(token); err == nil {
			username = u
		}
	}
	h.recordEvent(r, models.AuthEventLogout, username)

	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	})

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(LogoutResponse{Success: true, Message: "logged out"})
}

// LogsHandler returns the most recent auth events, newest first.
func (h *AuthHandler) LogsHandler(w http.ResponseWriter, r *http.Request) error {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	events, err := h.authLog.Recent(r.Context(), limit)
	if err != nil {
		return fmt.Errorf("listing auth events: %w", err)
	}
	if events == nil {
		events = []models.AuthEvent{}
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(events)
}

// PreflightHandler answers bare OPTIONS probes on the auth endpoints with
// permissive CORS headers, mirroring what the cors middleware does for real
// preflights. The login UI may be served from a different origin than the
// API.
func (h *AuthHandler) PreflightHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "86400")
	w.WriteHeader(http.StatusOK)
	return nil
}

func decodeLoginPayload(r *http.Request) (payload LoginPayload, isJSON bool, err error) {
	defer r.Body.Close()

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return payload, true, fmt.Errorf("decoding login payload: %w", err)
		}
		return payload, true, nil
	}

	if err := r.ParseForm(); err != nil {
		return payload, false, fmt.Errorf("parsing login form: %w", err)
	}
	payload.Username = r.PostFormValue("username")
	payload.Password = r.PostFormValue("password")
	return payload, false, nil
}

// recordEvent appends to the audit trail. Failures are logged and swallowed:
// auditing must never change an authentication outcome.
func (h *AuthHandler) recordEvent(r *http.Request, typ models.AuthEventType, username string) {
	if h.authLog == nil {
		return
	}
	event := models.AuthEvent{
		Type:       typ,
		Username:   username,
		RemoteAddr: r.RemoteAddr,
	}
	if err := h.authLog.Record(r.Context(), event); err != nil {
		h.logger.Error("recording auth event", zap.Error(err))
	}
}
