package handlers

import (
	"encoding/json"
	"io"
	"net/http"
)

type LoginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message"`
}

type VerifyResponse struct {
	Valid    bool   `json:"valid"`
	Username string `json:"username,omitempty"`
}

type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// loginFailure is a router.Error carrying the login response shape, so
// failed logins produce {"success":false,"message":...} instead of the
// generic error body.
type loginFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	code    int
}

func newLoginFailure(code int, message string) loginFailure {
	return loginFailure{Success: false, Message: message, code: code}
}

func (e loginFailure) Error() string {
	return e.Message
}

func (e loginFailure) StatusCode() int {
	return e.code
}

func (e loginFailure) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(e)
}

// unauthorizedError is the JSON body returned to programmatic clients
// rejected by the auth gate. The redirect field points browsers and API
// clients alike at the login entry point. All gate failure modes collapse
// to this single shape so callers cannot distinguish them.
type unauthorizedError struct {
	Code     int    `json:"code"`
	Err      string `json:"error"`
	Redirect string `json:"redirect"`
}

func newUnauthorizedError() unauthorizedError {
	return unauthorizedError{
		Code:     http.StatusUnauthorized,
		Err:      "unauthorized",
		Redirect: LoginPath,
	}
}

func (e unauthorizedError) Error() string {
	return e.Err
}

func (e unauthorizedError) StatusCode() int {
	return e.Code
}

func (e unauthorizedError) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(e)
}
