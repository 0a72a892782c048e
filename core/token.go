package core

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrBadSignature   = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
)

const issuer = "docgate"

type AuthClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies signed, time-bounded bearer tokens. Tokens
// are HS256 JWTs and are self-contained: verification needs only the signing
// key, never external state. A codec is a pure function of (claims, key,
// clock) and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	exp    time.Duration
}

func NewTokenCodec(secret []byte, exp time.Duration) *TokenCodec {
	return &TokenCodec{secret: secret, exp: exp}
}

// Exp returns the validity window tokens are issued with.
func (c *TokenCodec) Exp() time.Duration {
	return c.exp
}

// Issue creates a token owned by username, valid from now until now + the
// configured window.
func (c *TokenCodec) Issue(username string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(c.exp)
	claims := &AuthClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			Issuer:    issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.secret)
	return signed, exp, err
}

// Verify decodes and validates a token, returning the embedded username.
// Failures map to ErrTokenMalformed, ErrBadSignature or ErrTokenExpired.
// The signature check inside the jwt library is a constant-time HMAC
// comparison. No expiry leeway is granted.
func (c *TokenCodec) Verify(token string) (string, error) {
	claims := &AuthClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))

	switch {
	case err == nil && parsed.Valid:
		if claims.Username == "" {
			return "", ErrTokenMalformed
		}
		return claims.Username, nil
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "", ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", ErrBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	default:
		return "", ErrTokenInvalid
	}
}
