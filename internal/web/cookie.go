package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// CookieCodec transports the opaque session token in a tamper-evident cookie.
// The cookie value is an HS256 JWT carrying the token as its sid claim; the
// session store stays the source of truth for validity.
type CookieCodec struct {
	secret string
	name   string
	secure bool
}

// NewCookieCodec constructs a codec. The signing secret must be non-empty.
func NewCookieCodec(secret, name string, secure bool) (CookieCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return CookieCodec{}, errors.New("session secret must be configured")
	}
	if strings.TrimSpace(name) == "" {
		name = "showbill_session"
	}
	return CookieCodec{secret: secret, name: name, secure: secure}, nil
}

type cookieClaims struct {
	SessionID string `json:"sid"`
	jwtlib.RegisteredClaims
}

// MakeCookie wraps a session token in a signed cookie valid for ttl.
func (c CookieCodec) MakeCookie(token string, ttl time.Duration) (*http.Cookie, error) {
	now := time.Now()
	claims := cookieClaims{
		SessionID: token,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    "showbill",
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(c.secret))
	if err != nil {
		return nil, fmt.Errorf("sign session cookie: %w", err)
	}
	return &http.Cookie{
		Name:     c.name,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// ExpireCookie returns a cookie that clears the session client-side.
func (c CookieCodec) ExpireCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// TokenFromRequest extracts and verifies the session token from the request.
func (c CookieCodec) TokenFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return "", err
	}
	parsed, err := jwtlib.ParseWithClaims(cookie.Value, &cookieClaims{}, func(t *jwtlib.Token) (interface{}, error) {
		return []byte(c.secret), nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}))
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*cookieClaims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return "", jwtlib.ErrTokenInvalidClaims
	}
	return claims.SessionID, nil
}
