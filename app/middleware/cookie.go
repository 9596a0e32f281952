package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"social-todo/app/models"
)

var errInvalidCookie = errors.New("invalid session cookie")

// SessionCookies signs and verifies the session cookie. The cookie value is an
// HS256 token whose ID is the session token and whose expiry matches the session.
type SessionCookies struct {
	Name   string
	Secret []byte
	Secure bool
}

// Issue returns the cookie that binds the client to sess.
func (c SessionCookies) Issue(sess *models.Session) (*http.Cookie, error) {
	claims := jwt.RegisteredClaims{
		ID:        sess.Token,
		IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.Secret)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     c.Name,
		Value:    signed,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Clear returns a cookie that removes the session cookie from the client.
func (c SessionCookies) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Token extracts the session token from a request. It fails for a missing,
// tampered or expired cookie.
func (c SessionCookies) Token(r *http.Request) (string, error) {
	cookie, err := r.Cookie(c.Name)
	if err != nil {
		return "", err
	}
	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims, func(*jwt.Token) (any, error) {
		return c.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if claims.ID == "" {
		return "", errInvalidCookie
	}
	return claims.ID, nil
}
