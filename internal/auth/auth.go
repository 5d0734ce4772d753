// Package auth resolves the calling user from an HS256 session token carried
// in the Authorization header or the session cookie.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

var ErrUnauthorized = errors.New("unauthorized")

type Identity struct {
	UserID string
	Email  string
}

type Verifier struct {
	secret []byte
	cookie string
}

func NewVerifier(secret, cookieName string) *Verifier {
	return &Verifier{secret: []byte(secret), cookie: cookieName}
}

// Sign issues a token for id. The server only verifies tokens; Sign exists
// for tests and local tooling that stand in for the identity provider.
func (v *Verifier) Sign(id Identity, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", fmt.Errorf("auth secret is not configured")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   id.UserID,
		"email": id.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *Verifier) Verify(tokenString string) (Identity, error) {
	if len(v.secret) == 0 || tokenString == "" {
		return Identity{}, ErrUnauthorized
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return Identity{}, ErrUnauthorized
	}
	email, _ := claims["email"].(string)
	return Identity{UserID: sub, Email: email}, nil
}

// FromRequest prefers a bearer token and falls back to the session cookie.
func (v *Verifier) FromRequest(r *http.Request) (Identity, error) {
	if tok := bearerToken(r.Header.Get("Authorization")); tok != "" {
		return v.Verify(tok)
	}
	if v.cookie != "" {
		if c, err := r.Cookie(v.cookie); err == nil {
			return v.Verify(c.Value)
		}
	}
	return Identity{}, ErrUnauthorized
}

func bearerToken(header string) string {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && id.UserID != ""
}
