// Package auth verifies identity tokens issued by the external identity
// provider. It never issues tokens for real users; Sign exists for the dev
// mode and for tests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/varunrmantri23/nexacode/internal/core"
)

// DevUser is the identity used in dev mode when no signing secret is set.
var DevUser = core.User{
	UID:         "dev",
	Email:       "dev@localhost",
	DisplayName: "Developer",
	Provider:    "dev",
}

type Claims struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
	Provider string `json:"provider,omitempty"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	issuer string
	dev    bool
	now    func() time.Time
}

type Option func(*Verifier)

func WithIssuer(issuer string) Option {
	return func(v *Verifier) { v.issuer = issuer }
}

// WithDevFallback makes requests without a token resolve to DevUser when the
// verifier has no secret.
func WithDevFallback() Option {
	return func(v *Verifier) { v.dev = true }
}

func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

func NewVerifier(secret string, opts ...Option) *Verifier {
	v := &Verifier{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify parses an HS256 token and returns the identity it carries.
func (v *Verifier) Verify(token string) (core.User, error) {
	if len(v.secret) == 0 {
		return core.User{}, fmt.Errorf("%w: no signing secret configured", core.ErrUnauthorized)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return core.User{}, fmt.Errorf("%w: %v", core.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return core.User{}, fmt.Errorf("%w: token has no subject", core.ErrUnauthorized)
	}

	return core.User{
		UID:         claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		PhotoURL:    claims.Picture,
		Provider:    claims.Provider,
	}, nil
}

// Authenticate resolves the caller of req from its bearer token, or from the
// access_token query parameter for browser APIs that cannot set headers
// (EventSource, WebSocket).
func (v *Verifier) Authenticate(req *http.Request) (core.User, error) {
	token := bearerToken(req)
	if token == "" {
		if v.dev && len(v.secret) == 0 {
			return DevUser, nil
		}
		return core.User{}, fmt.Errorf("%w: missing bearer token", core.ErrUnauthorized)
	}
	return v.Verify(token)
}

func bearerToken(req *http.Request) string {
	if h := req.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return req.URL.Query().Get("access_token")
}

// Sign issues an HS256 token for u valid for ttl.
func Sign(secret string, u core.User, issuer string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("auth: empty secret")
	}
	claims := Claims{
		Email:    u.Email,
		Name:     u.DisplayName,
		Picture:  u.PhotoURL,
		Provider: u.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.UID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

type contextKey struct{}

func WithUser(ctx context.Context, u core.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

func UserFrom(ctx context.Context) (core.User, bool) {
	u, ok := ctx.Value(contextKey{}).(core.User)
	return u, ok
}
