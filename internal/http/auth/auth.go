// Package auth guards mutating API routes with an API key or a signed bearer token.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	HeaderAPIKey = "X-API-Key"
	QueryAPIKey  = "api_key"
)

var ErrNoSecret = errors.New("jwt secret is not configured")

type Authenticator struct {
	apiKey    string
	jwtSecret []byte
}

func New(apiKey, jwtSecret string) *Authenticator {
	return &Authenticator{apiKey: apiKey, jwtSecret: []byte(jwtSecret)}
}

// Enabled reports whether any credential is configured.
func (a *Authenticator) Enabled() bool {
	return a.apiKey != "" || len(a.jwtSecret) > 0
}

// GenerateToken signs an HS256 token for subject valid for ttl.
func (a *Authenticator) GenerateToken(subject string, ttl time.Duration) (string, time.Time, error) {
	if len(a.jwtSecret) == 0 {
		return "", time.Time{}, ErrNoSecret
	}

	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Middleware rejects POST, PUT, PATCH and DELETE requests without valid credentials.
// Reads pass through, as does everything when no credential is configured.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() || !mutating(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		if !a.authorized(r) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) authorized(r *http.Request) bool {
	if a.apiKey != "" {
		key := r.Header.Get(HeaderAPIKey)
		if key == "" {
			key = r.URL.Query().Get(QueryAPIKey)
		}

		if key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(a.apiKey)) == 1 {
			return true
		}
	}

	if len(a.jwtSecret) == 0 {
		return false
	}

	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return false
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return a.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return err == nil && parsed.Valid
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}

	return false
}

type tokenRequest struct {
	Subject string `json:"subject"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenHandler issues a bearer token. Mount it behind Middleware so only
// API key holders can mint tokens.
func (a *Authenticator) TokenHandler(ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if req.Subject == "" {
			req.Subject = "api"
		}

		token, expiresAt, err := a.GenerateToken(req.Subject, ttl)
		if err != nil {
			if errors.Is(err, ErrNoSecret) {
				http.Error(w, err.Error(), http.StatusNotImplemented)
				return
			}

			http.Error(w, "internal error", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(tokenResponse{Token: token, ExpiresAt: expiresAt}); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}
