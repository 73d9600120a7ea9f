package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/paperbridge/internal/http/auth"
)

func TestAuthenticator_Middleware(t *testing.T) {
	a := auth.New("key-1", "jwt-secret")

	token, _, err := a.GenerateToken("operator", time.Hour)
	require.NoError(t, err)

	expired, _, err := a.GenerateToken("operator", -time.Hour)
	require.NoError(t, err)

	foreign, _, err := auth.New("", "other-secret").GenerateToken("operator", time.Hour)
	require.NoError(t, err)

	type testCase struct {
		name     string
		method   string
		target   string
		header   map[string]string
		wantCode int
	}

	tests := []testCase{
		{name: "ReadIsOpen", method: http.MethodGet, target: "/", wantCode: http.StatusOK},
		{name: "WriteWithoutCredentials", method: http.MethodPost, target: "/", wantCode: http.StatusUnauthorized},
		{name: "APIKeyHeader", method: http.MethodPost, target: "/", header: map[string]string{auth.HeaderAPIKey: "key-1"}, wantCode: http.StatusOK},
		{name: "APIKeyQuery", method: http.MethodDelete, target: "/?api_key=key-1", wantCode: http.StatusOK},
		{name: "WrongAPIKey", method: http.MethodPut, target: "/", header: map[string]string{auth.HeaderAPIKey: "nope"}, wantCode: http.StatusUnauthorized},
		{name: "BearerToken", method: http.MethodPost, target: "/", header: map[string]string{"Authorization": "Bearer " + token}, wantCode: http.StatusOK},
		{name: "ExpiredToken", method: http.MethodPost, target: "/", header: map[string]string{"Authorization": "Bearer " + expired}, wantCode: http.StatusUnauthorized},
		{name: "ForeignToken", method: http.MethodPatch, target: "/", header: map[string]string{"Authorization": "Bearer " + foreign}, wantCode: http.StatusUnauthorized},
		{name: "MalformedHeader", method: http.MethodPost, target: "/", header: map[string]string{"Authorization": token}, wantCode: http.StatusUnauthorized},
	}

	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestAuthenticator_Disabled(t *testing.T) {
	a := auth.New("", "")
	assert.False(t, a.Enabled())

	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, _, err := a.GenerateToken("x", time.Minute)
	assert.ErrorIs(t, err, auth.ErrNoSecret)
}

func TestAuthenticator_TokenHandler(t *testing.T) {
	a := auth.New("key-1", "jwt-secret")
	handler := a.Middleware(a.TokenHandler(time.Hour))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"subject":"tui"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"subject":"tui"}`))
	req.Header.Set(auth.HeaderAPIKey, "key-1")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotEmpty(t, body.Token)

	// The issued token authorizes writes on its own.
	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
