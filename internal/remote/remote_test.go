package remote_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/paperbridge/internal/remote"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "Nil", err: nil, want: false},
		{name: "ServerError", err: &remote.Error{Op: "get", StatusCode: 503}, want: true},
		{name: "TooManyRequests", err: &remote.Error{Op: "get", StatusCode: 429}, want: true},
		{name: "NotFound", err: &remote.Error{Op: "get", StatusCode: 404}, want: false},
		{name: "BadRequest", err: &remote.Error{Op: "post", StatusCode: 400}, want: false},
		{name: "Network", err: remote.FromTransport("get", errors.New("connection refused")), want: true},
		{name: "Canceled", err: remote.FromTransport("get", context.Canceled), want: false},
		{name: "Wrapped", err: fmt.Errorf("fetch: %w", &remote.Error{Op: "get", StatusCode: 502}), want: true},
		{name: "Deadline", err: context.DeadlineExceeded, want: true},
		{name: "Plain", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, remote.IsTransient(tt.err))
		})
	}
}

func TestFromResponse(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader(" Not found \n")),
	}

	err := remote.FromResponse("get document 999", resp)

	assert.Equal(t, 404, err.StatusCode)
	assert.Equal(t, "Not found", err.Body)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, 404, remote.StatusOf(fmt.Errorf("wrapped: %w", err)))
}
