package paperless_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/paperbridge/internal/paperless"
	"github.com/MrJamesThe3rd/paperbridge/internal/remote"
)

func newServer(t *testing.T, routes map[string]string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var lookups atomic.Int32

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		key := r.URL.Path
		if q := r.URL.Query().Get("id__in"); q != "" {
			key += "?id__in=" + q
			lookups.Add(1)
		}

		body, ok := routes[key]
		if !ok {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)

	return ts, &lookups
}

func TestClient_GetDocument_ResolvesIDs(t *testing.T) {
	ts, lookups := newServer(t, map[string]string{
		"/api/documents/123/": `{
			"id": 123,
			"title": "Invoice_2024_001.pdf",
			"content": "Invoice content with amount $1,500.00",
			"created": "2024-01-15T10:30:00Z",
			"correspondent": 4,
			"document_type": 2,
			"tags": [1, 3],
			"custom_fields": [{"field": 9, "value": "EUR1500.00"}, {"field": 9, "value": null}]
		}`,
		"/api/correspondents/?id__in=4": `{"results": [{"id": 4, "name": "ACME Corp"}]}`,
		"/api/document_types/?id__in=2": `{"results": [{"id": 2, "name": "Invoice"}]}`,
		"/api/tags/?id__in=1,3":         `{"results": [{"id": 1, "name": "office"}, {"id": 3, "name": "supplies"}]}`,
		"/api/custom_fields/?id__in=9":  `{"results": [{"id": 9, "name": "Amount"}]}`,
	})

	c := paperless.New(ts.URL, "secret", 5*time.Second)

	doc, err := c.GetDocument(context.Background(), 123)
	require.NoError(t, err)

	assert.Equal(t, int64(123), doc.ID)
	assert.Equal(t, "Invoice_2024_001.pdf", doc.Title)
	assert.Equal(t, "ACME Corp", doc.Correspondent)
	assert.Equal(t, "Invoice", doc.DocumentType)
	assert.Equal(t, []string{"office", "supplies"}, doc.Tags)
	require.Len(t, doc.CustomFields, 1)
	assert.Equal(t, "Amount", doc.CustomFields[0].Name)
	assert.Equal(t, "EUR1500.00", doc.CustomFields[0].Value)
	require.NotNil(t, doc.Created)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), doc.Created.UTC())
	assert.Equal(t, int32(4), lookups.Load())

	// Names are cached per client.
	_, err = c.GetDocument(context.Background(), 123)
	require.NoError(t, err)
	assert.Equal(t, int32(4), lookups.Load())
}

func TestClient_GetDocument_NestedObjects(t *testing.T) {
	ts, lookups := newServer(t, map[string]string{
		"/api/documents/5/": `{
			"id": 5,
			"title": "Receipt",
			"content": "Total: €9.99",
			"created": "2024-02-01",
			"correspondent": {"id": 1, "name": "Cafe"},
			"document_type": null,
			"tags": [{"id": 2, "name": "travel"}]
		}`,
	})

	c := paperless.New(ts.URL, "secret", 5*time.Second)

	doc, err := c.GetDocument(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, "Cafe", doc.Correspondent)
	assert.Empty(t, doc.DocumentType)
	assert.Equal(t, []string{"travel"}, doc.Tags)
	assert.Equal(t, int32(0), lookups.Load())
}

func TestClient_GetDocument_Errors(t *testing.T) {
	ts, _ := newServer(t, map[string]string{})

	type testCase struct {
		name          string
		token         string
		wantStatus    int
		wantTransient bool
	}

	tests := []testCase{
		{name: "NotFound", token: "secret", wantStatus: http.StatusNotFound},
		{name: "Unauthorized", token: "wrong", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := paperless.New(ts.URL, tt.token, 5*time.Second)

			_, err := c.GetDocument(context.Background(), 99)
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, remote.StatusOf(err))
			assert.Equal(t, tt.wantTransient, remote.IsTransient(err))
		})
	}
}

func TestClient_GetDocument_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer ts.Close()

	c := paperless.New(ts.URL, "", time.Second)

	_, err := c.GetDocument(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, remote.IsTransient(err))
	assert.Contains(t, err.Error(), "upstream down")
}

func TestClient_ListDocuments(t *testing.T) {
	type testCase struct {
		name     string
		page     int
		body     string
		wantIDs  []int64
		wantMore bool
	}

	tests := []testCase{
		{
			name:     "FirstPageOfTwo",
			page:     1,
			body:     `{"count": 4, "next": "http://paperless/api/documents/?page=2", "results": [{"id": 3}, {"id": 1}]}`,
			wantIDs:  []int64{3, 1},
			wantMore: true,
		},
		{
			name:    "LastPage",
			page:    2,
			body:    `{"count": 4, "next": null, "previous": "http://paperless/api/documents/?page=1", "results": [{"id": 2}, {"id": 7}]}`,
			wantIDs: []int64{2, 7},
		},
		{
			name:    "Empty",
			page:    1,
			body:    `{"count": 0, "results": []}`,
			wantIDs: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery url.Values

			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query()
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			c := paperless.New(ts.URL, "", time.Second, paperless.WithTag("expense"))

			ids, more, err := c.ListDocuments(context.Background(), tt.page, 25)
			require.NoError(t, err)

			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantMore, more)
			assert.Equal(t, strconv.Itoa(tt.page), gotQuery.Get("page"))
			assert.Equal(t, "25", gotQuery.Get("page_size"))
			assert.Equal(t, "expense", gotQuery.Get("tags__name__iexact"))
			assert.Equal(t, "created", gotQuery.Get("ordering"))
		})
	}
}

func TestClient_HealthCheck(t *testing.T) {
	ts, _ := newServer(t, map[string]string{"/api/": `{}`})

	assert.NoError(t, paperless.New(ts.URL, "secret", time.Second).HealthCheck(context.Background()))
	assert.Error(t, paperless.New(ts.URL, "nope", time.Second).HealthCheck(context.Background()))
}
