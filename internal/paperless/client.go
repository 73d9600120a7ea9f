// Package paperless is a client for the Paperless-ngx REST API.
package paperless

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/paperbridge/internal/document"
	"github.com/MrJamesThe3rd/paperbridge/internal/extract"
	"github.com/MrJamesThe3rd/paperbridge/internal/remote"
)

// Lookup resources that documents reference by id.
const (
	resourceCorrespondents = "correspondents"
	resourceDocumentTypes  = "document_types"
	resourceTags           = "tags"
	resourceCustomFields   = "custom_fields"
)

type Client struct {
	baseURL string
	token   string
	tag     string
	http    *http.Client

	mu    sync.Mutex
	names map[string]map[int64]string
}

type Option func(*Client)

// WithTag limits ListDocuments to documents carrying the tag.
func WithTag(tag string) Option {
	return func(c *Client) { c.tag = tag }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL, token string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		names:   make(map[string]map[int64]string),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetDocument fetches a document and resolves the names of its correspondent,
// document type, tags and custom fields.
func (c *Client) GetDocument(ctx context.Context, id int64) (*document.Document, error) {
	const op = "paperless get document"

	var raw rawDocument
	if err := c.get(ctx, op, fmt.Sprintf("/api/documents/%d/", id), nil, &raw); err != nil {
		return nil, err
	}

	doc := &document.Document{
		ID:      raw.ID,
		Title:   raw.Title,
		Content: raw.Content,
	}

	if t, ok := extract.ParseDate(raw.Created); ok {
		doc.Created = &t
	}

	var err error

	if doc.Correspondent, err = c.resolveOne(ctx, resourceCorrespondents, raw.Correspondent); err != nil {
		return nil, err
	}

	if doc.DocumentType, err = c.resolveOne(ctx, resourceDocumentTypes, raw.DocumentType); err != nil {
		return nil, err
	}

	if doc.Tags, err = c.resolveMany(ctx, resourceTags, raw.Tags); err != nil {
		return nil, err
	}

	if doc.CustomFields, err = c.customFields(ctx, raw.CustomFields); err != nil {
		return nil, err
	}

	return doc, nil
}

// ListDocuments returns one page of document ids, oldest first, and whether more pages follow.
// Pages start at 1. Which of them were already handled is decided by the caller's records.
func (c *Client) ListDocuments(ctx context.Context, page, pageSize int) ([]int64, bool, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(page, 1)))
	q.Set("page_size", strconv.Itoa(pageSize))
	q.Set("ordering", "created")
	q.Set("fields", "id")

	if c.tag != "" {
		q.Set("tags__name__iexact", c.tag)
	}

	var resp struct {
		Next    *string `json:"next"`
		Results []struct {
			ID int64 `json:"id"`
		} `json:"results"`
	}

	if err := c.get(ctx, "paperless list documents", "/api/documents/", q, &resp); err != nil {
		return nil, false, err
	}

	ids := make([]int64, 0, len(resp.Results))
	for _, r := range resp.Results {
		ids = append(ids, r.ID)
	}

	return ids, resp.Next != nil && *resp.Next != "", nil
}

func (c *Client) HealthCheck(ctx context.Context) error {
	return c.get(ctx, "paperless health check", "/api/", nil, nil)
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return remote.FromTransport(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return remote.FromResponse(op, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}

	return nil
}
