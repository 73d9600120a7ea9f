// Package bigcapital is a client for the BigCapital accounting API.
package bigcapital

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/paperbridge/internal/expense"
	"github.com/MrJamesThe3rd/paperbridge/internal/remote"
)

const (
	expensesPath   = "/api/purchases/expenses"
	currenciesPath = "/api/currencies"

	statusPublished = "published"
	statusDraft     = "draft"
)

// Accounts selects the ledger accounts an expense is booked against.
type Accounts struct {
	PaymentAccountID int64
	DefaultAccountID int64
	// CategoryAccounts maps a payload category to its expense account.
	CategoryAccounts map[string]int64
}

func (a Accounts) expenseAccount(category string) int64 {
	if id, ok := a.CategoryAccounts[category]; ok && id != 0 {
		return id
	}

	return a.DefaultAccountID
}

type Client struct {
	baseURL  string
	apiKey   string
	tenantID string
	accounts Accounts
	publish  bool
	http     *http.Client
}

type Option func(*Client)

// WithDrafts creates expenses unpublished.
func WithDrafts() Option {
	return func(c *Client) { c.publish = false }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL, apiKey, tenantID string, timeout time.Duration, accounts Accounts, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		tenantID: tenantID,
		accounts: accounts,
		publish:  true,
		http:     &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type category struct {
	Index            int     `json:"index"`
	ExpenseAccountID int64   `json:"expense_account_id"`
	Amount           float64 `json:"amount"`
	Description      string  `json:"description,omitempty"`
}

// CreateExpense posts the payload as an expense. The payload fields are sent as
// emitted; amount and category become a single expense line.
func (c *Client) CreateExpense(ctx context.Context, p expense.Payload) (*expense.Submission, error) {
	const op = "bigcapital create expense"

	if err := p.RequireAmount(); err != nil {
		return nil, err
	}

	body := p.Fields()
	if body == nil {
		body = make(map[string]any)
	}

	delete(body, p.Key(expense.FieldAmount))
	delete(body, p.Key(expense.FieldCategory))

	body["payment_account_id"] = c.accounts.PaymentAccountID
	body["publish"] = c.publish
	body["categories"] = []category{{
		Index:            1,
		ExpenseAccountID: c.accounts.expenseAccount(p.Category),
		Amount:           p.Amount.InexactFloat64(),
		Description:      p.Description,
	}}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding expense: %w", err)
	}

	var created struct {
		ID json.RawMessage `json:"id"`
	}

	if err := c.do(ctx, op, http.MethodPost, expensesPath, bytes.NewReader(raw), &created); err != nil {
		return nil, err
	}

	id := targetID(created.ID)
	if id == "" {
		return nil, fmt.Errorf("%s: response has no id", op)
	}

	status := statusPublished
	if !c.publish {
		status = statusDraft
	}

	return &expense.Submission{TargetID: id, Status: status}, nil
}

// targetID accepts numeric and string ids.
func targetID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	return ""
}

func (c *Client) HealthCheck(ctx context.Context) error {
	return c.do(ctx, "bigcapital health check", http.MethodGet, currenciesPath, nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.apiKey != "" {
		req.Header.Set("x-access-token", c.apiKey)
	}

	if c.tenantID != "" {
		req.Header.Set("organization-id", c.tenantID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return remote.FromTransport(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
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
