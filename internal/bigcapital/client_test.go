package bigcapital_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/paperbridge/internal/bigcapital"
	"github.com/MrJamesThe3rd/paperbridge/internal/document"
	"github.com/MrJamesThe3rd/paperbridge/internal/expense"
	"github.com/MrJamesThe3rd/paperbridge/internal/mapping"
	"github.com/MrJamesThe3rd/paperbridge/internal/remote"
)

var accounts = bigcapital.Accounts{
	PaymentAccountID: 1000,
	DefaultAccountID: 5000,
	CategoryAccounts: map[string]int64{"office_expenses": 5100},
}

func invoice(t *testing.T, m *mapping.Mapping) expense.Payload {
	t.Helper()

	created := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	return expense.Transform(&document.Document{
		ID:            123,
		Title:         "Invoice_2024_001.pdf",
		Content:       "Invoice content with amount $1,500.00",
		Created:       &created,
		Correspondent: "ACME Corp",
		Tags:          []string{"office"},
	}, m)
}

type captured struct {
	method  string
	path    string
	headers http.Header
	body    map[string]any
}

func newServer(t *testing.T, status int, response string) (*httptest.Server, *captured) {
	t.Helper()

	got := &captured{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.headers = r.Header.Clone()

		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &got.body)
		}

		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(ts.Close)

	return ts, got
}

func TestClient_CreateExpense(t *testing.T) {
	ts, got := newServer(t, http.StatusOK, `{"id": 501, "message": "The expense has been created successfully."}`)

	c := bigcapital.New(ts.URL, "key-1", "tenant-9", 5*time.Second, accounts)

	sub, err := c.CreateExpense(context.Background(), invoice(t, nil))
	require.NoError(t, err)

	assert.Equal(t, "501", sub.TargetID)
	assert.Equal(t, "published", sub.Status)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/purchases/expenses", got.path)
	assert.Equal(t, "key-1", got.headers.Get("x-access-token"))
	assert.Equal(t, "tenant-9", got.headers.Get("organization-id"))
	assert.Equal(t, "application/json", got.headers.Get("Content-Type"))

	assert.Equal(t, "2024-01-15", got.body["payment_date"])
	assert.Equal(t, "Invoice 2024 001", got.body["reference_no"])
	assert.Equal(t, "ACME Corp", got.body["payee"])
	assert.Equal(t, "USD", got.body["currency_code"])
	assert.Equal(t, float64(1000), got.body["payment_account_id"])
	assert.Equal(t, true, got.body["publish"])
	assert.NotContains(t, got.body, "amount")
	assert.NotContains(t, got.body, "category")

	categories, ok := got.body["categories"].([]any)
	require.True(t, ok)
	require.Len(t, categories, 1)

	line := categories[0].(map[string]any)
	assert.Equal(t, float64(1), line["index"])
	assert.Equal(t, float64(5100), line["expense_account_id"])
	assert.Equal(t, 1500.0, line["amount"])
	assert.Equal(t, "Invoice 2024 001 from ACME Corp", line["description"])
}

func TestClient_CreateExpense_MappedKeys(t *testing.T) {
	ts, got := newServer(t, http.StatusCreated, `{"id": "BC-77"}`)

	m := &mapping.Mapping{
		SourceType: "Invoice",
		TargetType: "bill",
		FieldMap:   map[string]string{expense.FieldAmount: "total", expense.FieldPayee: "vendor_name"},
	}

	c := bigcapital.New(ts.URL, "", "", time.Second, accounts, bigcapital.WithDrafts())

	sub, err := c.CreateExpense(context.Background(), invoice(t, m))
	require.NoError(t, err)

	assert.Equal(t, "BC-77", sub.TargetID)
	assert.Equal(t, "draft", sub.Status)
	assert.Equal(t, false, got.body["publish"])
	assert.Equal(t, "ACME Corp", got.body["vendor_name"])
	assert.NotContains(t, got.body, "total")
	assert.Empty(t, got.headers.Get("x-access-token"))
}

func TestClient_CreateExpense_DefaultAccount(t *testing.T) {
	ts, got := newServer(t, http.StatusOK, `{"id": 2}`)

	p := expense.Transform(&document.Document{ID: 4, Title: "Lunch", Content: "Total: €12.00"}, nil)

	_, err := bigcapital.New(ts.URL, "k", "t", time.Second, accounts).CreateExpense(context.Background(), p)
	require.NoError(t, err)

	line := got.body["categories"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(5000), line["expense_account_id"])
	assert.Equal(t, "EUR", got.body["currency_code"])
}

func TestClient_CreateExpense_Errors(t *testing.T) {
	type testCase struct {
		name          string
		status        int
		response      string
		wantStatus    int
		wantTransient bool
	}

	tests := []testCase{
		{name: "Rejected", status: http.StatusUnprocessableEntity, response: `{"errors":[{"type":"EXPENSE_ACCOUNT_NOT_FOUND"}]}`, wantStatus: 422},
		{name: "Unauthorized", status: http.StatusUnauthorized, response: `{}`, wantStatus: 401},
		{name: "Unavailable", status: http.StatusServiceUnavailable, response: `maintenance`, wantStatus: 503, wantTransient: true},
		{name: "NoID", status: http.StatusOK, response: `{"message": "ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := newServer(t, tt.status, tt.response)

			_, err := bigcapital.New(ts.URL, "k", "t", time.Second, accounts).CreateExpense(context.Background(), invoice(t, nil))
			require.Error(t, err)

			assert.Equal(t, tt.wantStatus, remote.StatusOf(err))
			assert.Equal(t, tt.wantTransient, remote.IsTransient(err))
		})
	}
}

func TestClient_CreateExpense_NoAmount(t *testing.T) {
	ts, got := newServer(t, http.StatusOK, `{"id": 1}`)

	p := expense.Transform(&document.Document{ID: 4, Title: "Note", Content: "no totals here"}, nil)

	_, err := bigcapital.New(ts.URL, "k", "t", time.Second, accounts).CreateExpense(context.Background(), p)

	assert.True(t, expense.IsValidation(err))
	assert.Empty(t, got.method)
}

func TestClient_HealthCheck(t *testing.T) {
	ts, got := newServer(t, http.StatusOK, `[]`)

	require.NoError(t, bigcapital.New(ts.URL, "k", "t", time.Second, accounts).HealthCheck(context.Background()))
	assert.Equal(t, "/api/currencies", got.path)
	assert.Equal(t, http.MethodGet, got.method)

	down, _ := newServer(t, http.StatusBadGateway, ``)
	assert.Error(t, bigcapital.New(down.URL, "k", "t", time.Second, accounts).HealthCheck(context.Background()))
}
