// Package expense turns source documents into expense payloads for the accounting system.
package expense

import (
	"fmt"
	"maps"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/paperbridge/internal/mapping"
)

// KindExpense is the target record kind used when no mapping overrides it.
const KindExpense = "expense"

// Canonical payload keys. A document type mapping may rename them.
const (
	FieldDate        = mapping.KeyDate
	FieldReference   = mapping.KeyReference
	FieldDescription = mapping.KeyDescription
	FieldCurrency    = mapping.KeyCurrency
	FieldPayee       = mapping.KeyPayee
	FieldCategory    = mapping.KeyCategory
	FieldAmount      = mapping.KeyAmount
)

const dateLayout = time.DateOnly

type Payload struct {
	Amount      *decimal.Decimal
	Currency    string
	Vendor      *string
	Date        time.Time
	Category    string
	Description string
	Reference   string
	Kind        string

	fields  map[string]any
	renames map[string]string
}

// Fields returns the emitted key/value pairs, keyed by target names.
func (p Payload) Fields() map[string]any {
	return maps.Clone(p.fields)
}

// Key returns the emitted name of a canonical key.
func (p Payload) Key(canonical string) string {
	if renamed, ok := p.renames[canonical]; ok && renamed != "" {
		return renamed
	}

	return canonical
}

// RequireAmount reports whether the payload can be submitted.
func (p Payload) RequireAmount() error {
	if p.Amount == nil {
		return &ValidationError{Field: FieldAmount, Reason: "no amount found in document"}
	}

	if !p.Amount.IsPositive() {
		return &ValidationError{Field: FieldAmount, Reason: fmt.Sprintf("amount must be positive, got %s", p.Amount.StringFixed(2))}
	}

	return nil
}

// Submission is the target system's answer to a created expense.
type Submission struct {
	TargetID string
	Status   string
}
