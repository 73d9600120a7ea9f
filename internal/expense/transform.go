package expense

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/paperbridge/internal/document"
	"github.com/MrJamesThe3rd/paperbridge/internal/extract"
	"github.com/MrJamesThe3rd/paperbridge/internal/mapping"
)

// amountField is the custom field consulted when the content has no amount.
const amountField = "amount"

var isoPrefixed = regexp.MustCompile(`^([A-Z]{3})\s?(-?[\d.,]+)$`)

// Transform builds the expense payload for a validated document.
// Missing amount or vendor are left nil; callers decide whether that blocks submission.
// The mapping, when non-nil, sets the target kind and renames emitted keys.
func Transform(doc *document.Document, m *mapping.Mapping) Payload {
	return transformAt(doc, m, time.Now().UTC())
}

func transformAt(doc *document.Document, m *mapping.Mapping, now time.Time) Payload {
	p := Payload{
		Reference: extract.CleanTitle(doc.Title),
		Category:  extract.Categorize(doc),
		Kind:      KindExpense,
		Date:      now,
	}

	p.Currency = extract.Currency(doc.Content)

	if amount, ok := extract.Amount(doc.Content); ok {
		p.Amount = &amount
	} else if amount, currency, ok := customAmount(doc); ok {
		p.Amount = &amount
		p.Currency = currency
	}

	if vendor, ok := extract.Vendor(doc); ok {
		p.Vendor = &vendor
	}

	if doc.Created != nil {
		p.Date = *doc.Created
	}

	p.Description = describe(p.Reference, p.Vendor)

	if m != nil {
		if target := strings.TrimSpace(m.TargetType); target != "" {
			p.Kind = target
		}

		p.renames = m.FieldMap
	}

	p.fields = p.emit()

	return p
}

// customAmount reads the amount custom field. It accepts symbol amounts ("€12.50"),
// monetary values with an ISO code prefix ("EUR12.50") and plain numbers.
func customAmount(doc *document.Document) (decimal.Decimal, string, bool) {
	raw, ok := doc.CustomField(amountField)
	raw = strings.TrimSpace(raw)

	if !ok || raw == "" {
		return decimal.Decimal{}, "", false
	}

	if amount, ok := extract.Amount(raw); ok {
		return amount, extract.Currency(raw), true
	}

	currency := extract.DefaultCurrency
	if m := isoPrefixed.FindStringSubmatch(raw); m != nil {
		currency, raw = m[1], m[2]
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return decimal.Decimal{}, "", false
	}

	return amount, currency, true
}

func describe(reference string, vendor *string) string {
	if vendor == nil {
		return reference
	}

	return reference + " from " + *vendor
}

func (p Payload) emit() map[string]any {
	fields := map[string]any{
		p.Key(FieldDate):        p.Date.Format(dateLayout),
		p.Key(FieldReference):   p.Reference,
		p.Key(FieldDescription): p.Description,
		p.Key(FieldCurrency):    p.Currency,
		p.Key(FieldCategory):    p.Category,
	}

	if p.Vendor != nil {
		fields[p.Key(FieldPayee)] = *p.Vendor
	}

	if p.Amount != nil {
		fields[p.Key(FieldAmount)] = p.Amount.InexactFloat64()
	}

	return fields
}
