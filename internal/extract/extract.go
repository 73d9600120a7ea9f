// Package extract pulls financial facts out of document text and metadata.
// Every function here is pure and safe for concurrent use.
package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/paperbridge/internal/document"
)

const DefaultCurrency = "USD"

const number = `(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`

// Patterns are tried in order; the first one that matches wins.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[$€£¥]\s?` + number),
	regexp.MustCompile(number + `\s?USD\b`),
}

var currencySymbols = map[rune]string{
	'$': "USD",
	'€': "EUR",
	'£': "GBP",
	'¥': "JPY",
}

// Amount returns the first currency-tagged amount found in text.
func Amount(text string) (decimal.Decimal, bool) {
	for _, re := range amountPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			continue
		}

		return d, true
	}

	return decimal.Decimal{}, false
}

// Currency returns the ISO 4217 code of the first currency symbol in text, or USD.
func Currency(text string) string {
	for _, r := range text {
		if code, ok := currencySymbols[r]; ok {
			return code
		}
	}

	return DefaultCurrency
}

// Vendor returns the document's correspondent, if it has one.
func Vendor(doc *document.Document) (string, bool) {
	if doc == nil {
		return "", false
	}

	v := strings.TrimSpace(doc.Correspondent)

	return v, v != ""
}

const CategoryGeneral = "general_expenses"

type categoryRule struct {
	category string
	tags     []string
}

var categoryRules = []categoryRule{
	{category: "office_expenses", tags: []string{"office", "supplies"}},
	{category: "travel_expenses", tags: []string{"travel", "transport"}},
	{category: "utilities", tags: []string{"utilities", "phone"}},
}

// Categorize maps the document's tags to a category code.
func Categorize(doc *document.Document) string {
	if doc == nil {
		return CategoryGeneral
	}

	for _, rule := range categoryRules {
		for _, tag := range rule.tags {
			if doc.HasTag(tag) {
				return rule.category
			}
		}
	}

	return CategoryGeneral
}

var (
	separators = regexp.MustCompile(`[_\-]+`)
	extension  = regexp.MustCompile(`\.[A-Za-z][A-Za-z0-9]{0,4}$`)
)

// CleanTitle turns a file-like title into a readable reference.
// "Invoice_2024_001.pdf" becomes "Invoice 2024 001". CleanTitle(CleanTitle(x)) == CleanTitle(x).
func CleanTitle(title string) string {
	s := strings.Join(strings.Fields(separators.ReplaceAllString(title, " ")), " ")

	for extension.MatchString(s) {
		s = strings.TrimSpace(extension.ReplaceAllString(s, ""))
	}

	return strings.Join(strings.Fields(s), " ")
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseDate parses an ISO-8601 date or date-time. Values without a zone are read as UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
