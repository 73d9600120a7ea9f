package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	type testCase struct {
		name  string
		input string
		want  string
	}

	tests := []testCase{
		{name: "Plain", input: "invoice", want: "%invoice%"},
		{name: "Percent", input: "100%", want: `%100\%%`},
		{name: "Underscore", input: "Invoice_2024", want: `%Invoice\_2024%`},
		{name: "Backslash", input: `a\b`, want: `%a\\b%`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containsPattern(tt.input))
		})
	}
}
