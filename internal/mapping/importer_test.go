package mapping_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/paperbridge/internal/mapping"
)

func TestParseCSV(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    []mapping.CreateParams
		wantErr string
	}

	tests := []testCase{
		{
			name:  "SemicolonWithPreamble",
			input: "Exported mappings\n\nTARGET_TYPE;Source_Type;Active\nbill;Invoice;no\n;;\nexpense;Receipt;\n",
			want: []mapping.CreateParams{
				{SourceType: "Invoice", TargetType: "bill", FieldMap: map[string]string{}, Active: false},
				{SourceType: "Receipt", TargetType: "expense", FieldMap: map[string]string{}, Active: true},
			},
		},
		{
			name:  "FieldMap",
			input: "source_type,target_type,field_map\nInvoice,bill,\"payee = vendor , reference_no=ref\"\n",
			want: []mapping.CreateParams{
				{
					SourceType: "Invoice",
					TargetType: "bill",
					FieldMap:   map[string]string{"payee": "vendor", "reference_no": "ref"},
					Active:     true,
				},
			},
		},
		{
			name:    "NoHeader",
			input:   "foo,bar\n1,2\n",
			wantErr: "no header found",
		},
		{
			name:    "BadFieldMap",
			input:   "source_type,target_type,field_map\nInvoice,bill,payee\n",
			wantErr: "row 2",
		},
		{
			name:    "BadActive",
			input:   "source_type;target_type;active\nInvoice;bill;maybe\n",
			wantErr: "invalid active flag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mapping.ParseCSV(strings.NewReader(tt.input))

			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCSV_Windows1252(t *testing.T) {
	// "Fatura Eletrónica" with ó = 0xF3.
	input := append([]byte("source_type;target_type\nFatura Eletr"), 0xF3)
	input = append(input, []byte("nica;expense\n")...)

	got, err := mapping.ParseCSV(strings.NewReader(string(input)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Fatura Eletrónica", got[0].SourceType)
}
