package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/paperbridge/internal/encoding"
)

func readAll(t *testing.T, input []byte) (string, string) {
	t.Helper()

	r, charset, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), charset
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "source_type;target_type\nFatura;expense\nRecibo de café;expense\n"

	got, charset := readAll(t, []byte(input))
	assert.Equal(t, input, got)
	assert.Equal(t, encoding.UTF8, charset)
}

func TestNewUTF8Reader_Windows1252(t *testing.T) {
	// "Fatura Eletrónica;expense\n" with ó = 0xF3 in Windows-1252.
	input := []byte{
		'F', 'a', 't', 'u', 'r', 'a', ' ',
		'E', 'l', 'e', 't', 'r', 0xF3, 'n', 'i', 'c', 'a', ';',
		'e', 'x', 'p', 'e', 'n', 's', 'e', '\n',
	}

	got, _ := readAll(t, input)
	assert.Equal(t, "Fatura Eletrónica;expense\n", got)
}

func TestNewUTF8Reader_StripsUTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("source_type;target_type\n")...)

	got, charset := readAll(t, input)
	assert.Equal(t, "source_type;target_type\n", got)
	assert.Equal(t, encoding.UTF8, charset)
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	input := []byte{0xFF, 0xFE, 'a', 0x00, ';', 0x00, 'b', 0x00}

	got, charset := readAll(t, input)
	assert.Equal(t, "a;b", got)
	assert.Equal(t, encoding.UTF16LE, charset)
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	got, charset := readAll(t, nil)
	assert.Empty(t, got)
	assert.Equal(t, encoding.UTF8, charset)
}
