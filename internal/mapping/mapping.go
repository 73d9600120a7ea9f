package mapping

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("mapping not found")
	ErrDuplicate = errors.New("mapping already exists")
	ErrInvalid   = errors.New("invalid mapping")
)

// Canonical payload keys. A FieldMap renames some of them.
const (
	KeyDate        = "payment_date"
	KeyReference   = "reference_no"
	KeyDescription = "description"
	KeyCurrency    = "currency_code"
	KeyPayee       = "payee"
	KeyCategory    = "category"
	KeyAmount      = "amount"
)

var CanonicalKeys = []string{KeyDate, KeyReference, KeyDescription, KeyCurrency, KeyPayee, KeyCategory, KeyAmount}

// Mapping tells the transformer how documents of one source type become target records.
// FieldMap renames canonical payload keys to the keys the target expects.
type Mapping struct {
	ID         uuid.UUID
	SourceType string
	TargetType string
	FieldMap   map[string]string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// TargetKey returns the emitted name for a canonical payload key.
func (m *Mapping) TargetKey(key string) string {
	if m == nil {
		return key
	}

	if renamed, ok := m.FieldMap[key]; ok && renamed != "" {
		return renamed
	}

	return key
}

// checkFieldMap rejects field maps under which two canonical keys would be emitted under the same name.
func checkFieldMap(fieldMap map[string]string) error {
	m := &Mapping{FieldMap: fieldMap}
	emitted := make(map[string]string, len(CanonicalKeys))

	for _, key := range CanonicalKeys {
		target := m.TargetKey(key)

		if other, ok := emitted[target]; ok {
			return fmt.Errorf("%w: %s and %s would both be sent as %q", ErrInvalid, other, key, target)
		}

		emitted[target] = key
	}

	return nil
}
