package expense

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/paperbridge/internal/document"
)

// Fields reported by ValidationError besides the payload keys.
const (
	FieldDocument = "document"
	FieldTitle    = "title"
	FieldContent  = "content"
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks that a document carries what Transform needs.
func Validate(doc *document.Document) error {
	if doc == nil || (doc.ID == 0 && doc.Title == "" && doc.Content == "") {
		return &ValidationError{Field: FieldDocument, Reason: "document is empty"}
	}

	if doc.Title == "" {
		return &ValidationError{Field: FieldTitle, Reason: "title is missing"}
	}

	if strings.TrimSpace(doc.Title) == "" {
		return &ValidationError{Field: FieldTitle, Reason: "title is empty"}
	}

	if strings.TrimSpace(doc.Content) == "" {
		return &ValidationError{Field: FieldContent, Reason: "content is empty"}
	}

	return nil
}
