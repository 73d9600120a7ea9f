package document

import (
	"strings"
	"time"
)

// Document is a snapshot of a document fetched from the document-management system.
type Document struct {
	ID            int64
	Title         string
	Content       string
	Created       *time.Time
	Correspondent string
	DocumentType  string
	Tags          []string
	CustomFields  []CustomField
}

// CustomField is a named value attached to a document.
type CustomField struct {
	Name  string
	Value string
}

// CustomField returns the value of the first custom field with the given name (case-insensitive).
func (d *Document) CustomField(name string) (string, bool) {
	for _, f := range d.CustomFields {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}

	return "", false
}

// HasTag reports whether the document carries the tag (case-insensitive).
func (d *Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}

	return false
}
