package paperless

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/paperbridge/internal/document"
)

// rawDocument is a document as the API returns it. Related objects arrive either as
// ids or, with full_perms/nested serializers, as objects; json.RawMessage keeps both.
type rawDocument struct {
	ID            int64             `json:"id"`
	Title         string            `json:"title"`
	Content       string            `json:"content"`
	Created       string            `json:"created"`
	Correspondent json.RawMessage   `json:"correspondent"`
	DocumentType  json.RawMessage   `json:"document_type"`
	Tags          []json.RawMessage `json:"tags"`
	CustomFields  []rawCustomField  `json:"custom_fields"`
}

type rawCustomField struct {
	Field json.RawMessage `json:"field"`
	Value json.RawMessage `json:"value"`
}

type namedObject struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ref is a decoded reference: a name when the API embedded one, otherwise an id.
type ref struct {
	id   int64
	name string
}

func decodeRef(raw json.RawMessage) (ref, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ref{}, false, nil
	}

	switch raw[0] {
	case '{':
		var obj namedObject
		if err := json.Unmarshal(raw, &obj); err != nil {
			return ref{}, false, err
		}

		return ref{id: obj.ID, name: obj.Name}, true, nil
	case '"':
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return ref{}, false, err
		}

		return ref{name: name}, name != "", nil
	}

	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return ref{}, false, fmt.Errorf("unexpected reference %s", raw)
	}

	return ref{id: id}, true, nil
}

func (c *Client) resolveOne(ctx context.Context, resource string, raw json.RawMessage) (string, error) {
	names, err := c.resolveMany(ctx, resource, []json.RawMessage{raw})
	if err != nil || len(names) == 0 {
		return "", err
	}

	return names[0], nil
}

// resolveMany turns references into names, looking up unknown ids in one request.
func (c *Client) resolveMany(ctx context.Context, resource string, raws []json.RawMessage) ([]string, error) {
	refs := make([]ref, 0, len(raws))

	for _, raw := range raws {
		r, ok, err := decodeRef(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", resource, err)
		}

		if ok {
			refs = append(refs, r)
		}
	}

	var ids []int64

	for _, r := range refs {
		if r.name == "" {
			ids = append(ids, r.id)
		}
	}

	names, err := c.lookup(ctx, resource, ids)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(refs))

	for _, r := range refs {
		name := r.name
		if name == "" {
			name = names[r.id]
		}

		if name == "" {
			name = strconv.FormatInt(r.id, 10)
		}

		out = append(out, name)
	}

	return out, nil
}

// lookup returns id→name for a resource, fetching ids not yet cached.
func (c *Client) lookup(ctx context.Context, resource string, ids []int64) (map[int64]string, error) {
	c.mu.Lock()
	cached := c.names[resource]

	var missing []int64

	for _, id := range ids {
		if _, ok := cached[id]; !ok && !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}
	c.mu.Unlock()

	if len(missing) > 0 {
		strs := make([]string, len(missing))
		for i, id := range missing {
			strs[i] = strconv.FormatInt(id, 10)
		}

		q := url.Values{}
		q.Set("id__in", strings.Join(strs, ","))
		q.Set("page_size", strconv.Itoa(len(missing)))

		var page struct {
			Results []namedObject `json:"results"`
		}

		if err := c.get(ctx, "paperless list "+resource, "/api/"+resource+"/", q, &page); err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.names[resource] == nil {
			c.names[resource] = make(map[int64]string)
		}

		for _, obj := range page.Results {
			c.names[resource][obj.ID] = obj.Name
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[int64]string, len(ids))
	for _, id := range ids {
		out[id] = c.names[resource][id]
	}

	return out, nil
}

func (c *Client) customFields(ctx context.Context, raws []rawCustomField) ([]document.CustomField, error) {
	if len(raws) == 0 {
		return nil, nil
	}

	fieldRefs := make([]json.RawMessage, len(raws))
	for i, f := range raws {
		fieldRefs[i] = f.Field
	}

	names, err := c.resolveMany(ctx, resourceCustomFields, fieldRefs)
	if err != nil {
		return nil, err
	}

	if len(names) != len(raws) {
		return nil, fmt.Errorf("custom fields: %d of %d have no field reference", len(raws)-len(names), len(raws))
	}

	fields := make([]document.CustomField, 0, len(raws))

	for i, f := range raws {
		value := customValue(f.Value)
		if value == "" {
			continue
		}

		fields = append(fields, document.CustomField{Name: names[i], Value: value})
	}

	return fields, nil
}

// customValue renders a custom field value as text. Monetary fields come as "EUR12.50".
func customValue(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	return string(raw)
}
