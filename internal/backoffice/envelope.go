package backoffice

import (
	"bytes"
	"encoding/json"
)

// Page is a normalized list result. Total is the server's count when it sent one, otherwise
// the number of items received.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page,omitempty"`
	TotalPages int `json:"totalPages,omitempty"`
}

func emptyPage[T any]() Page[T] {
	return Page[T]{Items: []T{}}
}

// decodeList normalizes the list envelopes the backend is known to send:
//
//	[ ... ]
//	{"items": [...], "total": n}
//	{"<listKey>": [...], "total": n}
//	{"data": [...]}
//	{"data": {"items": [...], "total": n}}
//	{"<singleKey>": {...}}
//	{"_id": ...}
//
// Anything else yields an empty page. Elements that do not decode as T are skipped.
func decodeList[T any](raw json.RawMessage, listKeys, singleKeys []string) Page[T] {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return emptyPage[T]()
	}

	if trimmed[0] == '[' {
		items, ok := decodeItems[T](trimmed)
		if !ok {
			return emptyPage[T]()
		}
		return Page[T]{Items: items, Total: len(items)}
	}

	obj, ok := asObject(trimmed)
	if !ok {
		return emptyPage[T]()
	}

	keys := append([]string{"items"}, listKeys...)
	for _, key := range keys {
		if items, ok := decodeItems[T](obj[key]); ok {
			return withCounts(Page[T]{Items: items}, obj)
		}
	}

	if data, ok := obj["data"]; ok {
		if items, ok := decodeItems[T](data); ok {
			return Page[T]{Items: items, Total: len(items)}
		}
		if nested, ok := asObject(data); ok {
			for _, key := range keys {
				if items, ok := decodeItems[T](nested[key]); ok {
					return withCounts(Page[T]{Items: items}, nested)
				}
			}
		}
	}

	for _, key := range singleKeys {
		if item, ok := decodeIdentified[T](obj[key]); ok {
			return Page[T]{Items: []T{item}, Total: 1}
		}
	}
	if item, ok := decodeIdentified[T](trimmed); ok {
		return Page[T]{Items: []T{item}, Total: 1}
	}

	return emptyPage[T]()
}

// decodeRecord finds one record: the first of keys holding an object carrying an _id,
// otherwise the body itself when it carries an _id.
func decodeRecord[T any](raw json.RawMessage, keys ...string) (T, bool) {
	if obj, ok := asObject(raw); ok {
		for _, key := range keys {
			if item, ok := decodeIdentified[T](obj[key]); ok {
				return item, true
			}
		}
	}
	return decodeIdentified[T](raw)
}

// decodeObject is decodeRecord for payloads without an _id: the first of keys holding an
// object, otherwise the body when it is an object.
func decodeObject[T any](raw json.RawMessage, keys ...string) (T, bool) {
	var zero T
	obj, ok := asObject(raw)
	if !ok {
		return zero, false
	}
	for _, key := range keys {
		if _, ok := asObject(obj[key]); ok {
			var out T
			if json.Unmarshal(obj[key], &out) == nil {
				return out, true
			}
		}
	}
	var out T
	if json.Unmarshal(raw, &out) != nil {
		return zero, false
	}
	return out, true
}

func decodeItems[T any](raw json.RawMessage) ([]T, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, false
	}
	items := make([]T, 0, len(elems))
	for _, elem := range elems {
		var item T
		if err := json.Unmarshal(elem, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, true
}

func decodeIdentified[T any](raw json.RawMessage) (T, bool) {
	var zero T
	obj, ok := asObject(raw)
	if !ok || !hasID(obj) {
		return zero, false
	}
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return zero, false
	}
	return item, true
}

func withCounts[T any](p Page[T], obj map[string]json.RawMessage) Page[T] {
	p.Total = len(p.Items)
	if n, ok := intField(obj, "total"); ok {
		p.Total = n
	}
	if n, ok := intField(obj, "page"); ok {
		p.Page = n
	}
	if n, ok := intField(obj, "totalPages"); ok {
		p.TotalPages = n
	}
	return p
}

func asObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func hasID(obj map[string]json.RawMessage) bool {
	id, ok := obj["_id"]
	if !ok {
		return false
	}
	id = bytes.TrimSpace(id)
	return len(id) > 0 && !bytes.Equal(id, []byte("null")) && !bytes.Equal(id, []byte(`""`))
}

func intField(obj map[string]json.RawMessage, key string) (int, bool) {
	raw, ok := obj[key]
	if !ok {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return int(n), true
}

func stringField(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
