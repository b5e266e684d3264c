package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedKey reports an entity key that was expected to be numeric but
// did not parse. It maps to a client error at the HTTP boundary, never to a
// silent miss.
var ErrMalformedKey = errors.New("malformed entity key")

// ParseNumericID coerces a document-store key to a relational primary key.
func ParseNumericID(key string) (uint, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return 0, fmt.Errorf("%w: empty key", ErrMalformedKey)
	}
	id, err := strconv.ParseUint(key, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not numeric", ErrMalformedKey, key)
	}
	return uint(id), nil
}

// FormatID coerces a relational primary key to a document-store key.
func FormatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// docString reads an optional string field from a document snapshot.
func docString(data map[string]interface{}, field string) string {
	if v, ok := data[field].(string); ok {
		return v
	}
	return ""
}

// docFloat reads a numeric field from a document snapshot. Document stores
// round-trip numbers as int64 or float64 depending on the written value.
func docFloat(data map[string]interface{}, field string) (float64, bool) {
	switch v := data[field].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

// docUint reads a numeric field and coerces it to a relational primary key.
// String-typed numeric IDs are tolerated for documents written by older
// clients.
func docUint(data map[string]interface{}, field string) (uint, bool) {
	if f, ok := docFloat(data, field); ok && f > 0 {
		return uint(f), true
	}
	if s := docString(data, field); s != "" {
		if id, err := ParseNumericID(s); err == nil {
			return id, true
		}
	}
	return 0, false
}
