// Package field looks up values in loosely shaped records (database documents,
// decoded JSON bodies) by an ordered list of candidate keys.
package field

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Placeholder is printed for values that are absent.
const Placeholder = "N/A"

// Record is a decoded document or JSON object.
type Record = map[string]any

// Value is the result of a lookup.
type Value struct {
	// Key is the candidate key that matched. Empty when nothing matched.
	Key string

	// Raw is the matched value as stored in the record.
	Raw any

	// Found reports whether any candidate key was present.
	Found bool
}

// String returns the formatted value, or Placeholder when not found.
func (v Value) String() string {
	return v.Or(Placeholder)
}

// Or returns the formatted value, or placeholder when not found.
func (v Value) Or(placeholder string) string {
	if !v.Found {
		return placeholder
	}
	return Format(v.Raw)
}

// First returns the value of the first candidate key present in any of the
// records. Keys are tried in priority order; for each key, records are tried
// in order. A key may be a dotted path ("user._id") into nested objects.
// Nil values count as absent.
func First(keys []string, records ...Record) Value {
	for _, key := range keys {
		for _, rec := range records {
			if raw, ok := Get(rec, key); ok {
				return Value{Key: key, Raw: raw, Found: true}
			}
		}
	}
	return Value{}
}

// Get resolves a single (possibly dotted) key in rec.
func Get(rec Record, key string) (any, bool) {
	if rec == nil || key == "" {
		return nil, false
	}
	cur := rec
	parts := strings.Split(key, ".")
	for i, part := range parts {
		raw, ok := cur[part]
		if !ok || raw == nil {
			return nil, false
		}
		if i == len(parts)-1 {
			return raw, true
		}
		next, ok := raw.(map[string]any)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// Format renders a record value for console output.
func Format(raw any) string {
	switch v := raw.(type) {
	case nil:
		return Placeholder
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
