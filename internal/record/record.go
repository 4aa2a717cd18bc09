// Package record provides nil-safe field access and value coercion over loosely typed records.
package record

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/hyperjump/portalsearch/internal/models"
)

// Lookup walks a dot-separated path through nested records.
// It returns false when any segment is missing or the parent is not a record.
func Lookup(rec map[string]any, path string) (any, bool) {
	if rec == nil || path == "" {
		return nil, false
	}
	var cur any = rec
	for _, key := range strings.Split(path, ".") {
		var (
			next any
			ok   bool
		)
		switch m := cur.(type) {
		case map[string]any:
			next, ok = m[key]
		case models.Record:
			next, ok = m[key]
		case map[string]string:
			next, ok = m[key]
		default:
			return nil, false
		}
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// FieldText returns the textual value of the field at path, or "" when missing.
func FieldText(rec map[string]any, path string) string {
	v, ok := Lookup(rec, path)
	if !ok {
		return ""
	}
	return Text(v)
}

// Text renders a value as searchable text. Lists are joined with spaces;
// nil and nested records render as "".
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case []string:
		return strings.Join(x, " ")
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = Text(e)
		}
		return strings.Join(parts, " ")
	case map[string]any, models.Record, map[string]string:
		return ""
	case json.Number:
		return x.String()
	}
	if f, ok := numeric(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// Values flattens v into its scalar members: lists yield their elements,
// scalars yield themselves and nil yields nothing.
func Values(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]any, 0, len(x))
		for _, e := range x {
			if e != nil {
				out = append(out, e)
			}
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out
	default:
		return []any{v}
	}
}

// Number coerces v to a float64 the way a loosely typed UI would:
// nil and "" are 0, bools are 0 or 1, numeric strings parse, and
// everything else is NaN.
func Number(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case []any, []string:
		return Number(Text(x))
	}
	if f, ok := numeric(v); ok {
		return f
	}
	return math.NaN()
}

// Equal reports strict equality: values must share a kind (numbers compare
// across Go numeric types). Lists and records are never equal to anything.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := numeric(a); ok {
		fb, ok := numeric(b)
		return ok && fa == fb
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return false
}

func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}
