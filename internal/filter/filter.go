// Package filter applies predicate filters to records after scoring.
package filter

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/hyperjump/portalsearch/internal/models"
	"github.com/hyperjump/portalsearch/internal/record"
)

// Op is a filter operator.
type Op int

const (
	// OpEq is strict equality. Unknown operator names also map here.
	OpEq Op = iota
	// OpIn tests membership of the record value in a list.
	OpIn
	OpGt
	OpGte
	OpLt
	OpLte
	OpNe
	OpContains
	OpStartsWith
	OpEndsWith
)

// String returns the operator's wire name.
func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpIn:
		return "in"
	case OpGt:
		return "gt"
	case OpGte:
		return "gte"
	case OpLt:
		return "lt"
	case OpLte:
		return "lte"
	case OpNe:
		return "ne"
	case OpContains:
		return "contains"
	case OpStartsWith:
		return "startsWith"
	case OpEndsWith:
		return "endsWith"
	default:
		return "unknown"
	}
}

// ParseOp maps an operator name to an Op. The second result is false when
// the name is not recognised and OpEq was substituted.
func ParseOp(name string) (Op, bool) {
	switch name {
	case "eq":
		return OpEq, true
	case "in":
		return OpIn, true
	case "gt":
		return OpGt, true
	case "gte":
		return OpGte, true
	case "lt":
		return OpLt, true
	case "lte":
		return OpLte, true
	case "ne":
		return OpNe, true
	case "contains":
		return OpContains, true
	case "startsWith":
		return OpStartsWith, true
	case "endsWith":
		return OpEndsWith, true
	default:
		return OpEq, false
	}
}

// Condition is a single field predicate.
type Condition struct {
	Field string
	Op    Op
	Value any
	// Values holds the candidates for OpIn.
	Values []any
	// Unknown carries the original operator name when it fell back to OpEq.
	Unknown string
}

// Parse converts a filter map into conditions sorted by field name.
// Nil values are dropped; a list becomes OpIn; a map with an "operator" key
// becomes an operator condition; anything else is an equality test.
func Parse(filters map[string]any) []Condition {
	conds := make([]Condition, 0, len(filters))
	for field, raw := range filters {
		if raw == nil {
			continue
		}
		conds = append(conds, parseOne(field, raw))
	}
	sort.Slice(conds, func(i, j int) bool { return conds[i].Field < conds[j].Field })
	return conds
}

func parseOne(field string, raw any) Condition {
	switch v := raw.(type) {
	case []any:
		return Condition{Field: field, Op: OpIn, Values: v}
	case []string:
		vals := make([]any, len(v))
		for i, s := range v {
			vals[i] = s
		}
		return Condition{Field: field, Op: OpIn, Values: vals}
	case map[string]any:
		name, ok := v["operator"].(string)
		if !ok {
			return Condition{Field: field, Op: OpEq, Value: raw}
		}
		op, known := ParseOp(name)
		c := Condition{Field: field, Op: op, Value: v["value"]}
		if !known {
			c.Unknown = name
		}
		if op == OpIn {
			c.Values = record.Values(v["value"])
		}
		return c
	}
	return Condition{Field: field, Op: OpEq, Value: raw}
}

// Match reports whether rec satisfies the condition. A missing or nil field
// value compares as the empty string.
func (c Condition) Match(rec models.Record) bool {
	actual, ok := record.Lookup(rec, c.Field)
	if !ok || actual == nil {
		actual = ""
	}
	switch c.Op {
	case OpEq:
		return record.Equal(actual, c.Value)
	case OpIn:
		for _, v := range c.Values {
			if record.Equal(actual, v) {
				return true
			}
		}
		return false
	case OpNe:
		return !record.Equal(actual, c.Value)
	case OpGt, OpGte, OpLt, OpLte:
		return compareNumbers(c.Op, record.Number(actual), record.Number(c.Value))
	case OpContains, OpStartsWith, OpEndsWith:
		return matchText(c.Op, strings.ToLower(record.Text(actual)), strings.ToLower(record.Text(c.Value)))
	default:
		panic(fmt.Sprintf("filter: unhandled operator %d", c.Op))
	}
}

func compareNumbers(op Op, a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	switch op {
	case OpGt:
		return a > b
	case OpGte:
		return a >= b
	case OpLt:
		return a < b
	default:
		return a <= b
	}
}

func matchText(op Op, text, needle string) bool {
	switch op {
	case OpContains:
		return strings.Contains(text, needle)
	case OpStartsWith:
		return strings.HasPrefix(text, needle)
	default:
		return strings.HasSuffix(text, needle)
	}
}

// Apply returns the records that satisfy every condition, in input order.
// With no conditions the input slice is returned as is.
func Apply(records []models.Record, conds []Condition) []models.Record {
	if len(conds) == 0 {
		return records
	}
	out := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if matchAll(rec, conds) {
			out = append(out, rec)
		}
	}
	return out
}

func matchAll(rec models.Record, conds []Condition) bool {
	for _, c := range conds {
		if !c.Match(rec) {
			return false
		}
	}
	return true
}
