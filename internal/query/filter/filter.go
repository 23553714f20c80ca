// Package filter holds the structured filter shape shared by every stage of
// the query pipeline and by the store backends.
package filter

import (
	"encoding/json"
	"math"
	"sort"
)

// Operator keys.
const (
	OpOr      = "$or"
	OpAnd     = "$and"
	OpExists  = "$exists"
	OpRegex   = "$regex"
	OpOptions = "$options"
	OpGTE     = "$gte"
	OpLTE     = "$lte"
)

// Filter maps a field name to a literal, an operator object, or (under
// OpOr) a list of sub-filters.
type Filter map[string]interface{}

// Empty is the match-all filter.
func Empty() Filter { return Filter{} }

// Regex builds a case-insensitive substring match.
func Regex(pattern string) map[string]interface{} {
	return map[string]interface{}{OpRegex: pattern, OpOptions: "i"}
}

func LTE(n int64) map[string]interface{} {
	return map[string]interface{}{OpLTE: n}
}

func GTE(n int64) map[string]interface{} {
	return map[string]interface{}{OpGTE: n}
}

// RecordNumber builds {"$or": [{field: n}, {"id": n}]}.
func RecordNumber(field string, n int64) Filter {
	return Filter{
		OpOr: []interface{}{
			map[string]interface{}{field: n},
			map[string]interface{}{"id": n},
		},
	}
}

// Branches returns the sub-filters of an $or value. ok is false when v is
// not a list of objects.
func Branches(v interface{}) (branches []map[string]interface{}, ok bool) {
	switch list := v.(type) {
	case []interface{}:
		for _, item := range list {
			m, isMap := asMap(item)
			if !isMap {
				return nil, false
			}
			branches = append(branches, m)
		}
		return branches, true
	case []map[string]interface{}:
		return list, true
	case []Filter:
		for _, f := range list {
			branches = append(branches, map[string]interface{}(f))
		}
		return branches, true
	}
	return nil, false
}

// AsOperator returns v as an operator object when it is one.
func AsOperator(v interface{}) (map[string]interface{}, bool) {
	return asMap(v)
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case Filter:
		return map[string]interface{}(m), true
	}
	return nil, false
}

// Keys returns the top-level keys in sorted order.
func (f Filter) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsEmpty reports whether f matches everything.
func (f Filter) IsEmpty() bool {
	return len(f) == 0
}

// String renders f as compact JSON for logs and audit rows.
func (f Filter) String() string {
	if f == nil {
		return "{}"
	}
	data, err := json.Marshal(f)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// NormalizeNumbers rewrites whole float64 values (as decoded from JSON) to
// int64 so record-number lookups compare as integers.
func NormalizeNumbers(v interface{}) interface{} {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = NormalizeNumbers(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = NormalizeNumbers(val)
		}
		return out
	}
	return v
}

// ToFloat converts the numeric kinds a store or JSON decoder may hand back.
func ToFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
