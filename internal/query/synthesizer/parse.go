package synthesizer

import (
	"encoding/json"
	"regexp"
	"strings"

	"homelead-workers/internal/query/filter"
)

// parseStrategy tries to pull one JSON object out of cleaned model output.
type parseStrategy func(cleaned string) (map[string]interface{}, bool)

// Tried in order; the first success wins.
var parseStrategies = []parseStrategy{
	parseObjectCandidates,
	parseWhole,
	parseMinimalPair,
}

var minimalPairPattern = regexp.MustCompile(`\{[^}]*"[^"]*"[^}]*\}`)

// ParseCompletion turns raw completion text into a flat filter. ok is false
// when no strategy produced a JSON object.
func ParseCompletion(raw string) (filter.Filter, bool) {
	obj, ok := ParseObject(raw)
	if !ok {
		return nil, false
	}

	for {
		nested, isMap := obj["query"].(map[string]interface{})
		if !isMap {
			break
		}
		obj = nested
	}

	return simplify(obj), true
}

// ParseObject runs the cleaning steps and the strategy chain and returns the
// first JSON object found, unmodified apart from number normalisation.
func ParseObject(raw string) (map[string]interface{}, bool) {
	cleaned := clean(raw)
	for _, strategy := range parseStrategies {
		if obj, ok := strategy(cleaned); ok {
			return filter.NormalizeNumbers(obj).(map[string]interface{}), true
		}
	}
	return nil, false
}

func clean(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "#"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if i := strings.LastIndex(s, "}"); i >= 0 {
		s = s[:i+1]
	}
	return strings.ReplaceAll(s, "'", `"`)
}

func parseObjectCandidates(s string) (map[string]interface{}, bool) {
	for _, candidate := range objectCandidates(s) {
		if obj, ok := decodeObject(stripFence(candidate)); ok {
			return obj, true
		}
	}
	return nil, false
}

func parseWhole(s string) (map[string]interface{}, bool) {
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		} else {
			s = s[3:]
		}
	}
	s = strings.TrimSuffix(s, "```")
	return decodeObject(s)
}

func parseMinimalPair(s string) (map[string]interface{}, bool) {
	match := minimalPairPattern.FindString(s)
	if match == "" {
		return nil, false
	}
	return decodeObject(match)
}

// objectCandidates returns every non-overlapping brace-balanced substring
// whose nesting depth is at most two, scanning left to right.
func objectCandidates(s string) []string {
	var out []string
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		if end, ok := matchObject(s, i); ok {
			out = append(out, s[i:end+1])
			i = end
		}
	}
	return out
}

func matchObject(s string, start int) (int, bool) {
	depth := 0
	for j := start; j < len(s); j++ {
		switch s[j] {
		case '{':
			depth++
			if depth > 2 {
				return 0, false
			}
		case '}':
			depth--
			if depth == 0 {
				return j, true
			}
		}
	}
	return 0, false
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	for _, tag := range []string{"python", "json"} {
		s = strings.TrimPrefix(s, tag)
	}
	return s
}

func decodeObject(s string) (map[string]interface{}, bool) {
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	obj, ok := v.(map[string]interface{})
	return obj, ok
}

// simplify flattens $and/$or into top-level keys and drops anything that
// tests field existence.
func simplify(q map[string]interface{}) filter.Filter {
	out := filter.Filter{}

	flatten := func(list interface{}) {
		branches, ok := filter.Branches(list)
		if !ok {
			return
		}
		for _, branch := range branches {
			for k, v := range branch {
				if k != filter.OpExists && !hasExists(v) {
					out[k] = v
				}
			}
		}
	}

	if and, ok := q[filter.OpAnd]; ok {
		flatten(and)
		return out
	}
	if or, ok := q[filter.OpOr]; ok {
		flatten(or)
		return out
	}

	for k, v := range q {
		switch k {
		case filter.OpExists, filter.OpAnd, filter.OpOr:
			continue
		}
		if hasExists(v) {
			continue
		}
		out[k] = v
	}
	return out
}

func hasExists(v interface{}) bool {
	op, ok := filter.AsOperator(v)
	if !ok {
		return false
	}
	_, has := op[filter.OpExists]
	return has
}
