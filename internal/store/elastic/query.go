package elastic

import (
	"fmt"
	"regexp/syntax"
	"sort"
	"strings"

	"homelead-workers/internal/query/filter"
)

// keywordSuffix addresses the exact-value subfield dynamic mapping creates
// for strings.
const keywordSuffix = ".keyword"

var rangeOps = map[string]string{
	filter.OpGTE: "gte",
	filter.OpLTE: "lte",
	"$gt":        "gt",
	"$lt":        "lt",
}

// BuildQuery translates a structured filter into a bool query. The empty
// filter becomes match_all.
func BuildQuery(f filter.Filter) (map[string]interface{}, error) {
	clauses, err := buildClauses(f)
	if err != nil {
		return nil, err
	}
	if len(clauses) == 0 {
		return map[string]interface{}{"match_all": map[string]interface{}{}}, nil
	}
	return map[string]interface{}{
		"bool": map[string]interface{}{"filter": clauses},
	}, nil
}

func buildClauses(f filter.Filter) ([]interface{}, error) {
	var clauses []interface{}

	// Sorted for a stable request body.
	for _, key := range f.Keys() {
		value := f[key]
		switch key {
		case filter.OpOr:
			clause, err := buildOr(value)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, clause)
		case filter.OpAnd:
			branches, ok := filter.Branches(value)
			if !ok {
				return nil, fmt.Errorf("$and expects a list of objects")
			}
			for _, b := range branches {
				sub, err := buildClauses(filter.Filter(b))
				if err != nil {
					return nil, err
				}
				clauses = append(clauses, sub...)
			}
		default:
			sub, err := fieldClauses(key, value)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, sub...)
		}
	}
	return clauses, nil
}

func buildOr(value interface{}) (map[string]interface{}, error) {
	branches, ok := filter.Branches(value)
	if !ok {
		return nil, fmt.Errorf("$or expects a list of objects")
	}

	should := make([]interface{}, 0, len(branches))
	for _, b := range branches {
		sub, err := BuildQuery(filter.Filter(b))
		if err != nil {
			return nil, err
		}
		should = append(should, sub)
	}
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"should":               should,
			"minimum_should_match": 1,
		},
	}, nil
}

func fieldClauses(field string, value interface{}) ([]interface{}, error) {
	ops, isOp := filter.AsOperator(value)
	if !isOp {
		return []interface{}{literalClause(field, value)}, nil
	}

	var clauses []interface{}
	bounds := map[string]interface{}{}

	keys := make([]string, 0, len(ops))
	for k := range ops {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, op := range keys {
		arg := ops[op]
		switch op {
		case filter.OpRegex:
			pattern, ok := arg.(string)
			if !ok {
				return nil, fmt.Errorf("$regex on %s expects a string", field)
			}
			opts, _ := ops[filter.OpOptions].(string)
			clause, err := regexClause(field, pattern, strings.Contains(opts, "i"))
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, clause)
		case filter.OpOptions:
		case filter.OpGTE, filter.OpLTE, "$gt", "$lt":
			bounds[rangeOps[op]] = arg
		case filter.OpExists:
			exists := map[string]interface{}{"exists": map[string]interface{}{"field": field}}
			if want, _ := arg.(bool); want {
				clauses = append(clauses, exists)
			} else {
				clauses = append(clauses, map[string]interface{}{
					"bool": map[string]interface{}{"must_not": []interface{}{exists}},
				})
			}
		default:
			return nil, fmt.Errorf("unsupported operator %s on %s", op, field)
		}
	}

	if len(bounds) > 0 {
		clauses = append(clauses, map[string]interface{}{
			"range": map[string]interface{}{field: bounds},
		})
	}
	return clauses, nil
}

func literalClause(field string, value interface{}) map[string]interface{} {
	if s, ok := value.(string); ok {
		return map[string]interface{}{
			"match_phrase": map[string]interface{}{field: s},
		}
	}
	return map[string]interface{}{
		"term": map[string]interface{}{field: value},
	}
}

// regexClause uses a wildcard query when the pattern is a plain (possibly
// escaped) literal and a regexp query otherwise. Both are unanchored, like
// the Mongo $regex they replace.
func regexClause(field, pattern string, caseInsensitive bool) (map[string]interface{}, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, fmt.Errorf("invalid $regex on %s: %w", field, err)
	}

	target := field + keywordSuffix
	if lit, ok := literal(re); ok {
		return map[string]interface{}{
			"wildcard": map[string]interface{}{
				target: map[string]interface{}{
					"value":            "*" + escapeWildcard(lit) + "*",
					"case_insensitive": caseInsensitive,
				},
			},
		}, nil
	}

	return map[string]interface{}{
		"regexp": map[string]interface{}{
			target: map[string]interface{}{
				"value":            ".*(" + pattern + ").*",
				"case_insensitive": caseInsensitive,
			},
		},
	}, nil
}

func literal(re *syntax.Regexp) (string, bool) {
	re = re.Simplify()
	switch re.Op {
	case syntax.OpLiteral:
		return string(re.Rune), true
	case syntax.OpEmptyMatch:
		return "", true
	}
	return "", false
}

func escapeWildcard(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)
	return r.Replace(s)
}
