// Package validator enforces per-collection field allow-lists on filters.
package validator

import (
	"homelead-workers/internal/query/filter"
)

// Result carries the filter to execute and, when it was reset to match-all,
// the offending keys.
type Result struct {
	Filter   filter.Filter
	Rejected []string
}

// Reset reports whether the candidate was replaced or pruned.
func (r Result) Reset() bool {
	return len(r.Rejected) > 0
}

// Validate never fails. A filter with $or keeps only the branches whose keys
// are all allowed; with no surviving branch it becomes match-all. Any other
// filter with a disallowed top-level key becomes match-all.
func Validate(candidate filter.Filter, allowed []string) Result {
	if candidate == nil {
		return Result{Filter: filter.Empty()}
	}

	allow := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		allow[f] = true
	}

	if orValue, hasOr := candidate[filter.OpOr]; hasOr {
		return validateOr(orValue, allow)
	}

	var rejected []string
	for _, k := range candidate.Keys() {
		if !allow[k] {
			rejected = append(rejected, k)
		}
	}
	if len(rejected) > 0 {
		return Result{Filter: filter.Empty(), Rejected: rejected}
	}
	return Result{Filter: candidate}
}

func validateOr(orValue interface{}, allow map[string]bool) Result {
	branches, ok := filter.Branches(orValue)
	if !ok {
		return Result{Filter: filter.Empty(), Rejected: []string{filter.OpOr}}
	}

	var kept []interface{}
	var rejected []string
	for _, branch := range branches {
		bad := ""
		for k := range branch {
			if !allow[k] {
				bad = k
				break
			}
		}
		if bad != "" {
			rejected = append(rejected, bad)
			continue
		}
		kept = append(kept, branch)
	}

	if len(kept) == 0 {
		return Result{Filter: filter.Empty(), Rejected: rejected}
	}
	return Result{Filter: filter.Filter{filter.OpOr: kept}, Rejected: rejected}
}
