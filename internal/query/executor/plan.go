package executor

import (
	"regexp"
	"strconv"
	"strings"

	"homelead-workers/internal/models"
)

var (
	topNPattern   = regexp.MustCompile(`top\s+(\d+)`)
	fetchAllWords = []string{"total", "count", "all", "list all"}
	averageWords  = []string{"average", "avg"}
)

// Plan is the cardinality decision for one turn.
type Plan struct {
	Mode  models.QueryMode
	Limit int64 // 0 means unbounded
	// Requested is set when the utterance asked for "top N".
	Requested bool
	// UnsupportedAverage marks an average request outside the leads budget
	// case; it runs as an ordinary fetch.
	UnsupportedAverage bool
}

// Decide picks the execution mode. The leads budget average wins over every
// other rule, then fetch-all words, then "top N", then defaultLimit.
func Decide(utterance string, collection models.Collection, defaultLimit int64) Plan {
	text := strings.ToLower(utterance)

	wantsAverage := containsAny(text, averageWords)
	if wantsAverage && collection == models.CollectionLeads && strings.Contains(text, "budget") {
		return Plan{Mode: models.ModeAggregate}
	}

	plan := Plan{Mode: models.ModeList, Limit: defaultLimit, UnsupportedAverage: wantsAverage}

	if containsAny(text, fetchAllWords) {
		plan.Mode = models.ModeCount
		plan.Limit = 0
		return plan
	}

	if m := topNPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.ParseInt(m[1], 10, 64); err == nil && n > 0 {
			plan.Limit = n
			plan.Requested = true
		}
	}

	return plan
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
