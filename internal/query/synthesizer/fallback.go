package synthesizer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"homelead-workers/internal/query/filter"
)

var (
	matchAllWords       = []string{"total", "count", "all", "list all"}
	allCollectionPrefix = regexp.MustCompile(`^all\s+(properties|leads|brokers|projects|lands)`)
	recordTypes         = []string{"lead", "property", "broker", "project", "land"}
	recordPatterns      = compileRecordPatterns()

	cityPattern = regexp.MustCompile(`\b(mumbai|delhi|bangalore|pune|chennai|hyderabad|kolkata|ahmedabad|jaipur|noida|gurgaon|faridabad|ghaziabad)\b`)

	budgetRangePattern = regexp.MustCompile(`range\s*(\d+)\s*-\s*(\d+)`)
	budgetPatterns     = []budgetPattern{
		{regexp.MustCompile(`(\d+)\s*(lakh|lakhs)`), 100000},
		{regexp.MustCompile(`(\d+)\s*(crore|crores)`), 10000000},
		{regexp.MustCompile(`(\d+)\s*(k|thousand)`), 1000},
		{regexp.MustCompile(`(\d+)\s*(million)`), 1000000},
		{regexp.MustCompile(`under\s*(\d+)`), 1},
		{regexp.MustCompile(`less\s*than\s*(\d+)`), 1},
		{regexp.MustCompile(`upto\s*(\d+)`), 1},
		{regexp.MustCompile(`budget\s*(\d+)`), 1},
	}

	commissionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)%\s*commission`),
		regexp.MustCompile(`commission\s*(\d+)%`),
		regexp.MustCompile(`(\d+)\s*percent\s*commission`),
	}

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{10}\b`),
		regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`),
		regexp.MustCompile(`\b\d{5}[-.\s]?\d{5}\b`),
	}
	phoneSeparators = regexp.MustCompile(`[-.\s]`)
)

const lowBudgetCeiling = 1000000

type budgetPattern struct {
	re         *regexp.Regexp
	multiplier int64
}

type recordPattern struct {
	field   string
	numbers []*regexp.Regexp
}

type statusKeyword struct {
	keyword string
	value   string
}

var statusKeywords = []statusKeyword{
	{"active", "Active"},
	{"available", "Available"},
	{"ready", "Ready"},
	{"completed", "Completed"},
	{"finished", "Finished"},
	{"ongoing", "Ongoing"},
	{"under construction", "Under Construction"},
	{"converted", "Converted"},
}

// Words that never form part of a name search.
var nameStopWords = map[string]bool{
	"show": true, "me": true, "find": true, "get": true, "list": true, "all": true,
	"the": true, "a": true, "an": true, "in": true, "with": true, "of": true,
	"for": true, "to": true, "and": true, "or": true, "but": true,
	"top": true, "give": true, "details": true, "about": true, "please": true,
	"broker": true, "brokers": true, "agent": true, "agents": true,
	"property": true, "properties": true, "flat": true, "flats": true,
	"project": true, "projects": true, "lead": true, "leads": true,
	"land": true, "lands": true, "plot": true, "plots": true,
	"average": true, "avg": true, "budget": true, "total": true, "count": true,
}

func compileRecordPatterns() []recordPattern {
	out := make([]recordPattern, 0, len(recordTypes))
	for _, ctype := range recordTypes {
		out = append(out, recordPattern{
			field: ctype + "No",
			numbers: []*regexp.Regexp{
				regexp.MustCompile(fmt.Sprintf(`(?:%[1]s no|show %[1]s)\s*(\d+)`, ctype)),
				regexp.MustCompile(fmt.Sprintf(`%s\s+(\d+)`, ctype)),
			},
		})
	}
	return out
}

// Extract builds a filter from the utterance alone. It never fails; the
// worst case is the match-all filter.
func Extract(utterance string) filter.Filter {
	text := strings.ToLower(utterance)

	if containsAny(text, matchAllWords) || allCollectionPrefix.MatchString(text) {
		return filter.Empty()
	}

	if f, ok := recordNumber(text); ok {
		return f
	}

	f := filter.Filter{}

	if m := cityPattern.FindStringSubmatch(text); m != nil {
		f["address"] = filter.Regex(titleCase(m[1]))
	}

	typeField := "propertyType"
	if strings.Contains(text, "project") {
		typeField = "category"
	}
	switch {
	case strings.Contains(text, "commercial"):
		f[typeField] = "Commercial"
	case strings.Contains(text, "residential"):
		f[typeField] = "Residential"
	}

	extractBudget(text, f)

	for _, s := range statusKeywords {
		if strings.Contains(text, s.keyword) {
			f[statusField(text)] = s.value
			break
		}
	}

	for _, re := range commissionPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, ok := parseAmount(m[1], 1); ok {
				f["commissionPercent"] = n
			}
			break
		}
	}

	for _, re := range phonePatterns {
		if m := re.FindString(text); m != "" {
			f["phone"] = phoneSeparators.ReplaceAllString(m, "")
			break
		}
	}

	if len(f) == 0 {
		if name := nameQuery(utterance); name != "" {
			f["name"] = filter.Regex(name)
		}
	}

	if strings.Contains(text, "horizon") {
		f["name"] = filter.Regex("Horizon")
	}

	return f
}

func recordNumber(text string) (filter.Filter, bool) {
	for _, rp := range recordPatterns {
		for _, re := range rp.numbers {
			if m := re.FindStringSubmatch(text); m != nil {
				if n, ok := parseAmount(m[1], 1); ok {
					return filter.RecordNumber(rp.field, n), true
				}
			}
		}
	}
	return nil, false
}

// extractBudget applies one budget rule: an explicit "less/lower budget",
// else a "budget range A - B", else the first unit pattern.
func extractBudget(text string, f filter.Filter) {
	if strings.Contains(text, "less budget") || strings.Contains(text, "lower budget") {
		f["maxBudget"] = filter.LTE(lowBudgetCeiling)
		return
	}

	if strings.Contains(text, "budget range") {
		if m := budgetRangePattern.FindStringSubmatch(text); m != nil {
			lo, okLo := parseAmount(m[1], 1)
			hi, okHi := parseAmount(m[2], 1)
			if okLo && okHi {
				f["minBudget"] = filter.GTE(lo)
				f["maxBudget"] = filter.LTE(hi)
			}
			return
		}
	}

	for _, bp := range budgetPatterns {
		if m := bp.re.FindStringSubmatch(text); m != nil {
			if n, ok := parseAmount(m[1], bp.multiplier); ok {
				f["maxBudget"] = filter.LTE(n)
			}
			return
		}
	}
}

func statusField(text string) string {
	switch {
	case strings.Contains(text, "project"):
		return "projectStatus"
	case strings.Contains(text, "propert"):
		return "propertyStatus"
	case strings.Contains(text, "lead"):
		return "leadStatus"
	}
	return "status"
}

// nameQuery returns the regex-quoted remainder of a short utterance after
// stop words are removed, or "".
func nameQuery(utterance string) string {
	words := strings.Fields(utterance)
	if len(words) > 4 {
		return ""
	}

	var kept []string
	for _, w := range words {
		w = strings.Trim(w, "?!.,;:'\"")
		lower := strings.ToLower(w)
		if w == "" || nameStopWords[lower] || isNumber(lower) {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return ""
	}
	return regexp.QuoteMeta(strings.Join(kept, " "))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// parseAmount scales a run of digits by multiplier. Amounts that do not fit
// an int64 are rejected.
func parseAmount(s string, multiplier int64) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n > math.MaxInt64/multiplier {
		return 0, false
	}
	return n * multiplier, true
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
