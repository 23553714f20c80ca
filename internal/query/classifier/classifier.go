// Package classifier picks the collection an utterance is about.
package classifier

import (
	"strings"

	"homelead-workers/internal/models"
	"homelead-workers/pkg/registry"
)

// Rule names the step that decided the collection.
type Rule string

const (
	RuleScore    Rule = "score"
	RuleHint     Rule = "hint"
	RuleOverride Rule = "override"
	RuleGeneral  Rule = "general"
	RuleShort    Rule = "short"
	RuleDefault  Rule = "default"
)

type Result struct {
	Collection models.Collection
	Scores     map[models.Collection]float64
	Rule       Rule
}

// Matched reports whether any keyword scored at all.
func (r Result) Matched() bool {
	for _, s := range r.Scores {
		if s > 0 {
			return true
		}
	}
	return false
}

type override struct {
	tokens     []string
	collection models.Collection
}

// Checked in order; the first token present wins.
var overrides = []override{
	{[]string{"lead"}, models.CollectionLeads},
	{[]string{"property", "flat", "apartment"}, models.CollectionProperties},
	{[]string{"project", "development"}, models.CollectionProjects},
	{[]string{"land", "plot"}, models.CollectionLands},
	{[]string{"broker", "agent"}, models.CollectionBrokers},
}

var (
	generalWords     = []string{"total", "all", "list", "show", "count"}
	knownBrokerNames = []string{"horizon", "silverstone", "monil"}
	propertyWords    = []string{"block", "floor", "shop"}
)

type Classifier struct {
	profiles []registry.CollectionProfile
}

func New(reg *registry.Registry) *Classifier {
	return &Classifier{profiles: reg.Collections}
}

// Classify scores utterance against every profile: primary keywords count
// 2, secondary 1, times the profile weight. A unique positive maximum wins.
// Ties and all-zero scores fall through the ordered rules below. hint is
// consulted only when nothing scored.
func (c *Classifier) Classify(utterance string, hint models.Collection) Result {
	text := strings.ToLower(utterance)

	scores := make(map[models.Collection]float64, len(c.profiles))
	var best models.Collection
	bestScore := 0.0
	tied := false

	for _, p := range c.profiles {
		primary := countPresent(text, p.PrimaryKeywords)
		secondary := countPresent(text, p.SecondaryKeywords)
		weight := p.Weight
		if weight == 0 {
			weight = 1.0
		}
		score := float64(primary*2+secondary) * weight
		col := models.Collection(p.Name)
		scores[col] = score

		switch {
		case score > bestScore:
			best, bestScore, tied = col, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}

	result := Result{Scores: scores}

	if bestScore > 0 && !tied {
		result.Collection = best
		result.Rule = RuleScore
		return result
	}

	if bestScore == 0 && hint.Valid() {
		result.Collection = hint
		result.Rule = RuleHint
		return result
	}

	result.Collection, result.Rule = fallback(text, utterance)
	return result
}

func fallback(text, original string) (models.Collection, Rule) {
	for _, o := range overrides {
		if containsAny(text, o.tokens) {
			return o.collection, RuleOverride
		}
	}

	if containsAny(text, generalWords) {
		return models.CollectionBrokers, RuleGeneral
	}

	if len(strings.Fields(original)) <= 3 {
		switch {
		case containsAny(text, knownBrokerNames):
			return models.CollectionBrokers, RuleShort
		case containsAny(text, propertyWords):
			return models.CollectionProperties, RuleShort
		default:
			return models.CollectionBrokers, RuleShort
		}
	}

	return models.CollectionProperties, RuleDefault
}

func countPresent(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
