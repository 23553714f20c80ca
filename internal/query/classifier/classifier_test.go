package classifier

import (
	"testing"

	"homelead-workers/internal/models"
	"homelead-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
)

func newClassifier() *Classifier {
	return New(registry.Default())
}

// ==========================
// Keyword Scoring
// ==========================

func TestClassify_ByScore(t *testing.T) {
	tests := []struct {
		utterance string
		want      models.Collection
	}{
		{"total brokers", models.CollectionBrokers},
		{"properties under 10 lakh", models.CollectionProperties},
		{"show lead 38", models.CollectionLeads},
		{"average budget of leads", models.CollectionLeads},
		{"top 5 brokers in Mumbai", models.CollectionBrokers},
		{"commercial projects", models.CollectionProjects},
		{"vacant land near Pune", models.CollectionLands},
		{"Brokers With 6% Commission", models.CollectionBrokers},
	}

	c := newClassifier()
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			got := c.Classify(tt.utterance, "")
			assert.Equal(t, tt.want, got.Collection)
			assert.Equal(t, RuleScore, got.Rule)
			assert.True(t, got.Matched())
		})
	}
}

func TestClassify_Scores(t *testing.T) {
	got := newClassifier().Classify("average budget of leads", "")
	assert.Equal(t, 4.0, got.Scores[models.CollectionLeads])
	assert.Equal(t, 1.0, got.Scores[models.CollectionProperties])
	assert.Equal(t, 0.0, got.Scores[models.CollectionBrokers])
}

// ==========================
// Fallback Rules
// ==========================

func TestClassify_FallbackRules(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      models.Collection
		rule      Rule
	}{
		{"tie resolved by override", "lead plot", models.CollectionLeads, RuleOverride},
		{"general words default to brokers", "show everything", models.CollectionBrokers, RuleGeneral},
		{"short known name", "Monil group", models.CollectionBrokers, RuleShort},
		{"short unknown", "hello there", models.CollectionBrokers, RuleShort},
		{"long unknown", "what is the weather like today", models.CollectionProperties, RuleDefault},
	}

	c := newClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.utterance, "")
			assert.Equal(t, tt.want, got.Collection)
			assert.Equal(t, tt.rule, got.Rule)
		})
	}
}

func TestClassify_TieWithoutOverrideToken(t *testing.T) {
	// projects scores 2 via "tower", lands 2 via "acre"; neither is an
	// override token, and no general word appears.
	got := newClassifier().Classify("tower acre", "")
	assert.Equal(t, RuleShort, got.Rule)
	assert.Equal(t, models.CollectionBrokers, got.Collection)
}

// ==========================
// Hint Handling
// ==========================

func TestClassify_Hint(t *testing.T) {
	c := newClassifier()

	got := c.Classify("hello there", models.CollectionLeads)
	assert.Equal(t, models.CollectionLeads, got.Collection)
	assert.Equal(t, RuleHint, got.Rule)

	got = c.Classify("total brokers", models.CollectionLeads)
	assert.Equal(t, models.CollectionBrokers, got.Collection, "keyword match beats hint")

	got = c.Classify("hello there", models.Collection("franchises"))
	assert.Equal(t, RuleShort, got.Rule, "invalid hint ignored")
}

// ==========================
// Properties
// ==========================

func TestClassify_MoreKeywordsNeverFlipWinner(t *testing.T) {
	c := newClassifier()
	base := "brokers in pune"
	first := c.Classify(base, "")
	assert.Equal(t, models.CollectionBrokers, first.Collection)

	for _, extra := range []string{" agent", " agents", " real estate", " commission"} {
		base += extra
		got := c.Classify(base, "")
		assert.Equal(t, models.CollectionBrokers, got.Collection, base)
		assert.Equal(t, RuleScore, got.Rule)
	}
}

func TestClassify_WeightScalesScore(t *testing.T) {
	reg := registry.Default()
	for i := range reg.Collections {
		if reg.Collections[i].Name == "properties" {
			reg.Collections[i].Weight = 5
		}
	}

	// properties: "budget" secondary (1 x 5) beats leads: "lead" primary (2 x 1)
	got := New(reg).Classify("lead budget", "")
	assert.Equal(t, models.CollectionProperties, got.Collection)
}
