// internal/models/query.go
package models

// QueryMode is the executor's cardinality policy for one turn.
type QueryMode string

const (
	ModeList      QueryMode = "list"
	ModeCount     QueryMode = "count"
	ModeAggregate QueryMode = "aggregate"
)

// SynthesisPath records which strategy produced the filter.
type SynthesisPath string

const (
	SynthesisLLM      SynthesisPath = "llm"
	SynthesisFallback SynthesisPath = "fallback"
)

// Outcome is the user-visible result class of one turn.
type Outcome string

const (
	OutcomeOK                   Outcome = "ok"
	OutcomeNoMatches            Outcome = "no_matches"
	OutcomeStoreError           Outcome = "store_error"
	OutcomeAggregateUnavailable Outcome = "aggregate_unavailable"
)

// BudgetStats is the leads budget aggregate.
type BudgetStats struct {
	Count        int64   `json:"count"`
	AvgMinBudget float64 `json:"avgMinBudget"`
	AvgMaxBudget float64 `json:"avgMaxBudget"`
}
