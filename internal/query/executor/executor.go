// Package executor runs a validated filter against the document store with
// the turn's cardinality policy.
package executor

import (
	"context"
	"errors"

	apperrors "homelead-workers/internal/common/errors"
	"homelead-workers/internal/models"
	"homelead-workers/internal/query/filter"
)

// Store is the document-store contract every backend implements.
type Store interface {
	// Find returns matching records; limit 0 means no limit.
	Find(ctx context.Context, collection models.Collection, f filter.Filter, limit int64) ([]models.Record, error)
	Aggregate(ctx context.Context, collection models.Collection, pipeline []map[string]interface{}) ([]models.Record, error)
}

type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// Result holds either records (list and count modes) or budget statistics
// (aggregate mode). Stats is nil when the aggregate matched nothing.
type Result struct {
	Plan    Plan
	Records []models.Record
	Stats   *models.BudgetStats
}

type Executor struct {
	store  Store
	logger Logger
}

func New(store Store, log Logger) *Executor {
	return &Executor{store: store, logger: log}
}

// BudgetPipeline groups every lead matching f into one row with the count
// and the mean minimum and maximum budgets.
func BudgetPipeline(f filter.Filter) []map[string]interface{} {
	if f == nil {
		f = filter.Empty()
	}
	return []map[string]interface{}{
		{"$match": map[string]interface{}(f)},
		{"$group": map[string]interface{}{
			"_id":          nil,
			"avgMinBudget": map[string]interface{}{"$avg": "$minBudget"},
			"avgMaxBudget": map[string]interface{}{"$avg": "$maxBudget"},
			"count":        map[string]interface{}{"$sum": 1},
		}},
	}
}

// Execute returns a typed error (QUERY_EXECUTION_FAILED unless the backend
// or a deadline says otherwise) when the store fails.
func (e *Executor) Execute(ctx context.Context, collection models.Collection, f filter.Filter, plan Plan) (Result, error) {
	result := Result{Plan: plan}

	if plan.Mode == models.ModeAggregate {
		rows, err := e.store.Aggregate(ctx, collection, BudgetPipeline(f))
		if err != nil {
			return result, storeError(collection, err)
		}
		if len(rows) == 0 {
			e.logger.Debug("Aggregate produced no group", map[string]interface{}{
				"collection": collection,
				"filter":     f.String(),
			})
			return result, nil
		}
		result.Stats = budgetStats(rows[0])
		return result, nil
	}

	records, err := e.store.Find(ctx, collection, f, plan.Limit)
	if err != nil {
		return result, storeError(collection, err)
	}
	if plan.Limit > 0 && int64(len(records)) > plan.Limit {
		e.logger.Warn("Store returned more records than requested", map[string]interface{}{
			"collection": collection,
			"limit":      plan.Limit,
			"returned":   len(records),
		})
		records = records[:plan.Limit]
	}
	result.Records = records

	e.logger.Debug("Query executed", map[string]interface{}{
		"collection": collection,
		"mode":       plan.Mode,
		"limit":      plan.Limit,
		"count":      len(records),
	})
	return result, nil
}

// storeError keeps codes a backend already assigned.
func storeError(collection models.Collection, err error) error {
	if _, ok := apperrors.AsStandardError(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewQueryTimeoutError(string(collection))
	}
	return apperrors.NewQueryExecutionFailedError(string(collection), err)
}

func budgetStats(row models.Record) *models.BudgetStats {
	stats := &models.BudgetStats{}
	if n, ok := filter.ToFloat(row["count"]); ok {
		stats.Count = int64(n)
	}
	if v, ok := filter.ToFloat(row["avgMinBudget"]); ok {
		stats.AvgMinBudget = v
	}
	if v, ok := filter.ToFloat(row["avgMaxBudget"]); ok {
		stats.AvgMaxBudget = v
	}
	return stats
}
