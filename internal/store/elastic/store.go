// Package elastic serves the document-store contract from Elasticsearch,
// one index per collection.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "homelead-workers/internal/common/errors"
	"homelead-workers/internal/common/metrics"
	"homelead-workers/internal/models"
	"homelead-workers/internal/query/filter"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	backend = "elasticsearch"

	// maxWindow is the default index.max_result_window; unbounded finds
	// are capped here.
	maxWindow = 10000
)

type Store struct {
	client      *elasticsearch.Client
	indexPrefix string
}

// New returns a store that reads <indexPrefix><collection>.
func New(client *elasticsearch.Client, indexPrefix string) *Store {
	return &Store{client: client, indexPrefix: indexPrefix}
}

func (s *Store) index(c models.Collection) string {
	return s.indexPrefix + string(c)
}

func (s *Store) Find(ctx context.Context, collection models.Collection, f filter.Filter, limit int64) ([]models.Record, error) {
	defer metrics.ObserveStore(backend, "find", time.Now())

	query, err := BuildQuery(f)
	if err != nil {
		return nil, apperrors.NewInvalidFilterFormatError(err.Error())
	}

	size := maxWindow
	if limit > 0 && limit < maxWindow {
		size = int(limit)
	}

	resp, err := s.search(ctx, collection, map[string]interface{}{
		"query": query,
		"size":  size,
	})
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		src, _ := filter.NormalizeNumbers(hit.Source).(map[string]interface{})
		if src == nil {
			continue
		}
		records = append(records, models.Record(src))
	}
	return records, nil
}

// Aggregate accepts the shape produced for budget statistics: an optional
// $match stage and one $group with _id null whose fields use $avg or $sum.
// The row count comes from hits.total, so a $sum of 1 is a document count.
func (s *Store) Aggregate(ctx context.Context, collection models.Collection, pipeline []map[string]interface{}) ([]models.Record, error) {
	defer metrics.ObserveStore(backend, "aggregate", time.Now())

	match := filter.Empty()
	var group map[string]interface{}
	for _, stage := range pipeline {
		for op, spec := range stage {
			m, ok := filter.AsOperator(spec)
			if !ok {
				return nil, apperrors.NewUnsupportedAggregationError(fmt.Sprintf("%s expects an object", op))
			}
			switch op {
			case "$match":
				match = filter.Filter(m)
			case "$group":
				group = m
			default:
				return nil, apperrors.NewUnsupportedAggregationError("stage " + op)
			}
		}
	}
	if group == nil {
		return nil, apperrors.NewUnsupportedAggregationError("pipeline has no $group stage")
	}
	if group["_id"] != nil {
		return nil, apperrors.NewUnsupportedAggregationError("$group supports only _id: null")
	}

	query, err := BuildQuery(match)
	if err != nil {
		return nil, apperrors.NewInvalidFilterFormatError(err.Error())
	}

	aggs, counts, err := buildAggs(group)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"query":            query,
		"size":             0,
		"track_total_hits": true,
	}
	if len(aggs) > 0 {
		body["aggs"] = aggs
	}

	resp, err := s.search(ctx, collection, body)
	if err != nil {
		return nil, err
	}

	total := resp.Hits.Total.Value
	if total == 0 {
		return nil, nil
	}

	row := models.Record{"_id": nil}
	for _, name := range counts {
		row[name] = total
	}
	for name := range aggs {
		if v, ok := resp.Aggregations[name]; ok && v.Value != nil {
			row[name] = *v.Value
		} else {
			row[name] = nil
		}
	}
	return []models.Record{row}, nil
}

func buildAggs(group map[string]interface{}) (map[string]interface{}, []string, error) {
	aggs := map[string]interface{}{}
	var counts []string

	for name, acc := range group {
		if name == "_id" {
			continue
		}
		accOp, ok := filter.AsOperator(acc)
		if !ok || len(accOp) != 1 {
			return nil, nil, apperrors.NewUnsupportedAggregationError("field " + name + " needs one accumulator")
		}
		for op, arg := range accOp {
			if _, isNum := filter.ToFloat(arg); isNum && op == "$sum" {
				counts = append(counts, name)
				continue
			}
			ref, _ := arg.(string)
			if !strings.HasPrefix(ref, "$") {
				return nil, nil, apperrors.NewUnsupportedAggregationError(fmt.Sprintf("%s %v", op, arg))
			}
			field := strings.TrimPrefix(ref, "$")
			switch op {
			case "$avg":
				aggs[name] = map[string]interface{}{"avg": map[string]interface{}{"field": field}}
			case "$sum":
				aggs[name] = map[string]interface{}{"sum": map[string]interface{}{"field": field}}
			default:
				return nil, nil, apperrors.NewUnsupportedAggregationError("accumulator " + op)
			}
		}
	}
	return aggs, counts, nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]struct {
		Value *float64 `json:"value"`
	} `json:"aggregations"`
}

func (s *Store) search(ctx context.Context, collection models.Collection, body map[string]interface{}) (*searchResponse, error) {
	index := s.index(collection)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apperrors.NewInvalidFilterFormatError(err.Error())
	}

	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(payload),
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == 404 {
			return nil, apperrors.NewIndexNotFoundError(index)
		}
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return nil, apperrors.NewSearchQueryFailedError(index, fmt.Errorf("%s: %s", res.Status(), msg))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(index, fmt.Errorf("decode response: %w", err))
	}
	return &r, nil
}
