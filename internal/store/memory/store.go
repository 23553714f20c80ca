// Package memory is an in-process document store with the same filter and
// aggregate primitives as the Mongo backend. The worker-manager uses it for
// store.driver=memory; tests and the console use it directly.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"homelead-workers/internal/common/metrics"
	"homelead-workers/internal/models"
	"homelead-workers/internal/query/filter"
)

const backend = "memory"

type Store struct {
	mu   sync.RWMutex
	data map[models.Collection][]models.Record
}

// New returns a store holding a copy of data.
func New(data map[models.Collection][]models.Record) *Store {
	s := &Store{data: make(map[models.Collection][]models.Record, len(data))}
	for c, records := range data {
		s.data[c] = append([]models.Record(nil), records...)
	}
	return s
}

// NewSeeded returns a store holding the demo records.
func NewSeeded() *Store {
	return New(SeedData())
}

// LoadFile reads a JSON object keyed by collection name, e.g.
// {"brokers": [{...}], "leads": [...]}.
func LoadFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var doc map[string][]map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	data := make(map[models.Collection][]models.Record, len(doc))
	for name, docs := range doc {
		c, ok := models.ParseCollection(name)
		if !ok {
			return nil, fmt.Errorf("seed file: unknown collection %q", name)
		}
		for _, d := range docs {
			data[c] = append(data[c], models.Record(filter.NormalizeNumbers(d).(map[string]interface{})))
		}
	}
	return New(data), nil
}

// Insert appends records to a collection.
func (s *Store) Insert(collection models.Collection, records ...models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[collection] = append(s.data[collection], records...)
}

func (s *Store) Find(ctx context.Context, collection models.Collection, f filter.Filter, limit int64) ([]models.Record, error) {
	defer metrics.ObserveStore(backend, "find", time.Now())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched, err := s.match(collection, f)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(matched)) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Aggregate supports $match followed by an ungrouped ($group _id null) stage
// with $avg and $sum accumulators.
func (s *Store) Aggregate(ctx context.Context, collection models.Collection, pipeline []map[string]interface{}) ([]models.Record, error) {
	defer metrics.ObserveStore(backend, "aggregate", time.Now())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	docs, err := s.match(collection, filter.Empty())
	if err != nil {
		return nil, err
	}

	for _, stage := range pipeline {
		for op, spec := range stage {
			switch op {
			case "$match":
				m, ok := filter.AsOperator(spec)
				if !ok {
					return nil, fmt.Errorf("$match expects an object, got %T", spec)
				}
				docs, err = filterRecords(docs, filter.Filter(m))
			case "$group":
				docs, err = group(docs, spec)
			default:
				return nil, fmt.Errorf("unsupported pipeline stage %s", op)
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return docs, nil
}

func (s *Store) match(collection models.Collection, f filter.Filter) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterRecords(s.data[collection], f)
}

func filterRecords(docs []models.Record, f filter.Filter) ([]models.Record, error) {
	out := make([]models.Record, 0, len(docs))
	for _, doc := range docs {
		ok, err := matches(doc, f)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func matches(doc models.Record, f filter.Filter) (bool, error) {
	for key, want := range f {
		var ok bool
		var err error
		switch key {
		case filter.OpOr:
			ok, err = anyBranch(doc, want)
		case filter.OpAnd:
			ok, err = allBranches(doc, want)
		default:
			ok, err = matchField(doc, key, want)
		}
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func anyBranch(doc models.Record, v interface{}) (bool, error) {
	branches, ok := filter.Branches(v)
	if !ok {
		return false, fmt.Errorf("$or expects a list of objects")
	}
	for _, b := range branches {
		hit, err := matches(doc, filter.Filter(b))
		if err != nil {
			return false, err
		}
		if hit {
			return true, nil
		}
	}
	return false, nil
}

func allBranches(doc models.Record, v interface{}) (bool, error) {
	branches, ok := filter.Branches(v)
	if !ok {
		return false, fmt.Errorf("$and expects a list of objects")
	}
	for _, b := range branches {
		hit, err := matches(doc, filter.Filter(b))
		if err != nil || !hit {
			return false, err
		}
	}
	return true, nil
}

func matchField(doc models.Record, key string, want interface{}) (bool, error) {
	got, present := doc[key]

	ops, isOp := filter.AsOperator(want)
	if !isOp || !hasOperatorKeys(ops) {
		return present && equal(got, want), nil
	}

	for op, arg := range ops {
		switch op {
		case filter.OpRegex:
			ok, err := regexMatch(got, arg, ops[filter.OpOptions])
			if err != nil || !ok {
				return false, err
			}
		case filter.OpOptions:
		case filter.OpGTE, filter.OpLTE, "$gt", "$lt":
			if !compare(got, op, arg) {
				return false, nil
			}
		case "$eq":
			if !present || !equal(got, arg) {
				return false, nil
			}
		case "$ne":
			if present && equal(got, arg) {
				return false, nil
			}
		case filter.OpExists:
			wantExists, _ := arg.(bool)
			if present != wantExists {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported operator %s on %s", op, key)
		}
	}
	return true, nil
}

func hasOperatorKeys(m map[string]interface{}) bool {
	for k := range m {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}

func regexMatch(got, pattern, options interface{}) (bool, error) {
	s, ok := got.(string)
	if !ok {
		return false, nil
	}
	p, ok := pattern.(string)
	if !ok {
		return false, fmt.Errorf("$regex expects a string, got %T", pattern)
	}
	if opts, _ := options.(string); strings.Contains(opts, "i") {
		p = "(?i)" + p
	}
	re, err := regexp.Compile(p)
	if err != nil {
		return false, fmt.Errorf("invalid $regex: %w", err)
	}
	return re.MatchString(s), nil
}

func compare(got interface{}, op string, arg interface{}) bool {
	a, ok := filter.ToFloat(got)
	if !ok {
		return false
	}
	b, ok := filter.ToFloat(arg)
	if !ok {
		return false
	}
	switch op {
	case filter.OpGTE:
		return a >= b
	case filter.OpLTE:
		return a <= b
	case "$gt":
		return a > b
	case "$lt":
		return a < b
	}
	return false
}

// equal compares numbers by value regardless of their Go type.
func equal(a, b interface{}) bool {
	if x, ok := filter.ToFloat(a); ok {
		y, ok := filter.ToFloat(b)
		return ok && x == y
	}
	return reflect.DeepEqual(a, b)
}

func group(docs []models.Record, spec interface{}) ([]models.Record, error) {
	fields, ok := filter.AsOperator(spec)
	if !ok {
		return nil, fmt.Errorf("$group expects an object, got %T", spec)
	}
	if id := fields["_id"]; id != nil {
		return nil, fmt.Errorf("$group supports only _id: null")
	}
	if len(docs) == 0 {
		return nil, nil
	}

	row := models.Record{"_id": nil}
	for name, acc := range fields {
		if name == "_id" {
			continue
		}
		accOp, ok := filter.AsOperator(acc)
		if !ok || len(accOp) != 1 {
			return nil, fmt.Errorf("$group field %s needs one accumulator", name)
		}
		for op, arg := range accOp {
			v, err := accumulate(docs, op, arg)
			if err != nil {
				return nil, err
			}
			row[name] = v
		}
	}
	return []models.Record{row}, nil
}

func accumulate(docs []models.Record, op string, arg interface{}) (interface{}, error) {
	switch op {
	case "$sum":
		if n, ok := filter.ToFloat(arg); ok {
			return int64(n) * int64(len(docs)), nil
		}
		var total float64
		for _, d := range docs {
			if n, ok := filter.ToFloat(fieldRef(d, arg)); ok {
				total += n
			}
		}
		return total, nil
	case "$avg":
		var total float64
		var n int
		for _, d := range docs {
			if v, ok := filter.ToFloat(fieldRef(d, arg)); ok {
				total += v
				n++
			}
		}
		if n == 0 {
			return nil, nil
		}
		return total / float64(n), nil
	}
	return nil, fmt.Errorf("unsupported accumulator %s", op)
}

func fieldRef(doc models.Record, ref interface{}) interface{} {
	s, ok := ref.(string)
	if !ok || !strings.HasPrefix(s, "$") {
		return nil
	}
	return doc[strings.TrimPrefix(s, "$")]
}
