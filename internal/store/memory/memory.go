// Package memory is an in-process document store used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/DeafMist/legal-radar/internal/models"
	"github.com/DeafMist/legal-radar/internal/query"
	"github.com/DeafMist/legal-radar/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps collections as insertion-ordered slices.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]models.Record
	failures    map[string]error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		collections: make(map[string][]models.Record),
		failures:    make(map[string]error),
	}
}

// Insert adds a copy of rec and returns its storage identifier. Records
// without an identifier get a fresh one.
func (s *Store) Insert(collection string, rec models.Record) models.StorageID {
	doc := rec.Clone()
	id := doc.ID()
	if id == "" {
		id = models.StorageID(uuid.NewString())
	}
	doc[models.KeyID] = id

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = append(s.collections[collection], doc)
	return id
}

// FailWith makes every operation on collection return err. A nil err clears it.
func (s *Store) FailWith(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, collection)
		return
	}
	s.failures[collection] = err
}

// Find returns copies of the matching records.
func (s *Store) Find(_ context.Context, collection string, q store.Query) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failures[collection]; err != nil {
		return nil, err
	}

	matched := s.match(collection, q.Filter)
	if len(q.Sort) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			return less(matched[i], matched[j], q.Sort)
		})
	}

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			return []models.Record{}, nil
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]models.Record, len(matched))
	for i, rec := range matched {
		out[i] = rec.Clone()
	}
	return out, nil
}

// Count returns the number of matching records.
func (s *Store) Count(_ context.Context, collection string, filter query.Predicate) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failures[collection]; err != nil {
		return 0, err
	}
	return int64(len(s.match(collection, filter))), nil
}

// FindOne returns the first matching record in insertion order.
func (s *Store) FindOne(_ context.Context, collection string, filter query.Predicate) (models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failures[collection]; err != nil {
		return nil, err
	}
	matched := s.match(collection, filter)
	if len(matched) == 0 {
		return nil, store.ErrNotFound
	}
	return matched[0].Clone(), nil
}

// UpdateOne sets fields on the first matching record.
func (s *Store) UpdateOne(_ context.Context, collection string, filter query.Predicate, set models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[collection]; err != nil {
		return err
	}
	if filter == nil {
		filter = query.All{}
	}
	for _, rec := range s.collections[collection] {
		if !filter.Match(rec) {
			continue
		}
		for k, v := range set {
			if k == models.KeyID {
				continue
			}
			rec[k] = v
		}
		return nil
	}
	return store.ErrNotFound
}

func (s *Store) match(collection string, filter query.Predicate) []models.Record {
	if filter == nil {
		filter = query.All{}
	}
	var out []models.Record
	for _, rec := range s.collections[collection] {
		if filter.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func less(a, b models.Record, keys []store.SortKey) bool {
	for _, key := range keys {
		va, vb := store.SortValue(a, key), store.SortValue(b, key)
		if va == vb {
			continue
		}
		if key.Desc {
			return va > vb
		}
		return va < vb
	}
	return false
}
