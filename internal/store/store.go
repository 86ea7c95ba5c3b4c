// Package store defines the document store contract the adapters read from.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/DeafMist/legal-radar/internal/dates"
	"github.com/DeafMist/legal-radar/internal/models"
	"github.com/DeafMist/legal-radar/internal/query"
)

// ErrNotFound signals that no document matched.
var ErrNotFound = errors.New("store: document not found")

// SortKind tells backends how to compare a sort field.
type SortKind int

const (
	// SortDate orders by the derived timestamp of a native date string.
	SortDate SortKind = iota
	// SortTime orders by a real timestamp field.
	SortTime
)

// SortKey is one ordering criterion.
type SortKey struct {
	Field query.Field
	Kind  SortKind
	Desc  bool
}

// Query describes a filtered, ordered, paged read. Limit <= 0 leaves the
// page size to the backend.
type Query struct {
	Filter query.Predicate
	Sort   []SortKey
	Offset int
	Limit  int
}

// Store is a document store holding named collections.
type Store interface {
	Find(ctx context.Context, collection string, q Query) ([]models.Record, error)
	Count(ctx context.Context, collection string, filter query.Predicate) (int64, error)
	// FindOne returns ErrNotFound when nothing matches.
	FindOne(ctx context.Context, collection string, filter query.Predicate) (models.Record, error)
	// UpdateOne sets fields on the first match and returns ErrNotFound when
	// nothing matches. A nil value stores null.
	UpdateOne(ctx context.Context, collection string, filter query.Predicate, set models.Record) error
}

// SortValue computes the comparable value of rec under key, in epoch
// milliseconds. Missing and malformed values compare as the epoch.
func SortValue(rec models.Record, key SortKey) int64 {
	v, ok := rec.First(key.Field...)
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case time.Time:
		return t.UnixMilli()
	case string:
		return dates.Millis(t)
	case int64:
		return t
	case float64:
		return int64(t)
	case int:
		return int64(t)
	}
	return 0
}
