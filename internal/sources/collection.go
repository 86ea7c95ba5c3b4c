package sources

import (
	"context"
	"fmt"

	"github.com/DeafMist/legal-radar/internal/models"
	"github.com/DeafMist/legal-radar/internal/query"
	"github.com/DeafMist/legal-radar/internal/store"
)

// collection reads one directly queried collection and decodes its records.
type collection[T any] struct {
	store  store.Store
	name   string
	date   query.Field
	decode func(models.Record) T
}

func (c collection[T]) sortBy(order query.SortOrder) []store.SortKey {
	if order == query.SortRelevance {
		return nil
	}
	return []store.SortKey{{Field: c.date, Kind: store.SortDate, Desc: order.Descending()}}
}

func (c collection[T]) find(ctx context.Context, q store.Query) ([]T, error) {
	recs, err := c.store.Find(ctx, c.name, q)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.name, err)
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		out = append(out, c.decode(rec))
	}
	return out, nil
}

// list fetches one page and counts the whole match independently.
func (c collection[T]) list(ctx context.Context, filter query.Predicate, order query.SortOrder, offset, limit int) ([]T, int64, error) {
	docs, err := c.find(ctx, store.Query{
		Filter: filter,
		Sort:   c.sortBy(order.Listing()),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, 0, err
	}
	total, err := c.store.Count(ctx, c.name, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", c.name, err)
	}
	return docs, total, nil
}

func (c collection[T]) get(ctx context.Context, id string) (T, error) {
	rec, err := Resolve(ctx, id,
		ByStorageID(c.store, c.name),
		ByLegacyID(c.store, c.name),
	)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.decode(rec), nil
}
