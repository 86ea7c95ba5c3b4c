package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/DeafMist/legal-radar/internal/models"
	"github.com/DeafMist/legal-radar/internal/query"
	"github.com/DeafMist/legal-radar/internal/store"
)

// Step is one named way of resolving an identifier.
type Step[T any] struct {
	Name string
	Find func(ctx context.Context, id string) (T, error)
}

// Resolve tries steps in order and returns the first hit. A step that reports
// store.ErrNotFound hands over to the next one; any other error stops the
// chain. ErrNotFound is returned only when every step missed.
func Resolve[T any](ctx context.Context, id string, steps ...Step[T]) (T, error) {
	var zero T
	for _, step := range steps {
		out, err := step.Find(ctx, id)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return zero, fmt.Errorf("resolve %q by %s: %w", id, step.Name, err)
		}
	}
	return zero, store.ErrNotFound
}

// ByStorageID resolves against the store-assigned identifier.
func ByStorageID(s store.Store, collection string) Step[models.Record] {
	return Step[models.Record]{
		Name: "storage id",
		Find: func(ctx context.Context, id string) (models.Record, error) {
			return s.FindOne(ctx, collection, query.IDIs{ID: models.StorageID(id)})
		},
	}
}

// ByLegacyID resolves against the string id field older ingesters wrote.
func ByLegacyID(s store.Store, collection string) Step[models.Record] {
	return Step[models.Record]{
		Name: "legacy id",
		Find: func(ctx context.Context, id string) (models.Record, error) {
			return s.FindOne(ctx, collection, query.Equals{Field: models.KeyLegacyID, Value: id})
		},
	}
}
