package sources

import (
	"context"

	"github.com/DeafMist/legal-radar/internal/models"
	"github.com/DeafMist/legal-radar/internal/query"
	"github.com/DeafMist/legal-radar/internal/store"
)

// Reports reads human-rights-report entries.
type Reports struct {
	c collection[models.ReportEntry]
}

// NewReports creates a reports adapter over s.
func NewReports(s store.Store) *Reports {
	return &Reports{c: collection[models.ReportEntry]{
		store:  s,
		name:   models.CollectionReports,
		date:   query.ReportDate,
		decode: models.ReportFromRecord,
	}}
}

func (r *Reports) List(ctx context.Context, req query.SearchRequest) ([]models.ReportEntry, int64, error) {
	return r.c.list(ctx, query.Reports(req, query.ScopeListing), req.Sort, req.Offset, req.Limit)
}

func (r *Reports) Get(ctx context.Context, id string) (models.ReportEntry, error) {
	return r.c.get(ctx, id)
}

func (r *Reports) Search(ctx context.Context, req query.SearchRequest) ([]models.ReportEntry, error) {
	return r.c.find(ctx, store.Query{
		Filter: query.Reports(req, query.ScopeUnified),
		Sort:   r.c.sortBy(req.Sort),
		Limit:  req.Limit,
	})
}

func (r *Reports) Latest(ctx context.Context, limit int) ([]models.ReportEntry, error) {
	return r.c.find(ctx, store.Query{Sort: r.c.sortBy(query.SortNewest), Limit: limit})
}
