// Package sources reads the news, reports and gazette-alert collections.
package sources

import (
	"context"

	"github.com/DeafMist/legal-radar/internal/models"
	"github.com/DeafMist/legal-radar/internal/query"
	"github.com/DeafMist/legal-radar/internal/store"
)

// News reads news articles.
type News struct {
	c collection[models.NewsItem]
}

// NewNews creates a news adapter over s.
func NewNews(s store.Store) *News {
	return &News{c: collection[models.NewsItem]{
		store:  s,
		name:   models.CollectionNews,
		date:   query.NewsDate,
		decode: models.NewsFromRecord,
	}}
}

// List returns one page of the listing together with the total match count.
func (n *News) List(ctx context.Context, req query.SearchRequest) ([]models.NewsItem, int64, error) {
	return n.c.list(ctx, query.News(req, query.ScopeListing), req.Sort, req.Offset, req.Limit)
}

// Get resolves a storage or legacy identifier.
func (n *News) Get(ctx context.Context, id string) (models.NewsItem, error) {
	return n.c.get(ctx, id)
}

// Search returns up to req.Limit unified-scope matches without counting.
func (n *News) Search(ctx context.Context, req query.SearchRequest) ([]models.NewsItem, error) {
	return n.c.find(ctx, store.Query{
		Filter: query.News(req, query.ScopeUnified),
		Sort:   n.c.sortBy(req.Sort),
		Limit:  req.Limit,
	})
}

// Latest returns the newest limit articles.
func (n *News) Latest(ctx context.Context, limit int) ([]models.NewsItem, error) {
	return n.c.find(ctx, store.Query{Sort: n.c.sortBy(query.SortNewest), Limit: limit})
}
