package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/legal-radar/internal/models"
	"github.com/DeafMist/legal-radar/internal/query"
	"github.com/DeafMist/legal-radar/internal/store"
	"github.com/DeafMist/legal-radar/internal/store/memory"
)

func TestFindSortsAndPages(t *testing.T) {
	s := memory.New()
	s.Insert("reports", models.Record{"title": "b", "date": "05.02.2024"})
	s.Insert("reports", models.Record{"title": "a", "Date": "01/01/2024"})
	s.Insert("reports", models.Record{"title": "c", "date": "2024-03-01"})
	s.Insert("reports", models.Record{"title": "undated"})

	byDate := []store.SortKey{{Field: query.ReportDate, Kind: store.SortDate, Desc: true}}

	recs, err := s.Find(context.Background(), "reports", store.Query{Sort: byDate, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []any{"c", "b"}, titles(recs))

	recs, err = s.Find(context.Background(), "reports", store.Query{Sort: byDate, Offset: 2})
	require.NoError(t, err)
	require.Equal(t, []any{"a", "undated"}, titles(recs))

	recs, err = s.Find(context.Background(), "reports", store.Query{Offset: 10})
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestFindReturnsCopies(t *testing.T) {
	s := memory.New()
	id := s.Insert("news", models.Record{"title": "original"})

	recs, err := s.Find(context.Background(), "news", store.Query{})
	require.NoError(t, err)
	recs[0]["title"] = "mutated"

	rec, err := s.FindOne(context.Background(), "news", query.IDIs{ID: id})
	require.NoError(t, err)
	require.Equal(t, "original", rec["title"])
}

func TestInsertKeepsGivenID(t *testing.T) {
	s := memory.New()
	id := s.Insert("alerts", models.Record{models.KeyID: "fixed"})
	require.Equal(t, models.StorageID("fixed"), id)

	other := s.Insert("alerts", models.Record{})
	require.NotEmpty(t, other)
	require.NotEqual(t, id, other)
}

func TestUpdateOneStoresNull(t *testing.T) {
	s := memory.New()
	id := s.Insert("alerts", models.Record{"slack_sent": false})

	err := s.UpdateOne(context.Background(), "alerts", query.IDIs{ID: id}, models.Record{"slack_sent": nil, models.KeyID: "ignored"})
	require.NoError(t, err)

	n, err := s.Count(context.Background(), "alerts", query.Equals{Field: "slack_sent", Value: nil})
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	rec, err := s.FindOne(context.Background(), "alerts", query.IDIs{ID: id})
	require.NoError(t, err)
	require.Contains(t, rec, "slack_sent")
	require.Equal(t, id, rec.ID())

	err = s.UpdateOne(context.Background(), "alerts", query.IDIs{ID: "missing"}, models.Record{"x": 1})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestFailWith(t *testing.T) {
	s := memory.New()
	boom := errors.New("boom")
	s.FailWith("news", boom)

	_, err := s.Find(context.Background(), "news", store.Query{})
	require.ErrorIs(t, err, boom)
	_, err = s.Count(context.Background(), "news", nil)
	require.ErrorIs(t, err, boom)

	s.FailWith("news", nil)
	_, err = s.FindOne(context.Background(), "news", nil)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func titles(recs []models.Record) []any {
	out := make([]any, len(recs))
	for i, rec := range recs {
		out[i] = rec["title"]
	}
	return out
}
