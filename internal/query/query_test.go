package query_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/legal-radar/internal/models"
	"github.com/DeafMist/legal-radar/internal/query"
)

func TestContainsIsCaseInsensitiveAcrossFields(t *testing.T) {
	p := query.Contains{Fields: []string{"title", "summary"}, Value: "BAIL"}

	require.True(t, p.Match(models.Record{"title": "Court grants bail"}))
	require.True(t, p.Match(models.Record{"title": "Order", "summary": "bail denied"}))
	require.False(t, p.Match(models.Record{"title": "Order", "author": "bail"}))
	require.False(t, p.Match(models.Record{"title": 42}))
}

func TestEqualsNullMatchesAbsent(t *testing.T) {
	null := query.Equals{Field: "slack_sent", Value: nil}
	require.True(t, null.Match(models.Record{}))
	require.True(t, null.Match(models.Record{"slack_sent": nil}))
	require.False(t, null.Match(models.Record{"slack_sent": false}))

	approved := query.Equals{Field: "slack_sent", Value: true}
	require.True(t, approved.Match(models.Record{"slack_sent": true}))
	require.False(t, approved.Match(models.Record{"slack_sent": "true"}))
	require.False(t, approved.Match(models.Record{}))
}

func TestIDsAndIn(t *testing.T) {
	rec := models.Record{models.KeyID: models.StorageID("abc"), "gazette_id": "G1"}

	require.True(t, query.IDIs{ID: "abc"}.Match(rec))
	require.False(t, query.IDIs{ID: ""}.Match(models.Record{}))
	require.True(t, query.In{Field: "gazette_id", Values: []string{"G0", "G1"}}.Match(rec))
	require.False(t, query.In{Field: "gazette_id", Values: []string{"G2"}}.Match(rec))
	require.False(t, query.Or{}.Match(rec))
}

func TestDateRangeIsPermissive(t *testing.T) {
	req := query.SearchRequest{StartDate: "2024-01-01", EndDate: "2024-01-31"}
	p := query.DateRange{Field: query.ReportDate, Range: req.Range()}

	require.True(t, p.Match(models.Record{"date": "15.01.2024"}))
	require.True(t, p.Match(models.Record{"Date": "15/01/2024"}))
	require.False(t, p.Match(models.Record{"date": "15.02.2024"}))
	require.True(t, p.Match(models.Record{}))
	require.True(t, p.Match(models.Record{"date": "sometime"}))
	require.True(t, p.Match(models.Record{"date": 1700000000000}))
}

func TestNewsListingPredicate(t *testing.T) {
	p := query.News(query.SearchRequest{Query: "tax", Author: "rao", StartDate: "2024-01-01"}, query.ScopeListing)

	require.True(t, p.Match(models.Record{"title": "Tax ruling", "author": "A. Rao", "published_at": "2024-02-01T00:00:00Z"}))
	require.False(t, p.Match(models.Record{"title": "Tax ruling", "author": "B. Iyer"}))
	require.False(t, p.Match(models.Record{"title": "Tax ruling", "author": "A. Rao", "published_at": "2023-12-31T00:00:00Z"}))

	// The unified scope searches author and source but ignores the author filter.
	u := query.News(query.SearchRequest{Query: "livelaw", Author: "nobody"}, query.ScopeUnified)
	require.True(t, u.Match(models.Record{"title": "x", "source": "LiveLaw"}))
}

func TestReportsListingPredicate(t *testing.T) {
	p := query.Reports(query.SearchRequest{Place: "delhi"}, query.ScopeListing)
	require.True(t, p.Match(models.Record{"Place": "New Delhi"}))
	require.False(t, p.Match(models.Record{"place": "Mumbai"}))

	u := query.Reports(query.SearchRequest{Query: "delhi", Place: "mumbai"}, query.ScopeUnified)
	require.True(t, u.Match(models.Record{"Place": "New Delhi"}))
}

func TestGazettePlanSplitsFilters(t *testing.T) {
	plan := query.Gazette(query.SearchRequest{
		Query:     "customs",
		StartDate: "2024-03-01",
		Tags:      []string{models.TagEconomicImpact, "unknown_tag"},
	}, models.StateApproved)

	require.True(t, plan.Base.Match(models.Record{"slack_sent": true, models.TagEconomicImpact: true}))
	require.False(t, plan.Base.Match(models.Record{"slack_sent": true}))
	require.False(t, plan.Base.Match(models.Record{"slack_sent": false, models.TagEconomicImpact: true}))

	joined := models.Record{
		"summary": "Notification",
		models.KeyDetails: models.Record{
			"subject":      "Customs duty revision",
			"publish_date": "12/03/2024",
		},
	}
	require.True(t, plan.Joined.Match(joined))
	require.False(t, plan.Joined.Match(models.Record{"summary": "Notification", models.KeyDetails: nil}))

	pending := query.Gazette(query.SearchRequest{}, models.StatePending)
	require.Equal(t, query.Equals{Field: "slack_sent", Value: false}, pending.Base)
	require.Equal(t, query.All{}, pending.Joined)
}

func TestSimplify(t *testing.T) {
	require.Equal(t, query.All{}, query.Simplify(nil))
	require.Equal(t, query.All{}, query.Simplify(query.And{query.All{}, query.DateRange{}}))

	eq := query.Equals{Field: "a", Value: "b"}
	require.Equal(t, eq, query.Simplify(query.And{query.All{}, eq}))
}

func TestSortOrders(t *testing.T) {
	require.Equal(t, query.SortNewest, query.ParseSort(" Newest "))
	require.Equal(t, query.SortOldest, query.ParseSort("oldest"))
	require.Equal(t, query.SortRelevance, query.ParseSort("score"))

	require.Equal(t, query.SortNewest, query.SortRelevance.Listing())
	require.Equal(t, query.SortOldest, query.SortOldest.Listing())
	require.True(t, query.SortRelevance.Descending())
}

func TestWants(t *testing.T) {
	require.True(t, query.SearchRequest{}.Wants(models.SourceGazette))

	req := query.SearchRequest{Sites: []models.SourceType{models.SourceNews}}
	require.True(t, req.Wants(models.SourceNews))
	require.False(t, req.Wants(models.SourceReports))
}
