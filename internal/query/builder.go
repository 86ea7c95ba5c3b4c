package query

import (
	"strings"

	"github.com/DeafMist/legal-radar/internal/dates"
	"github.com/DeafMist/legal-radar/internal/models"
)

// SortOrder is the requested ordering of results.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
	// SortRelevance keeps the storage order; no score is computed.
	SortRelevance SortOrder = ""
)

// ParseSort maps a sortBy parameter onto a SortOrder.
func ParseSort(raw string) SortOrder {
	switch SortOrder(strings.ToLower(strings.TrimSpace(raw))) {
	case SortNewest:
		return SortNewest
	case SortOldest:
		return SortOldest
	}
	return SortRelevance
}

// Listing returns the order used by per-collection listings, which are
// always date ordered and default to newest first.
func (s SortOrder) Listing() SortOrder {
	if s == SortOldest {
		return SortOldest
	}
	return SortNewest
}

// Descending reports whether the order puts late dates first.
func (s SortOrder) Descending() bool {
	return s != SortOldest
}

// SearchRequest carries every filter a caller may send.
type SearchRequest struct {
	Query     string
	Sites     []models.SourceType
	StartDate string
	EndDate   string
	Sort      SortOrder
	Limit     int
	Offset    int
	Author    string
	Place     string
	Tags      []string
}

// Range returns the date range of the request; unparseable bounds are dropped.
func (r SearchRequest) Range() dates.Range {
	return dates.NewRange(r.StartDate, r.EndDate)
}

// Wants reports whether source s is selected. No selection means every source.
func (r SearchRequest) Wants(s models.SourceType) bool {
	if len(r.Sites) == 0 {
		return true
	}
	for _, site := range r.Sites {
		if site == s {
			return true
		}
	}
	return false
}

// Scope picks the text field set: listings search fewer fields than the
// unified search.
type Scope int

const (
	ScopeListing Scope = iota
	ScopeUnified
)

// Text fields per source and scope.
var (
	NewsListingFields   = []string{"title", "summary", "relevance_reason"}
	NewsUnifiedFields   = []string{"title", "summary", "relevance_reason", "author", "source"}
	ReportListingFields = []string{"title", "summary", "content"}
	ReportUnifiedFields = []string{"title", "summary", "content", "Place", "place", "site"}
	AlertFields         = []string{
		"summary",
		"reason",
		models.KeyDetails + ".ministry",
		models.KeyDetails + ".subject",
		models.KeyDetails + ".pdf_text",
	}
	PlaceFields = []string{"place", "Place"}
)

// Native date fields per source.
var (
	NewsDate    = Field{"published_at"}
	ReportDate  = Field{"date", "Date"}
	GazetteDate = Field{models.KeyDetails + ".publish_date"}
	AlertedAt   = Field{"alerted_at"}
)

// News builds the news predicate.
func News(req SearchRequest, scope Scope) Predicate {
	fields := NewsListingFields
	if scope == ScopeUnified {
		fields = NewsUnifiedFields
	}
	and := And{text(fields, req.Query)}
	if scope == ScopeListing {
		and = append(and, text([]string{"author"}, req.Author))
	}
	and = append(and, DateRange{Field: NewsDate, Range: req.Range()})
	return Simplify(and)
}

// Reports builds the report predicate.
func Reports(req SearchRequest, scope Scope) Predicate {
	fields := ReportListingFields
	if scope == ScopeUnified {
		fields = ReportUnifiedFields
	}
	and := And{text(fields, req.Query)}
	if scope == ScopeListing {
		and = append(and, text(PlaceFields, req.Place))
	}
	and = append(and, DateRange{Field: ReportDate, Range: req.Range()})
	return Simplify(and)
}

// GazettePlan splits the alert filter into the part the store can evaluate on
// alerts alone and the part that needs the joined gazette.
type GazettePlan struct {
	Base   Predicate
	Joined Predicate
}

// Gazette builds the alert filter for alerts in the given state.
func Gazette(req SearchRequest, state models.AlertState) GazettePlan {
	base := And{StateIs(state)}
	for _, tag := range req.Tags {
		tag = strings.TrimSpace(tag)
		if models.IsTag(tag) {
			base = append(base, Equals{Field: tag, Value: true})
		}
	}
	joined := And{
		text(AlertFields, req.Query),
		DateRange{Field: GazetteDate, Range: req.Range()},
	}
	return GazettePlan{Base: Simplify(base), Joined: Simplify(joined)}
}

// StateIs selects alerts in the given triage state.
func StateIs(state models.AlertState) Predicate {
	switch state {
	case models.StateApproved:
		return Equals{Field: "slack_sent", Value: true}
	case models.StateDeclined:
		return Equals{Field: "slack_sent", Value: nil}
	}
	return Equals{Field: "slack_sent", Value: false}
}

func text(fields []string, raw string) Predicate {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return All{}
	}
	return Contains{Fields: fields, Value: raw}
}
