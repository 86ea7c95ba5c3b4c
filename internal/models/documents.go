package models

import (
	"time"

	"github.com/DeafMist/legal-radar/internal/dates"
)

// Document is the part of every source variant the unified search relies on.
type Document interface {
	Type() SourceType
	Key() StorageID
	// Timestamp is the derived timestamp in epoch milliseconds.
	Timestamp() int64
}

// NewsItem is a news article.
type NewsItem struct {
	StorageID       StorageID
	LegacyID        string
	Title           string
	Summary         string
	RelevanceReason string
	Author          string
	Source          string
	URL             string
	PublishedAt     string
	ConfidenceScore float64
	Extra           Record
}

// NewsFromRecord maps a stored record onto the canonical news shape.
func NewsFromRecord(rec Record) NewsItem {
	f := newFieldReader(rec)
	return NewsItem{
		StorageID:       rec.ID(),
		LegacyID:        toString(rec[KeyLegacyID]),
		Title:           f.str("title"),
		Summary:         f.str("summary"),
		RelevanceReason: f.str("relevance_reason"),
		Author:          f.str("author"),
		Source:          f.str("source"),
		URL:             f.str("url"),
		PublishedAt:     f.date("published_at"),
		ConfidenceScore: f.float("confidence_score"),
		Extra:           f.extra(),
	}
}

func (n NewsItem) Type() SourceType { return SourceNews }
func (n NewsItem) Key() StorageID   { return n.StorageID }
func (n NewsItem) Timestamp() int64 { return millis(n.PublishedAt) }

// Record renders the canonical stored form.
func (n NewsItem) Record() Record {
	rec := withExtra(n.Extra)
	setLegacy(rec, n.LegacyID)
	rec["title"] = n.Title
	rec["summary"] = n.Summary
	rec["relevance_reason"] = n.RelevanceReason
	rec["author"] = n.Author
	rec["source"] = n.Source
	rec["url"] = n.URL
	rec["published_at"] = n.PublishedAt
	rec["confidence_score"] = n.ConfidenceScore
	return rec
}

// ReportEntry is a human-rights-report entry.
type ReportEntry struct {
	StorageID   StorageID
	LegacyID    string
	Title       string
	Summary     string
	Content     string
	Place       string
	Site        string
	URL         string
	Date        string
	Attachments []any
	Extra       Record
}

// ReportFromRecord maps a stored record onto the canonical report shape,
// folding the capitalized legacy field names.
func ReportFromRecord(rec Record) ReportEntry {
	f := newFieldReader(rec)
	return ReportEntry{
		StorageID:   rec.ID(),
		LegacyID:    toString(rec[KeyLegacyID]),
		Title:       f.str("title", "Title"),
		Summary:     f.str("summary", "Summary"),
		Content:     f.str("content", "Content"),
		Place:       f.str("place", "Place"),
		Site:        f.str("site", "Site"),
		URL:         f.str("url", "URL", "link"),
		Date:        f.date("date", "Date"),
		Attachments: f.list("attachments", "Attachments"),
		Extra:       f.extra(),
	}
}

func (r ReportEntry) Type() SourceType { return SourceReports }
func (r ReportEntry) Key() StorageID   { return r.StorageID }
func (r ReportEntry) Timestamp() int64 { return millis(r.Date) }

// Record renders the canonical stored form.
func (r ReportEntry) Record() Record {
	rec := withExtra(r.Extra)
	setLegacy(rec, r.LegacyID)
	rec["title"] = r.Title
	rec["summary"] = r.Summary
	rec["content"] = r.Content
	rec["place"] = r.Place
	rec["site"] = r.Site
	rec["url"] = r.URL
	rec["date"] = r.Date
	if r.Attachments != nil {
		rec["attachments"] = r.Attachments
	}
	return rec
}

// GazetteDetails is the gazette record an alert points at through GazetteID.
type GazetteDetails struct {
	StorageID   StorageID
	GazetteID   string
	Ministry    string
	Subject     string
	PublishDate string
	PDFText     string
	Extra       Record
}

// GazetteFromRecord maps a stored record onto the canonical gazette shape.
func GazetteFromRecord(rec Record) GazetteDetails {
	f := newFieldReader(rec)
	return GazetteDetails{
		StorageID:   rec.ID(),
		GazetteID:   f.str("gazette_id"),
		Ministry:    f.str("ministry"),
		Subject:     f.str("subject"),
		PublishDate: f.date("publish_date"),
		PDFText:     f.str("pdf_text"),
		Extra:       f.extra(),
	}
}

// Record renders the canonical stored form.
func (g GazetteDetails) Record() Record {
	rec := withExtra(g.Extra)
	rec["gazette_id"] = g.GazetteID
	rec["ministry"] = g.Ministry
	rec["subject"] = g.Subject
	rec["publish_date"] = g.PublishDate
	rec["pdf_text"] = g.PDFText
	return rec
}

// Alert tag fields.
const (
	TagLegislativeValue   = "legislative_value"
	TagEconomicImpact     = "economic_impact"
	TagPoliticalRelevance = "political_relevance"
)

// Tags lists every alert tag field.
var Tags = []string{TagLegislativeValue, TagEconomicImpact, TagPoliticalRelevance}

// IsTag reports whether name is a known alert tag.
func IsTag(name string) bool {
	for _, t := range Tags {
		if t == name {
			return true
		}
	}
	return false
}

// AlertState is the triage state of a gazette alert.
type AlertState string

const (
	StatePending  AlertState = "pending"
	StateApproved AlertState = "approved"
	StateDeclined AlertState = "declined"
)

// KeyDetails holds the joined gazette inside an alert record.
const KeyDetails = "gazette_details"

// GazetteAlert is a triaged or pending alert about a gazette publication.
type GazetteAlert struct {
	StorageID          StorageID
	LegacyID           string
	GazetteID          string
	Summary            string
	Reason             string
	Priority           string
	SlackSent          *bool
	IsRelevant         *bool
	LegislativeValue   bool
	EconomicImpact     bool
	PoliticalRelevance bool
	AlertedAt          *time.Time
	UpdatedAt          *time.Time
	// Details is nil when no gazette carries the alert's GazetteID.
	Details *GazetteDetails
	Extra   Record
}

// AlertFromRecord maps a stored, possibly joined, record onto the canonical alert shape.
func AlertFromRecord(rec Record) GazetteAlert {
	f := newFieldReader(rec)
	a := GazetteAlert{
		StorageID:          rec.ID(),
		LegacyID:           toString(rec[KeyLegacyID]),
		GazetteID:          f.str("gazette_id"),
		Summary:            f.str("summary"),
		Reason:             f.str("reason"),
		Priority:           f.str("priority"),
		SlackSent:          f.triState("slack_sent"),
		IsRelevant:         f.triState("is_relevant"),
		LegislativeValue:   f.boolean(TagLegislativeValue),
		EconomicImpact:     f.boolean(TagEconomicImpact),
		PoliticalRelevance: f.boolean(TagPoliticalRelevance),
		AlertedAt:          f.instant("alerted_at"),
		UpdatedAt:          f.instant("updated_at"),
	}
	if v, ok := f.value(KeyDetails); ok {
		var nested Record
		switch d := v.(type) {
		case Record:
			nested = d
		case map[string]any:
			nested = d
		}
		if nested != nil {
			g := GazetteFromRecord(nested)
			a.Details = &g
		}
	}
	a.Extra = f.extra()
	return a
}

// State derives the triage state from the stored flags.
func (a GazetteAlert) State() AlertState {
	switch {
	case a.SlackSent == nil:
		return StateDeclined
	case *a.SlackSent:
		return StateApproved
	}
	return StatePending
}

func (a GazetteAlert) Type() SourceType { return SourceGazette }
func (a GazetteAlert) Key() StorageID   { return a.StorageID }

// Timestamp derives from the joined gazette's publish date.
func (a GazetteAlert) Timestamp() int64 {
	if a.Details == nil {
		return 0
	}
	return millis(a.Details.PublishDate)
}

// Record renders the canonical stored form without the joined gazette.
func (a GazetteAlert) Record() Record {
	rec := withExtra(a.Extra)
	setLegacy(rec, a.LegacyID)
	rec["gazette_id"] = a.GazetteID
	rec["summary"] = a.Summary
	rec["reason"] = a.Reason
	rec["priority"] = a.Priority
	rec["slack_sent"] = boolOrNil(a.SlackSent)
	rec["is_relevant"] = boolOrNil(a.IsRelevant)
	rec[TagLegislativeValue] = a.LegislativeValue
	rec[TagEconomicImpact] = a.EconomicImpact
	rec[TagPoliticalRelevance] = a.PoliticalRelevance
	rec["alerted_at"] = timeOrNil(a.AlertedAt)
	rec["updated_at"] = timeOrNil(a.UpdatedAt)
	return rec
}

func millis(raw string) int64 {
	if raw == "" {
		return 0
	}
	return dates.Millis(raw)
}

func withExtra(extra Record) Record {
	rec := make(Record, len(extra)+12)
	for k, v := range extra {
		rec[k] = v
	}
	return rec
}

func setLegacy(rec Record, legacy string) {
	if legacy != "" {
		rec[KeyLegacyID] = legacy
	}
}

func boolOrNil(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}
