package models

import "strings"

// SourceType tags a document with the collection family it came from.
type SourceType string

const (
	SourceNews    SourceType = "news"
	SourceReports SourceType = "reports"
	SourceGazette SourceType = "gazette"
)

// AllSources lists the searchable sources in concatenation order.
var AllSources = []SourceType{SourceNews, SourceReports, SourceGazette}

// ParseSource maps a site name, including the legacy collection names, to a source.
func ParseSource(raw string) (SourceType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "news", "livelaw":
		return SourceNews, true
	case "reports", "report", "ichr":
		return SourceReports, true
	case "gazette", "gazettes", "alerts":
		return SourceGazette, true
	}
	return "", false
}

// Collection names in the document store.
const (
	CollectionNews     = "news"
	CollectionReports  = "reports"
	CollectionAlerts   = "alerts"
	CollectionGazettes = "gazettes"
)

// Collections lists every collection the service reads.
var Collections = []string{CollectionNews, CollectionReports, CollectionAlerts, CollectionGazettes}
