// Package serialize renders documents into the client-facing JSON shape.
package serialize

import (
	"github.com/DeafMist/legal-radar/internal/models"
	"github.com/DeafMist/legal-radar/internal/search"
	"github.com/DeafMist/legal-radar/internal/sources"
)

// Sanitize replaces storage identifiers with plain strings throughout v.
// Every _id key becomes id. Values of unknown shape pass through unchanged.
func Sanitize(v any) any {
	switch t := v.(type) {
	case models.Record:
		return sanitizeMap(t)
	case map[string]any:
		return sanitizeMap(t)
	case []models.Record:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = sanitizeMap(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = sanitizeMap(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Sanitize(item)
		}
		return out
	case models.StorageID:
		return string(t)
	}
	return v
}

func sanitizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k == models.KeyID {
			continue
		}
		out[k] = Sanitize(v)
	}
	if raw, ok := m[models.KeyID]; ok && raw != nil {
		out[models.KeyLegacyID] = idString(raw)
	}
	return out
}

func idString(v any) any {
	switch id := v.(type) {
	case models.StorageID:
		return string(id)
	case string:
		return id
	}
	return Sanitize(v)
}

func withID(rec models.Record, id models.StorageID) map[string]any {
	rec[models.KeyID] = id
	return sanitizeMap(rec)
}

// News renders a news article.
func News(n models.NewsItem) map[string]any {
	return withID(n.Record(), n.StorageID)
}

// Report renders a report entry.
func Report(r models.ReportEntry) map[string]any {
	return withID(r.Record(), r.StorageID)
}

// Gazette renders gazette details; nil renders as null.
func Gazette(g *models.GazetteDetails) any {
	if g == nil {
		return nil
	}
	return withID(g.Record(), g.StorageID)
}

// Alert renders an alert with its joined gazette under gazette_details.
func Alert(a models.GazetteAlert) map[string]any {
	out := withID(a.Record(), a.StorageID)
	out[models.KeyDetails] = Gazette(a.Details)
	return out
}

// Alerts renders a list of alerts, never null.
func Alerts(list []models.GazetteAlert) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, a := range list {
		out = append(out, Alert(a))
	}
	return out
}

// Detail renders the {alert, gazette} pair.
func Detail(d sources.Detail) map[string]any {
	alert := withID(d.Alert.Record(), d.Alert.StorageID)
	return map[string]any{
		"alert":   alert,
		"gazette": Gazette(d.Gazette),
	}
}

// Document renders any source variant.
func Document(doc models.Document) map[string]any {
	switch d := doc.(type) {
	case models.NewsItem:
		return News(d)
	case models.ReportEntry:
		return Report(d)
	case models.GazetteAlert:
		return Alert(d)
	}
	return map[string]any{models.KeyLegacyID: string(doc.Key())}
}

// Hit renders a unified search hit with its source tag and timestamp.
func Hit(h search.Hit) map[string]any {
	out := Document(h.Doc)
	out["_type"] = string(h.Type)
	out["_timestamp"] = h.Timestamp
	out["_score"] = 1.0
	return out
}

// Hits renders a unified hit list, never null.
func Hits(hits []search.Hit) []map[string]any {
	out := make([]map[string]any, 0, len(hits))
	for _, h := range hits {
		out = append(out, Hit(h))
	}
	return out
}

// Result renders a unified search response. Counts list every source;
// errors appear only when a source failed.
func Result(res search.Result) map[string]any {
	counts := make(map[string]int, len(models.AllSources))
	for _, source := range models.AllSources {
		counts[string(source)] = 0
	}
	for source, n := range res.Counts {
		counts[string(source)] = n
	}
	out := map[string]any{
		"results": Hits(res.Hits),
		"counts":  counts,
	}
	if len(res.Errors) > 0 {
		errs := make(map[string]string, len(res.Errors))
		for source, msg := range res.Errors {
			errs[string(source)] = msg
		}
		out["errors"] = errs
	}
	return out
}

// Summary renders the landing summary.
func Summary(s search.Summary) map[string]any {
	news := make([]map[string]any, 0, len(s.News))
	for _, n := range s.News {
		news = append(news, withType(News(n), n))
	}
	reports := make([]map[string]any, 0, len(s.Reports))
	for _, r := range s.Reports {
		reports = append(reports, withType(Report(r), r))
	}
	return map[string]any{
		"news":    news,
		"reports": reports,
		"total":   len(news) + len(reports),
	}
}

func withType(out map[string]any, doc models.Document) map[string]any {
	out["_type"] = string(doc.Type())
	out["_timestamp"] = doc.Timestamp()
	return out
}
