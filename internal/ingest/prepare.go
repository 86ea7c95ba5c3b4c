// Package ingest turns raw documents from the feeds into canonical records.
package ingest

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/DeafMist/legal-radar/internal/models"
)

const titleWords = 12

// ErrEmptyDocument is returned for payloads without any usable content.
var ErrEmptyDocument = errors.New("ingest: empty document")

// Prepared is a document ready to be indexed.
type Prepared struct {
	ID          string
	Collection  string
	Record      models.Record
	Fingerprint string
}

// Prepare decodes raw into the canonical shape of collection, stamps the
// derived date fields and assigns a deterministic id. now is used for
// alerts that arrive without alerted_at.
func Prepare(collection string, raw []byte, now time.Time) (Prepared, error) {
	rec := models.Record{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return Prepared{}, fmt.Errorf("decode %s payload: %w", collection, err)
	}

	var (
		out models.Record
		id  string
		err error
	)
	switch collection {
	case models.CollectionNews:
		out, id, err = prepareNews(rec)
	case models.CollectionReports:
		out, id, err = prepareReport(rec)
	case models.CollectionGazettes:
		out, id, err = prepareGazette(rec)
	case models.CollectionAlerts:
		out, id, err = prepareAlert(rec, now)
	default:
		return Prepared{}, fmt.Errorf("unknown collection %q", collection)
	}
	if err != nil {
		return Prepared{}, err
	}

	models.Derive(collection, out)
	fp, err := fingerprint(out)
	if err != nil {
		return Prepared{}, err
	}
	return Prepared{ID: id, Collection: collection, Record: out, Fingerprint: fp}, nil
}

func prepareNews(rec models.Record) (models.Record, string, error) {
	n := models.NewsFromRecord(rec)
	n.Title = CleanText(n.Title)
	n.Summary = CleanText(n.Summary)
	if n.Title == "" {
		n.Title = GenerateTitleFromText(n.Summary, titleWords)
	}
	if n.Title == "" {
		return nil, "", ErrEmptyDocument
	}
	if n.URL == "" {
		if urls := ExtractURLs(n.Summary); len(urls) > 0 {
			n.URL = urls[0]
		}
	}
	return n.Record(), idFor(models.CollectionNews, n.LegacyID, n.URL, n.Title, n.PublishedAt), nil
}

func prepareReport(rec models.Record) (models.Record, string, error) {
	r := models.ReportFromRecord(rec)
	r.Title = CleanText(r.Title)
	r.Summary = CleanText(r.Summary)
	r.Content = CleanText(r.Content)
	if r.Title == "" {
		r.Title = GenerateTitleFromText(firstNonEmpty(r.Summary, r.Content), titleWords)
	}
	if r.Title == "" {
		return nil, "", ErrEmptyDocument
	}
	return r.Record(), idFor(models.CollectionReports, r.LegacyID, r.URL, r.Title, r.Date), nil
}

func prepareGazette(rec models.Record) (models.Record, string, error) {
	g := models.GazetteFromRecord(rec)
	g.GazetteID = strings.TrimSpace(g.GazetteID)
	if g.GazetteID == "" {
		return nil, "", fmt.Errorf("%w: gazette_id is required", ErrEmptyDocument)
	}
	g.Subject = CleanText(g.Subject)
	g.Ministry = CleanText(g.Ministry)
	return g.Record(), BuildDocumentID(models.CollectionGazettes, g.GazetteID), nil
}

func prepareAlert(rec models.Record, now time.Time) (models.Record, string, error) {
	a := models.AlertFromRecord(rec)
	a.GazetteID = strings.TrimSpace(a.GazetteID)
	if a.GazetteID == "" {
		return nil, "", fmt.Errorf("%w: gazette_id is required", ErrEmptyDocument)
	}
	// New alerts start pending. An explicit null is a decline and is kept.
	if _, present := rec["slack_sent"]; !present {
		pending := false
		a.SlackSent = &pending
	}
	if a.AlertedAt == nil {
		at := now.UTC()
		a.AlertedAt = &at
	}
	a.Details = nil

	out := a.Record()
	if a.UpdatedAt == nil {
		delete(out, "updated_at")
	}
	return out, idFor(models.CollectionAlerts, a.LegacyID, a.GazetteID, a.Summary), nil
}

// idFor prefers a legacy id, then the natural key parts.
func idFor(collection, legacy string, parts ...string) string {
	if legacy != "" {
		return BuildDocumentID(collection, "id", legacy)
	}
	return BuildDocumentID(collection, parts...)
}

func fingerprint(rec models.Record) (string, error) {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha1.New()
	enc := json.NewEncoder(h)
	for _, k := range keys {
		if err := enc.Encode([]any{k, rec[k]}); err != nil {
			return "", fmt.Errorf("fingerprint %s: %w", k, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
