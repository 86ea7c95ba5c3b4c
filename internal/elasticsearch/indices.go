package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/DeafMist/legal-radar/internal/models"
)

var (
	wildcardField = map[string]any{"type": "wildcard"}
	keywordField  = map[string]any{"type": "keyword"}
	booleanField  = map[string]any{"type": "boolean"}
	longField     = map[string]any{"type": "long"}
	dateField     = map[string]any{"type": "date"}
	opaqueField   = map[string]any{"type": "object", "enabled": false}
)

// mappings declares the fields every collection is queried on. Free-text
// fields use the wildcard type so that substring matches stay cheap on long
// values such as gazette PDF text.
func mappings(collection string) map[string]any {
	props := map[string]any{
		models.KeyLegacyID: keywordField,
	}
	set := func(t map[string]any, names ...string) {
		for _, n := range names {
			props[n] = t
		}
	}
	derived := func(field string) {
		props[models.MillisField(field)] = longField
		props[models.CheckedField(field)] = booleanField
	}

	switch collection {
	case models.CollectionNews:
		set(wildcardField, "title", "summary", "relevance_reason", "author", "source")
		set(keywordField, "url", "published_at")
		props["confidence_score"] = map[string]any{"type": "float"}
		derived("published_at")
	case models.CollectionReports:
		set(wildcardField, "title", "summary", "content", "place", "Place", "site")
		set(keywordField, "url", "date", "Date")
		set(opaqueField, "attachments", "Attachments")
		derived("date")
	case models.CollectionAlerts:
		set(wildcardField, "summary", "reason")
		set(keywordField, "gazette_id", "priority")
		set(booleanField, "slack_sent", "is_relevant")
		set(booleanField, models.Tags...)
		set(dateField, "alerted_at", "updated_at")
	case models.CollectionGazettes:
		set(wildcardField, "ministry", "subject", "pdf_text")
		set(keywordField, "gazette_id", "publish_date")
		derived("publish_date")
	}

	return map[string]any{"mappings": map[string]any{"properties": props}}
}

// EnsureIndices creates the index of every collection that does not exist yet.
func (c *Client) EnsureIndices(ctx context.Context) error {
	for _, collection := range models.Collections {
		index := c.Index(collection)

		res, err := c.es.Indices.Exists([]string{index}, c.es.Indices.Exists.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("check index %s: %w", index, err)
		}
		res.Body.Close()
		if res.StatusCode == http.StatusOK {
			continue
		}
		if res.StatusCode != http.StatusNotFound {
			return fmt.Errorf("check index %s: %s", index, res.Status())
		}

		payload, err := json.Marshal(mappings(collection))
		if err != nil {
			return fmt.Errorf("marshal mapping: %w", err)
		}

		created, err := c.es.Indices.Create(
			index,
			c.es.Indices.Create.WithContext(ctx),
			c.es.Indices.Create.WithBody(bytes.NewReader(payload)),
		)
		if err != nil {
			return fmt.Errorf("create index %s: %w", index, err)
		}
		if created.IsError() {
			msg := readError(created)
			created.Body.Close()
			return fmt.Errorf("create index %s failed: %s", index, msg)
		}
		created.Body.Close()
		c.log.Info("index created", slog.String("index", index))
	}
	return nil
}

// BackfillDerivedDates stamps derived date fields on documents that were
// written without them. It loops until a batch comes back smaller than
// batchSize and returns the number of documents updated.
func (c *Client) BackfillDerivedDates(ctx context.Context, collection string, batchSize int) (int64, error) {
	names := models.NativeDateField(collection)
	if len(names) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}

	pending := mustNotExist(models.CheckedField(names[0]))
	total := int64(0)

	for {
		body, err := json.Marshal(map[string]any{"size": batchSize, "query": pending})
		if err != nil {
			return total, fmt.Errorf("marshal backfill query: %w", err)
		}

		res, err := c.es.Search(
			c.es.Search.WithContext(ctx),
			c.es.Search.WithIndex(c.Index(collection)),
			c.es.Search.WithBody(bytes.NewReader(body)),
		)
		if err != nil {
			return total, fmt.Errorf("search undated: %w", err)
		}

		var parsed struct {
			Hits struct {
				Hits []hit `json:"hits"`
			} `json:"hits"`
		}
		if res.IsError() {
			msg := readError(res)
			res.Body.Close()
			return total, fmt.Errorf("search undated failed: %s", msg)
		}
		err = json.NewDecoder(res.Body).Decode(&parsed)
		res.Body.Close()
		if err != nil {
			return total, fmt.Errorf("decode undated: %w", err)
		}

		hits := parsed.Hits.Hits
		if len(hits) == 0 {
			return total, nil
		}

		if err := c.bulkDerive(ctx, collection, hits); err != nil {
			return total, err
		}
		total += int64(len(hits))

		if len(hits) < batchSize {
			return total, nil
		}
	}
}

func (c *Client) bulkDerive(ctx context.Context, collection string, hits []hit) error {
	names := models.NativeDateField(collection)
	millis := models.MillisField(names[0])
	checked := models.CheckedField(names[0])

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, h := range hits {
		rec, err := h.record()
		if err != nil {
			return err
		}
		models.Derive(collection, rec)

		doc := map[string]any{checked: true}
		if v, ok := rec[millis]; ok {
			doc[millis] = v
		}
		meta := map[string]any{"update": map[string]any{"_index": c.Index(collection), "_id": h.ID}}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("encode bulk meta: %w", err)
		}
		if err := enc.Encode(map[string]any{"doc": doc}); err != nil {
			return fmt.Errorf("encode bulk doc: %w", err)
		}
	}

	res, err := c.es.Bulk(
		bytes.NewReader(buf.Bytes()),
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("bulk update: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk update failed: %s", readError(res))
	}

	var parsed struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if parsed.Errors {
		return fmt.Errorf("%s: %w", collection, errBulkFailed)
	}
	return nil
}
