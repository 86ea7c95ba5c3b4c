package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	applog "github.com/DeafMist/legal-radar/internal/logger"
	"github.com/DeafMist/legal-radar/internal/models"
	"github.com/DeafMist/legal-radar/internal/query"
	"github.com/DeafMist/legal-radar/internal/store"
)

// maxWindow is the default index.max_result_window.
const maxWindow = 10_000

var _ store.Store = (*Client)(nil)

// Client wraps go-elasticsearch and serves the collections as a store.Store.
// Collection names map to indices by prepending the configured prefix.
type Client struct {
	es     *elasticsearch.Client
	prefix string
	log    *slog.Logger
}

// New instantiates the Elasticsearch client.
func New(addr, prefix string, logger *slog.Logger) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{addr},
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	logger = applog.OrDiscard(logger)

	return &Client{es: es, prefix: prefix, log: logger}, nil
}

// Index returns the index name backing a collection.
func (c *Client) Index(collection string) string {
	return c.prefix + collection
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}

	return nil
}

// Health pings Elasticsearch to ensure connectivity.
func (c *Client) Health(ctx context.Context) error {
	res, err := c.es.Cluster.Health(c.es.Cluster.Health.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("cluster health bad: %s", strings.TrimSpace(string(data)))
	}
	return nil
}

// IndexRecord writes rec into a collection under the given identifier,
// replacing any previous version.
func (c *Client) IndexRecord(ctx context.Context, collection, id string, rec models.Record) error {
	_, err := c.write(ctx, collection, id, rec, "index")
	return err
}

// CreateRecord writes rec only if no document with id exists yet. It reports
// whether the document was created.
func (c *Client) CreateRecord(ctx context.Context, collection, id string, rec models.Record) (bool, error) {
	return c.write(ctx, collection, id, rec, "create")
}

func (c *Client) write(ctx context.Context, collection, id string, rec models.Record, opType string) (bool, error) {
	body := rec.Clone()
	delete(body, models.KeyID)

	payload, err := json.Marshal(body)
	if err != nil {
		return false, fmt.Errorf("marshal doc: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.Index(collection),
		DocumentID: id,
		Body:       bytes.NewReader(payload),
		OpType:     opType,
		Refresh:    "false",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return false, fmt.Errorf("index doc: %w", err)
	}
	defer res.Body.Close()

	if opType == "create" && res.StatusCode == http.StatusConflict {
		return false, nil
	}
	if res.IsError() {
		return false, fmt.Errorf("index doc failed: %s", readError(res))
	}

	return true, nil
}

// Find executes a filtered, sorted, paged search.
func (c *Client) Find(ctx context.Context, collection string, q store.Query) ([]models.Record, error) {
	clause, err := translate(q.Filter)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	from := q.Offset
	if from < 0 {
		from = 0
	}
	size := q.Limit
	if size <= 0 || from+size > maxWindow {
		size = maxWindow - from
	}
	if size <= 0 {
		return []models.Record{}, nil
	}

	body := map[string]any{
		"from":  from,
		"size":  size,
		"query": clause,
	}
	if len(q.Sort) > 0 {
		body["sort"] = translateSort(q.Sort)
	}
	if runtime := runtimeMappings(q.Filter, q.Sort); len(runtime) > 0 {
		body["runtime_mappings"] = runtime
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.Index(collection)),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s", readError(res))
	}

	var parsed struct {
		Hits struct {
			Hits []hit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]models.Record, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		rec, err := h.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Count returns the exact number of matching documents. It runs as a
// zero-size search because the count API does not take runtime mappings.
func (c *Client) Count(ctx context.Context, collection string, filter query.Predicate) (int64, error) {
	clause, err := translate(filter)
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	body := map[string]any{
		"size":             0,
		"track_total_hits": true,
		"query":            clause,
	}
	if runtime := runtimeMappings(filter, nil); len(runtime) > 0 {
		body["runtime_mappings"] = runtime
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal count body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.Index(collection)),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("count failed: %s", readError(res))
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode count response: %w", err)
	}
	return parsed.Hits.Total.Value, nil
}

// FindOne returns the first match. Identifier lookups use the realtime GET API.
func (c *Client) FindOne(ctx context.Context, collection string, filter query.Predicate) (models.Record, error) {
	if byID, ok := filter.(query.IDIs); ok {
		return c.get(ctx, collection, string(byID.ID))
	}

	recs, err := c.Find(ctx, collection, store.Query{Filter: filter, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, store.ErrNotFound
	}
	return recs[0], nil
}

// UpdateOne applies a partial update to the first match.
func (c *Client) UpdateOne(ctx context.Context, collection string, filter query.Predicate, set models.Record) error {
	var id string
	if byID, ok := filter.(query.IDIs); ok {
		id = string(byID.ID)
	} else {
		rec, err := c.FindOne(ctx, collection, filter)
		if err != nil {
			return err
		}
		id = string(rec.ID())
	}
	if id == "" {
		return store.ErrNotFound
	}

	doc := set.Clone()
	delete(doc, models.KeyID)
	payload, err := json.Marshal(map[string]any{"doc": doc})
	if err != nil {
		return fmt.Errorf("marshal update body: %w", err)
	}

	res, err := c.es.Update(
		c.Index(collection),
		id,
		bytes.NewReader(payload),
		c.es.Update.WithContext(ctx),
		c.es.Update.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return store.ErrNotFound
	}
	if res.IsError() {
		return fmt.Errorf("update failed: %s", readError(res))
	}
	return nil
}

func (c *Client) get(ctx context.Context, collection, id string) (models.Record, error) {
	if id == "" {
		return nil, store.ErrNotFound
	}
	res, err := c.es.Get(c.Index(collection), id, c.es.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, store.ErrNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("get failed: %s", readError(res))
	}

	var h hit
	if err := json.NewDecoder(res.Body).Decode(&h); err != nil {
		return nil, fmt.Errorf("decode get response: %w", err)
	}
	return h.record()
}

type hit struct {
	ID     string          `json:"_id"`
	Source json.RawMessage `json:"_source"`
}

func (h hit) record() (models.Record, error) {
	rec := models.Record{}
	if len(h.Source) > 0 {
		dec := json.NewDecoder(bytes.NewReader(h.Source))
		dec.UseNumber()
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", h.ID, err)
		}
	}
	rec[models.KeyID] = models.StorageID(h.ID)
	return rec, nil
}

func readError(res *esapi.Response) string {
	data, _ := io.ReadAll(res.Body)
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return res.Status()
	}
	return msg
}

var errBulkFailed = errors.New("bulk request reported item errors")
