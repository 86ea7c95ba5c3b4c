package sources

import (
	"context"
	"fmt"

	"github.com/DeafMist/legal-radar/internal/models"
	"github.com/DeafMist/legal-radar/internal/query"
	"github.com/DeafMist/legal-radar/internal/store"
)

const defaultJoinBatch = 200

// Gazette reads alerts joined with the gazette they refer to. The join runs
// on the gazette_id business key and keeps alerts whose gazette is missing.
type Gazette struct {
	store store.Store
	batch int
}

// NewGazette creates a gazette-alert adapter. batch bounds how many alerts are
// read per round trip while filtering on joined fields.
func NewGazette(s store.Store, batch int) *Gazette {
	if batch <= 0 {
		batch = defaultJoinBatch
	}
	return &Gazette{store: s, batch: batch}
}

// Detail is an alert with its gazette. Synthetic is set when the identifier
// named a gazette that no alert was found for.
type Detail struct {
	Alert     models.GazetteAlert
	Gazette   *models.GazetteDetails
	Synthetic bool
}

func alertsSorted(order query.SortOrder) []store.SortKey {
	return []store.SortKey{{Field: query.AlertedAt, Kind: store.SortTime, Desc: order.Descending()}}
}

// ListPending returns up to limit pending alerts, newest first.
func (g *Gazette) ListPending(ctx context.Context, limit int) ([]models.GazetteAlert, error) {
	plan := query.Gazette(query.SearchRequest{}, models.StatePending)
	return g.collect(ctx, plan, alertsSorted(query.SortNewest), limit)
}

// ListProcessed returns approved alerts matching req, ordered by alert time.
func (g *Gazette) ListProcessed(ctx context.Context, req query.SearchRequest) ([]models.GazetteAlert, error) {
	plan := query.Gazette(req, models.StateApproved)
	return g.collect(ctx, plan, alertsSorted(req.Sort.Listing()), req.Limit)
}

// Search returns approved alerts for the unified search.
func (g *Gazette) Search(ctx context.Context, req query.SearchRequest) ([]models.GazetteAlert, error) {
	plan := query.Gazette(query.SearchRequest{
		Query:     req.Query,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}, models.StateApproved)
	return g.collect(ctx, plan, alertsSorted(req.Sort), req.Limit)
}

// Count returns the number of alerts in state.
func (g *Gazette) Count(ctx context.Context, state models.AlertState) (int64, error) {
	n, err := g.store.Count(ctx, models.CollectionAlerts, query.StateIs(state))
	if err != nil {
		return 0, fmt.Errorf("count alerts: %w", err)
	}
	return n, nil
}

// Detail resolves id to an alert and its gazette. The identifier is tried as
// an alert storage id, then as a legacy alert id, then as a gazette storage id.
func (g *Gazette) Detail(ctx context.Context, id string) (Detail, error) {
	return Resolve(ctx, id,
		g.alertStep(ByStorageID(g.store, models.CollectionAlerts)),
		g.alertStep(ByLegacyID(g.store, models.CollectionAlerts)),
		Step[Detail]{Name: "gazette storage id", Find: g.standIn},
	)
}

func (g *Gazette) alertStep(find Step[models.Record]) Step[Detail] {
	return Step[Detail]{
		Name: find.Name,
		Find: func(ctx context.Context, id string) (Detail, error) {
			rec, err := find.Find(ctx, id)
			if err != nil {
				return Detail{}, err
			}
			joined, err := g.join(ctx, []models.Record{rec})
			if err != nil {
				return Detail{}, err
			}
			alert := models.AlertFromRecord(joined[0])
			return Detail{Alert: alert, Gazette: alert.Details}, nil
		},
	}
}

// standIn builds a placeholder alert around a gazette found by storage id.
func (g *Gazette) standIn(ctx context.Context, id string) (Detail, error) {
	rec, err := g.store.FindOne(ctx, models.CollectionGazettes, query.IDIs{ID: models.StorageID(id)})
	if err != nil {
		return Detail{}, err
	}
	gazette := models.GazetteFromRecord(rec)
	return Detail{
		Alert: models.GazetteAlert{
			StorageID: gazette.StorageID,
			GazetteID: gazette.GazetteID,
			Summary:   gazette.Subject,
			Priority:  "low",
		},
		Gazette:   &gazette,
		Synthetic: true,
	}, nil
}

// collect pages through alerts matching plan.Base, joins each page and keeps
// the ones matching plan.Joined until limit alerts are gathered.
func (g *Gazette) collect(ctx context.Context, plan query.GazettePlan, sort []store.SortKey, limit int) ([]models.GazetteAlert, error) {
	post := query.Simplify(plan.Joined)
	batch := g.batch
	if _, unfiltered := post.(query.All); unfiltered && limit > 0 {
		batch = limit
	}

	out := make([]models.GazetteAlert, 0)
	for offset := 0; ; offset += batch {
		recs, err := g.store.Find(ctx, models.CollectionAlerts, store.Query{
			Filter: plan.Base,
			Sort:   sort,
			Offset: offset,
			Limit:  batch,
		})
		if err != nil {
			return nil, fmt.Errorf("find alerts: %w", err)
		}

		joined, err := g.join(ctx, recs)
		if err != nil {
			return nil, err
		}
		for _, rec := range joined {
			if !post.Match(rec) {
				continue
			}
			out = append(out, models.AlertFromRecord(rec))
			if limit > 0 && len(out) == limit {
				return out, nil
			}
		}

		if len(recs) < batch {
			return out, nil
		}
	}
}

// join attaches the first gazette sharing each alert's gazette_id. Alerts
// without a match are returned without details.
func (g *Gazette) join(ctx context.Context, alerts []models.Record) ([]models.Record, error) {
	if len(alerts) == 0 {
		return alerts, nil
	}

	seen := make(map[string]struct{}, len(alerts))
	keys := make([]string, 0, len(alerts))
	for _, rec := range alerts {
		key := businessKey(rec)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	byKey := make(map[string]models.Record, len(keys))
	if len(keys) > 0 {
		gazettes, err := g.store.Find(ctx, models.CollectionGazettes, store.Query{
			Filter: query.In{Field: "gazette_id", Values: keys},
		})
		if err != nil {
			return nil, fmt.Errorf("find gazettes: %w", err)
		}
		for _, rec := range gazettes {
			key := businessKey(rec)
			if _, ok := byKey[key]; !ok {
				byKey[key] = rec
			}
		}
	}

	out := make([]models.Record, 0, len(alerts))
	for _, rec := range alerts {
		joined := rec.Clone()
		delete(joined, models.KeyDetails)
		if gazette, ok := byKey[businessKey(rec)]; ok {
			joined[models.KeyDetails] = gazette
		}
		out = append(out, joined)
	}
	return out, nil
}

func businessKey(rec models.Record) string {
	key, _ := rec["gazette_id"].(string)
	return key
}
