// Package search merges the per-source results of a unified search.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	applog "github.com/DeafMist/legal-radar/internal/logger"
	"github.com/DeafMist/legal-radar/internal/models"
	"github.com/DeafMist/legal-radar/internal/query"
)

// SummarySize is how many latest items of each listing the summary carries.
const SummarySize = 3

// ErrAllSourcesFailed is returned when no selected source produced results.
var ErrAllSourcesFailed = errors.New("search: every selected source failed")

// NewsReader is the news adapter as seen by the search.
type NewsReader interface {
	Search(ctx context.Context, req query.SearchRequest) ([]models.NewsItem, error)
	Latest(ctx context.Context, limit int) ([]models.NewsItem, error)
}

// ReportReader is the reports adapter as seen by the search.
type ReportReader interface {
	Search(ctx context.Context, req query.SearchRequest) ([]models.ReportEntry, error)
	Latest(ctx context.Context, limit int) ([]models.ReportEntry, error)
}

// GazetteReader is the gazette-alert adapter as seen by the search.
type GazetteReader interface {
	Search(ctx context.Context, req query.SearchRequest) ([]models.GazetteAlert, error)
}

// Observer is told about every per-source run.
type Observer interface {
	SourceSearched(source models.SourceType, took time.Duration, err error)
}

// Hit is one merged result.
type Hit struct {
	Type      models.SourceType
	Timestamp int64
	Doc       models.Document
}

// Result is the merged, truncated hit list. Counts holds what each source
// returned before truncation, 0 for sources that were not selected; Errors
// holds the sources that failed.
type Result struct {
	Hits   []Hit
	Counts map[models.SourceType]int
	Errors map[models.SourceType]string
}

// Summary holds the latest items of the two listings.
type Summary struct {
	News    []models.NewsItem
	Reports []models.ReportEntry
}

// Service runs unified searches.
type Service struct {
	news     NewsReader
	reports  ReportReader
	gazette  GazetteReader
	observer Observer
	log      *slog.Logger
}

// NewService wires the three adapters. observer may be nil.
func NewService(news NewsReader, reports ReportReader, gazette GazetteReader, observer Observer, logger *slog.Logger) *Service {
	logger = applog.OrDiscard(logger)
	return &Service{
		news:     news,
		reports:  reports,
		gazette:  gazette,
		observer: observer,
		log:      logger,
	}
}

type outcome struct {
	source models.SourceType
	docs   []models.Document
	err    error
}

// Search queries every selected source concurrently and merges what succeeded.
func (s *Service) Search(ctx context.Context, req query.SearchRequest) (Result, error) {
	var selected []models.SourceType
	for _, source := range models.AllSources {
		if req.Wants(source) {
			selected = append(selected, source)
		}
	}

	outcomes := make([]outcome, len(selected))
	var wg sync.WaitGroup
	for i, source := range selected {
		wg.Add(1)
		go func(i int, source models.SourceType) {
			defer wg.Done()
			started := time.Now()
			docs, err := s.run(ctx, source, req)
			if s.observer != nil {
				s.observer.SourceSearched(source, time.Since(started), err)
			}
			outcomes[i] = outcome{source: source, docs: docs, err: err}
		}(i, source)
	}
	wg.Wait()

	res := Result{
		Hits:   []Hit{},
		Counts: make(map[models.SourceType]int, len(models.AllSources)),
	}
	for _, source := range models.AllSources {
		res.Counts[source] = 0
	}
	var errs []error
	for _, o := range outcomes {
		res.Counts[o.source] = len(o.docs)
		if o.err != nil {
			if res.Errors == nil {
				res.Errors = make(map[models.SourceType]string)
			}
			res.Errors[o.source] = o.err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", o.source, o.err))
			s.log.Warn("source search failed",
				slog.String("source", string(o.source)),
				slog.Any("err", o.err),
			)
			continue
		}
		for _, doc := range o.docs {
			res.Hits = append(res.Hits, Hit{Type: o.source, Timestamp: doc.Timestamp(), Doc: doc})
		}
	}

	if len(selected) > 0 && len(errs) == len(selected) {
		return Result{}, fmt.Errorf("%w: %w", ErrAllSourcesFailed, errors.Join(errs...))
	}

	switch req.Sort {
	case query.SortNewest:
		sort.SliceStable(res.Hits, func(i, j int) bool { return res.Hits[i].Timestamp > res.Hits[j].Timestamp })
	case query.SortOldest:
		sort.SliceStable(res.Hits, func(i, j int) bool { return res.Hits[i].Timestamp < res.Hits[j].Timestamp })
	}

	if req.Limit > 0 && len(res.Hits) > req.Limit {
		res.Hits = res.Hits[:req.Limit]
	}
	return res, nil
}

func (s *Service) run(ctx context.Context, source models.SourceType, req query.SearchRequest) ([]models.Document, error) {
	switch source {
	case models.SourceNews:
		items, err := s.news.Search(ctx, req)
		return documents(items, err)
	case models.SourceReports:
		items, err := s.reports.Search(ctx, req)
		return documents(items, err)
	case models.SourceGazette:
		items, err := s.gazette.Search(ctx, req)
		return documents(items, err)
	}
	return nil, fmt.Errorf("unknown source %q", source)
}

func documents[T models.Document](items []T, err error) ([]models.Document, error) {
	if err != nil {
		return nil, err
	}
	out := make([]models.Document, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out, nil
}

// Summary returns the latest news and reports.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	news, err := s.news.Latest(ctx, SummarySize)
	if err != nil {
		return Summary{}, fmt.Errorf("latest news: %w", err)
	}
	reports, err := s.reports.Latest(ctx, SummarySize)
	if err != nil {
		return Summary{}, fmt.Errorf("latest reports: %w", err)
	}
	return Summary{News: news, Reports: reports}, nil
}
