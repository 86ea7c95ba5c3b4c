package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/legal-radar/internal/models"
)

type stubDeriver struct {
	calls  []string
	counts map[string]int64
	fail   string
}

func (s *stubDeriver) BackfillDerivedDates(_ context.Context, collection string, batchSize int) (int64, error) {
	s.calls = append(s.calls, collection)
	if collection == s.fail {
		return 0, errors.New("bulk failed")
	}
	return s.counts[collection], nil
}

func TestRunOnceStampsDatedCollections(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	es := &stubDeriver{
		counts: map[string]int64{models.CollectionNews: 3, models.CollectionGazettes: 2},
		fail:   models.CollectionReports,
	}

	total := runOnce(context.Background(), log, es, 100)

	require.Equal(t, int64(5), total)
	require.Equal(t, []string{models.CollectionNews, models.CollectionReports, models.CollectionGazettes}, es.calls)
	require.NotContains(t, es.calls, models.CollectionAlerts)
}
