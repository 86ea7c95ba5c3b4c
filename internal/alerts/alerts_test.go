package alerts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/legal-radar/internal/alerts"
	"github.com/DeafMist/legal-radar/internal/models"
	"github.com/DeafMist/legal-radar/internal/query"
	"github.com/DeafMist/legal-radar/internal/sources"
	"github.com/DeafMist/legal-radar/internal/store"
	"github.com/DeafMist/legal-radar/internal/store/memory"
)

type stubPublisher struct {
	sent []alerts.Transition
	err  error
}

func (p *stubPublisher) PublishTransition(_ context.Context, t alerts.Transition) error {
	p.sent = append(p.sent, t)
	return p.err
}

var fixedNow = time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)

func newService(s *memory.Store, opts ...alerts.Option) *alerts.Service {
	opts = append([]alerts.Option{alerts.WithClock(func() time.Time { return fixedNow })}, opts...)
	return alerts.NewService(s, sources.NewGazette(s, 0), nil, opts...)
}

func stateOf(t *testing.T, s *memory.Store, id models.StorageID) models.GazetteAlert {
	t.Helper()
	rec, err := s.FindOne(context.Background(), models.CollectionAlerts, query.IDIs{ID: id})
	require.NoError(t, err)
	return models.AlertFromRecord(rec)
}

func TestParseAction(t *testing.T) {
	a, err := alerts.ParseAction(" Approve ")
	require.NoError(t, err)
	require.Equal(t, alerts.ActionApprove, a)

	_, err = alerts.ParseAction("archive")
	require.ErrorIs(t, err, alerts.ErrInvalidAction)
}

func TestDeclineSetsNullSlackSent(t *testing.T) {
	s := memory.New()
	id := s.Insert(models.CollectionAlerts, models.Record{"gazette_id": "G1", "slack_sent": false})

	tr, err := newService(s).Transition(context.Background(), string(id), alerts.ActionDecline)
	require.NoError(t, err)
	require.Equal(t, models.StateDeclined, tr.State)

	rec, err := s.FindOne(context.Background(), models.CollectionAlerts, query.IDIs{ID: id})
	require.NoError(t, err)
	v, present := rec["slack_sent"]
	require.True(t, present)
	require.Nil(t, v)
	require.Equal(t, false, rec["is_relevant"])
	require.Equal(t, fixedNow, rec["updated_at"])
}

func TestTransitionsAreRepeatable(t *testing.T) {
	s := memory.New()
	id := s.Insert(models.CollectionAlerts, models.Record{"gazette_id": "G1", "slack_sent": false})
	svc := newService(s)

	for _, a := range []alerts.Action{alerts.ActionApprove, alerts.ActionDecline, alerts.ActionApprove} {
		_, err := svc.Transition(context.Background(), string(id), a)
		require.NoError(t, err)
	}

	alert := stateOf(t, s, id)
	require.Equal(t, models.StateApproved, alert.State())
	require.NotNil(t, alert.IsRelevant)
	require.True(t, *alert.IsRelevant)
	require.Equal(t, fixedNow, *alert.UpdatedAt)
}

func TestTransitionByLegacyID(t *testing.T) {
	s := memory.New()
	id := s.Insert(models.CollectionAlerts, models.Record{"id": "legacy-1", "gazette_id": "G7", "slack_sent": false})
	pub := &stubPublisher{}

	tr, err := newService(s, alerts.WithPublisher(pub)).Transition(context.Background(), "legacy-1", alerts.ActionApprove)
	require.NoError(t, err)
	require.Equal(t, id, tr.AlertID)
	require.Len(t, pub.sent, 1)
	require.Equal(t, "G7", pub.sent[0].GazetteID)
	require.Equal(t, fixedNow, pub.sent[0].At)
}

func TestTransitionUnknownAlert(t *testing.T) {
	s := memory.New()
	_, err := newService(s).Transition(context.Background(), "nope", alerts.ActionApprove)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = newService(s).Transition(context.Background(), "nope", alerts.Action("archive"))
	require.ErrorIs(t, err, alerts.ErrInvalidAction)
}

func TestPublishFailureDoesNotFailTransition(t *testing.T) {
	s := memory.New()
	id := s.Insert(models.CollectionAlerts, models.Record{"slack_sent": false})
	pub := &stubPublisher{err: errors.New("broker down")}

	_, err := newService(s, alerts.WithPublisher(pub)).Transition(context.Background(), string(id), alerts.ActionApprove)
	require.NoError(t, err)
	require.Equal(t, models.StateApproved, stateOf(t, s, id).State())
}

func TestCountAndListings(t *testing.T) {
	s := memory.New()
	for i := 0; i < alerts.ListLimit+5; i++ {
		s.Insert(models.CollectionAlerts, models.Record{"slack_sent": false, "alerted_at": fixedNow.Add(time.Duration(i) * time.Minute)})
	}
	s.Insert(models.CollectionAlerts, models.Record{"slack_sent": true, "summary": "approved"})
	s.Insert(models.CollectionAlerts, models.Record{"summary": "declined"})
	svc := newService(s)

	n, err := svc.Count(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, alerts.ListLimit+5, n)

	pending, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, alerts.ListLimit)
	require.True(t, pending[0].AlertedAt.After(*pending[1].AlertedAt))

	processed, err := svc.Processed(context.Background(), query.SearchRequest{Limit: 1})
	require.NoError(t, err)
	require.Len(t, processed, 1)
	require.Equal(t, "approved", processed[0].Summary)
}
