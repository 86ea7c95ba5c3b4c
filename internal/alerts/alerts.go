// Package alerts implements triage of gazette alerts.
//
// An alert is pending while slack_sent is false, approved once it is true and
// declined when it is null. Approve and decline may be applied from any state
// and always refresh updated_at.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	applog "github.com/DeafMist/legal-radar/internal/logger"
	"github.com/DeafMist/legal-radar/internal/models"
	"github.com/DeafMist/legal-radar/internal/query"
	"github.com/DeafMist/legal-radar/internal/sources"
	"github.com/DeafMist/legal-radar/internal/store"
)

// ListLimit caps the pending and processed listings.
const ListLimit = 100

// ErrInvalidAction is returned for anything other than approve or decline.
var ErrInvalidAction = errors.New("alerts: invalid action")

// Action is a triage decision.
type Action string

const (
	ActionApprove Action = "approve"
	ActionDecline Action = "decline"
)

// ParseAction validates a raw action name.
func ParseAction(raw string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(raw))) {
	case ActionApprove:
		return ActionApprove, nil
	case ActionDecline:
		return ActionDecline, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAction, raw)
}

// Fields returns the values the action writes, apart from updated_at.
func (a Action) Fields() models.Record {
	if a == ActionApprove {
		return models.Record{"slack_sent": true, "is_relevant": true}
	}
	return models.Record{"slack_sent": nil, "is_relevant": false}
}

// State is the state an alert is in after the action.
func (a Action) State() models.AlertState {
	if a == ActionApprove {
		return models.StateApproved
	}
	return models.StateDeclined
}

// Transition describes an applied action.
type Transition struct {
	AlertID   models.StorageID  `json:"alert_id"`
	GazetteID string            `json:"gazette_id,omitempty"`
	Action    Action            `json:"action"`
	State     models.AlertState `json:"state"`
	At        time.Time         `json:"at"`
}

// Publisher forwards applied transitions to downstream consumers.
type Publisher interface {
	PublishTransition(ctx context.Context, t Transition) error
}

// GazetteReader is the joined alert view the service lists from.
type GazetteReader interface {
	Count(ctx context.Context, state models.AlertState) (int64, error)
	ListPending(ctx context.Context, limit int) ([]models.GazetteAlert, error)
	ListProcessed(ctx context.Context, req query.SearchRequest) ([]models.GazetteAlert, error)
	Detail(ctx context.Context, id string) (sources.Detail, error)
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher publishes every applied transition.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides the time source used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service exposes alert listings and transitions.
type Service struct {
	store     store.Store
	gazette   GazetteReader
	publisher Publisher
	now       func() time.Time
	log       *slog.Logger
}

// NewService creates the alert service.
func NewService(s store.Store, gazette GazetteReader, logger *slog.Logger, opts ...Option) *Service {
	logger = applog.OrDiscard(logger)
	svc := &Service{
		store:   s,
		gazette: gazette,
		now:     time.Now,
		log:     logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Count returns the number of pending alerts.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.gazette.Count(ctx, models.StatePending)
}

// List returns pending alerts, newest first.
func (s *Service) List(ctx context.Context) ([]models.GazetteAlert, error) {
	return s.gazette.ListPending(ctx, ListLimit)
}

// Processed returns approved alerts matching req.
func (s *Service) Processed(ctx context.Context, req query.SearchRequest) ([]models.GazetteAlert, error) {
	req.Offset = 0
	req.Limit = ListLimit
	return s.gazette.ListProcessed(ctx, req)
}

// Detail returns an alert with its gazette.
func (s *Service) Detail(ctx context.Context, id string) (sources.Detail, error) {
	return s.gazette.Detail(ctx, id)
}

// Transition applies action to the alert identified by id.
func (s *Service) Transition(ctx context.Context, id string, action Action) (Transition, error) {
	if action != ActionApprove && action != ActionDecline {
		return Transition{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	rec, err := sources.Resolve(ctx, id,
		sources.ByStorageID(s.store, models.CollectionAlerts),
		sources.ByLegacyID(s.store, models.CollectionAlerts),
	)
	if err != nil {
		return Transition{}, err
	}

	at := s.now().UTC()
	set := action.Fields()
	set["updated_at"] = at

	if err := s.store.UpdateOne(ctx, models.CollectionAlerts, query.IDIs{ID: rec.ID()}, set); err != nil {
		return Transition{}, fmt.Errorf("update alert %s: %w", rec.ID(), err)
	}

	t := Transition{
		AlertID:   rec.ID(),
		GazetteID: models.AlertFromRecord(rec).GazetteID,
		Action:    action,
		State:     action.State(),
		At:        at,
	}
	s.log.Info("alert transitioned",
		slog.String("alert_id", string(t.AlertID)),
		slog.String("action", string(action)),
	)

	if s.publisher != nil {
		if err := s.publisher.PublishTransition(ctx, t); err != nil {
			s.log.Warn("publish transition failed",
				slog.String("alert_id", string(t.AlertID)),
				slog.Any("err", err),
			)
		}
	}
	return t, nil
}
