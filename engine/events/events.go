// Package events connects the dashboard to NATS: it announces session
// selection changes and answers view requests from other services.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/sportscar-dash/engine/domain"
	"github.com/WessleyAI/sportscar-dash/engine/filter"
	"github.com/WessleyAI/sportscar-dash/pkg/natsutil"
	"github.com/WessleyAI/sportscar-dash/pkg/resilience"
)

// Subjects.
const (
	SubjectSelectionChanged = "dashboard.selection.changed"
	SubjectView             = "dashboard.view"
	viewQueue               = "dashboard"
)

// SelectionChanged is published whenever a session's selection changes.
type SelectionChanged struct {
	SessionID string           `json:"session_id"`
	Selection filter.Selection `json:"selection"`
	Rows      int              `json:"rows"`
	At        time.Time        `json:"at"`
}

// Publisher announces selection changes. Publishing is best effort: a
// failure is reported but never blocks or fails the originating request.
type Publisher interface {
	PublishSelection(ctx context.Context, ev SelectionChanged) error
}

// Nop is the Publisher used when NATS is not configured.
type Nop struct{}

func (Nop) PublishSelection(context.Context, SelectionChanged) error { return nil }

// NATSPublisher publishes through a circuit breaker so an unreachable server
// costs one failed call per breaker timeout instead of one per request.
type NATSPublisher struct {
	nc      *nats.Conn
	breaker *resilience.Breaker
	log     *slog.Logger
	observe func(subject string, err error)
}

// NewNATSPublisher returns a publisher on nc. observe may be nil.
func NewNATSPublisher(nc *nats.Conn, log *slog.Logger, observe func(subject string, err error)) *NATSPublisher {
	p := &NATSPublisher{nc: nc, log: log, observe: observe}
	p.breaker = resilience.NewBreaker(resilience.BreakerOpts{
		FailThreshold: 3,
		Timeout:       15 * time.Second,
		OnStateChange: func(from, to resilience.State) {
			log.Warn("event publisher breaker", "from", from.String(), "to", to.String())
		},
	})
	return p
}

// PublishSelection publishes ev on SubjectSelectionChanged.
func (p *NATSPublisher) PublishSelection(ctx context.Context, ev SelectionChanged) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	err := p.breaker.Call(ctx, func(ctx context.Context) error {
		return natsutil.Publish(ctx, p.nc, SubjectSelectionChanged, ev)
	})
	if p.observe != nil {
		p.observe(SubjectSelectionChanged, err)
	}
	if err != nil {
		p.log.DebugContext(ctx, "selection event dropped", "session", ev.SessionID, "error", err)
	}
	return err
}

// ViewRequest asks for the View of a selection. Make and model are matched
// case-insensitively against the dataset.
type ViewRequest struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Years []int  `json:"years"`
}

// Selection resolves the request against c.
func (r ViewRequest) Selection(c *domain.Catalog) filter.Selection {
	var sel filter.Selection
	sel.Make, _ = c.ParseMake(r.Make)
	sel.Model, _ = c.ParseModel(r.Model)
	sel.SelectYears(r.Years)
	return sel
}

// ServeViews answers ViewRequests on SubjectView with the computed
// filter.View. observe, if set, is called after each compute with its start
// time.
func ServeViews(nc *nats.Conn, e *filter.Engine, observe func(start time.Time)) (*nats.Subscription, error) {
	return natsutil.Respond(nc, SubjectView, viewQueue, func(ctx context.Context, req ViewRequest) (filter.View, error) {
		start := time.Now()
		v := e.Compute(ctx, req.Selection(e.Catalog()))
		if observe != nil {
			observe(start)
		}
		return v, nil
	})
}

// RequestView is the client side of ServeViews.
func RequestView(ctx context.Context, nc *nats.Conn, req ViewRequest) (filter.View, error) {
	return natsutil.Request[ViewRequest, filter.View](ctx, nc, SubjectView, req)
}
