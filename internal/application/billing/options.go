package billing

import (
	"context"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Option configures the optional collaborators of the billing services
type Option func(*collaborators)

type collaborators struct {
	events  shared.EventPublisher
	metrics Metrics
	logger  *zap.Logger
}

// WithEventPublisher publishes domain events after each successful commit
func WithEventPublisher(p shared.EventPublisher) Option {
	return func(c *collaborators) {
		c.events = p
	}
}

// WithMetrics records business counters
func WithMetrics(m Metrics) Option {
	return func(c *collaborators) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(c *collaborators) {
		if l != nil {
			c.logger = l
		}
	}
}

func newCollaborators(name string, opts []Option) collaborators {
	c := collaborators{
		metrics: NoopMetrics{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	c.logger = c.logger.Named(name)
	return c
}

// publish sends the pending events of the given aggregates and clears them.
// The write has already committed, so a failed publish is logged, not returned.
func (c collaborators) publish(ctx context.Context, aggregates ...shared.AggregateRoot) {
	var events []shared.DomainEvent
	for _, agg := range aggregates {
		events = append(events, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
	if c.events == nil || len(events) == 0 {
		return
	}
	if err := c.events.Publish(ctx, events...); err != nil {
		c.logger.Warn("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

// wrapInfra annotates infrastructure failures and passes domain errors through untouched
func wrapInfra(err error, msg string) error {
	if err == nil {
		return nil
	}
	if _, ok := shared.AsDomainError(err); ok {
		return err
	}
	return errors.Wrap(err, msg)
}
