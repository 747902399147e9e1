// Package notify publishes finished races to external sinks.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/gallop/internal/logger"
	"github.com/yourusername/gallop/internal/metrics"
	"github.com/yourusername/gallop/internal/models"
)

// RaceEvent is the payload published for every finished race
type RaceEvent struct {
	Race       models.RaceRecord  `json:"race"`
	WinnerName string             `json:"winner_name"`
	Odds       map[string]float64 `json:"odds,omitempty"`
}

// Publisher delivers race events to one sink
type Publisher interface {
	Name() string
	Publish(ctx context.Context, event RaceEvent) error
}

// Multi fans an event out to several publishers. A failing sink never stops the others.
type Multi struct {
	publishers []Publisher
	logger     *logger.RaceLogger
}

// NewMulti creates a fan-out publisher
func NewMulti(log *logger.RaceLogger, publishers ...Publisher) *Multi {
	return &Multi{publishers: publishers, logger: log}
}

// Name identifies the fan-out publisher
func (m *Multi) Name() string {
	return "multi"
}

// Len returns the number of configured sinks
func (m *Multi) Len() int {
	return len(m.publishers)
}

// Publish sends the event to every sink and joins their errors
func (m *Multi) Publish(ctx context.Context, event RaceEvent) error {
	var errs []error
	for _, p := range m.publishers {
		err := p.Publish(ctx, event)
		metrics.RecordPublish(p.Name(), err)
		if err != nil {
			if m.logger != nil {
				m.logger.LogPublishFailure(p.Name(), event.Race.ID, err)
			}
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}
