package collector

import (
	"context"

	"github.com/samvad-hq/listfetch/pkg/publishers"
)

// EventPublisher forwards fetch outcomes downstream.
// It returns the number of sinks that accepted the event.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
