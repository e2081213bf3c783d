package publishers

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Fanout hands every outcome event to each configured sink in turn.
// A nil or empty Fanout accepts events and delivers nowhere.
type Fanout struct {
	sinks []Publisher
}

// NewFanout ignores nil entries in pubs.
func NewFanout(pubs []Publisher) *Fanout {
	f := &Fanout{sinks: make([]Publisher, 0, len(pubs))}
	for _, p := range pubs {
		if p != nil {
			f.sinks = append(f.sinks, p)
		}
	}
	return f
}

// Publish tries every sink even after a failure. delivered counts the sinks
// that accepted evt; err joins the failures of the rest.
func (f *Fanout) Publish(ctx context.Context, evt Event) (delivered int, err error) {
	if f == nil {
		return 0, nil
	}
	var failures []error
	for _, p := range f.sinks {
		if perr := p.Publish(ctx, evt); perr != nil {
			failures = append(failures, fmt.Errorf("%s sink %s: %w", p.Type(), p.ID(), perr))
			continue
		}
		delivered++
	}
	return delivered, errors.Join(failures...)
}

// Size reports how many sinks receive events.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}

// Close shuts down sinks that own client connections (Pub/Sub).
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var failures []error
	for _, p := range f.sinks {
		c, ok := p.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			failures = append(failures, fmt.Errorf("close %s sink %s: %w", p.Type(), p.ID(), err))
		}
	}
	return errors.Join(failures...)
}
