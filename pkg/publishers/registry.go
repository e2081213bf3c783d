package publishers

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Builder turns a validated declaration into a live sink.
type Builder func(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error)

// Registry resolves the Builder for a declaration's type.
type Registry interface {
	Register(typ string, builder Builder)
	PublisherFor(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error)
}

type builderSet struct {
	mu     sync.RWMutex
	byType map[string]Builder
}

// NewRegistry starts from the given builders; more can be added with Register.
func NewRegistry(builders map[string]Builder) Registry {
	r := &builderSet{byType: make(map[string]Builder, len(builders))}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// Register ignores blank types and nil builders. Types are case-insensitive.
func (r *builderSet) Register(typ string, builder Builder) {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if typ == "" || builder == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[typ] = builder
}

func (r *builderSet) PublisherFor(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	typ := strings.ToLower(strings.TrimSpace(cfg.Type))
	r.mu.RLock()
	build, ok := r.byType[typ]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("publisher %q: unsupported type %q", cfg.ID, cfg.Type)
	}
	return build(ctx, cfg, ensureLogger(log))
}

// DefaultRegistry knows every sink type this module ships.
func DefaultRegistry() Registry {
	return NewRegistry(map[string]Builder{
		TypeHTTP:   newHTTPPublisher,
		TypeSQS:    newSQSPublisher,
		TypeSNS:    newSNSPublisher,
		TypePubSub: newPubSubPublisher,
	})
}

// BuildAll builds one sink per declaration. On the first failure, sinks built
// so far are closed and nothing is returned.
func BuildAll(ctx context.Context, reg Registry, cfgs []PublisherConfig, log Logger) ([]Publisher, error) {
	if reg == nil {
		return nil, nil
	}
	pubs := make([]Publisher, 0, len(cfgs))
	for _, cfg := range cfgs {
		pub, err := reg.PublisherFor(ctx, cfg, log)
		if err != nil {
			_ = NewFanout(pubs).Close()
			return nil, err
		}
		pubs = append(pubs, pub)
	}
	return pubs, nil
}
