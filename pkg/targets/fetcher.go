package targets

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/samvad-hq/listfetch/internal/domain"
	"github.com/samvad-hq/listfetch/pkg/listfetch"
)

// Known record kinds.
const (
	RecordAnimal = "animal"
	RecordJSON   = "json"
)

// recordFetcher decodes a target's body into []T.
type recordFetcher[T any] struct {
	record string
	lf     *listfetch.Fetcher
}

// NewRecordFetcher returns a Fetcher decoding targets of the given record kind into []T.
func NewRecordFetcher[T any](record string, lf *listfetch.Fetcher) Fetcher {
	if lf == nil {
		lf = listfetch.New()
	}
	return &recordFetcher[T]{record: strings.ToLower(strings.TrimSpace(record)), lf: lf}
}

func (f *recordFetcher[T]) Record() string { return f.record }

func (f *recordFetcher[T]) Fetch(ctx context.Context, t Target) *listfetch.Future[Batch] {
	if !strings.EqualFold(t.Record, f.record) {
		return listfetch.Settled(Batch{}, fmt.Errorf("%s fetcher received incompatible record kind %q", f.record, t.Record))
	}

	lf := f.lf
	if headers := Headers(t); len(headers) > 0 {
		lf = lf.WithHeaders(headers)
	}

	return listfetch.Map(listfetch.FetchList[T](ctx, lf, t.URL), func(records []T) (Batch, error) {
		return Batch{TargetID: t.ID, Record: f.record, Count: len(records), Records: records}, nil
	})
}

// fetcherRegistry implements FetcherRegistry.
type fetcherRegistry struct {
	mu       sync.RWMutex
	byRecord map[string]Fetcher
}

// NewFetcherRegistry builds a registry keyed by each fetcher's record kind.
func NewFetcherRegistry(fetchers ...Fetcher) FetcherRegistry {
	reg := &fetcherRegistry{byRecord: make(map[string]Fetcher)}
	for _, f := range fetchers {
		reg.register(f)
	}
	return reg
}

func (r *fetcherRegistry) register(f Fetcher) {
	if f == nil {
		return
	}
	key := strings.ToLower(strings.TrimSpace(f.Record()))
	if key == "" {
		return
	}

	r.mu.Lock()
	r.byRecord[key] = f
	r.mu.Unlock()
}

// FetcherFor selects the fetcher for the target's record kind.
func (r *fetcherRegistry) FetcherFor(t Target) (Fetcher, error) {
	if r == nil {
		return nil, fmt.Errorf("fetcher registry is nil")
	}
	key := strings.ToLower(strings.TrimSpace(t.Record))
	if key == "" {
		return nil, fmt.Errorf("target %q has no record kind", t.ID)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if f, ok := r.byRecord[key]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("no fetcher registered for target %q (record %q)", t.ID, t.Record)
}

// DefaultFetcherRegistry wires up the known record kinds on top of lf.
func DefaultFetcherRegistry(lf *listfetch.Fetcher) FetcherRegistry {
	if lf == nil {
		lf = listfetch.New()
	}
	return NewFetcherRegistry(
		NewRecordFetcher[domain.Animal](RecordAnimal, lf),
		NewRecordFetcher[map[string]any](RecordJSON, lf),
	)
}
