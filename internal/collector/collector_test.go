package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/samvad-hq/listfetch/internal/domain"
	"github.com/samvad-hq/listfetch/internal/storage"
	"github.com/samvad-hq/listfetch/pkg/listfetch"
	"github.com/samvad-hq/listfetch/pkg/publishers"
	"github.com/samvad-hq/listfetch/pkg/targets"
)

// fakeFetcher settles every fetch with a preset outcome keyed by target id.
type fakeFetcher struct {
	batches map[string]targets.Batch
	errs    map[string]error
}

func (f *fakeFetcher) Record() string { return targets.RecordAnimal }
func (f *fakeFetcher) Fetch(_ context.Context, t targets.Target) *listfetch.Future[targets.Batch] {
	if err := f.errs[t.ID]; err != nil {
		return listfetch.Settled(targets.Batch{}, err)
	}
	return listfetch.Settled(f.batches[t.ID], nil)
}

type fakeRegistry struct {
	fetcher targets.Fetcher
}

func (f *fakeRegistry) FetcherFor(t targets.Target) (targets.Fetcher, error) {
	if f.fetcher == nil || t.Record != targets.RecordAnimal {
		return nil, errors.New("missing fetcher")
	}
	return f.fetcher, nil
}

// fakePublisher records published events and can inject errors.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishers.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

type fakeStore struct {
	mu       sync.Mutex
	outcomes map[string]storage.Outcome
	err      error
}

func (f *fakeStore) Close() error { return nil }
func (f *fakeStore) Record(o storage.Outcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.outcomes == nil {
		f.outcomes = make(map[string]storage.Outcome)
	}
	f.outcomes[o.TargetID] = o
	return nil
}
func (f *fakeStore) Last(id string) (storage.Outcome, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.outcomes[id]
	return o, ok, nil
}

func TestServiceRunRecordsAndPublishesEveryOutcome(t *testing.T) {
	fetcher := &fakeFetcher{
		batches: map[string]targets.Batch{
			"zoo": {TargetID: "zoo", Record: targets.RecordAnimal, Count: 2},
		},
		errs: map[string]error{
			"farm": &listfetch.Error{Kind: listfetch.KindServerError, StatusCode: 500},
		},
	}
	pub := &fakePublisher{}
	store := &fakeStore{}
	svc := NewService(&fakeRegistry{fetcher: fetcher}, pub, nil, store)

	err := svc.Run(context.Background(), []targets.Target{
		{ID: "zoo", Record: targets.RecordAnimal},
		{ID: "farm", Record: targets.RecordAnimal},
	})
	if err == nil || !strings.Contains(err.Error(), "farm") {
		t.Fatalf("expected error mentioning farm, got %v", err)
	}
	if !listfetch.IsKind(err, listfetch.KindServerError) {
		t.Fatalf("expected joined error to keep the fetch kind, got %v", err)
	}

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(pub.events))
	}
	if pub.events[0].TargetID != "zoo" || pub.events[0].Status != publishers.StatusSucceeded {
		t.Fatalf("unexpected first event %+v", pub.events[0])
	}
	if pub.events[1].ErrorKind != string(listfetch.KindServerError) {
		t.Fatalf("unexpected second event %+v", pub.events[1])
	}

	zoo, ok, _ := store.Last("zoo")
	if !ok || zoo.Count != 2 || zoo.Status != storage.StatusSucceeded {
		t.Fatalf("unexpected zoo outcome %+v", zoo)
	}
	farm, ok, _ := store.Last("farm")
	if !ok || farm.Status != storage.StatusFailed || farm.ErrorKind != "server_error" {
		t.Fatalf("unexpected farm outcome %+v", farm)
	}
}

func TestServiceRunReportsUnresolvableTargets(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewService(&fakeRegistry{fetcher: &fakeFetcher{}}, pub, nil, nil)

	err := svc.Run(context.Background(), []targets.Target{{ID: "odd", Record: "mineral"}})
	if err == nil || !strings.Contains(err.Error(), "resolve fetcher") {
		t.Fatalf("expected resolve error, got %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].Status != publishers.StatusFailed {
		t.Fatalf("expected one failure event, got %+v", pub.events)
	}
}

func TestServiceRunToleratesSinkFailures(t *testing.T) {
	fetcher := &fakeFetcher{batches: map[string]targets.Batch{"zoo": {Count: 1}}}
	svc := NewService(&fakeRegistry{fetcher: fetcher},
		&fakePublisher{err: errors.New("sink down")}, nil, &fakeStore{err: errors.New("disk full")})

	if err := svc.Run(context.Background(), []targets.Target{{ID: "zoo", Record: targets.RecordAnimal}}); err != nil {
		t.Fatalf("sink failures must not fail the pass: %v", err)
	}
}

func TestServiceRunAllCancelsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pub := &fakePublisher{}
	svc := NewService(&fakeRegistry{fetcher: &fakeFetcher{}}, pub, nil, nil)
	errs := svc.runAll(ctx, []targets.Target{{ID: "zoo", Record: targets.RecordAnimal}})
	if len(errs) != 0 {
		t.Fatalf("expected no errors on cancelled context, got %v", errs)
	}
	if len(pub.events) != 0 {
		t.Fatalf("expected nothing published, got %d", len(pub.events))
	}
}

func TestServiceRunRejectsEmptyTargets(t *testing.T) {
	svc := NewService(&fakeRegistry{}, nil, nil, nil)
	if err := svc.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error when targets list empty")
	}
	var nilSvc *Service
	if err := nilSvc.Run(context.Background(), []targets.Target{{ID: "zoo"}}); err == nil {
		t.Fatalf("expected error from nil service")
	}
}

func TestServiceRunEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/animals":
			_, _ = w.Write([]byte(`[{"name":"Lion","description":"Big cat","max_weight_lbs":550}]`))
		default:
			http.Error(w, "gone", http.StatusGone)
		}
	}))
	defer srv.Close()

	pub := &fakePublisher{}
	svc := NewService(targets.DefaultFetcherRegistry(listfetch.New()), pub, nil, &fakeStore{})
	err := svc.Run(context.Background(), []targets.Target{
		{ID: "zoo", Record: targets.RecordAnimal, URL: srv.URL + "/animals"},
		{ID: "gone", Record: targets.RecordAnimal, URL: srv.URL + "/missing"},
	})
	if !listfetch.IsKind(err, listfetch.KindServerError) {
		t.Fatalf("expected server error for missing target, got %v", err)
	}

	animals, ok := pub.events[0].Records.([]domain.Animal)
	if !ok || len(animals) != 1 || animals[0].MaxWeightInLbs != 550 {
		t.Fatalf("unexpected records %#v", pub.events[0].Records)
	}
}
