package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestBolt(t *testing.T, opts Options) *boltStore {
	t.Helper()
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "outcomes.db"), normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStoreRecordsLatestOutcome(t *testing.T) {
	store := openTestBolt(t, Options{})

	if _, found, err := store.Last("zoo"); err != nil || found {
		t.Fatalf("expected no outcome, found=%v err=%v", found, err)
	}

	first := Outcome{TargetID: "zoo", RecordKind: "animal", Status: StatusFailed, ErrorKind: "server_error", FetchedAt: time.Unix(100, 0).UTC()}
	second := Outcome{TargetID: "zoo", RecordKind: "animal", Status: StatusSucceeded, Count: 3, FetchedAt: time.Unix(200, 0).UTC()}
	if err := store.Record(first); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(second); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, found, err := store.Last("zoo")
	if err != nil || !found {
		t.Fatalf("Last: found=%v err=%v", found, err)
	}
	if got.Status != StatusSucceeded || got.Count != 3 || !got.FetchedAt.Equal(second.FetchedAt) {
		t.Fatalf("unexpected outcome %+v", got)
	}
}

func TestBoltStoreExpiresOutcomes(t *testing.T) {
	store := openTestBolt(t, Options{OutcomeTTL: time.Minute, CleanupInterval: time.Hour})
	clock := time.Now()
	store.now = func() time.Time { return clock }

	if err := store.Record(Outcome{TargetID: "zoo", Status: StatusSucceeded}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	clock = clock.Add(2 * time.Minute)
	if _, found, err := store.Last("zoo"); err != nil || found {
		t.Fatalf("expected expired outcome, found=%v err=%v", found, err)
	}
}

func TestBoltStoreCleanupSweepsExpired(t *testing.T) {
	store := openTestBolt(t, Options{OutcomeTTL: time.Minute, CleanupInterval: time.Minute})
	clock := time.Now()
	store.now = func() time.Time { return clock }

	if err := store.Record(Outcome{TargetID: "old", Status: StatusSucceeded}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	// Fast-forward past both the TTL and the cleanup cadence.
	clock = clock.Add(3 * time.Minute)
	if err := store.Record(Outcome{TargetID: "new", Status: StatusSucceeded}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if _, found, _ := store.Last("old"); found {
		t.Fatalf("expected old outcome to be swept")
	}
	if _, found, err := store.Last("new"); err != nil || !found {
		t.Fatalf("expected new outcome, found=%v err=%v", found, err)
	}
}

func TestBoltStoreRejectsEmptyTargetID(t *testing.T) {
	store := openTestBolt(t, Options{})
	if err := store.Record(Outcome{TargetID: "  "}); err == nil {
		t.Fatalf("expected error for empty target id")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Record(Outcome{TargetID: "x"}); err != nil {
		t.Fatalf("noop store Record: %v", err)
	}
	if _, found, _ := store.Last("x"); found {
		t.Fatalf("noop store must not remember outcomes")
	}
}

func TestNewStoreValidatesType(t *testing.T) {
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing bbolt path")
	}
	if _, err := NewStore("redis", "x", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}
