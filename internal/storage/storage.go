package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage keeps a journal of the latest fetch outcome per target.

// Outcome statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Outcome is the terminal result of one target fetch, as remembered by the journal.
type Outcome struct {
	TargetID   string    `json:"target_id"`
	RecordKind string    `json:"record_kind"`
	Status     string    `json:"status"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Error      string    `json:"error,omitempty"`
	Count      int       `json:"count"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// Store records fetch outcomes.
type Store interface {
	Close() error
	Record(o Outcome) error
	Last(targetID string) (Outcome, bool, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	OutcomeTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultOutcomeTTL      = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.OutcomeTTL <= 0 {
		opts.OutcomeTTL = defaultOutcomeTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                       { return nil }
func (noopStore) Record(Outcome) error               { return nil }
func (noopStore) Last(string) (Outcome, bool, error) { return Outcome{}, false, nil }
