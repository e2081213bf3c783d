package targets

import (
	"context"

	"github.com/samvad-hq/listfetch/pkg/listfetch"
)

// Batch is the decoded content of one target fetch.
type Batch struct {
	TargetID string
	Record   string
	Count    int
	Records  any // []T for the record kind's Go type
}

// Fetcher starts the fetch of one target and returns without waiting for it.
type Fetcher interface {
	Record() string
	Fetch(ctx context.Context, t Target) *listfetch.Future[Batch]
}

// FetcherRegistry resolves the fetcher for a target's record kind.
type FetcherRegistry interface {
	FetcherFor(t Target) (Fetcher, error)
}
