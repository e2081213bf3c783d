package publishers

import (
	"time"

	"github.com/samvad-hq/listfetch/pkg/listfetch"
	"github.com/samvad-hq/listfetch/pkg/targets"
)

// Event statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Event represents the payload published downstream for one target fetch.
type Event struct {
	TargetID   string    `json:"target_id"`
	TargetName string    `json:"target_name"`
	Record     string    `json:"record"`
	Status     string    `json:"status"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Error      string    `json:"error,omitempty"`
	Count      int       `json:"count"`
	Records    any       `json:"records,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// NewEvent constructs an Event from the outcome of fetching t.
func NewEvent(t targets.Target, batch targets.Batch, err error) Event {
	evt := Event{
		TargetID:   t.ID,
		TargetName: t.Name,
		Record:     t.Record,
		FetchedAt:  time.Now().UTC(),
	}
	if err != nil {
		evt.Status = StatusFailed
		evt.Error = err.Error()
		if kind, ok := listfetch.KindOf(err); ok {
			evt.ErrorKind = string(kind)
		}
		return evt
	}

	evt.Status = StatusSucceeded
	evt.Count = batch.Count
	evt.Records = batch.Records
	return evt
}
