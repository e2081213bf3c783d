package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/listfetch/internal/logger"
	"github.com/samvad-hq/listfetch/internal/storage"
	"github.com/samvad-hq/listfetch/pkg/listfetch"
	"github.com/samvad-hq/listfetch/pkg/publishers"
	"github.com/samvad-hq/listfetch/pkg/targets"
)

// Service coordinates one fetch pass across multiple targets.
type Service struct {
	registry  targets.FetcherRegistry
	publisher EventPublisher
	store     storage.Store
	log       logger.Logger
}

// NewService wires a collector with the target fetcher registry.
// A nil publisher or store disables that stage.
func NewService(reg targets.FetcherRegistry, pub EventPublisher, log logger.Logger, store storage.Store) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		registry:  reg,
		publisher: pub,
		store:     store,
		log:       log,
	}
}

// pending pairs a target with its in-flight fetch.
type pending struct {
	target targets.Target
	future *listfetch.Future[targets.Batch]
}

// Run fetches every target concurrently and handles each outcome.
// Fetch failures are reported per target and joined into the returned error.
func (s *Service) Run(ctx context.Context, tgts []targets.Target) error {
	if s == nil || s.registry == nil {
		return fmt.Errorf("collector service is not initialized")
	}
	if len(tgts) == 0 {
		return fmt.Errorf("no targets configured for collection")
	}

	errs := s.runAll(ctx, tgts)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (s *Service) runAll(ctx context.Context, tgts []targets.Target) []error {
	inflight := make([]pending, 0, len(tgts))
	for _, t := range tgts {
		if ctx.Err() != nil {
			break
		}
		fetcher, err := s.registry.FetcherFor(t)
		if err != nil {
			err = fmt.Errorf("resolve fetcher for target %s: %w", t.ID, err)
			inflight = append(inflight, pending{target: t, future: listfetch.Settled(targets.Batch{}, err)})
			continue
		}
		inflight = append(inflight, pending{target: t, future: fetcher.Fetch(ctx, t)})
	}

	errs := make([]error, 0, len(inflight))
	for _, p := range inflight {
		select {
		case <-p.future.Done():
		case <-ctx.Done():
			// Shutting down; in-flight fetches observe the same ctx.
			return errs
		}
		res, _ := p.future.Result()
		if err := s.handle(ctx, p.target, res.Value, res.Err); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// handle records, publishes and logs one fetch outcome.
func (s *Service) handle(ctx context.Context, t targets.Target, batch targets.Batch, fetchErr error) error {
	evt := publishers.NewEvent(t, batch, fetchErr)

	if s.store != nil {
		if err := s.store.Record(outcomeFromEvent(evt)); err != nil {
			s.log.WarnObj("outcome journal write failed", "storage_error", map[string]any{
				"target_id": t.ID,
				"error":     err.Error(),
			})
		}
	}

	if s.publisher != nil {
		if _, err := s.publisher.Publish(ctx, evt); err != nil {
			s.log.ErrorObj("event publish failed", "publish_error", map[string]any{
				"target_id": t.ID,
				"error":     err.Error(),
			})
		}
	}

	if fetchErr != nil {
		s.log.ErrorObj("target fetch failed", "target_error", map[string]any{
			"target_id":  t.ID,
			"error_kind": evt.ErrorKind,
			"error":      fetchErr.Error(),
		})
		return fmt.Errorf("fetch target %s: %w", t.ID, fetchErr)
	}

	s.log.InfoObj("target fetch completed", "target_result", map[string]any{
		"target_id":         t.ID,
		"record":            batch.Record,
		"records_collected": batch.Count,
	})
	return nil
}

func outcomeFromEvent(evt publishers.Event) storage.Outcome {
	return storage.Outcome{
		TargetID:   evt.TargetID,
		RecordKind: evt.Record,
		Status:     evt.Status,
		ErrorKind:  evt.ErrorKind,
		Error:      evt.Error,
		Count:      evt.Count,
		FetchedAt:  evt.FetchedAt,
	}
}
