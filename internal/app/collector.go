package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/listfetch/internal/collector"
	"github.com/samvad-hq/listfetch/internal/config"
	"github.com/samvad-hq/listfetch/internal/logger"
	"github.com/samvad-hq/listfetch/internal/storage"
	"github.com/samvad-hq/listfetch/pkg/listfetch"
	"github.com/samvad-hq/listfetch/pkg/publishers"
	"github.com/samvad-hq/listfetch/pkg/targets"
)

// Collector represents the collector runtime. It owns the fetch loop and the
// resources shared across passes: the outcome journal and the publisher fanout.
type Collector struct {
	cfg           *config.Config
	targetReg     *targets.Registry
	fanout        *publishers.Fanout
	service       *collector.Service
	fetchInterval time.Duration
	log           logger.Logger
	store         storage.Store
}

// NewCollector builds a collector runtime from config files.
func NewCollector(ctx context.Context, cfg *config.Config, log logger.Logger) (*Collector, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	targetReg, err := targets.LoadRegistry(cfg.TargetsFile)
	if err != nil {
		return nil, fmt.Errorf("load targets registry: %w", err)
	}
	targetList := targetReg.All()
	targetIDs := make([]string, 0, len(targetList))
	for _, t := range targetList {
		targetIDs = append(targetIDs, t.ID)
	}
	log.InfoObj("targets registry loaded", "targets_meta", map[string]any{
		"count": len(targetIDs),
		"ids":   targetIDs,
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		OutcomeTTL:      cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"outcome_ttl_seconds":      int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	lf := listfetch.New(
		listfetch.WithTimeout(cfg.HTTPTimeout),
		listfetch.WithHeaders(map[string]string{"User-Agent": cfg.UserAgent}),
	)
	service := collector.NewService(targets.DefaultFetcherRegistry(lf), fanout, log, store)

	return &Collector{
		cfg:           cfg,
		targetReg:     targetReg,
		fanout:        fanout,
		service:       service,
		fetchInterval: cfg.FetchInterval,
		log:           log,
		store:         store,
	}, nil
}

// buildFanout loads the optional publishers file. Without one, outcomes are
// only journaled and logged.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		log.InfoObj("no publishers file configured; events are not forwarded", "publishers_file", path)
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Run performs one pass, then repeats every fetch interval until the context
// is cancelled. With no interval configured it returns after the first pass.
func (c *Collector) Run(ctx context.Context) error {
	if c == nil || c.service == nil {
		return fmt.Errorf("collector is not initialized")
	}
	defer c.close()

	tgts := c.targetReg.All()
	c.log.InfoObj("collector starting", "collector_state", map[string]any{
		"targets_count":    len(tgts),
		"publishers_count": c.fanout.Size(),
		"fetch_interval":   c.fetchInterval.String(),
	})

	if c.fetchInterval <= 0 {
		return c.runOnce(ctx, tgts)
	}

	if err := c.runOnce(ctx, tgts); err != nil {
		c.log.ErrorObj("initial pass failed", "error", err.Error())
	}

	ticker := time.NewTicker(c.fetchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.InfoObj("collector loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := c.runOnce(ctx, tgts); err != nil {
				c.log.ErrorObj("scheduled pass failed", "error", err.Error())
			}
		}
	}
}

// runOnce performs a single fetch pass across all targets.
func (c *Collector) runOnce(ctx context.Context, tgts []targets.Target) error {
	start := time.Now()
	c.log.InfoObj("pass started", "pass_meta", map[string]any{
		"targets_count": len(tgts),
		"started_at":    start.UTC(),
	})
	if err := c.service.Run(ctx, tgts); err != nil {
		return err
	}
	c.log.InfoObj("pass completed", "pass_meta", map[string]any{
		"targets_count": len(tgts),
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return nil
}

// close releases the outcome journal and publisher clients, logging any errors encountered.
func (c *Collector) close() {
	if err := c.fanout.Close(); err != nil {
		c.log.ErrorObj("publishers close failed", "error", err.Error())
	}
	if c.store == nil {
		return
	}
	if err := c.store.Close(); err != nil {
		c.log.ErrorObj("storage close failed", "error", err.Error())
	}
}
