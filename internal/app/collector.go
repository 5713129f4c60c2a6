package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/bitflyer-go/internal/config"
	"github.com/samvad-hq/bitflyer-go/internal/logger"
	"github.com/samvad-hq/bitflyer-go/internal/poller"
	"github.com/samvad-hq/bitflyer-go/internal/storage"
	"github.com/samvad-hq/bitflyer-go/pkg/bitflyer"
	"github.com/samvad-hq/bitflyer-go/pkg/feeds"
	"github.com/samvad-hq/bitflyer-go/pkg/publishers"
)

// Collector polls configured feeds on an interval and publishes changed
// snapshots. It owns the API client, the publishers and the fingerprint store.
type Collector struct {
	cfg          *config.Config
	feedReg      *feeds.Registry
	client       *bitflyer.Client
	fanout       *publishers.Fanout
	pollService  *poller.Service
	pollInterval time.Duration
	log          logger.Logger
	store        storage.Store
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

	feedReg, err := feeds.LoadRegistry(cfg.FeedsFile)
	if err != nil {
		return nil, fmt.Errorf("load feeds registry: %w", err)
	}
	feedList := feedReg.Enabled()
	feedIDs := make([]string, 0, len(feedList))
	for _, f := range feedList {
		feedIDs = append(feedIDs, f.ID)
	}
	log.InfoObj("feeds registry loaded", "feeds_meta", map[string]any{
		"count": len(feedIDs),
		"ids":   feedIDs,
	})

	client := NewClient(cfg, log)
	for _, f := range feedList {
		if ep, ok := f.EndpointSpec(); ok && ep.Private && !client.Authenticated() {
			client.Close()
			return nil, fmt.Errorf("feed %q polls private endpoint %q but no api credentials are configured", f.ID, ep.Name)
		}
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		client.Close()
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		TTL:             cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		fanout.Close()
		client.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"ttl_seconds":              int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	return &Collector{
		cfg:          cfg,
		feedReg:      feedReg,
		client:       client,
		fanout:       fanout,
		pollService:  poller.NewService(client, fanout, log, store),
		pollInterval: cfg.PollInterval,
		log:          log,
		store:        store,
	}, nil
}

// Run starts the poll loop until the context is cancelled.
func (c *Collector) Run(ctx context.Context) error {
	if c == nil || c.pollService == nil {
		return fmt.Errorf("collector is not initialized")
	}
	defer c.close()

	feedList := c.feedReg.Enabled()
	if len(feedList) == 0 {
		c.log.WarnObj("no feeds enabled; collector idle", "feeds_file", c.cfg.FeedsFile)
		<-ctx.Done()
		return nil
	}

	c.log.InfoObj("collector loop starting", "collector_state", map[string]any{
		"feeds_count":      len(feedList),
		"publishers_count": c.fanout.Size(),
		"poll_interval":    c.pollInterval.String(),
	})

	if err := c.runOnce(ctx, feedList); err != nil {
		c.log.ErrorObj("initial poll failed", "error", err)
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.InfoObj("collector loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := c.runOnce(ctx, feedList); err != nil {
				c.log.ErrorObj("scheduled poll failed", "error", err)
			}
		}
	}
}

func (c *Collector) runOnce(ctx context.Context, feedList []feeds.Feed) error {
	start := time.Now()
	c.log.InfoObj("poll started", "poll_meta", map[string]any{
		"feeds_count": len(feedList),
		"started_at":  start.UTC(),
	})
	if err := c.pollService.Run(ctx, feedList); err != nil {
		return err
	}
	c.log.InfoObj("poll completed", "poll_meta", map[string]any{
		"feeds_count": len(feedList),
		"elapsed_ms":  time.Since(start).Milliseconds(),
	})
	return nil
}

// close releases the store, publishers and API session, logging failures.
func (c *Collector) close() {
	if err := c.store.Close(); err != nil {
		c.log.ErrorObj("storage close failed", "error", err)
	}
	if err := c.fanout.Close(); err != nil {
		c.log.ErrorObj("publishers close failed", "error", err)
	}
	if err := c.client.Close(); err != nil {
		c.log.ErrorObj("api session close failed", "error", err)
	}
}
