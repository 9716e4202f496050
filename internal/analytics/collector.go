package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/JustinTDCT/mediacat/internal/logging"
	"github.com/JustinTDCT/mediacat/internal/metrics"
)

type Counter interface {
	Counts(ctx context.Context) (*Counts, error)
}

// Collector periodically copies catalog totals into the catalog size gauges.
type Collector struct {
	counter Counter
	cron    *cron.Cron
	timeout time.Duration
}

// NewCollector schedules collection with a cron spec such as "@every 1m".
func NewCollector(counter Counter, spec string) (*Collector, error) {
	c := &Collector{
		counter: counter,
		cron:    cron.New(),
		timeout: 10 * time.Second,
	}
	if _, err := c.cron.AddFunc(spec, c.collect); err != nil {
		return nil, fmt.Errorf("invalid collector schedule %q: %w", spec, err)
	}
	return c, nil
}

// Start collects once immediately, then on schedule.
func (c *Collector) Start() {
	go c.collect()
	c.cron.Start()
	logging.Info().Msg("analytics collector started")
}

// Stop waits for a running collection to finish.
func (c *Collector) Stop() {
	<-c.cron.Stop().Done()
	logging.Info().Msg("analytics collector stopped")
}

func (c *Collector) collect() {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	counts, err := c.counter.Counts(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("analytics collection failed")
		return
	}
	record(counts)
}

func record(c *Counts) {
	metrics.CatalogSize.WithLabelValues("users").Set(float64(c.Users))
	metrics.CatalogSize.WithLabelValues("active_users").Set(float64(c.ActiveUsers))
	metrics.CatalogSize.WithLabelValues("media").Set(float64(c.Media))
	metrics.CatalogSize.WithLabelValues("streams").Set(float64(c.Streams))
}
