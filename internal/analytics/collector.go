package analytics

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/resilience"
)

// Publisher ships a batch of events. *kafka.Producer implements it.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Sink observes every tracked event in-process. *Aggregator implements it.
type Sink interface {
	Record(event any)
}

// Collector buffers events without blocking the request path, feeds them to
// in-process sinks and publishes them in batches. A nil publisher keeps
// events local.
type Collector struct {
	publisher     Publisher
	sinks         []Sink
	eventCh       chan any
	batchSize     int
	flushInterval time.Duration
	retry         resilience.RetryConfig
	logger        *slog.Logger
	done          chan struct{}
	started       atomic.Bool
	published     atomic.Int64
	dropped       atomic.Int64
}

func NewCollector(publisher Publisher, cfg config.AnalyticsConfig, sinks ...Sink) *Collector {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	return &Collector{
		publisher:     publisher,
		sinks:         sinks,
		eventCh:       make(chan any, cfg.BufferSize),
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		retry: resilience.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
		},
		logger: slog.Default().With("component", "analytics-collector"),
		done:   make(chan struct{}),
	}
}

// Start runs the collection loop until ctx is cancelled, then drains the
// buffer and flushes once more.
func (c *Collector) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	go c.run(ctx)
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.eventCh),
		"batch_size", c.batchSize,
		"publishing", c.publisher != nil,
	)
}

// Track enqueues event; it drops the event when the buffer is full.
func (c *Collector) Track(event any) {
	select {
	case c.eventCh <- event:
	default:
		c.dropped.Add(1)
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close waits for the loop started by Start to finish.
func (c *Collector) Close() {
	if c.started.Load() {
		<-c.done
	}
}

// Published and Dropped report event counts since start.
func (c *Collector) Published() int64 { return c.published.Load() }

func (c *Collector) Dropped() int64 { return c.dropped.Load() }

func (c *Collector) run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	batch := make([]kafka.Event, 0, c.batchSize)
	for {
		select {
		case event := <-c.eventCh:
			batch = c.handle(ctx, event, batch)
		case <-ticker.C:
			batch = c.flush(ctx, batch)
		case <-ctx.Done():
			batch = c.drain(batch)
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			c.flush(flushCtx, batch)
			cancel()
			return
		}
	}
}

func (c *Collector) drain(batch []kafka.Event) []kafka.Event {
	for {
		select {
		case event := <-c.eventCh:
			batch = c.handle(context.Background(), event, batch)
		default:
			return batch
		}
	}
}

func (c *Collector) handle(ctx context.Context, event any, batch []kafka.Event) []kafka.Event {
	for _, s := range c.sinks {
		s.Record(event)
	}
	if c.publisher == nil {
		return batch
	}
	batch = append(batch, kafka.Event{Key: Key(event), Type: string(TypeOf(event)), Value: event})
	if len(batch) >= c.batchSize {
		return c.flush(ctx, batch)
	}
	return batch
}

func (c *Collector) flush(ctx context.Context, batch []kafka.Event) []kafka.Event {
	if len(batch) == 0 || c.publisher == nil {
		return batch[:0]
	}
	err := resilience.Retry(ctx, "analytics-publish", c.retry, func() error {
		return c.publisher.PublishBatch(ctx, batch)
	})
	if err != nil {
		c.dropped.Add(int64(len(batch)))
		c.logger.Error("analytics batch dropped", "events", len(batch), "error", err)
	} else {
		c.published.Add(int64(len(batch)))
		c.logger.Debug("analytics batch published", "events", len(batch))
	}
	return batch[:0]
}
