package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/bleradar/internal/discovery"
	"github.com/muurk/bleradar/internal/logging"
	"github.com/muurk/bleradar/internal/publish"
	"github.com/muurk/bleradar/internal/radio"
)

const (
	// DefaultDwell is how long advertisements accumulate in each cycle.
	DefaultDwell = 10 * time.Second

	// DefaultInterval is the pause between cycles.
	DefaultInterval = 5 * time.Second

	// stopTimeout bounds the best-effort StopScan issued when a cycle ends.
	stopTimeout = 5 * time.Second
)

// Options configures a Controller. Zero durations select the defaults.
type Options struct {
	Dwell    time.Duration
	Interval time.Duration

	// CarryForward seeds each cycle with the previous snapshot's devices,
	// so peripherals that were not heard this time remain listed (marked
	// Carried) for one more cycle.
	CarryForward bool
}

// Controller owns one adapter and runs its scan cycles. At most one cycle
// is in flight at a time.
type Controller struct {
	adapter   radio.Adapter
	enricher  *discovery.Enricher
	publisher publish.Publisher
	opts      Options

	state atomic.Int32
	cycle uint64

	mu     sync.RWMutex
	latest *discovery.Snapshot

	// wait blocks for d or until ctx is done. Replaced in tests.
	wait func(ctx context.Context, d time.Duration) error
	now  func() time.Time
}

// NewController creates a Controller. A nil publisher discards snapshots.
func NewController(adapter radio.Adapter, enricher *discovery.Enricher, publisher publish.Publisher, opts Options) *Controller {
	if opts.Dwell <= 0 {
		opts.Dwell = DefaultDwell
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if enricher == nil {
		enricher = discovery.NewEnricher(nil, nil)
	}
	if publisher == nil {
		publisher = publish.Nop
	}
	return &Controller{
		adapter:   adapter,
		enricher:  enricher,
		publisher: publisher,
		opts:      opts,
		wait:      sleep,
		now:       time.Now,
	}
}

// State returns the current phase. Safe to call from any goroutine.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Latest returns the last successfully completed snapshot, or nil.
func (c *Controller) Latest() *discovery.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}

func (c *Controller) setState(to State) {
	from := State(c.state.Swap(int32(to)))
	if from != to {
		logging.LogStateChange(c.adapter.ID(), from, to)
	}
}

// Run executes cycles until ctx is done, in which case it returns nil, or
// until the adapter refuses to start scanning, which is returned.
func (c *Controller) Run(ctx context.Context) error {
	id := c.adapter.ID()
	logging.Info("Scan loop started",
		zap.String("adapter", id),
		zap.Duration("dwell", c.opts.Dwell),
		zap.Duration("interval", c.opts.Interval),
		zap.Bool("carry_forward", c.opts.CarryForward),
	)
	defer logging.Info("Scan loop stopped", zap.String("adapter", id))

	for {
		if ctx.Err() != nil {
			return nil
		}

		_, err := c.RunCycle(ctx)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return nil
		case radio.IsScanStart(err):
			logging.Error("Adapter cannot scan", zap.String("adapter", id), zap.Error(err))
			return err
		default:
			logging.Warn("Scan cycle failed", zap.String("adapter", id), zap.Error(err))
		}

		if err := c.wait(ctx, c.opts.Interval); err != nil {
			return nil
		}
	}
}

// RunCycle performs one complete cycle and returns the published snapshot.
// On failure nothing is published and the previous snapshot is kept.
func (c *Controller) RunCycle(ctx context.Context) (*discovery.Snapshot, error) {
	defer c.setState(StateIdle)
	start := c.now()
	id := c.adapter.ID()

	c.setState(StateScanning)
	if err := c.adapter.StartScan(ctx, radio.Filter{}); err != nil {
		var rerr *radio.Error
		if !errors.As(err, &rerr) {
			err = radio.NewScanStartError(id, err)
		}
		return nil, err
	}
	defer c.stopScan()

	c.setState(StateSettling)
	if err := c.wait(ctx, c.opts.Dwell); err != nil {
		return nil, err
	}

	c.setState(StateCollecting)
	devices, err := c.collect(ctx)
	if err != nil {
		return nil, err
	}

	c.setState(StatePublishing)
	snap := &discovery.Snapshot{
		Adapter:   id,
		Cycle:     c.cycle + 1,
		Timestamp: c.now().UTC(),
		Devices:   discovery.Rank(c.enricher.EnrichAll(devices)),
	}
	if err := c.publisher.Publish(ctx, snap); err != nil {
		return nil, fmt.Errorf("publish cycle %d: %w", snap.Cycle, err)
	}

	c.cycle = snap.Cycle
	c.mu.Lock()
	c.latest = snap
	c.mu.Unlock()

	logging.LogCycle(id, snap.Cycle, snap.Len(), c.now().Sub(start))
	return snap, nil
}

// collect reads the visible peripherals into a fresh registry.
func (c *Controller) collect(ctx context.Context) ([]discovery.Device, error) {
	id := c.adapter.ID()

	peripherals, err := c.adapter.VisiblePeripherals(ctx)
	if err != nil {
		var rerr *radio.Error
		if !errors.As(err, &rerr) {
			err = radio.NewScanReadError(id, err)
		}
		return nil, err
	}

	reg := discovery.NewRegistry()
	if c.opts.CarryForward {
		if prev := c.Latest(); prev != nil {
			reg.Seed(prev.Devices)
		}
	}

	for _, p := range peripherals {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		props, err := p.Properties(ctx)
		if err != nil {
			logging.LogPeripheralSkipped(id, p.Address(), err)
			continue
		}
		obs := discovery.Observation{Address: p.Address()}
		if props != nil {
			obs.Name = props.Name
			obs.TxPower = props.TxPower
			obs.RSSI = props.RSSI
			obs.ServiceIDs = props.ServiceUUIDs
		}
		reg.Upsert(obs)
	}

	return reg.Finalize(), nil
}

// stopScan stops the adapter's scan. Failures are logged, never returned.
func (c *Controller) stopScan() {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := c.adapter.StopScan(ctx); err != nil {
		logging.Warn("Failed to stop scan",
			zap.String("adapter", c.adapter.ID()),
			zap.Error(err),
		)
	}
}

// sleep waits for d unless ctx is done first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
