package scan

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/muurk/bleradar/internal/discovery"
	"github.com/muurk/bleradar/internal/logging"
	"github.com/muurk/bleradar/internal/publish"
	"github.com/muurk/bleradar/internal/radio"
)

// Supervisor runs one Controller per adapter of a transport.
type Supervisor struct {
	transport radio.Transport
	enricher  *discovery.Enricher
	publisher publish.Publisher
	opts      Options

	mu          sync.Mutex
	controllers []*Controller
}

// NewSupervisor creates a Supervisor. The enricher and publisher are shared
// by every adapter loop.
func NewSupervisor(transport radio.Transport, enricher *discovery.Enricher, publisher publish.Publisher, opts Options) *Supervisor {
	return &Supervisor{
		transport: transport,
		enricher:  enricher,
		publisher: publisher,
		opts:      opts,
	}
}

// Run lists the adapters and runs their loops concurrently. It returns when
// every loop has exited; the fatal errors of individual adapters are
// combined.
func (s *Supervisor) Run(ctx context.Context) error {
	adapters, err := s.transport.ListAdapters(ctx)
	if err != nil {
		return fmt.Errorf("failed to list adapters: %w", err)
	}
	if len(adapters) == 0 {
		return fmt.Errorf("no radio adapters available")
	}

	controllers := make([]*Controller, len(adapters))
	for i, a := range adapters {
		controllers[i] = NewController(a, s.enricher, s.publisher, s.opts)
	}
	s.mu.Lock()
	s.controllers = controllers
	s.mu.Unlock()

	logging.Info("Starting scan loops", zap.Int("adapters", len(adapters)))

	var (
		wg     sync.WaitGroup
		errMu  sync.Mutex
		result error
	)
	for _, c := range controllers {
		wg.Add(1)
		go func(c *Controller) {
			defer wg.Done()
			if err := c.Run(ctx); err != nil {
				errMu.Lock()
				result = multierr.Append(result, err)
				errMu.Unlock()
			}
		}(c)
	}
	wg.Wait()

	return result
}

// Controllers returns the running controllers, one per adapter.
func (s *Supervisor) Controllers() []*Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Controller(nil), s.controllers...)
}
