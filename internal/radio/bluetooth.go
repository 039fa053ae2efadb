package radio

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"github.com/muurk/bleradar/internal/logging"
)

const (
	// DefaultAdapterID names the host's default Bluetooth adapter.
	DefaultAdapterID = "default"

	// startGrace is how long StartScan waits for an immediate failure from
	// the stack before treating the scan as running.
	startGrace = 250 * time.Millisecond

	// stopTimeout bounds the wait for the scan goroutine after StopScan.
	stopTimeout = 5 * time.Second
)

// Bluetooth is the host's Bluetooth stack. tinygo's bluetooth package
// exposes a single default adapter, so ListAdapters always returns one.
type Bluetooth struct {
	adapter *hostAdapter
}

// NewBluetooth binds the host's default adapter. The adapter is enabled
// lazily on the first StartScan so that listing never touches the radio.
func NewBluetooth() *Bluetooth {
	return &Bluetooth{adapter: &hostAdapter{
		id:  DefaultAdapterID,
		dev: bluetooth.DefaultAdapter,
	}}
}

// ListAdapters implements Transport.
func (b *Bluetooth) ListAdapters(ctx context.Context) ([]Adapter, error) {
	if b.adapter.dev == nil {
		return nil, fmt.Errorf("no Bluetooth adapter available")
	}
	return []Adapter{b.adapter}, nil
}

// hostAdapter runs tinygo's blocking Scan in a goroutine and keeps the most
// recent result per address until the scan is stopped.
type hostAdapter struct {
	id  string
	dev *bluetooth.Adapter

	enableOnce sync.Once
	enableErr  error

	mu       sync.Mutex
	scanning bool
	scanErr  error
	done     chan struct{}
	results  map[string]bluetooth.ScanResult
	order    []string
}

func (a *hostAdapter) ID() string { return a.id }

func (a *hostAdapter) StartScan(ctx context.Context, filter Filter) error {
	a.enableOnce.Do(func() {
		a.enableErr = a.dev.Enable()
	})
	if a.enableErr != nil {
		return NewScanStartError(a.id, a.enableErr)
	}

	accept, err := filterFunc(filter)
	if err != nil {
		return NewScanStartError(a.id, err)
	}

	a.mu.Lock()
	if a.scanning {
		a.mu.Unlock()
		return NewScanStartError(a.id, fmt.Errorf("scan already in progress"))
	}
	a.scanning = true
	a.scanErr = nil
	a.results = make(map[string]bluetooth.ScanResult)
	a.order = nil
	done := make(chan struct{})
	a.done = done
	a.mu.Unlock()

	errc := make(chan error, 1)
	go func() {
		defer close(done)
		err := a.dev.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
			if accept(result) {
				a.record(result)
			}
		})
		errc <- err

		a.mu.Lock()
		if a.scanning && err != nil {
			a.scanErr = err
		}
		a.mu.Unlock()
	}()

	timer := time.NewTimer(startGrace)
	defer timer.Stop()

	select {
	case err := <-errc:
		if err != nil {
			a.mu.Lock()
			a.scanning = false
			a.mu.Unlock()
			return NewScanStartError(a.id, err)
		}
		// Scan returned cleanly before the grace period; nothing will be
		// recorded until the next start.
		logging.Warn("Scan ended immediately after start", zap.String("adapter", a.id))
		return nil
	case <-timer.C:
		return nil
	case <-ctx.Done():
		_ = a.dev.StopScan()
		a.mu.Lock()
		a.scanning = false
		a.mu.Unlock()
		return NewScanStartError(a.id, ctx.Err())
	}
}

func (a *hostAdapter) record(result bluetooth.ScanResult) {
	addr := strings.ToUpper(result.Address.String())

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.results[addr]; !ok {
		a.order = append(a.order, addr)
	}
	a.results[addr] = result
}

func (a *hostAdapter) StopScan(ctx context.Context) error {
	a.mu.Lock()
	if !a.scanning {
		a.mu.Unlock()
		return nil
	}
	a.scanning = false
	done := a.done
	a.mu.Unlock()

	if err := a.dev.StopScan(); err != nil {
		return NewScanStopError(a.id, err)
	}

	timer := time.NewTimer(stopTimeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return NewScanStopError(a.id, fmt.Errorf("scan did not exit within %v", stopTimeout))
	case <-ctx.Done():
		return NewScanStopError(a.id, ctx.Err())
	}
}

func (a *hostAdapter) VisiblePeripherals(ctx context.Context) ([]Peripheral, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.scanErr != nil {
		return nil, NewScanReadError(a.id, a.scanErr)
	}
	if a.results == nil {
		return nil, NewScanReadError(a.id, fmt.Errorf("no scan has been started"))
	}

	out := make([]Peripheral, 0, len(a.order))
	for _, addr := range a.order {
		out = append(out, hostPeripheral{adapter: a.id, address: addr, result: a.results[addr]})
	}
	return out, nil
}

// hostPeripheral is a frozen copy of the last advertisement from one address.
type hostPeripheral struct {
	adapter string
	address string
	result  bluetooth.ScanResult
}

func (p hostPeripheral) Address() string { return p.address }

func (p hostPeripheral) Properties(ctx context.Context) (props *Properties, err error) {
	// The platform payload implementations are outside our control.
	defer func() {
		if r := recover(); r != nil {
			props = nil
			err = NewPropertyError(p.adapter, p.address, fmt.Errorf("payload decode panic: %v", r))
		}
	}()

	if p.result.AdvertisementPayload == nil {
		return nil, nil
	}

	adv := ParseAdvertisement(p.result.Bytes())

	props = &Properties{TxPower: adv.TxPower, ServiceUUIDs: adv.ServiceUUIDs}
	rssi := p.result.RSSI
	props.RSSI = &rssi

	name := p.result.LocalName()
	if name == "" {
		name = adv.LocalName
	}
	if name != "" {
		props.Name = &name
	}

	// Stacks that do not expose raw bytes (BlueZ) still report service data.
	for _, sd := range p.result.ServiceData() {
		u := CanonicalUUID(sd.UUID.String())
		if !containsString(props.ServiceUUIDs, u) {
			props.ServiceUUIDs = append(props.ServiceUUIDs, u)
		}
	}
	return props, nil
}

func filterFunc(filter Filter) (func(bluetooth.ScanResult) bool, error) {
	if filter.AcceptsAll() {
		return func(bluetooth.ScanResult) bool { return true }, nil
	}
	uuids := make([]bluetooth.UUID, 0, len(filter.ServiceUUIDs))
	for _, s := range filter.ServiceUUIDs {
		u, err := bluetooth.ParseUUID(CanonicalUUID(s))
		if err != nil {
			return nil, fmt.Errorf("invalid filter UUID %q: %w", s, err)
		}
		uuids = append(uuids, u)
	}
	return func(r bluetooth.ScanResult) bool {
		for _, u := range uuids {
			if r.HasServiceUUID(u) {
				return true
			}
		}
		return false
	}, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
