package radio

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
)

// Simulated is an in-memory Transport.
type Simulated struct {
	Adapters []*SimulatedAdapter
	ListErr  error
}

// ListAdapters implements Transport.
func (s *Simulated) ListAdapters(ctx context.Context) ([]Adapter, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := make([]Adapter, 0, len(s.Adapters))
	for _, a := range s.Adapters {
		out = append(out, a)
	}
	return out, nil
}

// ScriptFunc returns what an adapter sees during scan number n (1-based).
type ScriptFunc func(n int) ([]Peripheral, error)

// SimulatedAdapter replays a script, one step per scan.
type SimulatedAdapter struct {
	Name     string
	Script   ScriptFunc
	StartErr error
	StopErr  error

	mu       sync.Mutex
	scans    int
	stops    int
	scanning bool
}

// ID implements Adapter.
func (a *SimulatedAdapter) ID() string { return a.Name }

// StartScan implements Adapter.
func (a *SimulatedAdapter) StartScan(ctx context.Context, filter Filter) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.StartErr != nil {
		return NewScanStartError(a.Name, a.StartErr)
	}
	if a.scanning {
		return NewScanStartError(a.Name, fmt.Errorf("scan already in progress"))
	}
	a.scans++
	a.scanning = true
	return nil
}

// StopScan implements Adapter.
func (a *SimulatedAdapter) StopScan(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stops++
	a.scanning = false
	if a.StopErr != nil {
		return NewScanStopError(a.Name, a.StopErr)
	}
	return nil
}

// VisiblePeripherals implements Adapter.
func (a *SimulatedAdapter) VisiblePeripherals(ctx context.Context) ([]Peripheral, error) {
	a.mu.Lock()
	n, scanning := a.scans, a.scanning
	a.mu.Unlock()

	if !scanning {
		return nil, NewScanReadError(a.Name, fmt.Errorf("scan not running"))
	}
	if a.Script == nil {
		return nil, nil
	}
	peripherals, err := a.Script(n)
	if err != nil {
		return nil, NewScanReadError(a.Name, err)
	}
	return peripherals, nil
}

// Scans returns how many scans were started.
func (a *SimulatedAdapter) Scans() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scans
}

// Stops returns how many times StopScan was called.
func (a *SimulatedAdapter) Stops() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stops
}

// SimulatedPeripheral is a fixed peripheral. Err, when set, is returned
// from Properties as a KindProperty error.
type SimulatedPeripheral struct {
	Addr  string
	Props *Properties
	Err   error
}

// Address implements Peripheral.
func (p SimulatedPeripheral) Address() string { return p.Addr }

// Properties implements Peripheral.
func (p SimulatedPeripheral) Properties(ctx context.Context) (*Properties, error) {
	if p.Err != nil {
		return nil, NewPropertyError("simulated", p.Addr, p.Err)
	}
	return p.Props, nil
}

// demoDevice is one peripheral of the demo population.
type demoDevice struct {
	addr     string
	name     string
	tx       int16
	rssi     int
	services []string
	presence float64
}

var demoPopulation = []demoDevice{
	{"AC:23:3F:A1:02:10", "Beacon-01", -4, -58, []string{"0000feaa-0000-1000-8000-00805f9b34fb"}, 0.95},
	{"F4:5E:AB:11:22:33", "Thermo", 0, -71, []string{"0000181a-0000-1000-8000-00805f9b34fb", "0000180f-0000-1000-8000-00805f9b34fb"}, 0.9},
	{"00:1A:7D:DA:71:13", "", -8, -85, []string{"0000180d-0000-1000-8000-00805f9b34fb"}, 0.6},
	{"D0:03:4B:55:66:77", "Headphones", 4, -49, []string{"0000fe2c-0000-1000-8000-00805f9b34fb", "0000110b-0000-1000-8000-00805f9b34fb"}, 0.8},
	{"C8:FD:19:00:AB:CD", "Tag", -12, -90, nil, 0.5},
	{"5C:F3:70:40:41:42", "HR Strap", 0, -66, []string{"0000180d-0000-1000-8000-00805f9b34fb", "0000180a-0000-1000-8000-00805f9b34fb"}, 0.85},
}

// NewDemo returns a single-adapter transport whose peripherals come and go
// and whose signal strengths wander from scan to scan. The same seed always
// produces the same sequence.
func NewDemo(seed int64) *Simulated {
	rng := rand.New(rand.NewSource(seed))
	var mu sync.Mutex

	script := func(n int) ([]Peripheral, error) {
		mu.Lock()
		defer mu.Unlock()

		var out []Peripheral
		for _, d := range demoPopulation {
			if rng.Float64() > d.presence {
				continue
			}
			props := &Properties{ServiceUUIDs: append([]string(nil), d.services...)}
			if d.name != "" {
				name := d.name
				props.Name = &name
			}
			tx := d.tx
			props.TxPower = &tx
			rssi := int16(d.rssi + rng.Intn(11) - 5)
			props.RSSI = &rssi
			out = append(out, SimulatedPeripheral{Addr: d.addr, Props: props})
		}
		return out, nil
	}

	return &Simulated{Adapters: []*SimulatedAdapter{{Name: "sim0", Script: script}}}
}
