package radio

import "context"

// Transport enumerates the radio adapters available on this host.
type Transport interface {
	ListAdapters(ctx context.Context) ([]Adapter, error)
}

// Adapter is one radio that can passively observe advertisements.
type Adapter interface {
	// ID names the adapter in logs and published snapshots.
	ID() string
	StartScan(ctx context.Context, filter Filter) error
	StopScan(ctx context.Context) error
	VisiblePeripherals(ctx context.Context) ([]Peripheral, error)
}

// Peripheral is a device seen by an adapter during the current scan.
type Peripheral interface {
	Address() string
	// Properties returns nil, nil when nothing has been advertised yet.
	Properties(ctx context.Context) (*Properties, error)
}

// Properties are the advertised fields of one peripheral. Nil pointers mean
// the field was not advertised.
type Properties struct {
	Name         *string
	TxPower      *int16
	RSSI         *int16
	ServiceUUIDs []string
}

// Filter restricts which advertisements are recorded. The zero Filter
// accepts everything.
type Filter struct {
	ServiceUUIDs []string
}

// AcceptsAll reports whether the filter is empty.
func (f Filter) AcceptsAll() bool {
	return len(f.ServiceUUIDs) == 0
}
