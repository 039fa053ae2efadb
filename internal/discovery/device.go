package discovery

import (
	"fmt"
	"strings"
	"time"
)

// Device is the canonical record for one peripheral within a scan cycle.
type Device struct {
	// Address is the hardware address in upper-case colon form; it is the
	// identity key.
	Address string `json:"address" yaml:"address"`

	// Name is the last non-empty advertised local name
	Name *string `json:"name,omitempty" yaml:"name,omitempty"`

	// TxPower is the advertised transmit power in dBm
	TxPower *int16 `json:"tx_power,omitempty" yaml:"tx_power,omitempty"`

	// Vendor is resolved from the address prefix during enrichment
	Vendor *string `json:"vendor,omitempty" yaml:"vendor,omitempty"`

	// RSSI is the most recent received signal strength in dBm
	RSSI *int16 `json:"rssi,omitempty" yaml:"rssi,omitempty"`

	// ServiceIDs holds advertised service UUIDs, first-seen order, no duplicates
	ServiceIDs []string `json:"service_ids" yaml:"service_ids"`

	// ServiceDescriptions is positionally aligned with ServiceIDs; nil
	// entries are identifiers with no known description.
	ServiceDescriptions []*string `json:"service_descriptions" yaml:"service_descriptions"`

	// Carried marks a record seeded from the previous cycle that has not
	// been observed again in this one.
	Carried bool `json:"carried,omitempty" yaml:"carried,omitempty"`
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	var b strings.Builder
	b.WriteString(d.Address)
	if d.Name != nil {
		fmt.Fprintf(&b, " %q", *d.Name)
	}
	if d.Vendor != nil {
		fmt.Fprintf(&b, " (%s)", *d.Vendor)
	}
	if d.RSSI != nil {
		fmt.Fprintf(&b, " %d dBm", *d.RSSI)
	}
	return b.String()
}

// DisplayName returns the name, or an empty string when none was advertised
func (d *Device) DisplayName() string {
	if d.Name == nil {
		return ""
	}
	return *d.Name
}

// clone returns a deep copy so that callers never share pointers or slices
// with the registry.
func (d Device) clone() Device {
	out := d
	out.Name = copyString(d.Name)
	out.Vendor = copyString(d.Vendor)
	out.TxPower = copyInt16(d.TxPower)
	out.RSSI = copyInt16(d.RSSI)
	out.ServiceIDs = append([]string{}, d.ServiceIDs...)
	out.ServiceDescriptions = make([]*string, len(d.ServiceDescriptions))
	for i, s := range d.ServiceDescriptions {
		out.ServiceDescriptions[i] = copyString(s)
	}
	return out
}

// Observation is one raw sighting of a peripheral as reported by an adapter.
type Observation struct {
	Address    string
	Name       *string
	TxPower    *int16
	RSSI       *int16
	ServiceIDs []string
}

// Snapshot is the ranked, enriched result of one completed scan cycle.
type Snapshot struct {
	Adapter   string    `json:"adapter" yaml:"adapter"`
	Cycle     uint64    `json:"cycle" yaml:"cycle"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Devices   []Device  `json:"devices" yaml:"devices"`
}

// Len returns the number of devices in the snapshot
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Devices)
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyInt16(p *int16) *int16 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// StringPtr returns a pointer to s. It is a convenience for building
// observations.
func StringPtr(s string) *string { return &s }

// Int16Ptr returns a pointer to v.
func Int16Ptr(v int16) *int16 { return &v }
