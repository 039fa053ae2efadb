package discovery

import "strings"

// Registry deduplicates observations by address for one scan cycle.
//
// A Registry belongs to a single scan loop and is not safe for concurrent
// use. After Finalize it ignores further updates until Reset.
type Registry struct {
	devices   map[string]*Device
	order     []string
	finalized bool
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{devices: make(map[string]*Device)}
}

// NormalizeAddress returns the identity key for a hardware address.
func NormalizeAddress(address string) string {
	return strings.ToUpper(strings.TrimSpace(address))
}

// Upsert merges an observation into the registry and reports whether a new
// record was created.
//
// Present scalar fields replace the stored ones; absent fields never clear
// them, and an empty name counts as absent. Service identifiers are only
// ever appended, in first-seen order, with duplicates dropped.
// Observations without an address and calls after Finalize are ignored.
func (r *Registry) Upsert(obs Observation) bool {
	if r.finalized {
		return false
	}
	addr := NormalizeAddress(obs.Address)
	if addr == "" {
		return false
	}

	d, exists := r.devices[addr]
	if !exists {
		d = &Device{
			Address:             addr,
			ServiceIDs:          []string{},
			ServiceDescriptions: []*string{},
		}
		r.devices[addr] = d
		r.order = append(r.order, addr)
	}
	d.Carried = false

	if obs.Name != nil && *obs.Name != "" {
		d.Name = copyString(obs.Name)
	}
	if obs.TxPower != nil {
		d.TxPower = copyInt16(obs.TxPower)
	}
	if obs.RSSI != nil {
		d.RSSI = copyInt16(obs.RSSI)
	}
	for _, id := range obs.ServiceIDs {
		if id == "" || containsString(d.ServiceIDs, id) {
			continue
		}
		d.ServiceIDs = append(d.ServiceIDs, id)
		d.ServiceDescriptions = append(d.ServiceDescriptions, nil)
	}

	return !exists
}

// Seed loads the previous cycle's records into an empty registry, marked as
// carried. A later Upsert of the same address clears the mark. Records that
// were already carried are not seeded again, so a device is kept for at most
// one cycle in which it was not heard.
func (r *Registry) Seed(previous []Device) {
	if r.finalized {
		return
	}
	for _, prev := range previous {
		if prev.Carried {
			continue
		}
		addr := NormalizeAddress(prev.Address)
		if addr == "" {
			continue
		}
		if _, exists := r.devices[addr]; exists {
			continue
		}
		d := prev.clone()
		d.Address = addr
		d.Carried = true
		r.devices[addr] = &d
		r.order = append(r.order, addr)
	}
}

// Finalize returns the records in first-seen order and freezes the
// registry. The returned slice is independent of the registry.
func (r *Registry) Finalize() []Device {
	r.finalized = true

	out := make([]Device, 0, len(r.order))
	for _, addr := range r.order {
		out = append(out, r.devices[addr].clone())
	}
	return out
}

// Reset empties the registry for the next cycle
func (r *Registry) Reset() {
	r.devices = make(map[string]*Device)
	r.order = nil
	r.finalized = false
}

// Len returns the number of distinct addresses held
func (r *Registry) Len() int {
	return len(r.order)
}

// Finalized reports whether Finalize has been called since the last Reset
func (r *Registry) Finalized() bool {
	return r.finalized
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
