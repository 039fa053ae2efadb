package discovery

import (
	"github.com/muurk/bleradar/internal/services"
	"github.com/muurk/bleradar/internal/vendor"
)

// Enricher fills in vendor and service descriptions from the reference
// tables. It holds no mutable state and may be shared between scan loops.
type Enricher struct {
	vendors  vendor.Resolver
	services services.Resolver
}

// NewEnricher creates an Enricher. Either resolver may be nil.
func NewEnricher(vendors vendor.Resolver, svc services.Resolver) *Enricher {
	return &Enricher{vendors: vendors, services: svc}
}

// Enrich returns a copy of d with Vendor and ServiceDescriptions resolved.
// Misses leave the field absent; every service identifier keeps its slot.
func (e *Enricher) Enrich(d Device) Device {
	out := d.clone()

	out.Vendor = nil
	if e.vendors != nil {
		if name, ok := e.vendors.Lookup(out.Address); ok {
			out.Vendor = &name
		}
	}

	out.ServiceDescriptions = make([]*string, len(out.ServiceIDs))
	if e.services == nil {
		return out
	}
	for i, id := range out.ServiceIDs {
		if desc, ok := e.services.Lookup(services.ShortID(id)); ok {
			out.ServiceDescriptions[i] = &desc
		}
	}
	return out
}

// EnrichAll enriches each device in order.
func (e *Enricher) EnrichAll(devices []Device) []Device {
	out := make([]Device, len(devices))
	for i, d := range devices {
		out[i] = e.Enrich(d)
	}
	return out
}
