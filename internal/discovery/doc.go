// Package discovery turns raw radio observations into ranked, enriched
// device snapshots.
//
// # Pipeline
//
// One scan cycle flows through this package as follows:
//  1. Registry.Upsert merges every observation by hardware address
//  2. Registry.Finalize freezes the cycle and returns one Device per address
//  3. Enricher.Enrich resolves the vendor and service descriptions
//  4. Rank orders the devices by signal strength
//
// The result is wrapped in a Snapshot and handed to a publisher.
//
// # Merge Rules
//
// Within a cycle the latest present value wins for name, TX power and RSSI;
// a field missing from a later observation never erases an earlier value.
// Service identifiers accumulate in first-seen order without duplicates, and
// ServiceDescriptions always has exactly one slot per identifier.
//
// # Peers
//
// PeerScanner browses mDNS for other bleradar instances that advertise
// their snapshot server as "_bleradar._tcp".
//
// # Thread Safety
//
// Registry is owned by a single scan loop. Enricher and Rank are safe for
// concurrent use.
package discovery
