// Package scan drives the per-adapter discovery loop.
//
// A Controller repeatedly runs one scan cycle on its adapter:
//
//	Idle -> Scanning -> Settling -> Collecting -> Publishing -> Idle
//
// Scanning starts an unfiltered scan, Settling waits the dwell time while
// advertisements accumulate, Collecting reads every visible peripheral into
// a fresh registry, and Publishing enriches, ranks and hands the snapshot to
// the configured publisher. The scan is always stopped before the cycle
// ends, and the loop pauses for the inter-cycle interval before starting
// again.
//
// A failure to start scanning is fatal for the adapter. A failure to read
// the visible peripherals aborts only the current cycle, and a peripheral
// whose properties cannot be read is skipped.
//
// A Supervisor runs one Controller per adapter of a transport.
package scan
