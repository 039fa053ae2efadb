// Package server exposes live scan snapshots over HTTP and WebSocket.
//
// The Server is itself a publish.Publisher: every snapshot handed to
// Publish replaces the stored snapshot for its adapter and is broadcast to
// every connected WebSocket client.
//
// # Endpoints
//
//	GET /snapshot            latest snapshot of every adapter, ordered by adapter
//	GET /snapshot/{adapter}  latest snapshot of one adapter (404 until its first cycle)
//	GET /healthz             build identity, adapter and client counts
//	GET /ws                  WebSocket stream of snapshots
//
// A WebSocket client first receives the stored snapshot of each adapter and
// then one text message per published cycle. Messages are JSON envelopes:
//
//	{"type":"snapshot","snapshot":{...}}
//
// Clients are not expected to send anything; inbound messages are read and
// discarded so that control frames are processed. A client that cannot keep
// up loses messages rather than slowing the scan loop down.
//
// # Discovery
//
// When Advertise is set the server registers itself on the local network
// as "_bleradar._tcp" with TXT records:
//
//	version=<build version>
//	adapters=<comma separated adapter ids>
//	path=/ws
//
// Other instances find it with "bleradar peers".
//
// # TLS
//
// Setting both CertPath and KeyPath serves HTTPS (TLS 1.2 or newer) instead
// of plain HTTP.
package server
