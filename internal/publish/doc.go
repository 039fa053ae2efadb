// Package publish delivers completed scan snapshots to their consumers.
//
// Every sink implements Publisher. A snapshot always supersedes the previous
// one for its adapter: files are replaced, MQTT messages are retained, and
// nothing is ever appended.
//
// Sinks:
//
//   - File writes a JSON or YAML document atomically (temp file + rename)
//   - MQTT publishes a retained JSON message per adapter
//   - Multi fans out to several publishers and combines their errors
//   - Async moves publication off the scan loop, keeping only the newest
//     pending snapshot
//
// The HTTP/WebSocket server and the terminal views live in their own
// packages and also satisfy Publisher.
package publish
