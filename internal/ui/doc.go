// Package ui renders scan snapshots in the terminal.
//
// Two publishers are provided:
//
//   - Console prints a table of each snapshot as it is published. When the
//     output is not a terminal the table is printed without colour or
//     borders so that it can be piped or logged.
//   - Watch is a live Bubble Tea view that always shows the newest snapshot
//     of every adapter. It is read-only; the only key binding is quit.
//
// Printer renders the short framed results used by one-shot commands such
// as "bleradar lookup".
//
// # Logging Integration
//
// Logging is controlled via the BLERADAR_LOG_LEVEL environment variable.
// When unset, zap logging is silent so that the terminal output stays
// clean. Combine a log level with Watch only when logs are redirected.
package ui
