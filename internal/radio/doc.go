// Package radio is the boundary between bleradar and the Bluetooth stack.
//
// The scan loop only sees the Transport, Adapter and Peripheral interfaces
// defined here. Two implementations are provided:
//
//   - Bluetooth: the host adapter via tinygo.org/x/bluetooth (BlueZ on
//     Linux, CoreBluetooth on macOS, WinRT on Windows)
//   - Simulated: a scriptable in-memory transport for tests and demos
//
// # Observations
//
// An Adapter accumulates advertisements between StartScan and StopScan.
// VisiblePeripherals returns one Peripheral per address seen so far, and
// Peripheral.Properties reports the most recent advertised name, TX power,
// RSSI and service UUIDs. Service UUIDs are always reported in full
// canonical form ("0000180f-0000-1000-8000-00805f9b34fb").
//
// # Errors
//
// Every failure is a *Error whose Kind tells the caller how to react:
// KindScanStart ends the adapter loop, KindScanRead aborts one cycle,
// KindProperty drops one peripheral and KindScanStop is only logged.
package radio
