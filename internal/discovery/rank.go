package discovery

import (
	"math"
	"sort"
)

// Rank orders devices by descending signal strength. Devices without an
// RSSI sort after every device with one, and ties keep their input order.
// The input slice is not modified.
func Rank(devices []Device) []Device {
	out := make([]Device, len(devices))
	copy(out, devices)

	sort.SliceStable(out, func(i, j int) bool {
		return rankKey(out[i]) > rankKey(out[j])
	})
	return out
}

func rankKey(d Device) int32 {
	if d.RSSI == nil {
		return math.MinInt32
	}
	return int32(*d.RSSI)
}
