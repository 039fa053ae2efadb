package discovery

import "testing"

func TestRank_StableOrder(t *testing.T) {
	in := []Device{
		{Address: "A", RSSI: Int16Ptr(-70)},
		{Address: "B", RSSI: Int16Ptr(-70)},
		{Address: "C", RSSI: Int16Ptr(-90)},
		{Address: "D"},
	}

	assertOrder(t, Rank(in), "A", "B", "C", "D")
}

func TestRank_AbsentBelowEverything(t *testing.T) {
	in := []Device{
		{Address: "none1"},
		{Address: "min", RSSI: Int16Ptr(-32768)},
		{Address: "none2"},
		{Address: "strong", RSSI: Int16Ptr(-20)},
	}

	assertOrder(t, Rank(in), "strong", "min", "none1", "none2")
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	in := []Device{
		{Address: "weak", RSSI: Int16Ptr(-90)},
		{Address: "strong", RSSI: Int16Ptr(-30)},
	}

	_ = Rank(in)
	assertOrder(t, in, "weak", "strong")
}

func TestRank_Empty(t *testing.T) {
	if got := Rank(nil); len(got) != 0 {
		t.Errorf("Rank(nil) = %v, want empty", got)
	}
}

func assertOrder(t *testing.T, devices []Device, want ...string) {
	t.Helper()
	if len(devices) != len(want) {
		t.Fatalf("got %d devices, want %d", len(devices), len(want))
	}
	for i, addr := range want {
		if devices[i].Address != addr {
			t.Errorf("position %d = %s, want %s", i, devices[i].Address, addr)
		}
	}
}
