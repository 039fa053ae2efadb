package radio

import "testing"

func TestParseAdvertisement(t *testing.T) {
	data := []byte{
		0x02, 0x01, 0x06, // flags
		0x05, 0x03, 0x0F, 0x18, 0x0A, 0x18, // complete 16-bit: 180F, 180A
		0x02, 0x0A, 0xF4, // tx power -12
		0x06, 0x09, 'T', 'h', 'e', 'r', 'm', // complete name
		0x05, 0x16, 0x0F, 0x18, 0x64, 0x00, // service data for 180F (duplicate)
	}

	adv := ParseAdvertisement(data)

	if adv.LocalName != "Therm" {
		t.Errorf("LocalName = %q, want %q", adv.LocalName, "Therm")
	}
	if adv.TxPower == nil || *adv.TxPower != -12 {
		t.Errorf("TxPower = %v, want -12", adv.TxPower)
	}

	want := []string{
		"0000180f-0000-1000-8000-00805f9b34fb",
		"0000180a-0000-1000-8000-00805f9b34fb",
	}
	if len(adv.ServiceUUIDs) != len(want) {
		t.Fatalf("ServiceUUIDs = %v, want %v", adv.ServiceUUIDs, want)
	}
	for i := range want {
		if adv.ServiceUUIDs[i] != want[i] {
			t.Errorf("ServiceUUIDs[%d] = %q, want %q", i, adv.ServiceUUIDs[i], want[i])
		}
	}
}

func TestParseAdvertisement_128Bit(t *testing.T) {
	// 6e400001-b5a3-f393-e0a9-e50e24dcca9e (Nordic UART) in little-endian order
	le := []byte{0x9e, 0xca, 0xdc, 0x24, 0x0e, 0xe5, 0xa9, 0xe0, 0x93, 0xf3, 0xa3, 0xb5, 0x01, 0x00, 0x40, 0x6e}
	data := append([]byte{0x11, 0x07}, le...)

	adv := ParseAdvertisement(data)
	if len(adv.ServiceUUIDs) != 1 || adv.ServiceUUIDs[0] != "6e400001-b5a3-f393-e0a9-e50e24dcca9e" {
		t.Errorf("ServiceUUIDs = %v", adv.ServiceUUIDs)
	}
}

func TestParseAdvertisement_ShortNameAndTruncation(t *testing.T) {
	data := []byte{
		0x04, 0x08, 'A', 'B', 'C', // shortened name
		0x05, 0x03, 0x0F, // truncated structure
	}

	adv := ParseAdvertisement(data)
	if adv.LocalName != "ABC" {
		t.Errorf("LocalName = %q, want ABC", adv.LocalName)
	}
	if len(adv.ServiceUUIDs) != 0 {
		t.Errorf("ServiceUUIDs = %v, want none", adv.ServiceUUIDs)
	}
}

func TestParseAdvertisement_Empty(t *testing.T) {
	adv := ParseAdvertisement(nil)
	if adv.LocalName != "" || adv.TxPower != nil || adv.ServiceUUIDs != nil {
		t.Errorf("ParseAdvertisement(nil) = %+v, want zero", adv)
	}
}

func TestCanonicalUUID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0000180F-0000-1000-8000-00805F9B34FB", "0000180f-0000-1000-8000-00805f9b34fb"},
		{"180F", "0000180f-0000-1000-8000-00805f9b34fb"},
		{"0000FD6F", "0000fd6f-0000-1000-8000-00805f9b34fb"},
		{"not-a-uuid", "not-a-uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CanonicalUUID(tt.in); got != tt.want {
				t.Errorf("CanonicalUUID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
