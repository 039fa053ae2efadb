package services

import "testing"

func TestShortID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0000180f-0000-1000-8000-00805f9b34fb", "180F"},
		{"0000FE2C-0000-1000-8000-00805F9B34FB", "FE2C"},
		{"{0000180a-0000-1000-8000-00805f9b34fb}", "180A"},
		{"0000180d00001000800000805f9b34fb", "180D"},
		{"180f", "180F"},
		{"0x2A19", "2A19"},
		{"0000fd6f", "FD6F"},
		{"abc", "ABC"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ShortID(tt.in); got != tt.want {
				t.Errorf("ShortID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
