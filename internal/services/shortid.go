package services

import (
	"strings"

	"github.com/google/uuid"
)

// ShortID derives the compressed 4-hex-digit form of a service UUID.
//
// Full UUIDs built on the Bluetooth base UUID carry the 16-bit value at
// characters 4..8 of their canonical text ("0000180f-0000-1000-8000-00805f9b34fb"
// gives "180F"). Already-short forms ("180f", "0x180F") pass through.
// The result is upper-case to match the SIG assigned-numbers listings.
func ShortID(id string) string {
	s := strings.TrimSpace(id)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	if len(s) == shortIDLen {
		return strings.ToUpper(s)
	}
	if u, err := uuid.Parse(s); err == nil {
		return strings.ToUpper(u.String()[4:8])
	}
	if len(s) >= 8 {
		return strings.ToUpper(s[4:8])
	}
	return strings.ToUpper(s)
}
