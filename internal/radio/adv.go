package radio

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// Advertising data types (Bluetooth Core Supplement, Part A, §1)
const (
	adSomeUUID16     = 0x02
	adAllUUID16      = 0x03
	adSomeUUID32     = 0x04
	adAllUUID32      = 0x05
	adSomeUUID128    = 0x06
	adAllUUID128     = 0x07
	adShortName      = 0x08
	adCompleteName   = 0x09
	adTxPower        = 0x0A
	adServiceData16  = 0x16
	adServiceData32  = 0x20
	adServiceData128 = 0x21
)

// baseUUIDSuffix completes 16- and 32-bit UUIDs to the Bluetooth base UUID.
const baseUUIDSuffix = "-0000-1000-8000-00805f9b34fb"

// Advertisement is the subset of an advertising payload bleradar uses.
type Advertisement struct {
	LocalName    string
	TxPower      *int16
	ServiceUUIDs []string
}

// ParseAdvertisement decodes raw advertising (or scan response) data.
// Truncated trailing structures are ignored; anything decoded before them
// is kept.
func ParseAdvertisement(data []byte) Advertisement {
	var adv Advertisement
	seen := make(map[string]bool)
	addUUID := func(u string) {
		if !seen[u] {
			seen[u] = true
			adv.ServiceUUIDs = append(adv.ServiceUUIDs, u)
		}
	}

	for i := 0; i < len(data); {
		length := int(data[i])
		if length == 0 || i+1+length > len(data) {
			break
		}
		typ := data[i+1]
		payload := data[i+2 : i+1+length]
		i += 1 + length

		switch typ {
		case adSomeUUID16, adAllUUID16:
			for j := 0; j+2 <= len(payload); j += 2 {
				addUUID(uuid16(payload[j:]))
			}
		case adSomeUUID32, adAllUUID32:
			for j := 0; j+4 <= len(payload); j += 4 {
				addUUID(uuid32(payload[j:]))
			}
		case adSomeUUID128, adAllUUID128:
			for j := 0; j+16 <= len(payload); j += 16 {
				if u, ok := uuid128(payload[j : j+16]); ok {
					addUUID(u)
				}
			}
		case adServiceData16:
			if len(payload) >= 2 {
				addUUID(uuid16(payload))
			}
		case adServiceData32:
			if len(payload) >= 4 {
				addUUID(uuid32(payload))
			}
		case adServiceData128:
			if len(payload) >= 16 {
				if u, ok := uuid128(payload[:16]); ok {
					addUUID(u)
				}
			}
		case adCompleteName:
			adv.LocalName = string(payload)
		case adShortName:
			if adv.LocalName == "" {
				adv.LocalName = string(payload)
			}
		case adTxPower:
			if len(payload) >= 1 {
				p := int16(int8(payload[0]))
				adv.TxPower = &p
			}
		}
	}
	return adv
}

func uuid16(b []byte) string {
	return fmt.Sprintf("0000%04x%s", binary.LittleEndian.Uint16(b), baseUUIDSuffix)
}

func uuid32(b []byte) string {
	return fmt.Sprintf("%08x%s", binary.LittleEndian.Uint32(b), baseUUIDSuffix)
}

// uuid128 converts a little-endian 128-bit UUID to canonical text.
func uuid128(b []byte) (string, bool) {
	be := make([]byte, 16)
	for i := range be {
		be[i] = b[15-i]
	}
	u, err := uuid.FromBytes(be)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// CanonicalUUID normalizes any textual UUID accepted by google/uuid, plus
// bare 16- and 32-bit hex forms, to the lower-case canonical 36-character
// form. Unparseable input is returned unchanged.
func CanonicalUUID(s string) string {
	if u, err := uuid.Parse(s); err == nil {
		return u.String()
	}
	switch len(s) {
	case 4:
		if isHexString(s) {
			return "0000" + lower(s) + baseUUIDSuffix
		}
	case 8:
		if isHexString(s) {
			return lower(s) + baseUUIDSuffix
		}
	}
	return s
}

func isHexString(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')) {
			return false
		}
	}
	return true
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
