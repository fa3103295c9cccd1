// Package cluster computes Redis Cluster key slots for slot-affinity
// validation. It does no routing: drivers use it only to reject
// multi-key commands whose keys would land on different cluster nodes.
package cluster

import "bytes"

// SlotCount is the fixed size of the Redis Cluster key space.
const SlotCount = 16384

// crc16Table is the CRC16-CCITT (XMODEM) table for polynomial 0x1021,
// the variant the Redis Cluster specification mandates.
var crc16Table [256]uint16

func init() {
	for i := range crc16Table {
		crc := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
		crc16Table[i] = crc
	}
}

// Slot returns the cluster slot the key hashes to. When the key contains
// a hash tag — a non-empty substring between the first "{" and the first
// following "}" — only the tag is hashed, so callers can pin related
// keys to one slot.
func Slot(key []byte) uint16 {
	return crc16(hashable(key)) & (SlotCount - 1)
}

// SameSlot reports whether all keys map to a single slot. Zero or one
// key is trivially same-slot.
func SameSlot(keys ...[]byte) bool {
	if len(keys) <= 1 {
		return true
	}
	slot := Slot(keys[0])
	for _, key := range keys[1:] {
		if Slot(key) != slot {
			return false
		}
	}
	return true
}

func hashable(key []byte) []byte {
	open := bytes.IndexByte(key, '{')
	if open < 0 {
		return key
	}
	rest := key[open+1:]
	close := bytes.IndexByte(rest, '}')
	if close <= 0 {
		// No closing brace, or an empty tag: hash the whole key.
		return key
	}
	return rest[:close]
}

func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc = crc<<8 ^ crc16Table[byte(crc>>8)^b]
	}
	return crc
}
