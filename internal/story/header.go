// Package story assembles a Z-Machine story file: the 64-byte header
// plus the dynamic/static/high memory regions that follow it, field by
// field, matching the layout any Z-Machine interpreter's header reader
// expects.
package story

import "encoding/binary"

// HeaderSize is the fixed length of a Z-Machine story-file header.
const HeaderSize = 64

// Header holds every field the story-file header format defines. Fields
// the compiler core doesn't populate (interpreter number, screen
// dimensions, ...) are filled with the same placeholder values a
// reference interpreter reports about itself, since a story file is
// written once and its header's interpreter-facing fields are advisory.
type Header struct {
	Version               uint8
	Flags1                uint8
	ReleaseNumber         uint16
	HighMemoryBase        uint16
	InitialPC             uint16
	DictionaryBase        uint16
	ObjectTableBase       uint16
	GlobalVariableBase    uint16
	StaticMemoryBase      uint16
	AbbreviationTableBase uint16
	FileLength            uint16 // already divided by the version's packed-address divisor
	FileChecksum          uint16
	RoutinesOffset        uint16 // V6/V7 only
	StringOffset          uint16 // V6/V7 only
}

// PackedAddressDivisor returns the divisor the target version uses to
// convert a byte address into a packed routine/string address.
func PackedAddressDivisor(version uint8) uint16 {
	switch {
	case version <= 3:
		return 2
	case version <= 5:
		return 4
	default:
		return 8
	}
}

// WriteHeader renders h into a fresh 64-byte block, stamping the same
// interpreter-identity defaults LoadCore stamps onto a loaded story file
// (IBM PC interpreter number, an 80x25 terminal, and the subset of the
// v1.1 feature flags a text-only interpreter genuinely supports).
func WriteHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)

	buf[0x00] = h.Version
	buf[0x01] = h.Flags1
	binary.BigEndian.PutUint16(buf[0x02:0x04], h.ReleaseNumber)
	binary.BigEndian.PutUint16(buf[0x04:0x06], h.HighMemoryBase)
	binary.BigEndian.PutUint16(buf[0x06:0x08], h.InitialPC)
	binary.BigEndian.PutUint16(buf[0x08:0x0a], h.DictionaryBase)
	binary.BigEndian.PutUint16(buf[0x0a:0x0c], h.ObjectTableBase)
	binary.BigEndian.PutUint16(buf[0x0c:0x0e], h.GlobalVariableBase)
	binary.BigEndian.PutUint16(buf[0x0e:0x10], h.StaticMemoryBase)
	binary.BigEndian.PutUint16(buf[0x18:0x1a], h.AbbreviationTableBase)
	binary.BigEndian.PutUint16(buf[0x1a:0x1c], h.FileLength)
	binary.BigEndian.PutUint16(buf[0x1c:0x1e], h.FileChecksum)

	buf[0x1e] = 0x6 // interpreter number: IBM PC, the closest stock match
	buf[0x1f] = 0x1 // interpreter version: unused by any real game

	buf[0x20] = 25 // screen height, lines
	buf[0x21] = 80 // screen width, characters
	buf[0x22] = 0
	buf[0x23] = 80 // screen width, units (1 unit == 1 char for text-only output)
	buf[0x24] = 0
	buf[0x25] = 25 // screen height, units
	buf[0x26] = 1  // font height, units
	buf[0x27] = 1  // font width, units

	binary.BigEndian.PutUint16(buf[0x28:0x2a], h.RoutinesOffset)
	binary.BigEndian.PutUint16(buf[0x2a:0x2c], h.StringOffset)

	buf[0x32] = 0x1 // standard revision, major
	buf[0x33] = 0x2 // standard revision, minor

	if h.Version <= 3 {
		buf[0x01] |= 0b0010_0000 // split-screen available
	} else {
		buf[0x01] |= 0b0010_1101 // colors, bold, italic, split-screen
	}

	return buf
}
