package story

// Regions is the byte content of every memory region a story file needs
// besides its header, already built by the caller (internal/layout for
// the object/property/global tables, internal/zap for encoded routine
// bytes). ZSCII string compression is out of scope here: Strings is
// whatever byte form the caller already produced for the string pool,
// placed verbatim into high memory.
type Regions struct {
	Globals    []byte // 240 words, variables 16-255
	Objects    []byte // object tree + property tables (dynamic memory)
	Dictionary []byte // word-separator/entry table (static memory)
	Routines   []byte // encoded routine bytes (high memory)
	Strings    []byte // string pool bytes (high memory)
}

// Options configures the assembled file's target version and entry
// point; InitialPC is the byte address of the first instruction to run
// (already resolved by the caller against Routines).
type Options struct {
	Version   uint8
	InitialPC uint16
}

// Assemble lays out a complete story file: header, then dynamic memory
// (globals, objects), then static memory (dictionary), then high memory
// (routines, strings), patching the header's region-base fields and
// packed-address-scaled file length to match.
func Assemble(opts Options, r Regions) []byte {
	dynamic := append(append([]byte{}, r.Globals...), r.Objects...)
	static := append([]byte{}, r.Dictionary...)
	high := append(append([]byte{}, r.Routines...), r.Strings...)

	staticBase := HeaderSize + len(dynamic)
	highBase := staticBase + len(static)
	total := highBase + len(high)

	divisor := PackedAddressDivisor(opts.Version)

	h := Header{
		Version:            opts.Version,
		InitialPC:          opts.InitialPC,
		GlobalVariableBase: uint16(HeaderSize),
		ObjectTableBase:    uint16(HeaderSize + len(r.Globals)),
		StaticMemoryBase:   uint16(staticBase),
		HighMemoryBase:     uint16(highBase),
		DictionaryBase:     uint16(staticBase),
		FileLength:         uint16(total) / divisor,
	}
	if opts.Version >= 6 {
		h.RoutinesOffset = uint16(highBase) / divisor
		h.StringOffset = uint16(highBase+len(r.Routines)) / divisor
	}

	out := WriteHeader(h)
	out = append(out, dynamic...)
	out = append(out, static...)
	out = append(out, high...)

	h.FileChecksum = checksum(out)
	binaryPutChecksum(out, h.FileChecksum)
	return out
}

// checksum sums every byte from offset 0x40 onward, modulo 0x10000 - the
// story-file verification value a Z-Machine interpreter's VERIFY opcode
// compares against.
func checksum(file []byte) uint16 {
	var sum uint32
	for i := HeaderSize; i < len(file); i++ {
		sum += uint32(file[i])
	}
	return uint16(sum)
}

func binaryPutChecksum(file []byte, sum uint16) {
	file[0x1c] = byte(sum >> 8)
	file[0x1d] = byte(sum)
}
