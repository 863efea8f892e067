package story

import (
	"encoding/binary"
	"testing"
)

// readBackHeader re-parses the fields WriteHeader stamps in, the same
// handful a loaded story file's header would be read for. It exists only
// to check Assemble against itself; it is not a general header reader.
type readBackHeader struct {
	version            uint8
	initialPC          uint16
	globalVariableBase uint16
	objectTableBase    uint16
	staticMemoryBase   uint16
	fileLength         uint16
}

func readBack(file []byte) readBackHeader {
	divisor := PackedAddressDivisor(file[0x00])
	return readBackHeader{
		version:            file[0x00],
		initialPC:          binary.BigEndian.Uint16(file[0x06:0x08]),
		globalVariableBase: binary.BigEndian.Uint16(file[0x0c:0x0e]),
		objectTableBase:    binary.BigEndian.Uint16(file[0x0a:0x0c]),
		staticMemoryBase:   binary.BigEndian.Uint16(file[0x0e:0x10]),
		fileLength:         binary.BigEndian.Uint16(file[0x1a:0x1c]) * divisor,
	}
}

// TestAssembleRoundTripsThroughHeaderReader checks Assemble's output by
// reading its header fields back the way a loaded story file's would be
// read: every base address WriteHeader stamped in should come back out
// unchanged.
func TestAssembleRoundTripsThroughHeaderReader(t *testing.T) {
	r := Regions{
		Globals:    make([]byte, 480),
		Objects:    make([]byte, 20),
		Dictionary: make([]byte, 12),
		Routines:   make([]byte, 8),
		Strings:    make([]byte, 4),
	}
	file := Assemble(Options{Version: 5, InitialPC: 0x1234}, r)
	got := readBack(file)

	if got.version != 5 {
		t.Errorf("version = %d, want 5", got.version)
	}
	if got.initialPC != 0x1234 {
		t.Errorf("initialPC = %#x, want %#x", got.initialPC, 0x1234)
	}
	if int(got.globalVariableBase) != HeaderSize {
		t.Errorf("globalVariableBase = %d, want %d", got.globalVariableBase, HeaderSize)
	}
	wantObjectBase := HeaderSize + len(r.Globals)
	if int(got.objectTableBase) != wantObjectBase {
		t.Errorf("objectTableBase = %d, want %d", got.objectTableBase, wantObjectBase)
	}
	wantStaticBase := wantObjectBase + len(r.Objects)
	if int(got.staticMemoryBase) != wantStaticBase {
		t.Errorf("staticMemoryBase = %d, want %d", got.staticMemoryBase, wantStaticBase)
	}
	if int(got.fileLength) != len(file) {
		t.Errorf("fileLength = %d, want %d", got.fileLength, len(file))
	}
}
