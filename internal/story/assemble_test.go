package story

import "testing"

func TestAssembleLaysOutRegionsInOrder(t *testing.T) {
	r := Regions{
		Globals:    make([]byte, 480),
		Objects:    []byte{1, 2, 3},
		Dictionary: []byte{4, 5},
		Routines:   []byte{6, 7, 8, 9},
		Strings:    []byte{10, 11},
	}
	file := Assemble(Options{Version: 5, InitialPC: 0x2000}, r)

	wantLen := HeaderSize + len(r.Globals) + len(r.Objects) + len(r.Dictionary) + len(r.Routines) + len(r.Strings)
	if len(file) != wantLen {
		t.Fatalf("file length = %d, want %d", len(file), wantLen)
	}

	staticBase := HeaderSize + len(r.Globals) + len(r.Objects)
	if file[staticBase] != 4 || file[staticBase+1] != 5 {
		t.Fatalf("dictionary region not found at expected offset %d", staticBase)
	}

	highBase := staticBase + len(r.Dictionary)
	if file[highBase] != 6 {
		t.Fatalf("routines region not found at expected offset %d", highBase)
	}
}

func TestAssembleHeaderPointersMatchRegionOffsets(t *testing.T) {
	r := Regions{Globals: make([]byte, 480), Objects: make([]byte, 10), Dictionary: make([]byte, 6), Routines: make([]byte, 4), Strings: make([]byte, 2)}
	file := Assemble(Options{Version: 5}, r)

	globalBase := uint16(file[0x0c])<<8 | uint16(file[0x0d])
	if int(globalBase) != HeaderSize {
		t.Errorf("global variable base = %d, want %d", globalBase, HeaderSize)
	}
	staticBase := uint16(file[0x0e])<<8 | uint16(file[0x0f])
	if int(staticBase) != HeaderSize+len(r.Globals)+len(r.Objects) {
		t.Errorf("static memory base = %d, want %d", staticBase, HeaderSize+len(r.Globals)+len(r.Objects))
	}
}

func TestAssembleFileLengthIsPackedAddressScaled(t *testing.T) {
	r := Regions{Globals: make([]byte, 480), Objects: make([]byte, 8)}
	file := Assemble(Options{Version: 3}, r)
	total := len(file)
	length := uint16(file[0x1a])<<8 | uint16(file[0x1b])
	if int(length)*2 != total {
		t.Errorf("file length field*divisor = %d, want %d", int(length)*2, total)
	}
}
