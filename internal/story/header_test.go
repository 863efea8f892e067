package story

import "testing"

func TestPackedAddressDivisor(t *testing.T) {
	cases := []struct {
		version uint8
		want    uint16
	}{
		{1, 2}, {3, 2}, {4, 4}, {5, 4}, {6, 8}, {8, 8},
	}
	for _, c := range cases {
		if got := PackedAddressDivisor(c.version); got != c.want {
			t.Errorf("PackedAddressDivisor(%d) = %d, want %d", c.version, got, c.want)
		}
	}
}

func TestWriteHeaderLength(t *testing.T) {
	buf := WriteHeader(Header{Version: 5})
	if len(buf) != HeaderSize {
		t.Fatalf("expected a %d byte header, got %d", HeaderSize, len(buf))
	}
}

func TestWriteHeaderVersionFlagsV3(t *testing.T) {
	buf := WriteHeader(Header{Version: 3})
	if buf[0x01]&0b0010_0000 == 0 {
		t.Fatalf("expected split-screen flag set for v3, got %08b", buf[0x01])
	}
	if buf[0x01]&0b0000_0001 != 0 {
		t.Fatalf("v3 should not claim color support, got %08b", buf[0x01])
	}
}

func TestWriteHeaderVersionFlagsV5(t *testing.T) {
	buf := WriteHeader(Header{Version: 5})
	if buf[0x01]&0b0000_0001 == 0 {
		t.Fatalf("expected color flag set for v5, got %08b", buf[0x01])
	}
}

func TestWriteHeaderFieldRoundTrip(t *testing.T) {
	h := Header{
		Version:               5,
		ReleaseNumber:         7,
		InitialPC:             0x4050,
		DictionaryBase:        0x0900,
		ObjectTableBase:       0x0200,
		GlobalVariableBase:    0x0040,
		StaticMemoryBase:      0x0a00,
		AbbreviationTableBase: 0x0050,
	}
	buf := WriteHeader(h)
	if buf[0x00] != 5 {
		t.Errorf("version: got %d, want 5", buf[0x00])
	}
	if got := uint16(buf[0x02])<<8 | uint16(buf[0x03]); got != 7 {
		t.Errorf("release number: got %d, want 7", got)
	}
	if got := uint16(buf[0x06])<<8 | uint16(buf[0x07]); got != 0x4050 {
		t.Errorf("initial PC: got %#x, want %#x", got, 0x4050)
	}
}
