package codec

import (
	"bytes"
	"testing"
)

func TestPadLen(t *testing.T) {
	t.Parallel()

	cases := map[int]int{
		0:  16,
		1:  15,
		2:  14,
		5:  11,
		14: 2,
		15: 17,
		16: 16,
		17: 15,
	}
	for n, want := range cases {
		got := PadLen(n)
		if got != want {
			t.Errorf("PadLen(%d) = %d, want %d", n, got, want)
		}
		if (n+got)%ByteDiv != 0 {
			t.Errorf("PadLen(%d) = %d: (n+p) not a multiple of %d", n, got, ByteDiv)
		}
		if got < 2 || got > MaxPadBytes {
			t.Errorf("PadLen(%d) = %d out of range [2, %d]", n, got, MaxPadBytes)
		}
	}
}

func TestPadBytesSentinels(t *testing.T) {
	t.Parallel()

	for n := 0; n < 64; n++ {
		p := PadLen(n)
		buf := PadBytes(p)
		if len(buf) != p {
			t.Fatalf("PadBytes(%d) has length %d", p, len(buf))
		}
		if buf[0] != '\n' || buf[len(buf)-1] != '\n' {
			t.Fatalf("PadBytes(%d) = %q missing newline sentinels", p, buf)
		}
		if !ValidPadding(buf) {
			t.Fatalf("ValidPadding rejected its own output for n=%d", n)
		}
	}
}

func TestFileHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	h := FileHeader{
		Magic:      Magic2D,
		Version:    "pforest 1.0.0",
		UserString: "greeting",
		NGlobal:    1234567890,
	}
	buf, err := FormatFileHeader(h)
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != FileHeaderBytes {
		t.Fatalf("formatted header is %d bytes, want %d", len(buf), FileHeaderBytes)
	}
	got, err := ParseFileHeader(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Magic != h.Magic || got.Version != h.Version || got.UserString != h.UserString || got.NGlobal != h.NGlobal {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestFileHeaderZeroGlobal(t *testing.T) {
	t.Parallel()

	buf, err := FormatFileHeader(FileHeader{Magic: Magic3D, Version: "v", UserString: "u", NGlobal: 0})
	if err != nil {
		t.Fatal(err)
	}
	got, err := ParseFileHeader(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.NGlobal != 0 {
		t.Fatalf("got NGlobal=%d, want 0", got.NGlobal)
	}
}

func TestFileHeaderBadMagic(t *testing.T) {
	t.Parallel()

	buf, err := FormatFileHeader(FileHeader{Magic: Magic2D, NGlobal: 0})
	if err != nil {
		t.Fatal(err)
	}
	buf = bytes.Clone(buf)
	buf[MagicBytes] = 'x' // clobber the newline after magic
	if _, err := ParseFileHeader(buf); err == nil {
		t.Fatal("expected format error for corrupted header")
	}
}

func TestSectionHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	for _, bt := range []BlockType{BlockHeader, BlockField} {
		h := SectionHeader{BlockType: bt, DataSize: 5, UserString: "greet"}
		buf, err := FormatSectionHeader(h)
		if err != nil {
			t.Fatal(err)
		}
		if len(buf) != SectionHeaderBytes {
			t.Fatalf("section header is %d bytes, want %d", len(buf), SectionHeaderBytes)
		}
		got, err := ParseSectionHeader(buf)
		if err != nil {
			t.Fatal(err)
		}
		if got.BlockType != bt || got.DataSize != 5 || got.UserString != "greet" {
			t.Fatalf("round trip mismatch: got %+v", got)
		}
		if len(got.RawUserString) != SectionUserBytes {
			t.Fatalf("RawUserString length = %d, want %d", len(got.RawUserString), SectionUserBytes)
		}
	}
}

func TestSectionHeaderUnknownType(t *testing.T) {
	t.Parallel()

	buf, err := FormatSectionHeader(SectionHeader{BlockType: BlockHeader, DataSize: 0})
	if err != nil {
		t.Fatal(err)
	}
	buf = bytes.Clone(buf)
	buf[0] = 'Z'
	if _, err := ParseSectionHeader(buf); err == nil {
		t.Fatal("expected error for unknown block type")
	}
}
