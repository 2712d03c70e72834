package deflate

import "encoding/binary"

// EncodeCoords serializes a coordinate tuple array to host-byte-order
// bytes for storage in a field section (SPEC_FULL §5: coordinate/payload
// arrays are written in native byte order, consistent with the rest of
// this package's in-memory representation).
func EncodeCoords(coords []int32) []byte {
	buf := make([]byte, 4*len(coords))
	for i, v := range coords {
		binary.NativeEndian.PutUint32(buf[4*i:], uint32(v))
	}
	return buf
}

// DecodeCoords is EncodeCoords's inverse.
func DecodeCoords(buf []byte) []int32 {
	out := make([]int32, len(buf)/4)
	for i := range out {
		out[i] = int32(binary.NativeEndian.Uint32(buf[4*i:]))
	}
	return out
}
