package cpu

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// PutDWord writes v into b[0:4] as two 16-bit halves, low half first,
// each half stored low byte first.
func PutDWord(b []byte, v uint32) {
	binary.LittleEndian.PutUint16(b, uint16(v))
	binary.LittleEndian.PutUint16(b[2:], uint16(v>>16))
}

// DWord reads a value written by PutDWord.
func DWord(b []byte) uint32 {
	return uint32(binary.LittleEndian.Uint16(b)) | uint32(binary.LittleEndian.Uint16(b[2:]))<<16
}

// AppendValue appends v using the width of size s.
func AppendValue(b []byte, v uint32, s Size) []byte {
	switch s {
	case SizeWord:
		return append(b, byte(v))
	case SizeDWord:
		return binary.LittleEndian.AppendUint16(b, uint16(v))
	}
	var buf [4]byte
	PutDWord(buf[:], v)
	return append(b, buf[:]...)
}

// ReadValue reads a little-endian value of width 1, 2 or 4 from the start of b.
func ReadValue(b []byte, width int) (uint32, error) {
	if len(b) < width {
		return 0, errors.Errorf("need %d bytes, have %d", width, len(b))
	}
	switch width {
	case 1:
		return uint32(b[0]), nil
	case 2:
		return uint32(binary.LittleEndian.Uint16(b)), nil
	case 4:
		return DWord(b), nil
	}
	return 0, errors.Errorf("invalid operand width %d", width)
}
