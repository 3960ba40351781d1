package cpu

// Layout records where one instruction was emitted and how wide each of its
// operands is. Immediate widths cannot be recovered from the bytes alone.
type Layout struct {
	Offset uint32 `yaml:"offset"`
	Length int    `yaml:"length"`
	Widths []int  `yaml:"widths,flow,omitempty"`
}

// End returns the offset just past the instruction.
func (l Layout) End() uint32 {
	return l.Offset + uint32(l.Length)
}
