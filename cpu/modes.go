package cpu

import "fmt"

// OperandClass is the addressing class of one operand.
type OperandClass byte

const (
	// ClassImmediate is a literal value or a label address.
	ClassImmediate OperandClass = iota
	// ClassRegister is a register.
	ClassRegister
	// ClassIndirect is memory at a literal or label address: (label), ($10).
	ClassIndirect
	// ClassRIndirect is memory at the address held in a register: (A).
	ClassRIndirect
)

var classNames = [...]string{"immediate", "register", "indirect", "register-indirect"}

func (c OperandClass) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("OperandClass(%d)", byte(c))
}

// AddressingMode is the second byte of every encoded instruction.
// Two-operand modes are 4*dest+src; single-operand modes are 16+class.
type AddressingMode byte

// Addressing modes.
const (
	ModeImmediateImmediate AddressingMode = iota
	ModeImmediateRegister
	ModeImmediateIndirect
	ModeImmediateRIndirect
	ModeRegisterImmediate
	ModeRegisterRegister
	ModeRegisterIndirect
	ModeRegisterRIndirect
	ModeIndirectImmediate
	ModeIndirectRegister
	ModeIndirectIndirect
	ModeIndirectRIndirect
	ModeRIndirectImmediate
	ModeRIndirectRegister
	ModeRIndirectIndirect
	ModeRIndirectRIndirect
	ModeImmediate
	ModeRegister
	ModeIndirect
	ModeRIndirect
	// ModeUnknown is never emitted.
	ModeUnknown
)

var modeNames = [...]string{
	"ImmediateImmediate", "ImmediateRegister", "ImmediateIndirect", "ImmediateRIndirect",
	"RegisterImmediate", "RegisterRegister", "RegisterIndirect", "RegisterRIndirect",
	"IndirectImmediate", "IndirectRegister", "IndirectIndirect", "IndirectRIndirect",
	"RIndirectImmediate", "RIndirectRegister", "RIndirectIndirect", "RIndirectRIndirect",
	"Immediate", "Register", "Indirect", "RIndirect", "Unknown",
}

func (m AddressingMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("AddressingMode(%d)", byte(m))
}

// Pairs the machine accepts. Memory-to-memory forms other than a register
// indirect destination are not encodable.
var twoOperandModes = map[[2]OperandClass]bool{
	{ClassImmediate, ClassImmediate}: true,
	{ClassImmediate, ClassRegister}:  true,
	{ClassRegister, ClassImmediate}:  true,
	{ClassRegister, ClassRegister}:   true,
	{ClassRegister, ClassIndirect}:   true,
	{ClassRegister, ClassRIndirect}:  true,
	{ClassIndirect, ClassImmediate}:  true,
	{ClassIndirect, ClassRegister}:   true,
	{ClassRIndirect, ClassImmediate}: true,
	{ClassRIndirect, ClassRegister}:  true,
	{ClassRIndirect, ClassIndirect}:  true,
}

// TwoOperandMode returns the mode for a dest/src pair, or false when the pair
// has no encoding.
func TwoOperandMode(dst, src OperandClass) (AddressingMode, bool) {
	if !twoOperandModes[[2]OperandClass{dst, src}] {
		return ModeUnknown, false
	}
	return AddressingMode(4*dst + src), true
}

// SingleOperandMode returns the mode for a lone operand.
func SingleOperandMode(c OperandClass) (AddressingMode, bool) {
	if c > ClassRIndirect {
		return ModeUnknown, false
	}
	return ModeImmediate + AddressingMode(c), true
}

// Classes returns the operand classes of m in dest, src order.
func (m AddressingMode) Classes() ([]OperandClass, bool) {
	switch {
	case m <= ModeRIndirectRIndirect:
		return []OperandClass{OperandClass(m / 4), OperandClass(m % 4)}, true
	case m <= ModeRIndirect:
		return []OperandClass{OperandClass(m - ModeImmediate)}, true
	}
	return nil, false
}
