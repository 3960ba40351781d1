package cpu

import "fmt"

// Register is a register number as encoded in operand bytes.
type Register byte

// General registers come in groups of seven: the full register followed by
// its H, L, HH, HL, LH and LL parts.
const (
	RegA Register = 7 * iota
	RegB
	RegC
	RegD
	RegE
	RegF
	RegW
	RegX
	RegY
	RegZ
)

// Part offsets within a general register group.
const (
	PartH Register = iota + 1
	PartL
	PartHH
	PartHL
	PartLH
	PartLL
)

// Special registers follow the general groups.
const (
	RegFLAGS Register = RegZ + 7 + iota
	RegCLOCKS
	RegCS
	RegDS
	RegSS
	RegPC
	RegSP
	RegBP
)

// RegisterNames is the register table for the lexer, indexed by Register.
var RegisterNames = buildRegisterNames()

func buildRegisterNames() []string {
	var names []string
	for _, base := range "ABCDEFWXYZ" {
		b := string(base)
		names = append(names, b, b+"H", b+"L", b+"HH", b+"HL", b+"LH", b+"LL")
	}
	return append(names, "FLAGS", "CLOCKS", "CS", "DS", "SS", "PC", "SP", "BP")
}

// Valid reports whether r names a register.
func (r Register) Valid() bool {
	return int(r) < len(RegisterNames)
}

func (r Register) String() string {
	if r.Valid() {
		return RegisterNames[r]
	}
	return fmt.Sprintf("R%d", byte(r))
}
