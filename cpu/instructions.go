package cpu

import (
	"fmt"
	"strings"
)

// Opcode is the first byte of every encoded instruction.
type Opcode byte

// Opcodes, in encoding order.
const (
	OPNOP Opcode = iota
	OPMOV
	OPCMP
	OPCMPS
	OPJMP
	OPJE
	OPJNE
	OPJG
	OPJGE
	OPJL
	OPJLE
	OPCALL
	OPCALLE
	OPCALLNE
	OPCALLG
	OPCALLGE
	OPCALLL
	OPCALLLE
	OPINT
	OPRET
	OPIRET
	OPCLI
	OPSTI
	OPINC
	OPDEC
	OPADD
	OPSUB
	OPMUL
	OPDIV
	OPMOD
	OPNOT
	OPAND
	OPOR
	OPXOR
	OPSHL
	OPSHR
	OPPUSH
	OPPOP
	OPPUSHA
	OPPOPA
	OPADDS
	OPSUBS
	OPMULS
	OPDIVS
	OPMODS
	OPNOTS
	OPANDS
	OPORS
	OPXORS
	OPSHLS
	OPSHRS
	OPMMSET
	OPMMCPY
	OPINB
	OPINW
	OPINQ
	OPOUTB
	OPOUTW
	OPOUTQ
	OPLDIDT
	OPHLT
)

var opcodeNames = [...]string{
	"nop", "mov", "cmp", "cmps", "jmp", "je", "jne", "jg", "jge", "jl", "jle",
	"call", "calle", "callne", "callg", "callge", "calll", "callle",
	"int", "ret", "iret", "cli", "sti", "inc", "dec",
	"add", "sub", "mul", "div", "mod", "not", "and", "or", "xor", "shl", "shr",
	"push", "pop", "pusha", "popa",
	"adds", "subs", "muls", "divs", "mods", "nots", "ands", "ors", "xors", "shls", "shrs",
	"mmset", "mmcpy", "inb", "inw", "inq", "outb", "outw", "outq", "ldidt", "hlt",
}

// Valid reports whether op is a defined opcode.
func (op Opcode) Valid() bool {
	return int(op) < len(opcodeNames)
}

// String returns the lower-case instruction name.
func (op Opcode) String() string {
	if op.Valid() {
		return opcodeNames[op]
	}
	return fmt.Sprintf("op%d", byte(op))
}

// HasSize reports whether the encoding carries a size byte after the mode byte.
func (op Opcode) HasSize() bool {
	switch op {
	case OPMOV, OPADD, OPMUL, OPCMP:
		return true
	}
	return false
}

// Mnemonic indexes MnemonicNames. Values up to HLT share their number with
// the opcode they encode.
type Mnemonic int

// Mnemonics that map one-to-one onto an opcode.
const (
	NOP  = Mnemonic(OPNOP)
	MOV  = Mnemonic(OPMOV)
	CMP  = Mnemonic(OPCMP)
	JMP  = Mnemonic(OPJMP)
	JE   = Mnemonic(OPJE)
	JL   = Mnemonic(OPJL)
	CALL = Mnemonic(OPCALL)
	// CALLE is call-if-equal.
	CALLE = Mnemonic(OPCALLE)
	RET   = Mnemonic(OPRET)
	IRET  = Mnemonic(OPIRET)
	CLI   = Mnemonic(OPCLI)
	STI   = Mnemonic(OPSTI)
	INC   = Mnemonic(OPINC)
	ADD   = Mnemonic(OPADD)
	MUL   = Mnemonic(OPMUL)
	XOR   = Mnemonic(OPXOR)
	INB   = Mnemonic(OPINB)
	OUTB  = Mnemonic(OPOUTB)
	LDIDT = Mnemonic(OPLDIDT)
	HLT   = Mnemonic(OPHLT)
)

// Mnemonics beyond the opcode range.
const (
	// MOVW moves with an explicit one-byte size.
	MOVW Mnemonic = Mnemonic(OPHLT) + 1 + iota
	// MOVD moves with an explicit two-byte size.
	MOVD
	// MOVQ moves with an explicit four-byte size.
	MOVQ
	// DB emits raw bytes.
	DB
	// TIMES repeats the statement that follows it.
	TIMES
)

// MnemonicNames is the keyword table for the lexer, indexed by Mnemonic.
var MnemonicNames = buildMnemonicNames()

func buildMnemonicNames() []string {
	names := make([]string, 0, len(opcodeNames)+5)
	for _, n := range opcodeNames {
		names = append(names, strings.ToUpper(n))
	}
	return append(names, "MOVW", "MOVD", "MOVQ", "DB", "TIMES")
}

// String returns the keyword as written in the table.
func (m Mnemonic) String() string {
	if m >= 0 && int(m) < len(MnemonicNames) {
		return MnemonicNames[m]
	}
	return fmt.Sprintf("Mnemonic(%d)", int(m))
}

// Opcode returns the opcode m encodes to. Directives report false.
func (m Mnemonic) Opcode() (Opcode, bool) {
	switch {
	case m >= NOP && m <= HLT:
		return Opcode(m), true
	case m == MOVW || m == MOVD || m == MOVQ:
		return OPMOV, true
	}
	return 0, false
}

// Size returns the explicit size a suffixed mnemonic carries.
func (m Mnemonic) Size() (Size, bool) {
	switch m {
	case MOVW:
		return SizeWord, true
	case MOVD:
		return SizeDWord, true
	case MOVQ:
		return SizeQWord, true
	}
	return 0, false
}

// IsMove reports whether m is MOV or one of its sized forms.
func (m Mnemonic) IsMove() bool {
	return m == MOV || m == MOVW || m == MOVD || m == MOVQ
}

// Size is the operand size class carried by MOV, ADD, MUL and CMP.
type Size byte

const (
	// SizeWord is one byte.
	SizeWord Size = iota
	// SizeDWord is two bytes.
	SizeDWord
	// SizeQWord is four bytes.
	SizeQWord
)

// Bytes returns the width of a value of size s.
func (s Size) Bytes() int {
	switch s {
	case SizeWord:
		return 1
	case SizeDWord:
		return 2
	}
	return 4
}

// Fits reports whether v can be stored in size s.
func (s Size) Fits(v uint32) bool {
	switch s {
	case SizeWord:
		return v <= 0xFF
	case SizeDWord:
		return v <= 0xFFFF
	}
	return true
}

func (s Size) String() string {
	switch s {
	case SizeWord:
		return "word"
	case SizeDWord:
		return "dword"
	case SizeQWord:
		return "qword"
	}
	return fmt.Sprintf("Size(%d)", byte(s))
}

// SizeFor returns the smallest size class holding v.
func SizeFor(v uint32) Size {
	switch {
	case v <= 0xFF:
		return SizeWord
	case v <= 0xFFFF:
		return SizeDWord
	}
	return SizeQWord
}

// SizeOfWidth maps a byte width back to its size class.
func SizeOfWidth(width int) (Size, bool) {
	switch width {
	case 1:
		return SizeWord, true
	case 2:
		return SizeDWord, true
	case 4:
		return SizeQWord, true
	}
	return 0, false
}
