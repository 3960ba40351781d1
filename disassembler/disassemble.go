package disassembler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/Urethramancer/chronos/cpu"
)

// Operand is one decoded operand.
type Operand struct {
	Class cpu.OperandClass
	Value uint32
	Width int
}

// Instruction represents a single decoded instruction at a specific address.
type Instruction struct {
	Address  uint32
	Op       cpu.Opcode
	Mode     cpu.AddressingMode
	Size     cpu.Size
	HasSize  bool
	Operands []Operand
	Length   uint32
}

// Decode reads the instruction described by l from code. The layout supplies
// operand widths, which the bytes alone do not determine.
func Decode(code []byte, l cpu.Layout) (*Instruction, error) {
	off := int(l.Offset)
	if off >= len(code) {
		return nil, errors.Errorf("instruction at %d is outside the %d byte image", off, len(code))
	}
	inst := &Instruction{Address: l.Offset, Op: cpu.Opcode(code[off])}
	if !inst.Op.Valid() {
		return nil, errors.Errorf("invalid opcode $%02X at %d", code[off], off)
	}

	pc := off + 1
	if len(l.Widths) > 0 {
		if pc >= len(code) {
			return nil, errors.Errorf("truncated instruction at %d", off)
		}
		inst.Mode = cpu.AddressingMode(code[pc])
		pc++

		classes, ok := inst.Mode.Classes()
		if !ok {
			return nil, errors.Errorf("invalid addressing mode %d at %d", code[pc-1], off)
		}
		if len(classes) != len(l.Widths) {
			return nil, errors.Errorf("%s at %d has %d operands, layout has %d", inst.Mode, off, len(classes), len(l.Widths))
		}

		if inst.Op.HasSize() {
			if pc >= len(code) || code[pc] > byte(cpu.SizeQWord) {
				return nil, errors.Errorf("missing or invalid size byte at %d", pc)
			}
			inst.HasSize = true
			inst.Size = cpu.Size(code[pc])
			pc++
		}

		for i, c := range classes {
			w := l.Widths[i]
			if err := checkWidth(inst, i, c, w); err != nil {
				return nil, errors.Wrapf(err, "operand %d at %d", i+1, off)
			}
			v, err := cpu.ReadValue(code[pc:], w)
			if err != nil {
				return nil, errors.Wrapf(err, "operand %d at %d", i+1, off)
			}
			if (c == cpu.ClassRegister || c == cpu.ClassRIndirect) && !cpu.Register(v).Valid() {
				return nil, errors.Errorf("invalid register %d at %d", v, pc)
			}
			inst.Operands = append(inst.Operands, Operand{Class: c, Value: v, Width: w})
			pc += w
		}
	}

	inst.Length = uint32(pc - off)
	if l.Length != 0 && int(inst.Length) != l.Length {
		return nil, errors.Errorf("instruction at %d decodes to %d bytes, layout says %d", off, inst.Length, l.Length)
	}
	return inst, nil
}

func checkWidth(inst *Instruction, i int, c cpu.OperandClass, w int) error {
	switch c {
	case cpu.ClassRegister, cpu.ClassRIndirect:
		if w != 1 {
			return errors.Errorf("%s operand must be 1 byte, not %d", c, w)
		}
	case cpu.ClassIndirect:
		if w != 4 {
			return errors.Errorf("%s operand must be 4 bytes, not %d", c, w)
		}
	default:
		if _, ok := cpu.SizeOfWidth(w); !ok {
			return errors.Errorf("immediate width %d", w)
		}
		if inst.HasSize && i == 1 && w != inst.Size.Bytes() {
			return errors.Errorf("immediate is %d bytes but size is %s", w, inst.Size)
		}
	}
	return nil
}

// Mnemonic returns the instruction name, with a size suffix on mov when the
// size cannot be inferred from the source operand.
func (inst *Instruction) Mnemonic() string {
	name := inst.Op.String()
	if inst.Op != cpu.OPMOV || !inst.HasSize || len(inst.Operands) != 2 {
		return name
	}
	src := inst.Operands[1]
	if src.Class != cpu.ClassImmediate || cpu.SizeFor(src.Value) == inst.Size {
		return name
	}
	return name + [...]string{"w", "d", "q"}[inst.Size]
}

// labeler turns addresses back into names.
type labeler map[uint32][]string

// name prefers a global label over a local one.
func (l labeler) name(addr uint32) (string, bool) {
	names := l[addr]
	for _, n := range names {
		if !strings.HasPrefix(n, ".") {
			return n, true
		}
	}
	if len(names) > 0 {
		return names[0], true
	}
	return "", false
}

func (l labeler) operand(o Operand) string {
	switch o.Class {
	case cpu.ClassRegister:
		return cpu.Register(o.Value).String()
	case cpu.ClassRIndirect:
		return "(" + cpu.Register(o.Value).String() + ")"
	case cpu.ClassIndirect:
		if n, ok := l.name(o.Value); ok {
			return "(" + n + ")"
		}
		return fmt.Sprintf("($%X)", o.Value)
	}
	if o.Width == 4 {
		if n, ok := l.name(o.Value); ok {
			return n
		}
		return fmt.Sprintf("$%X", o.Value)
	}
	return fmt.Sprintf("%d", o.Value)
}

// Format renders the instruction as source text, using labels for addresses.
func (inst *Instruction) Format(labels map[uint32][]string) string {
	l := labeler(labels)
	ops := make([]string, len(inst.Operands))
	for i, o := range inst.Operands {
		ops[i] = l.operand(o)
	}
	if len(ops) == 0 {
		return inst.Mnemonic()
	}
	return fmt.Sprintf("%-8s %s", inst.Mnemonic(), strings.Join(ops, ", "))
}

// Disassemble renders code as source text. Instructions are taken from
// layouts; bytes no layout covers are rendered as db lines. Labels are
// printed before the address they name.
func Disassemble(code []byte, layouts []cpu.Layout, labels map[uint32][]string) (string, error) {
	total := uint32(len(code))
	for _, l := range layouts {
		if l.Offset >= total || l.End() > total {
			return "", errors.Errorf("instruction at %d is outside the %d byte image", l.Offset, total)
		}
	}

	sorted := append([]cpu.Layout(nil), layouts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	var out strings.Builder
	printLabels := func(addr uint32) {
		for _, n := range labels[addr] {
			fmt.Fprintf(&out, "%s:\n", n)
		}
	}

	pc := uint32(0)
	next := 0
	for pc < total {
		printLabels(pc)

		if next < len(sorted) && sorted[next].Offset < pc {
			return "", errors.Errorf("instruction at %d overlaps previous code ending at %d", sorted[next].Offset, pc)
		}

		// Data runs until the next instruction or label.
		if next >= len(sorted) || sorted[next].Offset > pc {
			end := total
			if next < len(sorted) {
				end = sorted[next].Offset
			}
			for a := pc + 1; a < end; a++ {
				if len(labels[a]) > 0 {
					end = a
					break
				}
			}
			out.WriteString(formatData(code[pc:end]))
			pc = end
			continue
		}

		inst, err := Decode(code, sorted[next])
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&out, "    %s\n", inst.Format(labels))
		pc += inst.Length
		next++

		// Labels inside an instruction cannot be placed.
		for a := inst.Address + 1; a < pc; a++ {
			if len(labels[a]) > 0 {
				return "", errors.Errorf("label %s points inside the instruction at %d", labels[a][0], inst.Address)
			}
		}
	}
	printLabels(total)
	return out.String(), nil
}
