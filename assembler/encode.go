package assembler

import (
	"github.com/sirupsen/logrus"

	"github.com/Urethramancer/chronos/cpu"
)

// emitInstruction writes opcode, mode, the optional size byte and operands.
// Instructions without operands are a lone opcode byte.
func (a *Assembler) emitInstruction(n *Node) error {
	op, ok := n.Mnemonic.Opcode()
	if !ok {
		return encodingError(n, "%s is not an instruction", n.Mnemonic)
	}

	start := a.offset()
	if len(n.Operands) == 0 {
		a.code = append(a.code, byte(op))
		a.layouts = append(a.layouts, cpu.Layout{Offset: start, Length: 1})
		return nil
	}

	mode, err := addressingMode(n)
	if err != nil {
		return err
	}

	var size cpu.Size
	sized := op.HasSize()
	if sized {
		if len(n.Operands) != 2 {
			return encodingError(n, "%s takes two operands", n.Mnemonic)
		}
		size, err = operandSize(n)
		if err != nil {
			return err
		}
	}

	// Validate before writing so a failed instruction leaves no partial bytes.
	for _, o := range n.Operands {
		if (o.Type == OperandRegister || o.Type == OperandIndirectRegister) && !o.Register.Valid() {
			return encodingError(n, "invalid register %d", o.Register)
		}
	}

	a.code = append(a.code, byte(op), byte(mode))
	if sized {
		a.code = append(a.code, byte(size))
	}

	widths := make([]int, len(n.Operands))
	for i, o := range n.Operands {
		isSource := sized && i == 1
		widths[i] = a.emitOperand(o, isSource, size)
	}

	a.layouts = append(a.layouts, cpu.Layout{Offset: start, Length: int(a.offset() - start), Widths: widths})
	a.log.WithFields(logrus.Fields{
		"offset": start,
		"op":     op,
		"mode":   mode,
	}).Debugf("emitted %s", n)
	return nil
}

// addressingMode maps the operand forms of n to a mode byte.
func addressingMode(n *Node) (cpu.AddressingMode, error) {
	classes := make([]cpu.OperandClass, len(n.Operands))
	for i, o := range n.Operands {
		c, ok := o.Class()
		if !ok {
			return cpu.ModeUnknown, encodingError(n, "%s operand is only valid in db", o.Type)
		}
		classes[i] = c
	}

	switch len(classes) {
	case 1:
		if m, ok := cpu.SingleOperandMode(classes[0]); ok {
			return m, nil
		}
	case 2:
		if m, ok := cpu.TwoOperandMode(classes[0], classes[1]); ok {
			return m, nil
		}
		return cpu.ModeUnknown, encodingError(n, "no addressing mode for %s destination with %s source",
			n.Operands[0].Type, n.Operands[1].Type)
	}
	return cpu.ModeUnknown, encodingError(n, "unsupported operand count %d", len(classes))
}

// operandSize picks the size byte. Immediate sources use the explicit suffix
// or their magnitude; every other source is treated as four bytes.
func operandSize(n *Node) (cpu.Size, error) {
	src := n.Operands[1]
	if src.Type != OperandImmediate {
		return cpu.SizeQWord, nil
	}
	if s, ok := n.Mnemonic.Size(); ok {
		if !s.Fits(src.Value) {
			return 0, encodingError(n, "immediate %d does not fit a %s", src.Value, s)
		}
		return s, nil
	}
	return cpu.SizeFor(src.Value), nil
}

// emitOperand appends one operand and returns its width in bytes. The source
// immediate of a sized instruction takes the instruction size; any other
// immediate takes its own magnitude.
func (a *Assembler) emitOperand(o Operand, isSource bool, size cpu.Size) int {
	switch o.Type {
	case OperandRegister, OperandIndirectRegister:
		a.code = append(a.code, byte(o.Register))
		return 1
	case OperandImmediate:
		s := cpu.SizeFor(o.Value)
		if isSource {
			s = size
		}
		a.code = cpu.AppendValue(a.code, o.Value, s)
		return s.Bytes()
	case OperandIndirectImmediate:
		a.code = cpu.AppendValue(a.code, o.Value, cpu.SizeQWord)
		return 4
	}
	a.reference(o)
	return 4
}

// reference writes a symbol address, or a zero placeholder plus a relocation
// when the symbol is not visible yet.
func (a *Assembler) reference(o Operand) {
	if addr, ok := a.symbols.find(o.Name); ok {
		a.code = cpu.AppendValue(a.code, addr, cpu.SizeQWord)
		return
	}
	a.relocs = append(a.relocs, relocation{offset: a.offset(), name: o.Name, pos: o.Pos})
	a.code = append(a.code, 0, 0, 0, 0)
	a.log.WithFields(logrus.Fields{"symbol": o.Name, "offset": a.offset() - 4}).Debug("deferred reference")
}
