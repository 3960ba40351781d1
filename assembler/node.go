package assembler

import (
	"fmt"
	"strings"

	"github.com/Urethramancer/chronos/cpu"
	"github.com/Urethramancer/chronos/lexer"
)

// NodeType defines the type of an assembly node.
type NodeType int

const (
	// NodeLabel declares a global label and closes any local scopes.
	NodeLabel NodeType = iota
	// NodeLocalLabel opens a local scope and declares a label in it.
	NodeLocalLabel
	// NodeInstruction is a machine instruction.
	NodeInstruction
	// NodeData is a db directive.
	NodeData
	// NodeRepeat is a times directive.
	NodeRepeat
)

// OperandType is the syntactic form of an operand.
type OperandType int

const (
	// OperandImmediate is a number literal.
	OperandImmediate OperandType = iota
	// OperandRegister is a register name.
	OperandRegister
	// OperandIdentifier is a label reference used as a value.
	OperandIdentifier
	// OperandIndirectRegister is (REG).
	OperandIndirectRegister
	// OperandIndirectIdentifier is (label).
	OperandIndirectIdentifier
	// OperandIndirectImmediate is (number).
	OperandIndirectImmediate
	// OperandString is a string literal; only db accepts it.
	OperandString
)

var operandTypeNames = [...]string{
	"immediate", "register", "identifier", "indirect register",
	"indirect identifier", "indirect immediate", "string",
}

func (t OperandType) String() string {
	if t >= 0 && int(t) < len(operandTypeNames) {
		return operandTypeNames[t]
	}
	return fmt.Sprintf("OperandType(%d)", int(t))
}

// Operand is one parsed instruction or directive argument.
type Operand struct {
	Type     OperandType
	Value    uint32
	Register cpu.Register
	Name     string // identifiers; local names keep their leading dot
	Text     string // strings
	Pos      lexer.Position
}

// Class returns the addressing class of the operand.
func (o Operand) Class() (cpu.OperandClass, bool) {
	switch o.Type {
	case OperandImmediate, OperandIdentifier:
		return cpu.ClassImmediate, true
	case OperandRegister:
		return cpu.ClassRegister, true
	case OperandIndirectIdentifier, OperandIndirectImmediate:
		return cpu.ClassIndirect, true
	case OperandIndirectRegister:
		return cpu.ClassRIndirect, true
	}
	return 0, false
}

// String renders the operand in source form.
func (o Operand) String() string {
	switch o.Type {
	case OperandImmediate:
		return fmt.Sprintf("%d", o.Value)
	case OperandRegister:
		return o.Register.String()
	case OperandIdentifier:
		return o.Name
	case OperandIndirectRegister:
		return "(" + o.Register.String() + ")"
	case OperandIndirectIdentifier:
		return "(" + o.Name + ")"
	case OperandIndirectImmediate:
		return fmt.Sprintf("(%d)", o.Value)
	case OperandString:
		return lexer.Quote(o.Text)
	}
	return "?"
}

// Node represents one parsed element from the assembly source.
type Node struct {
	Type     NodeType
	Name     string       // labels
	Mnemonic cpu.Mnemonic // instructions
	Operands []Operand    // dest first; db values
	Count    uint32       // times
	Body     *Node        // times
	Pos      lexer.Position
}

// Kind names the construct, e.g. Mov, Label or Times.
func (n *Node) Kind() string {
	switch n.Type {
	case NodeLabel:
		return "Label"
	case NodeLocalLabel:
		return "LocalLabel"
	case NodeData:
		return "Db"
	case NodeRepeat:
		return "Times"
	}
	switch {
	case n.Mnemonic.IsMove():
		return "Mov"
	case n.Mnemonic == cpu.HLT:
		return "Halt"
	}
	name := strings.ToLower(n.Mnemonic.String())
	return strings.ToUpper(name[:1]) + name[1:]
}

// Describe renders the node's operands for the trace.
func (n *Node) Describe() string {
	switch n.Type {
	case NodeLabel, NodeLocalLabel:
		return n.Name
	case NodeRepeat:
		if n.Body == nil {
			return fmt.Sprintf("%d", n.Count)
		}
		return strings.TrimSpace(fmt.Sprintf("%d: %s %s", n.Count, n.Body.Kind(), n.Body.Describe()))
	}
	parts := make([]string, len(n.Operands))
	for i, o := range n.Operands {
		parts[i] = o.String()
	}
	return strings.Join(parts, ", ")
}

// String renders the node roughly as it was written.
func (n *Node) String() string {
	switch n.Type {
	case NodeLabel, NodeLocalLabel:
		return n.Name + ":"
	case NodeData:
		return "db " + n.Describe()
	case NodeRepeat:
		if n.Body == nil {
			return fmt.Sprintf("times %d", n.Count)
		}
		return fmt.Sprintf("times %d %s", n.Count, n.Body)
	}
	mn := strings.ToLower(n.Mnemonic.String())
	if len(n.Operands) == 0 {
		return mn
	}
	return mn + " " + n.Describe()
}
