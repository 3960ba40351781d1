package assembler

import (
	"github.com/Urethramancer/chronos/cpu"
	"github.com/Urethramancer/chronos/lexer"
)

type rule struct {
	name  string
	parse func() (*Node, bool)
}

type operandRule struct {
	name  string
	parse func() (Operand, bool)
}

// Parser builds nodes from a token stream by trying each statement
// production in a fixed order.
type Parser struct {
	s        *TokenStream
	rules    []rule
	operands []operandRule
}

// Parse lexes and parses src.
func Parse(src string) ([]*Node, error) {
	return NewParser(NewLexer(src).All()).Parse()
}

// NewParser creates a parser over tokens.
func NewParser(tokens []lexer.Token) *Parser {
	p := &Parser{s: NewTokenStream(tokens)}
	p.rules = []rule{
		{"label", p.label},
		{"mov", p.mov},
		{"halt", p.nullary(cpu.HLT)},
		{"inb", p.binary(cpu.INB)},
		{"inc", p.unary(cpu.INC)},
		{"jmp", p.unary(cpu.JMP)},
		{"db", p.db},
		{"xor", p.xor},
		{"add", p.binary(cpu.ADD)},
		{"ret", p.nullary(cpu.RET)},
		{"call", p.unary(cpu.CALL)},
		{"mul", p.binary(cpu.MUL)},
		{"je", p.unary(cpu.JE)},
		{"cmp", p.binary(cpu.CMP)},
		{"jl", p.unary(cpu.JL)},
		{"outb", p.binary(cpu.OUTB)},
		{"times", p.times},
		{"local-label", p.localLabel},
		{"sti", p.nullary(cpu.STI)},
		{"cli", p.nullary(cpu.CLI)},
		{"ldidt", p.unary(cpu.LDIDT)},
		{"iret", p.nullary(cpu.IRET)},
		{"calle", p.unary(cpu.CALLE)},
	}
	p.operands = []operandRule{
		{"immediate", p.immediate},
		{"register", p.register},
		{"indirect-identifier", p.indirectIdentifier},
		{"indirect-register", p.indirectRegister},
		{"identifier", p.identifier},
		{"indirect-immediate", p.indirectImmediate},
	}
	return p
}

// Parse consumes the whole stream. The first position where no production
// matches is reported as a *ParseError.
func (p *Parser) Parse() ([]*Node, error) {
	var nodes []*Node
	for p.s.Token().Kind != lexer.EOF {
		n, ok := p.statement()
		if !ok {
			return nil, &ParseError{Token: p.s.Token()}
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (p *Parser) statement() (*Node, bool) {
	for _, r := range p.rules {
		if n, ok := capture(p.s, r.name, r.parse); ok {
			return n, true
		}
	}
	return nil, false
}

// label: Identifier ':'
func (p *Parser) label() (*Node, bool) {
	tok, ok := p.s.Take(lexer.Identifier)
	if !ok || !p.s.IsSymbol(":") {
		return nil, false
	}
	return &Node{Type: NodeLabel, Name: tok.Text, Pos: tok.Pos}, true
}

// local-label: '.' Identifier ':'
func (p *Parser) localLabel() (*Node, bool) {
	pos := p.s.Token().Pos
	if !p.s.IsSymbol(".") {
		return nil, false
	}
	tok, ok := p.s.Take(lexer.Identifier)
	if !ok || !p.s.IsSymbol(":") {
		return nil, false
	}
	return &Node{Type: NodeLocalLabel, Name: "." + tok.Text, Pos: pos}, true
}

// mov: (MOV|MOVW|MOVD|MOVQ) value ',' value
func (p *Parser) mov() (*Node, bool) {
	pos := p.s.Token().Pos
	m, ok := p.s.IsMnemonic(cpu.MOV, cpu.MOVW, cpu.MOVD, cpu.MOVQ)
	if !ok {
		return nil, false
	}
	ops, ok := p.operandList(2)
	if !ok {
		return nil, false
	}
	return &Node{Type: NodeInstruction, Mnemonic: m, Operands: ops, Pos: pos}, true
}

func (p *Parser) nullary(m cpu.Mnemonic) func() (*Node, bool) {
	return func() (*Node, bool) {
		pos := p.s.Token().Pos
		if _, ok := p.s.IsMnemonic(m); !ok {
			return nil, false
		}
		return &Node{Type: NodeInstruction, Mnemonic: m, Pos: pos}, true
	}
}

func (p *Parser) unary(m cpu.Mnemonic) func() (*Node, bool) {
	return p.withOperands(m, 1)
}

func (p *Parser) binary(m cpu.Mnemonic) func() (*Node, bool) {
	return p.withOperands(m, 2)
}

func (p *Parser) withOperands(m cpu.Mnemonic, n int) func() (*Node, bool) {
	return func() (*Node, bool) {
		pos := p.s.Token().Pos
		if _, ok := p.s.IsMnemonic(m); !ok {
			return nil, false
		}
		ops, ok := p.operandList(n)
		if !ok {
			return nil, false
		}
		return &Node{Type: NodeInstruction, Mnemonic: m, Operands: ops, Pos: pos}, true
	}
}

// xor: XOR value [',' value]
func (p *Parser) xor() (*Node, bool) {
	pos := p.s.Token().Pos
	if _, ok := p.s.IsMnemonic(cpu.XOR); !ok {
		return nil, false
	}
	first, ok := p.value()
	if !ok {
		return nil, false
	}
	n := &Node{Type: NodeInstruction, Mnemonic: cpu.XOR, Operands: []Operand{first}, Pos: pos}

	p.s.Snapshot()
	if p.s.IsSymbol(",") {
		if second, ok := p.value(); ok {
			p.s.Commit()
			n.Operands = append(n.Operands, second)
			return n, true
		}
	}
	p.s.Rollback()
	return n, true
}

// db: DB item {',' item} where item is a string or a number.
func (p *Parser) db() (*Node, bool) {
	pos := p.s.Token().Pos
	if _, ok := p.s.IsMnemonic(cpu.DB); !ok {
		return nil, false
	}
	n := &Node{Type: NodeData, Pos: pos}
	for {
		tok := p.s.Token()
		switch tok.Kind {
		case lexer.String:
			n.Operands = append(n.Operands, Operand{Type: OperandString, Text: tok.Text, Pos: tok.Pos})
		case lexer.Number:
			n.Operands = append(n.Operands, Operand{Type: OperandImmediate, Value: tok.Value, Pos: tok.Pos})
		default:
			return nil, false
		}
		p.s.Consume()
		if !p.s.IsSymbol(",") {
			return n, true
		}
	}
}

// times: TIMES Number statement
func (p *Parser) times() (*Node, bool) {
	pos := p.s.Token().Pos
	if _, ok := p.s.IsMnemonic(cpu.TIMES); !ok {
		return nil, false
	}
	count, ok := p.s.Take(lexer.Number)
	if !ok {
		return nil, false
	}
	body, ok := p.statement()
	if !ok {
		return nil, false
	}
	return &Node{Type: NodeRepeat, Count: count.Value, Body: body, Pos: pos}, true
}

// operandList reads exactly n comma-separated values.
func (p *Parser) operandList(n int) ([]Operand, bool) {
	ops := make([]Operand, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 && !p.s.IsSymbol(",") {
			return nil, false
		}
		op, ok := p.value()
		if !ok {
			return nil, false
		}
		ops = append(ops, op)
	}
	return ops, true
}

// value tries each operand form in order; the first to match wins.
func (p *Parser) value() (Operand, bool) {
	for _, r := range p.operands {
		if op, ok := capture(p.s, r.name, r.parse); ok {
			return op, true
		}
	}
	return Operand{}, false
}

func (p *Parser) immediate() (Operand, bool) {
	tok, ok := p.s.Take(lexer.Number)
	if !ok {
		return Operand{}, false
	}
	return Operand{Type: OperandImmediate, Value: tok.Value, Pos: tok.Pos}, true
}

func (p *Parser) register() (Operand, bool) {
	tok, ok := p.s.Take(lexer.Register)
	if !ok {
		return Operand{}, false
	}
	return Operand{Type: OperandRegister, Register: cpu.Register(tok.ID), Pos: tok.Pos}, true
}

// name reads an identifier with an optional leading dot.
func (p *Parser) name() (string, lexer.Position, bool) {
	pos := p.s.Token().Pos
	prefix := ""
	if p.s.IsSymbol(".") {
		prefix = "."
	}
	tok, ok := p.s.Take(lexer.Identifier)
	if !ok {
		return "", pos, false
	}
	return prefix + tok.Text, pos, true
}

func (p *Parser) identifier() (Operand, bool) {
	name, pos, ok := p.name()
	if !ok {
		return Operand{}, false
	}
	return Operand{Type: OperandIdentifier, Name: name, Pos: pos}, true
}

func (p *Parser) indirectIdentifier() (Operand, bool) {
	pos := p.s.Token().Pos
	if !p.s.IsSymbol("(") {
		return Operand{}, false
	}
	name, _, ok := p.name()
	if !ok || !p.s.IsSymbol(")") {
		return Operand{}, false
	}
	return Operand{Type: OperandIndirectIdentifier, Name: name, Pos: pos}, true
}

func (p *Parser) indirectRegister() (Operand, bool) {
	pos := p.s.Token().Pos
	if !p.s.IsSymbol("(") {
		return Operand{}, false
	}
	tok, ok := p.s.Take(lexer.Register)
	if !ok || !p.s.IsSymbol(")") {
		return Operand{}, false
	}
	return Operand{Type: OperandIndirectRegister, Register: cpu.Register(tok.ID), Pos: pos}, true
}

func (p *Parser) indirectImmediate() (Operand, bool) {
	pos := p.s.Token().Pos
	if !p.s.IsSymbol("(") {
		return Operand{}, false
	}
	tok, ok := p.s.Take(lexer.Number)
	if !ok || !p.s.IsSymbol(")") {
		return Operand{}, false
	}
	return Operand{Type: OperandIndirectImmediate, Value: tok.Value, Pos: pos}, true
}
