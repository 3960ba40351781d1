package assembler

import (
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Urethramancer/chronos/cpu"
	"github.com/Urethramancer/chronos/lexer"
)

// relocation is a four-byte placeholder waiting for a symbol address.
type relocation struct {
	offset uint32
	name   string
	pos    lexer.Position
}

// Assembler holds the state for the assembly process. State is reset at the
// start of every run, so one Assembler can be reused but not shared between
// goroutines.
type Assembler struct {
	log      logrus.FieldLogger
	symbols  *SymbolTable
	code     []byte
	relocs   []relocation
	layouts  []cpu.Layout
	declared []Symbol
	errs     *multierror.Error
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger used for debug output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Assembler) {
		a.log = l
	}
}

// New creates a new Assembler instance.
func New(opts ...Option) *Assembler {
	a := &Assembler{log: logrus.StandardLogger()}
	for _, o := range opts {
		o(a)
	}
	a.reset()
	return a
}

func (a *Assembler) reset() {
	a.symbols = NewSymbolTable()
	a.code = nil
	a.relocs = nil
	a.layouts = nil
	a.declared = nil
	a.errs = nil
}

// Assemble takes ChronosVM source and returns the machine code.
func (a *Assembler) Assemble(src string) ([]byte, error) {
	nodes, err := Parse(src)
	if err != nil {
		return nil, errors.Wrap(err, "parsing error")
	}
	return a.AssembleNodes(nodes)
}

// AssembleTo assembles src and writes the image to w in one write. Nothing is
// written when assembly fails.
func (a *Assembler) AssembleTo(w io.Writer, src string) error {
	code, err := a.Assemble(src)
	if err != nil {
		return err
	}
	if _, err := w.Write(code); err != nil {
		return errors.Wrap(err, "writing image")
	}
	return nil
}

// AssembleNodes encodes already parsed nodes in order.
func (a *Assembler) AssembleNodes(nodes []*Node) ([]byte, error) {
	a.reset()
	for _, n := range nodes {
		if err := a.emit(n); err != nil {
			a.code = nil
			return nil, err
		}
	}

	a.patch()
	for _, r := range a.relocs {
		a.errs = multierror.Append(a.errs, &UndefinedSymbolError{Name: r.name, Offset: r.offset, Pos: r.pos})
	}
	a.relocs = nil
	if err := a.errs.ErrorOrNil(); err != nil {
		a.code = nil
		return nil, err
	}

	a.log.WithFields(logrus.Fields{
		"bytes":   len(a.code),
		"symbols": len(a.declared),
	}).Debug("assembly complete")
	return a.code, nil
}

// Symbols returns every label declared in the last run, in declaration order.
// Local labels keep their leading dot.
func (a *Assembler) Symbols() []Symbol {
	return append([]Symbol(nil), a.declared...)
}

// Layouts returns the position and operand widths of every instruction
// emitted in the last run.
func (a *Assembler) Layouts() []cpu.Layout {
	return append([]cpu.Layout(nil), a.layouts...)
}

func (a *Assembler) offset() uint32 {
	return uint32(len(a.code))
}

func (a *Assembler) emit(n *Node) error {
	switch n.Type {
	case NodeLabel:
		a.patch()
		a.closeRegion()
		a.symbols.ReturnToGlobal()
		return a.declare(n)
	case NodeLocalLabel:
		a.symbols.PushNamedScope(n.Name)
		return a.declare(n)
	case NodeData:
		return a.emitData(n)
	case NodeRepeat:
		return a.emitRepeat(n)
	case NodeInstruction:
		return a.emitInstruction(n)
	}
	return encodingError(n, "unknown node type %d", n.Type)
}

func (a *Assembler) declare(n *Node) error {
	addr := a.offset()
	if err := a.symbols.Declare(n.Name, addr); err != nil {
		return errors.Wrapf(err, "line %d, column %d", n.Pos.Line, n.Pos.Column+1)
	}
	a.declared = append(a.declared, Symbol{Name: n.Name, Address: addr})
	a.log.WithFields(logrus.Fields{"label": n.Name, "address": addr}).Debug("declared label")
	return nil
}

// patch fills every placeholder whose symbol is now visible.
func (a *Assembler) patch() {
	pending := a.relocs[:0]
	for _, r := range a.relocs {
		addr, ok := a.symbols.find(r.name)
		if !ok {
			pending = append(pending, r)
			continue
		}
		cpu.PutDWord(a.code[r.offset:], addr)
		a.log.WithFields(logrus.Fields{
			"symbol":  r.name,
			"offset":  r.offset,
			"address": addr,
		}).Debug("patched reference")
	}
	a.relocs = pending
}

// closeRegion reports local references still pending when their region ends.
// Later local labels of the same name belong to another region.
func (a *Assembler) closeRegion() {
	pending := a.relocs[:0]
	for _, r := range a.relocs {
		if strings.HasPrefix(r.name, ".") {
			a.errs = multierror.Append(a.errs, &UndefinedSymbolError{Name: r.name, Offset: r.offset, Pos: r.pos})
			continue
		}
		pending = append(pending, r)
	}
	a.relocs = pending
}
