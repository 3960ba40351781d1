package assembler

import (
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// emitData writes db values: strings as ASCII bytes, numbers as their low byte.
func (a *Assembler) emitData(n *Node) error {
	if len(n.Operands) == 0 {
		return encodingError(n, "db requires at least one value")
	}
	start := a.offset()
	for _, o := range n.Operands {
		switch o.Type {
		case OperandString:
			for i, r := range o.Text {
				if r >= utf8.RuneSelf {
					a.code = a.code[:start]
					return encodingError(n, "db string %q has non-ASCII character %q at %d", o.Text, r, i)
				}
			}
			a.code = append(a.code, o.Text...)
		case OperandImmediate:
			a.code = append(a.code, byte(o.Value))
		default:
			a.code = a.code[:start]
			return encodingError(n, "db does not accept %s operands", o.Type)
		}
	}
	a.log.WithFields(logrus.Fields{"offset": start, "bytes": a.offset() - start}).Debug("emitted data")
	return nil
}

// emitRepeat emits the body of a times directive count times.
func (a *Assembler) emitRepeat(n *Node) error {
	if n.Body == nil {
		return encodingError(n, "times requires a statement")
	}
	for i := uint32(0); i < n.Count; i++ {
		if err := a.emit(n.Body); err != nil {
			return err
		}
	}
	return nil
}
