package assembler

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/Urethramancer/chronos/lexer"
)

var (
	// ErrSymbolNotFound is returned by SymbolTable.Lookup for unknown names.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrDuplicateSymbol is returned when a name is declared twice in one scope.
	ErrDuplicateSymbol = errors.New("duplicate symbol")
)

// ParseError reports the first token no statement production accepted.
type ParseError struct {
	Token lexer.Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: unexpected %s", e.Token.Pos.Line, e.Token.Pos.Column+1, e.Token)
}

// Position returns where the offending token starts.
func (e *ParseError) Position() lexer.Position {
	return e.Token.Pos
}

// EncodingError reports a node that parsed but has no binary form.
type EncodingError struct {
	Pos    lexer.Position
	Kind   string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("line %d, column %d: cannot encode %s: %s", e.Pos.Line, e.Pos.Column+1, e.Kind, e.Reason)
}

// Position returns where the node starts.
func (e *EncodingError) Position() lexer.Position {
	return e.Pos
}

// UndefinedSymbolError reports a reference that was never resolved.
type UndefinedSymbolError struct {
	Name   string
	Offset uint32
	Pos    lexer.Position
}

func (e *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("line %d, column %d: undefined symbol %q (placeholder at offset %d)", e.Pos.Line, e.Pos.Column+1, e.Name, e.Offset)
}

// Position returns where the reference was written.
func (e *UndefinedSymbolError) Position() lexer.Position {
	return e.Pos
}

func encodingError(n *Node, format string, args ...any) error {
	return &EncodingError{Pos: n.Pos, Kind: n.Kind(), Reason: fmt.Sprintf(format, args...)}
}
