package lexer

import "fmt"

// Kind is the category of a token.
type Kind int

const (
	// Illegal marks input no recognizer accepted.
	Illegal Kind = iota
	// EOF marks the end of input.
	EOF
	// Whitespace is produced for blanks and comments and never reaches the parser.
	Whitespace
	// Symbol is a punctuation token.
	Symbol
	// Number is an integer or character literal.
	Number
	// Identifier is a user-chosen name.
	Identifier
	// Register is a CPU register name.
	Register
	// Mnemonic is an instruction or directive keyword.
	Mnemonic
	// String is a double-quoted literal.
	String
)

var kindNames = [...]string{
	Illegal:    "Illegal",
	EOF:        "EOF",
	Whitespace: "Whitespace",
	Symbol:     "Symbol",
	Number:     "Number",
	Identifier: "Identifier",
	Register:   "Register",
	Mnemonic:   "Mnemonic",
	String:     "String",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one lexical unit.
type Token struct {
	Kind Kind
	// Text is the source text, the decoded contents of a string literal,
	// or the canonical upper-case name of a mnemonic.
	Text  string
	Value uint32 // numbers
	ID    int    // register or mnemonic table index
	Pos   Position
}

// Equal compares tokens by text only.
func (t Token) Equal(o Token) bool {
	return t.Text == o.Text
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}
