package lexer

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// MatchWhitespace matches a run of blanks, tabs and line breaks.
func MatchWhitespace() Recognizer {
	return RecognizerFunc(func(s *Source) (Token, bool) {
		var sb strings.Builder
		for {
			r, ok := s.Current()
			if !ok || !unicode.IsSpace(r) {
				break
			}
			sb.WriteRune(r)
			s.Consume()
		}
		return Token{Kind: Whitespace, Text: sb.String()}, sb.Len() > 0
	})
}

// MatchComment matches from prefix to the end of the line and reports it as whitespace.
func MatchComment(prefix rune) Recognizer {
	return RecognizerFunc(func(s *Source) (Token, bool) {
		if r, ok := s.Current(); !ok || r != prefix {
			return Token{}, false
		}
		var sb strings.Builder
		for {
			r, ok := s.Current()
			if !ok || r == '\n' {
				break
			}
			sb.WriteRune(r)
			s.Consume()
		}
		return Token{Kind: Whitespace, Text: sb.String()}, true
	})
}

type candidate struct {
	text  []rune
	index int
}

// byLength orders names longest first, keeping table order among equal lengths.
func byLength(names []string) []candidate {
	out := make([]candidate, len(names))
	for i, n := range names {
		out[i] = candidate{text: []rune(n), index: i}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].text) > len(out[j].text)
	})
	return out
}

// matchTable finds the longest entry in table at the cursor and consumes it.
func matchTable(s *Source, table []candidate, fold, bounded bool) (candidate, bool) {
	for _, c := range table {
		got, ok := s.PeekRange(len(c.text))
		if !ok || !runesEqual(got, c.text, fold) {
			continue
		}
		if bounded {
			if next, ok := s.Peek(len(c.text)); ok && isIdentRune(next) {
				continue
			}
		}
		s.Advance(len(c.text))
		return c, true
	}
	return candidate{}, false
}

func runesEqual(a, b []rune, fold bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		if !fold || unicode.ToUpper(a[i]) != unicode.ToUpper(b[i]) {
			return false
		}
	}
	return true
}

// MatchSymbols matches any of the given punctuation strings exactly, longest first.
func MatchSymbols(symbols ...string) Recognizer {
	table := byLength(symbols)
	return RecognizerFunc(func(s *Source) (Token, bool) {
		c, ok := matchTable(s, table, false, false)
		if !ok {
			return Token{}, false
		}
		return Token{Kind: Symbol, Text: string(c.text), ID: c.index}, true
	})
}

// MatchRegisters matches register names case-sensitively, longest first. The name
// must not run on into an identifier.
func MatchRegisters(names []string) Recognizer {
	table := byLength(names)
	return RecognizerFunc(func(s *Source) (Token, bool) {
		c, ok := matchTable(s, table, false, true)
		if !ok {
			return Token{}, false
		}
		return Token{Kind: Register, Text: string(c.text), ID: c.index}, true
	})
}

// MatchMnemonics matches keywords case-insensitively, longest first. The keyword
// must not be followed by a letter, digit or underscore. The token text is the
// name as spelled in the table.
func MatchMnemonics(names []string) Recognizer {
	table := byLength(names)
	return RecognizerFunc(func(s *Source) (Token, bool) {
		c, ok := matchTable(s, table, true, true)
		if !ok {
			return Token{}, false
		}
		return Token{Kind: Mnemonic, Text: string(c.text), ID: c.index}, true
	})
}

// MatchNumber matches $hex, decimal and 'c' character literals. Values that do not
// fit 32 bits produce an Illegal token.
func MatchNumber() Recognizer {
	return RecognizerFunc(func(s *Source) (Token, bool) {
		r, ok := s.Current()
		if !ok {
			return Token{}, false
		}
		switch {
		case r == '$':
			s.Consume()
			return digits(s, 16, "$")
		case isDigit(r):
			return digits(s, 10, "")
		case r == '\'':
			return charLiteral(s)
		}
		return Token{}, false
	})
}

func digits(s *Source, base uint64, prefix string) (Token, bool) {
	var sb strings.Builder
	sb.WriteString(prefix)
	var v uint64
	n := 0
	for {
		r, ok := s.Current()
		if !ok {
			break
		}
		d, ok := digitValue(r)
		if !ok || d >= base {
			break
		}
		if v <= math.MaxUint32 {
			v = v*base + d
		}
		sb.WriteRune(r)
		s.Consume()
		n++
	}
	if n == 0 {
		return Token{}, false
	}
	if v > math.MaxUint32 {
		return Token{Kind: Illegal, Text: sb.String()}, true
	}
	return Token{Kind: Number, Text: sb.String(), Value: uint32(v)}, true
}

func charLiteral(s *Source) (Token, bool) {
	s.Consume()
	r, ok := readChar(s, '\'')
	if !ok {
		return Token{}, false
	}
	if q, ok := s.Consume(); !ok || q != '\'' {
		return Token{}, false
	}
	return Token{Kind: Number, Text: "'" + escape(string(r)) + "'", Value: uint32(r)}, true
}

// MatchString matches a double-quoted literal. The token text is the decoded contents.
func MatchString() Recognizer {
	return RecognizerFunc(func(s *Source) (Token, bool) {
		if r, ok := s.Current(); !ok || r != '"' {
			return Token{}, false
		}
		s.Consume()
		var sb strings.Builder
		for {
			r, ok := s.Current()
			if !ok {
				return Token{}, false
			}
			if r == '"' {
				s.Consume()
				return Token{Kind: String, Text: sb.String()}, true
			}
			c, ok := readChar(s, '"')
			if !ok {
				return Token{}, false
			}
			sb.WriteRune(c)
		}
	})
}

// MatchIdentifier matches a letter or underscore followed by letters, digits or underscores.
func MatchIdentifier() Recognizer {
	return RecognizerFunc(func(s *Source) (Token, bool) {
		r, ok := s.Current()
		if !ok || !(unicode.IsLetter(r) || r == '_') {
			return Token{}, false
		}
		var sb strings.Builder
		for {
			r, ok := s.Current()
			if !ok || !isIdentRune(r) {
				break
			}
			sb.WriteRune(r)
			s.Consume()
		}
		return Token{Kind: Identifier, Text: sb.String()}, true
	})
}

var escapes = map[rune]rune{
	'n':  '\n',
	'b':  '\b',
	'r':  '\r',
	't':  '\t',
	'"':  '"',
	'\'': '\'',
	'\\': '\\',
}

// readChar consumes one possibly escaped character. An unescaped quote or an
// unknown escape is not a character.
func readChar(s *Source, quote rune) (rune, bool) {
	r, ok := s.Consume()
	if !ok || r == quote || r == '\n' {
		return 0, false
	}
	if r != '\\' {
		return r, true
	}
	e, ok := s.Consume()
	if !ok {
		return 0, false
	}
	c, ok := escapes[e]
	return c, ok
}

func escape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\b':
			sb.WriteString(`\b`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '"', '\'', '\\':
			sb.WriteRune('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Quote renders s as a double-quoted literal MatchString accepts.
func Quote(s string) string {
	return `"` + escape(s) + `"`
}

func digitValue(r rune) (uint64, bool) {
	switch {
	case r >= '0' && r <= '9':
		return uint64(r - '0'), true
	case r >= 'a' && r <= 'f':
		return uint64(r-'a') + 10, true
	case r >= 'A' && r <= 'F':
		return uint64(r-'A') + 10, true
	}
	return 0, false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
