package lexer

import "iter"

// Recognizer tries to read one token at the cursor of s.
// It reports false when the input at the cursor is not its kind of token.
type Recognizer interface {
	Recognize(s *Source) (Token, bool)
}

// RecognizerFunc adapts a plain function to the Recognizer interface.
type RecognizerFunc func(s *Source) (Token, bool)

// Recognize calls f.
func (f RecognizerFunc) Recognize(s *Source) (Token, bool) {
	return f(s)
}

// Match runs r inside a snapshot. The cursor is restored unless r reports a
// match that consumed at least one rune.
func Match(r Recognizer, s *Source) (Token, bool) {
	start := s.Index()
	s.Snapshot()
	tok, ok := r.Recognize(s)
	if !ok || s.Index() == start {
		s.Rollback()
		return Token{}, false
	}
	s.Commit()
	return tok, true
}

// Lexer turns source text into tokens using an ordered list of recognizers.
type Lexer struct {
	src         *Source
	recognizers []Recognizer
	done        bool
}

// New creates a lexer for src. Whitespace is always recognized first, then
// the given recognizers in order; the first match wins.
func New(src string, recognizers ...Recognizer) *Lexer {
	return &Lexer{
		src:         NewSource(src),
		recognizers: append([]Recognizer{MatchWhitespace()}, recognizers...),
	}
}

// Next returns the next significant token. After the input is exhausted it
// keeps returning EOF.
func (l *Lexer) Next() Token {
	for {
		pos := l.src.Position()
		if l.src.AtEnd() {
			l.done = true
			return Token{Kind: EOF, Pos: pos}
		}

		tok, ok := l.recognize()
		if !ok {
			r, _ := l.src.Consume()
			return Token{Kind: Illegal, Text: string(r), Pos: pos}
		}
		if tok.Kind == Whitespace {
			continue
		}
		tok.Pos = pos
		return tok
	}
}

func (l *Lexer) recognize() (Token, bool) {
	for _, r := range l.recognizers {
		if tok, ok := Match(r, l.src); ok {
			return tok, true
		}
	}
	return Token{}, false
}

// Tokens yields tokens lazily up to and including EOF.
func (l *Lexer) Tokens() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for !l.done {
			if !yield(l.Next()) {
				return
			}
		}
	}
}

// All collects the remaining tokens, ending with EOF.
func (l *Lexer) All() []Token {
	var out []Token
	for tok := range l.Tokens() {
		out = append(out, tok)
	}
	return out
}
