package assembler

import (
	"github.com/Urethramancer/chronos/cpu"
	"github.com/Urethramancer/chronos/lexer"
)

// NewLexer returns a lexer configured for ChronosVM source.
func NewLexer(src string) *lexer.Lexer {
	return lexer.New(src,
		lexer.MatchComment(';'),
		lexer.MatchSymbols(",", "(", ")", ".", ":"),
		lexer.MatchNumber(),
		lexer.MatchRegisters(cpu.RegisterNames),
		lexer.MatchMnemonics(cpu.MnemonicNames),
		lexer.MatchString(),
		lexer.MatchIdentifier(),
	)
}

type memoKey struct {
	index int
	rule  string
}

type memoEntry struct {
	value any
	end   int
}

// TokenStream is the parser's view of the token sequence. Successful
// productions are remembered per position so a later attempt of the same
// production at the same place is answered without re-parsing.
type TokenStream struct {
	*lexer.Stream[lexer.Token]
	eof  lexer.Token
	memo map[memoKey]memoEntry
	hits int
}

// NewTokenStream wraps tokens, appending an EOF token if the slice lacks one.
func NewTokenStream(tokens []lexer.Token) *TokenStream {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != lexer.EOF {
		var pos lexer.Position
		if len(tokens) > 0 {
			pos = tokens[len(tokens)-1].Pos
		}
		tokens = append(tokens, lexer.Token{Kind: lexer.EOF, Pos: pos})
	}
	return &TokenStream{
		Stream: lexer.NewStream(tokens, nil),
		eof:    tokens[len(tokens)-1],
		memo:   make(map[memoKey]memoEntry),
	}
}

// Token returns the current token, or EOF past the end.
func (s *TokenStream) Token() lexer.Token {
	if tok, ok := s.Current(); ok {
		return tok
	}
	return s.eof
}

// Take consumes the current token if it has the given kind.
func (s *TokenStream) Take(kind lexer.Kind) (lexer.Token, bool) {
	tok := s.Token()
	if tok.Kind != kind || kind == lexer.EOF {
		return tok, false
	}
	s.Consume()
	return tok, true
}

// IsSymbol consumes the current token if it is the punctuation text.
func (s *TokenStream) IsSymbol(text string) bool {
	tok := s.Token()
	if tok.Kind != lexer.Symbol || tok.Text != text {
		return false
	}
	s.Consume()
	return true
}

// IsMnemonic consumes the current token if it is one of the given mnemonics
// and reports which one matched.
func (s *TokenStream) IsMnemonic(mnemonics ...cpu.Mnemonic) (cpu.Mnemonic, bool) {
	tok := s.Token()
	if tok.Kind != lexer.Mnemonic {
		return 0, false
	}
	for _, m := range mnemonics {
		if tok.ID == int(m) {
			s.Consume()
			return m, true
		}
	}
	return 0, false
}

// capture runs fn as the named production at the current position. On success
// the result is memoized and the stream stays after it; on failure the stream
// is restored.
func capture[T any](s *TokenStream, rule string, fn func() (T, bool)) (T, bool) {
	key := memoKey{index: s.Index(), rule: rule}
	if m, ok := s.memo[key]; ok {
		s.hits++
		s.Advance(m.end - key.index)
		return m.value.(T), true
	}

	s.Snapshot()
	v, ok := fn()
	if !ok {
		s.Rollback()
		var zero T
		return zero, false
	}
	s.Commit()
	s.memo[key] = memoEntry{value: v, end: s.Index()}
	return v, true
}
