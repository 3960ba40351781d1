package lexer

import "fmt"

// Position is a line/column location in the source. Lines start at 1, columns at 0.
type Position struct {
	Line   int
	Column int
}

// String renders the position as line:column with a 1-based column.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column+1)
}

type mark struct {
	index int
	pos   Position
}

// Stream is an indexed cursor over a sequence with nested backtracking.
type Stream[T any] struct {
	items     []T
	index     int
	pos       Position
	marks     []mark
	isNewline func(T) bool
}

// Source is the character stream the lexer reads from.
type Source = Stream[rune]

// NewStream wraps items. isNewline may be nil when line tracking is not needed.
func NewStream[T any](items []T, isNewline func(T) bool) *Stream[T] {
	return &Stream[T]{
		items:     items,
		pos:       Position{Line: 1},
		isNewline: isNewline,
	}
}

// NewSource creates a character stream over src.
func NewSource(src string) *Source {
	return NewStream([]rune(src), func(r rune) bool { return r == '\n' })
}

// Len returns the number of items in the stream.
func (s *Stream[T]) Len() int {
	return len(s.items)
}

// Index returns the cursor position.
func (s *Stream[T]) Index() int {
	return s.index
}

// Position returns the line and column of the cursor.
func (s *Stream[T]) Position() Position {
	return s.pos
}

// AtEnd reports whether the cursor is past the last item.
func (s *Stream[T]) AtEnd() bool {
	return s.index >= len(s.items)
}

// Current returns the item under the cursor.
func (s *Stream[T]) Current() (T, bool) {
	return s.Peek(0)
}

// Consume returns the item under the cursor and moves past it.
func (s *Stream[T]) Consume() (T, bool) {
	item, ok := s.Current()
	if !ok {
		return item, false
	}
	s.index++
	if s.isNewline != nil && s.isNewline(item) {
		s.pos.Line++
		s.pos.Column = 0
	} else {
		s.pos.Column++
	}
	return item, true
}

// Advance consumes up to n items.
func (s *Stream[T]) Advance(n int) {
	for i := 0; i < n; i++ {
		if _, ok := s.Consume(); !ok {
			return
		}
	}
}

// Peek returns the item n positions ahead of the cursor.
func (s *Stream[T]) Peek(n int) (T, bool) {
	var zero T
	i := s.index + n
	if n < 0 || i >= len(s.items) {
		return zero, false
	}
	return s.items[i], true
}

// PeekRange returns the next n items without consuming them.
// It reports false when fewer than n items remain.
func (s *Stream[T]) PeekRange(n int) ([]T, bool) {
	if n < 0 || s.index+n > len(s.items) {
		return nil, false
	}
	return s.items[s.index : s.index+n], true
}

// Snapshot saves the cursor so it can be restored with Rollback.
func (s *Stream[T]) Snapshot() {
	s.marks = append(s.marks, mark{index: s.index, pos: s.pos})
}

// Rollback restores the most recent snapshot and discards it.
func (s *Stream[T]) Rollback() {
	m := s.pop()
	s.index = m.index
	s.pos = m.pos
}

// Commit discards the most recent snapshot, keeping the cursor where it is.
func (s *Stream[T]) Commit() {
	s.pop()
}

// Depth returns the number of open snapshots.
func (s *Stream[T]) Depth() int {
	return len(s.marks)
}

func (s *Stream[T]) pop() mark {
	if len(s.marks) == 0 {
		panic("lexer: rollback or commit without snapshot")
	}
	m := s.marks[len(s.marks)-1]
	s.marks = s.marks[:len(s.marks)-1]
	return m
}
