package assembler

import (
	"fmt"

	"github.com/pkg/errors"
)

// Symbol is a named address.
type Symbol struct {
	Name    string `yaml:"name"`
	Address uint32 `yaml:"address"`
}

type scope struct {
	name    string
	symbols []Symbol
}

// SymbolTable is a stack of scopes. The bottom scope is global and is never
// removed. Lookups search from the innermost scope outwards.
type SymbolTable struct {
	scopes []*scope
	anon   int
}

// NewSymbolTable returns a table holding only the global scope.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{scopes: []*scope{{name: "global"}}}
}

func (t *SymbolTable) current() *scope {
	return t.scopes[len(t.scopes)-1]
}

// Declare adds name to the innermost scope. Names may shadow outer scopes
// but not repeat within one.
func (t *SymbolTable) Declare(name string, addr uint32) error {
	cur := t.current()
	for _, s := range cur.symbols {
		if s.Name == name {
			return errors.Wrapf(ErrDuplicateSymbol, "%q already declared in %s scope at %d", name, cur.name, s.Address)
		}
	}
	cur.symbols = append(cur.symbols, Symbol{Name: name, Address: addr})
	return nil
}

func (t *SymbolTable) find(name string) (uint32, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		for _, s := range t.scopes[i].symbols {
			if s.Name == name {
				return s.Address, true
			}
		}
	}
	return 0, false
}

// Lookup resolves name against the visible scopes.
func (t *SymbolTable) Lookup(name string) (uint32, error) {
	if addr, ok := t.find(name); ok {
		return addr, nil
	}
	return 0, errors.Wrapf(ErrSymbolNotFound, "%q", name)
}

// Contains reports whether name is visible.
func (t *SymbolTable) Contains(name string) bool {
	_, ok := t.find(name)
	return ok
}

// PushScope opens an anonymous scope.
func (t *SymbolTable) PushScope() {
	t.anon++
	t.PushNamedScope(fmt.Sprintf("local%d", t.anon))
}

// PushNamedScope opens a scope with a name used in diagnostics.
func (t *SymbolTable) PushNamedScope(name string) {
	t.scopes = append(t.scopes, &scope{name: name})
}

// PopScope closes the innermost scope. The global scope stays.
func (t *SymbolTable) PopScope() {
	if len(t.scopes) > 1 {
		t.scopes = t.scopes[:len(t.scopes)-1]
	}
}

// ReturnToGlobal closes every local scope.
func (t *SymbolTable) ReturnToGlobal() {
	t.scopes = t.scopes[:1]
}

// IsGlobalScope reports whether no local scope is open.
func (t *SymbolTable) IsGlobalScope() bool {
	return len(t.scopes) == 1
}

// Depth returns the number of open scopes, including the global one.
func (t *SymbolTable) Depth() int {
	return len(t.scopes)
}

// Globals returns the global symbols in declaration order.
func (t *SymbolTable) Globals() []Symbol {
	return append([]Symbol(nil), t.scopes[0].symbols...)
}
