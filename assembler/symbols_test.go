package assembler

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolTableScopes(t *testing.T) {
	st := NewSymbolTable()
	assert.True(t, st.IsGlobalScope())
	require.NoError(t, st.Declare("main", 0))

	st.PushScope()
	assert.False(t, st.IsGlobalScope())
	require.NoError(t, st.Declare(".loop", 4))
	require.NoError(t, st.Declare("main", 8), "shadowing an outer scope is allowed")

	addr, err := st.Lookup("main")
	require.NoError(t, err)
	assert.Equal(t, uint32(8), addr, "innermost scope wins")

	st.PushNamedScope("inner")
	assert.Equal(t, 3, st.Depth())
	addr, err = st.Lookup(".loop")
	require.NoError(t, err)
	assert.Equal(t, uint32(4), addr)

	st.ReturnToGlobal()
	assert.True(t, st.IsGlobalScope())
	assert.False(t, st.Contains(".loop"))
	addr, err = st.Lookup("main")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), addr)
}

func TestSymbolTableDuplicate(t *testing.T) {
	st := NewSymbolTable()
	require.NoError(t, st.Declare("x", 1))
	err := st.Declare("x", 2)
	require.Error(t, err)
	assert.Equal(t, ErrDuplicateSymbol, errors.Cause(err))

	addr, _ := st.Lookup("x")
	assert.Equal(t, uint32(1), addr)
}

func TestSymbolTableLookupMissing(t *testing.T) {
	st := NewSymbolTable()
	_, err := st.Lookup("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSymbolNotFound))
	assert.Contains(t, err.Error(), "nope")
}

func TestSymbolTablePopKeepsGlobal(t *testing.T) {
	st := NewSymbolTable()
	st.PushScope()
	st.PopScope()
	st.PopScope()
	assert.Equal(t, 1, st.Depth())
	require.NoError(t, st.Declare("g", 3))
	assert.Equal(t, []Symbol{{Name: "g", Address: 3}}, st.Globals())
}

func TestReferencesResolveImmediatelyWhenKnown(t *testing.T) {
	nodes, err := Parse("start: hlt\njmp start\njmp later")
	require.NoError(t, err)

	a := New()
	for _, n := range nodes {
		require.NoError(t, a.emit(n))
	}
	require.Len(t, a.relocs, 1, "only the forward reference waits for patching")
	assert.Equal(t, "later", a.relocs[0].name)
	assert.Equal(t, uint32(9), a.relocs[0].offset)
}
