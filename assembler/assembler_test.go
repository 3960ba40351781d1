package assembler_test

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Urethramancer/chronos/assembler"
	"github.com/Urethramancer/chronos/cpu"
)

// Assembles source and checks against an expected byte sequence (in hex).
func assembleAndMatchHex(t *testing.T, name, src, expectedHex string) {
	t.Helper()

	expectedHex = strings.ToLower(strings.Join(strings.Fields(expectedHex), ""))
	expected, err := hex.DecodeString(expectedHex)
	require.NoError(t, err, "[%s] invalid expected hex string", name)

	code, err := assembler.New().Assemble(src)
	require.NoError(t, err, "[%s] failed to assemble:\n%s", name, src)
	assert.Equal(t, expected, code, "[%s]\n%s", name, src)
}

func assembleError(t *testing.T, src string) error {
	t.Helper()
	code, err := assembler.New().Assemble(src)
	require.Error(t, err, src)
	assert.Nil(t, code)
	return err
}

func TestBasicEncodings(t *testing.T) {
	tests := []struct {
		name, src, hex string
	}{
		{"HLT", "hlt", "3C"},
		{"RET", "ret", "13"},
		{"IRET", "iret", "14"},
		{"STI", "sti", "16"},
		{"CLI", "cli", "15"},
		{"INC_Reg", "inc A", "17 11 00"},
		{"INC_RIndirect", "inc (AH)", "17 13 01"},
		{"XOR_One", "xor A", "21 11 00"},
		{"XOR_Two", "xor A, B", "21 05 00 07"},
		{"INB", "inb A, $60", "35 04 00 60"},
		{"OUTB", "outb $E9, A", "38 01 E9 00"},
		{"JMP_Imm16", "jmp $1234", "04 10 34 12"},
		{"CALL_Indirect", "call ($20)", "0B 12 20 00 00 00"},
		{"LDIDT", "ldidt (A)", "3B 13 00"},
		{"JE", "je 5", "05 10 05"},
		{"JL", "jl 5", "09 10 05"},
		{"CALLE", "calle 5", "0C 10 05"},
		{"Mixed_Case", "MoV A, 1", "01 04 00 00 01"},
		{"Special_Register", "inc SP", "17 11 4C"},
	}
	for _, tc := range tests {
		assembleAndMatchHex(t, tc.name, tc.src, tc.hex)
	}
}

func TestSizedEncodings(t *testing.T) {
	tests := []struct {
		name, src, hex string
	}{
		// Immediate sources pick the smallest size holding them.
		{"MOV_Word", "mov A, 200", "01 04 00 00 C8"},
		{"MOV_DWord", "mov A, 2000", "01 04 01 00 D0 07"},
		{"MOV_QWord", "mov A, 200000", "01 04 02 00 40 0D 03 00"},
		{"MOV_Char", "mov A, 'x'", "01 04 00 00 78"},
		// Explicit suffixes set the size byte and the immediate width.
		{"MOVW", "movw A, 5", "01 04 00 00 05"},
		{"MOVD", "movd A, 5", "01 04 01 00 05 00"},
		{"MOVQ", "movq A, 5", "01 04 02 00 05 00 00 00"},
		// Non-immediate sources are always qword.
		{"MOV_Reg", "mov A, B", "01 05 02 00 07"},
		{"MOVW_Reg", "movw A, B", "01 05 02 00 07"},
		{"MOV_RIndirect_Src", "mov A, (B)", "01 07 02 00 07"},
		{"MOV_RIndirect_Dst", "mov (A), 5", "01 0C 00 00 05"},
		{"MOV_Indirect_Dst", "mov ($10), A", "01 09 02 10 00 00 00 00"},
		{"MOV_Indirect_Src", "mov A, ($10)", "01 06 02 00 10 00 00 00"},
		{"MOV_RIndirect_Indirect", "mov (A), ($10)", "01 0E 02 00 10 00 00 00"},
		{"MOV_Imm_Imm", "mov 1, 2", "01 00 00 01 02"},
		{"ADD", "add B, 1", "19 04 00 07 01"},
		{"MUL", "mul A, $100", "1B 04 01 00 00 01"},
		{"CMP", "cmp A, 0", "02 04 00 00 00"},
	}
	for _, tc := range tests {
		assembleAndMatchHex(t, tc.name, tc.src, tc.hex)
	}
}

func TestDirectives(t *testing.T) {
	tests := []struct {
		name, src, hex string
	}{
		{"DB_String_Number", `db "AB", 10`, "41 42 0A"},
		{"DB_Truncates", "db 'A', $1FF", "41 FF"},
		{"DB_Escapes", `db "a\n", 0`, "61 0A 00"},
		{"TIMES_Inc", "times 3 inc A", "17 11 00 17 11 00 17 11 00"},
		{"TIMES_DB", "times 4 db 0", "00 00 00 00"},
		{"TIMES_Zero", "times 0 hlt\nret", "13"},
		{"TIMES_Nested", "times 2 times 2 hlt", "3C 3C 3C 3C"},
	}
	for _, tc := range tests {
		assembleAndMatchHex(t, tc.name, tc.src, tc.hex)
	}
}

func TestDataIsASCII(t *testing.T) {
	err := assembleError(t, `db "café", 0`)
	var encErr *assembler.EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "Db", encErr.Kind)

	// Character literals are numbers and keep their low byte.
	assembleAndMatchHex(t, "DB_Char_Latin1", "db 'é'", "E9")
}

func TestLabels(t *testing.T) {
	tests := []struct {
		name, src, hex string
	}{
		{
			"Forward",
			"jmp target\nhlt\nhlt\nhlt\nhlt\ntarget:",
			"04 10 0A 00 00 00 3C 3C 3C 3C",
		},
		{
			"Backward",
			"start: hlt\njmp start",
			"3C 04 10 00 00 00 00",
		},
		{
			"Indirect",
			"hlt\ndata: db 7\nmov A, (data)",
			"3C 07 01 06 02 00 01 00 00 00",
		},
		{
			"Local_Per_Region",
			"first:\n.loop: hlt\njmp .loop\nsecond:\n.loop: hlt\njmp .loop",
			"3C 04 10 00 00 00 00 3C 04 10 07 00 00 00",
		},
		{
			"Local_Forward",
			"main:\njmp .end\nhlt\n.end: ret",
			"04 10 07 00 00 00 3C 13",
		},
		{
			"Local_Shadowing",
			"main:\n.a: hlt\n.a: hlt\njmp .a",
			"3C 3C 04 10 01 00 00 00",
		},
		{
			"Comments",
			"; header\nstart: ; entry\n  hlt ; stop\njmp start",
			"3C 04 10 00 00 00 00",
		},
	}
	for _, tc := range tests {
		assembleAndMatchHex(t, tc.name, tc.src, tc.hex)
	}
}

func TestUndefinedSymbol(t *testing.T) {
	err := assembleError(t, "hlt\n  jmp nowhere")

	var undef *assembler.UndefinedSymbolError
	require.ErrorAs(t, err, &undef)
	assert.Equal(t, "nowhere", undef.Name)
	assert.Equal(t, uint32(3), undef.Offset)
	assert.Equal(t, 2, undef.Pos.Line)
	assert.Contains(t, err.Error(), "nowhere")
}

func TestUndefinedSymbolsAreCollected(t *testing.T) {
	err := assembleError(t, "jmp a\njmp b\nc:")

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 2)
	for i, name := range []string{"a", "b"} {
		var undef *assembler.UndefinedSymbolError
		require.ErrorAs(t, merr.Errors[i], &undef)
		assert.Equal(t, name, undef.Name)
	}
}

func TestLocalLabelsDoNotLeak(t *testing.T) {
	// A local label is gone once the next global label starts a new region.
	err := assembleError(t, "first:\n.a: hlt\nsecond:\njmp .a")
	var undef *assembler.UndefinedSymbolError
	require.ErrorAs(t, err, &undef)
	assert.Equal(t, ".a", undef.Name)

	// A pending local reference is not satisfied by a later region.
	err = assembleError(t, "first:\njmp .a\nsecond:\n.a: hlt")
	require.ErrorAs(t, err, &undef)
	assert.Equal(t, ".a", undef.Name)
}

func TestDuplicateLabel(t *testing.T) {
	err := assembleError(t, "x: hlt\nx: hlt")
	assert.True(t, errors.Is(err, assembler.ErrDuplicateSymbol))
	assert.Contains(t, err.Error(), "line 2")

	// The same local name in two regions is fine.
	assembleAndMatchHex(t, "Local_Reuse", "a:\n.x: hlt\nb:\n.x: hlt", "3C 3C")

	// A repeated label repeats its declaration.
	err = assembleError(t, "times 2 x:")
	assert.True(t, errors.Is(err, assembler.ErrDuplicateSymbol))
}

func TestRejectedModes(t *testing.T) {
	for _, src := range []string{
		"mov (A), (B)",
		"mov 5, (A)",
		"mov 5, ($10)",
		"mov ($1), ($2)",
		"mov (x), (A)",
		"add (x), (y)\nx:\ny:",
	} {
		err := assembleError(t, src)
		var encErr *assembler.EncodingError
		require.ErrorAs(t, err, &encErr, src)
		assert.Equal(t, 1, encErr.Pos.Line)
	}
}

func TestModesFollowOperandClass(t *testing.T) {
	// Identifiers encode like immediates and (number) like (identifier),
	// so every form of an accepted class pair assembles.
	tests := []struct {
		name, src, hex string
	}{
		{"Identifier_Dst", "mov lbl, 5\nlbl:", "01 00 00 08 00 00 00 05"},
		{"Identifier_Src", "mov 1, lbl\nlbl:", "01 00 02 01 08 00 00 00"},
		{"Identifier_Reg", "outb port, A\nport:", "38 01 07 00 00 00 00"},
		{"Reg_IndirectImm", "mov A, (5)", "01 06 02 00 05 00 00 00"},
		{"IndirectImm_Reg", "add ($10), A", "19 09 02 10 00 00 00 00"},
		{"IndirectIdent_Identifier", "mov (x), x\nx:", "01 08 02 0B 00 00 00 0B 00 00 00"},
		{"IndirectImm_Single", "jmp ($10)", "04 12 10 00 00 00"},
	}
	for _, tc := range tests {
		assembleAndMatchHex(t, tc.name, tc.src, tc.hex)
	}
}

func TestImmediateTooWide(t *testing.T) {
	err := assembleError(t, "movw A, 300")
	var encErr *assembler.EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "Mov", encErr.Kind)

	err = assembleError(t, "movd A, 70000")
	require.ErrorAs(t, err, &encErr)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src    string
		line   int
		column int
		text   string
	}{
		{"mov A,\nhlt", 1, 0, "MOV"},
		{"hlt\n  bogus", 2, 2, "bogus"},
		{"hlt #", 1, 4, "#"},
		{"xor A,", 1, 5, ","},
		{"sub A, 1", 1, 0, "SUB"},
		{"times x hlt", 1, 0, "TIMES"},
		{"db", 1, 0, "DB"},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			err := assembleError(t, tc.src)
			var perr *assembler.ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.line, perr.Token.Pos.Line)
			assert.Equal(t, tc.column, perr.Token.Pos.Column)
			assert.Equal(t, tc.text, perr.Token.Text)
		})
	}
}

func TestAssembleToWritesOnlyOnSuccess(t *testing.T) {
	var buf bytes.Buffer
	err := assembler.New().AssembleTo(&buf, "hlt\njmp missing")
	require.Error(t, err)
	assert.Zero(t, buf.Len())

	require.NoError(t, assembler.New().AssembleTo(&buf, "hlt\nret"))
	assert.Equal(t, []byte{0x3C, 0x13}, buf.Bytes())
}

func TestAssemblerIsReusable(t *testing.T) {
	asm := assembler.New()
	_, err := asm.Assemble("x: jmp y")
	require.Error(t, err)

	code, err := asm.Assemble("x: hlt")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x3C}, code)
}

func TestSymbolsAndLayouts(t *testing.T) {
	asm := assembler.New()
	_, err := asm.Assemble("mov A, 5\nhlt\ndb 1\nmain: jmp x\n.x: ret\nx:")
	require.NoError(t, err)

	assert.Equal(t, []assembler.Symbol{
		{Name: "main", Address: 7},
		{Name: ".x", Address: 13},
		{Name: "x", Address: 14},
	}, asm.Symbols())

	// db emits data, not instructions, so offset 6 has no layout.
	assert.Equal(t, []cpu.Layout{
		{Offset: 0, Length: 5, Widths: []int{1, 1}},
		{Offset: 5, Length: 1},
		{Offset: 7, Length: 6, Widths: []int{4}},
		{Offset: 13, Length: 1},
	}, asm.Layouts())
}

func TestDebugMapRoundTrip(t *testing.T) {
	asm := assembler.New()
	_, err := asm.Assemble("start: mov A, 2000\n.l: jmp .l\ndb \"ok\"")
	require.NoError(t, err)

	m := asm.DebugMap("test.asm")
	assert.Equal(t, 14, m.Size)

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))
	assert.Contains(t, buf.String(), "widths: [1, 2]")

	back, err := assembler.ReadDebugMap(&buf)
	require.NoError(t, err)
	assert.Equal(t, m, back)
	assert.Equal(t, map[uint32][]string{0: {"start"}, 6: {".l"}}, back.Labels())
}

func TestTrace(t *testing.T) {
	nodes, err := assembler.Parse("start:\nmov A, 5\ndb \"hi\", 1\ntimes 2 inc (B)\n.x: hlt\njmp (.x)")
	require.NoError(t, err)

	var got []string
	for _, e := range assembler.Trace(nodes) {
		got = append(got, e.String())
	}
	assert.Equal(t, []string{
		"Label: start",
		"Mov: A, 5",
		`Db: "hi", 1`,
		"Times: 2: Inc (B)",
		"LocalLabel: .x",
		"Halt",
		"Jmp: (.x)",
	}, got)

	var buf bytes.Buffer
	require.NoError(t, assembler.WriteTrace(&buf, nodes[:2]))
	assert.Equal(t, "Label: start\nMov: A, 5\n", buf.String())
}
