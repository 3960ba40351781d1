package disassembler

import (
	"fmt"
	"strings"

	"github.com/Urethramancer/chronos/lexer"
)

// isPrintableASCII checks if a byte is a standard printable ASCII character.
func isPrintableASCII(b byte) bool {
	return b >= 0x20 && b <= 0x7E
}

// formatData renders bytes as db lines. Printable runs of at least four
// characters become strings, NUL terminator included on the same line.
func formatData(data []byte) string {
	var sb strings.Builder
	n := len(data)
	const minStrLen = 4

	i := 0
	for i < n {
		// Skip non-printables first
		start := i
		for start < n && !isPrintableASCII(data[start]) {
			start++
		}
		if start > i {
			sb.WriteString(formatHexBytes(data[i:start]))
		}

		end := start
		for end < n && isPrintableASCII(data[end]) {
			end++
		}
		if end == start {
			i = start
			continue
		}

		run := data[start:end]
		if len(run) < minStrLen {
			sb.WriteString(formatHexBytes(run))
			i = end
			continue
		}

		text := lexer.Quote(string(run))
		if end < n && data[end] == 0x00 {
			fmt.Fprintf(&sb, "    %-8s %s, $00\n", "db", text)
			i = end + 1
			continue
		}
		fmt.Fprintf(&sb, "    %-8s %s\n", "db", text)
		i = end
	}

	return sb.String()
}

// formatHexBytes formats a slice of bytes into db directives, 16 bytes per line.
func formatHexBytes(data []byte) string {
	var sb strings.Builder
	const bytesPerLine = 16

	for i := 0; i < len(data); i += bytesPerLine {
		end := min(i+bytesPerLine, len(data))
		parts := make([]string, 0, end-i)
		for _, b := range data[i:end] {
			parts = append(parts, fmt.Sprintf("$%02X", b))
		}
		fmt.Fprintf(&sb, "    %-8s %s\n", "db", strings.Join(parts, ", "))
	}

	return sb.String()
}
