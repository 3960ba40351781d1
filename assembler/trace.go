package assembler

import (
	"fmt"
	"io"
)

// TraceEntry is one line of the AST trace.
type TraceEntry struct {
	Kind     string
	Operands string
}

func (e TraceEntry) String() string {
	if e.Operands == "" {
		return e.Kind
	}
	return e.Kind + ": " + e.Operands
}

// Trace describes each top-level node in order.
func Trace(nodes []*Node) []TraceEntry {
	out := make([]TraceEntry, len(nodes))
	for i, n := range nodes {
		out[i] = TraceEntry{Kind: n.Kind(), Operands: n.Describe()}
	}
	return out
}

// WriteTrace writes one trace line per node to w.
func WriteTrace(w io.Writer, nodes []*Node) error {
	for _, e := range Trace(nodes) {
		if _, err := fmt.Fprintln(w, e); err != nil {
			return err
		}
	}
	return nil
}
