package assembler

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Urethramancer/chronos/cpu"
)

// DebugMap describes an assembled image: its labels and the layout of every
// instruction. The disassembler needs it to tell operand widths apart.
type DebugMap struct {
	Source       string       `yaml:"source,omitempty"`
	Size         int          `yaml:"size"`
	Symbols      []Symbol     `yaml:"symbols"`
	Instructions []cpu.Layout `yaml:"instructions"`
}

// DebugMap returns the map for the last successful run.
func (a *Assembler) DebugMap(source string) *DebugMap {
	return &DebugMap{
		Source:       source,
		Size:         len(a.code),
		Symbols:      a.Symbols(),
		Instructions: a.Layouts(),
	}
}

// Write encodes the map as YAML.
func (m *DebugMap) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return errors.Wrap(err, "encoding debug map")
	}
	return errors.Wrap(enc.Close(), "encoding debug map")
}

// ReadDebugMap decodes a map written by Write.
func ReadDebugMap(r io.Reader) (*DebugMap, error) {
	var m DebugMap
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "decoding debug map")
	}
	return &m, nil
}

// Labels groups symbol names by address.
func (m *DebugMap) Labels() map[uint32][]string {
	out := make(map[uint32][]string)
	for _, s := range m.Symbols {
		out[s.Address] = append(out[s.Address], s.Name)
	}
	return out
}
