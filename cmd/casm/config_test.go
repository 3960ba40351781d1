package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grimdork/climate/paths"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "casm.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func testFlags(t *testing.T, args ...string) (options, *pflag.FlagSet) {
	t.Helper()
	o := defaultOptions()
	set := pflag.NewFlagSet("casm", pflag.ContinueOnError)
	set.StringVarP(&o.Output, "output", "o", "", "")
	set.StringVarP(&o.Map, "map", "m", "", "")
	set.BoolVar(&o.Trace, "trace", false, "")
	set.BoolVar(&o.DumpAST, "dump-ast", false, "")
	set.StringVar(&o.LogLevel, "log-level", o.LogLevel, "")
	require.NoError(t, set.Parse(args))
	return o, set
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[assembler]
output = "boot.bin"
map = "boot.map"
trace = true
`)
	opts, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, options{Output: "boot.bin", Map: "boot.map", Trace: true, LogLevel: "warn"}, opts)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = loadConfig(writeConfig(t, "[assembler\n"))
	assert.Error(t, err)
}

func TestFlagsOverrideConfig(t *testing.T) {
	path := writeConfig(t, "[assembler]\noutput = \"a.bin\"\nlog_level = \"debug\"\ntrace = true\n")
	fromFlags, set := testFlags(t, "-o", "b.bin")

	opts, err := resolveOptions(path, fromFlags, set)
	require.NoError(t, err)
	assert.Equal(t, "b.bin", opts.Output)
	assert.Equal(t, "debug", opts.LogLevel)
	assert.True(t, opts.Trace)
}

func TestFlagsWithoutConfig(t *testing.T) {
	fromFlags, set := testFlags(t, "--trace", "-m", "x.map")
	opts, err := resolveOptions("", fromFlags, set)
	require.NoError(t, err)
	assert.Equal(t, options{Map: "x.map", Trace: true, LogLevel: "warn"}, opts)
}

func TestFindConfig(t *testing.T) {
	p := &paths.Paths{AppName: "chronos"}
	require.NoError(t, p.SetBase(t.TempDir()))
	assert.Empty(t, findConfig(p))

	require.NoError(t, os.MkdirAll(p.UserBase, 0755))
	name := filepath.Join(p.UserBase, "casm.toml")
	require.NoError(t, os.WriteFile(name, []byte("[assembler]\ntrace = true\n"), 0644))
	assert.Equal(t, name, findConfig(p))

	opts, err := loadConfig(findConfig(p))
	require.NoError(t, err)
	assert.True(t, opts.Trace)
}
