package main

import (
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/grimdork/climate/paths"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// options controls one casm run.
type options struct {
	Output   string `toml:"output"`
	Map      string `toml:"map"`
	Trace    bool   `toml:"trace"`
	DumpAST  bool   `toml:"dump_ast"`
	LogLevel string `toml:"log_level"`
}

type configFile struct {
	Assembler options `toml:"assembler"`
}

func defaultOptions() options {
	return options{LogLevel: "warn"}
}

// configName is looked up in the user's chronos directory when no --config
// flag is given.
const configName = "casm.toml"

// findConfig returns the user config file under p, or "" if there is none.
func findConfig(p *paths.Paths) string {
	name := filepath.Join(p.UserBase, configName)
	if !paths.FileExists(name) {
		return ""
	}
	return name
}

// loadConfig reads the [assembler] table of a TOML file over the defaults.
func loadConfig(path string) (options, error) {
	cfg := configFile{Assembler: defaultOptions()}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return options{}, errors.Wrapf(err, "reading config %s", path)
	}
	for _, key := range md.Undecoded() {
		logrus.Warnf("Unknown config key %q in %s", key.String(), path)
	}
	return cfg.Assembler, nil
}

// resolveOptions starts from the config file, if any, and applies every flag
// that was set explicitly.
func resolveOptions(path string, fromFlags options, set *pflag.FlagSet) (options, error) {
	opts := defaultOptions()
	if path != "" {
		var err error
		if opts, err = loadConfig(path); err != nil {
			return options{}, err
		}
	}
	if path == "" || set.Changed("output") {
		opts.Output = fromFlags.Output
	}
	if path == "" || set.Changed("map") {
		opts.Map = fromFlags.Map
	}
	if path == "" || set.Changed("trace") {
		opts.Trace = fromFlags.Trace
	}
	if path == "" || set.Changed("dump-ast") {
		opts.DumpAST = fromFlags.DumpAST
	}
	if path == "" || set.Changed("log-level") {
		opts.LogLevel = fromFlags.LogLevel
	}
	return opts, nil
}
