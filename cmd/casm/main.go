package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/grimdork/climate/human"
	"github.com/grimdork/climate/paths"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Urethramancer/chronos/assembler"
)

var rootCmd = &cobra.Command{
	Use:               "casm [flags] <source>",
	Short:             "casm - assembler for ChronosVM",
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: before,
	RunE:              run,
	SilenceUsage:      true,
}

// Values given on the command line. Config file values fill in the rest.
var flags = defaultOptions()

var configPath string

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&flags.Output, "output", "o", "", "Image file to write (default: source name with .bin)")
	f.StringVarP(&flags.Map, "map", "m", "", "Write a debug map with labels and instruction layouts")
	f.BoolVar(&flags.Trace, "trace", false, "Print the AST trace")
	f.BoolVar(&flags.DumpAST, "dump-ast", false, "Dump the parsed nodes")
	f.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log messages including and over the specified level: debug, info, warn, error")
	f.StringVarP(&configPath, "config", "c", "", "TOML configuration file (default: casm.toml in the user's chronos directory)")
}

var opts options

func before(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		if p, err := paths.New("chronos"); err == nil {
			path = findConfig(p)
		}
	}
	if path != "" {
		logrus.Debugf("Using config %s", path)
	}

	var err error
	opts, err = resolveOptions(path, flags, cmd.Flags())
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	source := args[0]
	data, err := os.ReadFile(source)
	if err != nil {
		return errors.Wrap(err, "reading source")
	}

	nodes, err := assembler.Parse(string(data))
	if err != nil {
		return errors.Wrap(err, source)
	}

	out := cmd.OutOrStdout()
	if opts.DumpAST {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
		cfg.Fdump(out, nodes)
	}
	if opts.Trace {
		if err := assembler.WriteTrace(out, nodes); err != nil {
			return err
		}
	}

	asm := assembler.New(assembler.WithLogger(logrus.WithField("source", source)))
	code, err := asm.AssembleNodes(nodes)
	if err != nil {
		return errors.Wrap(err, source)
	}

	output := opts.Output
	if output == "" {
		output = strings.TrimSuffix(source, filepath.Ext(source)) + ".bin"
	}
	if err := os.WriteFile(output, code, 0644); err != nil {
		return errors.Wrap(err, "writing image")
	}
	logrus.Infof("Wrote %s to %s", human.UInt(uint64(len(code)), false), output)

	if opts.Map != "" {
		if err := writeMap(opts.Map, asm.DebugMap(source)); err != nil {
			return err
		}
		logrus.Infof("Wrote debug map to %s", opts.Map)
	}
	return nil
}

func writeMap(path string, m *assembler.DebugMap) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating debug map")
	}
	if err := m.Write(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "closing debug map")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
