package main

import (
	"fmt"
	"os"

	"github.com/grimdork/climate/human"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Urethramancer/chronos/assembler"
	"github.com/Urethramancer/chronos/disassembler"
)

var rootCmd = &cobra.Command{
	Use:               "cdis [flags] <image> [output]",
	Short:             "cdis - disassembler for ChronosVM images",
	Args:              cobra.RangeArgs(1, 2),
	PersistentPreRunE: before,
	RunE:              run,
	SilenceUsage:      true,
}

var (
	mapPath  string
	logLevel = "warn"
)

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&mapPath, "map", "m", "", "Debug map written by casm")
	f.StringVar(&logLevel, "log-level", logLevel, "Log messages including and over the specified level: debug, info, warn, error")
}

func before(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	code, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(err, "reading image")
	}

	m := &assembler.DebugMap{}
	if mapPath != "" {
		f, err := os.Open(mapPath)
		if err != nil {
			return errors.Wrap(err, "opening debug map")
		}
		m, err = assembler.ReadDebugMap(f)
		f.Close()
		if err != nil {
			return err
		}
		if m.Size != 0 && m.Size != len(code) {
			logrus.Warnf("%s is %d bytes but the map describes %d", args[0], len(code), m.Size)
		}
	} else {
		logrus.Warn("No debug map given; the whole image is listed as data")
	}

	text, err := disassembler.Disassemble(code, m.Instructions, m.Labels())
	if err != nil {
		return err
	}

	if len(args) < 2 {
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	}
	if err := os.WriteFile(args[1], []byte(text), 0644); err != nil {
		return errors.Wrap(err, "writing listing")
	}
	logrus.Infof("Disassembled %s to %s", human.UInt(uint64(len(code)), false), args[1])
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
