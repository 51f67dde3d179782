// Package cmd holds the tauc command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"tauc/pkg/compiler"
	"tauc/pkg/config"
	"tauc/pkg/diag"
)

// errReported marks failures whose diagnostics were already printed.
var errReported = errors.New("errors reported")

// app is the state shared by every subcommand after PersistentPreRunE.
type app struct {
	cfgFile  string
	logLevel string
	color    bool

	cfg  *config.Config
	sink *diag.ZapSink
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "tauc",
		Short:         "Front end for the tau language",
		Long:          "tauc tokenizes, parses and checks tau source files.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.sink != nil {
				// syncing a terminal fails on some platforms
				_ = a.sink.Sync()
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (TOML or YAML)")
	flags.StringVar(&a.logLevel, "log-level", "", "minimum diagnostic level (trace, debug, info, warn, error)")
	flags.BoolVar(&a.color, "color", false, "colorize diagnostics")

	root.AddCommand(
		newTokensCmd(a),
		newParseCmd(a),
		newCheckCmd(a),
		newOutlineCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.cfgFile != "" {
		loaded, err := config.Load(a.cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	} else if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("color") {
		cfg.Log.Color = a.color
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.sink = diag.NewZapSink(diag.Options{
		MinLevel: cfg.MinLevel(),
		Color:    cfg.Log.Color,
		Stdout:   cmd.OutOrStdout(),
		Stderr:   cmd.ErrOrStderr(),
	})
	return nil
}

// reported reports whether err has already reached the user as diagnostics.
func reported(err error) bool {
	switch errors.Cause(err).(type) {
	case *compiler.SyntaxError:
		return true
	}
	return errors.Cause(err) == errReported
}

// Execute runs the command tree against the process arguments.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil && !reported(err) {
		fmt.Fprintf(os.Stderr, "tauc: %v\n", err)
	}
	return err
}
