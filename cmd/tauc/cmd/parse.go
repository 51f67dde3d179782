package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"tauc/pkg/compiler"
	"tauc/pkg/config"
	"tauc/pkg/utils"
)

func newParseCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a source file and print its syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				format = a.cfg.Output.Format
			}

			src, err := utils.ReadSource(args[0])
			if err != nil {
				return err
			}
			unit, err := compiler.Parse(src.Name, src.Data, a.sink)
			if err != nil {
				return err
			}
			defer compiler.Free(unit)

			out, err := render(unit, format)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", config.OutputSexpr, "output format (sexpr, yaml, json)")
	return cmd
}

func render(n compiler.Node, format string) (string, error) {
	switch format {
	case config.OutputSexpr:
		return compiler.Sexpr(n), nil
	case config.OutputYAML:
		data, err := compiler.MarshalYAML(n)
		return string(data), err
	case config.OutputJSON:
		data, err := compiler.MarshalJSON(n)
		return string(data), err
	}
	return "", errors.Errorf("unknown output format %q", format)
}
