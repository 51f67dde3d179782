package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tauc/pkg/compiler"
	"tauc/pkg/utils"
)

func newOutlineCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "outline FILE",
		Short: "List the top-level declarations of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := utils.ReadSource(args[0])
			if err != nil {
				return err
			}
			unit, err := compiler.Parse(src.Name, src.Data, a.sink)
			if err != nil {
				return err
			}
			defer compiler.Free(unit)

			table, _ := compiler.Collect(unit, a.sink)
			fmt.Fprint(cmd.OutOrStdout(), table.String())
			return nil
		},
	}
}
