package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tauc/pkg/compiler"
	"tauc/pkg/diag"
	"tauc/pkg/utils"
)

func newTokensCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens FILE",
		Short: "Print the token stream of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := utils.ReadSource(args[0])
			if err != nil {
				return err
			}

			rec := diag.NewRecorder(a.sink)
			out := cmd.OutOrStdout()
			n := 0
			for tok := range compiler.NewLexer(src.Name, src.Data, rec).Tokens() {
				fmt.Fprintf(out, "%s  %s\n", tok, tok.Balance)
				n++
			}
			fmt.Fprintf(out, "%s tokens, %s\n", humanize.Comma(int64(n)), humanize.Bytes(uint64(len(src.Data))))

			if rec.Errors() > 0 {
				return errReported
			}
			return nil
		},
	}
}
