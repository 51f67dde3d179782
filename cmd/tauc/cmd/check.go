package cmd

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tauc/pkg/compiler"
	"tauc/pkg/diag"
	"tauc/pkg/utils"
)

const sourceExt = ".tau"

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

type checkResult struct {
	path     string
	size     int
	symbols  int
	warnings int
	err      error
}

func newCheckCmd(a *app) *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "check FILE|DIR|GLOB...",
		Short: "Parse every input and report which ones fail",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("jobs") {
				jobs = a.cfg.Check.Jobs
			}
			if jobs <= 0 {
				jobs = runtime.GOMAXPROCS(0)
			}

			paths, err := utils.ExpandInputs(args, sourceExt)
			if err != nil {
				return err
			}

			rec := diag.NewRecorder(a.sink)
			results := make([]checkResult, len(paths))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(jobs)
			for i, path := range paths {
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					results[i] = checkFile(path, rec)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			return a.report(cmd, results, rec)
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "files checked in parallel (0 means GOMAXPROCS)")
	return cmd
}

func checkFile(path string, sink diag.Sink) checkResult {
	res := checkResult{path: path}
	src, err := utils.ReadSource(path)
	if err != nil {
		res.err = err
		return res
	}
	res.size = len(src.Data)

	unit, err := compiler.Parse(src.Name, src.Data, sink)
	if err != nil {
		res.err = err
		return res
	}
	defer compiler.Free(unit)

	table, warnings := compiler.Collect(unit, sink)
	res.symbols = table.Len()
	res.warnings = warnings
	return res
}

// report prints one line per file, then totals. Diagnostic counts come
// from rec, which saw every file.
func (a *app) report(cmd *cobra.Command, results []checkResult, rec *diag.Recorder) error {
	out := cmd.OutOrStdout()
	style := func(s lipgloss.Style, text string) string {
		if a.cfg.Log.Color {
			return s.Render(text)
		}
		return text
	}

	var failed, total int
	for _, res := range results {
		total += res.size
		if res.err != nil {
			failed++
			fmt.Fprintf(out, "%s %s: %v\n", style(failStyle, "FAIL"), res.path, res.err)
			continue
		}
		fmt.Fprintf(out, "%s   %s (%d symbols", style(okStyle, "ok"), res.path, res.symbols)
		if res.warnings > 0 {
			fmt.Fprintf(out, ", %d warnings", res.warnings)
		}
		fmt.Fprintln(out, ")")
	}

	errs := rec.Errors()
	warns := rec.Count(diag.Warn) - errs
	fmt.Fprintf(out, "%s files, %s checked, %d failed (%s errors, %s warnings)\n",
		humanize.Comma(int64(len(results))), humanize.Bytes(uint64(total)), failed,
		humanize.Comma(int64(errs)), humanize.Comma(int64(warns)))
	if failed > 0 {
		return errors.Wrapf(errReported, "%d of %d files failed", failed, len(results))
	}
	return nil
}
