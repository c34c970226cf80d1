package commands

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/BackEndTea/sql-parser/internal/cli/output"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Jobs int
}

// CheckReport is the outcome for one file.
type CheckReport struct {
	File       string              `json:"file" yaml:"file"`
	Statements int                 `json:"statements" yaml:"statements"`
	Errors     []output.ErrorEntry `json:"errors" yaml:"errors"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check <paths...>",
		Short: "Check SQL files for lexer and parser errors",
		Long: `Parse every given file, and every *.sql file below the given
directories, and report the errors found. Files are checked in parallel.
The command exits non-zero when any file has errors.`,
		Example: `  sqlparse check schema.sql
  sqlparse check --dialect mysql-5.7 -j 4 migrations/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", runtime.NumCPU(), "Number of files checked at once")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	paths, err := expandPaths(args)
	if err != nil {
		return err
	}

	reports, err := checkFiles(cmd.Context(), cmdCtx, paths, opts.Jobs)
	if err != nil {
		return err
	}

	failed := 0
	for _, rep := range reports {
		if len(rep.Errors) > 0 {
			failed++
		}
	}

	handled, err := r.Encode(reports)
	if err != nil {
		return err
	}
	if !handled {
		for _, rep := range reports {
			if len(rep.Errors) == 0 {
				r.Muted(fmt.Sprintf("%s: ok (%d statements)", rep.File, rep.Statements))
				continue
			}
			for _, e := range rep.Errors {
				r.Error(fmt.Sprintf("%s:%d:%d: %s", rep.File, e.Line, e.Column, e.Message))
			}
		}
		summary := fmt.Sprintf("%d files checked, %d with errors", len(reports), failed)
		if failed == 0 {
			r.Success(summary)
		} else {
			r.Println(summary)
		}
	}

	if failed > 0 {
		return ErrHasErrors
	}
	return nil
}

// checkFiles parses paths concurrently, one parser per file. Reports keep
// the order of paths.
func checkFiles(ctx context.Context, cmdCtx *CommandContext, paths []string, jobs int) ([]CheckReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	reports := make([]CheckReport, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			res, err := cmdCtx.Parse(string(data))
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}
			cmdCtx.Logger.Debug("checked", "file", path, "statements", len(res.Statements), "errors", len(res.Errors))
			reports[i] = CheckReport{
				File:       path,
				Statements: len(res.Statements),
				Errors:     output.ErrorEntries(res.Errors),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
