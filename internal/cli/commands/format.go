package commands

import (
	"fmt"
	"os"

	"github.com/BackEndTea/sql-parser/pkg/format"
	"github.com/spf13/cobra"
)

// FormatOptions holds options for the format command.
type FormatOptions struct {
	Expr          string
	Case          string
	Compact       bool
	StripComments bool
	Write         bool
}

// NewFormatCommand creates the format command.
func NewFormatCommand() *cobra.Command {
	opts := &FormatOptions{}

	cmd := &cobra.Command{
		Use:   "format [files...]",
		Short: "Pretty-print SQL",
		Long: `Re-layout SQL without changing its tokens: query clauses start on their
own line, list items are indented, keywords are re-cased and whitespace
is normalized. Statements the lexer cannot fully read are still printed.`,
		Example: `  sqlparse format -e "select a,b from t where x=1"
  sqlparse format --case lower --compact query.sql
  sqlparse format -w migrations/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Expr, "expr", "e", "", "SQL to format instead of files")
	cmd.Flags().StringVar(&opts.Case, "case", "upper", "Keyword case: upper, lower, preserve")
	cmd.Flags().BoolVar(&opts.Compact, "compact", false, "Print each statement on one line")
	cmd.Flags().BoolVar(&opts.StripComments, "strip-comments", false, "Drop comments (conditional comments are kept)")
	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "Write the result back to the source files")

	_ = cmd.RegisterFlagCompletionFunc("case", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"upper", "lower", "preserve"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runFormat(cmd *cobra.Command, args []string, opts *FormatOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	kc, ok := format.ParseKeywordCase(opts.Case)
	if !ok {
		return fmt.Errorf("invalid --case %q (expected upper, lower or preserve)", opts.Case)
	}
	fopts := format.Options{Case: kc, Comments: !opts.StripComments, Compact: opts.Compact}

	sources, err := readSources(cmd, args, opts.Expr)
	if err != nil {
		return err
	}

	failed := false
	for _, src := range sources {
		stream, errs, err := cmdCtx.Tokenize(src.SQL)
		if err != nil {
			return err
		}
		out := format.Format(stream, fopts)

		if len(errs) > 0 {
			failed = true
			r.Errors(src.Name, errs, cmdCtx.Cfg.ErrorFormat)
		}

		if opts.Write && src.Path != "" {
			if out == src.SQL {
				continue
			}
			if err := os.WriteFile(src.Path, []byte(out), 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", src.Path, err)
			}
			cmdCtx.Logger.Info("formatted", "file", src.Path)
			r.Muted("formatted " + src.Path)
			continue
		}
		r.Printf("%s", out)
	}

	if failed {
		return ErrHasErrors
	}
	return nil
}
