package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errNotIdempotent is returned by build --check.
var errNotIdempotent = errors.New("rebuilt SQL does not rebuild to itself")

// BuildOptions holds options for the build command.
type BuildOptions struct {
	Expr  string
	Check bool
}

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	opts := &BuildOptions{}

	cmd := &cobra.Command{
		Use:   "build [file]",
		Short: "Parse SQL and print it rebuilt from the parsed statements",
		Long: `Parse SQL and print the text rebuilt from the parsed components.
Keywords come out upper-cased, options in a canonical order and
whitespace collapsed.

With --check the rebuilt text is parsed and rebuilt again and the
command fails unless both passes agree.`,
		Example: `  sqlparse build -e "select a from t limit 5 offset 10"
  sqlparse build --check schema.sql`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Expr, "expr", "e", "", "SQL to rebuild instead of a file")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "Verify that rebuilding is idempotent")

	return cmd
}

func runBuild(cmd *cobra.Command, args []string, opts *BuildOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	sources, err := readSources(cmd, args, opts.Expr)
	if err != nil {
		return err
	}
	src := sources[0]

	res, err := cmdCtx.Parse(src.SQL)
	if err != nil {
		return err
	}
	built := res.Build()
	r.Println(built)
	r.Errors("", res.Errors, cmdCtx.Cfg.ErrorFormat)

	if opts.Check {
		again, err := cmdCtx.Parse(built)
		if err != nil {
			return err
		}
		if rebuilt := again.Build(); rebuilt != built {
			cmdCtx.Logger.Debug("rebuild differs", "first", built, "second", rebuilt)
			return fmt.Errorf("%w: got %q", errNotIdempotent, rebuilt)
		}
	}

	if res.HasErrors() {
		return ErrHasErrors
	}
	return nil
}
