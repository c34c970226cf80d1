package commands

import (
	"fmt"

	"github.com/BackEndTea/sql-parser/internal/cli/output"
	"github.com/BackEndTea/sql-parser/pkg/parser"
	"github.com/spf13/cobra"
)

// ParseOptions holds options for the parse command.
type ParseOptions struct {
	Expr string
}

// StatementEntry describes one parsed statement.
type StatementEntry struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Type    string `json:"type" yaml:"type"`
	SQL     string `json:"sql" yaml:"sql"`
}

// ParseReport is the parse result of one source.
type ParseReport struct {
	Source     string              `json:"source" yaml:"source"`
	Dialect    string              `json:"dialect" yaml:"dialect"`
	Statements []StatementEntry    `json:"statements" yaml:"statements"`
	Errors     []output.ErrorEntry `json:"errors" yaml:"errors"`
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [files...]",
		Short: "Parse SQL and list the statements found",
		Long: `Parse SQL with the configured dialect and list each statement with its
leading keyword, the component type it was parsed into and its rebuilt text.

Errors are reported after the statements; the command exits non-zero when
any were found.`,
		Example: `  sqlparse parse -e "SELECT 1; UPDATE t SET a = 2"
  sqlparse parse --dialect mariadb-10.6 migrations/
  sqlparse parse -o yaml schema.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Expr, "expr", "e", "", "SQL to parse instead of files")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	sources, err := readSources(cmd, args, opts.Expr)
	if err != nil {
		return err
	}

	reports := make([]ParseReport, 0, len(sources))
	results := make([]*parser.Result, 0, len(sources))
	failed := false
	for _, src := range sources {
		res, err := cmdCtx.Parse(src.SQL)
		if err != nil {
			return err
		}
		cmdCtx.Logger.Debug("parsed", "source", src.Name, "statements", len(res.Statements), "errors", len(res.Errors))
		failed = failed || res.HasErrors()
		results = append(results, res)
		reports = append(reports, newParseReport(src.Name, cmdCtx.Dialect.Name, res))
	}

	var doc any = reports
	if len(reports) == 1 {
		doc = reports[0]
	}
	handled, err := r.Encode(doc)
	if err != nil {
		return err
	}
	if !handled {
		for i, rep := range reports {
			if len(reports) > 1 {
				if i > 0 {
					r.Println()
				}
				r.Header(2, rep.Source)
			}
			renderStatements(r, rep.Statements)
		}
		for i, src := range sources {
			name := ""
			if len(sources) > 1 {
				name = src.Name
			}
			r.Errors(name, results[i].Errors, cmdCtx.Cfg.ErrorFormat)
		}
	}

	if failed {
		return ErrHasErrors
	}
	return nil
}

func newParseReport(name, dialect string, res *parser.Result) ParseReport {
	rep := ParseReport{
		Source:     name,
		Dialect:    dialect,
		Statements: make([]StatementEntry, 0, len(res.Statements)),
		Errors:     output.ErrorEntries(res.Errors),
	}
	for _, stmt := range res.Statements {
		rep.Statements = append(rep.Statements, StatementEntry{
			Keyword: stmt.Keyword(),
			Type:    typeName(stmt),
			SQL:     stmt.Build(),
		})
	}
	return rep
}

func renderStatements(r *output.Renderer, stmts []StatementEntry) {
	if len(stmts) == 0 {
		r.Muted("(no statements)")
		return
	}
	styles := r.Styles()
	for i, s := range stmts {
		r.Printf("%s %s %s\n",
			styles.Muted.Render(fmt.Sprintf("%3d.", i+1)),
			styles.Keyword.Render(fmt.Sprintf("%-22s", s.Keyword)),
			s.SQL)
	}
}
