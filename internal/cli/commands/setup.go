// Package commands implements the sqlparse subcommands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BackEndTea/sql-parser/internal/cli/config"
	"github.com/BackEndTea/sql-parser/internal/cli/output"
	"github.com/BackEndTea/sql-parser/pkg/dialect"
	"github.com/BackEndTea/sql-parser/pkg/parser"
	"github.com/spf13/cobra"
)

// ErrHasErrors is returned when the input SQL had lexer or parser errors.
// The errors themselves have been printed already.
var ErrHasErrors = errors.New("SQL errors found")

// CommandContext bundles what every command needs.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Dialect  *dialect.Dialect
}

// NewCommandContext builds the context from the configuration stored in the
// command's context by the root command.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := config.FromContext(cmd.Context())
	d, err := cfg.ResolveDialect()
	if err != nil {
		return nil, err
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output), cfg.Color),
		Dialect:  d,
	}, nil
}

// Parse parses sql with the configured dialect and options.
func (c *CommandContext) Parse(sql string) (*parser.Result, error) {
	return parser.Parse(sql, c.Dialect, c.Cfg.ParserOptions()...)
}

// Tokenize tokenizes sql with the configured dialect and options.
func (c *CommandContext) Tokenize(sql string) (*parser.TokenStream, []*parser.Error, error) {
	return parser.Tokenize(sql, c.Dialect, c.Cfg.ParserOptions()...)
}

// source is one SQL input.
type source struct {
	Name string
	Path string // empty for stdin and -e
	SQL  string
}

const stdinName = "<stdin>"

// readSources resolves the SQL inputs of a command: the -e expression, the
// named files (directories contribute their *.sql files) or standard input.
func readSources(cmd *cobra.Command, args []string, expr string) ([]source, error) {
	if expr != "" {
		return []source{{Name: "<expr>", SQL: expr}}, nil
	}
	if len(args) == 0 || len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return []source{{Name: stdinName, SQL: string(data)}}, nil
	}

	paths, err := expandPaths(args)
	if err != nil {
		return nil, err
	}
	sources := make([]source, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		sources = append(sources, source{Name: p, Path: p, SQL: string(data)})
	}
	return sources, nil
}

// expandPaths replaces directories with the *.sql files below them.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isSQLFile(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}
	return paths, nil
}

func isSQLFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".sql")
}

// typeName is the short Go type name of a statement, e.g. "SelectStatement".
func typeName(stmt parser.Statement) string {
	name := fmt.Sprintf("%T", stmt)
	return name[strings.LastIndex(name, ".")+1:]
}
