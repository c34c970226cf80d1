package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/BackEndTea/sql-parser/internal/cli/output"
	"github.com/BackEndTea/sql-parser/pkg/token"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// TokensOptions holds options for the tokens command.
type TokensOptions struct {
	Expr string
	All  bool
}

// TokenEntry is the machine-readable form of a token.
type TokenEntry struct {
	Kind   string `json:"kind" yaml:"kind"`
	Raw    string `json:"raw" yaml:"raw"`
	Value  string `json:"value" yaml:"value"`
	Flags  string `json:"flags,omitempty" yaml:"flags,omitempty"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
	Offset int    `json:"offset" yaml:"offset"`
}

// TokensOutput is the JSON/YAML document printed by the tokens command.
type TokensOutput struct {
	Dialect string              `json:"dialect" yaml:"dialect"`
	Tokens  []TokenEntry        `json:"tokens" yaml:"tokens"`
	Errors  []output.ErrorEntry `json:"errors" yaml:"errors"`
}

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	opts := &TokensOptions{}

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the token stream of a SQL script",
		Long: `Tokenize SQL with the configured dialect and print every token with its
kind, normalized value, flags and position.

Whitespace and comments are hidden unless --all is given.`,
		Example: `  sqlparse tokens -e "SELECT a FROM t"
  sqlparse tokens --all schema.sql
  cat dump.sql | sqlparse tokens -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokens(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Expr, "expr", "e", "", "SQL to tokenize instead of a file")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Include whitespace, comments and the end marker")

	return cmd
}

func runTokens(cmd *cobra.Command, args []string, opts *TokensOptions) error {
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

	stream, errs, err := cmdCtx.Tokenize(src.SQL)
	if err != nil {
		return err
	}
	cmdCtx.Logger.Debug("tokenized", "source", src.Name, "tokens", stream.Len(), "errors", len(errs))

	var toks []token.Token
	for _, tok := range stream.Tokens {
		if !opts.All && (tok.IsTrivia() || tok.Kind == token.EOF) {
			continue
		}
		toks = append(toks, tok)
	}

	doc := TokensOutput{
		Dialect: cmdCtx.Dialect.Name,
		Tokens:  tokenEntries(toks),
		Errors:  output.ErrorEntries(errs),
	}
	handled, err := r.Encode(doc)
	if err != nil {
		return err
	}
	if !handled {
		renderTokenTable(r.Writer(), toks)
		r.Errors("", errs, cmdCtx.Cfg.ErrorFormat)
	}

	if len(errs) > 0 {
		return ErrHasErrors
	}
	return nil
}

func tokenEntries(toks []token.Token) []TokenEntry {
	out := make([]TokenEntry, 0, len(toks))
	for _, tok := range toks {
		out = append(out, TokenEntry{
			Kind:   tok.Kind.String(),
			Raw:    tok.Raw,
			Value:  tok.Value,
			Flags:  tok.Flags.String(),
			Line:   tok.Pos.Line,
			Column: tok.Pos.Column,
			Offset: tok.Pos.Offset,
		})
	}
	return out
}

func renderTokenTable(w io.Writer, toks []token.Token) {
	if len(toks) == 0 {
		_, _ = fmt.Fprintln(w, "(0 tokens)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Kind", "Value", "Raw", "Flags", "Pos"})

	for i, tok := range toks {
		t.AppendRow(table.Row{
			i + 1,
			tok.Kind.String(),
			strconv.Quote(tok.Value),
			strconv.Quote(tok.Raw),
			tok.Flags.String(),
			fmt.Sprintf("%d:%d", tok.Pos.Line, tok.Pos.Column),
		})
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d tokens)\n", len(toks))
}
