package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BackEndTea/sql-parser/internal/cli/output"
	"github.com/BackEndTea/sql-parser/pkg/dialect"
	"github.com/BackEndTea/sql-parser/pkg/format"
	"github.com/BackEndTea/sql-parser/pkg/parser"
	"github.com/BackEndTea/sql-parser/pkg/token"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

const (
	replPrompt         = "sqlparse> "
	replContinuePrompt = "     ...> "
)

// REPLOptions holds options for the repl command.
type REPLOptions struct {
	History string
	Tokens  bool
}

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	opts := &REPLOptions{}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Parse SQL interactively",
		Long: `Start an interactive session. Each statement is parsed when its line
ends with the current delimiter; DELIMITER commands change it.
Type .help for the session commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.History, "history", "", "File to keep the input history in")
	cmd.Flags().BoolVar(&opts.Tokens, "tokens", false, "Print the tokens of every statement")

	return cmd
}

func runREPL(cmd *cobra.Command, opts *REPLOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	session := newREPLSession(cmdCtx, opts.Tokens)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     opts.History,
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := cmdCtx.Renderer
	r.Printf("sqlparse %s (%s)\n", cmdCtx.Dialect.DisplayName(), cmdCtx.Dialect.Name)
	r.Muted("Type .help for commands, .quit to exit")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.reset()
			rl.SetPrompt(session.prompt())
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		if session.handleLine(line) {
			return nil
		}
		rl.SetPrompt(session.prompt())
	}
}

// replSession holds the state of an interactive session. It is driven one
// input line at a time.
type replSession struct {
	ctx        *CommandContext
	r          *output.Renderer
	dialect    *dialect.Dialect
	delimiter  string
	showTokens bool
	pretty     bool
	buf        strings.Builder
}

func newREPLSession(ctx *CommandContext, showTokens bool) *replSession {
	return &replSession{
		ctx:        ctx,
		r:          ctx.Renderer,
		dialect:    ctx.Dialect,
		delimiter:  ctx.Cfg.Delimiter,
		showTokens: showTokens,
	}
}

func (s *replSession) prompt() string {
	if s.buf.Len() > 0 {
		return replContinuePrompt
	}
	return replPrompt
}

func (s *replSession) reset() {
	s.buf.Reset()
}

// handleLine consumes one line of input and reports whether the session
// should end.
func (s *replSession) handleLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if s.buf.Len() == 0 {
		switch {
		case trimmed == "":
			return false
		case strings.HasPrefix(trimmed, "."):
			return s.command(strings.Fields(trimmed))
		case isDelimiterCommand(trimmed):
			s.delimiter = strings.Fields(trimmed)[1]
			s.r.Muted("delimiter is now " + s.delimiter)
			return false
		}
	}

	s.buf.WriteString(line)
	s.buf.WriteString("\n")
	if !strings.HasSuffix(trimmed, s.delimiter) {
		return false
	}
	sql := s.buf.String()
	s.buf.Reset()
	s.run(sql)
	return false
}

func isDelimiterCommand(line string) bool {
	fields := strings.Fields(line)
	return len(fields) == 2 && strings.EqualFold(fields[0], "DELIMITER")
}

func (s *replSession) options() []parser.Option {
	return append(s.ctx.Cfg.ParserOptions(), parser.WithDelimiter(s.delimiter))
}

func (s *replSession) run(sql string) {
	res, err := parser.Parse(sql, s.dialect, s.options()...)
	if err != nil {
		s.r.Error(err.Error())
		return
	}
	s.ctx.Logger.Debug("parsed", "statements", len(res.Statements), "errors", len(res.Errors))

	if s.showTokens {
		var toks []token.Token
		for _, tok := range res.Tokens.Tokens {
			if !tok.IsTrivia() && tok.Kind != token.EOF {
				toks = append(toks, tok)
			}
		}
		renderTokenTable(s.r.Writer(), toks)
	}

	if s.pretty {
		s.r.Printf("%s", format.Format(res.Tokens, format.DefaultOptions()))
	} else {
		rep := newParseReport("", s.dialect.Name, res)
		renderStatements(s.r, rep.Statements)
	}
	s.r.Errors("", res.Errors, s.ctx.Cfg.ErrorFormat)
}

// command runs a dot-command.
func (s *replSession) command(parts []string) bool {
	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.r.Writer())

	case ".dialect":
		if len(parts) < 2 {
			s.r.Println(s.dialect.Name + " (" + s.dialect.DisplayName() + ")")
			return false
		}
		d, err := dialect.Resolve(parts[1])
		if err != nil {
			s.r.Error(err.Error())
			return false
		}
		s.dialect = d
		s.r.Muted("dialect is now " + d.Name)

	case ".tokens":
		s.showTokens = !s.showTokens
		s.r.Muted(fmt.Sprintf("token output %s", onOff(s.showTokens)))

	case ".format":
		s.pretty = !s.pretty
		s.r.Muted(fmt.Sprintf("formatted output %s", onOff(s.pretty)))

	default:
		s.r.Error(fmt.Sprintf("Unknown command: %s (type .help for commands)", parts[0]))
	}
	return false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .dialect [name]  Show or switch the dialect
  .tokens          Toggle printing the token table
  .format          Toggle printing formatted SQL instead of statements
  .quit / .exit    Exit the REPL

Tips:
  - Statements run when a line ends with the delimiter (; by default)
  - DELIMITER $$ switches the delimiter
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

func newREPLCompleter() *readline.PrefixCompleter {
	var dialects []readline.PrefixCompleterInterface
	for _, name := range dialect.List() {
		dialects = append(dialects, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".dialect", dialects...),
		readline.PcItem(".tokens"),
		readline.PcItem(".format"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
