package parser

// SHOW and DROP statements.
//
// Grammar:
//
//	show → SHOW show_option* token*
//	drop → DROP [TEMPORARY] kind [IF EXISTS] name ("," name)* [ON name]
//	       [RESTRICT | CASCADE]

// ShowOptions name what SHOW lists.
var ShowOptions = OptionTable{
	"CREATE":  OptFlag(1),
	"FULL":    OptFlag(1),
	"GLOBAL":  OptFlag(1),
	"SESSION": OptFlag(1),

	"AUTHORS":      OptFlag(2),
	"BINARY":       OptFlag(2),
	"BINLOG":       OptFlag(2),
	"CHARACTER":    OptFlag(2),
	"CODE":         OptFlag(2),
	"COLLATION":    OptFlag(2),
	"COLUMNS":      OptFlag(2),
	"CONTRIBUTORS": OptFlag(2),
	"DATABASE":     OptFlag(2),
	"DATABASES":    OptFlag(2),
	"ENGINE":       OptFlag(2),
	"ENGINES":      OptFlag(2),
	"ERRORS":       OptFlag(2),
	"EVENT":        OptFlag(2),
	"EVENTS":       OptFlag(2),
	"FUNCTION":     OptFlag(2),
	"GRANTS":       OptFlag(2),
	"HOSTS":        OptFlag(2),
	"INDEX":        OptFlag(2),
	"INNODB":       OptFlag(2),
	"LOGS":         OptFlag(2),
	"MASTER":       OptFlag(2),
	"OPEN":         OptFlag(2),
	"PLUGINS":      OptFlag(2),
	"PRIVILEGES":   OptFlag(2),
	"PROCEDURE":    OptFlag(2),
	"PROCESSLIST":  OptFlag(2),
	"PROFILE":      OptFlag(2),
	"PROFILES":     OptFlag(2),
	"SCHEDULER":    OptFlag(2),
	"SET":          OptFlag(2),
	"SLAVE":        OptFlag(2),
	"STATUS":       OptFlag(2),
	"TABLE":        OptFlag(2),
	"TABLES":       OptFlag(2),
	"TRIGGER":      OptFlag(2),
	"TRIGGERS":     OptFlag(2),
	"VARIABLES":    OptFlag(2),
	"VIEW":         OptFlag(2),
	"WARNINGS":     OptFlag(2),
}

// ShowStatement is a SHOW.
type ShowStatement struct {
	Options *OptionsArray
	Body    string // remainder as written
}

func (*ShowStatement) stmtNode() {}

// Keyword returns "SHOW".
func (*ShowStatement) Keyword() string { return "SHOW" }

// Build returns the statement text.
func (s *ShowStatement) Build() string {
	return join("SHOW", s.Options.Build(), s.Body)
}

func parseShow(p *Parser) Statement {
	p.stream.Next()
	stmt := &ShowStatement{Options: ParseOptions(p, ShowOptions)}
	stmt.Body = p.parseRawRest()
	return stmt
}

// DropOptions come after DROP.
var DropOptions = OptionTable{
	"TEMPORARY": OptFlag(1),

	"DATABASE":   OptFlag(2),
	"EVENT":      OptFlag(2),
	"FUNCTION":   OptFlag(2),
	"INDEX":      OptFlag(2),
	"LOGFILE":    OptFlag(2),
	"PROCEDURE":  OptFlag(2),
	"SCHEMA":     OptFlag(2),
	"SERVER":     OptFlag(2),
	"TABLE":      OptFlag(2),
	"VIEW":       OptFlag(2),
	"TABLESPACE": OptFlag(2),
	"TRIGGER":    OptFlag(2),
	"USER":       OptFlag(2),

	"IF EXISTS": OptFlag(3),
}

// DropEndOptions follow the dropped names.
var DropEndOptions = OptionTable{
	"RESTRICT": OptFlag(1),
	"CASCADE":  OptFlag(1),
}

// DropStatement is a DROP.
type DropStatement struct {
	Options    *OptionsArray
	Fields     []*Expression
	On         *Expression // table of DROP INDEX ... ON
	EndOptions *OptionsArray
	Tail       string
}

func (*DropStatement) stmtNode() {}

// Keyword returns "DROP".
func (*DropStatement) Keyword() string { return "DROP" }

// Build returns the statement text.
func (s *DropStatement) Build() string {
	on := ""
	if s.On != nil {
		on = "ON " + s.On.Build()
	}
	return join("DROP", s.Options.Build(), BuildExpressions(s.Fields), on, s.EndOptions.Build(), s.Tail)
}

func parseDrop(p *Parser) Statement {
	s := p.stream
	s.Next()
	stmt := &DropStatement{Options: ParseOptions(p, DropOptions)}
	stmt.Fields = ParseExpressionList(p, ExprOptions{BreakOnAlias: true, ParseField: FieldTable})
	if len(stmt.Fields) == 0 {
		p.error(CodeMissingToken, ErrNameExpected, s.Peek())
	}
	if s.Peek().IsKeyword("ON") {
		s.Next()
		stmt.On = ParseExpression(p, ExprOptions{BreakOnAlias: true, ParseField: FieldTable})
		if stmt.On == nil {
			p.error(CodeMissingToken, ErrNameExpected, s.Peek())
		}
	}
	stmt.EndOptions = ParseOptions(p, DropEndOptions)
	stmt.Tail = p.parseTail()
	return stmt
}
