package parser

import (
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/token"
)

// ALTER operations.
//
// Grammar:
//
//	alter_operation → options [field] token*
//	                | options (PARTITION | PARTITION BY) (partitions | token*)
//	                | AS token*                              -- views
//
// The trailing tokens run to a depth-0 ",". A statement keyword found
// there means a delimiter is missing: it is reported and the operation
// ends before it.

// DBOptions are the operations of ALTER DATABASE.
var DBOptions = OptionTable{
	"CHARACTER SET":         OptVar(1),
	"CHARSET":               OptVar(1),
	"DEFAULT CHARACTER SET": OptVar(1),
	"DEFAULT CHARSET":       OptVar(1),
	"UPGRADE":               OptVar(1),
	"COLLATE":               OptVar(2),
	"DEFAULT COLLATE":       OptVar(2),
}

// TableOptions are the operations of ALTER TABLE.
var TableOptions = OptionTable{
	"ENGINE":          OptVarEq(1),
	"AUTO_INCREMENT":  OptVarEq(1),
	"AVG_ROW_LENGTH":  OptVar(1),
	"MAX_ROWS":        OptVar(1),
	"ROW_FORMAT":      OptVar(1),
	"COMMENT":         OptVar(1),
	"ALGORITHM":       OptVarEq(1),
	"LOCK":            OptVarEq(1),
	"ADD":             OptFlag(1),
	"ALTER":           OptFlag(1),
	"ANALYZE":         OptFlag(1),
	"CHANGE":          OptFlag(1),
	"CHARSET":         OptFlag(1),
	"CHECK":           OptFlag(1),
	"COALESCE":        OptFlag(1),
	"CONVERT":         OptFlag(1),
	"DEFAULT CHARSET": OptFlag(1),
	"DISABLE":         OptFlag(1),
	"DISCARD":         OptFlag(1),
	"DROP":            OptFlag(1),
	"ENABLE":          OptFlag(1),
	"IMPORT":          OptFlag(1),
	"MODIFY":          OptFlag(1),
	"OPTIMIZE":        OptFlag(1),
	"ORDER":           OptFlag(1),
	"ORDER BY":        OptFlag(1),
	"REBUILD":         OptFlag(1),
	"REMOVE":          OptFlag(1),
	"RENAME":          OptFlag(1),
	"REORGANIZE":      OptFlag(1),
	"REPAIR":          OptFlag(1),
	"UPGRADE":         OptFlag(1),

	"COLUMN":         OptFlag(2),
	"CONSTRAINT":     OptFlag(2),
	"DEFAULT":        OptFlag(2),
	"TO":             OptFlag(2),
	"BY":             OptFlag(2),
	"FOREIGN":        OptFlag(2),
	"FOREIGN KEY":    OptFlag(2),
	"FULLTEXT":       OptFlag(2),
	"FULLTEXT KEY":   OptFlag(2),
	"FULLTEXT INDEX": OptFlag(2),
	"KEY":            OptFlag(2),
	"KEYS":           OptFlag(2),
	"INDEX":          OptFlag(2),
	"PARTITION":      OptFlag(2),
	"PARTITION BY":   OptFlag(2),
	"PARTITIONING":   OptFlag(2),
	"PRIMARY KEY":    OptFlag(2),
	"SPATIAL":        OptFlag(2),
	"SPATIAL KEY":    OptFlag(2),
	"SPATIAL INDEX":  OptFlag(2),
	"TABLESPACE":     OptFlag(2),
	"UNIQUE":         OptFlag(2),
	"UNIQUE KEY":     OptFlag(2),
	"UNIQUE INDEX":   OptFlag(2),

	"CHARACTER SET": OptFlag(3),

	"IF EXISTS":     OptFlag(4),
	"IF NOT EXISTS": OptFlag(4),
}

// UserOptions are the operations of ALTER USER.
var UserOptions = OptionTable{
	"ATTRIBUTE":  OptVar(1),
	"COMMENT":    OptVar(1),
	"REQUIRE":    OptVar(1),
	"ACCOUNT":    OptFlag(1),
	"DEFAULT":    OptFlag(1),
	"BY":         OptExpr(4),
	"PASSWORD":   OptVar(2),
	"WITH":       OptVar(2),
	"LOCK":       OptFlag(2),
	"UNLOCK":     OptFlag(2),
	"IDENTIFIED": OptFlag(3),
}

// ViewOptions are the operations of ALTER VIEW.
var ViewOptions = OptionTable{
	"AS": OptFlag(1),
}

// AlterTarget selects the operation table of an ALTER statement.
type AlterTarget int

// Alter targets.
const (
	AlterTable AlterTarget = iota
	AlterDatabase
	AlterUser
	AlterView
)

// Options returns the operation table of the target.
func (t AlterTarget) Options() OptionTable {
	switch t {
	case AlterDatabase:
		return DBOptions
	case AlterUser:
		return UserOptions
	case AlterView:
		return ViewOptions
	}
	return TableOptions
}

// columnKeywords can follow a column name inside an operation, so they never
// start a new one.
var columnKeywords = map[string]bool{
	"AUTO_INCREMENT": true, "COMMENT": true, "DEFAULT": true,
	"CHARACTER SET": true, "COLLATE": true, "PRIMARY": true, "UNIQUE": true,
	"PRIMARY KEY": true, "UNIQUE KEY": true, "CHARSET": true, "CHECK": true,
}

// AlterOperation is one comma separated operation of an ALTER statement.
type AlterOperation struct {
	Options    *OptionsArray
	Field      *Expression
	FieldRaw   string // text kept as written: view body or PARTITION BY clause
	Partitions []*PartitionDefinition
	Unknown    []token.Token

	// missingComma is set when the operation ended on the start of another
	// operation.
	missingComma bool
	// newStatement is set when the operation ended on the start of another
	// statement.
	newStatement bool
}

// Build returns the operation text.
func (o *AlterOperation) Build() string {
	field := o.FieldRaw
	if o.Field != nil {
		field = o.Field.Build()
	}
	partitions := ""
	if len(o.Partitions) > 0 {
		partitions = BuildPartitions(o.Partitions)
	}
	return join(o.Options.Build(), field, strings.TrimSpace(BuildTokens(o.Unknown)), partitions)
}

// ParseAlterOperation parses one operation of an ALTER statement on target.
func ParseAlterOperation(p *Parser, target AlterTarget) *AlterOperation {
	s := p.stream
	start := s.Peek()
	ret := &AlterOperation{Options: ParseOptions(p, target.Options())}

	switch {
	case ret.Options.Has("AS"):
		ret.FieldRaw = p.parseRawRest()
		return ret

	case ret.Options.Has("PARTITION BY"):
		ret.FieldRaw = p.parseRawRest()
		return ret

	case ret.Options.Has("PARTITION") && s.Peek().IsOperator("("):
		ret.Partitions = ParsePartitionList(p)
		return ret
	}

	ret.Field = ParseExpression(p, ExprOptions{BreakOnAlias: true, ParseField: FieldColumn})
	p.parseAlterUnknown(ret, target)

	if ret.Options.IsEmpty() {
		p.error(CodeUnrecognized, ErrUnrecognizedAlter, start)
	}
	return ret
}

// parseAlterUnknown collects the tokens after the field up to a depth-0
// comma or an unmatched ")". Comments are dropped.
func (p *Parser) parseAlterUnknown(ret *AlterOperation, target AlterTarget) {
	s := p.stream
	depth := 0
loop:
	for {
		tok := s.Current()
		switch {
		case tok.Kind == token.EOF || tok.Kind == token.Delimiter:
			break loop
		case tok.Kind == token.Comment:
			s.Advance()
			continue
		case tok.Kind == token.Whitespace:
			ret.Unknown = append(ret.Unknown, s.Advance())
			continue
		}

		if depth == 0 {
			switch {
			case tok.IsOperator(","), tok.IsOperator(")"):
				break loop
			case p.startsStatementOnObject():
				p.error(CodeMissingDelimiter, ErrMissingDelimiter, tok)
				ret.newStatement = true
				break loop
			case p.missingComma(tok, target):
				p.error(CodeMissingComma, ErrMissingComma, tok)
				ret.missingComma = true
				break loop
			case p.startsNewStatement():
				p.error(CodeMissingDelimiter, ErrMissingDelimiter, tok)
				ret.newStatement = true
				break loop
			}
		}
		switch {
		case tok.IsOperator("("):
			depth++
		case tok.IsOperator(")"):
			depth--
		}
		ret.Unknown = append(ret.Unknown, s.Advance())
	}
	trimTrivia(&ret.Unknown)
}

// functionKeywords start a statement but also name a function or a column
// clause when "(" follows.
var functionKeywords = map[string]bool{
	"CHECK": true, "INSERT": true, "REPLACE": true, "SET": true, "TRUNCATE": true,
}

// statementObjects follow a statement keyword but never an operation
// keyword of the same name. INDEX only counts after CREATE since ALTER INDEX
// and DROP INDEX are table operations.
var statementObjects = map[string]bool{
	"DATABASE": true, "EVENT": true, "FUNCTION": true, "PROCEDURE": true,
	"SCHEMA": true, "SERVER": true, "TABLE": true, "TABLES": true,
	"TABLESPACE": true, "TEMPORARY": true, "TRIGGER": true, "USER": true,
	"VIEW": true,
}

// startsNewStatement reports whether the cursor token begins a statement
// rather than continuing an operation. Only bare keywords count. SET and
// DROP DEFAULT, SET NULL and function calls such as REPLACE(...) are kept.
func (p *Parser) startsNewStatement() bool {
	s := p.stream
	tok := s.Current()
	if !IsStatementStart(tok) {
		return false
	}
	next := s.PeekAt(1)
	if next.IsOperator("(") && functionKeywords[tok.Value] {
		return false
	}
	return !(tok.IsKeyword("SET", "DROP") && next.IsKeyword("DEFAULT", "NULL", "NOT NULL"))
}

// startsStatementOnObject reports whether the cursor is a statement keyword
// followed by the object it acts on, as in DROP TABLE or ALTER TABLE. Such
// pairs end the operation even when the keyword alone would open another.
func (p *Parser) startsStatementOnObject() bool {
	s := p.stream
	tok := s.Current()
	if !IsStatementStart(tok) {
		return false
	}
	next := s.PeekAt(1)
	if next.Kind != token.Keyword {
		return false
	}
	return statementObjects[next.Value] || tok.Value == "CREATE" && next.Value == "INDEX"
}

// missingComma reports whether tok opens a new database or table operation
// directly after the previous one.
func (p *Parser) missingComma(tok token.Token, target AlterTarget) bool {
	if target != AlterTable && target != AlterDatabase {
		return false
	}
	if tok.Kind != token.Keyword || columnKeywords[tok.Value] {
		return false
	}
	spec, ok := target.Options()[tok.Value]
	if !ok || spec.Ordinal != 1 {
		return false
	}
	// ALTER COLUMN a SET DEFAULT 1, DROP DEFAULT and the like
	prev, _ := p.stream.Prev()
	return !prev.IsKeyword("SET", "DROP", "ALTER") && !p.stream.PeekAt(1).IsKeyword("DEFAULT")
}

// trimTrivia drops leading and trailing trivia.
func trimTrivia(tokens *[]token.Token) {
	t := *tokens
	for len(t) > 0 && t[0].IsTrivia() {
		t = t[1:]
	}
	for len(t) > 0 && t[len(t)-1].IsTrivia() {
		t = t[:len(t)-1]
	}
	*tokens = t
}

// parseRawRest consumes everything up to the delimiter and returns it as
// written.
func (p *Parser) parseRawRest() string {
	s := p.stream
	s.Skip()
	start, end := s.Idx, s.Idx
	for tok := s.Current(); tok.Kind != token.EOF && tok.Kind != token.Delimiter; tok = s.Current() {
		s.Advance()
		if !tok.IsTrivia() {
			end = s.Idx
		}
	}
	s.Reset(end)
	return strings.TrimSpace(s.Build(start, end))
}
