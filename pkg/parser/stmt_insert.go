package parser

import (
	"github.com/BackEndTea/sql-parser/pkg/token"
)

// INSERT and REPLACE statements.
//
// Grammar:
//
//	insert → (INSERT | REPLACE) insert_option* [INTO] name ["(" columns ")"]
//	         ( (VALUES | VALUE) array2d | SET set_operations | select )
//	         [ON DUPLICATE KEY UPDATE set_operations]

// InsertOptions come after INSERT or REPLACE.
var InsertOptions = OptionTable{
	"LOW_PRIORITY":  OptFlag(1),
	"DELAYED":       OptFlag(2),
	"HIGH_PRIORITY": OptFlag(3),
	"IGNORE":        OptFlag(4),
}

// InsertStatement is an INSERT or REPLACE.
type InsertStatement struct {
	Verb           string // INSERT or REPLACE
	Options        *OptionsArray
	Into           bool
	Table          *Expression
	Columns        *ArrayObj
	ValuesKeyword  string // VALUES or VALUE
	Values         []*ArrayObj
	Set            []*SetOperation
	Select         *SelectStatement
	OnDuplicateSet []*SetOperation
	Tail           string
}

func (*InsertStatement) stmtNode() {}

// Keyword returns INSERT or REPLACE.
func (s *InsertStatement) Keyword() string { return s.Verb }

// Build returns the statement text.
func (s *InsertStatement) Build() string {
	into := ""
	if s.Into {
		into = "INTO"
	}
	source := ""
	switch {
	case s.ValuesKeyword != "":
		source = s.ValuesKeyword + " " + BuildArray2d(s.Values)
	case s.Set != nil:
		source = join("SET", BuildSetOperations(s.Set))
	case s.Select != nil:
		source = s.Select.Build()
	}
	onDup := ""
	if s.OnDuplicateSet != nil {
		onDup = join("ON DUPLICATE KEY UPDATE", BuildSetOperations(s.OnDuplicateSet))
	}
	return join(s.Verb, s.Options.Build(), into, s.Table.Build(), s.Columns.Build(), source, onDup, s.Tail)
}

func parseInsert(p *Parser) Statement {
	s := p.stream
	verb := s.Next()
	stmt := &InsertStatement{Verb: verb.Value, Options: ParseOptions(p, InsertOptions)}

	if _, ok := s.NextOfKindAndValue(token.Keyword, "INTO"); ok {
		stmt.Into = true
	}
	stmt.Table = ParseExpression(p, ExprOptions{BreakOnAlias: true, ParseField: FieldTable})
	if stmt.Table == nil {
		p.error(CodeMissingToken, ErrNameExpected, s.Peek())
	}
	if s.Peek().IsOperator("(") && !s.PeekAt(1).IsKeyword("SELECT") {
		stmt.Columns = ParseArray(p)
	}

	switch tok := s.Peek(); {
	case tok.IsKeyword("VALUES", "VALUE"):
		s.Next()
		stmt.ValuesKeyword = tok.Value
		stmt.Values = ParseArray2d(p)
	case tok.IsKeyword("SET"):
		s.Next()
		stmt.Set = ParseSetOperations(p)
		if stmt.Set == nil {
			stmt.Set = []*SetOperation{}
			p.error(CodeMissingToken, ErrMissingExpression, s.Peek())
		}
	case tok.IsKeyword("SELECT"), tok.IsOperator("(") && s.PeekAt(1).IsKeyword("SELECT"):
		stmt.Select = parseSelectBody(p)
	default:
		p.error(CodeMissingToken, ErrValuesExpected, tok)
	}

	if _, ok := s.NextOfKindAndValue(token.Keyword, "ON DUPLICATE KEY UPDATE"); ok {
		stmt.OnDuplicateSet = ParseSetOperations(p)
		if stmt.OnDuplicateSet == nil {
			stmt.OnDuplicateSet = []*SetOperation{}
			p.error(CodeMissingToken, ErrMissingExpression, s.Peek())
		}
	}

	stmt.Tail = p.parseTail()
	return stmt
}
