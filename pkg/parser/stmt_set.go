package parser

import (
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/token"
)

// SET statement.
//
// Grammar:
//
//	set → SET [scope] set_operations
//	    | SET (NAMES | CHARACTER SET | CHARSET) value [COLLATE value | DEFAULT]
//	    | SET [scope] TRANSACTION ...
//	    | SET PASSWORD ["FOR" user] = expression

// SetOptions come after SET.
var SetOptions = OptionTable{
	"SESSION":       OptFlag(1),
	"GLOBAL":        OptFlag(1),
	"PERSIST":       OptFlag(1),
	"PERSIST_ONLY":  OptFlag(1),
	"LOCAL":         OptFlag(1),
	"TRANSACTION":   OptFlag(2),
	"CHARSET":       OptVar(3),
	"CHARACTER SET": OptVar(3),
	"NAMES":         OptVar(3),
	"PASSWORD":      OptExpr(3),
}

// SetEndOptions follow a character set name.
var SetEndOptions = OptionTable{
	"COLLATE": OptVar(1),
	"DEFAULT": OptFlag(1),
}

// SetStatement is a SET.
type SetStatement struct {
	Options    *OptionsArray
	EndOptions *OptionsArray
	Set        []*SetOperation
	Body       string // TRANSACTION characteristics as written
	Tail       string
}

func (*SetStatement) stmtNode() {}

// Keyword returns "SET".
func (*SetStatement) Keyword() string { return "SET" }

// Build returns the statement text.
func (s *SetStatement) Build() string {
	return join("SET", s.Options.Build(), s.EndOptions.Build(), s.Body, BuildSetOperations(s.Set), s.Tail)
}

// setsPassword reports whether the statement is SET PASSWORD, with or
// without FOR.
func (s *SetStatement) setsPassword() bool {
	for _, name := range s.Options.Names() {
		if strings.HasPrefix(name, "PASSWORD") {
			return true
		}
	}
	return false
}

func parseSet(p *Parser) Statement {
	s := p.stream
	s.Next()
	stmt := &SetStatement{}
	stmt.Options = p.parseSetOptions()

	switch {
	case stmt.Options.Has("NAMES"), stmt.Options.Has("CHARSET"), stmt.Options.Has("CHARACTER SET"):
		stmt.EndOptions = ParseOptions(p, SetEndOptions)
	case stmt.Options.Has("TRANSACTION"):
		stmt.Body = p.parseRawRest()
	case stmt.setsPassword():
	default:
		stmt.Set = ParseSetOperations(p)
		if len(stmt.Set) == 0 {
			p.error(CodeMissingToken, ErrMissingExpression, s.Peek())
		}
	}

	stmt.Tail = p.parseTail()
	return stmt
}

// parseSetOptions reads SET options, leaving scope words used as variable
// names (SET session = 1) to the assignment list.
func (p *Parser) parseSetOptions() *OptionsArray {
	s := p.stream
	tok := s.Peek()
	next := s.PeekAt(1)
	if _, ok := SetOptions[optionName(tok)]; ok && (next.IsOperator("=") || next.IsOperator(":=")) && !tok.IsKeyword("PASSWORD") {
		return NewOptionsArray()
	}
	if tok.IsKeyword("PASSWORD") && next.IsKeyword("FOR") {
		// SET PASSWORD FOR user = expr
		s.Next()
		s.Next()
		opts := NewOptionsArray()
		start := s.Idx
		for t := s.Peek(); !t.IsOperator("=") && t.Kind != token.EOF && t.Kind != token.Delimiter; t = s.Peek() {
			s.Next()
		}
		user := s.Build(start, s.Idx)
		s.NextOfKindAndValue(token.Operator, "=")
		opt := &OptionValue{Name: "PASSWORD", Kind: OptionExpr, Equals: true}
		if expr := ParseExpression(p, ExprOptions{BreakOnAlias: true}); expr != nil {
			opt.Expr = expr
			opt.Value = expr.Build()
		}
		opt.Raw = opt.Value
		opt.Name = "PASSWORD FOR " + strings.TrimSpace(user)
		opts.Options[3] = opt
		return opts
	}
	return ParseOptions(p, SetOptions)
}
