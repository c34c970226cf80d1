package parser

import (
	"github.com/BackEndTea/sql-parser/pkg/token"
)

// SELECT statement.
//
// Grammar:
//
//	select → SELECT select_option* expression ("," expression)*
//	         clause* [LIMIT limit] [clause*] [union select]
//	       | "(" select ")"
//	union  → UNION | UNION ALL | UNION DISTINCT

// SelectOptions come after SELECT.
var SelectOptions = OptionTable{
	"ALL":                 OptFlag(1),
	"DISTINCT":            OptFlag(1),
	"DISTINCTROW":         OptFlag(1),
	"HIGH_PRIORITY":       OptFlag(2),
	"MAX_STATEMENT_TIME":  OptVarEq(3),
	"STRAIGHT_JOIN":       OptFlag(4),
	"SQL_SMALL_RESULT":    OptFlag(5),
	"SQL_BIG_RESULT":      OptFlag(6),
	"SQL_BUFFER_RESULT":   OptFlag(7),
	"SQL_CACHE":           OptFlag(8),
	"SQL_NO_CACHE":        OptFlag(8),
	"SQL_CALC_FOUND_ROWS": OptFlag(9),
}

var selectClauses = map[string]bool{
	"FROM": true, "WHERE": true, "GROUP BY": true, "HAVING": true,
	"WINDOW": true, "ORDER BY": true, "FOR UPDATE": true,
	"LOCK IN SHARE MODE": true, "INTO": true,
}

// selectStops end a clause body without starting a clause of their own.
var selectStops = map[string]bool{
	"FROM": true, "WHERE": true, "GROUP BY": true, "HAVING": true,
	"WINDOW": true, "ORDER BY": true, "FOR UPDATE": true,
	"LOCK IN SHARE MODE": true, "INTO": true,
	"ON DUPLICATE KEY UPDATE": true, "UNION": true, "UNION ALL": true,
	"UNION DISTINCT": true,
}

// SelectStatement is a SELECT, possibly chained with UNION.
type SelectStatement struct {
	Parens      bool
	Options     *OptionsArray
	Exprs       []*Expression
	Clauses     []*Clause
	Limit       *Limit
	LateClauses []*Clause // clauses after LIMIT, e.g. FOR UPDATE
	Union       string    // UNION keyword, empty when not chained
	Next        *SelectStatement
	Tail        string
}

func (*SelectStatement) stmtNode() {}

// Keyword returns "SELECT".
func (*SelectStatement) Keyword() string { return "SELECT" }

// Clause returns the first clause with the given keyword.
func (s *SelectStatement) Clause(keyword string) (*Clause, bool) {
	for _, list := range [][]*Clause{s.Clauses, s.LateClauses} {
		for _, c := range list {
			if c.Keyword == keyword {
				return c, true
			}
		}
	}
	return nil, false
}

// Build returns the statement text.
func (s *SelectStatement) Build() string {
	if s == nil {
		return ""
	}
	limit := ""
	if s.Limit != nil {
		limit = "LIMIT " + s.Limit.Build()
	}
	body := join("SELECT", s.Options.Build(), BuildExpressions(s.Exprs),
		buildClauses(s.Clauses), limit, buildClauses(s.LateClauses))
	if s.Parens {
		body = "(" + body + ")"
	}
	next := ""
	if s.Next != nil {
		next = s.Union + " " + s.Next.Build()
	}
	return join(body, next, s.Tail)
}

func buildClauses(clauses []*Clause) string {
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = c.Build()
	}
	return join(parts...)
}

func parseSelect(p *Parser) Statement {
	stmt := parseSelectBody(p)
	stmt.Tail = p.parseTail()
	return stmt
}

// parseSelectBody parses a SELECT and its UNION chain, leaving any
// unrecognized tail to the caller.
func parseSelectBody(p *Parser) *SelectStatement {
	s := p.stream
	stmt := &SelectStatement{}

	var open token.Token
	if tok := s.Peek(); tok.IsOperator("(") {
		open = s.Next()
		stmt.Parens = true
	}
	s.Next() // SELECT
	stmt.Options = ParseOptions(p, SelectOptions)
	stmt.Exprs = ParseExpressionList(p, ExprOptions{})
	if len(stmt.Exprs) == 0 {
		p.error(CodeMissingToken, ErrMissingExpression, s.Peek())
	}
	stmt.Clauses = p.parseSelectClauses()
	if _, ok := s.NextOfKindAndValue(token.Keyword, "LIMIT"); ok {
		stmt.Limit = ParseLimit(p)
		stmt.LateClauses = p.parseSelectClauses()
	}

	if stmt.Parens {
		if _, ok := s.NextOfKindAndValue(token.Operator, ")"); !ok {
			p.error(CodeMissingToken, ErrClosingBracket, open)
		}
	}

	if tok := s.Peek(); tok.IsKeyword("UNION", "UNION ALL", "UNION DISTINCT") {
		next := s.PeekAt(1)
		if next.IsKeyword("SELECT") || next.IsOperator("(") {
			s.Next()
			stmt.Union = tok.Value
			stmt.Next = parseSelectBody(p)
		}
	}
	return stmt
}

func (p *Parser) parseSelectClauses() []*Clause {
	s := p.stream
	var clauses []*Clause
	for {
		tok := s.Peek()
		if tok.Kind != token.Keyword || !selectClauses[tok.Value] {
			return clauses
		}
		s.Next()
		clauses = append(clauses, &Clause{Keyword: tok.Value, Body: p.parseRawUntil(selectStops)})
	}
}
