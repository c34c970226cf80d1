package parser

import (
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/token"
)

// Component is a parsed grammar fragment that can rebuild its SQL.
type Component interface {
	Build() string
}

// Statement is a parsed top-level command.
type Statement interface {
	Component
	// Keyword returns the leading keyword(s), e.g. "ALTER" or "CREATE TABLE".
	Keyword() string
	stmtNode()
}

// NotImplementedStatement keeps the tokens of a statement that has no
// grammar of its own.
type NotImplementedStatement struct {
	Tokens []token.Token
}

func (*NotImplementedStatement) stmtNode() {}

// Keyword returns the leading keyword, or the raw leading text.
func (s *NotImplementedStatement) Keyword() string {
	for _, t := range s.Tokens {
		if t.IsTrivia() {
			continue
		}
		if t.Kind == token.Keyword {
			return t.Value
		}
		return t.Raw
	}
	return ""
}

// Build returns the statement text as written.
func (s *NotImplementedStatement) Build() string {
	return strings.TrimSpace(BuildTokens(s.Tokens))
}

// parseNotImplemented consumes everything up to the next delimiter.
func parseNotImplemented(p *Parser) Statement {
	s := p.stream
	s.Skip()
	stmt := &NotImplementedStatement{}
	for tok := s.Current(); tok.Kind != token.Delimiter && tok.Kind != token.EOF; tok = s.Current() {
		stmt.Tokens = append(stmt.Tokens, s.Advance())
	}
	return stmt
}

// Clause is a keyword-introduced clause whose body is kept as text,
// e.g. WHERE or ORDER BY.
type Clause struct {
	Keyword string
	Body    string
}

// Build returns "KEYWORD body".
func (c *Clause) Build() string {
	if c.Body == "" {
		return c.Keyword
	}
	return c.Keyword + " " + c.Body
}

// atStatementStart reports whether the cursor sits on a keyword that
// begins a new statement. A keyword directly followed by "(" is a function
// call.
func (p *Parser) atStatementStart() bool {
	s := p.stream
	return IsStatementStart(s.Peek()) && !s.PeekAt(1).IsOperator("(")
}

// parseClauses reads clauses introduced by the keywords in set, in any
// order. Each body runs until the next depth-0 clause keyword, LIMIT
// handling is left to the caller.
func (p *Parser) parseClauses(set map[string]bool) []*Clause {
	s := p.stream
	var clauses []*Clause
	for {
		tok := s.Peek()
		if tok.Kind != token.Keyword || !set[tok.Value] {
			return clauses
		}
		s.Next()
		clauses = append(clauses, &Clause{Keyword: tok.Value, Body: p.parseRawUntil(set)})
	}
}

// parseRawUntil consumes tokens up to a depth-0 keyword in stops, a
// delimiter, a new statement or an unmatched ")". It returns the trimmed
// text and leaves trailing trivia unconsumed.
func (p *Parser) parseRawUntil(stops map[string]bool) string {
	s := p.stream
	s.Skip()
	start, end := s.Idx, s.Idx
	depth := 0
	for {
		tok := s.Current()
		if tok.Kind == token.EOF || tok.Kind == token.Delimiter {
			break
		}
		if tok.IsTrivia() {
			s.Advance()
			continue
		}
		if depth == 0 {
			if tok.Kind == token.Keyword && (stops[tok.Value] || tok.Value == "LIMIT") {
				break
			}
			if tok.IsOperator(")") || p.atStatementStart() {
				break
			}
		}
		switch {
		case tok.IsOperator("("):
			depth++
		case tok.IsOperator(")"):
			depth--
		}
		s.Advance()
		end = s.Idx
	}
	s.Reset(end)
	return strings.TrimSpace(s.Build(start, end))
}

// parseTail consumes tokens the statement grammar did not recognize, up to
// the next delimiter or new statement, recording one error at the first.
func (p *Parser) parseTail() string {
	s := p.stream
	tok := s.Peek()
	if tok.Kind == token.EOF || tok.Kind == token.Delimiter || p.atStatementStart() {
		return ""
	}
	p.error(CodeUnexpectedToken, ErrUnexpectedToken, tok)

	s.Skip()
	start, end := s.Idx, s.Idx
	depth := 0
	for {
		tok = s.Current()
		if tok.Kind == token.EOF || tok.Kind == token.Delimiter {
			break
		}
		if !tok.IsTrivia() {
			if depth == 0 && end > start && p.atStatementStart() {
				break
			}
			switch {
			case tok.IsOperator("("):
				depth++
			case tok.IsOperator(")"):
				depth--
			}
		}
		s.Advance()
		if !tok.IsTrivia() {
			end = s.Idx
		}
	}
	s.Reset(end)
	return strings.TrimSpace(s.Build(start, end))
}

// join joins the non-empty parts with single spaces.
func join(parts ...string) string {
	var out []string
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, " ")
}
