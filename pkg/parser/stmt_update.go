package parser

import (
	"github.com/BackEndTea/sql-parser/pkg/token"
)

// UPDATE and DELETE statements.
//
// Grammar:
//
//	update → UPDATE update_option* tables SET set_operations
//	         [WHERE ...] [ORDER BY ...] [LIMIT limit]
//	delete → DELETE delete_option* [targets] FROM ... [USING ...]
//	         [WHERE ...] [ORDER BY ...] [LIMIT limit]

// UpdateOptions come after UPDATE.
var UpdateOptions = OptionTable{
	"LOW_PRIORITY": OptFlag(1),
	"IGNORE":       OptFlag(2),
}

// DeleteOptions come after DELETE.
var DeleteOptions = OptionTable{
	"LOW_PRIORITY": OptFlag(1),
	"QUICK":        OptFlag(2),
	"IGNORE":       OptFlag(3),
}

var updateClauses = map[string]bool{"WHERE": true, "ORDER BY": true}

var updateTableStops = map[string]bool{"SET": true}

var deleteClauses = map[string]bool{
	"FROM": true, "USING": true, "WHERE": true, "ORDER BY": true,
}

// UpdateStatement is an UPDATE.
type UpdateStatement struct {
	Options *OptionsArray
	Tables  string // table references as written
	Set     []*SetOperation
	Clauses []*Clause
	Limit   *Limit
	Tail    string
}

func (*UpdateStatement) stmtNode() {}

// Keyword returns "UPDATE".
func (*UpdateStatement) Keyword() string { return "UPDATE" }

// Build returns the statement text.
func (s *UpdateStatement) Build() string {
	set := ""
	if s.Set != nil {
		set = join("SET", BuildSetOperations(s.Set))
	}
	return join("UPDATE", s.Options.Build(), s.Tables, set, buildClauses(s.Clauses), buildLimit(s.Limit), s.Tail)
}

func parseUpdate(p *Parser) Statement {
	s := p.stream
	s.Next()
	stmt := &UpdateStatement{Options: ParseOptions(p, UpdateOptions)}
	stmt.Tables = p.parseRawUntil(updateTableStops)
	if stmt.Tables == "" {
		p.error(CodeMissingToken, ErrNameExpected, s.Peek())
	}

	if _, ok := s.NextOfKindAndValue(token.Keyword, "SET"); ok {
		stmt.Set = ParseSetOperations(p)
		if stmt.Set == nil {
			stmt.Set = []*SetOperation{}
		}
	} else {
		p.error(CodeMissingToken, ErrUnexpectedToken, s.Peek())
	}

	stmt.Clauses = p.parseClauses(updateClauses)
	stmt.Limit = p.parseLimitClause()
	stmt.Tail = p.parseTail()
	return stmt
}

// DeleteStatement is a DELETE.
type DeleteStatement struct {
	Options *OptionsArray
	Targets string // multi-table targets before FROM
	Clauses []*Clause
	Limit   *Limit
	Tail    string
}

func (*DeleteStatement) stmtNode() {}

// Keyword returns "DELETE".
func (*DeleteStatement) Keyword() string { return "DELETE" }

// Build returns the statement text.
func (s *DeleteStatement) Build() string {
	return join("DELETE", s.Options.Build(), s.Targets, buildClauses(s.Clauses), buildLimit(s.Limit), s.Tail)
}

func parseDelete(p *Parser) Statement {
	s := p.stream
	s.Next()
	stmt := &DeleteStatement{Options: ParseOptions(p, DeleteOptions)}
	stmt.Targets = p.parseRawUntil(deleteClauses)
	stmt.Clauses = p.parseClauses(deleteClauses)
	if len(stmt.Clauses) == 0 || stmt.Clauses[0].Keyword != "FROM" {
		p.error(CodeMissingToken, ErrUnexpectedToken, s.Peek())
	}
	stmt.Limit = p.parseLimitClause()
	stmt.Tail = p.parseTail()
	return stmt
}

// parseLimitClause parses an optional LIMIT clause.
func (p *Parser) parseLimitClause() *Limit {
	if _, ok := p.stream.NextOfKindAndValue(token.Keyword, "LIMIT"); !ok {
		return nil
	}
	return ParseLimit(p)
}

func buildLimit(l *Limit) string {
	if l == nil {
		return ""
	}
	return "LIMIT " + l.Build()
}
