package parser

import (
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/token"
)

// ALTER statement.
//
// Grammar:
//
//	alter → ALTER alter_option* kind name alter_operation ("," alter_operation)*

// AlterStatementOptions come before the altered object's name.
var AlterStatementOptions = OptionTable{
	"ONLINE":       OptFlag(1),
	"OFFLINE":      OptFlag(1),
	"IGNORE":       OptFlag(2),
	"ALGORITHM":    OptVarEq(3),
	"DEFINER":      OptExprEq(4),
	"SQL SECURITY": OptVar(5),

	"DATABASE":   OptFlag(6),
	"SCHEMA":     OptFlag(6),
	"EVENT":      OptFlag(6),
	"FUNCTION":   OptFlag(6),
	"INDEX":      OptFlag(6),
	"PROCEDURE":  OptFlag(6),
	"SERVER":     OptFlag(6),
	"TABLE":      OptFlag(6),
	"TABLESPACE": OptFlag(6),
	"USER":       OptFlag(6),
	"VIEW":       OptFlag(6),
}

// AlterStatement is ALTER DATABASE, TABLE, USER, VIEW and friends.
type AlterStatement struct {
	Options    *OptionsArray
	Table      *Expression
	Operations []*AlterOperation
	Tail       string
}

func (*AlterStatement) stmtNode() {}

// Keyword returns "ALTER".
func (*AlterStatement) Keyword() string { return "ALTER" }

// Target returns the kind of object altered.
func (s *AlterStatement) Target() AlterTarget {
	switch {
	case s.Options.Has("DATABASE"), s.Options.Has("SCHEMA"):
		return AlterDatabase
	case s.Options.Has("USER"):
		return AlterUser
	case s.Options.Has("VIEW"):
		return AlterView
	}
	return AlterTable
}

// Build returns the statement text.
func (s *AlterStatement) Build() string {
	ops := make([]string, len(s.Operations))
	for i, op := range s.Operations {
		ops[i] = op.Build()
	}
	return join("ALTER", s.Options.Build(), s.Table.Build(), strings.Join(ops, ", "), s.Tail)
}

func parseAlter(p *Parser) Statement {
	s := p.stream
	s.Next()
	stmt := &AlterStatement{Options: ParseOptions(p, AlterStatementOptions)}
	stmt.Table = ParseExpression(p, ExprOptions{BreakOnAlias: true, ParseField: FieldTable})
	if stmt.Table == nil {
		p.error(CodeMissingToken, ErrNameExpected, s.Peek())
	}

	target := stmt.Target()
	ended := false
	for {
		tok := s.Peek()
		if tok.Kind == token.EOF || tok.Kind == token.Delimiter {
			break
		}
		start := s.Idx
		op := ParseAlterOperation(p, target)
		if s.Idx == start {
			break
		}
		stmt.Operations = append(stmt.Operations, op)
		if op.newStatement {
			ended = true
			break
		}
		if _, ok := s.NextOfKindAndValue(token.Operator, ","); ok || op.missingComma {
			continue
		}
		break
	}

	if !ended {
		stmt.Tail = p.parseTail()
	}
	return stmt
}
