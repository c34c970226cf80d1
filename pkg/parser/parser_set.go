package parser

import (
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/token"
)

// Assignments.
//
// Grammar:
//
//	set_operations → assignment ("," assignment)*
//	assignment     → column ("=" | ":=") expression
//
// The column is kept as written up to the operator. A reserved keyword in
// the column position ends the list.

// SetOperation is one column assignment.
type SetOperation struct {
	Column   string
	Operator string // "=" or ":="
	Value    string
	Expr     *Expression
}

// Build returns "column = value".
func (o *SetOperation) Build() string {
	op := o.Operator
	if op == "" {
		op = "="
	}
	return o.Column + " " + op + " " + o.Value
}

// BuildSetOperations joins assignments with ", ".
func BuildSetOperations(ops []*SetOperation) string {
	parts := make([]string, len(ops))
	for i, o := range ops {
		parts[i] = o.Build()
	}
	return strings.Join(parts, ", ")
}

// ParseSetOperations parses assignments at the cursor. On a column it cannot
// finish the cursor is left at the start of that column.
func ParseSetOperations(p *Parser) []*SetOperation {
	s := p.stream
	var ret []*SetOperation
	for {
		s.Skip()
		start := s.Idx
		op, ok := scanAssignmentColumn(s)
		if !ok {
			s.Reset(start)
			return ret
		}
		column := strings.TrimSpace(s.Build(start, s.Idx))
		s.Next()

		set := &SetOperation{Column: column, Operator: op.Value}
		if expr := ParseExpression(p, ExprOptions{BreakOnAlias: true}); expr != nil {
			set.Expr = expr
			set.Value = expr.Build()
		} else {
			p.error(CodeMissingToken, ErrMissingExpression, s.Peek())
		}
		ret = append(ret, set)

		comma, more := s.NextOfKindAndValue(token.Operator, ",")
		if !more {
			return ret
		}
		if next := s.Peek(); !canStartColumn(next) {
			p.error(CodeUnexpectedToken, ErrUnexpectedToken, comma)
			return ret
		}
	}
}

// scanAssignmentColumn moves over a column name and stops on the assignment
// operator, which it returns.
func scanAssignmentColumn(s *TokenStream) (token.Token, bool) {
	empty := true
	for {
		tok := s.Current()
		switch {
		case tok.IsTrivia():
		case tok.IsOperator("="), tok.IsOperator(":="):
			return tok, !empty
		case !canStartColumn(tok) && !tok.IsOperator("."):
			return tok, false
		default:
			empty = false
		}
		s.Advance()
	}
}

func canStartColumn(tok token.Token) bool {
	switch tok.Kind {
	case token.Identifier, token.QuotedIdentifier, token.Variable:
		return true
	case token.Keyword:
		return !tok.IsReserved()
	}
	return false
}
