package parser

import (
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/token"
)

// Expression parsing.
//
// Expressions are kept as text. The grammar only decides where an
// expression ends:
//
//	expression → operand (operator operand)* [[AS] alias]
//	operand    → literal | name ("." name)* | function "(" ... ")"
//	           | "(" ... ")" | CASE ... END | INTERVAL expr unit
//
// At bracket depth zero it stops on ",", a delimiter, an unmatched ")"
// or a reserved keyword that cannot continue an expression.

// FieldKind selects how a dotted name fills Database, Table and Column.
type FieldKind int

// Field kinds.
const (
	FieldNone FieldKind = iota
	FieldColumn
	FieldTable
)

// ExprOptions tunes expression parsing.
type ExprOptions struct {
	// BreakOnAlias stops before an alias instead of consuming it.
	BreakOnAlias bool
	// ParseField treats the expression as an object name; a depth-0 "("
	// or an expression keyword ends it.
	ParseField FieldKind
}

// Expression is a parsed expression with its name parts and alias.
type Expression struct {
	Database string
	Table    string
	Column   string
	Expr     string // expression text as written
	Alias    string
	Function string // leading function name, if any

	aliasRaw string
	aliasAS  bool
}

// Build returns the expression with its alias.
func (e *Expression) Build() string {
	if e == nil {
		return ""
	}
	if e.Alias == "" {
		return e.Expr
	}
	if e.aliasAS {
		return e.Expr + " AS " + e.aliasRaw
	}
	return e.Expr + " " + e.aliasRaw
}

// exprKeywords continue an expression and expect an operand next.
var exprKeywords = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "XOR": true, "IS": true,
	"IN": true, "LIKE": true, "REGEXP": true, "RLIKE": true,
	"BETWEEN": true, "CASE": true, "WHEN": true, "THEN": true, "ELSE": true,
	"DIV": true, "MOD": true, "BINARY": true, "INTERVAL": true,
	"COLLATE": true, "ESCAPE": true, "EXISTS": true, "OVER": true,
	"SOUNDS": true,
}

// valueKeywords are keywords that stand for a value.
var valueKeywords = map[string]bool{
	"NULL": true, "TRUE": true, "FALSE": true, "DEFAULT": true,
	"MAXVALUE": true, "UNKNOWN": true,
	"CURRENT_DATE": true, "CURRENT_TIME": true, "CURRENT_TIMESTAMP": true,
	"CURRENT_USER": true, "CURRENT_ROLE": true, "LOCALTIME": true,
	"LOCALTIMESTAMP": true, "UTC_DATE": true, "UTC_TIME": true,
	"UTC_TIMESTAMP": true,
}

var intervalUnits = map[string]bool{
	"MICROSECOND": true, "SECOND": true, "MINUTE": true, "HOUR": true,
	"DAY": true, "WEEK": true, "MONTH": true, "QUARTER": true, "YEAR": true,
	"SECOND_MICROSECOND": true, "MINUTE_MICROSECOND": true,
	"MINUTE_SECOND": true, "HOUR_MICROSECOND": true, "HOUR_SECOND": true,
	"HOUR_MINUTE": true, "DAY_MICROSECOND": true, "DAY_SECOND": true,
	"DAY_MINUTE": true, "DAY_HOUR": true, "YEAR_MONTH": true,
}

// isName reports whether tok can name an object.
func isName(tok token.Token) bool {
	return tok.Kind == token.Identifier || tok.Kind == token.QuotedIdentifier ||
		tok.Kind == token.Keyword && !tok.IsReserved() && !tok.Has(token.FlagComposed)
}

// nameOf returns the name a token spells: unquoted content for quoted
// tokens, the text as written otherwise.
func nameOf(tok token.Token) string {
	if tok.Kind == token.QuotedIdentifier || tok.Kind == token.String {
		return tok.Value
	}
	return tok.Raw
}

// isAlias reports whether tok can be an alias.
func isAlias(tok token.Token) bool {
	return isName(tok) || tok.Kind == token.String
}

// exprState tracks one ParseExpression call.
type exprState struct {
	start, end int // significant span [start, end)
	depth      int
	operand    bool // the last depth-0 token completed an operand
	interval   bool // INTERVAL seen, unit pending
	prev       token.Token
	prevIdx    int
	names      []token.Token // dotted name parts
	simple     bool          // the expression so far is a dotted name
}

func (st *exprState) adjacent(idx int) bool {
	return st.prevIdx >= 0 && st.prevIdx == idx-1
}

// ParseExpression parses one expression starting at the cursor. It returns
// nil, leaving the cursor in place, when no expression starts there.
func ParseExpression(p *Parser, opts ExprOptions) *Expression {
	s := p.stream
	ret := &Expression{}
	s.Skip()
	st := &exprState{start: s.Idx, end: s.Idx, prevIdx: -1, simple: true}

loop:
	for {
		tok := s.Current()
		if tok.Kind == token.EOF || tok.Kind == token.Delimiter {
			break
		}
		if tok.IsTrivia() {
			s.Advance()
			continue
		}

		if st.depth > 0 {
			switch {
			case tok.IsOperator("("):
				st.depth++
			case tok.IsOperator(")"):
				st.depth--
				st.operand = st.depth == 0
			}
			st.consume(s, tok)
			continue
		}

		switch {
		case tok.IsOperator(","), tok.IsOperator(")"):
			break loop

		case tok.IsOperator("("):
			if opts.ParseField != FieldNone {
				break loop
			}
			if st.operand {
				if !st.prev.IsWord() {
					break loop
				}
				if st.prevIdx == st.start && ret.Function == "" {
					ret.Function = st.prev.Value
				}
			}
			st.depth++
			st.simple = false

		case tok.IsOperator("."):
			if !st.simple || len(st.names) == 0 || !st.adjacent(s.Idx) || st.prev.Kind == token.Operator {
				st.simple = false
			}
			st.operand = false

		case tok.IsOperator("*") && !st.operand:
			if st.simple && st.prev.IsOperator(".") {
				st.names = append(st.names, tok)
			} else {
				st.simple = false
			}
			st.operand = true

		case tok.Kind == token.Operator:
			st.operand = false
			st.simple = false

		case tok.IsKeyword("AS"):
			if opts.BreakOnAlias || st.end == st.start {
				break loop
			}
			s.Advance()
			alias := s.Peek()
			if !isAlias(alias) {
				p.error(CodeMissingToken, ErrAliasExpected, alias)
				break loop
			}
			s.Next()
			ret.Alias, ret.aliasRaw, ret.aliasAS = nameOf(alias), alias.Raw, true
			return finishExpression(p, ret, st, opts)

		case tok.Kind == token.Keyword && !isPlainWord(st, tok):
			if opts.ParseField != FieldNone || !st.keyword(s, tok) {
				break loop
			}

		case tok.Kind == token.Variable && st.operand && st.adjacent(s.Idx):
			// user@host
			st.simple = false

		case tok.Kind == token.Keyword || isOperandKind(tok.Kind):
			if st.operand {
				if opts.BreakOnAlias || !isAlias(tok) {
					break loop
				}
				s.Advance()
				ret.Alias, ret.aliasRaw = nameOf(tok), tok.Raw
				return finishExpression(p, ret, st, opts)
			}
			if st.simple && isName(tok) && (len(st.names) == 0 || st.prev.IsOperator(".")) {
				st.names = append(st.names, tok)
			} else {
				st.simple = false
			}
			st.operand = true

		default:
			break loop
		}

		st.consume(s, tok)
	}

	s.Reset(st.end)
	if st.end == st.start {
		return nil
	}
	return finishExpression(p, ret, st, opts)
}

func (st *exprState) consume(s *TokenStream, tok token.Token) {
	st.prev, st.prevIdx = tok, s.Idx
	s.Advance()
	st.end = s.Idx
}

func isOperandKind(k token.Kind) bool {
	switch k {
	case token.Identifier, token.QuotedIdentifier, token.String, token.Number,
		token.Variable, token.Parameter:
		return true
	}
	return false
}

// isPlainWord reports whether a keyword behaves like an identifier here.
func isPlainWord(st *exprState, tok token.Token) bool {
	v := tok.Value
	if exprKeywords[v] || valueKeywords[v] || v == "END" || v == "NOT NULL" {
		return false
	}
	if st.interval && st.operand && intervalUnits[v] {
		return false
	}
	return !tok.IsReserved() && !tok.Has(token.FlagComposed)
}

// keyword handles a keyword with a role in expressions. It returns false
// when the keyword ends the expression.
func (st *exprState) keyword(s *TokenStream, tok token.Token) bool {
	v := tok.Value
	st.simple = false
	switch {
	case st.interval && st.operand && intervalUnits[v]:
		st.interval = false
	case v == "END":
		st.operand = true
	case v == "NOT NULL":
		// IS NOT NULL
		if !st.prev.IsKeyword("IS") {
			return false
		}
		st.operand = true
	case valueKeywords[v]:
		if st.operand {
			return false
		}
		st.operand = true
	case exprKeywords[v]:
		st.operand = false
		if v == "INTERVAL" {
			st.interval = true
		}
	case !st.operand && s.PeekAt(1).IsOperator("("):
		// reserved word used as a function name, e.g. IF( or LEFT(
		st.operand = true
	default:
		return false
	}
	return true
}

func finishExpression(p *Parser, ret *Expression, st *exprState, opts ExprOptions) *Expression {
	ret.Expr = strings.TrimSpace(p.stream.Build(st.start, st.end))
	names := st.names
	if !st.simple || len(names) == 0 || len(names) > 3 || st.prev.IsOperator(".") {
		return ret
	}

	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = nameOf(n)
	}
	switch {
	case opts.ParseField == FieldTable && len(parts) == 1:
		ret.Table = parts[0]
	case opts.ParseField == FieldTable && len(parts) == 2:
		ret.Database, ret.Table = parts[0], parts[1]
	case len(parts) == 1:
		ret.Column = parts[0]
	case len(parts) == 2:
		ret.Table, ret.Column = parts[0], parts[1]
	default:
		ret.Database, ret.Table, ret.Column = parts[0], parts[1], parts[2]
	}
	return ret
}

// ParseExpressionList parses comma-separated expressions.
func ParseExpressionList(p *Parser, opts ExprOptions) []*Expression {
	s := p.stream
	var list []*Expression
	for {
		expr := ParseExpression(p, opts)
		if expr == nil {
			return list
		}
		list = append(list, expr)
		if _, ok := s.NextOfKindAndValue(token.Operator, ","); !ok {
			return list
		}
	}
}

// BuildExpressions joins expressions with ", ".
func BuildExpressions(list []*Expression) string {
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = e.Build()
	}
	return strings.Join(parts, ", ")
}
