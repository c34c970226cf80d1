package format

import "github.com/BackEndTea/sql-parser/pkg/token"

var prefixOperators = map[string]bool{"-": true, "+": true, "~": true, "!": true}

// needsSpace reports whether a blank separates prev and tok. adjacent is
// true when nothing stood between them in the source.
func (p *Printer) needsSpace(tok token.Token, adjacent bool) bool {
	prev := p.prev
	switch {
	case prev.Kind == token.EOF || p.atLineStart:
		return false
	case p.unary:
		return false
	case tok.Kind == token.Delimiter:
		return tok.Value != ";"
	case tok.IsOperator(",") || tok.IsOperator(")"):
		return false
	case tok.IsOperator(".") || prev.IsOperator("."):
		return false
	case prev.IsOperator("("):
		return false
	case tok.IsOperator("("):
		// keeps COUNT(*) and INT(11) together while IN (1) stays apart
		return !(adjacent && prev.IsWord())
	case tok.Kind == token.Variable && adjacent:
		// 'user'@'host'
		return prev.Kind != token.String && !prev.IsWord()
	}
	return true
}

// isPrefix reports whether operator tok applies to the operand after it.
func (p *Printer) isPrefix(tok token.Token) bool {
	if tok.Kind != token.Operator || !prefixOperators[tok.Value] {
		return false
	}
	prev := p.prev
	switch prev.Kind {
	case token.EOF, token.Delimiter:
		return true
	case token.Operator:
		return !prev.IsOperator(")")
	case token.Keyword:
		return prev.IsReserved()
	}
	return false
}
