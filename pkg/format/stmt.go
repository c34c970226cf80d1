package format

import (
	"github.com/BackEndTea/sql-parser/pkg/parser"
	"github.com/BackEndTea/sql-parser/pkg/token"
)

// clauses start a new line inside query statements. Block clauses put their
// body on the following lines, one list item per line.
var clauses = map[string]bool{
	"SELECT":                  true,
	"WHERE":                   true,
	"HAVING":                  true,
	"GROUP BY":                true,
	"ORDER BY":                true,
	"SET":                     true,
	"ON DUPLICATE KEY UPDATE": true,
	"FROM":                    false,
	"LIMIT":                   false,
	"UNION":                   false,
	"UNION ALL":               false,
	"UNION DISTINCT":          false,
	"VALUES":                  false,
	"VALUE":                   false,
	"WINDOW":                  false,
	"INNER JOIN":              false,
	"LEFT JOIN":               false,
	"RIGHT JOIN":              false,
	"CROSS JOIN":              false,
	"STRAIGHT_JOIN":           false,
	"JOIN":                    false,
	"NATURAL":                 false,
	"LEFT":                    false,
	"RIGHT":                   false,
	"FOR UPDATE":              false,
	"LOCK IN SHARE MODE":      false,
}

// queryStatements get clause layout; everything else prints on one line.
var queryStatements = map[string]bool{
	"SELECT": true, "INSERT": true, "REPLACE": true, "UPDATE": true, "DELETE": true, "WITH": true,
}

// frame is one parenthesised level. Subqueries get clause layout of their own.
type frame struct {
	query   bool
	depth   int
	started bool
	block   bool
}

func (p *Printer) top() *frame {
	return &p.frames[len(p.frames)-1]
}

func (p *Printer) formatStream(stream *parser.TokenStream) {
	p.resetStatement()
	adjacent := true
	toks := stream.Tokens
	for i, tok := range toks {
		switch tok.Kind {
		case token.EOF:
			return
		case token.Whitespace:
			adjacent = false
			for _, r := range tok.Raw {
				if r == '\n' {
					p.lineBreak = true
				}
			}
			continue
		case token.Comment:
			adjacent = false
			p.comment(tok)
			if isLineComment(tok) {
				p.lineBreak = true
			}
			continue
		}

		p.token(tok, toks[i+1:], adjacent)
		adjacent = true
		p.lineBreak = false
	}
}

func (p *Printer) resetStatement() {
	p.depth = 0
	p.frames = []frame{{}}
	p.prev = token.Token{}
	p.unary = false
}

// token prints a significant token. rest holds the tokens after it.
func (p *Printer) token(tok token.Token, rest []token.Token, adjacent bool) {
	if tok.Kind == token.Delimiter {
		if p.needsSpace(tok, adjacent) || tok.Has(token.FlagDelimiterDef) {
			p.space()
		}
		p.write(tok.Raw)
		p.writeln()
		p.resetStatement()
		return
	}

	f := p.top()
	if p.prev.Kind == token.EOF && len(p.frames) == 1 && !p.opts.Compact {
		f.query = tok.IsOperator("(") || tok.Kind == token.Keyword && queryStatements[tok.Value]
	}

	switch {
	case tok.IsOperator("("):
		p.open(tok, rest, adjacent)
	case tok.IsOperator(")"):
		p.close(tok)
	case f.query && tok.IsOperator(",") && f.block:
		p.write(tok.Raw)
		p.newline()
	case f.query && p.isClause(tok, rest):
		p.clause(f, tok)
	default:
		if p.needsSpace(tok, adjacent) {
			p.space()
		}
		p.write(p.text(tok))
	}
	f = p.top()
	f.started = true
	p.unary = p.isPrefix(tok)
	p.prev = tok
}

func (p *Printer) isClause(tok token.Token, rest []token.Token) bool {
	if tok.Kind != token.Keyword {
		return false
	}
	if _, ok := clauses[tok.Value]; !ok {
		return false
	}
	switch tok.Value {
	case "LEFT", "RIGHT", "NATURAL":
		return nextWord(rest).IsKeyword("JOIN", "OUTER", "INNER", "LEFT JOIN", "RIGHT JOIN")
	case "JOIN":
		return !p.prev.IsKeyword("OUTER", "NATURAL", "LEFT", "RIGHT", "INNER", "CROSS")
	case "SET":
		// SET inside a column definition is not the UPDATE clause
		return p.frames[0].query && len(p.frames) == 1
	}
	return true
}

func (p *Printer) clause(f *frame, tok token.Token) {
	p.depth = f.depth
	if f.started {
		p.newline()
	}
	p.write(p.keyword(tok))
	f.block = clauses[tok.Value]
	if f.block {
		p.depth = f.depth + 1
		p.newline()
	}
}

func (p *Printer) open(tok token.Token, rest []token.Token, adjacent bool) {
	if p.needsSpace(tok, adjacent) {
		p.space()
	}
	p.write(tok.Raw)

	next := nextWord(rest)
	if !p.opts.Compact && next.IsKeyword("SELECT", "WITH") {
		p.frames = append(p.frames, frame{query: true, depth: p.depth + 1})
		p.depth++
		p.newline()
		return
	}
	p.frames = append(p.frames, frame{depth: p.depth})
}

func (p *Printer) close(tok token.Token) {
	if len(p.frames) == 1 {
		// unbalanced; print as is
		p.write(tok.Raw)
		return
	}
	f := p.frames[len(p.frames)-1]
	p.frames = p.frames[:len(p.frames)-1]
	if f.query {
		p.depth = f.depth - 1
		p.newline()
	}
	p.write(tok.Raw)
}

// nextWord returns the first significant token of rest.
func nextWord(rest []token.Token) token.Token {
	for _, t := range rest {
		if !t.IsTrivia() {
			return t
		}
	}
	return token.Token{}
}
