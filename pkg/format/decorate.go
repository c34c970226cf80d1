package format

import (
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/token"
)

func isLineComment(tok token.Token) bool {
	return strings.HasPrefix(tok.Raw, "--") || strings.HasPrefix(tok.Raw, "#")
}

// comment places a comment token. A comment that shared its line with the
// previous token trails it; any other comment gets a line of its own.
// Line comments always end the line.
func (p *Printer) comment(tok token.Token) {
	if !p.opts.Comments && !tok.Has(token.FlagConditional) {
		return
	}
	text := strings.TrimRight(tok.Raw, " \t\r\n")

	trailing := !p.lineBreak && !p.atLineStart
	if tok.Has(token.FlagConditional) && !isLineComment(tok) {
		// executable comment; print it like any other token
		if !p.atLineStart {
			p.space()
		}
		p.write(text)
		p.prev = tok
		return
	}
	if trailing || p.opts.Compact && !isLineComment(tok) {
		p.space()
		p.write(text)
	} else {
		p.newline()
		p.write(text)
		if !p.opts.Compact || isLineComment(tok) {
			p.writeln()
		}
	}
	if isLineComment(tok) {
		p.newline()
	}
}
