package format

import (
	"bytes"
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/token"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const indentSize = 2

// Printer writes tokens with indentation and keyword casing.
type Printer struct {
	opts        Options
	caser       cases.Caser
	output      *bytes.Buffer
	depth       int
	atLineStart bool

	prev  token.Token // last significant token written
	unary bool        // prev is a prefix operator
	// lineBreak is set when the trivia before the current token held a newline.
	lineBreak bool
	frames    []frame
}

func newPrinter(opts Options) *Printer {
	p := &Printer{
		opts:        opts,
		output:      &bytes.Buffer{},
		atLineStart: true,
	}
	switch opts.Case {
	case Upper:
		p.caser = cases.Upper(language.Und)
	case Lower:
		p.caser = cases.Lower(language.Und)
	}
	return p
}

// String returns the formatted output.
func (p *Printer) String() string {
	out := strings.TrimRight(p.output.String(), " \n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

func (p *Printer) write(s string) {
	if p.atLineStart && len(s) > 0 && s[0] != '\n' {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *Printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

// newline ends the current line unless it is already empty.
func (p *Printer) newline() {
	if !p.atLineStart {
		p.writeln()
	}
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.depth*indentSize; i++ {
		p.output.WriteByte(' ')
	}
	p.atLineStart = false
}

func (p *Printer) space() {
	if !p.atLineStart {
		p.output.WriteByte(' ')
	}
}

// keyword spells a keyword token. Composed keywords written across several
// lines collapse to single spaces.
func (p *Printer) keyword(tok token.Token) string {
	text := strings.Join(strings.Fields(tok.Raw), " ")
	if p.opts.Case == Preserve {
		return text
	}
	return p.caser.String(text)
}

func (p *Printer) text(tok token.Token) string {
	if tok.Kind == token.Keyword {
		return p.keyword(tok)
	}
	return tok.Raw
}
