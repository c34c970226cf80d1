// Package format pretty-prints SQL from the parser's token stream.
//
// Formatting never changes the meaning of a script: the significant tokens
// of the output, re-tokenized, match the input's in kind and value. Only
// whitespace, keyword case and (optionally) comments change.
package format

import (
	"github.com/BackEndTea/sql-parser/pkg/dialect"
	"github.com/BackEndTea/sql-parser/pkg/parser"
)

// KeywordCase selects how keywords are spelled in the output.
type KeywordCase int

const (
	// Upper spells keywords in upper case.
	Upper KeywordCase = iota
	// Lower spells keywords in lower case.
	Lower
	// Preserve keeps keywords as written.
	Preserve
)

// ParseKeywordCase maps "upper", "lower" or "preserve" to a KeywordCase.
func ParseKeywordCase(s string) (KeywordCase, bool) {
	switch s {
	case "upper", "":
		return Upper, true
	case "lower":
		return Lower, true
	case "preserve":
		return Preserve, true
	}
	return Upper, false
}

// Options control the output layout.
type Options struct {
	Case KeywordCase
	// Comments keeps comments. Conditional comments (/*! ... */) are kept
	// regardless since the server executes them.
	Comments bool
	// Compact prints each statement on a single line.
	Compact bool
}

// DefaultOptions breaks clauses onto their own lines and keeps comments.
func DefaultOptions() Options {
	return Options{Case: Upper, Comments: true}
}

// Format prints the tokens of stream.
func Format(stream *parser.TokenStream, opts Options) string {
	p := newPrinter(opts)
	p.formatStream(stream)
	return p.String()
}

// SQL tokenizes sql for dialect d and formats it. Lexical errors do not stop
// formatting; they are returned alongside the output.
func SQL(sql string, d *dialect.Dialect, opts Options, popts ...parser.Option) (string, []*parser.Error, error) {
	stream, errs, err := parser.Tokenize(sql, d, popts...)
	if err != nil {
		return "", nil, err
	}
	return Format(stream, opts), errs, nil
}

// Compact is Format with every statement on one line and comments dropped.
func Compact(stream *parser.TokenStream) string {
	return Format(stream, Options{Case: Upper, Compact: true})
}
