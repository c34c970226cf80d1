// Package parser provides a dialect-aware SQL lexer and parser that keeps
// enough of the source to rebuild it.
//
// # Usage
//
//	d, _ := dialect.Get("mysql-8.0")
//	res, err := parser.Parse("ALTER TABLE t ADD COLUMN a INT;", d)
//	if err != nil {
//	    // only a missing or empty dialect is fatal
//	}
//	for _, e := range res.Errors {
//	    // in-stream problems never stop the parse
//	}
//	sql := res.Build()
//
// # Grammar Overview
//
// The parser is a statement dispatcher over a set of component grammars:
//
//	script     → statement (delimiter statement)* [delimiter]
//	statement  → alter | insert | replace | update | delete | select | set
//	           | show | drop | create_table | create_database | other
//	other      → token* -- kept verbatim
//
// See each file for the grammar rules of that component.
package parser

import (
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/dialect"
	"github.com/BackEndTea/sql-parser/pkg/token"
)

// Parser turns a token stream into statements.
type Parser struct {
	stream  *TokenStream
	dialect *dialect.Dialect
	cfg     config

	lexErrors []*Error
	errors    []*Error
	seen      map[errorKey]struct{}
	halted    bool
}

type errorKey struct {
	code   Code
	offset int
}

// NewParser lexes sql and returns a parser over the resulting stream.
func NewParser(sql string, d *dialect.Dialect, opts ...Option) (*Parser, error) {
	l, err := NewLexer(sql, d, opts...)
	if err != nil {
		return nil, err
	}
	stream := l.Tokenize()
	return &Parser{
		stream:    stream,
		dialect:   d,
		cfg:       l.cfg,
		lexErrors: l.Errors,
		seen:      make(map[errorKey]struct{}),
	}, nil
}

// NewStreamParser returns a parser over an existing token stream.
func NewStreamParser(stream *TokenStream, d *dialect.Dialect, opts ...Option) (*Parser, error) {
	if err := dialect.Validate(d); err != nil {
		return nil, err
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Parser{
		stream:  stream,
		dialect: d,
		cfg:     cfg,
		seen:    make(map[errorKey]struct{}),
	}, nil
}

// Parse lexes and parses sql in one call.
func Parse(sql string, d *dialect.Dialect, opts ...Option) (*Result, error) {
	p, err := NewParser(sql, d, opts...)
	if err != nil {
		return nil, err
	}
	return p.Parse(), nil
}

// Dialect returns the parser's keyword context.
func (p *Parser) Dialect() *dialect.Dialect {
	return p.dialect
}

// Stream returns the token stream the parser consumes.
func (p *Parser) Stream() *TokenStream {
	return p.stream
}

// Errors returns lexer errors followed by parser errors.
func (p *Parser) Errors() []*Error {
	out := make([]*Error, 0, len(p.lexErrors)+len(p.errors))
	out = append(out, p.lexErrors...)
	return append(out, p.errors...)
}

// error records a parse error at tok. Repeated reports of the same code at
// the same offset are dropped.
func (p *Parser) error(code Code, msg string, tok token.Token) {
	p.report(ErrorKindParse, code, msg, tok)
}

func (p *Parser) report(kind ErrorKind, code Code, msg string, tok token.Token) {
	key := errorKey{code: code, offset: tok.Pos.Offset}
	if _, dup := p.seen[key]; dup {
		return
	}
	p.seen[key] = struct{}{}
	p.errors = append(p.errors, &Error{
		Kind:    kind,
		Code:    code,
		Message: msg,
		Text:    tok.Raw,
		Pos:     tok.Pos,
	})
	if p.cfg.strict {
		p.halted = true
	}
}

// Parse parses every statement of the stream.
func (p *Parser) Parse() *Result {
	s := p.stream
	res := &Result{Tokens: s, delimiter: p.cfg.delimiter}
	active := p.cfg.delimiter

	if p.cfg.strict && len(p.lexErrors) > 0 {
		p.halted = true
	}

	for !p.halted {
		tok := s.Skip()
		if tok.Kind == token.EOF {
			break
		}

		if tok.Has(token.FlagDelimiterDef) {
			s.Advance()
			if tok.Kind == token.Delimiter {
				active = tok.Value
			}
			continue
		}

		if tok.Kind == token.Delimiter {
			s.Advance()
			if n := len(res.entries); n > 0 && res.entries[n-1].delimiter == "" {
				res.entries[n-1].delimiter = tok.Value
			}
			continue
		}

		start := s.Idx
		stmt := p.parseStatement()
		if s.Idx == start {
			s.Advance()
		}
		res.Statements = append(res.Statements, stmt)
		res.entries = append(res.entries, entry{active: active})

		if next := s.Skip(); next.Kind != token.Delimiter && next.Kind != token.EOF {
			p.error(CodeMissingDelimiter, ErrMissingDelimiter, next)
		}
	}

	res.Errors = p.Errors()
	return res
}

type statementParser func(p *Parser) Statement

// statementParsers maps leading keywords to statement grammars.
var statementParsers = map[string]statementParser{
	"ALTER":   parseAlter,
	"INSERT":  parseInsert,
	"REPLACE": parseInsert,
	"UPDATE":  parseUpdate,
	"DELETE":  parseDelete,
	"SELECT":  parseSelect,
	"SET":     parseSet,
	"SHOW":    parseShow,
	"DROP":    parseDrop,
}

// compoundParsers are keyed by the first two keywords and tried first.
var compoundParsers = map[string]statementParser{
	"CREATE TABLE":     parseCreateTable,
	"CREATE TEMPORARY": parseCreateTable,
	"CREATE DATABASE":  parseCreateDatabase,
	"CREATE SCHEMA":    parseCreateDatabase,
}

// statementStarts holds keywords that begin a statement. DESC and WITH are
// left out since both also appear inside statements.
var statementStarts = map[string]bool{
	"ALTER": true, "ANALYZE": true, "BACKUP": true, "BEGIN": true, "CALL": true,
	"CHECK": true, "CHECKSUM": true, "COMMIT": true, "CREATE": true,
	"DEALLOCATE": true, "DELETE": true, "DESCRIBE": true, "DO": true,
	"DROP": true, "EXECUTE": true, "EXPLAIN": true, "FLUSH": true,
	"GRANT": true, "HANDLER": true, "HELP": true, "INSERT": true,
	"INSTALL": true, "KILL": true, "LOAD": true, "LOCK": true,
	"OPTIMIZE": true, "PREPARE": true, "PURGE": true, "RENAME": true,
	"REPAIR": true, "REPLACE": true, "RESET": true, "RESTORE": true,
	"REVOKE": true, "ROLLBACK": true, "SAVEPOINT": true, "SELECT": true,
	"SET": true, "SHOW": true, "SHUTDOWN": true, "START": true,
	"TRUNCATE": true, "UNINSTALL": true, "UNLOCK": true, "UPDATE": true,
	"USE": true, "XA": true,
}

// IsStatementStart reports whether tok is a keyword that begins a statement.
// Quoted identifiers never qualify, whatever their text.
func IsStatementStart(tok token.Token) bool {
	return tok.Kind == token.Keyword && statementStarts[tok.Value]
}

func (p *Parser) parseStatement() Statement {
	s := p.stream
	first := s.Skip()

	if first.IsOperator("(") && s.PeekAt(1).IsKeyword("SELECT") {
		return parseSelect(p)
	}
	if first.Kind == token.Keyword {
		if second := s.PeekAt(1); second.Kind == token.Keyword {
			if fn, ok := compoundParsers[first.Value+" "+second.Value]; ok {
				return fn(p)
			}
		}
		if fn, ok := statementParsers[first.Value]; ok {
			return fn(p)
		}
		return parseNotImplemented(p)
	}

	p.report(ErrorKindStructural, CodeUnexpectedStatement, ErrUnexpectedStatement, first)
	return parseNotImplemented(p)
}

// Result is the outcome of one parse pass.
type Result struct {
	Statements []Statement
	Errors     []*Error
	Tokens     *TokenStream

	delimiter string
	entries   []entry
}

// entry records the delimiters around one statement.
type entry struct {
	active    string // delimiter in effect when the statement started
	delimiter string // delimiter that ended it, empty if none
}

// HasErrors reports whether the pass recorded any error.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Build rebuilds the whole script. Statements are separated by their
// delimiter and DELIMITER commands are emitted where the delimiter changed.
func (r *Result) Build() string {
	var sb strings.Builder
	current := r.delimiter
	for i, stmt := range r.Statements {
		e := r.entries[i]
		switch {
		case e.active != current:
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString("DELIMITER " + e.active + "\n")
			current = e.active
		case i > 0:
			sb.WriteString(" ")
		}
		sb.WriteString(stmt.Build())

		delim := e.delimiter
		if delim == "" && i < len(r.Statements)-1 {
			delim = e.active
		}
		if delim != "" && delim != ";" {
			// keep custom delimiters such as $$ from gluing onto a word
			sb.WriteString(" ")
		}
		sb.WriteString(delim)
	}
	return sb.String()
}
