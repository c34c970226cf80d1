package parser

import (
	"fmt"
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/token"
)

// Bracketed lists.
//
// Grammar:
//
//	array   → "(" [item ("," item)*] ")"
//	item    → token+                      -- split at depth-0 commas
//	array2d → array ("," array)*
//
// Every list of an array2d must have as many items as the first one.

// ArrayObj is a bracketed, comma separated list of values.
type ArrayObj struct {
	Raw    []string // items as written
	Values []string // unquoted value of single-token items, raw text otherwise
}

// Build returns "(a, b, c)".
func (a *ArrayObj) Build() string {
	if a == nil {
		return ""
	}
	return "(" + strings.Join(a.Raw, ", ") + ")"
}

// Len returns the number of items.
func (a *ArrayObj) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Raw)
}

// ParseArray parses one bracketed list. The cursor must be on "(" or a
// missing bracket is reported and nil returned.
func ParseArray(p *Parser) *ArrayObj {
	s := p.stream
	open := s.Peek()
	if !open.IsOperator("(") {
		p.error(CodeMissingToken, ErrOpeningBracket, open)
		return nil
	}
	s.Next()

	ret := &ArrayObj{}
	var item []token.Token
	flush := func() {
		raw, value := arrayItem(item)
		if raw != "" || len(ret.Raw) > 0 {
			ret.Raw = append(ret.Raw, raw)
			ret.Values = append(ret.Values, value)
		}
		item = item[:0]
	}

	depth := 0
	for {
		tok := s.Current()
		if tok.Kind == token.EOF || tok.Kind == token.Delimiter {
			p.error(CodeMissingToken, ErrClosingBracket, open)
			flush()
			return ret
		}
		s.Advance()
		switch {
		case tok.IsOperator("("):
			depth++
		case tok.IsOperator(")"):
			if depth == 0 {
				flush()
				return ret
			}
			depth--
		case tok.IsOperator(",") && depth == 0:
			flush()
			continue
		}
		item = append(item, tok)
	}
}

// arrayItem returns the trimmed text of an item and its value.
func arrayItem(tokens []token.Token) (raw, value string) {
	var significant []token.Token
	for _, t := range tokens {
		if !t.IsTrivia() {
			significant = append(significant, t)
		}
	}
	raw = strings.TrimSpace(BuildTokens(tokens))
	if len(significant) == 1 {
		return raw, significant[0].Value
	}
	return raw, raw
}

// ParseArray2d parses comma separated lists, as in VALUES (1, 2), (3, 4).
// A list whose length differs from the first is reported and kept.
func ParseArray2d(p *Parser) []*ArrayObj {
	s := p.stream
	var ret []*ArrayObj
	expectList := true
	want := -1
	for {
		tok := s.Peek()
		if tok.Kind == token.EOF || tok.Kind == token.Delimiter || tok.IsReserved() {
			break
		}
		if expectList {
			if !tok.IsOperator("(") {
				break
			}
			arr := ParseArray(p)
			if want < 0 {
				want = arr.Len()
			} else if arr.Len() != want {
				p.error(CodeArityMismatch, fmt.Sprintf(ErrArity, want, arr.Len()), tok)
			}
			ret = append(ret, arr)
			expectList = false
			continue
		}
		if !tok.IsOperator(",") {
			break
		}
		s.Next()
		expectList = true
	}

	if expectList {
		p.error(CodeMissingToken, ErrValuesExpected, s.Peek())
	}
	return ret
}

// BuildArray2d returns the lists joined with ", ".
func BuildArray2d(lists []*ArrayObj) string {
	parts := make([]string, len(lists))
	for i, a := range lists {
		parts[i] = a.Build()
	}
	return strings.Join(parts, ", ")
}
