package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/token"
)

// Option list parsing.
//
// Grammar:
//
//	options → option*
//	option  → NAME                      -- flag
//	        | NAME ["="] value          -- var, var=
//	        | NAME ["="] expression     -- expr, expr=
//	value   → token | "(" ... ")"
//
// Options are matched in any order and rebuilt in ordinal order.

// OptionKind says whether an option takes a value.
type OptionKind int

// Option kinds.
const (
	OptionFlag   OptionKind = iota
	OptionVar               // one token or a bracketed group
	OptionVarEq             // like OptionVar, always built with "="
	OptionExpr              // an expression
	OptionExprEq            // like OptionExpr, always built with "="
)

// OptionSpec places an option in a table.
type OptionSpec struct {
	Ordinal int
	Kind    OptionKind
}

// OptionTable maps uppercased option names to their spec.
type OptionTable map[string]OptionSpec

// OptFlag returns the spec of an option without a value.
func OptFlag(ordinal int) OptionSpec { return OptionSpec{Ordinal: ordinal, Kind: OptionFlag} }

// OptVar returns the spec of an option followed by one value.
func OptVar(ordinal int) OptionSpec { return OptionSpec{Ordinal: ordinal, Kind: OptionVar} }

// OptVarEq returns the spec of an option written as NAME=value.
func OptVarEq(ordinal int) OptionSpec { return OptionSpec{Ordinal: ordinal, Kind: OptionVarEq} }

// OptExpr returns the spec of an option followed by an expression.
func OptExpr(ordinal int) OptionSpec { return OptionSpec{Ordinal: ordinal, Kind: OptionExpr} }

// OptExprEq returns the spec of an option written as NAME=expression.
func OptExprEq(ordinal int) OptionSpec { return OptionSpec{Ordinal: ordinal, Kind: OptionExprEq} }

// OptionValue is one parsed option.
type OptionValue struct {
	Name   string // uppercased option name
	Kind   OptionKind
	Raw    string // value as written
	Value  string // unquoted value
	Expr   *Expression
	Equals bool // "=" was written
}

// Build returns the option with its value.
func (o *OptionValue) Build() string {
	if o.Kind == OptionFlag {
		return o.Name
	}
	value := o.Raw
	if o.Expr != nil {
		value = o.Expr.Build()
	}
	if o.Equals || o.Kind == OptionVarEq || o.Kind == OptionExprEq {
		return o.Name + "=" + value
	}
	return o.Name + " " + value
}

// OptionsArray holds parsed options keyed by ordinal.
type OptionsArray struct {
	Options map[int]*OptionValue
}

// NewOptionsArray returns an empty option list.
func NewOptionsArray() *OptionsArray {
	return &OptionsArray{Options: make(map[int]*OptionValue)}
}

// Get returns the option with the given name.
func (a *OptionsArray) Get(name string) (*OptionValue, bool) {
	if a == nil {
		return nil, false
	}
	name = strings.ToUpper(name)
	for _, o := range a.Options {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

// Has reports whether the option was given.
func (a *OptionsArray) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Value returns the unquoted value of an option, or "" if absent.
func (a *OptionsArray) Value(name string) string {
	o, ok := a.Get(name)
	if !ok {
		return ""
	}
	return o.Value
}

// IsEmpty reports whether no option was parsed.
func (a *OptionsArray) IsEmpty() bool {
	return a == nil || len(a.Options) == 0
}

// Len returns the number of options.
func (a *OptionsArray) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Options)
}

// Names returns option names in ordinal order.
func (a *OptionsArray) Names() []string {
	var names []string
	for _, o := range a.ordered() {
		names = append(names, o.Name)
	}
	return names
}

func (a *OptionsArray) ordered() []*OptionValue {
	if a == nil {
		return nil
	}
	ordinals := make([]int, 0, len(a.Options))
	for n := range a.Options {
		ordinals = append(ordinals, n)
	}
	sort.Ints(ordinals)
	out := make([]*OptionValue, 0, len(ordinals))
	for _, n := range ordinals {
		out = append(out, a.Options[n])
	}
	return out
}

// Build returns the options in ordinal order.
func (a *OptionsArray) Build() string {
	var parts []string
	for _, o := range a.ordered() {
		parts = append(parts, o.Build())
	}
	return strings.Join(parts, " ")
}

// optionName returns the table key tok would match: keyword value or the
// uppercased text of a bare identifier.
func optionName(tok token.Token) string {
	switch tok.Kind {
	case token.Keyword:
		return tok.Value
	case token.Identifier:
		return strings.ToUpper(tok.Value)
	}
	return ""
}

// ParseOptions reads options from table until a token that is not one of
// them. A second option on an occupied ordinal is reported and dropped.
func ParseOptions(p *Parser, table OptionTable) *OptionsArray {
	s := p.stream
	ret := NewOptionsArray()
	for {
		tok := s.Peek()
		name := optionName(tok)
		spec, ok := table[name]
		if !ok {
			return ret
		}
		s.Next()

		opt := &OptionValue{Name: name, Kind: spec.Kind}
		if spec.Kind != OptionFlag && !parseOptionValue(p, opt, tok) {
			return ret
		}

		if existing, taken := ret.Options[spec.Ordinal]; taken {
			p.error(CodeDuplicate, fmt.Sprintf(ErrOptionConflict, existing.Name), tok)
			continue
		}
		ret.Options[spec.Ordinal] = opt
	}
}

func parseOptionValue(p *Parser, opt *OptionValue, name token.Token) bool {
	s := p.stream
	if _, eq := s.NextOfKindAndValue(token.Operator, "="); eq {
		opt.Equals = true
	}

	next := s.Peek()
	if next.Kind == token.EOF || next.Kind == token.Delimiter {
		p.error(CodeMissingToken, fmt.Sprintf(ErrValueExpected, opt.Name), name)
		return false
	}

	switch opt.Kind {
	case OptionExpr, OptionExprEq:
		expr := ParseExpression(p, ExprOptions{BreakOnAlias: true})
		if expr == nil {
			p.error(CodeMissingToken, fmt.Sprintf(ErrValueExpected, opt.Name), name)
			return false
		}
		opt.Expr = expr
		opt.Raw = expr.Build()
		opt.Value = opt.Raw
	default:
		if next.IsOperator("(") {
			opt.Raw = parseParenGroup(p)
			opt.Value = opt.Raw
			return true
		}
		s.Next()
		opt.Raw = next.Raw
		opt.Value = next.Value
	}
	return true
}

// parseParenGroup consumes a balanced "(...)" group and returns its text.
// The cursor must be on "(".
func parseParenGroup(p *Parser) string {
	s := p.stream
	open := s.Next()
	start := s.Idx - 1
	depth := 1
	for depth > 0 {
		tok := s.Current()
		if tok.Kind == token.EOF || tok.Kind == token.Delimiter {
			p.error(CodeMissingToken, ErrClosingBracket, open)
			break
		}
		switch {
		case tok.IsOperator("("):
			depth++
		case tok.IsOperator(")"):
			depth--
		}
		s.Advance()
	}
	return strings.TrimSpace(s.Build(start, s.Idx))
}
