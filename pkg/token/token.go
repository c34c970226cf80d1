// Package token defines the lexical tokens produced by the SQL lexer.
//
// A token keeps the exact source text it was read from (Raw) next to a
// normalized payload (Value), so that concatenating the Raw text of a whole
// token stream reproduces the input byte for byte.
package token

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the broad lexical category of a token.
type Kind int

// Token kinds.
const (
	EOF Kind = iota
	Invalid
	Whitespace
	Comment
	Keyword
	Identifier
	QuotedIdentifier
	String
	Number
	Operator
	Delimiter
	Variable
	Parameter
)

var kindNames = map[Kind]string{
	EOF:              "EOF",
	Invalid:          "INVALID",
	Whitespace:       "WHITESPACE",
	Comment:          "COMMENT",
	Keyword:          "KEYWORD",
	Identifier:       "IDENT",
	QuotedIdentifier: "QUOTED_IDENT",
	String:           "STRING",
	Number:           "NUMBER",
	Operator:         "OPERATOR",
	Delimiter:        "DELIMITER",
	Variable:         "VARIABLE",
	Parameter:        "PARAMETER",
}

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND(%d)", int(k))
}

// Flag refines a token kind. The low six bits carry the keyword
// classification read from dialect word lists and keep the numeric values
// used by those lists.
type Flag uint32

// Keyword classification flags.
const (
	FlagKeyword  Flag = 1 << iota // any keyword
	FlagReserved                  // (R) reserved word
	FlagComposed                  // multi-word keyword such as "CHARACTER SET"
	FlagDataType                  // (D) data type name
	FlagKey                       // (K) key/index related keyword
	FlagFunction                  // (F) function name
)

// Literal and symbol flags.
const (
	FlagBacktick Flag = 1 << (iota + 8)
	FlagDoubleQuote
	FlagSingleQuote
	FlagHex
	FlagBinary
	FlagDecimal
	FlagApproximate
	FlagSessionVar
	FlagGlobalVar
	FlagNamedParam
	FlagUnterminated
	FlagConditional // /*! ... */ comment
	FlagDelimiterDef
)

// KeywordMask selects the keyword classification bits of a Flag.
const KeywordMask = FlagKeyword | FlagReserved | FlagComposed | FlagDataType | FlagKey | FlagFunction

var flagNames = []struct {
	f    Flag
	name string
}{
	{FlagKeyword, "keyword"},
	{FlagReserved, "reserved"},
	{FlagComposed, "composed"},
	{FlagDataType, "datatype"},
	{FlagKey, "key"},
	{FlagFunction, "function"},
	{FlagBacktick, "backtick"},
	{FlagDoubleQuote, "double-quote"},
	{FlagSingleQuote, "single-quote"},
	{FlagHex, "hex"},
	{FlagBinary, "binary"},
	{FlagDecimal, "decimal"},
	{FlagApproximate, "approximate"},
	{FlagSessionVar, "session"},
	{FlagGlobalVar, "global"},
	{FlagNamedParam, "named"},
	{FlagUnterminated, "unterminated"},
	{FlagConditional, "conditional"},
	{FlagDelimiterDef, "delimiter-def"},
}

// Has reports whether all bits of other are set.
func (f Flag) Has(other Flag) bool {
	return f&other == other
}

// String lists the set flags separated by "|".
func (f Flag) String() string {
	if f == 0 {
		return ""
	}
	var parts []string
	for _, fn := range flagNames {
		if f&fn.f != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// Token is a single lexical unit.
type Token struct {
	Kind  Kind
	Raw   string // exact source text
	Value string // normalized payload
	Flags Flag
	Pos   Position
}

// Is reports whether the token has the given kind.
func (t Token) Is(k Kind) bool {
	return t.Kind == k
}

// Has reports whether the token carries the given flags.
func (t Token) Has(f Flag) bool {
	return t.Flags.Has(f)
}

// IsKeyword reports whether the token is a keyword. When values are given
// the normalized keyword text must equal one of them.
func (t Token) IsKeyword(values ...string) bool {
	if t.Kind != Keyword {
		return false
	}
	if len(values) == 0 {
		return true
	}
	for _, v := range values {
		if t.Value == v {
			return true
		}
	}
	return false
}

// IsReserved reports whether the token is a reserved keyword.
func (t Token) IsReserved() bool {
	return t.Kind == Keyword && t.Flags&FlagReserved != 0
}

// IsOperator reports whether the token is the given operator.
func (t Token) IsOperator(op string) bool {
	return t.Kind == Operator && t.Value == op
}

// IsTrivia reports whether the token is whitespace or a comment.
func (t Token) IsTrivia() bool {
	return t.Kind == Whitespace || t.Kind == Comment
}

// IsWord reports whether the token can name something: a keyword,
// a bare identifier or a quoted identifier.
func (t Token) IsWord() bool {
	return t.Kind == Keyword || t.Kind == Identifier || t.Kind == QuotedIdentifier
}

// Int64 returns the numeric value of an integer token.
func (t Token) Int64() (int64, error) {
	if t.Kind != Number {
		return 0, fmt.Errorf("token %s is not a number", t.Kind)
	}
	return strconv.ParseInt(t.Value, 10, 64)
}

// Float64 returns the numeric value of a number token.
func (t Token) Float64() (float64, error) {
	if t.Kind != Number {
		return 0, fmt.Errorf("token %s is not a number", t.Kind)
	}
	return strconv.ParseFloat(t.Value, 64)
}

// String returns a debug representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %s", t.Kind, t.Raw, t.Pos)
}
