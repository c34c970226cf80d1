package parser

import (
	"slices"
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/token"
)

// Pattern describes tokens to look for. Zero fields match anything.
type Pattern struct {
	Kinds []token.Kind
	Flags token.Flag // all of these must be set
	Value string     // normalized value, compared exactly
	Text  string     // raw text, compared case-insensitively
}

// MatchToken reports whether tok matches pattern.
func MatchToken(tok token.Token, pattern Pattern) bool {
	if len(pattern.Kinds) > 0 && !slices.Contains(pattern.Kinds, tok.Kind) {
		return false
	}
	if pattern.Flags != 0 && !tok.Has(pattern.Flags) {
		return false
	}
	if pattern.Value != "" && tok.Value != pattern.Value {
		return false
	}
	if pattern.Text != "" && !strings.EqualFold(tok.Raw, pattern.Text) {
		return false
	}
	return true
}

// ReplaceTokens returns a copy of tokens where every run of significant
// tokens matching find, in order, is replaced by replace. Trivia between
// matched tokens is dropped with them; trivia elsewhere is kept.
func ReplaceTokens(tokens []token.Token, find []Pattern, replace []token.Token) []token.Token {
	if len(find) == 0 {
		return slices.Clone(tokens)
	}
	out := make([]token.Token, 0, len(tokens))
	var pending []token.Token
	matched := 0

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.IsTrivia() {
			if matched > 0 {
				pending = append(pending, tok)
			} else {
				out = append(out, tok)
			}
			continue
		}
		if MatchToken(tok, find[matched]) {
			pending = append(pending, tok)
			matched++
			if matched == len(find) {
				out = append(out, replace...)
				pending, matched = pending[:0], 0
			}
			continue
		}
		if matched > 0 {
			// restart right after the first token of the failed run
			out = append(out, pending[0])
			i -= len(pending)
			pending, matched = pending[:0], 0
			continue
		}
		out = append(out, tok)
	}
	return append(out, pending...)
}

// ReplaceInStream applies ReplaceTokens to a stream and returns a new one.
func ReplaceInStream(s *TokenStream, find []Pattern, replace []token.Token) *TokenStream {
	return NewTokenStream(ReplaceTokens(s.Tokens, find, replace))
}
