package parser

import (
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/token"
)

// TokenStream is a pre-materialized token list with a cursor. Components
// start with Idx on the first token they may consume and return with Idx on
// the first token they did not consume.
type TokenStream struct {
	Tokens []token.Token
	Idx    int
}

// NewTokenStream wraps tokens, appending an EOF token if missing.
func NewTokenStream(tokens []token.Token) *TokenStream {
	if n := len(tokens); n == 0 || tokens[n-1].Kind != token.EOF {
		var pos token.Position
		if n > 0 {
			pos = tokens[n-1].Pos
		}
		tokens = append(tokens, token.Token{Kind: token.EOF, Pos: pos})
	}
	return &TokenStream{Tokens: tokens}
}

// Len returns the number of tokens, EOF included.
func (s *TokenStream) Len() int {
	return len(s.Tokens)
}

// Current returns the token under the cursor, trivia included.
func (s *TokenStream) Current() token.Token {
	if s.Idx >= len(s.Tokens) {
		return s.Tokens[len(s.Tokens)-1]
	}
	return s.Tokens[s.Idx]
}

// Advance returns the current token and moves past it. The cursor never
// moves beyond EOF.
func (s *TokenStream) Advance() token.Token {
	tok := s.Current()
	if s.Idx < len(s.Tokens)-1 {
		s.Idx++
	}
	return tok
}

// Skip moves the cursor past whitespace and comments and returns the
// significant token it stops on.
func (s *TokenStream) Skip() token.Token {
	for s.Idx < len(s.Tokens)-1 && s.Tokens[s.Idx].IsTrivia() {
		s.Idx++
	}
	return s.Current()
}

// Next consumes and returns the next significant token.
func (s *TokenStream) Next() token.Token {
	s.Skip()
	return s.Advance()
}

// Peek returns the next significant token without moving the cursor.
func (s *TokenStream) Peek() token.Token {
	return s.PeekAt(0)
}

// PeekAt returns the n-th (0-based) significant token ahead of the cursor.
func (s *TokenStream) PeekAt(n int) token.Token {
	for i := s.Idx; i < len(s.Tokens); i++ {
		if s.Tokens[i].IsTrivia() {
			continue
		}
		if n == 0 {
			return s.Tokens[i]
		}
		n--
	}
	return s.Tokens[len(s.Tokens)-1]
}

// Prev returns the last significant token before the cursor.
func (s *TokenStream) Prev() (token.Token, bool) {
	for i := min(s.Idx, len(s.Tokens)) - 1; i >= 0; i-- {
		if !s.Tokens[i].IsTrivia() {
			return s.Tokens[i], true
		}
	}
	return token.Token{}, false
}

// Mark returns the cursor for a later Reset.
func (s *TokenStream) Mark() int {
	return s.Idx
}

// Reset moves the cursor back to a position returned by Mark.
func (s *TokenStream) Reset(mark int) {
	s.Idx = mark
}

// AtEnd reports whether only trivia remains before EOF.
func (s *TokenStream) AtEnd() bool {
	return s.Peek().Kind == token.EOF
}

// NextOfKindAndValue consumes the next significant token if it has the
// given kind and (case-insensitive) value.
func (s *TokenStream) NextOfKindAndValue(kind token.Kind, value string) (token.Token, bool) {
	tok := s.Peek()
	if tok.Kind != kind || !strings.EqualFold(tok.Value, value) {
		return tok, false
	}
	s.Next()
	return tok, true
}

// Build concatenates the raw text of tokens in [from, to).
func (s *TokenStream) Build(from, to int) string {
	from, to = max(from, 0), min(to, len(s.Tokens))
	if from >= to {
		return ""
	}
	return BuildTokens(s.Tokens[from:to])
}

// Raw returns the full source text.
func (s *TokenStream) Raw() string {
	return BuildTokens(s.Tokens)
}

// BuildTokens concatenates the raw text of tokens.
func BuildTokens(tokens []token.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Raw)
	}
	return sb.String()
}
