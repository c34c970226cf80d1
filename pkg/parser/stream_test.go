package parser_test

import (
	"testing"

	"github.com/BackEndTea/sql-parser/pkg/parser"
	"github.com/BackEndTea/sql-parser/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStreamNavigation(t *testing.T) {
	stream, _ := tokenize(t, "SELECT /* c */ a ,b")

	assert.Equal(t, "SELECT", stream.Peek().Value)
	assert.Equal(t, "a", stream.PeekAt(1).Raw)
	assert.Equal(t, ",", stream.PeekAt(2).Raw)
	assert.Equal(t, token.EOF, stream.PeekAt(10).Kind)

	_, ok := stream.Prev()
	assert.False(t, ok)

	assert.Equal(t, "SELECT", stream.Next().Value)
	mark := stream.Mark()
	assert.Equal(t, "a", stream.Next().Raw)

	prev, ok := stream.Prev()
	require.True(t, ok)
	assert.Equal(t, "a", prev.Raw)

	stream.Reset(mark)
	assert.Equal(t, token.Whitespace, stream.Current().Kind)
	assert.Equal(t, "a", stream.Peek().Raw, "Peek skips comments")

	_, ok = stream.NextOfKindAndValue(token.Operator, ",")
	assert.False(t, ok)
	stream.Next()
	_, ok = stream.NextOfKindAndValue(token.Operator, ",")
	assert.True(t, ok)
	assert.Equal(t, "b", stream.Next().Raw)
	assert.True(t, stream.AtEnd())

	// the cursor stops on EOF
	stream.Advance()
	stream.Advance()
	assert.Equal(t, token.EOF, stream.Current().Kind)
}

func TestTokenStreamBuild(t *testing.T) {
	stream, _ := tokenize(t, "SELECT a FROM t")
	assert.Equal(t, "SELECT a", stream.Build(0, 3))
	assert.Equal(t, "", stream.Build(3, 1))
	assert.Equal(t, "SELECT a FROM t", stream.Build(-5, 100))
}

func TestNewTokenStreamAddsEOF(t *testing.T) {
	stream := parser.NewTokenStream([]token.Token{ident("a")})
	require.Equal(t, 2, stream.Len())
	assert.Equal(t, token.EOF, stream.Tokens[1].Kind)

	empty := parser.NewTokenStream(nil)
	assert.True(t, empty.AtEnd())
}
