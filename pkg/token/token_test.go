package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordFlagValues(t *testing.T) {
	// Word lists encode these numbers directly.
	assert.Equal(t, Flag(1), FlagKeyword)
	assert.Equal(t, Flag(2), FlagReserved)
	assert.Equal(t, Flag(4), FlagComposed)
	assert.Equal(t, Flag(8), FlagDataType)
	assert.Equal(t, Flag(16), FlagKey)
	assert.Equal(t, Flag(32), FlagFunction)
	assert.Zero(t, FlagBacktick&KeywordMask)
}

func TestTokenQueries(t *testing.T) {
	kw := Token{Kind: Keyword, Raw: "select", Value: "SELECT", Flags: FlagKeyword | FlagReserved}
	assert.True(t, kw.IsKeyword())
	assert.True(t, kw.IsKeyword("FROM", "SELECT"))
	assert.False(t, kw.IsKeyword("FROM"))
	assert.True(t, kw.IsReserved())
	assert.True(t, kw.IsWord())

	quoted := Token{Kind: QuotedIdentifier, Raw: "`select`", Value: "select", Flags: FlagBacktick}
	assert.False(t, quoted.IsKeyword("SELECT"))
	assert.False(t, quoted.IsReserved())
	assert.True(t, quoted.Has(FlagBacktick))

	ws := Token{Kind: Whitespace, Raw: " \n"}
	assert.True(t, ws.IsTrivia())

	op := Token{Kind: Operator, Raw: "(", Value: "("}
	assert.True(t, op.IsOperator("("))
	assert.False(t, op.IsOperator(")"))
}

func TestTokenNumbers(t *testing.T) {
	tests := []struct {
		name    string
		tok     Token
		wantInt int64
		wantErr bool
	}{
		{name: "decimal", tok: Token{Kind: Number, Raw: "42", Value: "42"}, wantInt: 42},
		{name: "hex normalized", tok: Token{Kind: Number, Raw: "0x1F", Value: "31", Flags: FlagHex}, wantInt: 31},
		{name: "not a number", tok: Token{Kind: String, Raw: "'1'", Value: "1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.tok.Int64()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantInt, got)
		})
	}

	f, err := Token{Kind: Number, Raw: "1.5e2", Value: "1.5e2"}.Float64()
	require.NoError(t, err)
	assert.InDelta(t, 150.0, f, 0.0001)
}

func TestFlagString(t *testing.T) {
	assert.Equal(t, "", Flag(0).String())
	assert.Equal(t, "keyword|reserved|composed", (FlagKeyword | FlagReserved | FlagComposed).String())
	assert.Equal(t, "KEYWORD", Keyword.String())
	assert.Equal(t, "KIND(99)", Kind(99).String())
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "3:7", Position{Line: 3, Column: 7, Offset: 20, Byte: 22}.String())
}
