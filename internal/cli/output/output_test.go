package output

import (
	"bytes"
	"testing"

	"github.com/BackEndTea/sql-parser/pkg/dialects/mysql"
	"github.com/BackEndTea/sql-parser/pkg/parser"
	"github.com/BackEndTea/sql-parser/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(mode Mode) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRenderer(out, errOut, mode, "never"), out, errOut
}

func TestFormatErrors(t *testing.T) {
	errs := []*parser.Error{
		{Message: "Unexpected token.", Text: ")", Pos: token.Position{Offset: 7}},
		{Message: "Missing expression.", Text: "", Pos: token.Position{Offset: 12}},
	}

	assert.Equal(t, []string{
		`#1: Unexpected token. (near ")" at position 7)`,
		`#2: Missing expression. (near "" at position 12)`,
	}, FormatErrors(errs, ""))

	assert.Equal(t, []string{"7 Unexpected token.", "12 Missing expression."},
		FormatErrors(errs, "%[4]d %[2]s"))

	assert.Empty(t, FormatErrors(nil, ""))
}

func TestFormatErrorsFromParser(t *testing.T) {
	res, err := parser.Parse("SELECT 'abc", mysql.MySQL80)
	require.NoError(t, err)
	require.NotEmpty(t, res.Errors)

	lines := FormatErrors(res.Errors, "")
	assert.Len(t, lines, len(res.Errors))
	assert.Contains(t, lines[0], "#1: ")

	entries := ErrorEntries(res.Errors)
	require.Len(t, entries, len(res.Errors))
	assert.Equal(t, res.Errors[0].Message, entries[0].Message)
	assert.Equal(t, res.Errors[0].Code.String(), entries[0].Code)
}

func TestRendererErrors(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText)
	r.Errors("a.sql", []*parser.Error{{Message: "Bad.", Text: "x", Pos: token.Position{Offset: 3}}}, "")

	assert.Empty(t, out.String())
	assert.Equal(t, "a.sql: #1: Bad. (near \"x\" at position 3)\n", errOut.String())
}

func TestRendererModes(t *testing.T) {
	tests := []struct {
		mode Mode
		want Mode
	}{
		{ModeAuto, ModeText},
		{"", ModeText},
		{ModeText, ModeText},
		{ModeJSON, ModeJSON},
		{ModeYAML, ModeYAML},
	}
	for _, tt := range tests {
		r, _, _ := newTestRenderer(tt.mode)
		assert.Equal(t, tt.want, r.EffectiveMode(), "mode %q", tt.mode)
	}
}

func TestRendererEncode(t *testing.T) {
	v := map[string]int{"statements": 2}

	r, out, _ := newTestRenderer(ModeJSON)
	ok, err := r.Encode(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"statements": 2}`, out.String())

	r, out, _ = newTestRenderer(ModeYAML)
	ok, err = r.Encode(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.YAMLEq(t, "statements: 2\n", out.String())

	r, out, _ = newTestRenderer(ModeText)
	ok, err = r.Encode(v)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, out.String())
}

func TestRendererPlainText(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText)
	assert.False(t, r.IsTTY())

	r.Header(1, "Title")
	r.Success("done")
	r.Muted("quiet")
	r.Warning("careful")

	assert.Equal(t, "Title\n✓ done\nquiet\n", out.String())
	assert.Equal(t, "careful\n", errOut.String())
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "## Dialects", FormatHeader(2, "Dialects"))
	assert.Equal(t, "# X", FormatHeader(0, "X"))
	assert.Equal(t, "  Name:              mysql-8.0", FormatKeyValue("Name", "mysql-8.0"))
}
