package parser_test

import (
	"testing"

	"github.com/BackEndTea/sql-parser/pkg/dialects/mysql"
	"github.com/BackEndTea/sql-parser/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParser(t *testing.T, sql string) *parser.Parser {
	t.Helper()
	p, err := parser.NewParser(sql, mysql.MySQL80)
	require.NoError(t, err)
	return p
}

func codes(errs []*parser.Error) []parser.Code {
	out := make([]parser.Code, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

// ---------- OptionsArray ----------

func TestParseOptions(t *testing.T) {
	table := parser.OptionTable{
		"ENGINE":    parser.OptVarEq(1),
		"COMMENT":   parser.OptVar(2),
		"TEMPORARY": parser.OptFlag(3),
		"DEFAULT":   parser.OptExpr(4),
	}
	p := newParser(t, "COMMENT 'x' ENGINE InnoDB temporary DEFAULT 1 + 2 rest")
	opts := parser.ParseOptions(p, table)

	require.Empty(t, p.Errors())
	assert.Equal(t, 4, opts.Len())
	assert.Equal(t, "x", opts.Value("comment"))
	assert.Equal(t, "InnoDB", opts.Value("ENGINE"))
	assert.True(t, opts.Has("TEMPORARY"))
	assert.Equal(t, []string{"ENGINE", "COMMENT", "TEMPORARY", "DEFAULT"}, opts.Names())
	assert.Equal(t, "ENGINE=InnoDB COMMENT 'x' TEMPORARY DEFAULT 1 + 2", opts.Build())
	assert.Equal(t, "rest", p.Stream().Peek().Raw, "unknown tokens end the scan")
}

func TestParseOptionsKeepsEquals(t *testing.T) {
	p := newParser(t, "COMMENT = 'x'")
	opts := parser.ParseOptions(p, parser.OptionTable{"COMMENT": parser.OptVar(1)})
	assert.Equal(t, "COMMENT='x'", opts.Build())
}

func TestParseOptionsConflict(t *testing.T) {
	p := newParser(t, "CHARSET latin1 CHARACTER SET utf8")
	opts := parser.ParseOptions(p, parser.DataTypeOptions)

	errs := p.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, parser.CodeDuplicate, errs[0].Code)
	assert.Equal(t, `This option conflicts with "CHARSET".`, errs[0].Message)
	assert.Equal(t, "latin1", opts.Value("CHARSET"))
	assert.False(t, opts.Has("CHARACTER SET"))
	assert.True(t, p.Stream().AtEnd())
}

func TestParseOptionsMissingValue(t *testing.T) {
	p := newParser(t, "COMMENT")
	opts := parser.ParseOptions(p, parser.OptionTable{"COMMENT": parser.OptVar(1)})

	errs := p.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "Value/Expression for the option COMMENT was expected.", errs[0].Message)
	assert.True(t, opts.IsEmpty())
}

func TestOptionsArrayNilSafe(t *testing.T) {
	var opts *parser.OptionsArray
	assert.True(t, opts.IsEmpty())
	assert.False(t, opts.Has("X"))
	assert.Equal(t, "", opts.Build())
	assert.Zero(t, opts.Len())
}

// ---------- DataType ----------

func TestParseDataType(t *testing.T) {
	tests := []struct {
		name      string
		sql       string
		lowercase bool
		params    []string
		want      string
		errCodes  []parser.Code
	}{
		{name: "int with options", sql: "INT(10) UNSIGNED ZEROFILL", params: []string{"10"}, want: "INT(10) UNSIGNED ZEROFILL"},
		{name: "decimal", sql: "DECIMAL(10, 2)", params: []string{"10", "2"}, want: "DECIMAL(10,2)"},
		{name: "enum keeps literals", sql: "ENUM('a', 'b')", params: []string{"'a'", "'b'"}, want: "ENUM('a','b')"},
		{
			name:      "charset and collation",
			sql:       "VARCHAR(255) COLLATE utf8mb4_bin CHARACTER SET utf8mb4",
			lowercase: true,
			params:    []string{"255"},
			want:      "varchar(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin",
		},
		{name: "case preserved", sql: "text", want: "text"},
		{name: "unknown type", sql: "foo(3)", params: []string{"3"}, want: "foo(3)", errCodes: []parser.Code{parser.CodeUnrecognized}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, tt.sql)
			dt := parser.ParseDataType(p)
			require.NotNil(t, dt)
			dt.Lowercase = tt.lowercase

			assert.Equal(t, tt.params, dt.Parameters)
			assert.Equal(t, tt.want, dt.Build())
			if tt.errCodes == nil {
				assert.Empty(t, p.Errors())
			} else {
				assert.Equal(t, tt.errCodes, codes(p.Errors()))
			}
		})
	}
}

// ---------- ArrayObj / Array2d ----------

func TestParseArray(t *testing.T) {
	p := newParser(t, "(1, 'a', b + 1) rest")
	arr := parser.ParseArray(p)

	require.NotNil(t, arr)
	assert.Empty(t, p.Errors())
	assert.Equal(t, []string{"1", "'a'", "b + 1"}, arr.Raw)
	assert.Equal(t, []string{"1", "a", "b + 1"}, arr.Values)
	assert.Equal(t, "(1, 'a', b + 1)", arr.Build())
	assert.Equal(t, "rest", p.Stream().Peek().Raw)
}

func TestParseArrayNested(t *testing.T) {
	p := newParser(t, "(f(1, 2), 3)")
	arr := parser.ParseArray(p)
	require.NotNil(t, arr)
	assert.Equal(t, []string{"f(1, 2)", "3"}, arr.Raw)
}

func TestParseArrayErrors(t *testing.T) {
	p := newParser(t, "(1, 2")
	arr := parser.ParseArray(p)
	require.NotNil(t, arr)
	assert.Equal(t, []string{"1", "2"}, arr.Raw)
	assert.Equal(t, []string{parser.ErrClosingBracket}, messages(p.Errors()))

	p = newParser(t, "1, 2")
	assert.Nil(t, parser.ParseArray(p))
	assert.Equal(t, []string{parser.ErrOpeningBracket}, messages(p.Errors()))
}

func messages(errs []*parser.Error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}

func TestParseArray2dArity(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		lists    int
		messages []string
		offsets  []int
	}{
		{name: "consistent", sql: "(1,2),(3,4)", lists: 2},
		{name: "one longer", sql: "(1,2),(3,4,5)", lists: 2, messages: []string{"2 values were expected, but found 3."}, offsets: []int{6}},
		{name: "only the offending list", sql: "(1),(2),(3,4),(5)", lists: 4, messages: []string{"1 values were expected, but found 2."}, offsets: []int{8}},
		{name: "dangling comma", sql: "(1,2),", lists: 1, messages: []string{parser.ErrValuesExpected}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, tt.sql)
			lists := parser.ParseArray2d(p)
			assert.Len(t, lists, tt.lists)

			errs := p.Errors()
			if tt.messages == nil {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.messages, messages(errs))
			for i, off := range tt.offsets {
				assert.Equal(t, parser.CodeArityMismatch, errs[i].Code)
				assert.Equal(t, off, errs[i].Pos.Offset)
				assert.Equal(t, "(", errs[i].Text)
			}
		})
	}
}

// ---------- Limit ----------

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name      string
		sql       string
		rows      int64
		offset    int64
		hasOffset bool
		build     string
		errCodes  []parser.Code
	}{
		{name: "row count", sql: "10", rows: 10, build: "10"},
		{name: "comma form", sql: "5, 10", rows: 10, offset: 5, hasOffset: true, build: "5, 10"},
		{name: "offset form", sql: "10 OFFSET 5", rows: 10, offset: 5, hasOffset: true, build: "10 OFFSET 5"},
		{
			name: "duplicate offset keeps the first", sql: "5 OFFSET 1 OFFSET 2",
			rows: 5, offset: 1, hasOffset: true, build: "5 OFFSET 1",
			errCodes: []parser.Code{parser.CodeDuplicate},
		},
		{name: "missing offset", sql: "5 OFFSET", rows: 5, build: "5", errCodes: []parser.Code{parser.CodeMissingToken}},
		{name: "empty", sql: "", build: "0", errCodes: []parser.Code{parser.CodeMissingToken}},
		{
			name: "offset without row count", sql: "OFFSET 5",
			offset: 5, hasOffset: true, build: "0 OFFSET 5",
			errCodes: []parser.Code{parser.CodeMissingToken},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, tt.sql)
			limit := parser.ParseLimit(p)
			require.NotNil(t, limit)

			assert.Equal(t, tt.rows, limit.RowCount)
			assert.Equal(t, tt.offset, limit.Offset)
			assert.Equal(t, tt.hasOffset, limit.HasOffset)
			assert.Equal(t, tt.build, limit.Build())
			if tt.errCodes == nil {
				assert.Empty(t, p.Errors())
			} else {
				assert.Equal(t, tt.errCodes, codes(p.Errors()))
			}
		})
	}
}

func TestLimitFormsAreEquivalent(t *testing.T) {
	a := parser.ParseLimit(newParser(t, "5,10"))
	b := parser.ParseLimit(newParser(t, "10 OFFSET 5"))
	assert.Equal(t, a.RowCount, b.RowCount)
	assert.Equal(t, a.Offset, b.Offset)
}

func TestParseLimitStops(t *testing.T) {
	p := newParser(t, "10 FOR UPDATE")
	parser.ParseLimit(p)
	assert.Equal(t, "FOR UPDATE", p.Stream().Peek().Value)
}

// ---------- SetOperation ----------

func TestParseSetOperations(t *testing.T) {
	p := newParser(t, "a = 1, t.b := 'x', @v = c + 1 WHERE x")
	ops := parser.ParseSetOperations(p)

	require.Len(t, ops, 3)
	assert.Empty(t, p.Errors())
	assert.Equal(t, "t.b", ops[1].Column)
	assert.Equal(t, ":=", ops[1].Operator)
	assert.Equal(t, "c + 1", ops[2].Value)
	assert.Equal(t, "a = 1, t.b := 'x', @v = c + 1", parser.BuildSetOperations(ops))
	assert.Equal(t, "WHERE", p.Stream().Peek().Value)
}

func TestParseSetOperationsErrors(t *testing.T) {
	p := newParser(t, "a = 1,")
	ops := parser.ParseSetOperations(p)
	require.Len(t, ops, 1)
	errs := p.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, parser.ErrUnexpectedToken, errs[0].Message)
	assert.Equal(t, ",", errs[0].Text)

	p = newParser(t, "a = ")
	ops = parser.ParseSetOperations(p)
	require.Len(t, ops, 1)
	assert.Equal(t, []string{parser.ErrMissingExpression}, messages(p.Errors()))
}

func TestParseSetOperationsReservedColumn(t *testing.T) {
	p57, err := parser.NewParser("rank = 1", mysql.MySQL57)
	require.NoError(t, err)
	assert.Len(t, parser.ParseSetOperations(p57), 1)

	p80, err := parser.NewParser("rank = 1", mysql.MySQL80)
	require.NoError(t, err)
	assert.Empty(t, parser.ParseSetOperations(p80))
	assert.Equal(t, 0, p80.Stream().Idx, "cursor is left on the column")
}

// ---------- Expression ----------

func TestParseExpression(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		opts    parser.ExprOptions
		want    parser.Expression
		build   string
		nextRaw string
	}{
		{
			name:  "function with alias",
			sql:   "COUNT(*) AS c",
			want:  parser.Expression{Expr: "COUNT(*)", Alias: "c", Function: "COUNT"},
			build: "COUNT(*) AS c",
		},
		{
			name:  "implicit alias",
			sql:   "a + 1 total, b",
			want:  parser.Expression{Expr: "a + 1", Alias: "total"},
			build: "a + 1 total", nextRaw: ",",
		},
		{
			name:  "break on alias",
			sql:   "a + 1 total",
			opts:  parser.ExprOptions{BreakOnAlias: true},
			want:  parser.Expression{Expr: "a + 1"},
			build: "a + 1", nextRaw: "total",
		},
		{
			name:  "qualified column",
			sql:   "db.t.col",
			want:  parser.Expression{Expr: "db.t.col", Database: "db", Table: "t", Column: "col"},
			build: "db.t.col",
		},
		{
			name:  "table star",
			sql:   "t.*",
			want:  parser.Expression{Expr: "t.*", Table: "t", Column: "*"},
			build: "t.*",
		},
		{
			name:  "quoted table",
			sql:   "`my db`.`t`(a)",
			opts:  parser.ExprOptions{BreakOnAlias: true, ParseField: parser.FieldTable},
			want:  parser.Expression{Expr: "`my db`.`t`", Database: "my db", Table: "t"},
			build: "`my db`.`t`", nextRaw: "(",
		},
		{
			name:  "null test",
			sql:   "x IS NOT NULL AND y FROM t",
			want:  parser.Expression{Expr: "x IS NOT NULL AND y"},
			build: "x IS NOT NULL AND y", nextRaw: "FROM",
		},
		{
			name:  "interval",
			sql:   "NOW() - INTERVAL 1 DAY",
			want:  parser.Expression{Expr: "NOW() - INTERVAL 1 DAY", Function: "NOW"},
			build: "NOW() - INTERVAL 1 DAY",
		},
		{
			name:  "case",
			sql:   "CASE WHEN a THEN 1 ELSE 2 END AS v",
			want:  parser.Expression{Expr: "CASE WHEN a THEN 1 ELSE 2 END", Alias: "v"},
			build: "CASE WHEN a THEN 1 ELSE 2 END AS v",
		},
		{
			name:  "user at host",
			sql:   "'root'@'localhost' IDENTIFIED",
			opts:  parser.ExprOptions{BreakOnAlias: true},
			want:  parser.Expression{Expr: "'root'@'localhost'"},
			build: "'root'@'localhost'", nextRaw: "IDENTIFIED",
		},
		{
			name:  "reserved function name",
			sql:   "IF(a, 1, 2)",
			want:  parser.Expression{Expr: "IF(a, 1, 2)"},
			build: "IF(a, 1, 2)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, tt.sql)
			expr := parser.ParseExpression(p, tt.opts)
			require.NotNil(t, expr)
			assert.Empty(t, p.Errors())

			assert.Equal(t, tt.want.Expr, expr.Expr)
			assert.Equal(t, tt.want.Alias, expr.Alias)
			assert.Equal(t, tt.want.Database, expr.Database)
			assert.Equal(t, tt.want.Table, expr.Table)
			assert.Equal(t, tt.want.Column, expr.Column)
			if tt.want.Function != "" {
				assert.Equal(t, tt.want.Function, expr.Function)
			}
			assert.Equal(t, tt.build, expr.Build())
			if tt.nextRaw != "" {
				assert.Equal(t, tt.nextRaw, p.Stream().Peek().Raw)
			}
		})
	}
}

func TestParseExpressionNone(t *testing.T) {
	p := newParser(t, "FROM t")
	assert.Nil(t, parser.ParseExpression(p, parser.ExprOptions{}))
	assert.Equal(t, 0, p.Stream().Idx)
}

func TestParseExpressionMissingAlias(t *testing.T) {
	p := newParser(t, "a AS FROM")
	expr := parser.ParseExpression(p, parser.ExprOptions{})
	require.NotNil(t, expr)
	assert.Equal(t, "a", expr.Expr)
	assert.Equal(t, []string{parser.ErrAliasExpected}, messages(p.Errors()))
}

func TestParseExpressionList(t *testing.T) {
	p := newParser(t, "a, b AS x, 3 FROM t")
	list := parser.ParseExpressionList(p, parser.ExprOptions{})
	require.Len(t, list, 3)
	assert.Equal(t, "a, b AS x, 3", parser.BuildExpressions(list))
}
