package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BackEndTea/sql-parser/internal/cli/config"
	"github.com/BackEndTea/sql-parser/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// syncBuffer is a bytes.Buffer safe for one writer and one reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testConfig returns the defaults with colour disabled.
func testConfig(mutate ...func(*config.Config)) *config.Config {
	cfg := config.Defaults()
	cfg.Color = "never"
	for _, m := range mutate {
		m(cfg)
	}
	return cfg
}

func testContext(t *testing.T, cfg *config.Config) context.Context {
	t.Helper()
	ctx := config.WithConfig(context.Background(), cfg)
	return config.WithLogger(ctx, testutil.NewTestLogger(t))
}

// execute runs cmd with args and stdin and returns its stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, cfg *config.Config, stdin string, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	// a nil slice would make cobra fall back to os.Args
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.ExecuteContext(testContext(t, cfg))
	return out.String(), errOut.String(), err
}

func withOutput(mode string) func(*config.Config) {
	return func(c *config.Config) { c.Output = mode }
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewTokensCommand(), "tokens [file]", []string{"expr", "all"}},
		{NewParseCommand(), "parse [files...]", []string{"expr"}},
		{NewBuildCommand(), "build [file]", []string{"expr", "check"}},
		{NewFormatCommand(), "format [files...]", []string{"expr", "case", "compact", "strip-comments", "write"}},
		{NewCheckCommand(), "check <paths...>", []string{"jobs"}},
		{NewDialectsCommand(), "dialects [name]", []string{"words", "reserved"}},
		{NewREPLCommand(), "repl", []string{"history", "tokens"}},
		{NewWatchCommand(), "watch <paths...>", []string{"debounce"}},
	}
	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Long, "Long should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestTokensCommand(t *testing.T) {
	out, _, err := execute(t, NewTokensCommand(), testConfig(), "", "-e", "SELECT a FROM t")
	require.NoError(t, err)

	assert.Contains(t, out, "KEYWORD")
	assert.Contains(t, out, `"SELECT"`)
	assert.Contains(t, out, "IDENT")
	assert.Contains(t, out, "(4 tokens)")
	assert.NotContains(t, out, "WHITESPACE")
}

func TestTokensCommandAll(t *testing.T) {
	out, _, err := execute(t, NewTokensCommand(), testConfig(), "SELECT 1 -- c\n", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "WHITESPACE")
	assert.Contains(t, out, "COMMENT")
	assert.Contains(t, out, "EOF")
}

func TestTokensCommandJSON(t *testing.T) {
	out, _, err := execute(t, NewTokensCommand(), testConfig(withOutput("json")), "", "-e", "SELECT `a`")
	require.NoError(t, err)

	var doc TokensOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "mysql-8.0", doc.Dialect)
	require.Len(t, doc.Tokens, 2)
	assert.Equal(t, "QUOTED_IDENT", doc.Tokens[1].Kind)
	assert.Equal(t, "a", doc.Tokens[1].Value)
	assert.Equal(t, "`a`", doc.Tokens[1].Raw)
	assert.Empty(t, doc.Errors)
}

func TestTokensCommandLexErrors(t *testing.T) {
	_, errOut, err := execute(t, NewTokensCommand(), testConfig(), "", "-e", "SELECT 'open")
	require.ErrorIs(t, err, ErrHasErrors)
	assert.Contains(t, errOut, "#1: ")
}

func TestParseCommand(t *testing.T) {
	out, errOut, err := execute(t, NewParseCommand(), testConfig(), "", "-e", "SELECT a FROM t; UPDATE t SET a = 1")
	require.NoError(t, err)
	assert.Empty(t, errOut)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "1.")
	assert.Contains(t, lines[0], "SELECT a FROM t")
	assert.Contains(t, lines[1], "UPDATE")
}

func TestParseCommandYAML(t *testing.T) {
	out, _, err := execute(t, NewParseCommand(), testConfig(withOutput("yaml")), "SELECT 1; ALTER TABLE t ADD COLUMN a INT DROP COLUMN b")
	require.ErrorIs(t, err, ErrHasErrors)

	var rep ParseReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "<stdin>", rep.Source)
	require.Len(t, rep.Statements, 2)
	assert.Equal(t, "SelectStatement", rep.Statements[0].Type)
	assert.Equal(t, "ALTER", rep.Statements[1].Keyword)
	require.NotEmpty(t, rep.Errors)
	assert.Equal(t, "missing comma", rep.Errors[0].Code)
}

func TestParseCommandFiles(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"a.sql":        "SELECT 1;",
		"nested/b.sql": "SELECT 2;",
		"notes.txt":    "not sql",
	})

	out, _, err := execute(t, NewParseCommand(), testConfig(withOutput("json")), "", dir)
	require.NoError(t, err)

	var reps []ParseReport
	require.NoError(t, json.Unmarshal([]byte(out), &reps))
	require.Len(t, reps, 2)
	assert.Equal(t, testutil.Paths(dir, "a.sql", "nested/b.sql"), []string{reps[0].Source, reps[1].Source})
}

func TestParseCommandErrorFormat(t *testing.T) {
	cfg := testConfig(func(c *config.Config) { c.ErrorFormat = "E%[1]d@%[4]d" })
	_, errOut, err := execute(t, NewParseCommand(), cfg, "", "-e", "SELECT 'x")
	require.ErrorIs(t, err, ErrHasErrors)
	assert.Equal(t, "E1@7\n", errOut)
}

func TestParseCommandUnknownDialect(t *testing.T) {
	cfg := testConfig(func(c *config.Config) { c.Dialect = "oracle" })
	_, _, err := execute(t, NewParseCommand(), cfg, "", "-e", "SELECT 1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrHasErrors)
}

func TestBuildCommand(t *testing.T) {
	out, _, err := execute(t, NewBuildCommand(), testConfig(), "", "--check", "-e", "SELECT a FROM t LIMIT 10 OFFSET 5")
	require.NoError(t, err)
	assert.Equal(t, "SELECT a FROM t LIMIT 10 OFFSET 5\n", out)
}

func TestBuildCommandDelimiters(t *testing.T) {
	sql := "DELIMITER $$\nSELECT 1 $$\nDELIMITER ;\nSELECT 2;"
	out, _, err := execute(t, NewBuildCommand(), testConfig(), sql, "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "DELIMITER $$")
	assert.Contains(t, out, "SELECT 2")
}

func TestFormatCommand(t *testing.T) {
	out, _, err := execute(t, NewFormatCommand(), testConfig(), "", "-e", "select a, b from t where x = 1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT\n  a,\n  b\nFROM t\nWHERE\n  x = 1\n", out)

	out, _, err = execute(t, NewFormatCommand(), testConfig(), "", "--compact", "--case", "lower", "-e", "SELECT A FROM t")
	require.NoError(t, err)
	assert.Equal(t, "select A from t\n", out)

	_, _, err = execute(t, NewFormatCommand(), testConfig(), "", "--case", "title", "-e", "SELECT 1")
	require.Error(t, err)
}

func TestFormatCommandWrite(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"q.sql":    "select  1",
		"done.sql": "SELECT 2\n",
	})

	out, _, err := execute(t, NewFormatCommand(), testConfig(), "", "--compact", "-w", dir)
	require.NoError(t, err)

	assert.Equal(t, "SELECT 1\n", testutil.ReadFile(t, testutil.Paths(dir, "q.sql")[0]))
	assert.Contains(t, out, "formatted ")
	assert.NotContains(t, out, "done.sql", "unchanged files are not rewritten")
}

func TestCheckCommand(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"good.sql": "SELECT 1; SELECT 2;",
		"bad.sql":  "SELECT 'abc",
	})

	out, errOut, err := execute(t, NewCheckCommand(), testConfig(), "", "-j", "2", dir)
	require.ErrorIs(t, err, ErrHasErrors)

	assert.Contains(t, out, "good.sql: ok (2 statements)")
	assert.Contains(t, out, "2 files checked, 1 with errors")
	assert.Contains(t, errOut, "bad.sql:1:8: ")
}

func TestCheckCommandJSON(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"a.sql": "SELECT 1", "b.sql": "SELECT 2"})

	out, _, err := execute(t, NewCheckCommand(), testConfig(withOutput("json")), "", dir)
	require.NoError(t, err)

	var reps []CheckReport
	require.NoError(t, json.Unmarshal([]byte(out), &reps))
	require.Len(t, reps, 2)
	assert.Equal(t, testutil.Paths(dir, "a.sql", "b.sql"), []string{reps[0].File, reps[1].File})
	assert.Equal(t, 1, reps[0].Statements)
}

func TestCheckCommandMissingPath(t *testing.T) {
	_, _, err := execute(t, NewCheckCommand(), testConfig(), "", "does-not-exist.sql")
	require.Error(t, err)
}

func TestDialectsCommand(t *testing.T) {
	out, _, err := execute(t, NewDialectsCommand(), testConfig(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "mysql-8.0 *")
	assert.Contains(t, out, "MariaDB 10.6")
	assert.Contains(t, out, "MySql50700")
	assert.NotContains(t, out, "mysql80000", "class name aliases are not listed")
}

func TestDialectsCommandShow(t *testing.T) {
	out, _, err := execute(t, NewDialectsCommand(), testConfig(withOutput("json")), "", "MySql80000", "--reserved")
	require.NoError(t, err)

	var info DialectInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "mysql-8.0", info.Name)
	assert.Equal(t, "MySQL 8.0", info.Product)
	assert.True(t, info.Default)
	assert.Equal(t, []string{"mysql"}, info.Aliases)
	assert.Contains(t, info.Words, "SELECT")
	assert.Contains(t, info.Words, "RANK")
	assert.Len(t, info.Words, info.Reserved)

	_, _, err = execute(t, NewDialectsCommand(), testConfig(), "", "oracle")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, NewVersionCommand("1.2.3"), testConfig(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlparse v1.2.3")
}

// newTestSession builds a REPL session writing into the returned buffers.
func newTestSession(t *testing.T) (*replSession, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetContext(testContext(t, testConfig()))

	cmdCtx, err := NewCommandContext(cmd)
	require.NoError(t, err)
	return newREPLSession(cmdCtx, false), out, errOut
}

func TestREPLSession(t *testing.T) {
	s, out, errOut := newTestSession(t)

	assert.False(t, s.handleLine("SELECT a"))
	assert.Equal(t, replContinuePrompt, s.prompt())
	assert.Empty(t, out.String(), "nothing runs before the delimiter")

	assert.False(t, s.handleLine("FROM t;"))
	assert.Equal(t, replPrompt, s.prompt())
	assert.Contains(t, out.String(), "SELECT")
	assert.Contains(t, out.String(), "FROM t")
	assert.Empty(t, errOut.String())
}

func TestREPLSessionDelimiter(t *testing.T) {
	s, out, _ := newTestSession(t)

	s.handleLine("DELIMITER $$")
	assert.Equal(t, "$$", s.delimiter)

	s.handleLine("SELECT 1;")
	assert.Equal(t, replContinuePrompt, s.prompt(), "; no longer ends a statement")

	s.handleLine("SELECT 2 $$")
	assert.Equal(t, replPrompt, s.prompt())
	assert.Contains(t, out.String(), "SELECT 2")
}

func TestREPLSessionCommands(t *testing.T) {
	s, out, errOut := newTestSession(t)

	s.handleLine(".dialect mysql-5.7")
	assert.Equal(t, "mysql-5.7", s.dialect.Name)
	assert.Contains(t, out.String(), "dialect is now mysql-5.7")

	s.handleLine(".dialect nope")
	assert.Equal(t, "mysql-5.7", s.dialect.Name)
	assert.Contains(t, errOut.String(), "unknown dialect")

	s.handleLine(".tokens")
	assert.True(t, s.showTokens)
	s.handleLine(".format")
	assert.True(t, s.pretty)

	out.Reset()
	s.handleLine("select a from t;")
	assert.Contains(t, out.String(), "KEYWORD")
	assert.Contains(t, out.String(), "SELECT\n  a\nFROM t;\n")

	s.handleLine(".bogus")
	assert.Contains(t, errOut.String(), "Unknown command: .bogus")

	out.Reset()
	s.handleLine(".help")
	assert.Contains(t, out.String(), ".dialect [name]")

	assert.True(t, s.handleLine(".quit"))
	assert.True(t, s.handleLine(".EXIT"))
}

func TestREPLSessionReportsErrors(t *testing.T) {
	s, _, errOut := newTestSession(t)
	s.handleLine("SELECT 1 SELECT 2;")
	assert.Contains(t, errOut.String(), "#1: ")
}

func TestExpandPaths(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"b.sql":       "",
		"a/c.SQL":     "",
		"a/notes.md":  "",
		"single.text": "",
	})

	paths, err := expandPaths([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, testutil.Paths(dir, "a/c.SQL", "b.sql"), paths)

	single := testutil.Paths(dir, "single.text")
	paths, err = expandPaths(single)
	require.NoError(t, err)
	assert.Equal(t, single, paths, "named files are taken as they are")

	_, err = expandPaths([]string{testutil.Paths(dir, "missing.sql")[0]})
	require.Error(t, err)
}

func TestReadSources(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("SELECT 1"))

	srcs, err := readSources(cmd, nil, "SELECT 2")
	require.NoError(t, err)
	assert.Equal(t, []source{{Name: "<expr>", SQL: "SELECT 2"}}, srcs)

	srcs, err = readSources(cmd, []string{"-"}, "")
	require.NoError(t, err)
	assert.Equal(t, []source{{Name: stdinName, SQL: "SELECT 1"}}, srcs)

	dir := testutil.WriteFiles(t, map[string]string{"q.sql": "SELECT 3"})
	path := testutil.Paths(dir, "q.sql")[0]
	srcs, err = readSources(cmd, []string{path}, "")
	require.NoError(t, err)
	assert.Equal(t, []source{{Name: path, Path: path, SQL: "SELECT 3"}}, srcs)
}

func TestWatchPaths(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"q.sql": "SELECT 1;"})
	path := testutil.Paths(dir, "q.sql")[0]

	out, errOut := &syncBuffer{}, &syncBuffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetContext(testContext(t, testConfig()))
	cmdCtx, err := NewCommandContext(cmd)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watchPaths(ctx, cmdCtx, []string{dir}, 10*time.Millisecond) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "watching 1 files")
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "q.sql: ok (1 statements)")

	require.NoError(t, os.WriteFile(path, []byte("SELECT 'abc"), 0o600))
	assert.Eventually(t, func() bool {
		return strings.Contains(errOut.String(), "q.sql:1:8: ")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
