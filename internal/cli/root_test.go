package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/BackEndTea/sql-parser/internal/cli/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	root := NewRootCmd()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"version", "tokens", "parse", "build", "format", "check", "dialects", "repl", "watch", "completion"} {
		assert.Contains(t, names, want)
	}
	for _, flag := range []string{"config", "dialect", "delimiter", "ansi-quotes", "strict", "output", "error-format", "color", "verbose"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRootFlagsReachCommands(t *testing.T) {
	out, _, err := run(t, "--dialect", "MySql50700", "-o", "json", "--color", "never", "parse", "-e", "SELECT rank FROM t")
	require.NoError(t, err)

	var rep commands.ParseReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "mysql-5.7", rep.Dialect)
	assert.Empty(t, rep.Errors)
	require.Len(t, rep.Statements, 1)
}

func TestRootDelimiterFlag(t *testing.T) {
	out, _, err := run(t, "--delimiter", "//", "-o", "json", "parse", "-e", "SELECT 1// SELECT 2//")
	require.NoError(t, err)

	var rep commands.ParseReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Len(t, rep.Statements, 2)
}

func TestRootInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "output", args: []string{"-o", "xml", "parse", "-e", "SELECT 1"}},
		{name: "color", args: []string{"--color", "sometimes", "parse", "-e", "SELECT 1"}},
		{name: "dialect", args: []string{"--dialect", "oracle", "parse", "-e", "SELECT 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestRootSQLErrors(t *testing.T) {
	_, errOut, err := run(t, "--color", "never", "parse", "-e", "SELECT 'abc")
	require.ErrorIs(t, err, commands.ErrHasErrors)
	assert.Contains(t, errOut, "#1: ")
}

func TestRootVersion(t *testing.T) {
	out, _, err := run(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "sqlparse "+Version+"\n", out)
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, _, err := run(t, "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "sqlparse")
		})
	}

	_, _, err := run(t, "completion", "tcsh")
	require.Error(t, err)
}
