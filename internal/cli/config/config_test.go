package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/BackEndTea/sql-parser/internal/testutil"
	"github.com/BackEndTea/sql-parser/pkg/dialect"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.StringP("dialect", "d", "", "")
	fs.String("delimiter", "", "")
	fs.Bool("ansi-quotes", false, "")
	fs.Bool("strict", false, "")
	fs.StringP("output", "o", "", "")
	fs.String("error-format", "", "")
	fs.String("color", "", "")
	fs.BoolP("verbose", "v", false, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	loaded, err := Load("", newFlags())
	require.NoError(t, err)
	assert.Empty(t, loaded.File)
	assert.Equal(t, Defaults(), loaded.Config)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sqlparse.yaml"), []byte(`
dialect: mariadb-10.6
delimiter: $$
output: json
ansi_quotes: true
`), 0o600))
	t.Setenv("SQLPARSE_OUTPUT", "yaml")
	t.Setenv("SQLPARSE_STRICT", "true")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--delimiter", "//"}))

	loaded, err := Load("", flags)
	require.NoError(t, err)
	cfg := loaded.Config

	assert.Equal(t, filepath.Join(dir, "sqlparse.yaml"), loaded.File)
	assert.Equal(t, "mariadb-10.6", cfg.Dialect, "from file")
	assert.True(t, cfg.ANSIQuotes, "from file")
	assert.Equal(t, "yaml", cfg.Output, "env beats file")
	assert.True(t, cfg.Strict, "from env")
	assert.Equal(t, "//", cfg.Delimiter, "flag beats file")
	assert.Equal(t, DefaultErrorFormat, cfg.ErrorFormat, "default kept")
}

func TestLoad_SearchesParents(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sqlparse.yml"), []byte("dialect: mysql-5.7\n"), 0o600))
	t.Chdir(nested)

	loaded, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "mysql-5.7", loaded.Config.Dialect)
}

func TestLoad_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load("missing.yaml", nil)
	require.Error(t, err)

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--dialect", "oracle"}))
	_, err = Load("", flags)
	require.ErrorIs(t, err, dialect.ErrUnknownDialect)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "class name dialect", mutate: func(c *Config) { c.Dialect = "MySql80000" }},
		{name: "empty delimiter", mutate: func(c *Config) { c.Delimiter = " " }, wantErr: "delimiter"},
		{name: "bad output", mutate: func(c *Config) { c.Output = "xml" }, wantErr: "invalid output"},
		{name: "bad color", mutate: func(c *Config) { c.Color = "sometimes" }, wantErr: "invalid color"},
		{name: "format without verbs", mutate: func(c *Config) { c.ErrorFormat = "oops" }, wantErr: "no verbs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParserOptions(t *testing.T) {
	cfg := Defaults()
	assert.Len(t, cfg.ParserOptions(), 3)

	cfg.Delimiter = ""
	assert.Len(t, cfg.ParserOptions(), 2)
}

func TestLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()), "falls back to a discard logger")

	l := testutil.NewTestLogger(t)
	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, GetLogger(ctx))
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, Defaults(), FromContext(context.Background()))

	cfg := &Config{Dialect: "mysql-5.7"}
	assert.Same(t, cfg, FromContext(WithConfig(context.Background(), cfg)))
}
