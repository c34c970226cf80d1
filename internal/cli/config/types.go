// Package config loads the sqlparse CLI configuration.
//
// Values come from defaults, an optional sqlparse.yaml, SQLPARSE_ environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"fmt"

	"github.com/BackEndTea/sql-parser/internal/cli/output"
	"github.com/BackEndTea/sql-parser/pkg/dialect"
	"github.com/BackEndTea/sql-parser/pkg/parser"
)

// Default configuration values.
const (
	DefaultDialect     = "mysql"
	DefaultDelimiter   = ";"
	DefaultOutput      = "auto" // styled text on a terminal, plain text otherwise
	DefaultColor       = "auto"
	DefaultErrorFormat = output.DefaultErrorFormat
)

// Config holds all CLI configuration options.
type Config struct {
	Dialect     string `koanf:"dialect"`
	Delimiter   string `koanf:"delimiter"`
	ANSIQuotes  bool   `koanf:"ansi_quotes"`
	Strict      bool   `koanf:"strict"`
	Output      string `koanf:"output"`
	ErrorFormat string `koanf:"error_format"`
	Color       string `koanf:"color"`
	Verbose     bool   `koanf:"verbose"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		Dialect:     DefaultDialect,
		Delimiter:   DefaultDelimiter,
		Output:      DefaultOutput,
		ErrorFormat: DefaultErrorFormat,
		Color:       DefaultColor,
	}
}

// ResolveDialect looks up the configured dialect.
func (c *Config) ResolveDialect() (*dialect.Dialect, error) {
	d, err := dialect.Resolve(c.Dialect)
	if err != nil {
		return nil, fmt.Errorf("resolving dialect: %w", err)
	}
	return d, nil
}

// ParserOptions translates the configuration into parser options.
func (c *Config) ParserOptions() []parser.Option {
	opts := []parser.Option{
		parser.WithANSIQuotes(c.ANSIQuotes),
		parser.WithStrict(c.Strict),
	}
	if c.Delimiter != "" {
		opts = append(opts, parser.WithDelimiter(c.Delimiter))
	}
	return opts
}
