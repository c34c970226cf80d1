package parser

import "errors"

// DefaultDelimiter is the statement delimiter used when none is configured.
const DefaultDelimiter = ";"

// ErrEmptyDelimiter is returned when an empty statement delimiter is configured.
var ErrEmptyDelimiter = errors.New("statement delimiter must not be empty")

type config struct {
	delimiter  string
	ansiQuotes bool
	strict     bool
}

// Option configures a lexer or parser.
type Option func(*config)

// WithDelimiter sets the initial statement delimiter.
func WithDelimiter(delim string) Option {
	return func(c *config) {
		c.delimiter = delim
	}
}

// WithANSIQuotes makes double quotes delimit identifiers instead of strings.
func WithANSIQuotes(enabled bool) Option {
	return func(c *config) {
		c.ansiQuotes = enabled
	}
}

// WithStrict stops parsing at the first error.
func WithStrict(enabled bool) Option {
	return func(c *config) {
		c.strict = enabled
	}
}

func newConfig(opts []Option) (config, error) {
	cfg := config{delimiter: DefaultDelimiter}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.delimiter == "" {
		return cfg, ErrEmptyDelimiter
	}
	return cfg, nil
}
