package config

import (
	"fmt"
	"slices"
	"strings"
)

// Valid values for the enumerated settings.
var (
	OutputModes = []string{"auto", "text", "json", "yaml"}
	ColorModes  = []string{"auto", "always", "never"}
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if _, err := c.ResolveDialect(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Delimiter) == "" {
		return fmt.Errorf("delimiter must not be empty")
	}
	if !slices.Contains(OutputModes, c.Output) {
		return fmt.Errorf("invalid output %q (expected one of %s)", c.Output, strings.Join(OutputModes, ", "))
	}
	if !slices.Contains(ColorModes, c.Color) {
		return fmt.Errorf("invalid color %q (expected one of %s)", c.Color, strings.Join(ColorModes, ", "))
	}
	if !strings.Contains(c.ErrorFormat, "%") {
		return fmt.Errorf("error_format %q has no verbs", c.ErrorFormat)
	}
	return nil
}
