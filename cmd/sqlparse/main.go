// Package main provides the sqlparse command.
package main

import (
	"os"

	"github.com/BackEndTea/sql-parser/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
