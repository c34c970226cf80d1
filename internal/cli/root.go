// Package cli provides the sqlparse command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/BackEndTea/sql-parser/internal/cli/commands"
	"github.com/BackEndTea/sql-parser/internal/cli/config"
	"github.com/BackEndTea/sql-parser/pkg/dialect"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sqlparse",
		Short: "sqlparse - MySQL and MariaDB SQL parser",
		Long: `sqlparse tokenizes, parses, rebuilds and formats MySQL and MariaDB SQL.

Every keyword is classified against the selected server version, so a word
reserved in MySQL 8.0 may be a plain identifier in MySQL 5.7. Problems in the
input are reported as a list of errors; parsing always runs to the end.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			loaded, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			cfg := loaded.Config

			logger := config.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			if loaded.File != "" {
				logger.Debug("using config file", "path", loaded.File)
			}
			logger.Debug("configuration", "dialect", cfg.Dialect, "delimiter", cfg.Delimiter, "output", cfg.Output)

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./sqlparse.yaml)")
	pf.StringP("dialect", "d", "", "SQL dialect, e.g. mysql-8.0, mariadb, MySql50700")
	pf.String("delimiter", "", "Initial statement delimiter (default ;)")
	pf.Bool("ansi-quotes", false, "Treat double-quoted text as identifiers")
	pf.Bool("strict", false, "Stop at the first error")
	pf.StringP("output", "o", "", "Output format (auto|text|json|yaml)")
	pf.String("error-format", "", "printf format for errors: number, message, text, offset")
	pf.String("color", "", "Colour output (auto|always|never)")
	pf.BoolP("verbose", "v", false, "Verbose output")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OutputModes, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("color", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.ColorModes, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return dialect.List(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewTokensCommand())
	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewBuildCommand())
	rootCmd.AddCommand(commands.NewFormatCommand())
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewDialectsCommand())
	rootCmd.AddCommand(commands.NewREPLCommand())
	rootCmd.AddCommand(commands.NewWatchCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command. SQL errors have been printed by the command
// that found them, so only other failures are reported here.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, commands.ErrHasErrors) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sqlparse.

To load completions:

Bash:
  $ source <(sqlparse completion bash)

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  $ sqlparse completion zsh > "${fpath[1]}/_sqlparse"

Fish:
  $ sqlparse completion fish | source

PowerShell:
  PS> sqlparse completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
