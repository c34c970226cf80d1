package commands

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/BackEndTea/sql-parser/internal/cli/output"
	"github.com/BackEndTea/sql-parser/pkg/dialect"
	"github.com/BackEndTea/sql-parser/pkg/token"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// DialectsOptions holds options for the dialects command.
type DialectsOptions struct {
	Words    bool
	Reserved bool
}

// DialectInfo describes a registered dialect.
type DialectInfo struct {
	Name     string   `json:"name" yaml:"name"`
	Product  string   `json:"product" yaml:"product"`
	Class    string   `json:"class" yaml:"class"`
	Family   string   `json:"family" yaml:"family"`
	Keywords int      `json:"keywords" yaml:"keywords"`
	Reserved int      `json:"reserved" yaml:"reserved"`
	Aliases  []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Default  bool     `json:"default" yaml:"default"`
	Link     string   `json:"link,omitempty" yaml:"link,omitempty"`
	Words    []string `json:"words,omitempty" yaml:"words,omitempty"`
}

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand() *cobra.Command {
	opts := &DialectsOptions{}

	cmd := &cobra.Command{
		Use:   "dialects [name]",
		Short: "List the available SQL dialects",
		Long: `List every registered dialect with its keyword counts, or show one
dialect in detail. Names, aliases and class-style names such as
MySql80000 are accepted.`,
		Example: `  sqlparse dialects
  sqlparse dialects mariadb --words
  sqlparse dialects MySql50700 --reserved`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return dialect.List(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return showDialect(cmd, args[0], opts)
			}
			return listDialects(cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Words, "words", false, "List the dialect's keywords")
	cmd.Flags().BoolVar(&opts.Reserved, "reserved", false, "List only reserved keywords")

	return cmd
}

// userAliases maps dialect names to the aliases a user would type, leaving
// out the class names every versioned dialect is registered under.
func userAliases() map[string][]string {
	out := make(map[string][]string)
	for alias, name := range dialect.Aliases() {
		if d, ok := dialect.Get(name); ok && strings.EqualFold(alias, d.ClassName()) {
			continue
		}
		out[name] = append(out[name], alias)
	}
	for _, list := range out {
		sort.Strings(list)
	}
	return out
}

func dialectInfo(d *dialect.Dialect, aliases map[string][]string) DialectInfo {
	def := dialect.Default()
	return DialectInfo{
		Name:     d.Name,
		Product:  d.DisplayName(),
		Class:    d.ClassName(),
		Family:   string(d.Family),
		Keywords: d.Len(),
		Reserved: len(d.KeywordsWith(token.FlagReserved)),
		Aliases:  aliases[strings.ToLower(d.Name)],
		Default:  def != nil && def.Name == d.Name,
		Link:     d.Link,
	}
}

func listDialects(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	aliases := userAliases()
	var infos []DialectInfo
	for _, name := range dialect.List() {
		d, ok := dialect.Get(name)
		if !ok {
			continue
		}
		infos = append(infos, dialectInfo(d, aliases))
	}

	handled, err := r.Encode(infos)
	if err != nil || handled {
		return err
	}
	renderDialectTable(r.Writer(), infos)
	return nil
}

func renderDialectTable(w io.Writer, infos []DialectInfo) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Product", "Class", "Keywords", "Reserved", "Aliases"})

	for _, info := range infos {
		name := info.Name
		if info.Default {
			name += " *"
		}
		t.AppendRow(table.Row{
			name,
			info.Product,
			info.Class,
			strconv.Itoa(info.Keywords),
			strconv.Itoa(info.Reserved),
			strings.Join(info.Aliases, ", "),
		})
	}
	t.Render()
	_, _ = fmt.Fprintln(w, "* default dialect")
}

func showDialect(cmd *cobra.Command, name string, opts *DialectsOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	d, err := dialect.Resolve(name)
	if err != nil {
		return err
	}
	info := dialectInfo(d, userAliases())
	switch {
	case opts.Reserved:
		info.Words = d.KeywordsWith(token.FlagReserved)
	case opts.Words:
		info.Words = d.Keywords()
	}

	handled, err := r.Encode(info)
	if err != nil || handled {
		return err
	}

	r.Header(1, info.Product)
	r.Println(output.FormatKeyValue("Name", info.Name))
	r.Println(output.FormatKeyValue("Class", info.Class))
	r.Println(output.FormatKeyValue("Family", info.Family))
	r.Println(output.FormatKeyValue("Keywords", strconv.Itoa(info.Keywords)))
	r.Println(output.FormatKeyValue("Reserved", strconv.Itoa(info.Reserved)))
	if len(info.Aliases) > 0 {
		r.Println(output.FormatKeyValue("Aliases", strings.Join(info.Aliases, ", ")))
	}
	if info.Link != "" {
		r.Println(output.FormatKeyValue("Docs", info.Link))
	}
	if len(info.Words) > 0 {
		r.Println()
		r.Header(2, "Keywords")
		for _, w := range info.Words {
			r.Println("  " + w)
		}
	}
	return nil
}
