package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/dialect"
	"github.com/BackEndTea/sql-parser/pkg/dialects/mysql"
	"github.com/BackEndTea/sql-parser/pkg/token"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// generateKeywordDocs writes one keyword matrix page per family.
func generateKeywordDocs(outDir string) error {
	log.Printf("Generating keyword docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	families := []struct {
		name     dialect.Family
		versions []mysql.Version
	}{
		{dialect.FamilyMySQL, mysql.MySQLVersions},
		{dialect.FamilyMariaDB, mysql.MariaDBVersions},
	}
	for _, f := range families {
		ds, err := mysql.BuildFamily(f.versions)
		if err != nil {
			return fmt.Errorf("building %s: %w", f.name, err)
		}
		name := string(f.name) + ".md"
		if err := os.WriteFile(filepath.Join(outDir, name), keywordPage(f.name, ds), 0o600); err != nil {
			return err
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

// keywordPage renders a table of every keyword against every version.
func keywordPage(family dialect.Family, ds []*dialect.Dialect) []byte {
	title := cases.Title(language.English).String(string(family)) + " keywords"
	product := ds[0].DisplayName()
	product = product[:strings.IndexByte(product, ' ')]

	w := NewMarkdownWriter()
	w.Frontmatter(title, "Keywords and reserved words per "+product+" version")
	w.GeneratedMarker()
	w.Header(1, product+" keywords")
	w.Paragraph("R marks a reserved word, K a non-reserved keyword. An empty cell means the word is a plain identifier in that version.")

	headers := []string{"Keyword"}
	for _, d := range ds {
		headers = append(headers, strings.TrimPrefix(d.DisplayName(), product+" "))
	}

	var rows [][]string
	for _, word := range unionKeywords(ds) {
		row := []string{InlineCode(word)}
		for _, d := range ds {
			row = append(row, keywordMark(d, word))
		}
		rows = append(rows, row)
	}
	w.Table(headers, rows)

	w.Header(2, "Sources")
	var links []string
	seen := make(map[string]bool)
	for _, d := range ds {
		if d.Link != "" && !seen[d.Link] {
			seen[d.Link] = true
			links = append(links, fmt.Sprintf("[%s](%s)", d.DisplayName(), d.Link))
		}
	}
	w.BulletList(links)
	return w.Bytes()
}

func unionKeywords(ds []*dialect.Dialect) []string {
	set := make(map[string]bool)
	for _, d := range ds {
		for _, kw := range d.Keywords() {
			set[kw] = true
		}
	}
	out := make([]string, 0, len(set))
	for kw := range set {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

func keywordMark(d *dialect.Dialect, word string) string {
	flags, ok := d.Lookup(word)
	switch {
	case !ok:
		return ""
	case flags.Has(token.FlagReserved):
		return "R"
	default:
		return "K"
	}
}
