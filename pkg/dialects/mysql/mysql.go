// Package mysql registers the MySQL and MariaDB keyword contexts.
//
// Each version is built from the shared word list plus the cumulative
// additions (and "-WORD" removals) of every earlier version of the same
// family. Importing this package for side effects makes the contexts
// available through dialect.Get:
//
//	import _ "github.com/BackEndTea/sql-parser/pkg/dialects/mysql"
//
//	d, _ := dialect.Get("mysql-8.0")
package mysql

import (
	"embed"
	"fmt"
	"path"

	"github.com/BackEndTea/sql-parser/pkg/dialect"
)

//go:embed words
var wordFS embed.FS

// Version describes one keyword context of a family.
type Version struct {
	Name    string // registry name, e.g. "mysql-8.0"
	File    string // word list relative to words/
	Number  int    // MMmmpp encoding
	Family  dialect.Family
	DocLink string
}

const (
	mysqlDocs   = "https://dev.mysql.com/doc/refman/%s/en/keywords.html"
	mariadbDocs = "https://mariadb.com/kb/en/reserved-words/"
)

// MySQLVersions lists the MySQL contexts in release order.
var MySQLVersions = []Version{
	{Name: "mysql-5.0", File: "mysql/5.0.txt", Number: 50000, Family: dialect.FamilyMySQL, DocLink: fmt.Sprintf(mysqlDocs, "5.0")},
	{Name: "mysql-5.1", File: "mysql/5.1.txt", Number: 50100, Family: dialect.FamilyMySQL, DocLink: fmt.Sprintf(mysqlDocs, "5.1")},
	{Name: "mysql-5.5", File: "mysql/5.5.txt", Number: 50500, Family: dialect.FamilyMySQL, DocLink: fmt.Sprintf(mysqlDocs, "5.5")},
	{Name: "mysql-5.6", File: "mysql/5.6.txt", Number: 50600, Family: dialect.FamilyMySQL, DocLink: fmt.Sprintf(mysqlDocs, "5.6")},
	{Name: "mysql-5.7", File: "mysql/5.7.txt", Number: 50700, Family: dialect.FamilyMySQL, DocLink: fmt.Sprintf(mysqlDocs, "5.7")},
	{Name: "mysql-8.0", File: "mysql/8.0.txt", Number: 80000, Family: dialect.FamilyMySQL, DocLink: fmt.Sprintf(mysqlDocs, "8.0")},
}

// MariaDBVersions lists the MariaDB contexts in release order.
var MariaDBVersions = []Version{
	{Name: "mariadb-10.0", File: "mariadb/10.0.txt", Number: 100000, Family: dialect.FamilyMariaDB, DocLink: mariadbDocs},
	{Name: "mariadb-10.1", File: "mariadb/10.1.txt", Number: 100100, Family: dialect.FamilyMariaDB, DocLink: mariadbDocs},
	{Name: "mariadb-10.2", File: "mariadb/10.2.txt", Number: 100200, Family: dialect.FamilyMariaDB, DocLink: mariadbDocs},
	{Name: "mariadb-10.3", File: "mariadb/10.3.txt", Number: 100300, Family: dialect.FamilyMariaDB, DocLink: mariadbDocs},
	{Name: "mariadb-10.4", File: "mariadb/10.4.txt", Number: 100400, Family: dialect.FamilyMariaDB, DocLink: mariadbDocs},
	{Name: "mariadb-10.5", File: "mariadb/10.5.txt", Number: 100500, Family: dialect.FamilyMariaDB, DocLink: mariadbDocs},
	{Name: "mariadb-10.6", File: "mariadb/10.6.txt", Number: 100600, Family: dialect.FamilyMariaDB, DocLink: mariadbDocs},
}

// Exported contexts. Populated by init.
var (
	MySQL57    *dialect.Dialect
	MySQL80    *dialect.Dialect
	MariaDB106 *dialect.Dialect
)

func init() {
	mysql := mustBuildFamily(MySQLVersions)
	maria := mustBuildFamily(MariaDBVersions)

	for _, d := range mysql {
		dialect.Register(d)
	}
	for _, d := range maria {
		dialect.Register(d)
	}

	MySQL57 = mysql[len(mysql)-2]
	MySQL80 = mysql[len(mysql)-1]
	MariaDB106 = maria[len(maria)-1]

	dialect.Alias("mysql", MySQL80.Name)
	dialect.Alias("mariadb", MariaDB106.Name)
	dialect.SetDefault(MySQL80)
}

// ReadWords parses one embedded word list, e.g. "common.txt" or "mysql/8.0.txt".
func ReadWords(file string) ([]dialect.Word, error) {
	data, err := wordFS.ReadFile(path.Join("words", file))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	words, err := dialect.ParseWordList(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}
	return words, nil
}

// BuildFamily builds the contexts of a family. Every version inherits the
// keywords of the previous one.
func BuildFamily(versions []Version) ([]*dialect.Dialect, error) {
	common, err := ReadWords("common.txt")
	if err != nil {
		return nil, err
	}

	var (
		out  []*dialect.Dialect
		prev *dialect.Dialect
	)
	for _, v := range versions {
		words, err := ReadWords(v.File)
		if err != nil {
			return nil, err
		}
		b := dialect.NewDialect(v.Name).
			Family(v.Family).
			Version(v.Number).
			Link(v.DocLink)
		if prev == nil {
			b = b.Words(common)
		} else {
			b = b.Inherit(prev)
		}
		prev = b.Words(words).Build()
		out = append(out, prev)
	}
	return out, nil
}

func mustBuildFamily(versions []Version) []*dialect.Dialect {
	ds, err := BuildFamily(versions)
	if err != nil {
		panic(fmt.Sprintf("mysql: embedded word lists are invalid: %v", err))
	}
	return ds
}
