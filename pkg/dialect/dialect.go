// Package dialect provides keyword contexts for the SQL lexer.
//
// A Dialect maps uppercased keyword text to the classification flags of
// package token (reserved, data type, key, function, composed). It is
// immutable once built, so one instance can be shared by any number of
// concurrent lex and parse passes. Concrete MySQL and MariaDB contexts are
// registered from pkg/dialects/mysql.
package dialect

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/token"
)

// Family identifies the database product a dialect describes.
type Family string

// Supported families.
const (
	FamilyMySQL   Family = "mysql"
	FamilyMariaDB Family = "mariadb"
)

// ErrEmptyDialect is returned when a dialect carries no keywords at all.
var ErrEmptyDialect = errors.New("dialect has no keywords")

// Dialect is an immutable keyword context for one database version.
type Dialect struct {
	Name    string // registry name, e.g. "mysql-8.0"
	Family  Family
	Version int    // encoded as MMmmpp, e.g. 80000 for 8.0
	Link    string // documentation of the keyword list

	keywords map[string]token.Flag

	// composed maps the first word of each multi-word keyword to the
	// word sequences starting with it, longest first.
	composed map[string][][]string
}

// Lookup returns the flags of a keyword. The word is matched case-insensitively;
// composed keywords are looked up with single spaces between words.
func (d *Dialect) Lookup(word string) (token.Flag, bool) {
	f, ok := d.keywords[strings.ToUpper(word)]
	return f, ok
}

// IsKeyword reports whether word is known to the dialect.
func (d *Dialect) IsKeyword(word string) bool {
	_, ok := d.Lookup(word)
	return ok
}

// IsReserved reports whether word is a reserved keyword in this dialect.
func (d *Dialect) IsReserved(word string) bool {
	f, ok := d.Lookup(word)
	return ok && f.Has(token.FlagReserved)
}

// Composed returns the multi-word keywords beginning with first, each split
// into its words. Longer sequences come first so callers can match greedily.
func (d *Dialect) Composed(first string) [][]string {
	return d.composed[strings.ToUpper(first)]
}

// Len returns the number of keywords.
func (d *Dialect) Len() int {
	return len(d.keywords)
}

// Keywords returns all keywords in sorted order.
func (d *Dialect) Keywords() []string {
	out := make([]string, 0, len(d.keywords))
	for kw := range d.keywords {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

// KeywordsWith returns the sorted keywords carrying all bits of f.
func (d *Dialect) KeywordsWith(f token.Flag) []string {
	var out []string
	for kw, flags := range d.keywords {
		if flags.Has(f) {
			out = append(out, kw)
		}
	}
	sort.Strings(out)
	return out
}

// ClassName returns the versioned context name, e.g. "MySql80000".
func (d *Dialect) ClassName() string {
	switch d.Family {
	case FamilyMariaDB:
		return fmt.Sprintf("MariaDb%d", d.Version)
	default:
		return fmt.Sprintf("MySql%d", d.Version)
	}
}

// DisplayName returns a human readable name, e.g. "MySQL 8.0".
func (d *Dialect) DisplayName() string {
	return FormatName(d.ClassName())
}

// Validate returns an error when the dialect cannot drive a lexer.
func Validate(d *Dialect) error {
	if d == nil {
		return ErrDialectRequired
	}
	if len(d.keywords) == 0 {
		return fmt.Errorf("%s: %w", d.Name, ErrEmptyDialect)
	}
	return nil
}

// FormatName turns a context class name such as "MySql50700" or
// "MariaDb100600" into "MySQL 5.7" or "MariaDB 10.6". Names without a
// version part are returned with only the product renamed.
func FormatName(name string) string {
	i := strings.IndexFunc(name, func(r rune) bool { return r >= '0' && r <= '9' })
	if i < 0 {
		return productName(name)
	}
	base, digits := productName(name[:i]), name[i:]
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}

	var parts []int
	for j := 0; j+2 <= len(digits); j += 2 {
		parts = append(parts, int(digits[j]-'0')*10+int(digits[j+1]-'0'))
	}
	if len(parts) > 1 && parts[len(parts)-1] == 0 {
		parts = parts[:len(parts)-1]
	}

	strs := make([]string, len(parts))
	for j, p := range parts {
		strs[j] = fmt.Sprint(p)
	}
	return base + " " + strings.Join(strs, ".")
}

func productName(base string) string {
	switch base {
	case "MySql":
		return "MySQL"
	case "MariaDb":
		return "MariaDB"
	}
	return base
}

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	d *Dialect
}

// NewDialect starts building a dialect with the given registry name.
func NewDialect(name string) *Builder {
	return &Builder{d: &Dialect{
		Name:     strings.ToLower(name),
		Family:   FamilyMySQL,
		keywords: make(map[string]token.Flag),
	}}
}

// Family sets the database family.
func (b *Builder) Family(f Family) *Builder {
	b.d.Family = f
	return b
}

// Version sets the encoded version number (MMmmpp).
func (b *Builder) Version(v int) *Builder {
	b.d.Version = v
	return b
}

// Link sets the documentation link of the keyword list.
func (b *Builder) Link(url string) *Builder {
	b.d.Link = url
	return b
}

// Inherit copies every keyword of parent into the dialect being built.
func (b *Builder) Inherit(parent *Dialect) *Builder {
	if parent == nil {
		return b
	}
	for kw, f := range parent.keywords {
		b.d.keywords[kw] = f
	}
	return b
}

// Keyword adds a keyword with the given flags. FlagKeyword is always set,
// and words containing a space are additionally reserved and composed.
func (b *Builder) Keyword(word string, flags token.Flag) *Builder {
	word = normalizeWord(word)
	if word == "" {
		return b
	}
	flags |= token.FlagKeyword
	if strings.Contains(word, " ") {
		flags |= token.FlagReserved | token.FlagComposed
	}
	b.d.keywords[word] |= flags
	return b
}

// Keywords adds every entry of the map, see Keyword.
func (b *Builder) Keywords(words map[string]token.Flag) *Builder {
	for w, f := range words {
		b.Keyword(w, f)
	}
	return b
}

// Remove deletes keywords, typically ones inherited from an older version.
func (b *Builder) Remove(words ...string) *Builder {
	for _, w := range words {
		delete(b.d.keywords, normalizeWord(w))
	}
	return b
}

// Words applies parsed word-list entries in order.
func (b *Builder) Words(entries []Word) *Builder {
	for _, e := range entries {
		if e.Remove {
			b.Remove(e.Text)
			continue
		}
		b.Keyword(e.Text, e.Flags)
	}
	return b
}

// Build finalizes the dialect and indexes its composed keywords.
func (b *Builder) Build() *Dialect {
	d := b.d
	d.composed = make(map[string][][]string)
	for kw, f := range d.keywords {
		if !f.Has(token.FlagComposed) {
			continue
		}
		parts := strings.Fields(kw)
		d.composed[parts[0]] = append(d.composed[parts[0]], parts)
	}
	for first, seqs := range d.composed {
		sort.Slice(seqs, func(i, j int) bool {
			if len(seqs[i]) != len(seqs[j]) {
				return len(seqs[i]) > len(seqs[j])
			}
			return strings.Join(seqs[i], " ") < strings.Join(seqs[j], " ")
		})
		d.composed[first] = seqs
	}
	b.d = nil
	return d
}

func normalizeWord(w string) string {
	return strings.ToUpper(strings.Join(strings.Fields(w), " "))
}
