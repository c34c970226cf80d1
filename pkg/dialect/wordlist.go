package dialect

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/token"
)

// Word is one entry of a keyword word list.
type Word struct {
	Text   string
	Flags  token.Flag
	Remove bool // "-WORD" lines drop a previously defined keyword
}

// labelFlags maps word-list labels to keyword flags.
var labelFlags = []struct {
	label string
	flag  token.Flag
}{
	{"(R)", token.FlagReserved},
	{"(D)", token.FlagDataType},
	{"(K)", token.FlagKey},
	{"(F)", token.FlagFunction},
}

// ParseWordList reads a keyword word list.
//
// One keyword per line, optionally followed by labels: (R) reserved,
// (D) data type, (K) key, (F) function. Blank lines and lines starting
// with "#" are ignored. A line starting with "-" removes the keyword.
// Entries for the same word are merged by OR-ing their flags.
func ParseWordList(src string) ([]Word, error) {
	var out []Word
	index := make(map[string]int)

	sc := bufio.NewScanner(strings.NewReader(src))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		if strings.HasPrefix(text, "-") {
			w := normalizeWord(text[1:])
			if w == "" {
				return nil, fmt.Errorf("line %d: empty removal", line)
			}
			out = append(out, Word{Text: w, Remove: true})
			delete(index, w)
			continue
		}

		flags := token.FlagKeyword
		for _, lf := range labelFlags {
			if strings.Contains(text, lf.label) {
				flags |= lf.flag
				text = strings.ReplaceAll(text, lf.label, "")
			}
		}
		if strings.ContainsAny(text, "()") {
			return nil, fmt.Errorf("line %d: unknown label in %q", line, sc.Text())
		}

		w := normalizeWord(text)
		if strings.Contains(w, " ") {
			flags |= token.FlagReserved | token.FlagComposed
		}

		if i, ok := index[w]; ok {
			out[i].Flags |= flags
			continue
		}
		index[w] = len(out)
		out = append(out, Word{Text: w, Flags: flags})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading word list: %w", err)
	}
	return out, nil
}

// FormatWord renders an entry back into word-list syntax.
func FormatWord(w Word) string {
	if w.Remove {
		return "-" + w.Text
	}
	var b strings.Builder
	b.WriteString(w.Text)
	for _, lf := range labelFlags {
		if lf.flag == token.FlagReserved && w.Flags.Has(token.FlagComposed) {
			continue
		}
		if w.Flags.Has(lf.flag) {
			b.WriteByte(' ')
			b.WriteString(lf.label)
		}
	}
	return b.String()
}
