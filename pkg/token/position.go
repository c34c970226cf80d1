package token

import "fmt"

// Position represents a location in the source code.
// Column and Offset count code points, not bytes.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based code point offset
	Byte   int // 0-based byte offset
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
