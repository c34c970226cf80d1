package parser

import (
	"strconv"

	"github.com/BackEndTea/sql-parser/pkg/token"
)

// LIMIT clause.
//
// Grammar:
//
//	limit → row_count [OFFSET offset]
//	      | offset "," row_count
//
// The comma form is recognized after the fact: the number read before the
// comma becomes the offset. Only the first OFFSET counts; a second one is
// reported and its value dropped. A clause without a row count is reported
// and builds as 0.

// Limit holds the values of a LIMIT clause.
type Limit struct {
	RowCount  int64
	Offset    int64
	HasOffset bool
	// OffsetKeyword is set when the offset was given with OFFSET rather
	// than the comma form.
	OffsetKeyword bool
}

// Build returns the clause body in the form it was written.
func (l *Limit) Build() string {
	if l == nil {
		return ""
	}
	rows := strconv.FormatInt(l.RowCount, 10)
	switch {
	case !l.HasOffset:
		return rows
	case l.OffsetKeyword:
		return rows + " OFFSET " + strconv.FormatInt(l.Offset, 10)
	default:
		return strconv.FormatInt(l.Offset, 10) + ", " + rows
	}
}

// ParseLimit parses the body of a LIMIT clause; the caller consumes LIMIT.
func ParseLimit(p *Parser) *Limit {
	s := p.stream
	ret := &Limit{}
	var offsetTok token.Token
	expectOffset := false
	duplicate := false
	hasRows := false

	for {
		tok := s.Peek()
		switch {
		case tok.IsKeyword("OFFSET"):
			s.Next()
			if ret.HasOffset || expectOffset {
				p.error(CodeDuplicate, ErrDuplicateOffset, tok)
				duplicate = true
				continue
			}
			expectOffset = true
			offsetTok = tok
			continue

		case tok.IsOperator(","):
			s.Next()
			ret.Offset = ret.RowCount
			ret.HasOffset = true
			ret.OffsetKeyword = false
			ret.RowCount = 0
			hasRows = false
			continue

		case tok.Kind == token.Number:
			n, err := tok.Int64()
			if err != nil {
				p.error(CodeUnexpectedToken, ErrNumberExpected, tok)
			}
			s.Next()
			switch {
			case duplicate:
				duplicate = false
			case expectOffset:
				ret.Offset, ret.HasOffset, ret.OffsetKeyword = n, true, true
				expectOffset = false
			default:
				ret.RowCount, hasRows = n, true
			}
			continue
		}
		break
	}

	if expectOffset {
		p.error(CodeMissingToken, ErrOffsetExpected, offsetTok)
	}
	if !hasRows {
		p.error(CodeMissingToken, ErrNumberExpected, s.Peek())
	}
	return ret
}
