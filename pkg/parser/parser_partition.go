package parser

import (
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/token"
)

// Partition definitions.
//
// Grammar:
//
//	partitions → "(" partition ("," partition)* ")"
//	partition  → (PARTITION | SUBPARTITION) name
//	             [VALUES (LESS THAN ("(" ... ")" | MAXVALUE) | IN "(" ... ")")]
//	             partition_option* [partitions]

// PartitionOptions are the options of one partition.
var PartitionOptions = OptionTable{
	"ENGINE":          OptVar(1),
	"STORAGE ENGINE":  OptVar(1),
	"COMMENT":         OptVar(2),
	"DATA DIRECTORY":  OptVar(3),
	"INDEX DIRECTORY": OptVar(4),
	"MAX_ROWS":        OptVar(5),
	"MIN_ROWS":        OptVar(6),
	"TABLESPACE":      OptVar(7),
	"NODEGROUP":       OptVar(8),
}

// PartitionDefinition is one PARTITION or SUBPARTITION entry.
type PartitionDefinition struct {
	IsSubpartition bool
	Name           string
	Type           string // "LESS THAN" or "IN", empty without VALUES
	Expr           string // bound as written: "(...)" or MAXVALUE
	Options        *OptionsArray
	Subpartitions  []*PartitionDefinition
}

// Build returns the partition definition.
func (d *PartitionDefinition) Build() string {
	kw := "PARTITION"
	if d.IsSubpartition {
		kw = "SUBPARTITION"
	}
	values := ""
	if d.Type != "" {
		values = "VALUES " + d.Type + " " + d.Expr
	}
	subs := ""
	if len(d.Subpartitions) > 0 {
		subs = BuildPartitions(d.Subpartitions)
	}
	return join(kw, d.Name, values, d.Options.Build(), subs)
}

// BuildPartitions returns "(def, def)".
func BuildPartitions(defs []*PartitionDefinition) string {
	parts := make([]string, len(defs))
	for i, d := range defs {
		parts[i] = d.Build()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ParsePartitionList parses a bracketed list of partition definitions. The
// cursor must be on "(".
func ParsePartitionList(p *Parser) []*PartitionDefinition {
	s := p.stream
	open := s.Peek()
	if !open.IsOperator("(") {
		p.error(CodeMissingToken, ErrOpeningBracket, open)
		return nil
	}
	s.Next()

	var ret []*PartitionDefinition
	for {
		tok := s.Peek()
		if !tok.IsKeyword("PARTITION", "SUBPARTITION") {
			break
		}
		ret = append(ret, ParsePartitionDefinition(p))
		if _, ok := s.NextOfKindAndValue(token.Operator, ","); !ok {
			break
		}
	}
	if _, ok := s.NextOfKindAndValue(token.Operator, ")"); !ok {
		p.error(CodeMissingToken, ErrClosingBracket, s.Peek())
	}
	return ret
}

// ParsePartitionDefinition parses one definition. The cursor must be on
// PARTITION or SUBPARTITION.
func ParsePartitionDefinition(p *Parser) *PartitionDefinition {
	s := p.stream
	kw := s.Next()
	ret := &PartitionDefinition{IsSubpartition: kw.IsKeyword("SUBPARTITION")}

	name := s.Peek()
	if isName(name) {
		s.Next()
		ret.Name = name.Raw
	} else {
		p.error(CodeMissingToken, ErrNameExpected, name)
	}

	if _, ok := s.NextOfKindAndValue(token.Keyword, "VALUES"); ok {
		switch next := s.Peek(); {
		case next.IsKeyword("LESS"):
			s.Next()
			if _, ok := s.NextOfKindAndValue(token.Keyword, "THAN"); !ok {
				p.error(CodeMissingToken, ErrUnexpectedToken, s.Peek())
			}
			ret.Type = "LESS THAN"
		case next.IsKeyword("IN"):
			s.Next()
			ret.Type = "IN"
		default:
			p.error(CodeUnexpectedToken, ErrUnexpectedToken, next)
		}
		if ret.Type != "" {
			switch bound := s.Peek(); {
			case bound.IsOperator("("):
				ret.Expr = parseParenGroup(p)
			case bound.IsKeyword("MAXVALUE"):
				s.Next()
				ret.Expr = bound.Value
			default:
				p.error(CodeMissingToken, ErrOpeningBracket, bound)
			}
		}
	}

	ret.Options = ParseOptions(p, PartitionOptions)
	if s.Peek().IsOperator("(") && s.PeekAt(1).IsKeyword("SUBPARTITION") {
		ret.Subpartitions = ParsePartitionList(p)
	}
	return ret
}
