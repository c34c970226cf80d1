package parser

import (
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/token"
)

// Data types.
//
// Grammar:
//
//	data_type → NAME ["(" params ")"] data_type_option*
//
// ENUM and SET keep their parameters as written, other types keep the
// evaluated values.

// DataTypeOptions are the attributes allowed after a data type.
var DataTypeOptions = OptionTable{
	"BINARY":        OptFlag(1),
	"CHARACTER SET": OptVar(2),
	"CHARSET":       OptVar(2),
	"COLLATE":       OptVar(3),
	"UNSIGNED":      OptFlag(4),
	"ZEROFILL":      OptFlag(5),
}

// DataType is a column type such as INT(10) UNSIGNED.
type DataType struct {
	Name       string // as written
	Parameters []string
	Options    *OptionsArray
	// Lowercase makes Build lowercase the name.
	Lowercase bool
}

// Build returns the type with its parameters and options.
func (d *DataType) Build() string {
	if d == nil {
		return ""
	}
	name := d.Name
	if d.Lowercase {
		name = strings.ToLower(name)
	}
	if len(d.Parameters) > 0 {
		name += "(" + strings.Join(d.Parameters, ",") + ")"
	}
	return strings.TrimSpace(join(name, d.Options.Build()))
}

// ParseDataType parses a data type at the cursor. A name that the dialect
// does not classify as a data type is reported but still used.
func ParseDataType(p *Parser) *DataType {
	s := p.stream
	tok := s.Peek()
	if tok.Kind == token.EOF || tok.Kind == token.Delimiter {
		return nil
	}
	if !tok.Has(token.FlagDataType) {
		p.error(CodeUnrecognized, ErrUnrecognizedDataType, tok)
	}
	s.Next()

	ret := &DataType{Name: tok.Raw}
	if s.Peek().IsOperator("(") {
		params := ParseArray(p)
		if params != nil {
			switch strings.ToUpper(tok.Value) {
			case "ENUM", "SET":
				ret.Parameters = params.Raw
			default:
				ret.Parameters = params.Values
			}
		}
	}
	ret.Options = ParseOptions(p, DataTypeOptions)
	return ret
}
