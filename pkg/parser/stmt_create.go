package parser

import (
	"strings"

	"github.com/BackEndTea/sql-parser/pkg/token"
)

// CREATE TABLE and CREATE DATABASE statements.
//
// Grammar:
//
//	create_table    → CREATE [TEMPORARY] TABLE [IF NOT EXISTS] name
//	                  ( LIKE name
//	                  | "(" create_definition ("," create_definition)* ")"
//	                    table_option* [PARTITION BY ... [partitions]] [[AS] select]
//	                  | [AS] select )
//	create_database → CREATE (DATABASE | SCHEMA) [IF NOT EXISTS] name db_option*
//	create_definition → name data_type field_option* token*
//	                  | key_definition

// CreateTableOptions come between CREATE and the table name.
var CreateTableOptions = OptionTable{
	"TEMPORARY":     OptFlag(1),
	"TABLE":         OptFlag(2),
	"IF NOT EXISTS": OptFlag(3),
}

// CreateDatabaseOptions come between CREATE and the database name.
var CreateDatabaseOptions = OptionTable{
	"DATABASE":      OptFlag(1),
	"SCHEMA":        OptFlag(1),
	"IF NOT EXISTS": OptFlag(2),
}

// DatabaseEntityOptions follow the database name.
var DatabaseEntityOptions = OptionTable{
	"CHARACTER SET":         OptVar(1),
	"CHARSET":               OptVar(1),
	"DEFAULT CHARACTER SET": OptVar(1),
	"DEFAULT CHARSET":       OptVar(1),
	"COLLATE":               OptVar(2),
	"DEFAULT COLLATE":       OptVar(2),
	"ENCRYPTION":            OptVar(3),
}

// TableEntityOptions follow the column definitions.
var TableEntityOptions = OptionTable{
	"ENGINE":                 OptVar(1),
	"AUTO_INCREMENT":         OptVar(2),
	"AVG_ROW_LENGTH":         OptVar(3),
	"CHARACTER SET":          OptVar(4),
	"CHARSET":                OptVar(4),
	"DEFAULT CHARACTER SET":  OptVar(4),
	"DEFAULT CHARSET":        OptVar(4),
	"CHECKSUM":               OptVar(5),
	"COLLATE":                OptVar(6),
	"DEFAULT COLLATE":        OptVar(6),
	"COMMENT":                OptVar(7),
	"CONNECTION":             OptVar(8),
	"DATA DIRECTORY":         OptVar(9),
	"DELAY_KEY_WRITE":        OptVar(10),
	"INDEX DIRECTORY":        OptVar(11),
	"INSERT_METHOD":          OptVar(12),
	"KEY_BLOCK_SIZE":         OptVar(13),
	"MAX_ROWS":               OptVar(14),
	"MIN_ROWS":               OptVar(15),
	"PACK_KEYS":              OptVar(16),
	"PASSWORD":               OptVar(17),
	"ROW_FORMAT":             OptVar(18),
	"TABLESPACE":             OptVar(19),
	"STORAGE":                OptVar(20),
	"UNION":                  OptVar(21),
	"PAGE_COMPRESSED":        OptVar(22),
	"PAGE_COMPRESSION_LEVEL": OptVar(23),
	"ENCRYPTION":             OptVar(24),
	"STATS_AUTO_RECALC":      OptVar(25),
	"STATS_PERSISTENT":       OptVar(26),
}

// FieldOptions follow a column's data type.
var FieldOptions = OptionTable{
	"NOT NULL":       OptFlag(1),
	"NULL":           OptFlag(1),
	"DEFAULT":        OptExpr(2),
	"AUTO_INCREMENT": OptFlag(3),
	"PRIMARY":        OptFlag(4),
	"PRIMARY KEY":    OptFlag(4),
	"UNIQUE":         OptFlag(4),
	"UNIQUE KEY":     OptFlag(4),
	"COMMENT":        OptVar(5),
	"COLUMN_FORMAT":  OptVar(6),
	"ON UPDATE":      OptExpr(7),
	"AS":             OptExpr(8),
	"VIRTUAL":        OptFlag(10),
	"STORED":         OptFlag(10),
	"PERSISTENT":     OptFlag(10),
	"VISIBLE":        OptFlag(11),
	"INVISIBLE":      OptFlag(11),
}

// keyDefinitionStarts begin an index or constraint entry.
var keyDefinitionStarts = map[string]bool{
	"PRIMARY": true, "PRIMARY KEY": true, "KEY": true, "INDEX": true,
	"UNIQUE": true, "UNIQUE KEY": true, "UNIQUE INDEX": true,
	"FULLTEXT": true, "FULLTEXT KEY": true, "FULLTEXT INDEX": true,
	"SPATIAL": true, "SPATIAL KEY": true, "SPATIAL INDEX": true,
	"FOREIGN KEY": true, "CONSTRAINT": true, "CHECK": true,
}

// CreateDefinition is one entry of a CREATE TABLE body: a column or a key.
type CreateDefinition struct {
	Name    string // column name as written
	Type    *DataType
	Options *OptionsArray
	Key     string // key or constraint definition as written
	Extra   string // column text the grammar does not model
}

// IsKey reports whether the entry defines an index or constraint.
func (d *CreateDefinition) IsKey() bool {
	return d.Key != ""
}

// Build returns the definition.
func (d *CreateDefinition) Build() string {
	if d.IsKey() {
		return d.Key
	}
	return join(d.Name, d.Type.Build(), d.Options.Build(), d.Extra)
}

// CreateStatement is a CREATE TABLE or CREATE DATABASE.
type CreateStatement struct {
	Object        string // TABLE or DATABASE
	Options       *OptionsArray
	Name          *Expression
	Like          *Expression
	Fields        []*CreateDefinition
	EntityOptions *OptionsArray
	PartitionBy   string
	Partitions    []*PartitionDefinition
	As            bool
	Select        *SelectStatement
	Tail          string
}

func (*CreateStatement) stmtNode() {}

// Keyword returns "CREATE TABLE" or "CREATE DATABASE".
func (s *CreateStatement) Keyword() string { return "CREATE " + s.Object }

// Build returns the statement text.
func (s *CreateStatement) Build() string {
	like := ""
	if s.Like != nil {
		like = "LIKE " + s.Like.Build()
	}
	fields := ""
	if s.Fields != nil {
		parts := make([]string, len(s.Fields))
		for i, f := range s.Fields {
			parts[i] = f.Build()
		}
		fields = "(" + strings.Join(parts, ", ") + ")"
	}
	partition := ""
	if s.PartitionBy != "" {
		partition = "PARTITION BY " + s.PartitionBy
	}
	if len(s.Partitions) > 0 {
		partition = join(partition, BuildPartitions(s.Partitions))
	}
	as := ""
	if s.As {
		as = "AS"
	}
	return join("CREATE", s.Options.Build(), s.Name.Build(), like, fields,
		s.EntityOptions.Build(), partition, as, s.Select.Build(), s.Tail)
}

func parseCreateDatabase(p *Parser) Statement {
	s := p.stream
	s.Next()
	stmt := &CreateStatement{Object: "DATABASE", Options: ParseOptions(p, CreateDatabaseOptions)}
	stmt.Name = ParseExpression(p, ExprOptions{BreakOnAlias: true, ParseField: FieldTable})
	if stmt.Name == nil {
		p.error(CodeMissingToken, ErrNameExpected, s.Peek())
	}
	stmt.EntityOptions = ParseOptions(p, DatabaseEntityOptions)
	stmt.Tail = p.parseTail()
	return stmt
}

func parseCreateTable(p *Parser) Statement {
	s := p.stream
	s.Next()
	stmt := &CreateStatement{Object: "TABLE", Options: ParseOptions(p, CreateTableOptions)}
	stmt.Name = ParseExpression(p, ExprOptions{BreakOnAlias: true, ParseField: FieldTable})
	if stmt.Name == nil {
		p.error(CodeMissingToken, ErrNameExpected, s.Peek())
	}

	if _, ok := s.NextOfKindAndValue(token.Keyword, "LIKE"); ok {
		stmt.Like = ParseExpression(p, ExprOptions{BreakOnAlias: true, ParseField: FieldTable})
		if stmt.Like == nil {
			p.error(CodeMissingToken, ErrNameExpected, s.Peek())
		}
		stmt.Tail = p.parseTail()
		return stmt
	}

	if s.Peek().IsOperator("(") && !s.PeekAt(1).IsKeyword("SELECT") {
		stmt.Fields = ParseCreateDefinitions(p)
	}
	stmt.EntityOptions = ParseOptions(p, TableEntityOptions)

	if _, ok := s.NextOfKindAndValue(token.Keyword, "PARTITION BY"); ok {
		stmt.PartitionBy = p.parsePartitionBy()
		if s.Peek().IsOperator("(") {
			stmt.Partitions = ParsePartitionList(p)
		}
	}

	if _, ok := s.NextOfKindAndValue(token.Keyword, "AS"); ok {
		stmt.As = true
	}
	if tok := s.Peek(); tok.IsKeyword("SELECT") || tok.IsOperator("(") && s.PeekAt(1).IsKeyword("SELECT") {
		stmt.Select = parseSelectBody(p)
	} else if stmt.As {
		p.error(CodeMissingToken, ErrUnexpectedToken, tok)
	}

	stmt.Tail = p.parseTail()
	return stmt
}

// parsePartitionBy returns the partitioning text up to the partition list.
func (p *Parser) parsePartitionBy() string {
	s := p.stream
	s.Skip()
	start, end := s.Idx, s.Idx
	depth := 0
	for {
		tok := s.Current()
		if tok.Kind == token.EOF || tok.Kind == token.Delimiter {
			break
		}
		if !tok.IsTrivia() {
			if depth == 0 && tok.IsOperator("(") && s.PeekAt(1).IsKeyword("PARTITION") {
				break
			}
			if depth == 0 && (tok.IsKeyword("AS", "SELECT") || tok.IsOperator(")")) {
				break
			}
			switch {
			case tok.IsOperator("("):
				depth++
			case tok.IsOperator(")"):
				depth--
			}
		}
		s.Advance()
		if !tok.IsTrivia() {
			end = s.Idx
		}
	}
	s.Reset(end)
	return strings.TrimSpace(s.Build(start, end))
}

// ParseCreateDefinitions parses the bracketed body of CREATE TABLE. The
// cursor must be on "(".
func ParseCreateDefinitions(p *Parser) []*CreateDefinition {
	s := p.stream
	open := s.Next()
	ret := []*CreateDefinition{}
	for {
		tok := s.Peek()
		if tok.IsOperator(")") {
			s.Next()
			return ret
		}
		if tok.Kind == token.EOF || tok.Kind == token.Delimiter {
			p.error(CodeMissingToken, ErrClosingBracket, open)
			return ret
		}

		ret = append(ret, parseCreateDefinition(p))

		switch next := s.Peek(); {
		case next.IsOperator(","):
			s.Next()
		case next.IsOperator(")"):
		default:
			p.error(CodeMissingToken, ErrClosingBracket, next)
			return ret
		}
	}
}

func parseCreateDefinition(p *Parser) *CreateDefinition {
	s := p.stream
	tok := s.Peek()
	if tok.Kind == token.Keyword && keyDefinitionStarts[tok.Value] {
		return &CreateDefinition{Key: p.parseItemRaw()}
	}

	ret := &CreateDefinition{}
	if isName(tok) {
		s.Next()
		ret.Name = tok.Raw
	} else {
		p.error(CodeMissingToken, ErrNameExpected, tok)
	}
	ret.Type = ParseDataType(p)
	ret.Options = ParseOptions(p, FieldOptions)
	ret.Extra = p.parseItemRaw()
	return ret
}

// parseItemRaw consumes tokens up to a depth-0 "," or ")" and returns them
// as written.
func (p *Parser) parseItemRaw() string {
	s := p.stream
	s.Skip()
	start, end := s.Idx, s.Idx
	depth := 0
	for {
		tok := s.Current()
		if tok.Kind == token.EOF || tok.Kind == token.Delimiter {
			break
		}
		if depth == 0 && (tok.IsOperator(",") || tok.IsOperator(")")) {
			break
		}
		switch {
		case tok.IsOperator("("):
			depth++
		case tok.IsOperator(")"):
			depth--
		}
		s.Advance()
		if !tok.IsTrivia() {
			end = s.Idx
		}
	}
	s.Reset(end)
	return strings.TrimSpace(s.Build(start, end))
}
