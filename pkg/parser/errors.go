package parser

import (
	"fmt"

	"github.com/BackEndTea/sql-parser/pkg/token"
)

// ErrorKind classifies where an error was detected.
type ErrorKind int

// Error kinds.
const (
	ErrorKindLex ErrorKind = iota
	ErrorKindParse
	ErrorKindStructural
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindLex:
		return "lexer"
	case ErrorKindParse:
		return "parse"
	case ErrorKindStructural:
		return "structure"
	default:
		return "unknown"
	}
}

// Code identifies an error condition independently of its message.
type Code int

// Error codes.
const (
	CodeUnknown Code = iota
	CodeUnterminatedString
	CodeUnterminatedComment
	CodeUnexpectedCharacter
	CodeUnexpectedToken
	CodeMissingToken
	CodeArityMismatch
	CodeDuplicate
	CodeMissingDelimiter
	CodeMissingComma
	CodeUnrecognized
	CodeUnexpectedStatement
)

var codeNames = map[Code]string{
	CodeUnknown:             "unknown",
	CodeUnterminatedString:  "unterminated string",
	CodeUnterminatedComment: "unterminated comment",
	CodeUnexpectedCharacter: "unexpected character",
	CodeUnexpectedToken:     "unexpected token",
	CodeMissingToken:        "missing token",
	CodeArityMismatch:       "arity mismatch",
	CodeDuplicate:           "duplicate",
	CodeMissingDelimiter:    "missing delimiter",
	CodeMissingComma:        "missing comma",
	CodeUnrecognized:        "unrecognized",
	CodeUnexpectedStatement: "unexpected statement",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error is a non-fatal problem found while lexing or parsing. Errors are
// collected, never thrown: the pass always continues with a best-effort
// result.
type Error struct {
	Kind    ErrorKind
	Code    Code
	Message string
	Text    string // offending raw text
	Pos     token.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error at line %d, column %d: %s [%s]", e.Kind, e.Pos.Line, e.Pos.Column, e.Message, e.Code)
}

// Error messages.
const (
	ErrEndingQuote          = "Ending quote %s was expected."
	ErrEndingComment        = "Ending of comment was expected."
	ErrUnexpectedCharacter  = "Unexpected character."
	ErrInvalidEncoding      = "Invalid UTF-8 byte."
	ErrMalformedLiteral     = "Invalid digit in a hexadecimal or bit-value literal."
	ErrUnexpectedToken      = "Unexpected token."
	ErrUnexpectedKeyword    = "Unexpected keyword."
	ErrUnexpectedStatement  = "Unexpected beginning of statement."
	ErrMissingDelimiter     = "A new statement was found, but no delimiter between it and the previous one."
	ErrMissingComma         = "Missing comma before start of a new alter operation."
	ErrUnrecognizedAlter    = "Unrecognized alter operation."
	ErrUnrecognizedDataType = "Unrecognized data type."
	ErrOptionConflict       = "This option conflicts with \"%s\"."
	ErrValueExpected        = "Value/Expression for the option %s was expected."
	ErrOffsetExpected       = "An offset was expected."
	ErrDuplicateOffset      = "Duplicate OFFSET."
	ErrArity                = "%d values were expected, but found %d."
	ErrValuesExpected       = "An opening bracket followed by a set of values was expected."
	ErrOpeningBracket       = "An opening bracket was expected."
	ErrClosingBracket       = "A closing bracket was expected."
	ErrMissingExpression    = "Missing expression."
	ErrNameExpected         = "A name was expected."
	ErrAliasExpected        = "An alias was expected."
	ErrNumberExpected       = "A number was expected."
)
