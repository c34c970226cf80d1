package parser

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/BackEndTea/sql-parser/pkg/dialect"
	"github.com/BackEndTea/sql-parser/pkg/token"
)

const eof = -1

// operators lists multi-character operators, longest first.
var operators = []string{
	"<=>", "->>",
	":=", "<=", ">=", "<>", "!=", "<<", ">>", "&&", "||", "->",
}

const singleOperators = "+-*/%=<>!&|^~(),.;:{}[]"

// cursor is a resumable scan position.
type cursor struct {
	off  int // code point offset
	line int
	col  int
	byte int
}

func (c cursor) position() token.Position {
	return token.Position{Line: c.line, Column: c.col, Offset: c.off, Byte: c.byte}
}

// Lexer tokenizes SQL input against one keyword context.
type Lexer struct {
	input   string
	src     []rune
	width   []uint8 // encoded size of each entry of src
	cur     cursor
	start   cursor
	dialect *dialect.Dialect
	cfg     config
	delim   []rune

	tokens []token.Token
	// atStart is true while no significant token follows the last delimiter.
	atStart bool

	// Errors collected while scanning.
	Errors []*Error
}

// NewLexer creates a Lexer for input. It fails only when the dialect is
// missing or empty or the options are invalid.
func NewLexer(input string, d *dialect.Dialect, opts ...Option) (*Lexer, error) {
	if err := dialect.Validate(d); err != nil {
		return nil, err
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	src, width := decode(input)
	return &Lexer{
		input:   input,
		src:     src,
		width:   width,
		cur:     cursor{line: 1, col: 1},
		dialect: d,
		cfg:     cfg,
		delim:   []rune(cfg.delimiter),
		atStart: true,
	}, nil
}

// decode splits input into code points. A byte that is not valid UTF-8
// becomes utf8.RuneError with width 1, so offsets stay exact.
func decode(input string) ([]rune, []uint8) {
	src := make([]rune, 0, len(input))
	width := make([]uint8, 0, len(input))
	for i := 0; i < len(input); {
		r, n := utf8.DecodeRuneInString(input[i:])
		src = append(src, r)
		width = append(width, uint8(n))
		i += n
	}
	return src, width
}

// Tokenize lexes src in one call.
func Tokenize(src string, d *dialect.Dialect, opts ...Option) (*TokenStream, []*Error, error) {
	l, err := NewLexer(src, d, opts...)
	if err != nil {
		return nil, nil, err
	}
	stream := l.Tokenize()
	return stream, l.Errors, nil
}

// Tokenize scans the whole input. The returned stream always ends with an
// EOF token and the Raw text of its tokens concatenates to the input.
func (l *Lexer) Tokenize() *TokenStream {
	for l.cur.off < len(l.src) {
		l.start = l.cur
		l.scan()
	}
	l.start = l.cur
	l.emit(token.EOF, "", 0)
	return NewTokenStream(l.tokens)
}

// Delimiter returns the delimiter active at the current scan position.
func (l *Lexer) Delimiter() string {
	return string(l.delim)
}

func (l *Lexer) scan() {
	r := l.peek(0)
	switch {
	case isSpace(r):
		l.scanWhitespace()
	case l.invalidAt(0):
		l.advance()
		l.emit(token.Invalid, l.raw(), 0)
		l.error(CodeUnexpectedCharacter, ErrInvalidEncoding)
	case l.atComment():
		l.scanComment()
	case l.hasPrefix(l.delim):
		l.skip(len(l.delim))
		l.emit(token.Delimiter, string(l.delim), 0)
	case l.atStart && l.atDelimiterCommand():
		l.scanDelimiterCommand()
	case r == '\'' || r == '"' || r == '`':
		l.scanQuoted()
	case l.atNumber():
		l.scanNumber()
	case r == '@':
		l.scanVariable()
	case r == '?':
		l.advance()
		l.emit(token.Parameter, "?", 0)
	case r == ':' && isWordStart(l.peek(1)):
		l.advance()
		name := l.readWord()
		l.emit(token.Parameter, name, token.FlagNamedParam)
	case l.scanOperator():
	case isWordStart(r):
		l.scanWord()
	default:
		l.advance()
		l.emit(token.Invalid, string(r), 0)
		l.error(CodeUnexpectedCharacter, ErrUnexpectedCharacter)
	}
}

func (l *Lexer) peek(n int) rune {
	if l.cur.off+n >= len(l.src) {
		return eof
	}
	return l.src[l.cur.off+n]
}

func (l *Lexer) advance() {
	r := l.src[l.cur.off]
	l.cur.byte += int(l.width[l.cur.off])
	l.cur.off++
	if r == '\n' {
		l.cur.line++
		l.cur.col = 1
	} else {
		l.cur.col++
	}
}

func (l *Lexer) skip(n int) {
	for i := 0; i < n && l.cur.off < len(l.src); i++ {
		l.advance()
	}
}

func (l *Lexer) hasPrefix(p []rune) bool {
	if len(p) == 0 || l.cur.off+len(p) > len(l.src) {
		return false
	}
	for i, r := range p {
		if l.src[l.cur.off+i] != r {
			return false
		}
	}
	return true
}

// invalidAt reports whether the code point n ahead is an undecodable byte.
func (l *Lexer) invalidAt(n int) bool {
	i := l.cur.off + n
	return i < len(l.src) && l.src[i] == utf8.RuneError && l.width[i] == 1
}

// inWord reports whether the cursor continues a word. A word ends at the
// active delimiter, so "END$$" stops before "$$".
func (l *Lexer) inWord() bool {
	return isWordPart(l.peek(0)) && !l.invalidAt(0) && !l.hasPrefix(l.delim)
}

func (l *Lexer) hasPrefixFold(p string) bool {
	rs := []rune(p)
	if l.cur.off+len(rs) > len(l.src) {
		return false
	}
	return strings.EqualFold(string(l.src[l.cur.off:l.cur.off+len(rs)]), p)
}

func (l *Lexer) raw() string {
	return l.input[l.start.byte:l.cur.byte]
}

func (l *Lexer) emit(kind token.Kind, value string, flags token.Flag) {
	l.tokens = append(l.tokens, token.Token{
		Kind:  kind,
		Raw:   l.raw(),
		Value: value,
		Flags: flags,
		Pos:   l.start.position(),
	})
	switch kind {
	case token.Whitespace, token.Comment, token.EOF:
	case token.Delimiter:
		l.atStart = true
	default:
		l.atStart = false
	}
	l.start = l.cur
}

func (l *Lexer) error(code Code, msg string) {
	l.Errors = append(l.Errors, &Error{
		Kind:    ErrorKindLex,
		Code:    code,
		Message: msg,
		Text:    l.tokens[len(l.tokens)-1].Raw,
		Pos:     l.tokens[len(l.tokens)-1].Pos,
	})
}

func (l *Lexer) last() (token.Token, bool) {
	if len(l.tokens) == 0 {
		return token.Token{}, false
	}
	return l.tokens[len(l.tokens)-1], true
}

// ---------- whitespace and comments ----------

func (l *Lexer) scanWhitespace() {
	for isSpace(l.peek(0)) {
		l.advance()
	}
	l.emit(token.Whitespace, " ", 0)
}

func (l *Lexer) atComment() bool {
	switch l.peek(0) {
	case '#':
		return true
	case '-':
		// "--" starts a comment only when followed by whitespace or end of input.
		return l.peek(1) == '-' && (l.peek(2) == eof || isSpace(l.peek(2)))
	case '/':
		return l.peek(1) == '*'
	}
	return false
}

func (l *Lexer) scanComment() {
	if l.peek(0) != '/' {
		for r := l.peek(0); r != eof && r != '\n'; r = l.peek(0) {
			l.advance()
		}
		l.emit(token.Comment, l.raw(), 0)
		return
	}

	var flags token.Flag
	if l.peek(2) == '!' {
		flags |= token.FlagConditional
	}
	l.skip(2)
	for {
		if l.peek(0) == eof {
			l.emit(token.Comment, l.raw(), flags|token.FlagUnterminated)
			l.error(CodeUnterminatedComment, ErrEndingComment)
			return
		}
		if l.peek(0) == '*' && l.peek(1) == '/' {
			l.skip(2)
			l.emit(token.Comment, l.raw(), flags)
			return
		}
		l.advance()
	}
}

// ---------- DELIMITER command ----------

func (l *Lexer) atDelimiterCommand() bool {
	return l.hasPrefixFold("DELIMITER") && isSpace(l.peek(9))
}

// scanDelimiterCommand emits the DELIMITER keyword, the separating blanks
// and the new delimiter, then switches to it.
func (l *Lexer) scanDelimiterCommand() {
	l.skip(9)
	l.emit(token.Keyword, "DELIMITER", token.FlagKeyword|token.FlagDelimiterDef)

	for r := l.peek(0); r == ' ' || r == '\t'; r = l.peek(0) {
		l.advance()
	}
	if l.cur.off > l.start.off {
		l.emit(token.Whitespace, " ", 0)
	}

	for r := l.peek(0); r != eof && !isSpace(r); r = l.peek(0) {
		l.advance()
	}
	if l.cur.off == l.start.off {
		return
	}
	delim := l.raw()
	l.emit(token.Delimiter, delim, token.FlagDelimiterDef)
	l.delim = []rune(delim)
}

// ---------- quoted strings and identifiers ----------

func (l *Lexer) scanQuoted() {
	q := l.peek(0)
	kind, flags := token.String, token.FlagSingleQuote
	switch q {
	case '"':
		flags = token.FlagDoubleQuote
		if l.cfg.ansiQuotes {
			kind = token.QuotedIdentifier
		}
	case '`':
		kind, flags = token.QuotedIdentifier, token.FlagBacktick
	}

	l.advance()
	value, ok := l.readQuotedBody(q, q != '`')
	if !ok {
		l.emit(kind, value, flags|token.FlagUnterminated)
		l.error(CodeUnterminatedString, fmt.Sprintf(ErrEndingQuote, string(q)))
		return
	}
	l.emit(kind, value, flags)
}

// readQuotedBody reads up to and including the closing quote q and returns
// the unescaped content. ok is false when the input ends first.
func (l *Lexer) readQuotedBody(q rune, backslash bool) (string, bool) {
	var sb strings.Builder
	for {
		r := l.peek(0)
		switch {
		case r == eof:
			return sb.String(), false
		case backslash && r == '\\':
			l.advance()
			e := l.peek(0)
			if e == eof {
				sb.WriteRune('\\')
				return sb.String(), false
			}
			l.advance()
			sb.WriteString(unescape(e))
		case r == q:
			l.advance()
			if l.peek(0) != q {
				return sb.String(), true
			}
			l.advance()
			sb.WriteRune(q)
		default:
			l.advance()
			sb.WriteRune(r)
		}
	}
}

func unescape(r rune) string {
	switch r {
	case '0':
		return "\x00"
	case 'b':
		return "\b"
	case 'n':
		return "\n"
	case 'r':
		return "\r"
	case 't':
		return "\t"
	case 'Z':
		return "\x1a"
	case '%', '_':
		// kept escaped for LIKE patterns
		return "\\" + string(r)
	default:
		return string(r)
	}
}

// ---------- numbers ----------

func (l *Lexer) atNumber() bool {
	r := l.peek(0)
	if isDigit(r) {
		return true
	}
	if r == '.' && isDigit(l.peek(1)) {
		prev, ok := l.last()
		return !ok || !(prev.IsWord() || prev.Kind == token.Operator && prev.Value == ")")
	}
	if (r == 'x' || r == 'X' || r == 'b' || r == 'B') && l.peek(1) == '\'' {
		return true
	}
	return false
}

func (l *Lexer) scanNumber() {
	r, next := l.peek(0), l.peek(1)

	switch {
	case (r == 'x' || r == 'X') && next == '\'':
		l.scanQuotedNumber(16, token.FlagHex)
		return
	case (r == 'b' || r == 'B') && next == '\'':
		l.scanQuotedNumber(2, token.FlagBinary)
		return
	case r == '0' && (next == 'x' || next == 'X') && isHexDigit(l.peek(2)):
		l.skip(2)
		l.scanPrefixedNumber(16, token.FlagHex, isHexDigit)
		return
	case r == '0' && (next == 'b' || next == 'B') && isBinDigit(l.peek(2)):
		l.skip(2)
		l.scanPrefixedNumber(2, token.FlagBinary, isBinDigit)
		return
	}

	var flags token.Flag
	for isDigit(l.peek(0)) {
		l.advance()
	}
	if l.peek(0) == '.' {
		flags |= token.FlagDecimal
		l.advance()
		for isDigit(l.peek(0)) {
			l.advance()
		}
	}
	if e := l.peek(0); e == 'e' || e == 'E' {
		n := 1
		if s := l.peek(1); s == '+' || s == '-' {
			n = 2
		}
		if isDigit(l.peek(n)) {
			flags |= token.FlagApproximate
			l.skip(n)
			for isDigit(l.peek(0)) {
				l.advance()
			}
		}
	}

	// 123abc is a word, not a number followed by an identifier.
	if flags == 0 && l.inWord() {
		l.readWord()
		l.emit(token.Identifier, l.raw(), 0)
		return
	}

	value := l.raw()
	if flags == 0 {
		value = normalizeInteger(value, 10)
	}
	l.emit(token.Number, value, flags)
}

func (l *Lexer) scanPrefixedNumber(base int, flag token.Flag, digit func(rune) bool) {
	for digit(l.peek(0)) {
		l.advance()
	}
	if l.inWord() {
		l.readWord()
		l.emit(token.Identifier, l.raw(), 0)
		return
	}
	l.emit(token.Number, normalizeInteger(l.raw()[2:], base), flag)
}

// scanQuotedNumber reads X'..' and B'..' literals.
func (l *Lexer) scanQuotedNumber(base int, flag token.Flag) {
	l.skip(2)
	var digits strings.Builder
	for {
		r := l.peek(0)
		if r == eof {
			l.emit(token.Number, digits.String(), flag|token.FlagUnterminated)
			l.error(CodeUnterminatedString, fmt.Sprintf(ErrEndingQuote, "'"))
			return
		}
		l.advance()
		if r == '\'' {
			break
		}
		digits.WriteRune(r)
	}
	if digits.Len() == 0 {
		l.emit(token.Number, "", flag)
		return
	}
	n, ok := new(big.Int).SetString(digits.String(), base)
	if !ok {
		l.emit(token.Number, digits.String(), flag)
		l.error(CodeUnexpectedCharacter, ErrMalformedLiteral)
		return
	}
	l.emit(token.Number, n.String(), flag)
}

// normalizeInteger renders digits in the given base as canonical decimal
// text. Invalid digits leave the text unchanged.
func normalizeInteger(digits string, base int) string {
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return digits
	}
	return n.String()
}

// ---------- variables ----------

func (l *Lexer) scanVariable() {
	l.advance()
	flags := token.FlagSessionVar
	if l.peek(0) == '@' {
		l.advance()
		flags = token.FlagGlobalVar
	}

	switch q := l.peek(0); {
	case q == '\'' || q == '"' || q == '`':
		l.advance()
		value, ok := l.readQuotedBody(q, q != '`')
		if !ok {
			l.emit(token.Variable, value, flags|token.FlagUnterminated)
			l.error(CodeUnterminatedString, fmt.Sprintf(ErrEndingQuote, string(q)))
			return
		}
		l.emit(token.Variable, value, flags)
	case l.inWord():
		var sb strings.Builder
		for r := l.peek(0); l.inWord() || r == '.' && isWordPart(l.peek(1)); r = l.peek(0) {
			sb.WriteRune(r)
			l.advance()
		}
		l.emit(token.Variable, sb.String(), flags)
	default:
		l.emit(token.Operator, l.raw(), 0)
	}
}

// ---------- operators ----------

func (l *Lexer) scanOperator() bool {
	for _, op := range operators {
		if l.hasPrefix([]rune(op)) {
			l.skip(len(op))
			l.emit(token.Operator, op, 0)
			return true
		}
	}
	r := l.peek(0)
	if r != eof && strings.ContainsRune(singleOperators, r) {
		l.advance()
		l.emit(token.Operator, string(r), 0)
		return true
	}
	return false
}

// ---------- words ----------

func (l *Lexer) readWord() string {
	begin := l.cur.off
	for l.inWord() {
		l.advance()
	}
	return string(l.src[begin:l.cur.off])
}

func (l *Lexer) scanWord() {
	word := l.readWord()

	// Anything after a qualifier dot names an object.
	if prev, ok := l.last(); ok && prev.IsOperator(".") {
		l.emit(token.Identifier, word, 0)
		return
	}

	upper := strings.ToUpper(word)
	if l.scanComposed(upper) {
		return
	}
	if flags, ok := l.dialect.Lookup(upper); ok {
		l.emit(token.Keyword, upper, flags)
		return
	}
	l.emit(token.Identifier, word, 0)
}

// scanComposed greedily extends the word just read into the longest
// multi-word keyword the dialect knows. On failure the cursor is restored.
func (l *Lexer) scanComposed(first string) bool {
	seqs := l.dialect.Composed(first)
	if len(seqs) == 0 {
		return false
	}
	saved := l.cur
	for _, seq := range seqs {
		matched := true
		for _, want := range seq[1:] {
			if !isSpace(l.peek(0)) {
				matched = false
				break
			}
			for isSpace(l.peek(0)) {
				l.advance()
			}
			if !strings.EqualFold(l.readWord(), want) {
				matched = false
				break
			}
		}
		if matched {
			value := strings.Join(seq, " ")
			flags, _ := l.dialect.Lookup(value)
			l.emit(token.Keyword, value, flags)
			return true
		}
		l.cur = saved
	}
	return false
}

// ---------- character classes ----------

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isBinDigit(r rune) bool {
	return r == '0' || r == '1'
}

func isWordStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || r > unicode.MaxASCII && !unicode.IsSpace(r)
}

func isWordPart(r rune) bool {
	return isWordStart(r) || isDigit(r)
}
