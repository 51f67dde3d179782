package compiler

import (
	"fmt"
	"iter"
	"unicode"

	"golang.org/x/text/unicode/runenames"

	"tauc/pkg/codepoint"
	"tauc/pkg/diag"
)

// Lexer turns a source buffer into tokens on demand. It holds no scanning
// state of its own: every token carries what Next needs to resume after it,
// so a Lexer is safe to share and a token can be re-scanned from any point.
type Lexer struct {
	name string
	src  []byte
	sink diag.Sink
}

// cursor is a scanning position inside the buffer.
type cursor struct {
	off int
	row int
	col int
}

// NewLexer returns a Lexer over src. name labels diagnostics. A nil sink
// falls back to diag.Default().
func NewLexer(name string, src []byte, sink diag.Sink) *Lexer {
	if sink == nil {
		sink = diag.Default()
	}
	return &Lexer{name: name, src: src, sink: sink}
}

func (lx *Lexer) Name() string   { return lx.name }
func (lx *Lexer) Source() []byte { return lx.src }

// Start returns the start-of-buffer token: kind NONE, empty, at offset 0.
// Pass it to Next to get the first real token.
func (lx *Lexer) Start() Token {
	return Token{Kind: NONE, Text: lx.src[:0:0], Loc: lx.loc(cursor{})}
}

// Next returns the token following prev. It always consumes at least one
// byte unless it returns EOF.
func (lx *Lexer) Next(prev Token) Token {
	c := cursor{off: prev.End(), row: prev.endRow, col: prev.endCol}
	bal := prev.Balance

	lx.skipBlank(&c, bal)
	if lx.atEOF(c) {
		return lx.token(EOF, c, c, bal)
	}

	switch b := lx.src[c.off]; {
	case b == '\n' || b == ';':
		return lx.scanEOL(c, bal)
	case isDigitOf(DEC, b):
		return lx.scanNumber(c, bal)
	case b == '"':
		return lx.scanString(c, bal)
	}

	if tok, ok := lx.scanPunct(c, bal); ok {
		return tok
	}
	if tok, ok := lx.scanWord(c, bal); ok {
		return tok
	}
	return lx.scanUnknown(c, bal)
}

// Tokens yields every token from the start of the buffer up to and
// including EOF.
func (lx *Lexer) Tokens() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		tok := lx.Start()
		for {
			tok = lx.Next(tok)
			if !yield(tok) || tok.Kind == EOF {
				return
			}
		}
	}
}

// Tokenize scans src completely. The last token is always EOF.
func Tokenize(name string, src []byte, sink diag.Sink) []Token {
	var tokens []Token
	for tok := range NewLexer(name, src, sink).Tokens() {
		tokens = append(tokens, tok)
	}
	return tokens
}

func (lx *Lexer) loc(c cursor) diag.Location {
	return diag.Location{Buffer: lx.name, Row: c.row, Col: c.col}
}

// atEOF treats an embedded NUL like the end of the buffer.
func (lx *Lexer) atEOF(c cursor) bool {
	return c.off >= len(lx.src) || lx.src[c.off] == 0
}

// byteAt returns the byte at off, or 0 past the end.
func (lx *Lexer) byteAt(off int) byte {
	if off < 0 || off >= len(lx.src) {
		return 0
	}
	return lx.src[off]
}

func (lx *Lexer) token(kind TokenKind, start, end cursor, bal Balance) Token {
	return Token{
		Kind:    kind,
		Offset:  start.off,
		Text:    lx.src[start.off:end.off:end.off],
		Loc:     lx.loc(start),
		Balance: bal,
		endRow:  end.row,
		endCol:  end.col,
	}
}

// advanceByte consumes one ASCII byte, keeping row and column current.
func (lx *Lexer) advanceByte(c *cursor) {
	switch lx.src[c.off] {
	case '\n':
		c.row++
		c.col = 0
	case '\r':
		c.col = 0
	default:
		c.col++
	}
	c.off++
}

// advanceScalar consumes one scalar of any width, ASCII or not.
func (lx *Lexer) advanceScalar(c *cursor) {
	if lx.src[c.off] < 0x80 {
		lx.advanceByte(c)
		return
	}
	_, n := codepoint.Decode(lx.src[c.off:])
	c.off += n
	c.col++
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\v' || b == '\f'
}

// skipBlank skips horizontal whitespace, plus newlines while a paren or
// bracket is open.
func (lx *Lexer) skipBlank(c *cursor, bal Balance) {
	for c.off < len(lx.src) {
		b := lx.src[c.off]
		if !isBlank(b) && (b != '\n' || !bal.suppressesEOL()) {
			return
		}
		lx.advanceByte(c)
	}
}

// scanEOL folds a run of newlines, semicolons and blanks into one token.
func (lx *Lexer) scanEOL(start cursor, bal Balance) Token {
	c := start
	for c.off < len(lx.src) {
		b := lx.src[c.off]
		if b != '\n' && b != ';' && !isBlank(b) {
			break
		}
		lx.advanceByte(&c)
	}
	return lx.token(EOL, start, c, bal)
}

func isDigitOf(base Base, b byte) bool {
	switch base {
	case BIN:
		return b == '0' || b == '1'
	case OCT:
		return b >= '0' && b <= '7'
	case HEX:
		return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
	}
	return b >= '0' && b <= '9'
}

func basePrefix(b byte) (Base, bool) {
	switch b {
	case 'b', 'B':
		return BIN, true
	case 'o', 'O':
		return OCT, true
	case 'x', 'X':
		return HEX, true
	}
	return DEC, false
}

func (lx *Lexer) skipDigits(c *cursor, base Base) {
	for isDigitOf(base, lx.byteAt(c.off)) {
		lx.advanceByte(c)
	}
}

// scanNumber reads an integer or float literal. A base prefix only counts
// when a digit of that base follows it; "0x" alone is the integer 0 followed
// by the identifier x.
func (lx *Lexer) scanNumber(start cursor, bal Balance) Token {
	c := start
	base := DEC
	if lx.byteAt(c.off) == '0' {
		if b, ok := basePrefix(lx.byteAt(c.off + 1)); ok && isDigitOf(b, lx.byteAt(c.off+2)) {
			base = b
			lx.advanceByte(&c)
			lx.advanceByte(&c)
		}
	}
	lx.skipDigits(&c, base)

	kind := INT_LIT
	if base == DEC {
		if lx.byteAt(c.off) == '.' && isDigitOf(DEC, lx.byteAt(c.off+1)) {
			lx.advanceByte(&c)
			lx.skipDigits(&c, DEC)
			kind = FLOAT_LIT
		}
		if e := lx.byteAt(c.off); e == 'e' || e == 'E' {
			n := 1
			if sign := lx.byteAt(c.off + 1); sign == '+' || sign == '-' {
				n = 2
			}
			if isDigitOf(DEC, lx.byteAt(c.off+n)) {
				for i := 0; i < n; i++ {
					lx.advanceByte(&c)
				}
				lx.skipDigits(&c, DEC)
				kind = FLOAT_LIT
			}
		}
	}

	tok := lx.token(kind, start, c, bal)
	tok.Base = base
	return tok
}

// scanString reads a double-quoted literal. Escapes are skipped whole so an
// escaped quote never terminates the literal.
func (lx *Lexer) scanString(start cursor, bal Balance) Token {
	c := start
	lx.advanceByte(&c)
	for {
		if lx.atEOF(c) {
			lx.sink.Log(diag.Error, lx.loc(c), "unterminated string literal, reached end of buffer")
			return lx.token(NONE, start, c, bal)
		}
		switch lx.src[c.off] {
		case '"':
			lx.advanceByte(&c)
			return lx.token(STR_LIT, start, c, bal)
		case '\n':
			lx.sink.Log(diag.Error, lx.loc(c), "unterminated string literal, was expecting closing `\"`")
			lx.advanceByte(&c)
			return lx.token(NONE, start, c, bal)
		case '\\':
			lx.skipEscape(&c)
		default:
			lx.advanceScalar(&c)
		}
	}
}

// escapeWidth returns how many hex digits follow an escape letter, or -1 if
// the letter is not a hex escape.
func escapeWidth(b byte) int {
	switch b {
	case 'x':
		return 2
	case 'u':
		return 4
	case 'U':
		return 8
	}
	return -1
}

// skipEscape consumes a backslash escape. An unknown escape consumes only the
// backslash and leaves the next character to the caller.
func (lx *Lexer) skipEscape(c *cursor) {
	lx.advanceByte(c)
	next := lx.byteAt(c.off)
	if _, ok := simpleEscapes[next]; ok {
		lx.advanceByte(c)
		return
	}
	width := escapeWidth(next)
	if width < 0 {
		return
	}
	lx.advanceByte(c)
	for i := 0; i < width && isDigitOf(HEX, lx.byteAt(c.off)); i++ {
		lx.advanceByte(c)
	}
}

func hasPrefix(src []byte, s string) bool {
	return len(src) >= len(s) && string(src[:len(s)]) == s
}

// scanPunct takes the longest punctuation spelling at the cursor and
// updates the bracket balance for the new token.
func (lx *Lexer) scanPunct(start cursor, bal Balance) (Token, bool) {
	rest := lx.src[start.off:]
	for _, p := range puncts {
		text := p.Text()
		if !hasPrefix(rest, text) {
			continue
		}

		switch p {
		case LPAR:
			bal.Paren++
		case RPAR:
			bal.Paren--
		case LSBR:
			bal.Bracket++
		case RSBR:
			bal.Bracket--
		case LCBR:
			bal.Brace++
		case RCBR:
			bal.Brace--
		}

		c := start
		for range text {
			lx.advanceByte(&c)
		}
		tok := lx.token(PUNCT, start, c, bal)
		tok.Punct = p
		return tok, true
	}
	return Token{}, false
}

func isWordStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$'
}

func isWordPart(r rune) bool {
	return isWordStart(r) || unicode.IsDigit(r)
}

// scanWord reads an identifier and classifies it as a keyword, a word
// literal or a plain identifier.
func (lx *Lexer) scanWord(start cursor, bal Balance) (Token, bool) {
	cp, _ := codepoint.Decode(lx.src[start.off:])
	if !isWordStart(rune(cp)) {
		return Token{}, false
	}

	c := start
	for !lx.atEOF(c) {
		cp, _ := codepoint.Decode(lx.src[c.off:])
		if !isWordPart(rune(cp)) {
			break
		}
		lx.advanceScalar(&c)
	}

	tok := lx.token(IDENTIFIER, start, c, bal)
	tok.Kind, tok.Keyword = classifyWord(tok.Text)
	return tok, true
}

// scanUnknown logs the unrecognized scalar at the cursor and returns a NONE
// token covering its structural length.
func (lx *Lexer) scanUnknown(start cursor, bal Balance) Token {
	cp, _ := codepoint.Decode(lx.src[start.off:])
	var enc [codepoint.MaxLen]byte
	n := codepoint.Encode(cp, enc[:])
	lx.sink.Log(diag.Error, lx.loc(start), "unknown unicode character `%s` (%s)", enc[:n], describeCodepoint(cp))

	c := start
	lx.advanceScalar(&c)
	return lx.token(NONE, start, c, bal)
}

// describeCodepoint renders cp as "U+0040 COMMERCIAL AT".
func describeCodepoint(cp uint32) string {
	if name := runenames.Name(rune(cp)); name != "" {
		return fmt.Sprintf("U+%04X %s", cp, name)
	}
	return fmt.Sprintf("U+%04X", cp)
}
