package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// TokenType represents different types of tokens
type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF

	IDENT   // reshape, zip
	INT     // 28
	FLOAT   // 0.5
	STRING  // "text"
	DATA    // $mnist_images
	CODE    // @{x + 1}
	CODEREF // @normalize
	COMPUTE // #total

	PIPE     // |
	COMMA    // ,
	ASTERISK // *
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	LBRACE   // {
	RBRACE   // }
)

var tokenNames = [...]string{
	ILLEGAL:  "ILLEGAL",
	EOF:      "EOF",
	IDENT:    "IDENT",
	INT:      "INT",
	FLOAT:    "FLOAT",
	STRING:   "STRING",
	DATA:     "DATA",
	CODE:     "CODE",
	CODEREF:  "CODEREF",
	COMPUTE:  "COMPUTE",
	PIPE:     "|",
	COMMA:    ",",
	ASTERISK: "*",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	LBRACE:   "{",
	RBRACE:   "}",
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token represents a single token. Line and Column locate its first
// character; EndLine and EndColumn the position just past its last one.
// Literal holds the decoded value: the name without its sigil for DATA,
// CODEREF and COMPUTE, the unquoted text for STRING, the body for CODE.
type Token struct {
	Type         TokenType
	Literal      string
	Line         int
	Column       int
	EndLine      int
	EndColumn    int
	Unterminated bool // STRING or CODE that ran into end of line/input
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

// Lexer splits an expression into tokens. Columns count runes, so a
// multi-byte character occupies one column.
type Lexer struct {
	input        string
	position     int  // offset of ch
	readPosition int  // offset after ch
	ch           byte // first byte of current char, 0 at EOF
	chRune       rune
	chSize       int

	line, column         int // position of ch
	nextLine, nextColumn int // position after ch
}

// New creates a new lexer instance
func New(input string) *Lexer {
	l := &Lexer{input: input, nextLine: 1, nextColumn: 1}
	l.readChar()
	return l
}

// readChar advances to the next character. At EOF the position stays just
// past the last character so that tokens ending there get a usable end.
func (l *Lexer) readChar() {
	l.line, l.column = l.nextLine, l.nextColumn
	l.position = l.readPosition

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.chRune = 0
		l.chSize = 0
		return
	}

	b := l.input[l.readPosition]
	if b < utf8.RuneSelf {
		l.ch, l.chRune, l.chSize = b, rune(b), 1
	} else {
		r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.ch, l.chRune, l.chSize = b, r, size
	}
	l.readPosition += l.chSize

	if l.ch == '\n' {
		l.nextLine++
		l.nextColumn = 1
	} else {
		l.nextColumn++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken scans the input and returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{Line: l.line, Column: l.column}

	switch l.ch {
	case 0:
		tok.Type = EOF
		return l.finish(tok)
	case '|':
		tok.Type, tok.Literal = PIPE, "|"
	case ',':
		tok.Type, tok.Literal = COMMA, ","
	case '*':
		tok.Type, tok.Literal = ASTERISK, "*"
	case '(':
		tok.Type, tok.Literal = LPAREN, "("
	case ')':
		tok.Type, tok.Literal = RPAREN, ")"
	case '[':
		tok.Type, tok.Literal = LBRACKET, "["
	case ']':
		tok.Type, tok.Literal = RBRACKET, "]"
	case '{':
		tok.Type, tok.Literal = LBRACE, "{"
	case '}':
		tok.Type, tok.Literal = RBRACE, "}"
	case '"':
		text, terminated := l.readString()
		tok.Type, tok.Literal, tok.Unterminated = STRING, text, !terminated
		if terminated {
			l.readChar()
		}
		return l.finish(tok)
	case '$':
		return l.sigil(tok, DATA)
	case '#':
		return l.sigil(tok, COMPUTE)
	case '@':
		if l.peekChar() == '{' {
			l.readChar()
			body, terminated := l.readCode()
			tok.Type, tok.Literal, tok.Unterminated = CODE, body, !terminated
			if terminated {
				l.readChar()
			}
			return l.finish(tok)
		}
		return l.sigil(tok, CODEREF)
	default:
		switch {
		case isLetterRune(l.chRune):
			tok.Type, tok.Literal = IDENT, l.readIdentifier()
			return l.finish(tok)
		case isDigit(l.ch) || (l.ch == '-' && isDigit(l.peekChar())):
			lit, isFloat := l.readNumber()
			tok.Type, tok.Literal = INT, lit
			if isFloat {
				tok.Type = FLOAT
			}
			return l.finish(tok)
		}
		tok.Type, tok.Literal = ILLEGAL, string(l.chRune)
	}

	l.readChar()
	return l.finish(tok)
}

func (l *Lexer) finish(tok Token) Token {
	tok.EndLine, tok.EndColumn = l.line, l.column
	return tok
}

// sigil reads $name, #name or @name. A sigil without a name is ILLEGAL.
func (l *Lexer) sigil(tok Token, typ TokenType) Token {
	sig := l.ch
	l.readChar()
	if !isLetterRune(l.chRune) {
		tok.Type, tok.Literal = ILLEGAL, string(sig)
		return l.finish(tok)
	}
	tok.Type, tok.Literal = typ, l.readIdentifier()
	return l.finish(tok)
}

// readIdentifier reads letters, digits and underscores.
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetterRune(l.chRune) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads an optionally negative integer or decimal number.
func (l *Lexer) readNumber() (string, bool) {
	position := l.position
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}

	isFloat := false
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '-' || l.peekChar() == '+') {
		isFloat = true
		l.readChar()
		if l.ch == '-' || l.ch == '+' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[position:l.position], isFloat
}

// readString reads a string literal with escape sequence support.
// Returns the string content and whether it was terminated properly; on
// success the lexer is left on the closing quote. Strings cannot span lines.
func (l *Lexer) readString() (string, bool) {
	var result []byte
	l.readChar() // skip opening quote

	for l.ch != '"' && l.ch != 0 && l.ch != '\n' {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				result = append(result, '\n')
			case 't':
				result = append(result, '\t')
			case '\\':
				result = append(result, '\\')
			case '"':
				result = append(result, '"')
			case 0, '\n':
				return string(result), false
			default:
				result = append(result, '\\')
				result = append(result, l.input[l.position:l.position+l.chSize]...)
			}
		} else {
			result = append(result, l.input[l.position:l.position+l.chSize]...)
		}
		l.readChar()
	}

	return string(result), l.ch == '"'
}

// readCode reads the body of @{...}, which may span lines and contain
// balanced braces. On success the lexer is left on the closing brace.
func (l *Lexer) readCode() (string, bool) {
	l.readChar() // skip {
	start := l.position
	depth := 0
	for l.ch != 0 {
		switch l.ch {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return l.input[start:l.position], true
			}
			depth--
		}
		l.readChar()
	}
	return l.input[start:l.position], false
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// isLetterRune checks if a rune can start an identifier.
func isLetterRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// Tokenize returns every token up to and including EOF.
func Tokenize(input string) []Token {
	l := New(input)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}
