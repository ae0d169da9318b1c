package lexer

import (
	"fmt"
	"strconv"

	"github.com/MaxXSoft/Ionia/token"
)

const (
	COMMENT_CHAR = '#'
)

func isNumber(char rune) bool {
	return rune('0') <= char && char <= rune('9')
}

// isReserved reports whether char is one of the single-character tokens
// or whitespace that terminates an identifier run. Ionia has no reserved
// keywords and no fixed operator set: everything that isn't one of these
// characters is fair game as an identifier, including bare operator
// glyphs such as + or <<<.
func isReserved(char rune) bool {
	switch char {
	case '(', ')', ',', ':', '=', COMMENT_CHAR:
		return true
	}
	return isWhiteSpaceRune(char)
}

func isWhiteSpaceRune(char rune) bool {
	return char == ' ' || char == '\r' || char == '\t' || char == '\n'
}

// Lexer scans Ionia source text into a token stream. Unlike a
// first-error-aborts scanner, it accumulates every lexical error it finds
// and keeps scanning past the offending run, so a single source file can
// report every bad token in one pass.
type Lexer struct {
	characters  []rune
	totalChars  int
	tokens      []token.Token
	position    int
	currentChar rune
	readPosition int
	lineCount   int32
	column      int
	errors      []error
}

// New creates a Lexer over input and primes it to read the first
// character.
func New(input string) *Lexer {
	lexer := &Lexer{characters: []rune(input)}
	lexer.totalChars = len(lexer.characters)
	lexer.readChar()
	return lexer
}

func (lexer *Lexer) advance() {
	lexer.position = lexer.readPosition
	lexer.readPosition++
	lexer.column++
}

func (lexer *Lexer) isFinished() bool {
	return lexer.readPosition > lexer.totalChars
}

func (lexer *Lexer) readChar() {
	if lexer.readPosition >= lexer.totalChars {
		lexer.currentChar = rune(0)
	} else {
		lexer.currentChar = lexer.characters[lexer.readPosition]
	}
	lexer.advance()
}

func (lexer *Lexer) peek() rune {
	if lexer.readPosition >= lexer.totalChars {
		return rune(0)
	}
	return lexer.characters[lexer.readPosition]
}

func (lexer *Lexer) handleComment() {
	for lexer.currentChar != '\n' && lexer.currentChar != rune(0) {
		lexer.readChar()
	}
}

// handleNumber scans a run of digits. A number run that is immediately
// followed by a non-reserved, non-digit character (e.g. "12x") is
// rejected as a single invalid-number error; scanning resumes after the
// whole run.
func (lexer *Lexer) handleNumber() {
	initPos := lexer.position
	startLine, startCol := lexer.lineCount, lexer.column

	for !isReserved(lexer.currentChar) && lexer.currentChar != rune(0) {
		lexer.readChar()
	}

	lexeme := string(lexer.characters[initPos:lexer.position])
	if _, err := strconv.ParseInt(lexeme, 10, 32); err != nil {
		lexer.errors = append(lexer.errors, fmt.Errorf(
			"error(lexer): invalid number literal '%s' at line %d, column %d", lexeme, startLine, startCol))
		return
	}
	value, _ := strconv.ParseInt(lexeme, 10, 32)
	lexer.tokens = append(lexer.tokens,
		token.CreateLiteralToken(token.NUMBER, int32(value), lexeme, startLine, startCol))
}

// handleIdentifier scans a run of non-reserved, non-whitespace characters
// as a single identifier token. This is the lexical class that every
// builtin operator name (+, <<<, ?, is, ...) and user-defined name
// ($fact, n, acc) falls into.
func (lexer *Lexer) handleIdentifier() {
	initPos := lexer.position
	startLine, startCol := lexer.lineCount, lexer.column

	for !isReserved(lexer.currentChar) && lexer.currentChar != rune(0) {
		lexer.readChar()
	}

	lexeme := string(lexer.characters[initPos:lexer.position])
	lexer.tokens = append(lexer.tokens,
		token.CreateLiteralToken(token.IDENTIFIER, nil, lexeme, startLine, startCol))
}

func (lexer *Lexer) skipWhiteSpace() {
	for isWhiteSpaceRune(lexer.currentChar) {
		if lexer.currentChar == '\n' {
			lexer.lineCount++
			lexer.column = 0
		}
		lexer.readChar()
	}
}

func (lexer *Lexer) createToken() {
	lexer.skipWhiteSpace()

	switch lexer.currentChar {
	case rune(0):
		return
	case '(':
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.LPA, lexer.lineCount, lexer.column))
		lexer.readChar()
	case ')':
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.RPA, lexer.lineCount, lexer.column))
		lexer.readChar()
	case ',':
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.COMMA, lexer.lineCount, lexer.column))
		lexer.readChar()
	case ':':
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.COLON, lexer.lineCount, lexer.column))
		lexer.readChar()
	case '=':
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.ASSIGN, lexer.lineCount, lexer.column))
		lexer.readChar()
	case COMMENT_CHAR:
		lexer.handleComment()
	default:
		if isNumber(lexer.currentChar) {
			lexer.handleNumber()
		} else {
			lexer.handleIdentifier()
		}
	}
}

// Scan tokenizes the whole input, accumulating lexical errors rather
// than stopping at the first one, and returns the token stream (always
// terminated by an EOF token) alongside every error found.
func (lexer *Lexer) Scan() ([]token.Token, []error) {
	for lexer.currentChar != rune(0) {
		lexer.createToken()
	}
	lexer.tokens = append(lexer.tokens, token.CreateToken(token.EOF, lexer.lineCount, lexer.column))
	return lexer.tokens, lexer.errors
}
