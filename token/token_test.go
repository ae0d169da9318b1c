package token

import (
	"testing"
)

func TestCreateToken(t *testing.T) {
	tests := []struct {
		name      string
		tokenType TokenType
		line      int32
		column    int
		wantLex   string
	}{
		{"lpa", LPA, 1, 0, "("},
		{"rpa", RPA, 1, 1, ")"},
		{"comma", COMMA, 2, 3, ","},
		{"colon", COLON, 2, 4, ":"},
		{"assign", ASSIGN, 3, 0, "="},
		{"eof", EOF, 4, 0, ""},
	}

	for _, tt := range tests {
		got := CreateToken(tt.tokenType, tt.line, tt.column)
		if got.TokenType != tt.tokenType {
			t.Errorf("%s: TokenType = %v, want %v", tt.name, got.TokenType, tt.tokenType)
		}
		if got.Lexeme != tt.wantLex {
			t.Errorf("%s: Lexeme = %q, want %q", tt.name, got.Lexeme, tt.wantLex)
		}
		if got.Line != tt.line || got.Column != tt.column {
			t.Errorf("%s: position = (%d,%d), want (%d,%d)", tt.name, got.Line, got.Column, tt.line, tt.column)
		}
	}
}

func TestCreateLiteralToken(t *testing.T) {
	tok := CreateLiteralToken(NUMBER, int32(42), "42", 1, 0)
	if tok.TokenType != NUMBER {
		t.Errorf("TokenType = %v, want %v", tok.TokenType, NUMBER)
	}
	if tok.Literal != int32(42) {
		t.Errorf("Literal = %v, want 42", tok.Literal)
	}
	if tok.Lexeme != "42" {
		t.Errorf("Lexeme = %q, want %q", tok.Lexeme, "42")
	}

	id := CreateLiteralToken(IDENTIFIER, nil, "$fact", 2, 1)
	if id.Lexeme != "$fact" {
		t.Errorf("Lexeme = %q, want %q", id.Lexeme, "$fact")
	}
}

func TestTokenString(t *testing.T) {
	tok := CreateLiteralToken(NUMBER, int32(123), "123", 3, 10)
	want := `Token {Type: NUMBER, Value: "123"}`
	if got := tok.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
