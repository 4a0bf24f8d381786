package lexer

import (
	"testing"

	"github.com/driftlang/drift/internal/token"
)

func TestNextTokenOperators(t *testing.T) {
	input := `= == => + += - -= * / % ! != < <= > >= && || ?? ? : . , ;`

	expected := []token.TokenType{
		token.ASSIGN, token.EQ, token.ARROW,
		token.PLUS, token.PLUS_ASSIGN,
		token.MINUS, token.MINUS_ASSIGN,
		token.ASTERISK, token.SLASH, token.PERCENT,
		token.BANG, token.NOT_EQ,
		token.LT, token.LT_EQ, token.GT, token.GT_EQ,
		token.AND, token.OR, token.NULLISH,
		token.QUESTION, token.COLON, token.DOT,
		token.COMMA, token.SEMICOLON,
		token.EOF,
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("token %d: type = %q, want %q (lexeme %q)", i, tok.Type, want, tok.Lexeme)
		}
	}
}

func TestNextTokenKeywordsAndIdents(t *testing.T) {
	input := `async function f(x) { let y = await x }`

	expected := []struct {
		typ    token.TokenType
		lexeme string
	}{
		{token.ASYNC, "async"},
		{token.FUNCTION, "function"},
		{token.IDENT, "f"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.LET, "let"},
		{token.IDENT, "y"},
		{token.ASSIGN, "="},
		{token.AWAIT, "await"},
		{token.IDENT, "x"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.typ {
			t.Fatalf("token %d: type = %q, want %q", i, tok.Type, want.typ)
		}
		if tok.Lexeme != want.lexeme {
			t.Fatalf("token %d: lexeme = %q, want %q", i, tok.Lexeme, want.lexeme)
		}
	}
}

func TestNewlinesAreTokens(t *testing.T) {
	l := New("let a = 1\nlet b = 2")

	var types []token.TokenType
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == token.EOF {
			break
		}
	}

	sawNewline := false
	for _, typ := range types {
		if typ == token.NEWLINE {
			sawNewline = true
		}
	}
	if !sawNewline {
		t.Errorf("no NEWLINE token in %v", types)
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "0"},
		{"42", "42"},
		{"3.14", "3.14"},
		{"1e3", "1e3"},
		{"2.5e-2", "2.5e-2"},
		{"7E+1", "7E+1"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != token.NUMBER {
			t.Errorf("%q: type = %q, want NUMBER", tt.input, tok.Type)
		}
		if tok.Lexeme != tt.want {
			t.Errorf("%q: lexeme = %q, want %q", tt.input, tok.Lexeme, tt.want)
		}
	}
}

func TestDotAfterIntegerIsNotDecimal(t *testing.T) {
	l := New("1.toString")
	first := l.NextToken()
	second := l.NextToken()
	if first.Type != token.NUMBER || first.Lexeme != "1" {
		t.Fatalf("first = %q %q, want NUMBER 1", first.Type, first.Lexeme)
	}
	if second.Type != token.DOT {
		t.Fatalf("second = %q, want DOT", second.Type)
	}
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"hello"`, "hello"},
		{`'single'`, "single"},
		{`"a\nb"`, "a\nb"},
		{`"tab\there"`, "tab\there"},
		{`"say \"hi\""`, `say "hi"`},
		{`'it\'s'`, "it's"},
		{`"back\\slash"`, `back\slash`},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != token.STRING {
			t.Errorf("%q: type = %q, want STRING", tt.input, tok.Type)
			continue
		}
		if tok.Literal != tt.want {
			t.Errorf("%q: literal = %q, want %q", tt.input, tok.Literal, tt.want)
		}
	}
}

func TestUnterminatedStringReportsError(t *testing.T) {
	l := New(`"never closed`)
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Errorf("type = %q, want ILLEGAL", tok.Type)
	}
	if len(l.Errors()) == 0 {
		t.Error("no diagnostic for unterminated string")
	}
}

func TestIllegalCharacterReportsError(t *testing.T) {
	l := New("let x = #")
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("got %d errors, want 1", len(l.Errors()))
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	input := `
// line comment
let x = 1 // trailing
/* block
   comment */ let y = 2
`
	l := New(input)
	var idents []string
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		if tok.Type == token.IDENT {
			idents = append(idents, tok.Lexeme)
		}
	}
	if len(idents) != 2 || idents[0] != "x" || idents[1] != "y" {
		t.Errorf("idents = %v, want [x y]", idents)
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	l := New("let a\nlet b")

	tok := l.NextToken() // let
	if tok.Line != 1 || tok.Column != 1 {
		t.Errorf("first token at %d:%d, want 1:1", tok.Line, tok.Column)
	}
	l.NextToken() // a
	l.NextToken() // NEWLINE

	tok = l.NextToken() // second let
	if tok.Line != 2 || tok.Column != 1 {
		t.Errorf("second let at %d:%d, want 2:1", tok.Line, tok.Column)
	}
}
