package token

type TokenType string

// Token is a single lexical token with its source position.
type Token struct {
	Type    TokenType
	Lexeme  string // exact source text
	Literal string // decoded value for literals (e.g. string contents)
	Line    int
	Column  int
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE"

	// Identifiers and literals
	IDENT  = "IDENT"
	NUMBER = "NUMBER"
	STRING = "STRING"

	// Operators
	ASSIGN      = "="
	PLUS        = "+"
	MINUS       = "-"
	ASTERISK    = "*"
	SLASH       = "/"
	PERCENT     = "%"
	BANG        = "!"
	EQ          = "=="
	NOT_EQ      = "!="
	LT          = "<"
	GT          = ">"
	LT_EQ       = "<="
	GT_EQ       = ">="
	AND         = "&&"
	OR          = "||"
	NULLISH     = "??"
	QUESTION    = "?"
	ARROW       = "=>"
	PLUS_ASSIGN = "+="
	MINUS_ASSIGN = "-="

	// Delimiters
	COMMA     = ","
	SEMICOLON = ";"
	COLON     = ":"
	DOT       = "."
	LPAREN    = "("
	RPAREN    = ")"
	LBRACE    = "{"
	RBRACE    = "}"
	LBRACKET  = "["
	RBRACKET  = "]"

	// Keywords
	FUNCTION  = "FUNCTION"
	ASYNC     = "ASYNC"
	AWAIT     = "AWAIT"
	LET       = "LET"
	CONST     = "CONST"
	IF        = "IF"
	ELSE      = "ELSE"
	WHILE     = "WHILE"
	DO        = "DO"
	FOR       = "FOR"
	OF        = "OF"
	RETURN    = "RETURN"
	BREAK     = "BREAK"
	CONTINUE  = "CONTINUE"
	TRY       = "TRY"
	CATCH     = "CATCH"
	FINALLY   = "FINALLY"
	THROW     = "THROW"
	TRUE      = "TRUE"
	FALSE     = "FALSE"
	NULL      = "NULL"
	UNDEFINED = "UNDEFINED"
	THIS      = "THIS"
)

var keywords = map[string]TokenType{
	"function":  FUNCTION,
	"async":     ASYNC,
	"await":     AWAIT,
	"let":       LET,
	"const":     CONST,
	"if":        IF,
	"else":      ELSE,
	"while":     WHILE,
	"do":        DO,
	"for":       FOR,
	"of":        OF,
	"return":    RETURN,
	"break":     BREAK,
	"continue":  CONTINUE,
	"try":       TRY,
	"catch":     CATCH,
	"finally":   FINALLY,
	"throw":     THROW,
	"true":      TRUE,
	"false":     FALSE,
	"null":      NULL,
	"undefined": UNDEFINED,
	"this":      THIS,
}

// LookupIdent returns the keyword token type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
