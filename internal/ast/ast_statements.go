package ast

import (
	"github.com/driftlang/drift/internal/token"
)

// LetStatement represents `let x = expr` or `const x = expr`.
type LetStatement struct {
	Token token.Token // The 'let' or 'const' token
	Name  *Identifier
	Const bool
	Value Expression // nil for `let x;`
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Lexeme }
func (ls *LetStatement) GetToken() token.Token {
	if ls == nil {
		return token.Token{}
	}
	return ls.Token
}

// ExpressionStatement wraps an expression used as a statement.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}

// BlockStatement represents a braced statement list.
type BlockStatement struct {
	Token      token.Token // The '{' token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BlockStatement) GetToken() token.Token {
	if bs == nil {
		return token.Token{}
	}
	return bs.Token
}

// IfStatement represents if/else. Alternative is a *BlockStatement or a
// chained *IfStatement (else if), or nil.
type IfStatement struct {
	Token       token.Token // The 'if' token
	Cond        Expression
	Consequence *BlockStatement
	Alternative Statement
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Lexeme }
func (is *IfStatement) GetToken() token.Token {
	if is == nil {
		return token.Token{}
	}
	return is.Token
}

// WhileStatement represents `while (cond) { ... }`.
type WhileStatement struct {
	Token token.Token // The 'while' token
	Cond  Expression
	Body  *BlockStatement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Lexeme }
func (ws *WhileStatement) GetToken() token.Token {
	if ws == nil {
		return token.Token{}
	}
	return ws.Token
}

// DoWhileStatement represents `do { ... } while (cond)`.
type DoWhileStatement struct {
	Token token.Token // The 'do' token
	Body  *BlockStatement
	Cond  Expression
}

func (dw *DoWhileStatement) statementNode()       {}
func (dw *DoWhileStatement) TokenLiteral() string { return dw.Token.Lexeme }
func (dw *DoWhileStatement) GetToken() token.Token {
	if dw == nil {
		return token.Token{}
	}
	return dw.Token
}

// ForStatement represents the classic `for (init; cond; update) { ... }`.
// Init is a *LetStatement or *ExpressionStatement, any leg may be nil.
type ForStatement struct {
	Token  token.Token // The 'for' token
	Init   Statement
	Cond   Expression
	Update Expression
	Body   *BlockStatement
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Lexeme }
func (fs *ForStatement) GetToken() token.Token {
	if fs == nil {
		return token.Token{}
	}
	return fs.Token
}

// ForOfStatement represents `for (let x of expr) { ... }`.
type ForOfStatement struct {
	Token    token.Token // The 'for' token
	Name     *Identifier
	Const    bool
	Iterable Expression
	Body     *BlockStatement
}

func (fo *ForOfStatement) statementNode()       {}
func (fo *ForOfStatement) TokenLiteral() string { return fo.Token.Lexeme }
func (fo *ForOfStatement) GetToken() token.Token {
	if fo == nil {
		return token.Token{}
	}
	return fo.Token
}

// ReturnStatement represents `return [expr]`.
type ReturnStatement struct {
	Token token.Token // The 'return' token
	Value Expression  // nil for bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token {
	if rs == nil {
		return token.Token{}
	}
	return rs.Token
}

// BreakStatement represents `break`.
type BreakStatement struct {
	Token token.Token
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BreakStatement) GetToken() token.Token {
	if bs == nil {
		return token.Token{}
	}
	return bs.Token
}

// ContinueStatement represents `continue`.
type ContinueStatement struct {
	Token token.Token
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Lexeme }
func (cs *ContinueStatement) GetToken() token.Token {
	if cs == nil {
		return token.Token{}
	}
	return cs.Token
}

// ThrowStatement represents `throw expr`.
type ThrowStatement struct {
	Token token.Token // The 'throw' token
	Value Expression
}

func (ts *ThrowStatement) statementNode()       {}
func (ts *ThrowStatement) TokenLiteral() string { return ts.Token.Lexeme }
func (ts *ThrowStatement) GetToken() token.Token {
	if ts == nil {
		return token.Token{}
	}
	return ts.Token
}

// TryStatement represents try/catch/finally. CatchParam may be nil even
// when Catch is present; Catch and Finally may each independently be nil,
// but at least one of them is set.
type TryStatement struct {
	Token      token.Token // The 'try' token
	Body       *BlockStatement
	CatchParam *Identifier
	Catch      *BlockStatement
	Finally    *BlockStatement
}

func (ts *TryStatement) statementNode()       {}
func (ts *TryStatement) TokenLiteral() string { return ts.Token.Lexeme }
func (ts *TryStatement) GetToken() token.Token {
	if ts == nil {
		return token.Token{}
	}
	return ts.Token
}

// FunctionStatement represents a named function declaration.
type FunctionStatement struct {
	Token      token.Token // The 'function' or 'async' token
	Name       *Identifier
	Parameters []*Identifier
	Body       *BlockStatement
	Async      bool
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Lexeme }
func (fs *FunctionStatement) GetToken() token.Token {
	if fs == nil {
		return token.Token{}
	}
	return fs.Token
}

// Literal converts a declaration to the equivalent function expression.
func (fs *FunctionStatement) Literal() *FunctionLiteral {
	return &FunctionLiteral{
		Token:      fs.Token,
		Name:       fs.Name.Value,
		Parameters: fs.Parameters,
		Body:       fs.Body,
		Async:      fs.Async,
	}
}
