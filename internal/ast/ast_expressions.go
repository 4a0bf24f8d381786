package ast

import (
	"github.com/driftlang/drift/internal/token"
)

// PrefixExpression represents a unary operation, e.g. !x or -x
type PrefixExpression struct {
	Token    token.Token // The operator token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token {
	if pe == nil {
		return token.Token{}
	}
	return pe.Token
}

// InfixExpression represents a binary operation, e.g. x + y.
// The short-circuit operators &&, || and ?? are also represented here;
// consumers that care about branch semantics check Operator.
type InfixExpression struct {
	Token    token.Token // The operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token {
	if ie == nil {
		return token.Token{}
	}
	return ie.Token
}

// IsShortCircuit reports whether the operator has branch semantics.
func (ie *InfixExpression) IsShortCircuit() bool {
	switch ie.Operator {
	case "&&", "||", "??":
		return true
	}
	return false
}

// ConditionalExpression represents cond ? then : else
type ConditionalExpression struct {
	Token token.Token // The '?' token
	Cond  Expression
	Then  Expression
	Else  Expression
}

func (ce *ConditionalExpression) expressionNode()      {}
func (ce *ConditionalExpression) TokenLiteral() string { return ce.Token.Lexeme }
func (ce *ConditionalExpression) GetToken() token.Token {
	if ce == nil {
		return token.Token{}
	}
	return ce.Token
}

// AssignExpression represents an assignment, e.g. x = 1, a.b = 2, xs[0] += 3.
// Left is an Identifier, MemberExpression or IndexExpression.
type AssignExpression struct {
	Token    token.Token // The '=' token
	Left     Expression
	Operator string // "=", "+=", "-="
	Value    Expression
}

func (ae *AssignExpression) expressionNode()      {}
func (ae *AssignExpression) TokenLiteral() string { return ae.Token.Lexeme }
func (ae *AssignExpression) GetToken() token.Token {
	if ae == nil {
		return token.Token{}
	}
	return ae.Token
}

// CallExpression represents a function call, e.g. f(1, 2)
type CallExpression struct {
	Token     token.Token // The '(' token
	Callee    Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token {
	if ce == nil {
		return token.Token{}
	}
	return ce.Token
}

// MemberExpression represents property access, e.g. obj.field
type MemberExpression struct {
	Token    token.Token // The '.' token
	Object   Expression
	Property *Identifier
}

func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) TokenLiteral() string { return me.Token.Lexeme }
func (me *MemberExpression) GetToken() token.Token {
	if me == nil {
		return token.Token{}
	}
	return me.Token
}

// IndexExpression represents index access, e.g. xs[i]
type IndexExpression struct {
	Token  token.Token // The '[' token
	Object Expression
	Index  Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Lexeme }
func (ie *IndexExpression) GetToken() token.Token {
	if ie == nil {
		return token.Token{}
	}
	return ie.Token
}

// FunctionLiteral represents a function or arrow expression, possibly async.
// Arrows do not rebind `this`; they inherit it from the enclosing scope.
type FunctionLiteral struct {
	Token      token.Token // The 'function' or 'async' token, or the params token for arrows
	Name       string      // Optional; "" for anonymous expressions
	Parameters []*Identifier
	Body       *BlockStatement
	Async      bool
	Arrow      bool
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Lexeme }
func (fl *FunctionLiteral) GetToken() token.Token {
	if fl == nil {
		return token.Token{}
	}
	return fl.Token
}

// AwaitExpression represents `await <expr>`. Only legal inside async
// functions; the parser enforces that.
type AwaitExpression struct {
	Token token.Token // The 'await' token
	Value Expression
}

func (ae *AwaitExpression) expressionNode()      {}
func (ae *AwaitExpression) TokenLiteral() string { return ae.Token.Lexeme }
func (ae *AwaitExpression) GetToken() token.Token {
	if ae == nil {
		return token.Token{}
	}
	return ae.Token
}
