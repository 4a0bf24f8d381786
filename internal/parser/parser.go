package parser

import (
	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/diagnostics"
	"github.com/driftlang/drift/internal/pipeline"
	"github.com/driftlang/drift/internal/token"
)

// MaxRecursionDepth bounds expression nesting to keep malformed input
// from blowing the native stack.
const MaxRecursionDepth = 500

const (
	_ int = iota
	LOWEST
	ASSIGNMENT  // = += -=
	CONDITIONAL // ?:
	NULLISH     // ??
	LOGIC_OR    // ||
	LOGIC_AND   // &&
	EQUALS      // == !=
	LESSGREATER // < > <= >=
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -x !x await x
	CALL        // f(x) a.b a[i]
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:       ASSIGNMENT,
	token.PLUS_ASSIGN:  ASSIGNMENT,
	token.MINUS_ASSIGN: ASSIGNMENT,
	token.QUESTION:     CONDITIONAL,
	token.NULLISH:      NULLISH,
	token.OR:           LOGIC_OR,
	token.AND:          LOGIC_AND,
	token.EQ:           EQUALS,
	token.NOT_EQ:       EQUALS,
	token.LT:           LESSGREATER,
	token.GT:           LESSGREATER,
	token.LT_EQ:        LESSGREATER,
	token.GT_EQ:        LESSGREATER,
	token.PLUS:         SUM,
	token.MINUS:        SUM,
	token.ASTERISK:     PRODUCT,
	token.SLASH:        PRODUCT,
	token.PERCENT:      PRODUCT,
	token.LPAREN:       CALL,
	token.DOT:          CALL,
	token.LBRACKET:     CALL,
	token.ARROW:        ASSIGNMENT,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	stream []token.Token
	pos    int

	curToken  token.Token
	peekToken token.Token

	ctx   *pipeline.PipelineContext
	depth int

	// asyncStack tracks, per enclosing function, whether it is async.
	// The bottom entry is the top-level script (never async).
	asyncStack []bool

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(stream []token.Token, ctx *pipeline.PipelineContext) *Parser {
	p := &Parser{
		stream:     stream,
		ctx:        ctx,
		asyncStack: []bool{false},
	}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.IDENT:     p.parseIdentifier,
		token.NUMBER:    p.parseNumberLiteral,
		token.STRING:    p.parseStringLiteral,
		token.TRUE:      p.parseBooleanLiteral,
		token.FALSE:     p.parseBooleanLiteral,
		token.NULL:      p.parseNullLiteral,
		token.UNDEFINED: p.parseUndefinedLiteral,
		token.THIS:      p.parseThisExpression,
		token.BANG:      p.parsePrefixExpression,
		token.MINUS:     p.parsePrefixExpression,
		token.LPAREN:    p.parseGroupedOrArrow,
		token.LBRACKET:  p.parseListLiteral,
		token.LBRACE:    p.parseRecordLiteral,
		token.FUNCTION:  p.parseFunctionLiteral,
		token.ASYNC:     p.parseAsyncExpression,
		token.AWAIT:     p.parseAwaitExpression,
	}

	p.infixParseFns = map[token.TokenType]infixParseFn{
		token.PLUS:         p.parseInfixExpression,
		token.MINUS:        p.parseInfixExpression,
		token.ASTERISK:     p.parseInfixExpression,
		token.SLASH:        p.parseInfixExpression,
		token.PERCENT:      p.parseInfixExpression,
		token.EQ:           p.parseInfixExpression,
		token.NOT_EQ:       p.parseInfixExpression,
		token.LT:           p.parseInfixExpression,
		token.GT:           p.parseInfixExpression,
		token.LT_EQ:        p.parseInfixExpression,
		token.GT_EQ:        p.parseInfixExpression,
		token.AND:          p.parseInfixExpression,
		token.OR:           p.parseInfixExpression,
		token.NULLISH:      p.parseInfixExpression,
		token.QUESTION:     p.parseConditionalExpression,
		token.ASSIGN:       p.parseAssignExpression,
		token.PLUS_ASSIGN:  p.parseAssignExpression,
		token.MINUS_ASSIGN: p.parseAssignExpression,
		token.LPAREN:       p.parseCallExpression,
		token.DOT:          p.parseMemberExpression,
		token.LBRACKET:     p.parseIndexExpression,
		token.ARROW:        p.parseIdentArrow,
	}

	// Prime curToken and peekToken.
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pos < len(p.stream) {
		p.peekToken = p.stream[p.pos]
		p.pos++
	} else {
		p.peekToken = token.Token{Type: token.EOF}
	}
}

// peekAt returns the token n positions after peekToken without consuming.
func (p *Parser) peekAt(n int) token.Token {
	idx := p.pos + n
	if idx < len(p.stream) {
		return p.stream[idx]
	}
	return token.Token{Type: token.EOF}
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(diagnostics.ErrP001, p.peekToken, t, p.peekToken.Type))
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) inAsyncFunction() bool {
	return p.asyncStack[len(p.asyncStack)-1]
}

func (p *Parser) pushFunction(async bool) { p.asyncStack = append(p.asyncStack, async) }
func (p *Parser) popFunction()            { p.asyncStack = p.asyncStack[:len(p.asyncStack)-1] }

func (p *Parser) noPrefixParseFnError(t token.TokenType) {
	p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(diagnostics.ErrP002, p.curToken, t))
}

// skipNewlines advances past NEWLINE tokens.
func (p *Parser) skipNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

// skipPeekNewlines advances until peekToken is not a NEWLINE.
func (p *Parser) skipPeekNewlines() {
	for p.peekTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) skipToStatementBoundary() {
	for !p.curTokenIs(token.NEWLINE) &&
		!p.curTokenIs(token.SEMICOLON) &&
		!p.curTokenIs(token.RBRACE) &&
		!p.curTokenIs(token.EOF) {
		p.nextToken()
	}
}

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{Statements: []ast.Statement{}}

	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		} else {
			// Error recovery: resynchronize at the next boundary.
			p.skipToStatementBoundary()
		}
		p.nextToken()
	}

	return program
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxRecursionDepth {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP006,
			p.curToken,
			"expression too complex: recursion depth limit exceeded",
		))
		p.skipToStatementBoundary()
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(token.NEWLINE) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

// ParserProcessor adapts the parser to the compilation pipeline.
type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.TokenStream == nil {
		err := diagnostics.NewError(diagnostics.ErrP006, token.Token{}, "parser: token stream is nil")
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}

	parser := New(ctx.TokenStream, ctx)
	prog := parser.ParseProgram()
	prog.File = ctx.FilePath
	ctx.AstRoot = prog

	for _, err := range ctx.Errors {
		if err.File == "" {
			err.File = ctx.FilePath
		}
	}

	return ctx
}
