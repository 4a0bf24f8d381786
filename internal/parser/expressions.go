package parser

import (
	"strconv"

	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/diagnostics"
	"github.com/driftlang/drift/internal/token"
)

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	value, err := strconv.ParseFloat(p.curToken.Lexeme, 64)
	if err != nil {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrL003, p.curToken, p.curToken.Lexeme))
		return nil
	}
	return &ast.NumberLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

func (p *Parser) parseUndefinedLiteral() ast.Expression {
	return &ast.UndefinedLiteral{Token: p.curToken}
}

func (p *Parser) parseThisExpression() ast.Expression {
	return &ast.ThisExpression{Token: p.curToken}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
	}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseConditionalExpression(cond ast.Expression) ast.Expression {
	expression := &ast.ConditionalExpression{Token: p.curToken, Cond: cond}

	p.nextToken()
	expression.Then = p.parseExpression(LOWEST)
	if expression.Then == nil || !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	// Right-associative: a ? b : c ? d : e groups as a ? b : (c ? d : e).
	expression.Else = p.parseExpression(CONDITIONAL - 1)
	if expression.Else == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	switch left.(type) {
	case *ast.Identifier, *ast.MemberExpression, *ast.IndexExpression:
	default:
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(diagnostics.ErrP003, p.curToken))
		return nil
	}

	expression := &ast.AssignExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Lexeme,
	}
	p.nextToken()
	// Right-associative: a = b = c groups as a = (b = c).
	expression.Value = p.parseExpression(ASSIGNMENT - 1)
	if expression.Value == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseAwaitExpression() ast.Expression {
	if !p.inAsyncFunction() {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(diagnostics.ErrP005, p.curToken))
	}
	expression := &ast.AwaitExpression{Token: p.curToken}
	p.nextToken()
	expression.Value = p.parseExpression(PREFIX)
	if expression.Value == nil {
		return nil
	}
	return expression
}

// parseGroupedOrArrow disambiguates `(expr)` from `(params) => body` by
// scanning ahead for `) =>`.
func (p *Parser) parseGroupedOrArrow() ast.Expression {
	if p.lookaheadIsArrowParams() {
		return p.parseArrowFunction(false, p.curToken)
	}

	p.nextToken()
	p.skipNewlines()
	exp := p.parseExpression(LOWEST)
	if exp == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}
	return exp
}

// lookaheadIsArrowParams reports whether the current LPAREN opens an
// arrow parameter list, i.e. its matching RPAREN is followed by =>.
func (p *Parser) lookaheadIsArrowParams() bool {
	depth := 1
	tok := p.peekToken
	i := 0
	for {
		switch tok.Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				next := p.peekAt(i)
				return next.Type == token.ARROW
			}
		case token.EOF:
			return false
		}
		tok = p.peekAt(i)
		i++
	}
}

// parseArrowFunction parses `(a, b) => body` with curToken on LPAREN.
func (p *Parser) parseArrowFunction(async bool, tok token.Token) ast.Expression {
	lit := &ast.FunctionLiteral{Token: tok, Async: async, Arrow: true}
	lit.Parameters = p.parseFunctionParameters()

	if !p.expectPeek(token.ARROW) {
		return nil
	}
	lit.Body = p.parseArrowBody(async)
	if lit.Body == nil {
		return nil
	}
	return lit
}

// parseIdentArrow parses `x => body` with curToken on => and left the
// single parameter.
func (p *Parser) parseIdentArrow(left ast.Expression) ast.Expression {
	ident, ok := left.(*ast.Identifier)
	if !ok {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP006, p.curToken, "invalid arrow function parameters"))
		return nil
	}
	lit := &ast.FunctionLiteral{Token: ident.Token, Arrow: true, Parameters: []*ast.Identifier{ident}}
	lit.Body = p.parseArrowBody(false)
	if lit.Body == nil {
		return nil
	}
	return lit
}

// parseArrowBody parses either a block body or a bare-expression body
// (which is wrapped in an implicit return). curToken is on =>.
func (p *Parser) parseArrowBody(async bool) *ast.BlockStatement {
	p.pushFunction(async)
	defer p.popFunction()

	if p.peekTokenIs(token.LBRACE) {
		p.nextToken()
		return p.parseBlockStatement()
	}

	p.nextToken()
	tok := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	return &ast.BlockStatement{
		Token:      tok,
		Statements: []ast.Statement{&ast.ReturnStatement{Token: tok, Value: expr}},
	}
}

// parseAsyncExpression parses the expression forms introduced by `async`:
// `async function ...`, `async (a, b) => ...`, `async x => ...`.
func (p *Parser) parseAsyncExpression() ast.Expression {
	tok := p.curToken

	if p.peekTokenIs(token.FUNCTION) {
		p.nextToken()
		return p.parseFunctionLiteralCore(true, tok)
	}

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		if !p.lookaheadIsArrowParams() {
			p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
				diagnostics.ErrP006, tok, "expected arrow function after async"))
			return nil
		}
		return p.parseArrowFunction(true, tok)
	}

	if p.peekTokenIs(token.IDENT) && p.peekAt(0).Type == token.ARROW {
		p.nextToken()
		ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
		p.nextToken() // =>
		lit := &ast.FunctionLiteral{Token: tok, Async: true, Arrow: true, Parameters: []*ast.Identifier{ident}}
		lit.Body = p.parseArrowBody(true)
		if lit.Body == nil {
			return nil
		}
		return lit
	}

	p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
		diagnostics.ErrP006, tok, "expected function or arrow after async"))
	return nil
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	return p.parseFunctionLiteralCore(false, p.curToken)
}

// parseFunctionLiteralCore parses a function expression with curToken on
// the `function` keyword.
func (p *Parser) parseFunctionLiteralCore(async bool, tok token.Token) ast.Expression {
	lit := &ast.FunctionLiteral{Token: tok, Async: async}

	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		lit.Name = p.curToken.Lexeme
	}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	lit.Parameters = p.parseFunctionParameters()

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.pushFunction(async)
	lit.Body = p.parseBlockStatement()
	p.popFunction()

	return lit
}

// parseFunctionParameters parses a parameter list with curToken on LPAREN.
func (p *Parser) parseFunctionParameters() []*ast.Identifier {
	identifiers := []*ast.Identifier{}

	p.skipPeekNewlines()
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return identifiers
	}

	p.nextToken()
	p.skipNewlines()
	identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})

	for {
		p.skipPeekNewlines()
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken() // ,
		p.skipPeekNewlines()
		p.nextToken()
		identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return identifiers
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Callee: callee}
	exp.Arguments = p.parseExpressionList(token.RPAREN)
	return exp
}

func (p *Parser) parseListLiteral() ast.Expression {
	lit := &ast.ListLiteral{Token: p.curToken}
	lit.Elements = p.parseExpressionList(token.RBRACKET)
	return lit
}

// parseExpressionList parses a comma-separated list with curToken on the
// opening delimiter, consuming through `end`.
func (p *Parser) parseExpressionList(end token.TokenType) []ast.Expression {
	list := []ast.Expression{}

	p.skipPeekNewlines()
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	p.skipNewlines()
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}
	list = append(list, first)

	for {
		p.skipPeekNewlines()
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken() // ,
		p.skipPeekNewlines()
		p.nextToken()
		elem := p.parseExpression(LOWEST)
		if elem == nil {
			return nil
		}
		list = append(list, elem)
	}

	if !p.expectPeek(end) {
		return nil
	}

	return list
}

func (p *Parser) parseRecordLiteral() ast.Expression {
	lit := &ast.RecordLiteral{Token: p.curToken}

	p.skipPeekNewlines()
	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		return lit
	}

	for {
		p.skipPeekNewlines()
		p.nextToken()
		var key string
		switch p.curToken.Type {
		case token.IDENT, token.STRING:
			key = p.curToken.Literal
		default:
			p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
				diagnostics.ErrP006, p.curToken, "expected record key"))
			return nil
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		lit.Fields = append(lit.Fields, ast.RecordField{Key: key, Value: value})

		p.skipPeekNewlines()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.skipPeekNewlines()
			if p.peekTokenIs(token.RBRACE) {
				break
			}
			continue
		}
		break
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}

	return lit
}

func (p *Parser) parseMemberExpression(object ast.Expression) ast.Expression {
	exp := &ast.MemberExpression{Token: p.curToken, Object: object}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	exp.Property = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	return exp
}

func (p *Parser) parseIndexExpression(object ast.Expression) ast.Expression {
	exp := &ast.IndexExpression{Token: p.curToken, Object: object}
	p.nextToken()
	exp.Index = p.parseExpression(LOWEST)
	if exp.Index == nil || !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return exp
}
