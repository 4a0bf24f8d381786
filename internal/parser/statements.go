package parser

import (
	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/diagnostics"
	"github.com/driftlang/drift/internal/token"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.LET, token.CONST:
		return p.parseLetStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		return &ast.BreakStatement{Token: p.curToken}
	case token.CONTINUE:
		return &ast.ContinueStatement{Token: p.curToken}
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.DO:
		return p.parseDoWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.TRY:
		return p.parseTryStatement()
	case token.THROW:
		return p.parseThrowStatement()
	case token.FUNCTION:
		return p.parseFunctionStatement(false, p.curToken)
	case token.ASYNC:
		if p.peekTokenIs(token.FUNCTION) {
			tok := p.curToken
			p.nextToken()
			return p.parseFunctionStatement(true, tok)
		}
		return p.parseExpressionStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLetStatement() *ast.LetStatement {
	stmt := &ast.LetStatement{Token: p.curToken, Const: p.curTokenIs(token.CONST)}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.peekTokenIs(token.ASSIGN) {
		if stmt.Const {
			p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
				diagnostics.ErrP006, p.curToken, "const declaration requires an initializer"))
			return nil
		}
		return stmt
	}

	p.nextToken() // =
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if !p.peekTokenIs(token.NEWLINE) && !p.peekTokenIs(token.SEMICOLON) &&
		!p.peekTokenIs(token.RBRACE) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
	}

	return stmt
}

func (p *Parser) parseThrowStatement() *ast.ThrowStatement {
	stmt := &ast.ThrowStatement{Token: p.curToken}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	block.Statements = []ast.Statement{}

	p.nextToken()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		} else {
			p.skipToStatementBoundary()
		}
		p.nextToken()
	}

	if !p.curTokenIs(token.RBRACE) {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP001, p.curToken, token.RBRACE, p.curToken.Type))
	}

	return block
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Cond = p.parseExpression(LOWEST)
	if stmt.Cond == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Consequence = p.parseBlockStatement()

	p.skipPeekNewlines()
	if p.peekTokenIs(token.ELSE) {
		p.nextToken() // else
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			stmt.Alternative = p.parseIfStatement()
		} else {
			if !p.expectPeek(token.LBRACE) {
				return nil
			}
			stmt.Alternative = p.parseBlockStatement()
		}
	}

	return stmt
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Cond = p.parseExpression(LOWEST)
	if stmt.Cond == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()

	return stmt
}

func (p *Parser) parseDoWhileStatement() *ast.DoWhileStatement {
	stmt := &ast.DoWhileStatement{Token: p.curToken}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()

	p.skipPeekNewlines()
	if !p.expectPeek(token.WHILE) {
		return nil
	}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Cond = p.parseExpression(LOWEST)
	if stmt.Cond == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}

	return stmt
}

func (p *Parser) parseForStatement() ast.Statement {
	forTok := p.curToken

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	// for (let x of e) { ... }
	if (p.peekTokenIs(token.LET) || p.peekTokenIs(token.CONST)) && p.peekAt(1).Type == token.OF {
		isConst := p.peekTokenIs(token.CONST)
		p.nextToken() // let/const
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
		p.nextToken() // of
		p.nextToken()
		iterable := p.parseExpression(LOWEST)
		if iterable == nil || !p.expectPeek(token.RPAREN) {
			return nil
		}
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		body := p.parseBlockStatement()
		return &ast.ForOfStatement{Token: forTok, Name: name, Const: isConst, Iterable: iterable, Body: body}
	}

	stmt := &ast.ForStatement{Token: forTok}

	// Init leg.
	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		if p.curTokenIs(token.LET) || p.curTokenIs(token.CONST) {
			stmt.Init = p.parseLetStatement()
		} else {
			stmt.Init = p.parseExpressionStatement()
		}
		if stmt.Init == nil {
			return nil
		}
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}

	// Condition leg.
	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		stmt.Cond = p.parseExpression(LOWEST)
		if stmt.Cond == nil {
			return nil
		}
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}

	// Update leg.
	if !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		stmt.Update = p.parseExpression(LOWEST)
		if stmt.Update == nil {
			return nil
		}
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()

	return stmt
}

func (p *Parser) parseTryStatement() *ast.TryStatement {
	stmt := &ast.TryStatement{Token: p.curToken}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()

	p.skipPeekNewlines()
	if p.peekTokenIs(token.CATCH) {
		p.nextToken() // catch
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			stmt.CatchParam = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
			if !p.expectPeek(token.RPAREN) {
				return nil
			}
		}
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		stmt.Catch = p.parseBlockStatement()
		p.skipPeekNewlines()
	}

	if p.peekTokenIs(token.FINALLY) {
		p.nextToken() // finally
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		stmt.Finally = p.parseBlockStatement()
	}

	if stmt.Catch == nil && stmt.Finally == nil {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP006, stmt.Token, "try statement requires catch or finally"))
		return nil
	}

	return stmt
}

func (p *Parser) parseFunctionStatement(async bool, tok token.Token) *ast.FunctionStatement {
	stmt := &ast.FunctionStatement{Token: tok, Async: async}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	stmt.Parameters = p.parseFunctionParameters()

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.pushFunction(async)
	stmt.Body = p.parseBlockStatement()
	p.popFunction()

	return stmt
}
