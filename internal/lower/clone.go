package lower

import (
	"github.com/driftlang/drift/internal/ast"
)

// The suspension analyzer keys state numbers and hoist slots by node
// identity, so a statement list that gets duplicated (the update leg
// copied before each continue) must be deep-cloned per site. Sharing
// nodes between sites would merge distinct await points.

func cloneStmts(stmts []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, len(stmts))
	for i, s := range stmts {
		out[i] = cloneStmt(s)
	}
	return out
}

func cloneStmt(s ast.Statement) ast.Statement {
	switch n := s.(type) {
	case *ast.LetStatement:
		return &ast.LetStatement{Token: n.Token, Name: cloneIdent(n.Name), Const: n.Const, Value: cloneExpr(n.Value)}
	case *ast.ExpressionStatement:
		return &ast.ExpressionStatement{Token: n.Token, Expression: cloneExpr(n.Expression)}
	case *ast.BlockStatement:
		return cloneBlock(n)
	case *ast.IfStatement:
		out := &ast.IfStatement{Token: n.Token, Cond: cloneExpr(n.Cond), Consequence: cloneBlock(n.Consequence)}
		if n.Alternative != nil {
			out.Alternative = cloneStmt(n.Alternative)
		}
		return out
	case *ast.WhileStatement:
		return &ast.WhileStatement{Token: n.Token, Cond: cloneExpr(n.Cond), Body: cloneBlock(n.Body)}
	case *ast.DoWhileStatement:
		return &ast.DoWhileStatement{Token: n.Token, Body: cloneBlock(n.Body), Cond: cloneExpr(n.Cond)}
	case *ast.ForStatement:
		out := &ast.ForStatement{Token: n.Token, Cond: cloneExpr(n.Cond), Update: cloneExpr(n.Update), Body: cloneBlock(n.Body)}
		if n.Init != nil {
			out.Init = cloneStmt(n.Init)
		}
		return out
	case *ast.ForOfStatement:
		return &ast.ForOfStatement{Token: n.Token, Name: cloneIdent(n.Name), Const: n.Const, Iterable: cloneExpr(n.Iterable), Body: cloneBlock(n.Body)}
	case *ast.ReturnStatement:
		return &ast.ReturnStatement{Token: n.Token, Value: cloneExpr(n.Value)}
	case *ast.BreakStatement:
		return &ast.BreakStatement{Token: n.Token}
	case *ast.ContinueStatement:
		return &ast.ContinueStatement{Token: n.Token}
	case *ast.ThrowStatement:
		return &ast.ThrowStatement{Token: n.Token, Value: cloneExpr(n.Value)}
	case *ast.TryStatement:
		out := &ast.TryStatement{Token: n.Token, Body: cloneBlock(n.Body)}
		if n.CatchParam != nil {
			out.CatchParam = cloneIdent(n.CatchParam)
		}
		if n.Catch != nil {
			out.Catch = cloneBlock(n.Catch)
		}
		if n.Finally != nil {
			out.Finally = cloneBlock(n.Finally)
		}
		return out
	case *ast.FunctionStatement:
		return &ast.FunctionStatement{Token: n.Token, Name: cloneIdent(n.Name), Parameters: cloneIdents(n.Parameters), Body: cloneBlock(n.Body), Async: n.Async}
	}
	return s
}

func cloneBlock(b *ast.BlockStatement) *ast.BlockStatement {
	if b == nil {
		return nil
	}
	return &ast.BlockStatement{Token: b.Token, Statements: cloneStmts(b.Statements)}
}

func cloneIdent(i *ast.Identifier) *ast.Identifier {
	if i == nil {
		return nil
	}
	return &ast.Identifier{Token: i.Token, Value: i.Value}
}

func cloneIdents(ids []*ast.Identifier) []*ast.Identifier {
	out := make([]*ast.Identifier, len(ids))
	for i, id := range ids {
		out[i] = cloneIdent(id)
	}
	return out
}

func cloneExpr(e ast.Expression) ast.Expression {
	switch n := e.(type) {
	case nil:
		return nil
	case *ast.Identifier:
		return cloneIdent(n)
	case *ast.NumberLiteral:
		return &ast.NumberLiteral{Token: n.Token, Value: n.Value}
	case *ast.StringLiteral:
		return &ast.StringLiteral{Token: n.Token, Value: n.Value}
	case *ast.BooleanLiteral:
		return &ast.BooleanLiteral{Token: n.Token, Value: n.Value}
	case *ast.NullLiteral:
		return &ast.NullLiteral{Token: n.Token}
	case *ast.UndefinedLiteral:
		return &ast.UndefinedLiteral{Token: n.Token}
	case *ast.ThisExpression:
		return &ast.ThisExpression{Token: n.Token}
	case *ast.ListLiteral:
		out := &ast.ListLiteral{Token: n.Token, Elements: make([]ast.Expression, len(n.Elements))}
		for i, el := range n.Elements {
			out.Elements[i] = cloneExpr(el)
		}
		return out
	case *ast.RecordLiteral:
		out := &ast.RecordLiteral{Token: n.Token, Fields: make([]ast.RecordField, len(n.Fields))}
		for i, f := range n.Fields {
			out.Fields[i] = ast.RecordField{Key: f.Key, Value: cloneExpr(f.Value)}
		}
		return out
	case *ast.PrefixExpression:
		return &ast.PrefixExpression{Token: n.Token, Operator: n.Operator, Right: cloneExpr(n.Right)}
	case *ast.InfixExpression:
		return &ast.InfixExpression{Token: n.Token, Left: cloneExpr(n.Left), Operator: n.Operator, Right: cloneExpr(n.Right)}
	case *ast.ConditionalExpression:
		return &ast.ConditionalExpression{Token: n.Token, Cond: cloneExpr(n.Cond), Then: cloneExpr(n.Then), Else: cloneExpr(n.Else)}
	case *ast.AssignExpression:
		return &ast.AssignExpression{Token: n.Token, Left: cloneExpr(n.Left), Operator: n.Operator, Value: cloneExpr(n.Value)}
	case *ast.CallExpression:
		out := &ast.CallExpression{Token: n.Token, Callee: cloneExpr(n.Callee), Arguments: make([]ast.Expression, len(n.Arguments))}
		for i, a := range n.Arguments {
			out.Arguments[i] = cloneExpr(a)
		}
		return out
	case *ast.MemberExpression:
		return &ast.MemberExpression{Token: n.Token, Object: cloneExpr(n.Object), Property: cloneIdent(n.Property)}
	case *ast.IndexExpression:
		return &ast.IndexExpression{Token: n.Token, Object: cloneExpr(n.Object), Index: cloneExpr(n.Index)}
	case *ast.FunctionLiteral:
		return &ast.FunctionLiteral{Token: n.Token, Name: n.Name, Parameters: cloneIdents(n.Parameters), Body: cloneBlock(n.Body), Async: n.Async, Arrow: n.Arrow}
	case *ast.AwaitExpression:
		return &ast.AwaitExpression{Token: n.Token, Value: cloneExpr(n.Value)}
	}
	return e
}
