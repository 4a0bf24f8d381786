package async

import (
	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/interp"
)

// tryStmt executes try/catch/finally with suspension anywhere in the
// three sub-blocks. A control transfer (return, throw, break, continue)
// that has to cross an awaiting finally is parked in the frame, keyed by
// region, before the finally runs; when the finally eventually completes
// the parked transfer is replayed, unless the finally produced its own
// transfer, which wins.
func (x *exec) tryStmt(n *ast.TryStatement, env *interp.Environment) result {
	an := x.fr.Analysis
	region, _ := an.RegionFor(n)

	var res result
	if x.descending() {
		target := x.rs.target
		switch {
		case an.ContainsState(n.Body, target):
			res = x.block(n.Body, env)
			if res.kind == ctrlSuspend {
				return res
			}
			if res.kind == ctrlThrow && n.Catch != nil {
				res = x.runCatch(n, res.value, env)
				if res.kind == ctrlSuspend {
					return res
				}
			}
		case n.Catch != nil && an.ContainsState(n.Catch, target):
			// The original exception was consumed when the catch first
			// entered; a throw after this point is not re-caught here.
			res = x.resumeCatch(n, env)
			if res.kind == ctrlSuspend {
				return res
			}
		case n.Finally != nil && an.ContainsState(n.Finally, target):
			fres := x.block(n.Finally, env)
			if fres.kind == ctrlSuspend {
				return fres
			}
			parked := x.fr.unpark(region.ID)
			if fres.kind != ctrlNormal {
				return fres
			}
			return parked
		default:
			return result{kind: ctrlThrow, value: &interp.String{
				Value: "resume target not found in try",
			}}
		}
	} else {
		res = x.block(n.Body, env)
		if res.kind == ctrlSuspend {
			return res
		}
		if res.kind == ctrlThrow && n.Catch != nil {
			res = x.runCatch(n, res.value, env)
			if res.kind == ctrlSuspend {
				return res
			}
		}
	}

	if n.Finally != nil {
		// Park first: if the finally suspends, the transfer must survive
		// in the frame until a later resume step finishes the finally.
		x.fr.park(region.ID, res)
		fres := x.block(n.Finally, env)
		if fres.kind == ctrlSuspend {
			return fres
		}
		parked := x.fr.unpark(region.ID)
		if fres.kind != ctrlNormal {
			return fres
		}
		res = parked
	}
	return res
}

// runCatch enters the catch block with the thrown value bound to the
// parameter. The parameter scope doubles as the block scope, matching
// the synchronous evaluator.
func (x *exec) runCatch(n *ast.TryStatement, thrown interp.Object, env *interp.Environment) result {
	catchEnv := interp.NewEnclosedEnvironment(env)
	if n.CatchParam != nil {
		x.declare(catchEnv, n.CatchParam, thrown)
	}
	return x.blockIn(n.Catch, catchEnv)
}

// resumeCatch re-enters a catch block that suspended. The parameter is
// re-bound from its frame cell; a catch that suspends always has its
// parameter hoisted.
func (x *exec) resumeCatch(n *ast.TryStatement, env *interp.Environment) result {
	catchEnv := interp.NewEnclosedEnvironment(env)
	if n.CatchParam != nil {
		x.rebindIdent(n.CatchParam, catchEnv)
	}
	return x.blockIn(n.Catch, catchEnv)
}
