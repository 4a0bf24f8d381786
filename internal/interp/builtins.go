package interp

import (
	"fmt"
	"strings"

	"github.com/driftlang/drift/internal/config"
)

// RegisterBuiltins installs the core builtins into env. Host-provided
// async builtins (delay, resolved, ...) are registered separately by the
// async runtime.
func (e *Evaluator) RegisterBuiltins(env *Environment) {
	env.Set(config.PrintFuncName, &Builtin{Name: config.PrintFuncName, Fn: func(args ...Object) Object {
		parts := make([]string, len(args))
		for i, arg := range args {
			parts[i] = toDisplayString(arg)
		}
		fmt.Fprintln(e.Out, strings.Join(parts, " "))
		return &Undefined{}
	}})

	env.Set(config.LenFuncName, &Builtin{Name: config.LenFuncName, Fn: func(args ...Object) Object {
		if len(args) != 1 {
			return e.Throw("len expects 1 argument, got %d", len(args))
		}
		switch arg := args[0].(type) {
		case *List:
			return &Number{Value: float64(len(arg.Elements))}
		case *String:
			return &Number{Value: float64(len(arg.Value))}
		case *Record:
			return &Number{Value: float64(len(arg.Fields))}
		}
		return e.Throw("len does not support %s", args[0].Type())
	}})

	env.Set(config.PushFuncName, &Builtin{Name: config.PushFuncName, Fn: func(args ...Object) Object {
		if len(args) != 2 {
			return e.Throw("push expects 2 arguments, got %d", len(args))
		}
		list, ok := args[0].(*List)
		if !ok {
			return e.Throw("push expects a list, got %s", args[0].Type())
		}
		list.Elements = append(list.Elements, args[1])
		return list
	}})

	env.Set(config.StrFuncName, &Builtin{Name: config.StrFuncName, Fn: func(args ...Object) Object {
		if len(args) != 1 {
			return e.Throw("str expects 1 argument, got %d", len(args))
		}
		return &String{Value: toDisplayString(args[0])}
	}})

	env.Set(config.TypeOfFuncName, &Builtin{Name: config.TypeOfFuncName, Fn: func(args ...Object) Object {
		if len(args) != 1 {
			return e.Throw("typeOf expects 1 argument, got %d", len(args))
		}
		return &String{Value: string(args[0].Type())}
	}})
}

// toDisplayString renders a value the way print and string concatenation
// see it: strings unquoted, everything else via Inspect.
func toDisplayString(obj Object) string {
	if s, ok := obj.(*String); ok {
		return s.Value
	}
	return obj.Inspect()
}
