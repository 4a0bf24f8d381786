package interp

// Cell is one heap-allocated variable binding. Environments map names to
// cells rather than values so that storage can be shared: closures that
// capture a variable and resumable frames that hoist one both alias the
// same cell.
type Cell struct {
	Value Object
}

func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]*Cell)}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

type Environment struct {
	store map[string]*Cell
	outer *Environment
}

func (e *Environment) Get(name string) (Object, bool) {
	if cell, ok := e.store[name]; ok {
		return cell.Value, true
	}
	if e.outer != nil {
		return e.outer.Get(name)
	}
	return nil, false
}

// GetCell resolves a name to its cell through the scope chain.
func (e *Environment) GetCell(name string) (*Cell, bool) {
	if cell, ok := e.store[name]; ok {
		return cell, true
	}
	if e.outer != nil {
		return e.outer.GetCell(name)
	}
	return nil, false
}

// Set declares a new binding in this scope with a fresh cell.
func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = &Cell{Value: val}
	return val
}

// BindCell declares a binding backed by an existing cell. Used when a
// resumable frame re-establishes hoisted variables during resume descent.
func (e *Environment) BindCell(name string, cell *Cell) {
	e.store[name] = cell
}

// Update assigns to an existing binding, walking outward.
func (e *Environment) Update(name string, val Object) bool {
	if cell, ok := e.store[name]; ok {
		cell.Value = val
		return true
	}
	if e.outer != nil {
		return e.outer.Update(name, val)
	}
	return false
}

// Has reports whether the name is bound in this scope only.
func (e *Environment) Has(name string) bool {
	_, ok := e.store[name]
	return ok
}
