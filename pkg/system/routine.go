package system

// Routine is the unit of work a system performs during a build pass.
// Run is called at most once, with no knowledge of the graph around it.
type Routine interface {
	Run() error
}

// RoutineFunc adapts an ordinary function to the [Routine] interface.
type RoutineFunc func() error

// Run calls f.
func (f RoutineFunc) Run() error { return f() }

// missingSystem stands in for a dependency that has been referenced but not
// registered yet.
type missingSystem string

func (m missingSystem) Run() error { return missingDependentSystemError(string(m)) }
