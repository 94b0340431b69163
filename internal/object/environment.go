package object

import (
	"log/slog"
	"sync/atomic"
)

var nextID atomic.Uint64

// Environment is not safe for concurrent use; hosts give each session its own.
type Environment struct {
	ID    uint64
	store map[string]Object
	outer *Environment
}

func nextEnvID() uint64 {
	return nextID.Add(1)
}

// NewEnclosedEnvironment creates a child scope; lookups that miss here fall
// through to outer.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	slog.Debug("new enclosed env",
		slog.Uint64("env", env.ID),
		slog.Uint64("outer", outer.ID))
	return env
}

func NewEnvironment() *Environment {
	return &Environment{
		ID:    nextEnvID(),
		store: make(map[string]Object),
	}
}

func (e *Environment) Get(name string) (Object, bool) {
	obj, ok := e.store[name]
	if !ok && e.outer != nil {
		obj, ok = e.outer.Get(name)
	}
	return obj, ok
}

// Set binds name in this scope only, replacing any earlier binding here.
func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = val
	return val
}

func (e *Environment) Outer() *Environment {
	return e.outer
}

// Names lists the bindings of this scope, without walking outers.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.store))
	for name := range e.store {
		names = append(names, name)
	}
	return names
}
