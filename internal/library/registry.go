// Package library implements the task kinds of the structure-generation
// pipeline and the registry they are constructed through.
package library

import (
	"fmt"
	"sort"

	"surfgen/internal/config"
	"surfgen/internal/core"
	"surfgen/internal/geometry"
	"surfgen/internal/matdb"
)

// Task kind names. Dependencies between kinds are declared through the
// registry by name, so no task package-references another's constructor.
const (
	KindGenerateGas             = "generate_gas"
	KindGenerateBulk            = "generate_bulk"
	KindGenerateSlabs           = "generate_slabs"
	KindGenerateAdsorptionSites = "generate_adsorption_sites"
)

// Env bundles the collaborators and settings tasks execute against. The
// same Env must be used for a task and its dependencies.
type Env struct {
	Geometry geometry.Operations
	Gases    geometry.GasLibrary
	MatDB    matdb.Client
	Settings config.Settings
}

// Factory constructs one task kind from a raw parameter bag, validating and
// normalizing it. The registry is passed through so factories can declare
// dependencies on other kinds by name.
type Factory func(env *Env, reg *Registry, params core.Params) (core.Task, error)

// Registry maps kind names to factories.
type Registry struct {
	env       *Env
	factories map[string]Factory
}

// NewRegistry returns an empty registry bound to env.
func NewRegistry(env *Env) *Registry {
	return &Registry{env: env, factories: make(map[string]Factory)}
}

// Register adds a factory for a kind name.
func (r *Registry) Register(kind string, f Factory) error {
	if kind == "" {
		return core.InvalidParameterf("task kind is required")
	}
	if _, dup := r.factories[kind]; dup {
		return fmt.Errorf("task kind %q already registered", kind)
	}
	r.factories[kind] = f
	return nil
}

// New constructs a validated task of the given kind.
func (r *Registry) New(kind string, params core.Params) (core.Task, error) {
	f, ok := r.factories[kind]
	if !ok {
		return nil, core.InvalidParameterf("unknown task kind %q (known: %v)", kind, r.Kinds())
	}
	return f(r.env, r, params)
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// DefaultRegistry returns a registry with every built-in task kind.
func DefaultRegistry(env *Env) *Registry {
	r := NewRegistry(env)
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(r.Register(KindGenerateGas, func(env *Env, reg *Registry, p core.Params) (core.Task, error) {
		return NewGenerateGas(env, p)
	}))
	must(r.Register(KindGenerateBulk, func(env *Env, reg *Registry, p core.Params) (core.Task, error) {
		return NewGenerateBulk(env, p)
	}))
	must(r.Register(KindGenerateSlabs, func(env *Env, reg *Registry, p core.Params) (core.Task, error) {
		return NewGenerateSlabs(env, reg, p)
	}))
	must(r.Register(KindGenerateAdsorptionSites, func(env *Env, reg *Registry, p core.Params) (core.Task, error) {
		return NewGenerateAdsorptionSites(env, reg, p)
	}))
	return r
}
