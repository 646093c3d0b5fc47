// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package registry implements the lifetime-managed service construction
// graph (spec §4.3): typed singleton / transient / scoped lifetimes,
// decorator wrapping, cycle detection, and the replace() hook the Reload
// Coordinator uses for its RECREATE strategy. Every service is built by its
// registered factory; there is no fallback that builds a service from its
// constructor's parameters.
//
// This is the Go-idiomatic rendering of the reflection-based DI container
// the original Python implementation builds in core/di_container_enhanced.py
// (ServiceDescriptor / ServiceLifetime / ServiceCreationContext): instead of
// introspecting constructor annotations at runtime, each registration
// carries an explicit factory function keyed by an interface marker
// (reflect.Type), and dependencies are resolved by recursively calling back
// into the registry from within that factory.
package registry

import (
	"fmt"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// Lifetime controls how many instances of a service exist and who owns them.
type Lifetime int

const (
	// Singleton: one instance for the lifetime of the Registry.
	Singleton Lifetime = iota
	// Transient: a new instance on every Resolve call; owned by the caller.
	Transient
	// Scoped: one instance per named Scope; released when the scope closes.
	Scoped
)

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	default:
		return "unknown"
	}
}

// Factory builds a new instance of a service, given the Registry it can use
// to resolve its own dependencies.
type Factory func(r *Registry) (interface{}, error)

// Decorator wraps an instance (for telemetry, error logging, ...) before it
// is handed back to a caller. Decorators are never applied to test doubles
// registered via RegisterInstance.
type Decorator func(name string, instance interface{}) interface{}

// Releasable is implemented by services that need explicit cleanup when a
// scope closes or a singleton is replaced.
type Releasable interface {
	Release() error
}

type descriptor struct {
	name       string
	iface      reflect.Type
	factory    Factory
	lifetime   Lifetime
	decorators []Decorator
	// isTestDouble marks instances registered directly via RegisterInstance;
	// decorators must never be applied to these.
	isTestDouble bool
}

// CyclicDependencyError names at least one cycle path, per spec P10.
type CyclicDependencyError struct {
	Chain []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency detected: %s", strings.Join(e.Chain, " -> "))
}

// Registry is the authoritative source of service instances. Safe for
// concurrent use.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]*descriptor
	singletons  map[string]interface{}
	building    map[string]*singletonBuild

	chainsMu sync.Mutex
	chains   map[int64]*chain

	scopesMu sync.Mutex
	scopes   map[string]*Scope
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		descriptors: make(map[string]*descriptor),
		singletons:  make(map[string]interface{}),
		building:    make(map[string]*singletonBuild),
		scopes:      make(map[string]*Scope),
	}
}

func typeName(t reflect.Type) string {
	return t.String()
}

// goroutineID extracts the calling goroutine's numeric id from its stack
// trace header ("goroutine 123 [running]: ..."). This is the standard
// workaround for Go's lack of goroutine-local storage; it is used here
// only on the cold path of cycle detection, never in a hot loop.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := string(buf[:n])
	s = strings.TrimPrefix(s, "goroutine ")
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Register associates interfaceType with factory under the given lifetime.
// name defaults to interfaceType's string form if empty, letting two
// registrations of the same Go interface coexist under distinct names.
func Register[T any](r *Registry, name string, lifetime Lifetime, factory Factory) {
	var zero T
	ifaceType := reflect.TypeOf(&zero).Elem()
	if name == "" {
		name = typeName(ifaceType)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors[name] = &descriptor{
		name:     name,
		iface:    ifaceType,
		factory:  factory,
		lifetime: lifetime,
	}
}

// Decorate appends a decorator to an already-registered service. Decorators
// run in the order added, wrapping the instance produced by the factory.
func (r *Registry) Decorate(name string, d Decorator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	desc, ok := r.descriptors[name]
	if !ok {
		return fmt.Errorf("registry: cannot decorate unknown service %q", name)
	}
	desc.decorators = append(desc.decorators, d)
	return nil
}

// RegisterInstance registers a pre-built instance as a singleton under name,
// bypassing the factory entirely. Used for test doubles; decorators are
// never applied to services registered this way.
func RegisterInstance[T any](r *Registry, name string, instance T) {
	var zero T
	ifaceType := reflect.TypeOf(&zero).Elem()
	if name == "" {
		name = typeName(ifaceType)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors[name] = &descriptor{
		name:         name,
		iface:        ifaceType,
		lifetime:     Singleton,
		isTestDouble: true,
	}
	r.singletons[name] = instance
}

// Resolve builds or fetches the named service and type-asserts it to T. A
// factory resolving its own dependencies calls Resolve again on the same
// *Registry; cycle detection tracks the in-progress set per calling
// goroutine (spec §4.3(a)'s "per-thread in-progress set"), so nested calls
// from the same goroutine's factory chain share one cycle-detection stack
// while unrelated concurrent resolutions on other goroutines do not
// interfere with each other.
func Resolve[T any](r *Registry, name string) (T, error) {
	var zero T
	gid := goroutineID()
	ch := r.chainFor(gid)
	raw, err := r.resolveNamed(name, ch)
	r.releaseChainIfIdle(gid, ch)
	if err != nil {
		return zero, err
	}
	typed, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("registry: service %q is not assignable to requested type", name)
	}
	return typed, nil
}

// chain tracks the in-progress resolution stack for one goroutine's
// resolution call tree, used for cycle detection.
type chain struct {
	seen  map[string]bool
	order []string
}

func (r *Registry) chainFor(gid int64) *chain {
	r.chainsMu.Lock()
	defer r.chainsMu.Unlock()
	if r.chains == nil {
		r.chains = make(map[int64]*chain)
	}
	c, ok := r.chains[gid]
	if !ok {
		c = &chain{seen: make(map[string]bool)}
		r.chains[gid] = c
	}
	return c
}

// releaseChainIfIdle drops the per-goroutine chain once its resolution tree
// has fully unwound, so chain entries do not accumulate across unrelated calls.
func (r *Registry) releaseChainIfIdle(gid int64, c *chain) {
	if len(c.order) != 0 {
		return
	}
	r.chainsMu.Lock()
	defer r.chainsMu.Unlock()
	delete(r.chains, gid)
}

func (c *chain) push(name string) error {
	if c.seen[name] {
		full := append(append([]string{}, c.order...), name)
		return &CyclicDependencyError{Chain: full}
	}
	c.seen[name] = true
	c.order = append(c.order, name)
	return nil
}

func (c *chain) pop() {
	if len(c.order) == 0 {
		return
	}
	last := c.order[len(c.order)-1]
	c.order = c.order[:len(c.order)-1]
	delete(c.seen, last)
}

func (r *Registry) resolveNamed(name string, ch *chain) (interface{}, error) {
	if err := ch.push(name); err != nil {
		return nil, err
	}
	defer ch.pop()

	r.mu.RLock()
	desc, ok := r.descriptors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("registry: no service registered under name %q", name)
	}

	switch desc.lifetime {
	case Singleton:
		return r.resolveSingleton(desc, ch)
	case Transient:
		return r.build(desc, ch)
	case Scoped:
		return nil, fmt.Errorf("registry: service %q is scoped; resolve it through a Scope", name)
	default:
		return nil, fmt.Errorf("registry: service %q has unknown lifetime", name)
	}
}

// singletonBuild tracks an in-flight construction so concurrent resolvers
// of the same singleton wait for one build instead of racing.
type singletonBuild struct {
	done chan struct{}
	inst interface{}
	err  error
}

func (r *Registry) resolveSingleton(desc *descriptor, ch *chain) (interface{}, error) {
	r.mu.Lock()
	if inst, ok := r.singletons[desc.name]; ok {
		r.mu.Unlock()
		return inst, nil
	}
	if r.building == nil {
		r.building = make(map[string]*singletonBuild)
	}
	if b, ok := r.building[desc.name]; ok {
		r.mu.Unlock()
		<-b.done
		return b.inst, b.err
	}
	b := &singletonBuild{done: make(chan struct{})}
	r.building[desc.name] = b
	r.mu.Unlock()

	// Build outside the lock: the factory may re-enter Resolve for its own
	// dependencies, and holding r.mu here would deadlock against that.
	inst, err := r.build(desc, ch)
	b.inst, b.err = inst, err
	close(b.done)

	r.mu.Lock()
	delete(r.building, desc.name)
	if err == nil {
		r.singletons[desc.name] = inst
	}
	r.mu.Unlock()

	return inst, err
}

// build constructs a fresh instance (used for Transient and Scoped
// lifetimes, and the first build of a Singleton).
func (r *Registry) build(desc *descriptor, ch *chain) (interface{}, error) {
	if desc.isTestDouble {
		r.mu.RLock()
		inst := r.singletons[desc.name]
		r.mu.RUnlock()
		return inst, nil
	}
	if desc.factory == nil {
		return nil, fmt.Errorf("registry: service %q has no factory", desc.name)
	}
	inst, err := desc.factory(r)
	if err != nil {
		return nil, fmt.Errorf("registry: factory for %q failed: %w", desc.name, err)
	}
	for _, d := range desc.decorators {
		inst = d(desc.name, inst)
	}
	return inst, nil
}

// Replace swaps the singleton instance registered under name with
// newInstance, returning the previous instance. Used by the Reload
// Coordinator's RECREATE strategy (spec §4.10 step 6). Does not call
// Release on the old instance; the caller does that explicitly so it can
// order it after any dependents have already been re-pointed.
func (r *Registry) Replace(name string, newInstance interface{}) (interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	desc, ok := r.descriptors[name]
	if !ok {
		return nil, fmt.Errorf("registry: cannot replace unknown service %q", name)
	}
	if desc.lifetime != Singleton {
		return nil, fmt.Errorf("registry: replace() only applies to singleton services, %q is %s", name, desc.lifetime)
	}
	old := r.singletons[name]
	for _, d := range desc.decorators {
		newInstance = d(desc.name, newInstance)
	}
	r.singletons[name] = newInstance
	return old, nil
}

// SeedSingleton installs an already-built instance as the singleton for an
// already-registered name, without invoking its factory. Used at startup
// wiring time when a service was constructed eagerly (outside the registry)
// but still needs to be the Registry's source of truth for later RECREATE
// reloads.
func (r *Registry) SeedSingleton(name string, instance interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	desc, ok := r.descriptors[name]
	if !ok {
		return fmt.Errorf("registry: cannot seed unknown service %q", name)
	}
	if desc.lifetime != Singleton {
		return fmt.Errorf("registry: seedSingleton only applies to singleton services, %q is %s", name, desc.lifetime)
	}
	r.singletons[name] = instance
	return nil
}

// Factory returns the registered factory for name, for callers (the Reload
// Coordinator) that need to construct a replacement instance themselves
// before calling Replace.
func (r *Registry) Factory(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.descriptors[name]
	if !ok {
		return nil, fmt.Errorf("registry: no service registered under name %q", name)
	}
	if desc.factory == nil {
		return nil, fmt.Errorf("registry: service %q has no factory to recreate from", name)
	}
	return desc.factory, nil
}
