// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package registry

import (
	"fmt"
	"sync"
)

// Scope holds the shared instances of every scoped-lifetime service
// resolved through it, until Close releases them (spec §4.3, "Scopes").
type Scope struct {
	name  string
	r     *Registry
	mu    sync.Mutex
	insts map[string]interface{}
}

// CreateScope returns a new handle; all scoped services resolved through it
// share one instance until Close is called.
func (r *Registry) CreateScope(name string) *Scope {
	s := &Scope{name: name, r: r, insts: make(map[string]interface{})}
	r.scopesMu.Lock()
	r.scopes[name] = s
	r.scopesMu.Unlock()
	return s
}

// ResolveScoped builds or fetches the named scoped service within this
// scope. Calling it with a service registered under a non-Scoped lifetime
// is an error — scoped resolution is only meaningful for Scoped services.
func ResolveScoped[T any](s *Scope, name string) (T, error) {
	var zero T
	s.mu.Lock()
	if inst, ok := s.insts[name]; ok {
		s.mu.Unlock()
		typed, ok := inst.(T)
		if !ok {
			return zero, fmt.Errorf("registry: scoped service %q is not assignable to requested type", name)
		}
		return typed, nil
	}
	s.mu.Unlock()

	s.r.mu.RLock()
	desc, ok := s.r.descriptors[name]
	s.r.mu.RUnlock()
	if !ok {
		return zero, fmt.Errorf("registry: no service registered under name %q", name)
	}
	if desc.lifetime != Scoped {
		return zero, fmt.Errorf("registry: service %q is not scoped (lifetime=%s)", name, desc.lifetime)
	}

	gid := goroutineID()
	ch := s.r.chainFor(gid)
	if err := ch.push(name); err != nil {
		s.r.releaseChainIfIdle(gid, ch)
		return zero, err
	}
	raw, err := s.r.build(desc, ch)
	ch.pop()
	s.r.releaseChainIfIdle(gid, ch)
	if err != nil {
		return zero, err
	}

	s.mu.Lock()
	if existing, ok := s.insts[name]; ok {
		// Lost the race with a concurrent ResolveScoped for the same name;
		// keep the first winner so there is exactly one instance per scope.
		s.mu.Unlock()
		typed, ok := existing.(T)
		if !ok {
			return zero, fmt.Errorf("registry: scoped service %q is not assignable to requested type", name)
		}
		return typed, nil
	}
	s.insts[name] = raw
	s.mu.Unlock()

	typed, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("registry: scoped service %q is not assignable to requested type", name)
	}
	return typed, nil
}

// Close releases every instance built within this scope, in no particular
// order (scoped services are not expected to depend on each other across
// the scope boundary), and removes the scope from its Registry.
func (s *Scope) Close() error {
	s.mu.Lock()
	insts := s.insts
	s.insts = nil
	s.mu.Unlock()

	var lastErr error
	for _, inst := range insts {
		if rel, ok := inst.(Releasable); ok {
			if err := rel.Release(); err != nil {
				lastErr = err
			}
		}
	}

	s.r.scopesMu.Lock()
	delete(s.r.scopes, s.name)
	s.r.scopesMu.Unlock()

	return lastErr
}
