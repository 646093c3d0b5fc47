// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package reload implements the Reload Coordinator (spec §4.10): a
// two-phase-commit driver over the set of services affected by a
// ConfigDiff, laid out into dependency stages by Kahn's algorithm and
// executed stage-by-stage, each stage's prepare/commit calls running
// concurrently via golang.org/x/sync/errgroup (the same dependency
// MrWong99-glyphoxa uses for concurrent fan-out).
//
// This is the Go-idiomatic rendering of the original
// ConfigReloadCoordinator (core/services/config_reload_coordinator.py,
// exercised by tests/test_config_reload.py): the two-phase-commit and
// rollback semantics are unchanged, translated from exception-based
// Python control flow into explicit error returns.
package reload

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AshBuk/sonicinput/config/store"
	"github.com/AshBuk/sonicinput/internal/eventbus"
	"github.com/AshBuk/sonicinput/internal/logger"
	"github.com/AshBuk/sonicinput/internal/registry"
)

// Strategy is a reloadable service's declared response to a given diff.
type Strategy int

const (
	// ParameterUpdate: the service can absorb the new values in place,
	// typically just swapping a field under its own lock.
	ParameterUpdate Strategy = iota
	// Reinitialize: the service must tear down and rebuild internal state
	// (e.g. a reconnecting client) but the instance identity is unchanged.
	Reinitialize
	// Recreate: the Coordinator itself constructs a new instance from the
	// Registry and swaps it in (spec §4.10 step 6).
	Recreate
)

func (s Strategy) String() string {
	switch s {
	case ParameterUpdate:
		return "parameter_update"
	case Reinitialize:
		return "reinitialize"
	case Recreate:
		return "recreate"
	default:
		return "unknown"
	}
}

// Reloadable is implemented by any service the Reload Coordinator can
// drive through a config change (spec §4.10).
type Reloadable interface {
	// ConfigDependencies lists the dotted config paths (or path prefixes)
	// this service cares about.
	ConfigDependencies() []string
	// ServiceDependencies names other reloadable services that must
	// finish each phase before this one starts it (spec P6).
	ServiceDependencies() []string
	// ChooseStrategy decides how this service will absorb diff.
	ChooseStrategy(diff *store.ConfigDiff) Strategy
	// CanReloadNow reports whether the service is in a state where a
	// config change can safely apply (e.g. not mid-recording).
	CanReloadNow() (bool, string)
	// Prepare validates and stages the change, returning data Rollback
	// can use to undo it if a later stage fails.
	Prepare(diff *store.ConfigDiff) (rollbackData interface{}, err error)
	// Commit makes the staged change visible.
	Commit(diff *store.ConfigDiff) error
	// Rollback undoes a Prepare (or, if called post-commit, a Commit).
	Rollback(rollbackData interface{}) error
}

// Recreatable is an optional extension of Reloadable: a service whose
// RECREATE strategy swaps a registry singleton some other component still
// holds a direct pointer to implements this so the Coordinator can tell it
// about the replacement (spec §4.10 step 6 leaves "repoint dependents" to
// the caller; this is that hook).
type Recreatable interface {
	AfterRecreate(newInstance interface{}) error
}

// CyclicDependencyError names at least one cycle path among the affected
// set (spec P10).
type CyclicDependencyError struct {
	Chain []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("reload: cyclic service dependency among affected set: %s", strings.Join(e.Chain, ", "))
}

// RestartRequiredError is returned when the gate step finds a service that
// cannot reload in its current state.
type RestartRequiredError struct {
	Services []string
	Reasons  map[string]string
}

func (e *RestartRequiredError) Error() string {
	return fmt.Sprintf("reload: restart required for %s", strings.Join(e.Services, ", "))
}

// Plan is the emitted payload describing the stage layering the
// Coordinator computed for one reload (event ConfigReloadStarted).
type Plan struct {
	Affected []string
	Stages   [][]string
}

// StageDone reports completion of one stage, for both the prepare and the
// commit pass (event ConfigReloadStageDone).
type StageDone struct {
	StageIndex int
	Phase      string
}

// Failed reports which service/phase aborted the reload (event
// ConfigReloadFailed).
type Failed struct {
	Service string
	Phase   string
	Err     error
}

// Succeeded reports the services the reload applied to successfully
// (event ConfigReloadSucceeded).
type Succeeded struct {
	Affected []string
}

// Event names emitted on the Event Bus (spec §4.10 "Emitted events").
const (
	EventStarted         = "config.reload.started"
	EventStageDone       = "config.reload.stage_done"
	EventFailed          = "config.reload.failed"
	EventSucceeded       = "config.reload.succeeded"
	EventRestartRequired = "config.reload.restart_required"
)

// Coordinator drives the two-phase commit described in spec §4.10 over
// whatever Reloadable services have been registered with it.
type Coordinator struct {
	mu       sync.Mutex
	services map[string]Reloadable
	registry *registry.Registry
	bus      *eventbus.Bus
	log      logger.Logger
}

// New builds a Coordinator. reg is used for the RECREATE strategy's
// Factory/Replace calls; bus is where reload lifecycle events are emitted.
func New(reg *registry.Registry, bus *eventbus.Bus, log logger.Logger) *Coordinator {
	return &Coordinator{
		services: make(map[string]Reloadable),
		registry: reg,
		bus:      bus,
		log:      log,
	}
}

// Register associates a Reloadable with the name it is known by in the
// Service Registry (needed for the RECREATE strategy's Factory lookup).
func (c *Coordinator) Register(name string, svc Reloadable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = svc
}

// HandleDiff adapts Reload to the eventbus.Handler signature, so a
// Coordinator can be wired directly via bus.On(store.EventConfigChanged,
// coordinator.HandleDiff).
func (c *Coordinator) HandleDiff(payload interface{}) error {
	diff, ok := payload.(*store.ConfigDiff)
	if !ok {
		return fmt.Errorf("reload: unexpected event payload type %T", payload)
	}
	return c.Reload(diff)
}

// Reload runs the full gate/plan/prepare/commit algorithm for one
// ConfigDiff (spec §4.10 steps 1-6).
func (c *Coordinator) Reload(diff *store.ConfigDiff) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	affected := c.affectedServices(diff.ChangedKeys)
	if len(affected) == 0 {
		return nil
	}

	if blocked, reasons := c.gate(affected); len(blocked) > 0 {
		c.emit(EventRestartRequired, map[string]interface{}{"services": blocked, "reasons": reasons})
		return &RestartRequiredError{Services: blocked, Reasons: reasons}
	}

	stages, err := c.layer(affected)
	if err != nil {
		return err
	}

	c.emit(EventStarted, &Plan{Affected: affected, Stages: stages})

	strategies := map[string]Strategy{}
	var stratMu sync.Mutex

	prepared := make([]string, 0, len(affected))
	rollbackData := map[string]interface{}{}
	var prepMu sync.Mutex

	for stageIdx, stage := range stages {
		g := new(errgroup.Group)
		for _, name := range stage {
			name := name
			svc := c.services[name]
			g.Go(func() error {
				strat := svc.ChooseStrategy(diff)
				rb, err := svc.Prepare(diff)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				stratMu.Lock()
				strategies[name] = strat
				stratMu.Unlock()
				prepMu.Lock()
				prepared = append(prepared, name)
				rollbackData[name] = rb
				prepMu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			c.rollback(prepared, rollbackData)
			c.emit(EventFailed, &Failed{Phase: "prepare", Err: err})
			return fmt.Errorf("reload: prepare failed in stage %d: %w", stageIdx, err)
		}
		c.emit(EventStageDone, &StageDone{StageIndex: stageIdx, Phase: "prepare"})
	}

	committed := make([]string, 0, len(affected))
	var commitMu sync.Mutex

	for stageIdx, stage := range stages {
		g := new(errgroup.Group)
		for _, name := range stage {
			name := name
			svc := c.services[name]
			g.Go(func() error {
				var err error
				if strategies[name] == Recreate {
					err = c.recreate(name, svc)
				} else {
					err = svc.Commit(diff)
				}
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				commitMu.Lock()
				committed = append(committed, name)
				commitMu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			// Step 5: roll back services that already committed, in
			// reverse order; the service whose commit failed is not
			// rolled back (it never committed), and services not yet
			// reached never ran at all.
			c.rollback(committed, rollbackData)
			c.emit(EventFailed, &Failed{Phase: "commit", Err: err})
			return fmt.Errorf("reload: commit failed in stage %d: %w", stageIdx, err)
		}
		c.emit(EventStageDone, &StageDone{StageIndex: stageIdx, Phase: "commit"})
	}

	c.emit(EventSucceeded, &Succeeded{Affected: affected})
	return nil
}

// gate implements spec §4.10 step 2: abort the whole reload if any
// affected service reports it cannot reload right now.
func (c *Coordinator) gate(affected []string) ([]string, map[string]string) {
	var blocked []string
	reasons := map[string]string{}
	for _, name := range affected {
		if ok, reason := c.services[name].CanReloadNow(); !ok {
			blocked = append(blocked, name)
			reasons[name] = reason
		}
	}
	sort.Strings(blocked)
	return blocked, reasons
}

// rollback undoes prepared/committed services in reverse order, per spec
// §4.10 steps 4 and 5.
func (c *Coordinator) rollback(names []string, rollbackData map[string]interface{}) {
	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]
		if err := c.services[name].Rollback(rollbackData[name]); err != nil {
			c.log.Error("reload: rollback for %q failed: %v", name, err)
		}
	}
}

// recreate implements spec §4.10 step 6's RECREATE strategy.
func (c *Coordinator) recreate(name string, svc Reloadable) error {
	if c.registry == nil {
		return fmt.Errorf("recreate strategy requires a service registry")
	}
	factory, err := c.registry.Factory(name)
	if err != nil {
		return err
	}
	newInst, err := factory(c.registry)
	if err != nil {
		return fmt.Errorf("constructing replacement: %w", err)
	}
	old, err := c.registry.Replace(name, newInst)
	if err != nil {
		return err
	}
	if releasable, ok := old.(registry.Releasable); ok {
		if err := releasable.Release(); err != nil {
			c.log.Warning("reload: release hook for %q failed: %v", name, err)
		}
	}
	if recreatable, ok := svc.(Recreatable); ok {
		if err := recreatable.AfterRecreate(newInst); err != nil {
			return fmt.Errorf("post-recreate hook for %q: %w", name, err)
		}
	}
	return nil
}

// affectedServices implements spec §4.10 step 1: services whose
// config_dependencies intersect diff.changed_keys, a dependency path
// matching either exactly or as a dotted prefix of a changed key.
func (c *Coordinator) affectedServices(changedKeys []string) []string {
	var out []string
	for name, svc := range c.services {
		for _, dep := range svc.ConfigDependencies() {
			if dependencyMatches(changedKeys, dep) {
				out = append(out, name)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

func dependencyMatches(changedKeys []string, dep string) bool {
	for _, k := range changedKeys {
		if k == dep || strings.HasPrefix(k, dep+".") || strings.HasPrefix(dep, k+".") {
			return true
		}
	}
	return false
}

// layer builds a DAG over the affected set using ServiceDependencies
// (restricted to other members of the affected set) and layers it via
// Kahn's algorithm (spec §4.10 step 3). Returns a CyclicDependencyError
// naming the unresolved remainder if the graph is not acyclic.
func (c *Coordinator) layer(affected []string) ([][]string, error) {
	inSet := make(map[string]bool, len(affected))
	for _, n := range affected {
		inSet[n] = true
	}

	indegree := make(map[string]int, len(affected))
	dependents := make(map[string][]string)
	for _, n := range affected {
		indegree[n] = 0
	}
	for _, n := range affected {
		for _, dep := range c.services[n].ServiceDependencies() {
			if !inSet[dep] {
				continue
			}
			dependents[dep] = append(dependents[dep], n)
			indegree[n]++
		}
	}

	var stages [][]string
	processed := make(map[string]bool, len(affected))

	var current []string
	for _, n := range affected {
		if indegree[n] == 0 {
			current = append(current, n)
		}
	}
	sort.Strings(current)

	for len(current) > 0 {
		stages = append(stages, current)
		var next []string
		for _, n := range current {
			processed[n] = true
			for _, dependent := range dependents[n] {
				indegree[dependent]--
				if indegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		sort.Strings(next)
		current = next
	}

	if len(processed) != len(affected) {
		var cycle []string
		for _, n := range affected {
			if !processed[n] {
				cycle = append(cycle, n)
			}
		}
		sort.Strings(cycle)
		return nil, &CyclicDependencyError{Chain: cycle}
	}
	return stages, nil
}

func (c *Coordinator) emit(name string, payload interface{}) {
	if c.bus != nil {
		c.bus.Emit(name, payload)
	}
}
