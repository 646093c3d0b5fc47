// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package reload

import (
	"errors"
	"sync"
	"testing"

	"github.com/AshBuk/sonicinput/config/store"
	"github.com/AshBuk/sonicinput/internal/eventbus"
	"github.com/AshBuk/sonicinput/internal/logger"
	"github.com/AshBuk/sonicinput/internal/registry"
)

// fakeReloadable is a hand-written Reloadable test double recording every
// call it receives, in the teacher's stub-struct test style (no mocking
// framework, see hotkeys/mocks and audio/mocks).
type fakeReloadable struct {
	mu sync.Mutex

	configDeps  []string
	serviceDeps []string
	strategy    Strategy

	canReload    bool
	reloadReason string

	prepareErr  error
	commitErr   error
	rollbackErr error

	prepared      bool
	committed     bool
	rolledBack    bool
	rollbackValue interface{}
}

func newFakeReloadable(configDeps ...string) *fakeReloadable {
	return &fakeReloadable{configDeps: configDeps, canReload: true}
}

func (f *fakeReloadable) ConfigDependencies() []string  { return f.configDeps }
func (f *fakeReloadable) ServiceDependencies() []string { return f.serviceDeps }
func (f *fakeReloadable) ChooseStrategy(*store.ConfigDiff) Strategy { return f.strategy }
func (f *fakeReloadable) CanReloadNow() (bool, string)  { return f.canReload, f.reloadReason }

func (f *fakeReloadable) Prepare(*store.ConfigDiff) (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.prepareErr != nil {
		return nil, f.prepareErr
	}
	f.prepared = true
	return "rollback-data", nil
}

func (f *fakeReloadable) Commit(*store.ConfigDiff) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	return nil
}

func (f *fakeReloadable) Rollback(data interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rolledBack = true
	f.rollbackValue = data
	return f.rollbackErr
}

func (f *fakeReloadable) wasPrepared() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prepared
}

func (f *fakeReloadable) wasCommitted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.committed
}

func (f *fakeReloadable) wasRolledBack() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rolledBack
}

func newTestCoordinator() *Coordinator {
	log := logger.NewDefaultLogger(logger.WarningLevel)
	return New(registry.New(), eventbus.New(log), log)
}

func diffFor(keys ...string) *store.ConfigDiff {
	return &store.ConfigDiff{ChangedKeys: keys}
}

// P5 (reload atomicity): when a later stage's commit fails, every service
// that had already committed is rolled back — no partial application.
func TestReload_AtomicRollbackOnCommitFailure(t *testing.T) {
	c := newTestCoordinator()

	upstream := newFakeReloadable("audio.recording_method")
	downstream := newFakeReloadable("audio.recording_method")
	downstream.serviceDeps = []string{"upstream"}
	downstream.commitErr = errors.New("boom")

	c.Register("upstream", upstream)
	c.Register("downstream", downstream)

	err := c.Reload(diffFor("audio.recording_method"))
	if err == nil {
		t.Fatal("expected reload to fail")
	}
	if !upstream.wasCommitted() {
		t.Fatal("upstream should have committed before downstream failed")
	}
	if !upstream.wasRolledBack() {
		t.Fatal("upstream's successful commit must be rolled back (P5 atomicity)")
	}
	if downstream.wasCommitted() {
		t.Fatal("downstream's failed commit must not be marked committed")
	}
}

// P5, prepare-phase variant: a prepare failure rolls back every service
// that had already prepared, and nothing commits.
func TestReload_RollbackOnPrepareFailure(t *testing.T) {
	c := newTestCoordinator()

	a := newFakeReloadable("ai.enabled")
	b := newFakeReloadable("ai.enabled")
	b.serviceDeps = []string{"a"}
	b.prepareErr = errors.New("invalid value")

	c.Register("a", a)
	c.Register("b", b)

	err := c.Reload(diffFor("ai.enabled"))
	if err == nil {
		t.Fatal("expected reload to fail")
	}
	if !a.wasPrepared() || !a.wasRolledBack() {
		t.Fatal("a's prepare must be rolled back after b's prepare fails")
	}
	if a.wasCommitted() || b.wasCommitted() {
		t.Fatal("nothing should commit when prepare fails")
	}
}

// P6 (reload ordering): a service is never prepared/committed before a
// service it declares as a dependency.
func TestReload_OrderingRespectsServiceDependencies(t *testing.T) {
	c := newTestCoordinator()

	var mu sync.Mutex
	var commitOrder []string

	upstream := newFakeReloadable("hotkeys.start_recording")
	downstream := newFakeReloadable("hotkeys.start_recording")
	downstream.serviceDeps = []string{"upstream"}

	// Wrap Commit to record ordering without racing the embedded struct.
	recordingUpstream := &orderRecordingReloadable{fakeReloadable: upstream, name: "upstream", mu: &mu, order: &commitOrder}
	recordingDownstream := &orderRecordingReloadable{fakeReloadable: downstream, name: "downstream", mu: &mu, order: &commitOrder}

	c.Register("upstream", recordingUpstream)
	c.Register("downstream", recordingDownstream)

	if err := c.Reload(diffFor("hotkeys.start_recording")); err != nil {
		t.Fatalf("unexpected reload failure: %v", err)
	}

	if len(commitOrder) != 2 || commitOrder[0] != "upstream" || commitOrder[1] != "downstream" {
		t.Fatalf("expected upstream committed before downstream, got %v", commitOrder)
	}
}

type orderRecordingReloadable struct {
	*fakeReloadable
	name  string
	mu    *sync.Mutex
	order *[]string
}

func (o *orderRecordingReloadable) Commit(diff *store.ConfigDiff) error {
	err := o.fakeReloadable.Commit(diff)
	o.mu.Lock()
	*o.order = append(*o.order, o.name)
	o.mu.Unlock()
	return err
}

// P10 (cycle detection): a cycle among the affected set is reported with
// at least one cycle path, and nothing is prepared.
func TestReload_CycleDetection(t *testing.T) {
	c := newTestCoordinator()

	a := newFakeReloadable("output.default_mode")
	a.serviceDeps = []string{"b"}
	b := newFakeReloadable("output.default_mode")
	b.serviceDeps = []string{"a"}

	c.Register("a", a)
	c.Register("b", b)

	err := c.Reload(diffFor("output.default_mode"))
	if err == nil {
		t.Fatal("expected cycle detection error")
	}
	var cycleErr *CyclicDependencyError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CyclicDependencyError, got %T: %v", err, err)
	}
	if len(cycleErr.Chain) == 0 {
		t.Fatal("cycle error must name at least one service in the cycle")
	}
	if a.wasPrepared() || b.wasPrepared() {
		t.Fatal("nothing should be prepared once a cycle is detected")
	}
}

// Gate step: a service reporting CanReloadNow()==false aborts the whole
// reload and no affected service is ever prepared.
func TestReload_GateAbortsOnCanReloadNowFalse(t *testing.T) {
	c := newTestCoordinator()

	blocked := newFakeReloadable("audio.sample_rate")
	blocked.canReload = false
	blocked.reloadReason = "recording in progress"

	c.Register("blocked", blocked)

	err := c.Reload(diffFor("audio.sample_rate"))
	if err == nil {
		t.Fatal("expected restart-required error")
	}
	var restartErr *RestartRequiredError
	if !errors.As(err, &restartErr) {
		t.Fatalf("expected *RestartRequiredError, got %T: %v", err, err)
	}
	if blocked.wasPrepared() {
		t.Fatal("gated service must not be prepared")
	}
}

// A diff touching no registered service's config dependencies is a no-op.
func TestReload_NoAffectedServicesIsNoop(t *testing.T) {
	c := newTestCoordinator()
	unrelated := newFakeReloadable("ui.theme")
	c.Register("unrelated", unrelated)

	if err := c.Reload(diffFor("audio.device")); err != nil {
		t.Fatalf("unexpected error for unrelated diff: %v", err)
	}
	if unrelated.wasPrepared() {
		t.Fatal("unaffected service must not be touched")
	}
}
