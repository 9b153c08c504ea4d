// Package engine implements the orchestrator (C11): it owns the shapes
// cache, the baseline map, the active-operations bookkeeping, and the
// metrics struct, and exposes initialize/shutdown/generate/verify/
// validate/drift as the engine's only public surface. Every other
// component is a plain value the orchestrator wires together; the CLI
// also imports several of them (artifact, plan, render and others)
// directly.
package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/provenance-engine/engine/internal/drift"
	"github.com/provenance-engine/engine/internal/engineerr"
	"github.com/provenance-engine/engine/internal/render"
	"github.com/provenance-engine/engine/internal/rules"
	"github.com/provenance-engine/engine/internal/shacl"
)

// State is the orchestrator's lifecycle state (§4.11).
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateReady         State = "ready"
	StateBusy          State = "busy"
	StateShuttingDown  State = "shutting-down"
	StateShutdown      State = "shutdown"
	StateError         State = "error"
)

// Metrics counts operations the engine has performed, for observability.
type Metrics struct {
	GenerateCalls  int64
	VerifyCalls    int64
	ValidateCalls  int64
	DriftCalls     int64
	ActiveRequests int64
}

// Options configures a new Engine.
type Options struct {
	ShapesCacheSize int
	MaxGraphSize    int
	FunctionalProps []string
	BaselinePath    string
}

// Engine is the orchestrator. Its state and active-operation bookkeeping
// are guarded by mu; it never holds mu while invoking user-supplied rule
// code (§5: "the orchestrator never holds its state lock while invoking
// user-supplied rules").
type Engine struct {
	mu    sync.Mutex
	state State

	shapesCache *shacl.Cache
	ruleReg     *rules.Registry
	renderer    *render.Engine
	baseline    *drift.BaselineStore

	metrics Metrics
	active  map[string]context.CancelFunc
}

// New constructs an Engine in the uninitialized state. Call Initialize
// before use. A corrupt baseline file is a hard error: §7 classes
// baseline I/O errors as aborting, not entry-local.
func New(opts Options) (*Engine, error) {
	e := &Engine{
		state:    StateUninitialized,
		renderer: render.New(),
		active:   map[string]context.CancelFunc{},
	}
	e.shapesCache = shacl.NewCache(opts.ShapesCacheSize)
	e.ruleReg = rules.NewRegistry(e.shapesCache.Clear)
	if err := rules.RegisterBuiltins(e.ruleReg, opts.MaxGraphSize, opts.FunctionalProps); err != nil {
		// Built-in rules are constructed by this package and are known-good;
		// a failure here means a programming error in RegisterBuiltins, not
		// a runtime condition callers should recover from.
		panic("engine: built-in rule registration failed: " + err.Error())
	}

	baselinePath := opts.BaselinePath
	if baselinePath == "" {
		baselinePath = ".drift-baseline.json"
	}
	store, err := drift.LoadBaselineStore(baselinePath)
	if err != nil {
		return nil, err
	}
	e.baseline = store

	return e, nil
}

// Initialize transitions the engine from uninitialized to ready.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateUninitialized {
		e.mu.Unlock()
		return engineerr.New(engineerr.KindEngineNotReady, "engine already initialized", nil)
	}
	e.state = StateInitializing
	e.mu.Unlock()

	select {
	case <-ctx.Done():
		e.setState(StateError)
		return engineerr.New(engineerr.KindCancelled, "initialize cancelled", ctx.Err())
	default:
	}

	e.setState(StateReady)
	return nil
}

// Shutdown transitions the engine to shutdown, refusing new operations
// from the moment it is called.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.state == StateShutdown {
		e.mu.Unlock()
		return nil
	}
	e.state = StateShuttingDown
	cancels := make([]context.CancelFunc, 0, len(e.active))
	for _, cancel := range e.active {
		cancels = append(cancels, cancel)
	}
	e.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}

	e.setState(StateShutdown)
	return nil
}

// Metrics returns a snapshot of the engine's counters.
func (e *Engine) Metrics() Metrics {
	return Metrics{
		GenerateCalls:  atomic.LoadInt64(&e.metrics.GenerateCalls),
		VerifyCalls:    atomic.LoadInt64(&e.metrics.VerifyCalls),
		ValidateCalls:  atomic.LoadInt64(&e.metrics.ValidateCalls),
		DriftCalls:     atomic.LoadInt64(&e.metrics.DriftCalls),
		ActiveRequests: atomic.LoadInt64(&e.metrics.ActiveRequests),
	}
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// beginOp registers an in-flight operation under id, transitioning ready
// to busy, and returns a derived context plus a release function the
// caller must defer. It refuses to start when the engine is not ready or
// shutting down/shutdown/error, per §4.11's terminal-state rule.
func (e *Engine) beginOp(ctx context.Context, id string) (context.Context, func(), error) {
	e.mu.Lock()
	if e.state != StateReady && e.state != StateBusy {
		s := e.state
		e.mu.Unlock()
		return nil, nil, engineerr.New(engineerr.KindEngineNotReady, "engine is "+string(s), nil)
	}
	e.state = StateBusy
	opCtx, cancel := context.WithCancel(ctx)
	e.active[id] = cancel
	e.mu.Unlock()

	atomic.AddInt64(&e.metrics.ActiveRequests, 1)

	release := func() {
		e.mu.Lock()
		delete(e.active, id)
		if len(e.active) == 0 && e.state == StateBusy {
			e.state = StateReady
		}
		e.mu.Unlock()
		atomic.AddInt64(&e.metrics.ActiveRequests, -1)
		cancel()
	}
	return opCtx, release, nil
}

// Cancel cancels the in-flight operation registered under id, if any.
func (e *Engine) Cancel(id string) {
	e.mu.Lock()
	cancel, ok := e.active[id]
	e.mu.Unlock()
	if ok {
		cancel()
	}
}

// RuleIDs returns the custom-rule registry's registered rule ids, in
// registration order, so a caller can compute an effective disabled set
// from a profile's rules.enabled allow-list.
func (e *Engine) RuleIDs() []string {
	return e.ruleReg.IDs()
}

// SaveBaseline persists the engine's baseline store.
func (e *Engine) SaveBaseline() error {
	return e.baseline.Save()
}

// Baseline returns the engine's baseline store, so a caller can record a
// new entry (baseline save) or list existing ones (baseline show) without
// the engine needing a dedicated verb for every baseline-store operation.
func (e *Engine) Baseline() *drift.BaselineStore {
	return e.baseline
}
